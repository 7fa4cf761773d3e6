package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type savedListRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewSavedListRepository wires a repository backed by pgxpool.
func NewSavedListRepository(pool *pgxpool.Pool) SavedListRepository {
	return &savedListRepository{pool: pool, cat: catalog.SavedList()}
}

func (r *savedListRepository) Create(ctx context.Context, list domain.SavedList) (domain.SavedList, error) {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO saved_lists (id, name, created_at) VALUES ($1, $2, $3)`,
		list.ID, list.Name, list.CreatedAt,
	)
	if err != nil {
		return domain.SavedList{}, fmt.Errorf("failed to create saved list: %w", err)
	}
	return list, nil
}

func (r *savedListRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.SavedList, error) {
	var list domain.SavedList
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at FROM saved_lists WHERE id = $1`,
		id,
	).Scan(&list.ID, &list.Name, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SavedList{}, ErrNotFound
		}
		return domain.SavedList{}, fmt.Errorf("failed to get saved list: %w", err)
	}
	return list, nil
}

func (r *savedListRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]SavedListRow, int, error) {
	built := BuildQuery(r.cat, spec, SelectBase{IDExpr: "sl.id"})

	sql := `SELECT sl.id, sl.name, sl.created_at,
		(SELECT COUNT(*) FROM list_memberships lm WHERE lm.saved_list_id = sl.id),
		COUNT(*) OVER()
	 FROM ` + catalog.SavedListFrom
	if built.Where != "" {
		sql += " WHERE " + built.Where
	}
	sql += " ORDER BY " + built.OrderBy

	args := built.Args
	if page.PageSize > 0 {
		offset := 0
		if page.Page > 1 {
			offset = (page.Page - 1) * page.PageSize
		}
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.PageSize, offset)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list saved lists: %w", err)
	}
	defer rows.Close()

	var (
		out   []SavedListRow
		total int
	)
	for rows.Next() {
		var row SavedListRow
		if scanErr := rows.Scan(&row.SavedList.ID, &row.SavedList.Name, &row.SavedList.CreatedAt, &row.Members, &total); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan saved list: %w", scanErr)
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate saved lists: %w", rowsErr)
	}
	return out, total, nil
}

func (r *savedListRepository) Update(ctx context.Context, list domain.SavedList) (domain.SavedList, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE saved_lists SET name = $2 WHERE id = $1`,
		list.ID, list.Name,
	)
	if err != nil {
		return domain.SavedList{}, fmt.Errorf("failed to update saved list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.SavedList{}, ErrNotFound
	}
	return list, nil
}

func (r *savedListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin saved list delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM list_memberships WHERE saved_list_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear list memberships: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM saved_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *savedListRepository) ReplaceMembers(ctx context.Context, listID uuid.UUID, personIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin member replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM list_memberships WHERE saved_list_id = $1`, listID); err != nil {
		return fmt.Errorf("failed to clear list memberships: %w", err)
	}
	for _, personID := range personIDs {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO list_memberships (id, saved_list_id, person_id) VALUES ($1, $2, $3)`,
			uuid.New(), listID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert list membership: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit member replace: %w", err)
	}
	return nil
}

func (r *savedListRepository) ListMembers(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT lm.person_id
		 FROM list_memberships lm
		 JOIN persons p ON p.id = lm.person_id
		 WHERE lm.saved_list_id = $1
		 ORDER BY p.name_last, p.name_common, p.id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan member: %w", scanErr)
		}
		ids = append(ids, id)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", rowsErr)
	}
	return ids, nil
}
