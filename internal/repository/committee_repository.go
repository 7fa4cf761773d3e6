package repository

import (
	"context"
	"errors"
	"fmt"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type subCommitteeRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewSubCommitteeRepository wires a repository backed by pgxpool.
func NewSubCommitteeRepository(pool *pgxpool.Pool) SubCommitteeRepository {
	return &subCommitteeRepository{pool: pool, cat: catalog.SubCommittee()}
}

func (r *subCommitteeRepository) Create(ctx context.Context, sc domain.SubCommittee) (domain.SubCommittee, error) {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO subcommittees (id, name, rank_number) VALUES ($1, $2, $3)`,
		sc.ID, sc.Name, sc.RankNumber,
	)
	if err != nil {
		return domain.SubCommittee{}, fmt.Errorf("failed to create subcommittee: %w", err)
	}
	return sc, nil
}

func (r *subCommitteeRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.SubCommittee, error) {
	var sc domain.SubCommittee
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, rank_number FROM subcommittees WHERE id = $1`,
		id,
	).Scan(&sc.ID, &sc.Name, &sc.RankNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SubCommittee{}, ErrNotFound
		}
		return domain.SubCommittee{}, fmt.Errorf("failed to get subcommittee: %w", err)
	}
	return sc, nil
}

func (r *subCommitteeRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]domain.SubCommittee, int, error) {
	built := BuildQuery(r.cat, spec, SelectBase{IDExpr: "sc.id"})

	sql := `SELECT sc.id, sc.name, sc.rank_number, COUNT(*) OVER() FROM ` + catalog.SubCommitteeFrom
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
		return nil, 0, fmt.Errorf("failed to list subcommittees: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.SubCommittee
		total int
	)
	for rows.Next() {
		var sc domain.SubCommittee
		if scanErr := rows.Scan(&sc.ID, &sc.Name, &sc.RankNumber, &total); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan subcommittee: %w", scanErr)
		}
		out = append(out, sc)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate subcommittees: %w", rowsErr)
	}
	return out, total, nil
}

func (r *subCommitteeRepository) Update(ctx context.Context, sc domain.SubCommittee) (domain.SubCommittee, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE subcommittees SET name = $2, rank_number = $3 WHERE id = $1`,
		sc.ID, sc.Name, sc.RankNumber,
	)
	if err != nil {
		return domain.SubCommittee{}, fmt.Errorf("failed to update subcommittee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.SubCommittee{}, ErrNotFound
	}
	return sc, nil
}

func (r *subCommitteeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin subcommittee delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM submemberships WHERE subcommittee_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear submemberships: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM subcommittees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subcommittee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *subCommitteeRepository) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, title, rank_number FROM positions ORDER BY rank_number DESC, title`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := []domain.Position{}
	for rows.Next() {
		var p domain.Position
		if scanErr := rows.Scan(&p.ID, &p.Title, &p.RankNumber); scanErr != nil {
			return nil, fmt.Errorf("failed to scan position: %w", scanErr)
		}
		positions = append(positions, p)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", rowsErr)
	}
	return positions, nil
}
