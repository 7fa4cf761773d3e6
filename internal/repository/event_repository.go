package repository

import (
	"context"
	"errors"
	"fmt"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type eventRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewEventRepository wires a repository backed by pgxpool.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool, cat: catalog.Event()}
}

func (r *eventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO events (id, name, event_type_id, happened_at) VALUES ($1, $2, $3, $4)`,
		event.ID,
		event.Name,
		event.EventTypeID,
		event.HappenedAt,
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	var (
		event      domain.Event
		typeID     pgtype.UUID
		happenedAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, event_type_id, happened_at FROM events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.Name, &typeID, &happenedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, ErrNotFound
		}
		return domain.Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	if typeID.Valid {
		v := uuid.UUID(typeID.Bytes)
		event.EventTypeID = &v
	}
	if happenedAt.Valid {
		t := happenedAt.Time
		event.HappenedAt = &t
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]EventRow, int, error) {
	built := BuildQuery(r.cat, spec, SelectBase{IDExpr: "e.id"})

	sql := `SELECT e.id, e.name, e.event_type_id, e.happened_at,
		COALESCE(et.name, ''),
		(SELECT COUNT(*) FROM participations pt WHERE pt.event_id = e.id),
		COUNT(*) OVER()
	 FROM ` + catalog.EventFrom
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
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var (
		out   []EventRow
		total int
	)
	for rows.Next() {
		var (
			row        EventRow
			typeID     pgtype.UUID
			happenedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&row.Event.ID,
			&row.Event.Name,
			&typeID,
			&happenedAt,
			&row.EventTypeName,
			&row.Participants,
			&total,
		); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", scanErr)
		}
		if typeID.Valid {
			v := uuid.UUID(typeID.Bytes)
			row.Event.EventTypeID = &v
		}
		if happenedAt.Valid {
			t := happenedAt.Time
			row.Event.HappenedAt = &t
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate events: %w", rowsErr)
	}

	return out, total, nil
}

func (r *eventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE events SET name = $2, event_type_id = $3, happened_at = $4 WHERE id = $1`,
		event.ID,
		event.Name,
		event.EventTypeID,
		event.HappenedAt,
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Event{}, ErrNotFound
	}
	return event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin event delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM participations WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear participation: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *eventRepository) ReplaceParticipation(ctx context.Context, eventID uuid.UUID, entries []domain.Participation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin participation replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM participations WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear participation: %w", err)
	}
	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO participations (id, person_id, event_id) VALUES ($1, $2, $3)`,
			entry.ID, entry.PersonID, eventID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit participation replace: %w", err)
	}
	return nil
}

func (r *eventRepository) ListParticipation(ctx context.Context, eventID uuid.UUID) ([]domain.Participation, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, person_id, event_id FROM participations WHERE event_id = $1 ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participation: %w", err)
	}
	defer rows.Close()

	entries := []domain.Participation{}
	for rows.Next() {
		var entry domain.Participation
		if scanErr := rows.Scan(&entry.ID, &entry.PersonID, &entry.EventID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate participation: %w", rowsErr)
	}
	return entries, nil
}
