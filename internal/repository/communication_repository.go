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

type communicationRepository struct {
	pool    *pgxpool.Pool
	cat     *catalog.Catalog
	bulkCat *catalog.Catalog
}

// NewCommunicationRepository wires a repository backed by pgxpool.
func NewCommunicationRepository(pool *pgxpool.Pool) CommunicationRepository {
	return &communicationRepository{
		pool:    pool,
		cat:     catalog.CommunicationEvent(),
		bulkCat: catalog.BulkCommunication(),
	}
}

func (r *communicationRepository) Create(ctx context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO communication_events (id, target_id, volunteer_id, details, bulk_communication_id, result_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		event.ID,
		event.TargetID,
		event.VolunteerID,
		event.Details,
		event.BulkCommunicationID,
		event.ResultID,
	).Scan(&event.CreatedAt)
	if err != nil {
		return domain.CommunicationEvent{}, fmt.Errorf("failed to create communication event: %w", err)
	}
	return event, nil
}

func (r *communicationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.CommunicationEvent, error) {
	var (
		event       domain.CommunicationEvent
		volunteerID pgtype.UUID
		bulkID      pgtype.UUID
		resultID    pgtype.UUID
	)
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, target_id, volunteer_id, details, bulk_communication_id, result_id, created_at
		 FROM communication_events WHERE id = $1`,
		id,
	).Scan(&event.ID, &event.TargetID, &volunteerID, &event.Details, &bulkID, &resultID, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CommunicationEvent{}, ErrNotFound
		}
		return domain.CommunicationEvent{}, fmt.Errorf("failed to get communication event: %w", err)
	}
	event.VolunteerID = optionalUUID(volunteerID)
	event.BulkCommunicationID = optionalUUID(bulkID)
	event.ResultID = optionalUUID(resultID)
	return event, nil
}

func (r *communicationRepository) List(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]CommunicationEventRow, int, error) {
	built := BuildQuery(r.cat, spec, SelectBase{IDExpr: "ce.id"})

	sql := `SELECT ce.id, ce.target_id, ce.volunteer_id, ce.details,
		ce.bulk_communication_id, ce.result_id, ce.created_at,
		COALESCE(NULLIF(TRIM(COALESCE(NULLIF(tp.name_common, ''), tp.name_first) || ' ' || tp.name_last), ''), ''),
		COALESCE(NULLIF(TRIM(COALESCE(NULLIF(vp.name_common, ''), vp.name_first) || ' ' || vp.name_last), ''), ''),
		COALESCE(bc.name, ''),
		COALESCE(cr.name, ''),
		COUNT(*) OVER()
	 FROM ` + catalog.CommunicationEventFrom
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
		return nil, 0, fmt.Errorf("failed to list communication events: %w", err)
	}
	defer rows.Close()

	var (
		out   []CommunicationEventRow
		total int
	)
	for rows.Next() {
		var (
			row         CommunicationEventRow
			volunteerID pgtype.UUID
			bulkID      pgtype.UUID
			resultID    pgtype.UUID
		)
		if scanErr := rows.Scan(
			&row.Communication.ID,
			&row.Communication.TargetID,
			&volunteerID,
			&row.Communication.Details,
			&bulkID,
			&resultID,
			&row.Communication.CreatedAt,
			&row.TargetName,
			&row.VolunteerName,
			&row.BulkName,
			&row.ResultName,
			&total,
		); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan communication event: %w", scanErr)
		}
		row.Communication.VolunteerID = optionalUUID(volunteerID)
		row.Communication.BulkCommunicationID = optionalUUID(bulkID)
		row.Communication.ResultID = optionalUUID(resultID)
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate communication events: %w", rowsErr)
	}

	return out, total, nil
}

func (r *communicationRepository) Update(ctx context.Context, event domain.CommunicationEvent) (domain.CommunicationEvent, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE communication_events SET target_id = $2, volunteer_id = $3, details = $4,
		 bulk_communication_id = $5, result_id = $6 WHERE id = $1`,
		event.ID,
		event.TargetID,
		event.VolunteerID,
		event.Details,
		event.BulkCommunicationID,
		event.ResultID,
	)
	if err != nil {
		return domain.CommunicationEvent{}, fmt.Errorf("failed to update communication event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.CommunicationEvent{}, ErrNotFound
	}
	return event, nil
}

func (r *communicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM communication_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete communication event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *communicationRepository) CreateBulk(ctx context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error) {
	if bulk.ID == uuid.Nil {
		bulk.ID = uuid.New()
	}
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO bulk_communications (id, name) VALUES ($1, $2) RETURNING created_at`,
		bulk.ID,
		bulk.Name,
	).Scan(&bulk.CreatedAt)
	if err != nil {
		return domain.BulkCommunication{}, fmt.Errorf("failed to create bulk communication: %w", err)
	}
	return bulk, nil
}

func (r *communicationRepository) GetBulkByID(ctx context.Context, id uuid.UUID) (domain.BulkCommunication, error) {
	var bulk domain.BulkCommunication
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name, created_at FROM bulk_communications WHERE id = $1`,
		id,
	).Scan(&bulk.ID, &bulk.Name, &bulk.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BulkCommunication{}, ErrNotFound
		}
		return domain.BulkCommunication{}, fmt.Errorf("failed to get bulk communication: %w", err)
	}
	return bulk, nil
}

func (r *communicationRepository) ListBulks(ctx context.Context, spec domain.QuerySpec, page ListPage) ([]BulkCommunicationRow, int, error) {
	built := BuildQuery(r.bulkCat, spec, SelectBase{IDExpr: "bc.id"})

	sql := `SELECT bc.id, bc.name, bc.created_at,
		(SELECT COUNT(*) FROM communication_events ce WHERE ce.bulk_communication_id = bc.id),
		COUNT(*) OVER()
	 FROM ` + catalog.BulkCommunicationFrom
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
		return nil, 0, fmt.Errorf("failed to list bulk communications: %w", err)
	}
	defer rows.Close()

	var (
		out   []BulkCommunicationRow
		total int
	)
	for rows.Next() {
		var row BulkCommunicationRow
		if scanErr := rows.Scan(&row.Bulk.ID, &row.Bulk.Name, &row.Bulk.CreatedAt, &row.Events, &total); scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan bulk communication: %w", scanErr)
		}
		out = append(out, row)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("failed to iterate bulk communications: %w", rowsErr)
	}

	return out, total, nil
}

func (r *communicationRepository) UpdateBulk(ctx context.Context, bulk domain.BulkCommunication) (domain.BulkCommunication, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE bulk_communications SET name = $2 WHERE id = $1`,
		bulk.ID,
		bulk.Name,
	)
	if err != nil {
		return domain.BulkCommunication{}, fmt.Errorf("failed to update bulk communication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.BulkCommunication{}, ErrNotFound
	}
	return bulk, nil
}

func (r *communicationRepository) DeleteBulk(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin bulk communication delete: %w", err)
	}
	defer tx.Rollback(ctx)

	// The grouped events survive, they just lose their campaign link.
	if _, err := tx.Exec(ctx, `UPDATE communication_events SET bulk_communication_id = NULL WHERE bulk_communication_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink communication events: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM bulk_communications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bulk communication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func optionalUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func (r *communicationRepository) ListResults(ctx context.Context) ([]domain.CommunicationResult, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM communication_results ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list communication results: %w", err)
	}
	defer rows.Close()

	results := []domain.CommunicationResult{}
	for rows.Next() {
		var result domain.CommunicationResult
		if scanErr := rows.Scan(&result.ID, &result.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan communication result: %w", scanErr)
		}
		results = append(results, result)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate communication results: %w", rowsErr)
	}
	return results, nil
}
