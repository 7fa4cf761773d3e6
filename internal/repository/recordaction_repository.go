package repository

import (
	"context"
	"fmt"
	"time"

	"membership-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordActionRepository struct {
	pool *pgxpool.Pool
}

// NewRecordActionRepository wires a repository backed by pgxpool.
func NewRecordActionRepository(pool *pgxpool.Pool) RecordActionRepository {
	return &recordActionRepository{pool: pool}
}

func (r *recordActionRepository) Record(ctx context.Context, action domain.RecordAction) (domain.RecordAction, error) {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO record_actions (id, model_name, object_id, details, user_id, bulk_record_action_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		action.ID,
		action.ModelName,
		action.ObjectID,
		action.Details,
		action.UserID,
		action.BulkRecordActionID,
		action.CreatedAt,
	)
	if err != nil {
		return domain.RecordAction{}, fmt.Errorf("failed to record action: %w", err)
	}
	return action, nil
}

func (r *recordActionRepository) CreateBulk(ctx context.Context, bulk domain.BulkRecordAction) (domain.BulkRecordAction, error) {
	if bulk.ID == uuid.Nil {
		bulk.ID = uuid.New()
	}
	if bulk.CreatedAt.IsZero() {
		bulk.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO bulk_record_actions (id, name, created_at) VALUES ($1, $2, $3)`,
		bulk.ID, bulk.Name, bulk.CreatedAt,
	)
	if err != nil {
		return domain.BulkRecordAction{}, fmt.Errorf("failed to create bulk action: %w", err)
	}
	return bulk, nil
}

func (r *recordActionRepository) ListForBulk(ctx context.Context, bulkID uuid.UUID) ([]domain.RecordAction, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, model_name, object_id, details, user_id, bulk_record_action_id, created_at
		 FROM record_actions
		 WHERE bulk_record_action_id = $1
		 ORDER BY created_at, id`,
		bulkID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bulk actions: %w", err)
	}
	defer rows.Close()

	actions := []domain.RecordAction{}
	for rows.Next() {
		var (
			action domain.RecordAction
			userID pgtype.UUID
			linkID pgtype.UUID
		)
		if scanErr := rows.Scan(
			&action.ID,
			&action.ModelName,
			&action.ObjectID,
			&action.Details,
			&userID,
			&linkID,
			&action.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan record action: %w", scanErr)
		}
		if userID.Valid {
			id := uuid.UUID(userID.Bytes)
			action.UserID = &id
		}
		if linkID.Valid {
			id := uuid.UUID(linkID.Bytes)
			action.BulkRecordActionID = &id
		}
		actions = append(actions, action)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate record actions: %w", rowsErr)
	}
	return actions, nil
}
