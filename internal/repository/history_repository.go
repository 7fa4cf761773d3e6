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

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository wires a repository backed by pgxpool.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

// Append inserts the given change rows. Rows are insert-only; nothing
// ever updates or deletes them.
func (r *historyRepository) Append(ctx context.Context, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin history append: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.When.IsZero() {
			entry.When = time.Now()
		}
		_, err := tx.Exec(
			ctx,
			`INSERT INTO histories (id, happened_at, model_name, object_id, field_name, old_value, new_value, user_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ID,
			entry.When,
			entry.ModelName,
			entry.ObjectID,
			entry.FieldName,
			entry.OldValue,
			entry.NewValue,
			entry.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit history append: %w", err)
	}
	return nil
}

func (r *historyRepository) ListForObject(ctx context.Context, modelName string, objectID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, happened_at, model_name, object_id, field_name, old_value, new_value, user_id
		 FROM histories
		 WHERE model_name = $1 AND object_id = $2
		 ORDER BY happened_at DESC, field_name`,
		modelName, objectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			entry  domain.HistoryEntry
			userID pgtype.UUID
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.When,
			&entry.ModelName,
			&entry.ObjectID,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&userID,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan history: %w", scanErr)
		}
		if userID.Valid {
			id := uuid.UUID(userID.Bytes)
			entry.UserID = &id
		}
		entries = append(entries, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", rowsErr)
	}
	return entries, nil
}
