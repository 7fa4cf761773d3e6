// Package history appends immutable field-level change records and
// audit actions after successful mutations.
package history

import (
	"context"
	"fmt"
	"time"

	"membership-api/internal/domain"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

// Service writes history entries and record actions. Both are append
// only; nothing in the application mutates them afterwards.
type Service struct {
	histories repository.HistoryRepository
	actions   repository.RecordActionRepository
}

// NewService wires a history service.
func NewService(histories repository.HistoryRepository, actions repository.RecordActionRepository) *Service {
	return &Service{histories: histories, actions: actions}
}

// RecordChanges diffs the prior field values against the submitted ones
// and appends one entry per changed field. A save that changed nothing
// appends nothing. Returns the number of entries written.
func (s *Service) RecordChanges(ctx context.Context, modelName string, objectID uuid.UUID, userID *uuid.UUID, initial, submitted map[string]string) (int, error) {
	changes := domain.DiffFields(initial, submitted)
	if len(changes) == 0 {
		return 0, nil
	}

	now := time.Now()
	entries := make([]domain.HistoryEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, domain.HistoryEntry{
			ID:        uuid.New(),
			When:      now,
			ModelName: modelName,
			ObjectID:  objectID,
			FieldName: change.Field,
			OldValue:  change.Old,
			NewValue:  change.New,
			UserID:    userID,
		})
	}

	if err := s.histories.Append(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to record changes: %w", err)
	}
	return len(entries), nil
}

// RecordCreation appends one entry per non-empty field of a freshly
// created record, diffed against nothing.
func (s *Service) RecordCreation(ctx context.Context, modelName string, objectID uuid.UUID, userID *uuid.UUID, values map[string]string) (int, error) {
	return s.RecordChanges(ctx, modelName, objectID, userID, map[string]string{}, values)
}

// ListForObject returns the change log for one record, newest first.
func (s *Service) ListForObject(ctx context.Context, modelName string, objectID uuid.UUID) ([]domain.HistoryEntry, error) {
	return s.histories.ListForObject(ctx, modelName, objectID)
}

// BeginBulk opens a named bulk grouping for a batch operation.
func (s *Service) BeginBulk(ctx context.Context, name string) (domain.BulkRecordAction, error) {
	bulk, err := s.actions.CreateBulk(ctx, domain.BulkRecordAction{Name: name})
	if err != nil {
		return domain.BulkRecordAction{}, fmt.Errorf("failed to begin bulk action: %w", err)
	}
	return bulk, nil
}

// RecordAction notes what happened to one record, optionally under a
// bulk grouping.
func (s *Service) RecordAction(ctx context.Context, modelName string, objectID uuid.UUID, details string, userID, bulkID *uuid.UUID) error {
	_, err := s.actions.Record(ctx, domain.RecordAction{
		ModelName:          modelName,
		ObjectID:           objectID,
		Details:            details,
		UserID:             userID,
		BulkRecordActionID: bulkID,
	})
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}
