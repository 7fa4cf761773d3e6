package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordAction is a free-text audit note describing what happened to one
// record, optionally grouped under a bulk action.
type RecordAction struct {
	ID                 uuid.UUID  `json:"id"`
	ModelName          string     `json:"model_name"`
	ObjectID           uuid.UUID  `json:"object_id"`
	Details            string     `json:"details"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	BulkRecordActionID *uuid.UUID `json:"bulk_record_action_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// BulkRecordAction groups the per-record actions of one batch operation,
// such as a CSV upload, so that "everyone touched by batch X" stays
// answerable afterwards.
type BulkRecordAction struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
