package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one immutable field-level change record. Entries are
// appended after a successful save and never updated or deleted.
type HistoryEntry struct {
	ID        uuid.UUID  `json:"id"`
	When      time.Time  `json:"when"`
	ModelName string     `json:"model_name"`
	ObjectID  uuid.UUID  `json:"object_id"`
	FieldName string     `json:"field_name"`
	OldValue  string     `json:"old_value"`
	NewValue  string     `json:"new_value"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

// FieldChange is a single field difference between the values a form was
// initialised with and the values it submitted.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// DiffFields compares prior field values against submitted ones and
// returns one change per differing field, in field-name order. Fields
// present only on one side diff against the empty string.
func DiffFields(initial, submitted map[string]string) []FieldChange {
	names := make(map[string]struct{}, len(initial)+len(submitted))
	for name := range initial {
		names[name] = struct{}{}
	}
	for name := range submitted {
		names[name] = struct{}{}
	}

	changes := make([]FieldChange, 0, len(names))
	for name := range names {
		oldValue := initial[name]
		newValue, ok := submitted[name]
		if !ok {
			// Field not submitted at all; an omitted field is not a change.
			continue
		}
		if oldValue == newValue {
			continue
		}
		changes = append(changes, FieldChange{Field: name, Old: oldValue, New: newValue})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}
