package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType categorises events.
type EventType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Event is a gathering people participate in.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	EventTypeID *uuid.UUID `json:"event_type_id,omitempty"`
	HappenedAt  *time.Time `json:"happened_at,omitempty"`
}

// FieldValues flattens the event's editable fields for change tracking.
func (e Event) FieldValues() map[string]string {
	values := map[string]string{
		"name": e.Name,
	}
	if e.EventTypeID != nil {
		values["event_type"] = e.EventTypeID.String()
	} else {
		values["event_type"] = ""
	}
	if e.HappenedAt != nil {
		values["happened_at"] = e.HappenedAt.Format("2006-01-02")
	} else {
		values["happened_at"] = ""
	}
	return values
}

// Participation links a person to an event.
type Participation struct {
	ID       uuid.UUID `json:"id"`
	PersonID uuid.UUID `json:"person_id"`
	EventID  uuid.UUID `json:"event_id"`
}
