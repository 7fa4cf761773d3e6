package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommunicationResult names the outcome of a contact attempt, e.g.
// "Spoke", "Left message", "Bad number".
type CommunicationResult struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BulkCommunication groups the communication events of one outreach
// campaign so they can be filtered and reported together.
type BulkCommunication struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CommunicationEvent records one contact attempt: a volunteer reaching
// a target person, with free-text details and an optional outcome.
type CommunicationEvent struct {
	ID                  uuid.UUID  `json:"id"`
	TargetID            uuid.UUID  `json:"target_id"`
	VolunteerID         *uuid.UUID `json:"volunteer_id,omitempty"`
	Details             string     `json:"details"`
	BulkCommunicationID *uuid.UUID `json:"bulk_communication_id,omitempty"`
	ResultID            *uuid.UUID `json:"result_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// FieldValues flattens the editable fields for change tracking.
func (c CommunicationEvent) FieldValues() map[string]string {
	values := map[string]string{
		"target":  c.TargetID.String(),
		"details": c.Details,
	}
	if c.VolunteerID != nil {
		values["volunteer"] = c.VolunteerID.String()
	} else {
		values["volunteer"] = ""
	}
	if c.BulkCommunicationID != nil {
		values["bulk_communication"] = c.BulkCommunicationID.String()
	} else {
		values["bulk_communication"] = ""
	}
	if c.ResultID != nil {
		values["result"] = c.ResultID.String()
	} else {
		values["result"] = ""
	}
	return values
}
