package domain

import (
	"time"

	"github.com/google/uuid"
)

// MembershipType names a broad category of membership.
type MembershipType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MembershipStatus qualifies a membership type with the rights it carries.
type MembershipStatus struct {
	ID               uuid.UUID `json:"id"`
	MembershipTypeID uuid.UUID `json:"membership_type_id"`
	TypeName         string    `json:"type_name"`
	Name             string    `json:"name"`
	IsMember         bool      `json:"is_member"`
	IsQuorum         bool      `json:"is_quorum"`
	CanVote          bool      `json:"can_vote"`
	PaysDues         bool      `json:"pays_dues"`
}

// Display renders "Type: Name", or the bare type name for an unnamed status.
func (s MembershipStatus) Display() string {
	if s.Name != "" {
		return s.TypeName + ": " + s.Name
	}
	return s.TypeName
}

// MembershipHistory records one period of a person's membership. A new row
// is appended whenever a person is saved with a status that differs from
// the latest entry.
type MembershipHistory struct {
	ID                 uuid.UUID  `json:"id"`
	PersonID           uuid.UUID  `json:"person_id"`
	MembershipStatusID *uuid.UUID `json:"membership_status_id,omitempty"`
	EffectiveDate      time.Time  `json:"effective_date"`
}

// MembershipApplication records a signed or submitted application.
type MembershipApplication struct {
	ID              uuid.UUID  `json:"id"`
	PersonID        uuid.UUID  `json:"person_id"`
	ApplicationDate *time.Time `json:"application_date,omitempty"`
}
