package domain

import (
	"github.com/google/uuid"
)

// SubCommittee is a committee people join through sub memberships.
// RankNumber sorts descending, so higher numbers list first.
type SubCommittee struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	RankNumber int       `json:"rank_number"`
}

// Position is a titled role held within a sub committee.
type Position struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	RankNumber int       `json:"rank_number"`
}

// SubMembership links a person to a sub committee, optionally with a
// position.
type SubMembership struct {
	ID             uuid.UUID  `json:"id"`
	PersonID       uuid.UUID  `json:"person_id"`
	SubCommitteeID uuid.UUID  `json:"subcommittee_id"`
	PositionID     *uuid.UUID `json:"position_id,omitempty"`
}
