package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person represents one tracked individual. People are soft deleted: the
// first delete sets IsDeleted and keeps the row, only an already flagged
// person may be physically removed.
type Person struct {
	ID                 uuid.UUID  `json:"id"`
	NamePrefix         string     `json:"name_prefix"`
	NameLast           string     `json:"name_last"`
	NameFirst          string     `json:"name_first"`
	NameMiddles        string     `json:"name_middles"`
	NameCommon         string     `json:"name_common"`
	NameSuffix         string     `json:"name_suffix"`
	VBVoterID          string     `json:"vb_voter_id"`
	VotingAddressID    *uuid.UUID `json:"voting_address_id,omitempty"`
	MembershipStatusID *uuid.UUID `json:"membership_status_id,omitempty"`
	IsDeleted          bool       `json:"is_deleted"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewPerson creates a person with a fresh identifier and timestamps.
func NewPerson(nameLast, nameFirst string) Person {
	now := time.Now()
	return Person{
		ID:        uuid.New(),
		NameLast:  nameLast,
		NameFirst: nameFirst,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Display returns the person's friendly name, preferring the common name
// over the first name when one is set.
func (p Person) Display() string {
	first := p.NameFirst
	if p.NameCommon != "" {
		first = p.NameCommon
	}
	return strings.TrimSpace(first + " " + p.NameLast)
}

// FieldValues flattens the person's own editable fields into strings for
// change tracking. Reference fields use the target id, empty when unset.
func (p Person) FieldValues() map[string]string {
	values := map[string]string{
		"name_prefix":  p.NamePrefix,
		"name_last":    p.NameLast,
		"name_first":   p.NameFirst,
		"name_middles": p.NameMiddles,
		"name_common":  p.NameCommon,
		"name_suffix":  p.NameSuffix,
		"vb_voter_id":  p.VBVoterID,
	}
	if p.VotingAddressID != nil {
		values["voting_address"] = p.VotingAddressID.String()
	} else {
		values["voting_address"] = ""
	}
	if p.MembershipStatusID != nil {
		values["membership_status"] = p.MembershipStatusID.String()
	} else {
		values["membership_status"] = ""
	}
	return values
}
