package domain

import (
	"github.com/google/uuid"
)

// LocationKind enumerates the reference-location tables kept for voting
// addresses. One table holds all kinds.
type LocationKind string

const (
	LocationKindCity        LocationKind = "city"
	LocationKindCongress    LocationKind = "congress"
	LocationKindStateSenate LocationKind = "statesenate"
	LocationKindStateHouse  LocationKind = "statehouse"
	LocationKindMagistrate  LocationKind = "magistrate"
	LocationKindBorough     LocationKind = "borough"
	LocationKindPrecinct    LocationKind = "precinct"
)

// LocationKinds lists every kind in display order.
var LocationKinds = []LocationKind{
	LocationKindCity,
	LocationKindCongress,
	LocationKindStateSenate,
	LocationKindStateHouse,
	LocationKindMagistrate,
	LocationKindBorough,
	LocationKindPrecinct,
}

// Valid reports whether k names a known location kind.
func (k LocationKind) Valid() bool {
	for _, kind := range LocationKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Label returns the human name for the kind.
func (k LocationKind) Label() string {
	switch k {
	case LocationKindCity:
		return "City"
	case LocationKindCongress:
		return "Congressional District"
	case LocationKindStateSenate:
		return "State Senatorial District"
	case LocationKindStateHouse:
		return "House of Delegates District"
	case LocationKindMagistrate:
		return "Magisterial District"
	case LocationKindBorough:
		return "Borough"
	case LocationKindPrecinct:
		return "Precinct"
	}
	return string(k)
}

// Location is a named reference record of one kind, looked up by exact
// name during import and offered as filter candidates in list views.
type Location struct {
	ID   uuid.UUID    `json:"id"`
	Kind LocationKind `json:"kind"`
	Name string       `json:"name"`
}

// VotingAddress ties a street address to its reference locations. Every
// location reference is optional.
type VotingAddress struct {
	ID            uuid.UUID  `json:"id"`
	StreetAddress string     `json:"street_address"`
	CityID        *uuid.UUID `json:"city_id,omitempty"`
	CongressID    *uuid.UUID `json:"congress_id,omitempty"`
	StateSenateID *uuid.UUID `json:"statesenate_id,omitempty"`
	StateHouseID  *uuid.UUID `json:"statehouse_id,omitempty"`
	MagistrateID  *uuid.UUID `json:"magistrate_id,omitempty"`
	BoroughID     *uuid.UUID `json:"borough_id,omitempty"`
	PrecinctID    *uuid.UUID `json:"precinct_id,omitempty"`
}

// Display truncates the street address to 50 runes.
func (a VotingAddress) Display() string {
	runes := []rune(a.StreetAddress)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return a.StreetAddress
}

// SetLocation assigns the reference of the given kind.
func (a *VotingAddress) SetLocation(kind LocationKind, id uuid.UUID) {
	ref := id
	switch kind {
	case LocationKindCity:
		a.CityID = &ref
	case LocationKindCongress:
		a.CongressID = &ref
	case LocationKindStateSenate:
		a.StateSenateID = &ref
	case LocationKindStateHouse:
		a.StateHouseID = &ref
	case LocationKindMagistrate:
		a.MagistrateID = &ref
	case LocationKindBorough:
		a.BoroughID = &ref
	case LocationKindPrecinct:
		a.PrecinctID = &ref
	}
}
