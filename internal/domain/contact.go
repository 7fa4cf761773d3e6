package domain

import (
	"github.com/google/uuid"
)

// MobileFlag is the three-state mobile marker on voice numbers.
type MobileFlag int

const (
	MobileUnknown   MobileFlag = 0
	MobileNotMobile MobileFlag = 1
	MobileMobile    MobileFlag = 2
)

// ContactVoice is a phone number used for calls.
type ContactVoice struct {
	ID         uuid.UUID  `json:"id"`
	PersonID   uuid.UUID  `json:"person_id"`
	Number     string     `json:"number"`
	Label      string     `json:"label"`
	IsMobile   MobileFlag `json:"is_mobile"`
	RankNumber int        `json:"rank_number"`
	Extra      string     `json:"extra"`
	Alert      string     `json:"alert"`
	IsPrimary  bool       `json:"is_primary"`
}

// ContactText is a phone number used for text messages.
type ContactText struct {
	ID        uuid.UUID `json:"id"`
	PersonID  uuid.UUID `json:"person_id"`
	Number    string    `json:"number"`
	Extra     string    `json:"extra"`
	Alert     string    `json:"alert"`
	IsPrimary bool      `json:"is_primary"`
}

// ContactEmail is an email address.
type ContactEmail struct {
	ID        uuid.UUID `json:"id"`
	PersonID  uuid.UUID `json:"person_id"`
	Address   string    `json:"address"`
	Extra     string    `json:"extra"`
	Alert     string    `json:"alert"`
	IsPrimary bool      `json:"is_primary"`
}
