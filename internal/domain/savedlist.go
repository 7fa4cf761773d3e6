package domain

import (
	"time"

	"github.com/google/uuid"
)

// SavedList is a hand-curated set of people, filterable in list views.
type SavedList struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMembership places a person on a saved list.
type ListMembership struct {
	ID          uuid.UUID `json:"id"`
	SavedListID uuid.UUID `json:"saved_list_id"`
	PersonID    uuid.UUID `json:"person_id"`
}
