package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vista is a saved list-view query owned by a user and scoped to one
// model. Spec holds the serialised QuerySpec. At most one vista per
// (user, model) pair is the default.
type Vista struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ModelName string
	Name      string
	Spec      QuerySpec
	IsDefault bool
	Modified  time.Time
}

// NewVista builds a vista with a fresh ID and a current Modified stamp.
func NewVista(userID uuid.UUID, modelName, name string, spec QuerySpec) *Vista {
	return &Vista{
		ID:        uuid.New(),
		UserID:    userID,
		ModelName: modelName,
		Name:      name,
		Spec:      spec,
		Modified:  time.Now().UTC(),
	}
}
