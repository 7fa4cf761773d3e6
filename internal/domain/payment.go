package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod names a way dues are paid.
type PaymentMethod struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DuesPayment records one dues transaction for a person.
type DuesPayment struct {
	ID              uuid.UUID  `json:"id"`
	PersonID        uuid.UUID  `json:"person_id"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	MethodID        *uuid.UUID `json:"method_id,omitempty"`
}
