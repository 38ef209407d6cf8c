package model

import "github.com/google/uuid"

// User is the owner of a ledger. Imports are always scoped to one user.
type User struct {
	ID             uuid.UUID
	CounterpartyID uuid.UUID
	Name           string
}
