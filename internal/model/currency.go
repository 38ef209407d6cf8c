package model

import "github.com/google/uuid"

// Currency is an ISO 4217 currency. Currencies are immutable reference data,
// seeded once and only ever looked up.
type Currency struct {
	ID             uuid.UUID
	AlphabeticCode string // "EUR"
	NumericCode    int    // 978
	Name           string
}
