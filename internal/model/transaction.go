package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction groups one or more transfers booked together. ImportedAt is
// set only for transactions created by a statement import.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	BookedAt    time.Time
	ValuedAt    time.Time // zero if the feed carried no value date
	ImportedAt  time.Time // zero for manually entered transactions
	Description string
}

// Transfer moves an amount between two per-currency sub-accounts. Source and
// target amounts may differ when the legs are in different currencies.
type Transfer struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	TransactionID     uuid.UUID
	SourceAccountID   uuid.UUID // AccountInCurrency id
	SourceAmount      decimal.Decimal
	TargetAccountID   uuid.UUID // AccountInCurrency id
	TargetAmount      decimal.Decimal
	BankReference     string // bank-issued id, unique per user when set
	ExternalReference string // inter-bank id, may repeat across legs
	Order             int    // display order within the transaction
}
