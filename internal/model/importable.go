package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditDebit is the ISO 20022 direction indicator of a movement, relative
// to the account the statement reports on.
type CreditDebit string

const (
	// Credit means money flowed into the report account.
	Credit CreditDebit = "CRDT"
	// Debit means money flowed out of the report account.
	Debit CreditDebit = "DBIT"
)

// ImportableTransaction is the feed-agnostic form of one statement line.
// Both feed adapters produce it; the reconciliation core consumes it.
//
// Amount and OtherAmount are non-negative magnitudes; direction is carried
// only by CreditDebit, never by sign.
type ImportableTransaction struct {
	BankReference     string // optional
	ExternalReference string // optional
	Amount            decimal.Decimal
	CurrencyCode      string
	CreditDebit       CreditDebit
	BookedAt          time.Time
	ValuedAt          time.Time // zero if unknown
	Description       string

	// The other leg of the movement, possibly in another currency.
	OtherAmount       decimal.Decimal
	OtherCurrencyCode string
	OtherIban         string // optional
	OtherName         string // optional

	// ISO 20022 bank transaction code triple, when the feed supplies one.
	DomainCode    string
	FamilyCode    string
	SubFamilyCode string
}
