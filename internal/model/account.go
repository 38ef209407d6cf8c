package model

import (
	"github.com/google/uuid"
)

// Account represents a ledger account which can hold funds in one or more
// currencies. Transfers never reference an Account directly, only one of its
// per-currency sub-accounts.
type Account struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	CounterpartyID uuid.UUID
	Name           string
	Bic            string // optional
	Iban           string // optional
	AccountNumber  string // optional
	Currencies     []AccountInCurrency
}

// InCurrency returns the sub-account denominated in the given currency.
func (a Account) InCurrency(currencyID uuid.UUID) (AccountInCurrency, bool) {
	for _, aic := range a.Currencies {
		if aic.CurrencyID == currencyID {
			return aic, true
		}
	}
	return AccountInCurrency{}, false
}

// AccountInCurrency is a per-currency sub-ledger of an Account.
type AccountInCurrency struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	AccountID  uuid.UUID
	CurrencyID uuid.UUID
}

// Counterparty is the legal party behind one or more accounts.
type Counterparty struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
}

// Bank identifies a financial institution during account resolution.
type Bank struct {
	Name string
	Bic  string
}

// UserAccount identifies the user's own account a statement reports on.
type UserAccount struct {
	Iban         string
	CurrencyCode string
}

// UnidentifiedAccountName is the reserved name of the per-user fallback
// account used when a counterparty cannot be resolved.
const UnidentifiedAccountName = "Unidentified"
