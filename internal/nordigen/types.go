// Package nordigen reads Nordigen (PSD2 account information API) booked
// transactions and adapts them into importable transactions.
package nordigen

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Transactions is the payload of the account transactions endpoint.
type Transactions struct {
	Booked  []BookedTransaction `json:"booked"`
	Pending []BookedTransaction `json:"pending"`
}

// BookedTransaction is one booked movement as reported by Nordigen.
type BookedTransaction struct {
	TransactionID         string          `json:"transactionId"`
	EntryReference        string          `json:"entryReference"`
	BookingDate           string          `json:"bookingDate"`
	ValueDate             string          `json:"valueDate"`
	TransactionAmount     CurrencyAmount  `json:"transactionAmount"`
	BankTransactionCode   string          `json:"bankTransactionCode"`
	AdditionalInformation string          `json:"additionalInformation"`
	UnstructuredInfo      string          `json:"remittanceInformationUnstructured"`
	CreditorName          string          `json:"creditorName"`
	CreditorAccount       *PartyAccount   `json:"creditorAccount"`
	DebtorName            string          `json:"debtorName"`
	DebtorAccount         *PartyAccount   `json:"debtorAccount"`
}

// CurrencyAmount is an amount with its currency; Nordigen serializes the
// amount as a JSON string.
type CurrencyAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// PartyAccount identifies one side of a movement.
type PartyAccount struct {
	Iban string `json:"iban"`
}

// ReadTransactions decodes the transactions payload of one account.
func ReadTransactions(r io.Reader) (Transactions, error) {
	var transactions Transactions
	if err := json.NewDecoder(r).Decode(&transactions); err != nil {
		return Transactions{}, fmt.Errorf("decoding booked transactions: %w", err)
	}
	return transactions, nil
}
