package nordigen

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

func readTestTransactions(t *testing.T) Transactions {
	t.Helper()

	f, err := os.Open("testdata/booked.json")
	require.NoError(t, err)
	defer f.Close()

	transactions, err := ReadTransactions(f)
	require.NoError(t, err)
	return transactions
}

func TestReadTransactions(t *testing.T) {
	transactions := readTestTransactions(t)

	require.Len(t, transactions.Booked, 3)
	assert.Empty(t, transactions.Pending)

	first := transactions.Booked[0]
	assert.Equal(t, "2022030201927985-1", first.TransactionID)
	assert.Equal(t, "TRX-9921", first.EntryReference)
	assert.Equal(t, "-45.9", first.TransactionAmount.Amount.String())
	assert.Equal(t, "EUR", first.TransactionAmount.Currency)
	assert.Equal(t, "PMNT-CCRD-POSD", first.BankTransactionCode)
	require.NotNil(t, first.CreditorAccount)
	assert.Equal(t, "LV55UNLA0050000000001", first.CreditorAccount.Iban)
}

func TestFeed_Adapt_Purchase(t *testing.T) {
	transactions := readTestTransactions(t)
	feed := &Feed{Location: time.UTC}

	importable, err := feed.Adapt(transactions.Booked[0])
	require.NoError(t, err)

	assert.Equal(t, "2022030201927985-1", importable.BankReference)
	assert.Equal(t, "TRX-9921", importable.ExternalReference)
	assert.Equal(t, model.Debit, importable.CreditDebit)

	// Amounts are magnitudes; the sign never carries direction.
	assert.Equal(t, "45.9", importable.Amount.String())
	assert.Equal(t, "45.9", importable.OtherAmount.String())
	assert.Equal(t, "EUR", importable.CurrencyCode)
	assert.Equal(t, "EUR", importable.OtherCurrencyCode)

	assert.Equal(t, time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC), importable.BookedAt)
	assert.Equal(t, time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC), importable.ValuedAt)
	assert.Equal(t, "SUPERMARKET RIGA", importable.Description)
	assert.Equal(t, "LV55UNLA0050000000001", importable.OtherIban)
	assert.Equal(t, "MAXIMA LATVIJA", importable.OtherName)
	assert.Equal(t, "PMNT", importable.DomainCode)
	assert.Equal(t, "CCRD", importable.FamilyCode)
	assert.Equal(t, "POSD", importable.SubFamilyCode)
}

func TestFeed_Adapt_InwardTransfer(t *testing.T) {
	transactions := readTestTransactions(t)
	feed := &Feed{Location: time.UTC}

	importable, err := feed.Adapt(transactions.Booked[1])
	require.NoError(t, err)

	assert.Equal(t, model.Credit, importable.CreditDebit)
	assert.Equal(t, "1500", importable.Amount.String())
	assert.True(t, importable.ValuedAt.IsZero())
	assert.Equal(t, "LV12BANK0000435195001", importable.OtherIban)
	assert.Equal(t, "ACME LATVIA SIA", importable.OtherName)
	assert.Empty(t, importable.DomainCode)
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name        string
		information string
		code        string
		want        model.CreditDebit
		wantErr     bool
	}{
		{name: "purchase", information: "PURCHASE", want: model.Debit},
		{name: "inward transfer", information: "INWARD TRANSFER", want: model.Credit},
		{name: "return of purchase", information: "RETURN OF PURCHASE", want: model.Credit},
		{name: "cash withdrawal", information: "CASH WITHDRAWAL", want: model.Debit},
		{name: "unknown inward prefix", information: "INWARD SEPA CREDIT", want: model.Credit},
		{name: "unknown outward prefix", information: "OUTWARD SEPA CREDIT", want: model.Debit},
		{name: "payment domain fallback", information: "SOMETHING ELSE", code: "PMNT-ICDT-ESCT", want: model.Debit},
		{name: "unclassifiable", information: "SOMETHING ELSE", code: "LDAS-FTLN", wantErr: true},
		{name: "no information no code", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booked := BookedTransaction{
				TransactionID:         "tx-1",
				AdditionalInformation: tt.information,
				BankTransactionCode:   tt.code,
			}

			got, err := Direction(booked)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrUnclassified))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeed_BankCounterparty(t *testing.T) {
	feed := &Feed{Location: time.UTC}

	assert.True(t, feed.BankCounterparty(BookedTransaction{AdditionalInformation: "CARD FEE"}))
	assert.True(t, feed.BankCounterparty(BookedTransaction{AdditionalInformation: "INTEREST PAYMENT"}))
	assert.False(t, feed.BankCounterparty(BookedTransaction{AdditionalInformation: "PURCHASE"}))
	assert.False(t, feed.BankCounterparty(BookedTransaction{}))
}

func TestFeed_Adapt_BadBookingDate(t *testing.T) {
	feed := &Feed{Location: time.UTC}

	_, err := feed.Adapt(BookedTransaction{
		AdditionalInformation: "PURCHASE",
		BookingDate:           "not-a-date",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing booking date")
}
