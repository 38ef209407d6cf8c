package nordigen

import (
	"fmt"
	"time"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/txcode"
)

const bookingDateFormat = "2006-01-02"

// bankInformation lists the flat transaction-type values whose counterparty
// is the bank itself but which carry no structured domain code.
var bankInformation = map[string]struct{}{
	"CARD FEE":                    {},
	"BALANCE ENQUIRY FEE":         {},
	"INTEREST PAYMENT":            {},
	"REIMBURSEMENT OF COMMISSION": {},
	"PRINCIPAL REPAYMENT":         {},
	"LOAN DRAWDOWN":               {},
}

// Feed adapts Nordigen booked transactions into importable transactions.
type Feed struct {
	// Location resolves the date-only booking and value dates to instants.
	Location *time.Location
}

// Adapt maps one booked transaction to the feed-agnostic transaction form.
func (f *Feed) Adapt(booked BookedTransaction) (model.ImportableTransaction, error) {
	direction, err := Direction(booked)
	if err != nil {
		return model.ImportableTransaction{}, err
	}

	bookedAt, err := time.ParseInLocation(bookingDateFormat, booked.BookingDate, f.Location)
	if err != nil {
		return model.ImportableTransaction{}, fmt.Errorf("parsing booking date %q: %w", booked.BookingDate, err)
	}

	var valuedAt time.Time
	if booked.ValueDate != "" {
		valuedAt, err = time.ParseInLocation(bookingDateFormat, booked.ValueDate, f.Location)
		if err != nil {
			return model.ImportableTransaction{}, fmt.Errorf("parsing value date %q: %w", booked.ValueDate, err)
		}
	}

	domain, family, subFamily, err := txcode.Split(booked.BankTransactionCode)
	if err != nil {
		return model.ImportableTransaction{}, err
	}

	amount := booked.TransactionAmount.Amount.Abs()
	currency := booked.TransactionAmount.Currency

	otherIban := ""
	if booked.CreditorAccount != nil && booked.CreditorAccount.Iban != "" {
		otherIban = booked.CreditorAccount.Iban
	} else if booked.DebtorAccount != nil {
		otherIban = booked.DebtorAccount.Iban
	}

	otherName := booked.CreditorName
	if otherName == "" {
		otherName = booked.DebtorName
	}

	return model.ImportableTransaction{
		BankReference:     booked.TransactionID,
		ExternalReference: booked.EntryReference,
		Amount:            amount,
		CurrencyCode:      currency,
		CreditDebit:       direction,
		BookedAt:          bookedAt,
		ValuedAt:          valuedAt,
		Description:       booked.UnstructuredInfo,
		OtherAmount:       amount,
		OtherCurrencyCode: currency,
		OtherIban:         otherIban,
		OtherName:         otherName,
		DomainCode:        domain,
		FamilyCode:        family,
		SubFamilyCode:     subFamily,
	}, nil
}

// BankCounterparty reports whether the movement's counterparty is the bank
// for flat transaction-type values the structured-code heuristic cannot see.
func (f *Feed) BankCounterparty(booked BookedTransaction) bool {
	_, ok := bankInformation[booked.AdditionalInformation]
	return ok
}

// Direction derives the credit/debit code of a booked transaction from its
// additional information, falling back to the payments domain which always
// reports debits. Anything else fails rather than guesses.
func Direction(booked BookedTransaction) (model.CreditDebit, error) {
	if cd, ok := model.DirectionFromInformation(booked.AdditionalInformation); ok {
		return cd, nil
	}

	domain, _, _, err := txcode.Split(booked.BankTransactionCode)
	if err != nil {
		return "", err
	}
	if txcode.Domain(domain) == txcode.DomainPayments {
		return model.Debit, nil
	}

	return "", fmt.Errorf("%w: transaction %q with information %q",
		model.ErrUnclassified, booked.TransactionID, booked.AdditionalInformation)
}
