package camt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/txcode"
)

// Feed adapts camt report entries into importable transactions.
type Feed struct {
	// Location resolves date-only booking and value dates to instants.
	Location *time.Location
}

// Adapt maps one report entry to the feed-agnostic transaction form.
func (f *Feed) Adapt(entry Entry) (model.ImportableTransaction, error) {
	amount, err := decimal.NewFromString(entry.Amount.Value)
	if err != nil {
		return model.ImportableTransaction{}, fmt.Errorf("parsing amount %q: %w", entry.Amount.Value, err)
	}

	direction, err := direction(entry)
	if err != nil {
		return model.ImportableTransaction{}, err
	}

	bookedAt, err := ResolveDate(entry.BookingDate, f.Location)
	if err != nil {
		return model.ImportableTransaction{}, fmt.Errorf("booking date: %w", err)
	}

	var valuedAt time.Time
	if entry.ValueDate != nil {
		valuedAt, err = ResolveDate(entry.ValueDate, f.Location)
		if err != nil {
			return model.ImportableTransaction{}, fmt.Errorf("value date: %w", err)
		}
	}

	details := entry.transactionDetails()

	otherAmount := amount
	otherCurrency := entry.Amount.Currency
	if entry.AmountDetails != nil && entry.AmountDetails.InstructedAmount != nil {
		instructed := entry.AmountDetails.InstructedAmount.Amount
		otherAmount, err = decimal.NewFromString(instructed.Value)
		if err != nil {
			return model.ImportableTransaction{}, fmt.Errorf("parsing instructed amount %q: %w", instructed.Value, err)
		}
		otherCurrency = instructed.Currency
	}

	var domain, family, subFamily string
	if entry.BankTransactionCode.Domain != nil {
		domain = entry.BankTransactionCode.Domain.Code
		family = entry.BankTransactionCode.Domain.Family.Code
		subFamily = entry.BankTransactionCode.Domain.Family.SubFamilyCode
	}

	return model.ImportableTransaction{
		BankReference:     entry.ServicerReference,
		ExternalReference: details.externalReference(),
		Amount:            amount.Abs(),
		CurrencyCode:      entry.Amount.Currency,
		CreditDebit:       direction,
		BookedAt:          bookedAt,
		ValuedAt:          valuedAt,
		Description:       details.description(),
		OtherAmount:       otherAmount.Abs(),
		OtherCurrencyCode: otherCurrency,
		OtherIban:         details.otherIban(),
		OtherName:         details.otherName(),
		DomainCode:        domain,
		FamilyCode:        family,
		SubFamilyCode:     subFamily,
	}, nil
}

// BankCounterparty reports whether the entry's counterparty is the bank
// itself. The structured code heuristic in the reconciliation core covers
// camt entries; no per-entry override is needed.
func (f *Feed) BankCounterparty(Entry) bool { return false }

// direction derives the credit/debit code. The indicator element is
// authoritative; free-text entry information is the fallback for reports
// that omit it. An entry that matches no rule and is not a plain payment is
// rejected rather than guessed, since a wrong direction silently corrupts
// the ledger.
func direction(entry Entry) (model.CreditDebit, error) {
	switch entry.CreditDebitIndicator {
	case "CRDT":
		return model.Credit, nil
	case "DBIT":
		return model.Debit, nil
	}

	if cd, ok := model.DirectionFromInformation(entry.AdditionalInfo); ok {
		return cd, nil
	}

	if entry.BankTransactionCode.Domain != nil &&
		txcode.Domain(entry.BankTransactionCode.Domain.Code) == txcode.DomainPayments {
		return model.Debit, nil
	}

	return "", fmt.Errorf("%w: entry %q", model.ErrUnclassified, entry.ServicerReference)
}

// transactionDetails returns the first transaction details block of the
// entry, or zero details when the entry carries none.
func (e Entry) transactionDetails() TransactionDetails {
	for _, details := range e.Details {
		for _, tx := range details.TransactionDetails {
			return tx
		}
	}
	return TransactionDetails{}
}

func (d TransactionDetails) externalReference() string {
	if d.References == nil || d.References.Proprietary == nil {
		return ""
	}
	return d.References.Proprietary.Reference
}

func (d TransactionDetails) description() string {
	if d.Remittance == nil {
		return ""
	}
	return strings.Join(d.Remittance.Unstructured, "")
}

// otherIban prefers the creditor account, falling back to the debtor.
func (d TransactionDetails) otherIban() string {
	if d.RelatedParties == nil {
		return ""
	}
	if c := d.RelatedParties.CreditorAccount; c != nil && c.ID.Iban != "" {
		return c.ID.Iban
	}
	if db := d.RelatedParties.DebtorAccount; db != nil {
		return db.ID.Iban
	}
	return ""
}

func (d TransactionDetails) otherName() string {
	if d.RelatedParties == nil {
		return ""
	}
	if c := d.RelatedParties.Creditor; c != nil && c.Name != "" {
		return c.Name
	}
	if db := d.RelatedParties.Debtor; db != nil {
		return db.Name
	}
	return ""
}
