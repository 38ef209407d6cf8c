package model

import (
	"errors"
	"strings"
)

// ErrUnclassified is returned when the credit/debit direction of a movement
// cannot be determined from any rule. Direction is never guessed: a wrong
// direction corrupts balances silently, so the whole batch aborts instead.
var ErrUnclassified = errors.New("could not determine transaction direction")

// directionByInformation maps free-text transaction-type hints to a
// direction. The keys are the literal values banks put in the additional
// information field.
var directionByInformation = map[string]CreditDebit{
	"PURCHASE":                    Debit,
	"INWARD TRANSFER":             Credit,
	"INWARD CLEARING PAYMENT":     Credit,
	"INWARD INSTANT PAYMENT":      Credit,
	"RETURN OF PURCHASE":          Credit,
	"CARD FEE":                    Debit,
	"BALANCE ENQUIRY FEE":         Debit,
	"OUTWARD TRANSFER":            Debit,
	"OUTWARD INSTANT PAYMENT":     Debit,
	"INTEREST PAYMENT":            Debit,
	"REIMBURSEMENT OF COMMISSION": Debit,
	"PRINCIPAL REPAYMENT":         Debit,
	"CASH DEPOSIT":                Credit,
	"CASH WITHDRAWAL":             Debit,
	"LOAN DRAWDOWN":               Debit,
}

// DirectionFromInformation classifies the credit/debit direction from a
// free-text transaction-type hint. Unknown values starting with "INWARD" or
// "OUTWARD" still classify; anything else reports no match.
func DirectionFromInformation(information string) (CreditDebit, bool) {
	if cd, ok := directionByInformation[information]; ok {
		return cd, true
	}

	switch {
	case hasFold(information, "INWARD"):
		return Credit, true
	case hasFold(information, "OUTWARD"):
		return Debit, true
	}
	return "", false
}

func hasFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
