// Package txcode models the ISO 20022 bank transaction code structure
// (domain / family / sub-family) and classifies which movements have the
// financial institution itself as their counterparty.
package txcode

import (
	"fmt"
	"strings"
)

// Domain is the highest definition level: the business area of a movement.
type Domain string

// Domains seen in account reports.
const (
	DomainPayments          Domain = "PMNT"
	DomainCash              Domain = "CAMT"
	DomainAccountManagement Domain = "ACMT"
	DomainLoansAndDeposits  Domain = "LDAS"
	DomainForeignExchange   Domain = "FORX"
	DomainTradeServices     Domain = "TRAD"
	DomainSecurities        Domain = "SECU"
	DomainExtended          Domain = "XTND"
)

// Family is the medium definition level, e.g. the type of payment.
type Family string

// Families referenced by the bank-counterparty rules.
const (
	FamilyNotAvailable            Family = "NTAV"
	FamilyOther                   Family = "OTHR"
	FamilyCreditOperation         Family = "MCOP"
	FamilyDebitOperation          Family = "MDOP"
	FamilyReceivedCreditTransfers Family = "RCDT"
	FamilyIssuedCreditTransfers   Family = "ICDT"
	FamilyCustomerCardTransaction Family = "CCRD"
)

// SubFamily is the lowest definition level.
type SubFamily string

// Sub-families referenced by the bank-counterparty rules.
const (
	SubFamilyNotAvailable SubFamily = "NTAV"
	SubFamilyInterest     SubFamily = "INTR"
	SubFamilyCharges      SubFamily = "CHRG"
	SubFamilyCommission   SubFamily = "COMM"
	SubFamilyFees         SubFamily = "FEES"
)

// bankSubFamilies are the payment sub-families whose counterparty is always
// the bank itself (charges, fees, commission, interest).
var bankSubFamilies = map[SubFamily]struct{}{
	SubFamilyCharges:    {},
	SubFamilyCommission: {},
	SubFamilyFees:       {},
	SubFamilyInterest:   {},
}

// IsBankCounterparty reports whether a movement with the given code triple
// has the bank as its counterparty rather than a third party. An empty
// domain code means the feed supplied no structured code and classifies
// nothing.
func IsBankCounterparty(domain, family, subFamily string) bool {
	if strings.TrimSpace(domain) == "" {
		return false
	}

	d := Domain(domain)
	f := FamilyOther
	if strings.TrimSpace(family) != "" {
		f = Family(family)
	}
	sf := SubFamilyNotAvailable
	if strings.TrimSpace(subFamily) != "" {
		sf = SubFamily(subFamily)
	}

	if d == DomainLoansAndDeposits {
		return true
	}

	if d == DomainAccountManagement && f == FamilyCreditOperation && sf == SubFamilyInterest {
		return true
	}

	if d != DomainPayments {
		return false
	}

	if _, ok := bankSubFamilies[sf]; ok {
		return true
	}
	return f == FamilyCreditOperation && sf == SubFamilyNotAvailable
}

// Split parses a dash-separated bank transaction code ("PMNT-ICDT-ESCT")
// into its up-to-three parts. An empty input yields empty parts.
func Split(code string) (domain, family, subFamily string, err error) {
	if strings.TrimSpace(code) == "" {
		return "", "", "", nil
	}

	parts := strings.Split(code, "-")
	switch len(parts) {
	case 1:
		return parts[0], "", "", nil
	case 2:
		return parts[0], parts[1], "", nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", fmt.Errorf("unexpected bank transaction code structure: %q", code)
	}
}
