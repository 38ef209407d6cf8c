// Package camt reads ISO 20022 bank-to-customer account reports (camt.053
// family) and adapts their entries into importable transactions.
package camt

import "encoding/xml"

// Document is the root of a BankToCustomerAccountReportV02 message.
type Document struct {
	XMLName xml.Name      `xml:"Document"`
	Report  AccountReport `xml:"BkToCstmrAcctRpt"`
}

// AccountReport is the BkToCstmrAcctRpt element: a group header plus one or
// more per-account reports.
type AccountReport struct {
	GroupHeader GroupHeader `xml:"GrpHdr"`
	Reports     []Report    `xml:"Rpt"`
}

// GroupHeader identifies the message itself.
type GroupHeader struct {
	MessageID string `xml:"MsgId"`
	CreatedAt string `xml:"CreDtTm"`
}

// Report describes the movements of a single account.
type Report struct {
	ID                  string               `xml:"Id"`
	Account             Account              `xml:"Acct"`
	TransactionsSummary *TransactionsSummary `xml:"TxsSummry"`
	Entries             []Entry              `xml:"Ntry"`
}

// Account is the account the report describes, with its servicing bank.
type Account struct {
	ID       AccountID `xml:"Id"`
	Currency string    `xml:"Ccy"`
	Servicer *Servicer `xml:"Svcr"`
}

// AccountID holds the account identification choice; only IBAN is consumed.
type AccountID struct {
	Iban string `xml:"IBAN"`
}

// Servicer is the financial institution servicing the account.
type Servicer struct {
	Institution Institution `xml:"FinInstnId"`
}

// Institution identifies a financial institution by name and BIC.
type Institution struct {
	Bic  string `xml:"BIC"`
	Name string `xml:"Nm"`
}

// TransactionsSummary carries per-report entry totals.
type TransactionsSummary struct {
	TotalCreditEntries *EntriesSummary `xml:"TtlCdtNtries"`
	TotalDebitEntries  *EntriesSummary `xml:"TtlDbtNtries"`
}

// EntriesSummary is the count and sum of entries in one direction.
type EntriesSummary struct {
	NumberOfEntries string `xml:"NbOfNtries"`
	Sum             string `xml:"Sum"`
}

// Entry is one ReportEntry2: a single movement on the account.
type Entry struct {
	Amount               Amount         `xml:"Amt"`
	CreditDebitIndicator string         `xml:"CdtDbtInd"`
	Status               string         `xml:"Sts"`
	BookingDate          *DateChoice    `xml:"BookgDt"`
	ValueDate            *DateChoice    `xml:"ValDt"`
	ServicerReference    string         `xml:"AcctSvcrRef"`
	BankTransactionCode  BankCode       `xml:"BkTxCd"`
	AmountDetails        *AmountDetails `xml:"AmtDtls"`
	AdditionalInfo       string         `xml:"AddtlNtryInf"`
	Details              []EntryDetails `xml:"NtryDtls"`
}

// Amount is a currency-and-amount value; the magnitude stays textual until
// the adapter parses it.
type Amount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

// DateChoice is the ISO 20022 date-or-datetime choice.
type DateChoice struct {
	Date     string `xml:"Dt"`
	DateTime string `xml:"DtTm"`
}

// BankCode is the structured domain/family/sub-family transaction code with
// an optional proprietary fallback.
type BankCode struct {
	Domain      *CodeDomain      `xml:"Domn"`
	Proprietary *ProprietaryCode `xml:"Prtry"`
}

// CodeDomain is the structured part of a bank transaction code.
type CodeDomain struct {
	Code   string     `xml:"Cd"`
	Family CodeFamily `xml:"Fmly"`
}

// CodeFamily is the family and sub-family of a bank transaction code.
type CodeFamily struct {
	Code          string `xml:"Cd"`
	SubFamilyCode string `xml:"SubFmlyCd"`
}

// ProprietaryCode is a bank-specific transaction code.
type ProprietaryCode struct {
	Code   string `xml:"Cd"`
	Issuer string `xml:"Issr"`
}

// AmountDetails carries the instructed amount of the other leg.
type AmountDetails struct {
	InstructedAmount *InstructedAmount `xml:"InstdAmt"`
}

// InstructedAmount is the originally instructed currency and amount.
type InstructedAmount struct {
	Amount Amount `xml:"Amt"`
}

// EntryDetails groups the transaction details of an entry.
type EntryDetails struct {
	TransactionDetails []TransactionDetails `xml:"TxDtls"`
}

// TransactionDetails holds references, related parties and remittance
// information of a movement.
type TransactionDetails struct {
	References     *References     `xml:"Refs"`
	RelatedParties *RelatedParties `xml:"RltdPties"`
	Remittance     *Remittance     `xml:"RmtInf"`
}

// References holds the transaction reference choice; only the proprietary
// (inter-bank) reference is consumed.
type References struct {
	Proprietary *ProprietaryReference `xml:"Prtry"`
}

// ProprietaryReference is a bank-specific transaction reference.
type ProprietaryReference struct {
	Type      string `xml:"Tp"`
	Reference string `xml:"Ref"`
}

// RelatedParties names the debtor and creditor of a movement with their
// accounts.
type RelatedParties struct {
	Debtor          *Party        `xml:"Dbtr"`
	DebtorAccount   *PartyAccount `xml:"DbtrAcct"`
	Creditor        *Party        `xml:"Cdtr"`
	CreditorAccount *PartyAccount `xml:"CdtrAcct"`
}

// Party names one side of a movement.
type Party struct {
	Name string `xml:"Nm"`
}

// PartyAccount identifies one side's account.
type PartyAccount struct {
	ID AccountID `xml:"Id"`
}

// Remittance is the unstructured remittance information of a movement.
type Remittance struct {
	Unstructured []string `xml:"Ustrd"`
}
