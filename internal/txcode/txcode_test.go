package txcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		code      string
		domain    string
		family    string
		subFamily string
	}{
		{"", "", "", ""},
		{"PMNT", "PMNT", "", ""},
		{"PMNT-ICDT", "PMNT", "ICDT", ""},
		{"PMNT-ICDT-ESCT", "PMNT", "ICDT", "ESCT"},
		{"LDAS-FTLN-INTR", "LDAS", "FTLN", "INTR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			domain, family, subFamily, err := Split(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.domain, domain)
			assert.Equal(t, tt.family, family)
			assert.Equal(t, tt.subFamily, subFamily)
		})
	}
}

func TestSplit_TooManyParts(t *testing.T) {
	_, _, _, err := Split("PMNT-ICDT-ESCT-EXTRA")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected bank transaction code")
}

func TestIsBankCounterparty(t *testing.T) {
	tests := []struct {
		name      string
		domain    string
		family    string
		subFamily string
		want      bool
	}{
		{"loans and deposits", "LDAS", "FTLN", "", true},
		{"account management interest", "ACMT", "MCOP", "INTR", true},
		{"payment charges", "PMNT", "CCRD", "CHRG", true},
		{"payment fees", "PMNT", "CCRD", "FEES", true},
		{"payment commission", "PMNT", "ICDT", "COMM", true},
		{"payment interest", "PMNT", "MCOP", "INTR", true},
		{"payment credit operation without sub-family", "PMNT", "MCOP", "", true},
		{"ordinary credit transfer", "PMNT", "ICDT", "ESCT", false},
		{"card purchase", "PMNT", "CCRD", "POSD", false},
		{"foreign exchange", "FORX", "", "", false},
		{"account management without interest", "ACMT", "MCOP", "", false},
		{"no structured code", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBankCounterparty(tt.domain, tt.family, tt.subFamily))
		})
	}
}
