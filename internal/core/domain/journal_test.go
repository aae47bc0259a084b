package domain_test

import (
	"testing"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestJournalLine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    domain.JournalLine
		wantErr bool
	}{
		{"debit only", domain.JournalLine{AccountID: "a", DebitAmount: amount("10.50"), CreditAmount: decimal.Zero}, false},
		{"credit only", domain.JournalLine{AccountID: "a", DebitAmount: decimal.Zero, CreditAmount: amount("0.01")}, false},
		{"trailing zeros are fine", domain.JournalLine{AccountID: "a", DebitAmount: amount("3.100"), CreditAmount: decimal.Zero}, false},
		{"both sides", domain.JournalLine{AccountID: "a", DebitAmount: amount("1"), CreditAmount: amount("1")}, true},
		{"neither side", domain.JournalLine{AccountID: "a", DebitAmount: decimal.Zero, CreditAmount: decimal.Zero}, true},
		{"negative debit", domain.JournalLine{AccountID: "a", DebitAmount: amount("-1"), CreditAmount: decimal.Zero}, true},
		{"negative credit with positive debit", domain.JournalLine{AccountID: "a", DebitAmount: amount("1"), CreditAmount: amount("-1")}, true},
		{"sub-cent", domain.JournalLine{AccountID: "a", DebitAmount: amount("0.005"), CreditAmount: decimal.Zero}, true},
		{"missing account", domain.JournalLine{DebitAmount: amount("1"), CreditAmount: decimal.Zero}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJournalLine_SwappedAndAmount(t *testing.T) {
	line := domain.JournalLine{AccountID: "a", DebitAmount: amount("25"), CreditAmount: decimal.Zero}
	assert.True(t, line.IsDebit())
	assert.True(t, amount("25").Equal(line.Amount()))

	swapped := line.Swapped()
	assert.False(t, swapped.IsDebit())
	assert.True(t, amount("25").Equal(swapped.CreditAmount))
	assert.True(t, swapped.DebitAmount.IsZero())
	assert.True(t, line.IsDebit(), "the original is untouched")
}

func TestJournalEntry_AccountIDs(t *testing.T) {
	entry := domain.JournalEntry{Lines: []domain.JournalLine{
		{AccountID: "cash"}, {AccountID: "sales"}, {AccountID: "cash"}, {AccountID: "gst"},
	}}
	assert.Equal(t, []string{"cash", "sales", "gst"}, entry.AccountIDs())

	reversalOf := "je-1"
	assert.False(t, entry.IsReversal())
	entry.ReversalOfEntryID = &reversalOf
	assert.True(t, entry.IsReversal())
}

func TestAccountType(t *testing.T) {
	debitNormal := map[domain.AccountType]bool{
		domain.Asset:           true,
		domain.Expense:         true,
		domain.CostOfGoodsSold: true,
		domain.OtherExpense:    true,
		domain.Liability:       false,
		domain.Equity:          false,
		domain.Revenue:         false,
		domain.OtherIncome:     false,
	}
	assert.Len(t, domain.AllAccountTypes, len(debitNormal))
	for _, accountType := range domain.AllAccountTypes {
		assert.True(t, accountType.IsValid())
		assert.Equal(t, debitNormal[accountType], accountType.IsDebitNormal(), string(accountType))
	}
	assert.False(t, domain.AccountType("asset").IsValid())
}

func TestEntrySource_IsValid(t *testing.T) {
	for _, s := range []domain.EntrySource{
		domain.SourceManual, domain.SourceGST, domain.SourceBilling, domain.SourcePayroll,
		domain.SourceExpense, domain.SourceInventory, domain.SourceBank,
	} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, domain.EntrySource("crm").IsValid())
	assert.False(t, domain.EntrySource("").IsValid())
}

func TestDefaultChart_ParentsComeFirst(t *testing.T) {
	seen := map[string]bool{}
	for _, entry := range domain.DefaultChart {
		assert.True(t, entry.AccountType.IsValid(), entry.Code)
		assert.False(t, seen[entry.Code], "duplicate code %s", entry.Code)
		if entry.ParentCode != "" {
			assert.True(t, seen[entry.ParentCode], "%s listed before its parent %s", entry.Code, entry.ParentCode)
		}
		seen[entry.Code] = true
	}
}
