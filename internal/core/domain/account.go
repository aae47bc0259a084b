package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset           AccountType = "ASSET"
	Liability       AccountType = "LIABILITY"
	Equity          AccountType = "EQUITY"
	Revenue         AccountType = "REVENUE"
	Expense         AccountType = "EXPENSE"
	CostOfGoodsSold AccountType = "COST_OF_GOODS_SOLD"
	OtherIncome     AccountType = "OTHER_INCOME"
	OtherExpense    AccountType = "OTHER_EXPENSE"
)

// AllAccountTypes lists every supported account type in chart order.
var AllAccountTypes = []AccountType{
	Asset, Liability, Equity, Revenue, Expense, CostOfGoodsSold, OtherIncome, OtherExpense,
}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	for _, known := range AllAccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsDebitNormal reports whether a debit increases the balance of an account of this type.
func (t AccountType) IsDebitNormal() bool {
	switch t {
	case Asset, Expense, CostOfGoodsSold, OtherExpense:
		return true
	}
	return false
}

// Account represents a ledger account in the chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"` // Unique human code, e.g. "1110"
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	ParentAccountID string          `json:"parentAccountID"` // Empty for root accounts
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"` // Materialized current balance
	Version         int64           `json:"version"` // Bumped on every balance mutation
	AuditFields
}

// AccountFilter narrows ListAccounts results.
type AccountFilter struct {
	AccountType     AccountType
	ParentAccountID *string
	IncludeInactive bool
}

// AccountMovement is the posted debit/credit volume an account saw over some window.
type AccountMovement struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// BalanceReset overwrites the cached balance of one account, guarded by its version.
type BalanceReset struct {
	AccountID       string
	Balance         decimal.Decimal
	ExpectedVersion int64
}

// OpeningOffset is the counter-entry for an account's opening balance. Delta is added to both
// the opening and the current balance of the offset account, so the ledger stays balanced.
type OpeningOffset struct {
	AccountID string
	Delta     decimal.Decimal
}

// Negated undoes the offset, e.g. when the account carrying the opening balance is deleted.
func (o OpeningOffset) Negated() OpeningOffset {
	return OpeningOffset{AccountID: o.AccountID, Delta: o.Delta.Neg()}
}

// BalanceDrift describes an account whose cached balance disagrees with a replay of the log.
type BalanceDrift struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Cached    decimal.Decimal `json:"cached"`
	Replayed  decimal.Decimal `json:"replayed"`
}
