package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	ParentAccountID *string         `db:"parent_account_id"` // Nullable
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	IsSystemAccount bool            `db:"is_system_account"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	Balance         decimal.Decimal `db:"balance"` // Materialized, see journal_lines for the source of truth
	Version         int64           `db:"version"`
	AuditFields
}
