package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID           string          `db:"entry_id"`
	EntryNumber       string          `db:"entry_number"`
	EntryDate         time.Time       `db:"entry_date"`
	Description       string          `db:"description"`
	Reference         string          `db:"reference"`
	Status            string          `db:"status"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	IsBalanced        bool            `db:"is_balanced"`
	Source            string          `db:"source"`
	SourceID          string          `db:"source_id"`
	PostedBy          *string         `db:"posted_by"`
	PostedAt          *time.Time      `db:"posted_at"`
	ReversalOfEntryID *string         `db:"reversal_of_entry_id"`
	ReversedByEntryID *string         `db:"reversed_by_entry_id"`
	Version           int64           `db:"version"`
	AuditFields
}

// JournalLine is a row of the journal_lines table.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	LineNumber   int             `db:"line_number"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Memo         string          `db:"memo"`
	CreatedAt    time.Time       `db:"created_at"`
}

// ExtensionField is a row of the journal_entry_extensions side table.
type ExtensionField struct {
	EntryID string `db:"entry_id"`
	Key     string `db:"field_key"`
	Kind    string `db:"field_kind"`
	Value   string `db:"field_value"`
	Version int    `db:"field_version"`
}

// LedgerLine is a posted line joined with its entry header.
type LedgerLine struct {
	EntryID     string          `db:"entry_id"`
	EntryNumber string          `db:"entry_number"`
	EntryDate   time.Time       `db:"entry_date"`
	Description string          `db:"description"`
	PostedAt    time.Time       `db:"posted_at"`
	LineID      string          `db:"line_id"`
	LineNumber  int             `db:"line_number"`
	Debit       decimal.Decimal `db:"debit_amount"`
	Credit      decimal.Decimal `db:"credit_amount"`
}
