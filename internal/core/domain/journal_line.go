package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places of the smallest currency unit.
const CurrencyPlaces = 2

// JournalLine is a single debit or credit against one account inside a journal entry.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	LineNumber   int             `json:"lineNumber"` // 1-based, display order only
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// IsDebit reports whether the line carries its amount on the debit side.
func (l JournalLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Swapped returns a copy of the line with debit and credit exchanged.
func (l JournalLine) Swapped() JournalLine {
	l.DebitAmount, l.CreditAmount = l.CreditAmount, l.DebitAmount
	return l
}

// Validate enforces that exactly one side is positive and the other is zero,
// and that neither side is finer than the smallest currency unit.
func (l JournalLine) Validate() error {
	if l.AccountID == "" {
		return fmt.Errorf("line %d: account is required", l.LineNumber)
	}
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return fmt.Errorf("line %d: amounts cannot be negative", l.LineNumber)
	}
	debit, credit := l.DebitAmount.IsPositive(), l.CreditAmount.IsPositive()
	if debit == credit {
		return fmt.Errorf("line %d: exactly one of debit or credit must be non-zero", l.LineNumber)
	}
	if !l.Amount().Equal(l.Amount().Round(CurrencyPlaces)) {
		return fmt.Errorf("line %d: amount %s exceeds currency precision", l.LineNumber, l.Amount().String())
	}
	return nil
}
