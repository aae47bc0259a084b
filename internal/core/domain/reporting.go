package domain

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalance is the full report with column totals.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// LedgerLine is one posted line touching an account, with the balance after it.
type LedgerLine struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	LineID         string          `json:"lineID"`
	LineNumber     int             `json:"lineNumber"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	PostedAt       time.Time       `json:"postedAt"`
}

// Key returns the line's position in its account ledger.
func (l LedgerLine) Key() LedgerKey {
	return LedgerKey{EntryDate: l.EntryDate, PostedAt: l.PostedAt, EntryNumber: l.EntryNumber, LineNumber: l.LineNumber}
}

// LedgerKey orders an account's posted lines: entry date, then posting time, entry number and line number.
type LedgerKey struct {
	EntryDate   time.Time
	PostedAt    time.Time
	EntryNumber string
	LineNumber  int
}

// Compare returns -1, 0 or +1 as k sorts before, with or after other.
func (k LedgerKey) Compare(other LedgerKey) int {
	return cmp.Or(
		k.EntryDate.Compare(other.EntryDate),
		k.PostedAt.Compare(other.PostedAt),
		strings.Compare(k.EntryNumber, other.EntryNumber),
		cmp.Compare(k.LineNumber, other.LineNumber),
	)
}

// LedgerQuery selects a window of one account's posted lines in ledger order.
type LedgerQuery struct {
	AccountID string
	From      *time.Time // Inclusive entry date bounds; nil is open
	To        *time.Time
	After     *LedgerKey // Exclusive resume point
	Limit     int        // Zero means no limit
}

// AccountLedgerPage is a restartable slice of an account's posted history.
type AccountLedgerPage struct {
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	StartBalance decimal.Decimal `json:"startBalance"`
	Lines        []LedgerLine    `json:"lines"`
	NextToken    *string         `json:"nextToken"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report
type PAndLReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`  // REVENUE and OTHER_INCOME
	Expenses      []AccountAmount `json:"expenses"` // EXPENSE, COST_OF_GOODS_SOLD and OTHER_EXPENSE
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	CurrentEarnings  decimal.Decimal `json:"currentEarnings"` // Unclosed income minus expenses, part of equity
}

// AccountTreeNode is an account's own balance plus the rolled-up balance of its subtree.
type AccountTreeNode struct {
	AccountID       string            `json:"accountID"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	AccountType     AccountType       `json:"accountType"`
	Balance         decimal.Decimal   `json:"balance"`
	RolledUpBalance decimal.Decimal   `json:"rolledUpBalance"`
	Children        []AccountTreeNode `json:"children"`
}
