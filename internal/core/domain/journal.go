package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// EntrySource is the provenance tag of the module that produced an entry.
// The ledger stores and surfaces it, it never interprets it.
type EntrySource string

const (
	SourceManual    EntrySource = "manual"
	SourceGST       EntrySource = "gst"
	SourceBilling   EntrySource = "billing"
	SourcePayroll   EntrySource = "payroll"
	SourceExpense   EntrySource = "expense"
	SourceInventory EntrySource = "inventory"
	SourceBank      EntrySource = "bank"
)

var knownSources = map[EntrySource]struct{}{
	SourceManual:    {},
	SourceGST:       {},
	SourceBilling:   {},
	SourcePayroll:   {},
	SourceExpense:   {},
	SourceInventory: {},
	SourceBank:      {},
}

// IsValid reports whether s is a recognised producer module.
func (s EntrySource) IsValid() bool {
	_, ok := knownSources[s]
	return ok
}

// JournalEntry is the header of a double-entry journal entry plus its lines.
type JournalEntry struct {
	EntryID           string           `json:"entryID"`
	EntryNumber       string           `json:"entryNumber"` // JE-000123
	EntryDate         time.Time        `json:"entryDate"`
	Description       string           `json:"description"`
	Reference         string           `json:"reference"`
	Status            EntryStatus      `json:"status"`
	TotalDebit        decimal.Decimal  `json:"totalDebit"`
	TotalCredit       decimal.Decimal  `json:"totalCredit"`
	IsBalanced        bool             `json:"isBalanced"`
	Source            EntrySource      `json:"source"`
	SourceID          string           `json:"sourceID"`
	PostedBy          string           `json:"postedBy"`
	PostedAt          *time.Time       `json:"postedAt"`
	ReversalOfEntryID *string          `json:"reversalOfEntryID"` // Set on the reversing entry
	ReversedByEntryID *string          `json:"reversedByEntryID"` // Set on the original once reversed
	Version           int64            `json:"version"`
	Extensions        []ExtensionField `json:"extensions"`
	Lines             []JournalLine    `json:"lines"`
	AuditFields
}

// IsReversal reports whether the entry was generated to reverse another entry.
func (e JournalEntry) IsReversal() bool {
	return e.ReversalOfEntryID != nil
}

// AccountIDs returns the distinct account ids referenced by the entry's lines, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

// EntryFilter narrows journal entry listings.
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	Status    EntryStatus
	Source    EntrySource
	Search    string // Matched against entry number and description
	Ascending bool   // Default order is (date desc, createdAt desc)
	Limit     int
	NextToken *string
}

// BalanceDelta is a signed change to one account, applied only if the account is still at ExpectedVersion.
type BalanceDelta struct {
	AccountID       string
	Delta           decimal.Decimal
	ExpectedVersion int64
}

// PostingBatch is everything a single post must commit atomically.
type PostingBatch struct {
	// Entry is the entry being posted. For a plain post it is an existing draft
	// (matched on EntryID and Version); for a reversal it is inserted as-is.
	Entry       JournalEntry
	InsertEntry bool
	Deltas      []BalanceDelta
	// ReversesEntryID, when set, is flipped from POSTED to REVERSED and linked to Entry.
	ReversesEntryID string
	PostedBy        string
	PostedAt        time.Time
}
