package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines ordered by line number.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the non-reversal entry recorded for a producer's (source, sourceID) pair.
	FindEntryBySource(ctx context.Context, source domain.EntrySource, sourceID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries (with lines) matching the filter using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations on draft entries
type JournalWriter interface {
	// NextEntryNumber reserves the next sequential entry number (JE-000123).
	NextEntryNumber(ctx context.Context) (string, error)

	// SaveDraft persists a new draft and its lines.
	SaveDraft(ctx context.Context, entry domain.JournalEntry) error

	// UpdateDraft replaces a draft's header and lines if it is still a draft at entry.Version.
	// The stored version is incremented.
	UpdateDraft(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraft removes a draft and its lines.
	DeleteDraft(ctx context.Context, entryID string) error
}

// PostedLineReader reads the append-only log of lines belonging to non-draft entries.
// Both POSTED and REVERSED entries count: a reversed original still had its effect.
type PostedLineReader interface {
	// SumPostedMovements returns per-account debit/credit totals for entries dated within [from, to].
	// A nil bound is open.
	SumPostedMovements(ctx context.Context, from, to *time.Time) (map[string]domain.AccountMovement, error)

	// SumPostedByAccount totals one account's posted lines dated within [from, to] that sort
	// at or before upTo in ledger order. A nil bound is open.
	SumPostedByAccount(ctx context.Context, accountID string, from, to *time.Time, upTo *domain.LedgerKey) (domain.AccountMovement, error)

	// ListPostedLinesByAccount returns the account's posted lines selected by the query,
	// ordered by (entry date, posted at, entry number, line number).
	ListPostedLinesByAccount(ctx context.Context, query domain.LedgerQuery) ([]domain.LedgerLine, error)
}

// PostingWriter commits a posting as one atomic unit.
type PostingWriter interface {
	// ApplyPosting flips (or inserts) the posted entry, optionally marks the reversed original,
	// and applies every balance delta. Any version mismatch rolls the whole batch back
	// with apperrors.ErrConcurrentModification.
	ApplyPosting(ctx context.Context, batch domain.PostingBatch) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	PostedLineReader
	PostingWriter
}
