package services

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines draft lifecycle operations
type JournalWriterSvc interface {
	// CreateDraft stores a new draft. Unbalanced drafts are allowed; malformed lines are not.
	CreateDraft(ctx context.Context, req dto.CreateDraftRequest, actor string) (*domain.JournalEntry, error)

	// UpdateDraft patches a draft. Any other status yields apperrors.ErrInvalidState.
	UpdateDraft(ctx context.Context, entryID string, req dto.UpdateDraftRequest, actor string) (*domain.JournalEntry, error)

	// DeleteDraft removes a draft and its lines.
	DeleteDraft(ctx context.Context, entryID string, actor string) error
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// PostingSvc moves entries from draft to posted and from posted to reversed.
type PostingSvc interface {
	// Post commits a balanced draft and applies its balance effects atomically.
	Post(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// Reverse posts a mirror entry dated at date (today, UTC, when nil) and marks the original reversed.
	Reverse(ctx context.Context, entryID string, date *time.Time, actor string) (*domain.JournalEntry, error)
}

// LedgerQuerySvc answers balance questions from the cache or by replaying the posted log.
type LedgerQuerySvc interface {
	TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error)
	AccountLedger(ctx context.Context, accountID string, from, to *time.Time, nextToken *string, limit int) (*domain.AccountLedgerPage, error)
	BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error)
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)
	AccountBalanceTree(ctx context.Context, asOf *time.Time) ([]domain.AccountTreeNode, error)
}

// EntrySourceSvc is the inbound adapter producer modules use to record their entries.
type EntrySourceSvc interface {
	// Submit resolves account codes, records provenance and creates a draft (posting it when asked).
	// When the draft is stored but the post fails, the draft's response is returned alongside the error.
	Submit(ctx context.Context, req dto.SubmitEntryRequest, actor string) (*dto.SubmitEntryResponse, error)

	// SubmitAndPost submits and posts, retrying the post a bounded number of times on concurrent modification.
	// A post that still fails returns the stored draft's response together with the error.
	SubmitAndPost(ctx context.Context, req dto.SubmitEntryRequest, actor string) (*dto.SubmitEntryResponse, error)
}
