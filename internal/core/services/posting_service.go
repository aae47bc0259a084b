package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

const reversalDescriptionFormat = "Reversal of %s: %s"

// postingService is the only path through which balances change.
type postingService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	sink        events.Sink
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithPostingClock overrides the clock used for postedAt and the default reversal date.
func WithPostingClock(clock func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		s.clock = clock
	}
}

// WithEventSink publishes entry_posted / entry_reversed after each commit.
func WithEventSink(sink events.Sink) PostingServiceOption {
	return func(s *postingService) {
		s.sink = sink
	}
}

// NewPostingService creates the posting engine.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, options ...PostingServiceOption) portssvc.PostingSvc {
	svc := &postingService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		sink:        events.NoopSink{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// Post commits a draft. Nothing is retried here: a ConcurrentModification goes back to the caller.
func (s *postingService) Post(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrInvalidState, entry.EntryNumber, entry.Status)
	}

	posted, err := s.commit(ctx, *entry, false, "", actor)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", posted.EntryID),
		slog.String("entry_number", posted.EntryNumber),
		slog.String("total", posted.TotalDebit.String()))
	s.publish(ctx, events.EntryPosted, actor, posted)
	return posted, nil
}

// Reverse posts a mirror image of a posted entry and marks the original reversed, atomically.
func (s *postingService) Reverse(ctx context.Context, entryID string, date *time.Time, actor string) (*domain.JournalEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: %s is itself a reversal", apperrors.ErrInvalidState, original.EntryNumber)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrInvalidState, original.EntryNumber, original.Status)
	}

	reversalDate := s.Today()
	if date != nil && !date.IsZero() {
		reversalDate = dateOnly(*date)
	}

	now := s.Now()
	reversalID := uuid.NewString()
	originalID := original.EntryID
	lines := make([]domain.JournalLine, len(original.Lines))
	for i, line := range original.Lines {
		swapped := line.Swapped()
		swapped.LineID = uuid.NewString()
		swapped.EntryID = reversalID
		swapped.CreatedAt = now
		lines[i] = swapped
	}

	reversal := domain.JournalEntry{
		EntryID:           reversalID,
		EntryDate:         reversalDate,
		Description:       fmt.Sprintf(reversalDescriptionFormat, original.EntryNumber, original.Description),
		Reference:         original.Reference,
		Status:            domain.Draft,
		Source:            original.Source,
		SourceID:          original.SourceID,
		ReversalOfEntryID: &originalID,
		Version:           1,
		Lines:             lines,
		AuditFields:       domain.NewAuditFields(actor, now),
	}
	reversal.EntryNumber, err = s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate entry number for reversal", slog.String("entry_id", entryID))
		return nil, err
	}

	posted, err := s.commit(ctx, reversal, true, originalID, actor)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", originalID),
		slog.String("reversal_entry_id", posted.EntryID),
		slog.String("reversal_entry_number", posted.EntryNumber))
	s.publish(ctx, events.EntryReversed, actor, posted)
	return posted, nil
}

// commit validates the entry, computes per-account deltas and hands the batch to the store.
// Inactive accounts refuse new postings but a reversal may still unwind what they already hold.
func (s *postingService) commit(ctx context.Context, entry domain.JournalEntry, insert bool, reverses string, actor string) (*domain.JournalEntry, error) {
	if len(entry.Lines) < 2 {
		return nil, ErrJournalMinLines
	}
	for _, line := range entry.Lines {
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	debit, credit := accounting.Totals(entry.Lines)
	if !debit.Equal(credit) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, debit.StringFixed(domain.CurrencyPlaces), credit.StringFixed(domain.CurrencyPlaces))
	}
	entry.TotalDebit, entry.TotalCredit, entry.IsBalanced = debit, credit, true

	ids := entry.AccountIDs()
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for posting", slog.String("entry_id", entry.EntryID))
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if !acc.IsActive && reverses == "" {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.Code)
		}
	}

	deltas, err := accounting.NetDeltas(entry.Lines, accounts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	postedAt := s.Now()
	batch := domain.PostingBatch{
		Entry:           entry,
		InsertEntry:     insert,
		Deltas:          deltas,
		ReversesEntryID: reverses,
		PostedBy:        actor,
		PostedAt:        postedAt,
	}
	if err := s.journalRepo.ApplyPosting(ctx, batch); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			s.GetLogger(ctx).Warn("Posting lost an optimistic version race", slog.String("entry_id", entry.EntryID))
		} else {
			s.LogError(ctx, err, "Failed to apply posting", slog.String("entry_id", entry.EntryID))
		}
		return nil, err
	}

	entry.Status = domain.Posted
	entry.PostedBy = actor
	entry.PostedAt = &postedAt
	entry.LastUpdatedAt = postedAt
	entry.LastUpdatedBy = actor
	if !insert {
		entry.Version++
	}
	return &entry, nil
}

func (s *postingService) publish(ctx context.Context, name, actor string, entry *domain.JournalEntry) {
	props := map[string]any{
		"entry_id":     entry.EntryID,
		"entry_number": entry.EntryNumber,
		"source":       string(entry.Source),
		"total":        entry.TotalDebit.String(),
	}
	if entry.ReversalOfEntryID != nil {
		props["reversal_of"] = *entry.ReversalOfEntryID
	}
	s.sink.Publish(ctx, events.Event{Name: name, DistinctID: actor, Properties: props})
}
