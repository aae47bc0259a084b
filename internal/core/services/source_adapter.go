package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

const (
	defaultPostAttempts = 3
	defaultRetryBackoff = 20 * time.Millisecond
)

// entrySourceAdapter turns producer submissions (account codes, provenance) into ledger drafts and postings.
type entrySourceAdapter struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	journalRepo  portsrepo.JournalReader
	journals     portssvc.JournalWriterSvc
	posting      portssvc.PostingSvc
	sink         events.Sink
	postAttempts int
	retryBackoff time.Duration
}

// EntrySourceOption is a functional option for configuring the source adapter
type EntrySourceOption func(*entrySourceAdapter)

// WithPostRetry bounds how often SubmitAndPost re-attempts a post that lost a version race.
func WithPostRetry(attempts int, step time.Duration) EntrySourceOption {
	return func(a *entrySourceAdapter) {
		if attempts > 0 {
			a.postAttempts = attempts
		}
		a.retryBackoff = step
	}
}

// WithSubmissionSink publishes entry_submitted for every newly recorded submission.
func WithSubmissionSink(sink events.Sink) EntrySourceOption {
	return func(a *entrySourceAdapter) {
		a.sink = sink
	}
}

// NewEntrySourceAdapter creates the inbound adapter used by producer modules.
func NewEntrySourceAdapter(accountRepo portsrepo.AccountReader, journalRepo portsrepo.JournalReader, journals portssvc.JournalWriterSvc, posting portssvc.PostingSvc, options ...EntrySourceOption) portssvc.EntrySourceSvc {
	a := &entrySourceAdapter{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		journals:     journals,
		posting:      posting,
		sink:         events.NoopSink{},
		postAttempts: defaultPostAttempts,
		retryBackoff: defaultRetryBackoff,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

var _ portssvc.EntrySourceSvc = (*entrySourceAdapter)(nil)

func toSubmitResponse(entry *domain.JournalEntry, duplicate bool) *dto.SubmitEntryResponse {
	return &dto.SubmitEntryResponse{
		EntryID:     entry.EntryID,
		EntryNumber: entry.EntryNumber,
		Status:      entry.Status,
		Duplicate:   duplicate,
	}
}

// Submit records a producer's entry. A (source, sourceId) pair seen before returns the existing entry;
// if that entry is still a draft and autoPost is set, posting is attempted again.
func (a *entrySourceAdapter) Submit(ctx context.Context, req dto.SubmitEntryRequest, actor string) (*dto.SubmitEntryResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry source %q", apperrors.ErrValidation, req.Source)
	}
	if len(req.Lines) < 2 {
		return nil, ErrJournalMinLines
	}

	if existing, err := a.findExisting(ctx, req); err != nil || existing != nil {
		if err != nil {
			return nil, err
		}
		return a.resume(ctx, existing, req.AutoPost, actor)
	}

	if err := checkExpectedTotal(req); err != nil {
		return nil, err
	}
	lines, err := a.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	draft, err := a.journals.CreateDraft(ctx, dto.CreateDraftRequest{
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Source:      req.Source,
		SourceID:    req.SourceID,
		Lines:       lines,
	}, actor)
	if err != nil {
		// Lost a race with an identical submission: hand back the winner.
		if errors.Is(err, apperrors.ErrDuplicate) && req.SourceID != "" {
			existing, findErr := a.findExisting(ctx, req)
			if findErr == nil && existing != nil {
				return a.resume(ctx, existing, req.AutoPost, actor)
			}
		}
		return nil, err
	}

	a.LogInfo(ctx, "Submission recorded",
		slog.String("source", string(req.Source)),
		slog.String("source_id", req.SourceID),
		slog.String("entry_id", draft.EntryID))
	a.sink.Publish(ctx, events.Event{
		Name:       events.EntrySubmitted,
		DistinctID: actor,
		Properties: map[string]any{"entry_id": draft.EntryID, "source": string(req.Source), "source_id": req.SourceID},
	})

	if !req.AutoPost {
		return toSubmitResponse(draft, false), nil
	}
	posted, err := a.posting.Post(ctx, draft.EntryID, actor)
	if err != nil {
		// The draft stays recorded; the producer gets its id to retry or inspect.
		return toSubmitResponse(draft, false), err
	}
	return toSubmitResponse(posted, false), nil
}

func (a *entrySourceAdapter) findExisting(ctx context.Context, req dto.SubmitEntryRequest) (*domain.JournalEntry, error) {
	if req.SourceID == "" {
		return nil, nil
	}
	existing, err := a.journalRepo.FindEntryBySource(ctx, req.Source, req.SourceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return existing, err
}

func (a *entrySourceAdapter) resume(ctx context.Context, existing *domain.JournalEntry, autoPost bool, actor string) (*dto.SubmitEntryResponse, error) {
	a.LogDebug(ctx, "Submission already recorded",
		slog.String("source", string(existing.Source)),
		slog.String("source_id", existing.SourceID),
		slog.String("entry_id", existing.EntryID))
	if !autoPost || existing.Status != domain.Draft {
		return toSubmitResponse(existing, true), nil
	}
	posted, err := a.posting.Post(ctx, existing.EntryID, actor)
	if err != nil {
		return toSubmitResponse(existing, true), err
	}
	return toSubmitResponse(posted, true), nil
}

// checkExpectedTotal compares the producer's own total with the submitted debits when one is supplied.
func checkExpectedTotal(req dto.SubmitEntryRequest) error {
	if req.ExpectedTotal == nil {
		return nil
	}
	debits := decimal.Zero
	for _, l := range req.Lines {
		debits = debits.Add(l.Debit)
	}
	if !debits.Equal(*req.ExpectedTotal) {
		return fmt.Errorf("%w: submitted debits %s do not match the producer total %s",
			apperrors.ErrValidation, debits.String(), req.ExpectedTotal.String())
	}
	return nil
}

// resolveLines maps account codes to ids. Every unknown code is reported at once.
func (a *entrySourceAdapter) resolveLines(ctx context.Context, reqLines []dto.SubmitLineRequest) ([]dto.JournalLineRequest, error) {
	codes := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		if !slices.Contains(codes, l.AccountCode) {
			codes = append(codes, l.AccountCode)
		}
	}
	accounts, err := a.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		a.LogError(ctx, err, "Failed to resolve account codes")
		return nil, err
	}
	var missing []string
	for _, code := range codes {
		if _, ok := accounts[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: codes %s", apperrors.ErrAccountNotFound, strings.Join(missing, ", "))
	}

	lines := make([]dto.JournalLineRequest, len(reqLines))
	for i, l := range reqLines {
		lines[i] = dto.JournalLineRequest{
			AccountID: accounts[l.AccountCode].AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return lines, nil
}

// SubmitAndPost is the caller-side retry policy: the engine itself never retries.
// The draft is recorded once and only the post is re-attempted after a lost version race.
func (a *entrySourceAdapter) SubmitAndPost(ctx context.Context, req dto.SubmitEntryRequest, actor string) (*dto.SubmitEntryResponse, error) {
	req.AutoPost = false
	submitted, err := a.Submit(ctx, req, actor)
	if err != nil {
		return submitted, err
	}
	if submitted.Status != domain.Draft {
		return submitted, nil
	}

	var (
		posted  *domain.JournalEntry
		attempt int
	)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: a.retryBackoff}, uint64(a.postAttempts-1)),
		ctx,
	)
	err = backoff.Retry(func() error {
		attempt++
		entry, err := a.posting.Post(ctx, submitted.EntryID, actor)
		if err == nil {
			posted = entry
			return nil
		}
		if !errors.Is(err, apperrors.ErrConcurrentModification) {
			return backoff.Permanent(err)
		}
		a.GetLogger(ctx).Warn("Post lost a version race",
			slog.Int("attempt", attempt),
			slog.String("entry_id", submitted.EntryID))
		return err
	}, policy)
	if err != nil {
		return submitted, err
	}
	return toSubmitResponse(posted, submitted.Duplicate), nil
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.step * time.Duration(b.n)
}

func (b *linearBackOff) Reset() { b.n = 0 }
