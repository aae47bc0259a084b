package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

var (
	ErrJournalMinLines    = fmt.Errorf("%w: journal entry must have at least two lines", apperrors.ErrValidation)
	ErrDescriptionMissing = fmt.Errorf("%w: journal entry description is required", apperrors.ErrValidation)
	ErrDateMissing        = fmt.Errorf("%w: journal entry date is required", apperrors.ErrValidation)
)

// journalService manages draft journal entries.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalClock overrides the clock used for audit fields.
func WithJournalClock(clock func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.clock = clock
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines into numbered domain lines and validates each one.
func buildLines(entryID string, reqLines []dto.JournalLineRequest, now time.Time) ([]domain.JournalLine, error) {
	if len(reqLines) < 2 {
		return nil, ErrJournalMinLines
	}
	lines := make([]domain.JournalLine, len(reqLines))
	for i, l := range reqLines {
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    l.AccountID,
			LineNumber:   i + 1,
			DebitAmount:  l.Debit,
			CreditAmount: l.Credit,
			Memo:         l.Memo,
			CreatedAt:    now,
		}
		if err := lines[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}
	return lines, nil
}

func buildExtensions(reqFields []dto.ExtensionFieldRequest) ([]domain.ExtensionField, error) {
	fields := make([]domain.ExtensionField, len(reqFields))
	for i, f := range reqFields {
		version := f.Version
		if version == 0 {
			version = 1
		}
		fields[i] = domain.ExtensionField{Key: f.Key, Kind: f.Kind, Value: f.Value, Version: version}
	}
	if err := domain.ValidateExtensions(fields); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return fields, nil
}

// ensureAccountsExist rejects lines pointing at unknown accounts. Activity is checked at post time.
func (s *journalService) ensureAccountsExist(ctx context.Context, entry domain.JournalEntry) error {
	ids := entry.AccountIDs()
	found, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return nil
}

// applyTotals recomputes the stored totals. isBalanced requires exact equality: amounts are whole cents.
func applyTotals(entry *domain.JournalEntry) {
	entry.TotalDebit, entry.TotalCredit = accounting.Totals(entry.Lines)
	entry.IsBalanced = entry.TotalDebit.Equal(entry.TotalCredit)
}

func (s *journalService) CreateDraft(ctx context.Context, req dto.CreateDraftRequest, actor string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, ErrDateMissing
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionMissing
	}
	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry source %q", apperrors.ErrValidation, source)
	}

	now := s.Now()
	entryID := uuid.NewString()
	lines, err := buildLines(entryID, req.Lines, now)
	if err != nil {
		return nil, err
	}
	extensions, err := buildExtensions(req.Extensions)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   dateOnly(req.Date),
		Description: strings.TrimSpace(req.Description),
		Reference:   req.Reference,
		Status:      domain.Draft,
		Source:      source,
		SourceID:    req.SourceID,
		Version:     1,
		Extensions:  extensions,
		Lines:       lines,
		AuditFields: domain.NewAuditFields(actor, now),
	}
	applyTotals(&entry)
	if err := s.ensureAccountsExist(ctx, entry); err != nil {
		return nil, err
	}

	entry.EntryNumber, err = s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		logger.Error("Failed to allocate entry number", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}

	if err := s.journalRepo.SaveDraft(ctx, entry); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save draft", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	logger.Info("Draft journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("source", string(entry.Source)),
		slog.Bool("is_balanced", entry.IsBalanced))
	return &entry, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, *string, error) {
	if filter.Status != "" && filter.Status != domain.Draft && filter.Status != domain.Posted && filter.Status != domain.Reversed {
		return nil, nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, filter.Status)
	}
	if filter.Source != "" && !filter.Source.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown entry source %q", apperrors.ErrValidation, filter.Source)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	entries, nextToken, err := s.journalRepo.ListEntries(ctx, filter)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list journal entries")
		}
		return nil, nil, err
	}
	return entries, nextToken, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, entryID string, req dto.UpdateDraftRequest, actor string) (*domain.JournalEntry, error) {
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

	now := s.Now()
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, ErrDateMissing
		}
		entry.EntryDate = dateOnly(*req.Date)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, ErrDescriptionMissing
		}
		entry.Description = strings.TrimSpace(*req.Description)
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
	}
	if req.Lines != nil {
		if entry.Lines, err = buildLines(entry.EntryID, req.Lines, now); err != nil {
			return nil, err
		}
		applyTotals(entry)
		if err := s.ensureAccountsExist(ctx, *entry); err != nil {
			return nil, err
		}
	}
	if req.Extensions != nil {
		if entry.Extensions, err = buildExtensions(req.Extensions); err != nil {
			return nil, err
		}
	}
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor

	// entry.Version still holds the version read above; the store bumps it on success.
	if err := s.journalRepo.UpdateDraft(ctx, *entry); err != nil {
		if !errors.Is(err, apperrors.ErrConcurrentModification) {
			s.LogError(ctx, err, "Failed to update draft", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	entry.Version++

	s.LogInfo(ctx, "Draft journal entry updated", slog.String("entry_id", entryID), slog.Int64("version", entry.Version))
	return entry, nil
}

func (s *journalService) DeleteDraft(ctx context.Context, entryID string, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrInvalidState, entry.EntryNumber, entry.Status)
	}
	if err := s.journalRepo.DeleteDraft(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to delete draft", slog.String("entry_id", entryID))
		return err
	}
	s.LogInfo(ctx, "Draft journal entry deleted", slog.String("entry_id", entryID), slog.String("actor", actor))
	return nil
}
