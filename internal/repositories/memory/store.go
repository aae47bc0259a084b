// Package memory provides an in-process implementation of the ledger repositories.
// It honours the same optimistic version contract as the postgres repositories and
// backs the test suites and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
)

const defaultPageSize = 20

// Store holds accounts and journal entries behind a single lock.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	codes    map[string]string // code -> account id
	entries  map[string]domain.JournalEntry
	entrySeq int64
}

var (
	_ repositories.AccountRepositoryFacade = (*Store)(nil)
	_ repositories.JournalRepositoryFacade = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		codes:    make(map[string]string),
		entries:  make(map[string]domain.JournalEntry),
	}
}

// NewRepositoryProvider exposes a single store through both repository facades.
func NewRepositoryProvider(store *Store) repositories.RepositoryProvider {
	return repositories.RepositoryProvider{
		AccountRepo: store,
		JournalRepo: store,
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	acc := s.accounts[id]
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			result[id] = acc
		}
	}
	return result, nil
}

func (s *Store) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		if id, ok := s.codes[code]; ok {
			result[code] = s.accounts[id]
		}
	}
	return result, nil
}

func (s *Store) ListAccounts(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if !filter.IncludeInactive && !acc.IsActive {
			continue
		}
		if filter.AccountType != "" && acc.AccountType != filter.AccountType {
			continue
		}
		if filter.ParentAccountID != nil && acc.ParentAccountID != *filter.ParentAccountID {
			continue
		}
		result = append(result, acc)
	}
	slices.SortFunc(result, func(a, b domain.Account) int { return strings.Compare(a.Code, b.Code) })
	return result, nil
}

func (s *Store) CountLinesByAccount(_ context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLinesLocked(accountID), nil
}

func (s *Store) countLinesLocked(accountID string) int {
	count := 0
	for _, e := range s.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				count++
			}
		}
	}
	return count
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account, offset *domain.OpeningOffset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[account.Code]; taken {
		return apperrors.ErrDuplicateCode
	}
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account id %s", apperrors.ErrDuplicate, account.AccountID)
	}
	if err := s.checkOffsetLocked(offset); err != nil {
		return err
	}
	s.accounts[account.AccountID] = account
	s.codes[account.Code] = account.AccountID
	s.applyOffsetLocked(offset, account.CreatedBy, account.CreatedAt)
	return nil
}

func (s *Store) checkOffsetLocked(offset *domain.OpeningOffset) error {
	if offset == nil {
		return nil
	}
	if _, ok := s.accounts[offset.AccountID]; !ok {
		return fmt.Errorf("%w: offset account %s", apperrors.ErrAccountNotFound, offset.AccountID)
	}
	return nil
}

func (s *Store) applyOffsetLocked(offset *domain.OpeningOffset, actor string, now time.Time) {
	if offset == nil {
		return
	}
	acc := s.accounts[offset.AccountID]
	acc.OpeningBalance = acc.OpeningBalance.Add(offset.Delta)
	acc.Balance = acc.Balance.Add(offset.Delta)
	acc.Version++
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = actor
	s.accounts[offset.AccountID] = acc
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	stored.Name = account.Name
	stored.Description = account.Description
	stored.IsActive = account.IsActive
	stored.ParentAccountID = account.ParentAccountID
	stored.AccountType = account.AccountType
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	s.accounts[account.AccountID] = stored
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, accountID string, offset *domain.OpeningOffset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	if s.countLinesLocked(accountID) > 0 {
		return apperrors.ErrAccountInUse
	}
	if err := s.checkOffsetLocked(offset); err != nil {
		return err
	}
	delete(s.codes, acc.Code)
	delete(s.accounts, accountID)
	s.applyOffsetLocked(offset, acc.LastUpdatedBy, acc.LastUpdatedAt)
	return nil
}

func (s *Store) ResetBalances(_ context.Context, resets []domain.BalanceReset, actor string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every version first (atomic check)
	for _, r := range resets {
		acc, ok := s.accounts[r.AccountID]
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		if acc.Version != r.ExpectedVersion {
			return apperrors.ErrConcurrentModification
		}
	}
	for _, r := range resets {
		acc := s.accounts[r.AccountID]
		acc.Balance = r.Balance
		acc.Version++
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = actor
		s.accounts[r.AccountID] = acc
	}
	return nil
}

// =============================================================================
// JOURNAL ENTRIES
// =============================================================================

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = slices.Clone(e.Lines)
	e.Extensions = slices.Clone(e.Extensions)
	return e
}

func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.ErrEntryNotFound
	}
	e = cloneEntry(e)
	return &e, nil
}

func (s *Store) FindEntryBySource(_ context.Context, source domain.EntrySource, sourceID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.findBySourceLocked(source, sourceID); ok {
		e = cloneEntry(e)
		return &e, nil
	}
	return nil, apperrors.ErrEntryNotFound
}

func (s *Store) findBySourceLocked(source domain.EntrySource, sourceID string) (domain.JournalEntry, bool) {
	if sourceID == "" {
		return domain.JournalEntry{}, false
	}
	for _, e := range s.entries {
		if e.Source == source && e.SourceID == sourceID && !e.IsReversal() {
			return e, true
		}
	}
	return domain.JournalEntry{}, false
}

// compareEntries orders entries by (entry date, created at, entry id).
func compareEntries(a, b domain.JournalEntry) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.EntryID, b.EntryID)
}

func matchesFilter(e domain.JournalEntry, filter domain.EntryFilter) bool {
	if filter.From != nil && e.EntryDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && e.EntryDate.After(*filter.To) {
		return false
	}
	if filter.Status != "" && e.Status != filter.Status {
		return false
	}
	if filter.Source != "" && e.Source != filter.Source {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(e.EntryNumber), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			return false
		}
	}
	return true
}

func (s *Store) ListEntries(_ context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, *string, error) {
	var cursor *domain.JournalEntry
	if filter.NextToken != nil && *filter.NextToken != "" {
		date, createdAt, id, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &domain.JournalEntry{EntryDate: date, EntryID: id, AuditFields: domain.AuditFields{CreatedAt: createdAt}}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	s.mu.RLock()
	matched := make([]domain.JournalEntry, 0)
	for _, e := range s.entries {
		if matchesFilter(e, filter) {
			matched = append(matched, cloneEntry(e))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.JournalEntry) int {
		if filter.Ascending {
			return compareEntries(a, b)
		}
		return compareEntries(b, a)
	})

	start := 0
	if cursor != nil {
		start = len(matched)
		for i, e := range matched {
			c := compareEntries(e, *cursor)
			if (filter.Ascending && c > 0) || (!filter.Ascending && c < 0) {
				start = i
				break
			}
		}
	}
	page := matched[start:]
	if len(page) <= limit {
		return page, nil, nil
	}
	page = page[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
	return page, &token, nil
}

func (s *Store) NextEntryNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entrySeq++
	return fmt.Sprintf("JE-%06d", s.entrySeq), nil
}

func (s *Store) SaveDraft(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	if _, exists := s.findBySourceLocked(entry.Source, entry.SourceID); exists {
		return fmt.Errorf("%w: source %s/%s already recorded", apperrors.ErrDuplicate, entry.Source, entry.SourceID)
	}
	s.entries[entry.EntryID] = cloneEntry(entry)
	return nil
}

func (s *Store) UpdateDraft(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[entry.EntryID]
	if !ok {
		return apperrors.ErrEntryNotFound
	}
	if stored.Status != domain.Draft {
		return apperrors.ErrInvalidState
	}
	if stored.Version != entry.Version {
		return apperrors.ErrConcurrentModification
	}
	updated := cloneEntry(entry)
	updated.Version = stored.Version + 1
	s.entries[entry.EntryID] = updated
	return nil
}

func (s *Store) DeleteDraft(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[entryID]
	if !ok {
		return apperrors.ErrEntryNotFound
	}
	if stored.Status != domain.Draft {
		return apperrors.ErrInvalidState
	}
	delete(s.entries, entryID)
	return nil
}

// =============================================================================
// POSTED LOG
// =============================================================================

func inRange(date time.Time, from, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

func (s *Store) SumPostedMovements(_ context.Context, from, to *time.Time) (map[string]domain.AccountMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.AccountMovement)
	for _, e := range s.entries {
		if e.Status == domain.Draft || !inRange(e.EntryDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			m := result[l.AccountID]
			m.Debit = m.Debit.Add(l.DebitAmount)
			m.Credit = m.Credit.Add(l.CreditAmount)
			result[l.AccountID] = m
		}
	}
	return result, nil
}

func (s *Store) postedLinesLocked(accountID string, from, to *time.Time) []domain.LedgerLine {
	result := make([]domain.LedgerLine, 0)
	for _, e := range s.entries {
		if e.Status == domain.Draft || !inRange(e.EntryDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID != accountID {
				continue
			}
			line := domain.LedgerLine{
				EntryID:     e.EntryID,
				EntryNumber: e.EntryNumber,
				EntryDate:   e.EntryDate,
				Description: e.Description,
				LineID:      l.LineID,
				LineNumber:  l.LineNumber,
				Debit:       l.DebitAmount,
				Credit:      l.CreditAmount,
			}
			if e.PostedAt != nil {
				line.PostedAt = *e.PostedAt
			}
			result = append(result, line)
		}
	}
	slices.SortFunc(result, func(a, b domain.LedgerLine) int { return a.Key().Compare(b.Key()) })
	return result
}

func (s *Store) SumPostedByAccount(_ context.Context, accountID string, from, to *time.Time, upTo *domain.LedgerKey) (domain.AccountMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var m domain.AccountMovement
	for _, l := range s.postedLinesLocked(accountID, from, to) {
		if upTo != nil && l.Key().Compare(*upTo) > 0 {
			break
		}
		m.Debit = m.Debit.Add(l.Debit)
		m.Credit = m.Credit.Add(l.Credit)
	}
	return m, nil
}

func (s *Store) ListPostedLinesByAccount(_ context.Context, query domain.LedgerQuery) ([]domain.LedgerLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.postedLinesLocked(query.AccountID, query.From, query.To)
	if query.After != nil {
		start, _ := slices.BinarySearchFunc(lines, *query.After, func(l domain.LedgerLine, k domain.LedgerKey) int {
			if l.Key().Compare(k) <= 0 {
				return -1
			}
			return 1
		})
		lines = lines[start:]
	}
	if query.Limit > 0 && len(lines) > query.Limit {
		lines = lines[:query.Limit]
	}
	return lines, nil
}

// ApplyPosting validates every guard before mutating anything, so a failed batch leaves no trace.
func (s *Store) ApplyPosting(_ context.Context, batch domain.PostingBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := batch.Entry
	if batch.InsertEntry {
		if _, exists := s.entries[entry.EntryID]; exists {
			return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
	} else {
		stored, ok := s.entries[entry.EntryID]
		if !ok {
			return apperrors.ErrEntryNotFound
		}
		if stored.Status != domain.Draft || stored.Version != entry.Version {
			return apperrors.ErrConcurrentModification
		}
	}
	if batch.ReversesEntryID != "" {
		original, ok := s.entries[batch.ReversesEntryID]
		if !ok {
			return apperrors.ErrEntryNotFound
		}
		if original.Status != domain.Posted || original.ReversedByEntryID != nil {
			return apperrors.ErrConcurrentModification
		}
	}
	for _, d := range batch.Deltas {
		acc, ok := s.accounts[d.AccountID]
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		if acc.Version != d.ExpectedVersion {
			return apperrors.ErrConcurrentModification
		}
	}

	// All guards passed (atomic write)
	postedAt := batch.PostedAt
	entry = cloneEntry(entry)
	entry.Status = domain.Posted
	entry.PostedBy = batch.PostedBy
	entry.PostedAt = &postedAt
	entry.LastUpdatedAt = postedAt
	entry.LastUpdatedBy = batch.PostedBy
	if !batch.InsertEntry {
		entry.Version++
	}
	s.entries[entry.EntryID] = entry

	if batch.ReversesEntryID != "" {
		original := s.entries[batch.ReversesEntryID]
		reversedBy := entry.EntryID
		original.Status = domain.Reversed
		original.ReversedByEntryID = &reversedBy
		original.Version++
		original.LastUpdatedAt = postedAt
		original.LastUpdatedBy = batch.PostedBy
		s.entries[batch.ReversesEntryID] = original
	}
	for _, d := range batch.Deltas {
		acc := s.accounts[d.AccountID]
		acc.Balance = acc.Balance.Add(d.Delta)
		acc.Version++
		acc.LastUpdatedAt = postedAt
		acc.LastUpdatedBy = batch.PostedBy
		s.accounts[d.AccountID] = acc
	}
	return nil
}
