package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testActor = "user-1"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func debit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, Debit: dec(amount)}
}

func credit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, Credit: dec(amount)}
}

// ledgerSuite wires every service to one in-memory store with a fixed clock.
type ledgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	now   time.Time
	sink  *events.Recorder

	accounts   portssvc.AccountSvcFacade
	journals   portssvc.JournalSvcFacade
	posting    portssvc.PostingSvc
	ledger     portssvc.LedgerQuerySvc
	submission portssvc.EntrySourceSvc
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.now = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	s.sink = &events.Recorder{}
	clock := func() time.Time { return s.now }

	s.accounts = services.NewAccountService(s.store, s.store, services.WithAccountClock(clock))
	s.journals = services.NewJournalService(s.store, s.store, services.WithJournalClock(clock))
	s.posting = services.NewPostingService(s.store, s.store,
		services.WithPostingClock(clock),
		services.WithEventSink(s.sink))
	s.ledger = services.NewLedgerService(s.store, s.store, services.WithLedgerClock(clock))
	s.submission = services.NewEntrySourceAdapter(s.store, s.store, s.journals, s.posting,
		services.WithPostRetry(3, 0),
		services.WithSubmissionSink(s.sink))
}

func (s *ledgerSuite) createAccount(code, name string, accountType domain.AccountType, opening string) *domain.Account {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code:           code,
		Name:           name,
		AccountType:    accountType,
		OpeningBalance: dec(opening),
	}, testActor)
	s.Require().NoError(err)
	return acc
}

func (s *ledgerSuite) createChild(code, name string, accountType domain.AccountType, parentID string) *domain.Account {
	acc, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code:            code,
		Name:            name,
		AccountType:     accountType,
		ParentAccountID: &parentID,
	}, testActor)
	s.Require().NoError(err)
	return acc
}

func (s *ledgerSuite) draft(date time.Time, description string, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	entry, err := s.journals.CreateDraft(s.ctx, dto.CreateDraftRequest{
		Date:        date,
		Description: description,
		Lines:       lines,
	}, testActor)
	s.Require().NoError(err)
	return entry
}

func (s *ledgerSuite) post(date time.Time, description string, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	entry := s.draft(date, description, lines...)
	posted, err := s.posting.Post(s.ctx, entry.EntryID, testActor)
	s.Require().NoError(err)
	return posted
}

func (s *ledgerSuite) balance(accountID string) decimal.Decimal {
	b, err := s.accounts.GetBalance(s.ctx, accountID, nil)
	s.Require().NoError(err)
	return b
}

func (s *ledgerSuite) assertBalance(accountID, want string) {
	got := s.balance(accountID)
	s.Truef(dec(want).Equal(got), "account %s: want %s, got %s", accountID, want, got)
}

func (s *ledgerSuite) assertDecimal(want string, got decimal.Decimal, msgAndArgs ...any) {
	s.Truef(dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
