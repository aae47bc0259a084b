package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock posting writer ---

// MockPostingJournalRepository delegates to a real store but lets tests script ApplyPosting outcomes.
type MockPostingJournalRepository struct {
	mock.Mock
	portsrepo.JournalRepositoryFacade
}

var _ portsrepo.JournalRepositoryFacade = (*MockPostingJournalRepository)(nil)

func (m *MockPostingJournalRepository) ApplyPosting(ctx context.Context, batch domain.PostingBatch) error {
	args := m.Called(ctx, batch)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.JournalRepositoryFacade.ApplyPosting(ctx, batch)
}

type EntrySourceAdapterTestSuite struct {
	ledgerSuite
	cash  *domain.Account
	sales *domain.Account
	gst   *domain.Account
}

func TestEntrySourceAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(EntrySourceAdapterTestSuite))
}

func (s *EntrySourceAdapterTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.cash = s.createAccount("1111", "Cash", domain.Asset, "0")
	s.sales = s.createAccount("4101", "Sales", domain.Revenue, "0")
	s.gst = s.createAccount("2120", "GST Payable", domain.Liability, "0")
}

func (s *EntrySourceAdapterTestSuite) invoice(sourceID string, autoPost bool) dto.SubmitEntryRequest {
	return dto.SubmitEntryRequest{
		Source:      domain.SourceBilling,
		SourceID:    sourceID,
		Date:        day(2024, 3, 1),
		Description: "Invoice " + sourceID,
		AutoPost:    autoPost,
		Lines: []dto.SubmitLineRequest{
			{AccountCode: "1111", Debit: dec("118")},
			{AccountCode: "4101", Credit: dec("100")},
			{AccountCode: "2120", Credit: dec("18")},
		},
	}
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_CreatesDraftWithProvenance() {
	resp, err := s.submission.Submit(s.ctx, s.invoice("inv-1", false), testActor)
	s.Require().NoError(err)
	s.Equal(domain.Draft, resp.Status)
	s.False(resp.Duplicate)

	entry, err := s.journals.GetEntryByID(s.ctx, resp.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.SourceBilling, entry.Source)
	s.Equal("inv-1", entry.SourceID)
	s.Require().Len(entry.Lines, 3)
	s.Equal(s.cash.AccountID, entry.Lines[0].AccountID)
	s.Equal(s.gst.AccountID, entry.Lines[2].AccountID)

	s.assertBalance(s.cash.AccountID, "0")
	s.Equal([]string{events.EntrySubmitted}, s.sink.Names())
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_AutoPost() {
	resp, err := s.submission.Submit(s.ctx, s.invoice("inv-1", true), testActor)
	s.Require().NoError(err)
	s.Equal(domain.Posted, resp.Status)

	s.assertBalance(s.cash.AccountID, "118")
	s.assertBalance(s.sales.AccountID, "100")
	s.assertBalance(s.gst.AccountID, "18")
	s.Equal([]string{events.EntrySubmitted, events.EntryPosted}, s.sink.Names())
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_IsIdempotentPerSourcePair() {
	first, err := s.submission.Submit(s.ctx, s.invoice("inv-1", true), testActor)
	s.Require().NoError(err)

	again, err := s.submission.Submit(s.ctx, s.invoice("inv-1", true), testActor)
	s.Require().NoError(err)
	s.True(again.Duplicate)
	s.Equal(first.EntryID, again.EntryID)
	s.Equal(domain.Posted, again.Status)

	s.assertBalance(s.cash.AccountID, "118")

	entries, _, err := s.journals.ListEntries(s.ctx, domain.EntryFilter{Source: domain.SourceBilling})
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_ResumesPostingOfRecordedDraft() {
	draft, err := s.submission.Submit(s.ctx, s.invoice("inv-1", false), testActor)
	s.Require().NoError(err)

	resumed, err := s.submission.Submit(s.ctx, s.invoice("inv-1", true), testActor)
	s.Require().NoError(err)
	s.True(resumed.Duplicate)
	s.Equal(draft.EntryID, resumed.EntryID)
	s.Equal(domain.Posted, resumed.Status)
	s.assertBalance(s.cash.AccountID, "118")
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_WithoutSourceIDIsNeverDeduplicated() {
	req := s.invoice("", true)
	first, err := s.submission.Submit(s.ctx, req, testActor)
	s.Require().NoError(err)
	second, err := s.submission.Submit(s.ctx, req, testActor)
	s.Require().NoError(err)

	s.NotEqual(first.EntryID, second.EntryID)
	s.False(second.Duplicate)
	s.assertBalance(s.cash.AccountID, "236")
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_ReportsEveryUnknownCode() {
	req := s.invoice("inv-1", false)
	req.Lines[1].AccountCode = "9998"
	req.Lines[2].AccountCode = "9999"

	_, err := s.submission.Submit(s.ctx, req, testActor)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	s.Contains(err.Error(), "9998, 9999")
	s.Empty(s.sink.Names())
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_Validation() {
	unknown := s.invoice("inv-1", false)
	unknown.Source = "crm"
	_, err := s.submission.Submit(s.ctx, unknown, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	short := s.invoice("inv-2", false)
	short.Lines = short.Lines[:1]
	_, err = s.submission.Submit(s.ctx, short, testActor)
	s.ErrorIs(err, services.ErrJournalMinLines)

	_, err = s.submission.Submit(s.ctx, s.invoice("inv-3", false), "")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_ExpectedTotal() {
	matching := s.invoice("pay-1", false)
	total := decimal.RequireFromString("118")
	matching.ExpectedTotal = &total
	_, err := s.submission.Submit(s.ctx, matching, testActor)
	s.Require().NoError(err)

	mismatched := s.invoice("pay-2", false)
	wrong := decimal.RequireFromString("120")
	mismatched.ExpectedTotal = &wrong
	_, err = s.submission.Submit(s.ctx, mismatched, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.store.FindEntryBySource(s.ctx, domain.SourceBilling, "pay-2")
	s.ErrorIs(err, apperrors.ErrNotFound, "nothing is recorded for a rejected submission")
}

func (s *EntrySourceAdapterTestSuite) TestSubmit_UnbalancedAutoPostLeavesDraft() {
	req := s.invoice("inv-1", true)
	req.Lines[2].Credit = dec("17")

	resp, err := s.submission.Submit(s.ctx, req, testActor)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.Require().NotNil(resp, "the stored draft is reported with the error")
	s.Equal(domain.Draft, resp.Status)
	s.False(resp.Duplicate)

	entry, err := s.store.FindEntryBySource(s.ctx, domain.SourceBilling, "inv-1")
	s.Require().NoError(err)
	s.Equal(resp.EntryID, entry.EntryID)
	s.Equal(entry.EntryNumber, resp.EntryNumber)
	s.Equal(domain.Draft, entry.Status)
	s.False(entry.IsBalanced)

	// A resubmission that still cannot post points at the same draft.
	again, err := s.submission.Submit(s.ctx, req, testActor)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.Require().NotNil(again)
	s.True(again.Duplicate)
	s.Equal(resp.EntryID, again.EntryID)
	s.Equal(domain.Draft, again.Status)
}

// newRetryingAdapter builds a source adapter whose postings go through the scripted repository.
func (s *EntrySourceAdapterTestSuite) newRetryingAdapter(repo *MockPostingJournalRepository) (*events.Recorder, func(dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error)) {
	clock := func() time.Time { return s.now }
	sink := &events.Recorder{}
	journals := services.NewJournalService(repo, s.store, services.WithJournalClock(clock))
	posting := services.NewPostingService(repo, s.store, services.WithPostingClock(clock), services.WithEventSink(sink))
	adapter := services.NewEntrySourceAdapter(s.store, repo, journals, posting, services.WithPostRetry(3, time.Millisecond))
	return sink, func(req dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error) {
		return adapter.SubmitAndPost(s.ctx, req, testActor)
	}
}

func (s *EntrySourceAdapterTestSuite) TestSubmitAndPost_RetriesLostVersionRace() {
	repo := &MockPostingJournalRepository{JournalRepositoryFacade: s.store}
	repo.On("ApplyPosting", mock.Anything, mock.Anything).Return(apperrors.ErrConcurrentModification).Twice()
	repo.On("ApplyPosting", mock.Anything, mock.Anything).Return(nil)
	sink, submitAndPost := s.newRetryingAdapter(repo)

	resp, err := submitAndPost(s.invoice("inv-1", false))
	s.Require().NoError(err)
	s.Equal(domain.Posted, resp.Status)
	s.False(resp.Duplicate)

	repo.AssertNumberOfCalls(s.T(), "ApplyPosting", 3)
	s.assertBalance(s.cash.AccountID, "118")
	s.Equal([]string{events.EntryPosted}, sink.Names())

	entries, _, err := s.journals.ListEntries(s.ctx, domain.EntryFilter{})
	s.Require().NoError(err)
	s.Len(entries, 1, "the draft is recorded once")
}

func (s *EntrySourceAdapterTestSuite) TestSubmitAndPost_GivesUpAfterBoundedAttempts() {
	repo := &MockPostingJournalRepository{JournalRepositoryFacade: s.store}
	repo.On("ApplyPosting", mock.Anything, mock.Anything).Return(apperrors.ErrConcurrentModification)
	_, submitAndPost := s.newRetryingAdapter(repo)

	resp, err := submitAndPost(s.invoice("inv-1", false))
	s.ErrorIs(err, apperrors.ErrConcurrentModification)
	repo.AssertNumberOfCalls(s.T(), "ApplyPosting", 3)
	s.Require().NotNil(resp)
	s.Equal(domain.Draft, resp.Status)

	entry, err := s.store.FindEntryBySource(s.ctx, domain.SourceBilling, "inv-1")
	s.Require().NoError(err)
	s.Equal(resp.EntryID, entry.EntryID)
	s.Equal(domain.Draft, entry.Status)
	s.assertBalance(s.cash.AccountID, "0")
}

func (s *EntrySourceAdapterTestSuite) TestSubmitAndPost_DoesNotRetryOtherErrors() {
	repo := &MockPostingJournalRepository{JournalRepositoryFacade: s.store}
	repo.On("ApplyPosting", mock.Anything, mock.Anything).Return(nil)
	_, submitAndPost := s.newRetryingAdapter(repo)

	req := s.invoice("inv-1", false)
	req.Lines[0].Debit = dec("1")
	resp, err := submitAndPost(req)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.Require().NotNil(resp)
	s.Equal(domain.Draft, resp.Status)
	repo.AssertNotCalled(s.T(), "ApplyPosting", mock.Anything, mock.Anything)
}

func (s *EntrySourceAdapterTestSuite) TestSubmitAndPost_DuplicateOfPostedEntry() {
	first, err := s.submission.SubmitAndPost(s.ctx, s.invoice("inv-1", false), testActor)
	s.Require().NoError(err)
	s.Equal(domain.Posted, first.Status)

	again, err := s.submission.SubmitAndPost(s.ctx, s.invoice("inv-1", false), testActor)
	s.Require().NoError(err)
	s.True(again.Duplicate)
	s.Equal(first.EntryID, again.EntryID)
	s.assertBalance(s.cash.AccountID, "118")
}
