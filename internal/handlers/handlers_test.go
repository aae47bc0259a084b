package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/SscSPs/general_ledger/internal/handlers"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine
	sink   *events.Recorder
	cash   dto.AccountResponse
	sales  dto.AccountResponse
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	s.sink = &events.Recorder{}
	container := services.NewServiceContainer(memory.NewRepositoryProvider(store), s.sink)

	s.router = gin.New()
	cfg := &config.Config{StorageDriver: config.StorageDriverMemory}
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, container, handlers.RouteDeps{}))

	s.cash = s.createAccount("1111", "Cash", domain.Asset)
	s.sales = s.createAccount("4101", "Sales", domain.Revenue)
}

func (s *HandlersTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "user-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, into any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func (s *HandlersTestSuite) createAccount(code, name string, accountType domain.AccountType) dto.AccountResponse {
	w := s.do(http.MethodPost, "/accounts", map[string]any{
		"code":        code,
		"name":        name,
		"accountType": accountType,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var acc dto.AccountResponse
	s.decode(w, &acc)
	return acc
}

func (s *HandlersTestSuite) draft(debit, credit string) dto.JournalEntryResponse {
	w := s.do(http.MethodPost, "/journals", map[string]any{
		"date":        "2024-03-01T00:00:00Z",
		"description": "Cash sale",
		"lines": []map[string]any{
			{"accountID": s.cash.AccountID, "debit": debit},
			{"accountID": s.sales.AccountID, "credit": credit},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry dto.JournalEntryResponse
	s.decode(w, &entry)
	return entry
}

func (s *HandlersTestSuite) TestHealthIsPublic() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestRequiresActor() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestCreateAccount() {
	s.Equal("1111", s.cash.Code)
	s.Equal("user-1", s.cash.CreatedBy)
	s.True(s.cash.CurrentBalance.IsZero())

	w := s.do(http.MethodPost, "/accounts", map[string]any{"code": "1111", "name": "Again", "accountType": "ASSET"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/accounts", map[string]any{"code": "9000", "name": "Odd", "accountType": "MYSTERY"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/accounts/by-code/1111", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/accounts/no-such-account", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestDeleteAccount() {
	spare := s.createAccount("6100", "Spare", domain.Expense)
	w := s.do(http.MethodDelete, "/accounts/"+spare.AccountID, nil)
	s.Equal(http.StatusNoContent, w.Code)

	s.draft("10", "10")
	w = s.do(http.MethodDelete, "/accounts/"+s.cash.AccountID, nil)
	s.Equal(http.StatusConflict, w.Code, "accounts with lines cannot be deleted")
}

func (s *HandlersTestSuite) TestPostAndReverse() {
	unbalanced := s.draft("100", "60")
	s.False(unbalanced.IsBalanced)
	s.Equal(domain.Draft, unbalanced.Status)

	w := s.do(http.MethodPost, "/journals/"+unbalanced.EntryID+"/post", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/journals/"+unbalanced.EntryID, nil)
	s.Equal(http.StatusNoContent, w.Code)

	entry := s.draft("100", "100")
	w = s.do(http.MethodPost, "/journals/"+entry.EntryID+"/post", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var posted dto.JournalEntryResponse
	s.decode(w, &posted)
	s.Equal(domain.Posted, posted.Status)
	s.Equal("user-1", posted.PostedBy)
	s.Equal([]string{events.EntryPosted}, s.sink.Names())

	w = s.do(http.MethodPost, "/journals/"+entry.EntryID+"/post", nil)
	s.Equal(http.StatusConflict, w.Code, "posted entries cannot be posted again")

	w = s.do(http.MethodPatch, "/journals/"+entry.EntryID, map[string]any{"description": "edited"})
	s.Equal(http.StatusConflict, w.Code, "posted entries are immutable")

	var balance dto.AccountBalanceResponse
	w = s.do(http.MethodGet, "/accounts/"+s.cash.AccountID+"/balance", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &balance)
	s.True(decimal.NewFromInt(100).Equal(balance.Balance), balance.Balance.String())

	w = s.do(http.MethodPost, "/journals/"+entry.EntryID+"/reverse", map[string]any{"date": "2024-03-10T00:00:00Z"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reversal dto.JournalEntryResponse
	s.decode(w, &reversal)
	s.Require().NotNil(reversal.ReversalOfEntryID)
	s.Equal(entry.EntryID, *reversal.ReversalOfEntryID)

	w = s.do(http.MethodGet, "/accounts/"+s.cash.AccountID+"/balance", nil)
	s.decode(w, &balance)
	s.True(balance.Balance.IsZero())

	w = s.do(http.MethodGet, "/journals/no-such-entry", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestSubmit() {
	req := map[string]any{
		"source":      "billing",
		"sourceId":    "INV-001",
		"date":        "2024-03-05T00:00:00Z",
		"description": "Invoice INV-001",
		"autoPost":    true,
		"lines": []map[string]any{
			{"accountCode": "1111", "debit": "50"},
			{"accountCode": "4101", "credit": "50"},
		},
	}

	w := s.do(http.MethodPost, "/entries/submit", req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var first dto.SubmitEntryResponse
	s.decode(w, &first)
	s.Equal(domain.Posted, first.Status)
	s.False(first.Duplicate)

	w = s.do(http.MethodPost, "/entries/submit", req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var again dto.SubmitEntryResponse
	s.decode(w, &again)
	s.True(again.Duplicate)
	s.Equal(first.EntryID, again.EntryID)

	req["sourceId"] = "INV-002"
	req["lines"] = []map[string]any{
		{"accountCode": "1111", "debit": "50"},
		{"accountCode": "9999", "credit": "50"},
	}
	w = s.do(http.MethodPost, "/entries/submit", req)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "9999")

	req["source"] = "crm"
	w = s.do(http.MethodPost, "/entries/submit", req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestSubmit_FailedAutoPostNamesDraft() {
	req := map[string]any{
		"source":      "billing",
		"sourceId":    "INV-077",
		"date":        "2024-03-05T00:00:00Z",
		"description": "Invoice INV-077",
		"autoPost":    true,
		"lines": []map[string]any{
			{"accountCode": "1111", "debit": "50"},
			{"accountCode": "4101", "credit": "40"},
		},
	}
	w := s.do(http.MethodPost, "/entries/submit", req)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var body struct {
		Error   string             `json:"error"`
		EntryID string             `json:"entryId"`
		Status  domain.EntryStatus `json:"status"`
	}
	s.decode(w, &body)
	s.NotEmpty(body.Error)
	s.Require().NotEmpty(body.EntryID)
	s.Equal(domain.Draft, body.Status)

	w = s.do(http.MethodGet, "/journals/"+body.EntryID, nil)
	s.Equal(http.StatusOK, w.Code, "the draft can be fetched and fixed")
}

func (s *HandlersTestSuite) TestReports() {
	entry := s.draft("250", "250")
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/journals/"+entry.EntryID+"/post", nil).Code)

	w := s.do(http.MethodGet, "/reports/trial-balance", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var tb dto.TrialBalanceResponse
	s.decode(w, &tb)
	s.True(tb.IsBalanced)
	s.True(decimal.NewFromInt(250).Equal(tb.Totals.Debit))
	s.True(tb.Totals.Debit.Equal(tb.Totals.Credit))

	w = s.do(http.MethodGet, "/reports/trial-balance?asOf=2024-02-01", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &tb)
	s.True(tb.Totals.Debit.IsZero(), "nothing was posted before March")

	w = s.do(http.MethodGet, "/reports/trial-balance?asOf=yesterday", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/reports/ledger/"+s.cash.AccountID, nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/reports/profit-and-loss?from=2024-03-01&to=2024-03-31", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/reports/balance-sheet", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/admin/balances/verify", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var check dto.BalanceCheckResponse
	s.decode(w, &check)
	s.Empty(check.Drift)
}
