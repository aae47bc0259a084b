package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves balance queries and financial reports.
type reportingHandler struct {
	ledgerService portssvc.LedgerQuerySvc
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(ls portssvc.LedgerQuerySvc) *reportingHandler {
	return &reportingHandler{
		ledgerService: ls,
	}
}

// registerReportingRoutes registers report routes.
func registerReportingRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerQuerySvc) {
	h := newReportingHandler(ledgerService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/ledger/:accountID", h.getAccountLedger)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
		reports.GET("/account-tree", h.getAccountTree)
	}
}

// getTrialBalance godoc
// @Summary Get trial balance
// @Description Every active account with its balance on its normal side, plus column totals.
// @Tags reports
// @Produce json
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to now"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	tb, err := h.ledgerService.TrialBalance(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}
	if !tb.IsBalanced {
		logger.Error("Trial balance does not balance",
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// getAccountLedger godoc
// @Summary Get an account ledger
// @Description Posted lines touching the account with a running balance. Restart with nextToken.
// @Tags reports
// @Produce json
// @Param accountID path string true "Account ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Page size (default 50, max 500)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.AccountLedgerPageResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /reports/ledger/{accountID} [get]
func (h *reportingHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("accountID")))
	var params dto.AccountLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.ledgerService.AccountLedger(c.Request.Context(), c.Param("accountID"), params.From, params.To, params.NextToken, params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to generate account ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountLedgerPageResponse(page))
}

// getBalanceSheet godoc
// @Summary Get balance sheet
// @Tags reports
// @Produce json
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to now"
// @Success 200 {object} dto.BalanceSheetResponse
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.ledgerService.BalanceSheet(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}

// getProfitAndLoss godoc
// @Summary Get profit and loss report
// @Tags reports
// @Produce json
// @Param from query string true "From date (YYYY-MM-DD)"
// @Param to query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.ledgerService.ProfitAndLoss(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getAccountTree godoc
// @Summary Get the chart of accounts with rolled-up balances
// @Tags reports
// @Produce json
// @Param asOf query string false "Date (YYYY-MM-DD), defaults to now"
// @Success 200 {array} domain.AccountTreeNode
// @Security BearerAuth
// @Router /reports/account-tree [get]
func (h *reportingHandler) getAccountTree(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	tree, err := h.ledgerService.AccountBalanceTree(c.Request.Context(), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to build account tree")
		return
	}
	c.JSON(http.StatusOK, tree)
}
