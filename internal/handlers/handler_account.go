package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.POST("/seed", h.seedDefaultChart)
		accounts.GET("", h.listAccounts)
		accounts.GET("/by-code/:code", h.getAccountByCode)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PATCH("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deleteAccount)
		accounts.GET("/:accountID/balance", h.getBalance)
	}

	admin := rg.Group("/admin/balances")
	{
		admin.GET("/verify", h.verifyBalances)
		admin.POST("/rebuild", h.rebuildBalances)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Registers an account in the chart. The current balance starts at the opening balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input or parent"
// @Failure 409 {object} map[string]string "Duplicate code"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// seedDefaultChart godoc
// @Summary Seed the standard chart of accounts
// @Description Creates the system chart. Codes that already exist are skipped.
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.SeedChartResponse
// @Security BearerAuth
// @Router /accounts/seed [post]
func (h *accountHandler) seedDefaultChart(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	created, err := h.accountService.SeedDefaultChart(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to seed chart of accounts")
		return
	}
	c.JSON(http.StatusOK, dto.SeedChartResponse{Created: dto.ToListAccountResponse(created)})
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce  json
// @Param   accountType query string false "Filter by account type"
// @Param   parentAccountID query string false "Filter by parent (empty for roots)"
// @Param   includeInactive query bool false "Include inactive accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter := domain.AccountFilter{
		AccountType:     domain.AccountType(params.AccountType),
		ParentAccountID: params.ParentAccountID,
		IncludeInactive: params.IncludeInactive,
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("accountID")))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByCode godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/by-code/{code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("code", c.Param("code")))

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account
// @Description Patches name, description, active flag or parent. Type changes are limited to unused non-system accounts.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} map[string]string "System account"
// @Security BearerAuth
// @Router /accounts/{accountID} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("accountID")))
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("accountID"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account
// @Tags accounts
// @Param   accountID path string true "Account ID"
// @Success 204
// @Failure 409 {object} map[string]string "Account referenced by journal lines"
// @Security BearerAuth
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("accountID")))
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("accountID"), actor); err != nil {
		respondError(c, logger, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

// getBalance godoc
// @Summary Get an account balance
// @Description Cached balance, or a replay of the posted log for a past asOf date.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   asOf query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("accountID")))
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), c.Param("accountID"), params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: c.Param("accountID"), AsOf: params.AsOf, Balance: balance})
}

// verifyBalances godoc
// @Summary Compare cached balances with a replay of the log
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.BalanceCheckResponse
// @Security BearerAuth
// @Router /admin/balances/verify [get]
func (h *accountHandler) verifyBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	drift, err := h.accountService.VerifyBalances(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to verify balances")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceCheckResponse{Drift: drift})
}

// rebuildBalances godoc
// @Summary Overwrite drifted cached balances with replayed values
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.BalanceCheckResponse
// @Failure 409 {object} map[string]string "Balances changed during the rebuild"
// @Security BearerAuth
// @Router /admin/balances/rebuild [post]
func (h *accountHandler) rebuildBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	fixed, err := h.accountService.RebuildBalances(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to rebuild balances")
		return
	}
	logger.Info("Balances rebuilt", slog.Int("fixed", len(fixed)))
	c.JSON(http.StatusOK, dto.BalanceCheckResponse{Drift: fixed})
}
