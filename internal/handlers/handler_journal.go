package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles draft lifecycle and posting requests.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
	postingService portssvc.PostingSvc
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade, ps portssvc.PostingSvc) *journalHandler {
	return &journalHandler{
		journalService: js,
		postingService: ps,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, postingService portssvc.PostingSvc) {
	h := newJournalHandler(journalService, postingService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createDraft)
		journals.GET("", h.listEntries)
		journals.GET("/:entryID", h.getEntry)
		journals.PATCH("/:entryID", h.updateDraft)
		journals.DELETE("/:entryID", h.deleteDraft)
		journals.POST("/:entryID/post", h.postEntry)
		journals.POST("/:entryID/reverse", h.reverseEntry)
	}
}

// createDraft godoc
// @Summary Create a draft journal entry
// @Description Stores a draft. Unbalanced drafts are accepted and flagged with isBalanced=false.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateDraftRequest true "Draft entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid lines"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create draft")
		return
	}
	logger.Info("Draft created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Newest first by default. Pass the returned nextToken to fetch the following page.
// @Tags journals
// @Produce  json
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   status query string false "DRAFT, POSTED or REVERSED"
// @Param   source query string false "Producer module"
// @Param   q query string false "Search entry number or description"
// @Param   order query string false "asc or desc"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.journalService.ListEntries(c.Request.Context(), params.ToEntryFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}

	resp := dto.ListEntriesResponse{
		Entries:   make([]dto.JournalEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journals
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /journals/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateDraft godoc
// @Summary Update a draft
// @Description Replaces date, description, reference or the complete line set of a draft.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   entry body dto.UpdateDraftRequest true "Fields to update"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Security BearerAuth
// @Router /journals/{entryID} [patch]
func (h *journalHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), c.Param("entryID"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteDraft godoc
// @Summary Delete a draft
// @Tags journals
// @Param   entryID path string true "Entry ID"
// @Success 204
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Security BearerAuth
// @Router /journals/{entryID} [delete]
func (h *journalHandler) deleteDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	if err := h.journalService.DeleteDraft(c.Request.Context(), c.Param("entryID"), actor); err != nil {
		respondError(c, logger, err, "Failed to delete draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft
// @Description Validates balance, applies every account delta and marks the entry posted, atomically.
// @Tags journals
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Not a draft, or concurrent modification"
// @Failure 422 {object} map[string]string "Debits and credits do not balance"
// @Security BearerAuth
// @Router /journals/{entryID}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	entry, err := h.postingService.Post(c.Request.Context(), c.Param("entryID"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Posts a mirror entry dated today (or the given date) and marks the original reversed.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.ReverseEntryRequest false "Optional reversal date"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry cannot be reversed"
// @Security BearerAuth
// @Router /journals/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	reversal, err := h.postingService.Reverse(c.Request.Context(), c.Param("entryID"), req.Date, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}
	logger.Info("Entry reversed", slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
