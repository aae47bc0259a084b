package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// submissionHandler is the inbound endpoint producer modules post their entries to.
type submissionHandler struct {
	submissionService portssvc.EntrySourceSvc
}

// registerSubmissionRoutes registers the submit endpoint, rate limited when a limiter is given.
func registerSubmissionRoutes(rg *gin.RouterGroup, submissionService portssvc.EntrySourceSvc, submitLimiter *limiter.Limiter) {
	h := &submissionHandler{submissionService: submissionService}

	handlers := []gin.HandlerFunc{}
	if submitLimiter != nil {
		handlers = append(handlers, middleware.RateLimit(submitLimiter))
	}
	handlers = append(handlers, h.submitEntry)
	rg.POST("/entries/submit", handlers...)
}

// submitEntry godoc
// @Summary Submit an entry from a producer module
// @Description Resolves account codes and records a draft. With autoPost the entry is posted, retrying briefly on concurrent modification. Resubmitting a known (source, sourceId) returns the existing entry.
// @Tags submissions
// @Accept  json
// @Produce  json
// @Param   entry body dto.SubmitEntryRequest true "Entry"
// @Success 201 {object} dto.SubmitEntryResponse "Created"
// @Success 200 {object} dto.SubmitEntryResponse "Already recorded"
// @Failure 400 {object} map[string]string "Invalid source or lines"
// @Failure 404 {object} map[string]string "Unknown account code"
// @Failure 409 {object} map[string]string "Concurrent modification after retries"
// @Failure 422 {object} map[string]string "Debits and credits do not balance; the body names the stored draft"
// @Failure 429 {object} map[string]string "Rate limited"
// @Security BearerAuth
// @Router /entries/submit [post]
func (h *submissionHandler) submitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("source", string(req.Source)), slog.String("source_id", req.SourceID))

	var (
		resp *dto.SubmitEntryResponse
		err  error
	)
	if req.AutoPost {
		resp, err = h.submissionService.SubmitAndPost(c.Request.Context(), req, actor)
	} else {
		resp, err = h.submissionService.Submit(c.Request.Context(), req, actor)
	}
	if err != nil {
		if resp != nil {
			// Recorded as a draft but not posted.
			respondErrorWith(c, logger, err, "Failed to post submitted entry", gin.H{
				"entryId":     resp.EntryID,
				"entryNumber": resp.EntryNumber,
				"status":      resp.Status,
			})
			return
		}
		respondError(c, logger, err, "Failed to submit entry")
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	logger.Info("Entry submitted", slog.String("entry_id", resp.EntryID), slog.String("status", string(resp.Status)), slog.Bool("duplicate", resp.Duplicate))
	c.JSON(status, resp)
}
