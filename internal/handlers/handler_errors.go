package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusForError maps the ledger error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrSystemAccountImmutable):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrAccountInUse),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrConcurrentModification):
		return http.StatusConflict
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Server errors are logged and masked.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	respondErrorWith(c, logger, err, fallback, nil)
}

// respondErrorWith is respondError with extra fields merged into the body.
func respondErrorWith(c *gin.Context, logger *slog.Logger, err error, fallback string, extra gin.H) {
	status := statusForError(err)
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		body["error"] = fallback
		c.JSON(status, body)
		return
	}
	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	body["error"] = err.Error()
	c.JSON(status, body)
}

// actorOrAbort fetches the actor resolved by ActorMiddleware.
func actorOrAbort(c *gin.Context, logger *slog.Logger) (string, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return actor, true
}
