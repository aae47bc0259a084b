package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the current time in UTC, from the injected clock when one is set.
func (s *BaseService) Now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// Today returns the current date at midnight UTC.
func (s *BaseService) Today() time.Time {
	return dateOnly(s.Now())
}

// requireActor rejects mutating calls that are not attributed to anyone.
func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}
	return nil
}

// dateOnly truncates t to its calendar date in UTC. Entry dates carry no time of day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isHistorical reports whether asOf asks for a point strictly before today,
// which must be answered by replaying the posted log instead of reading the cache.
func isHistorical(asOf *time.Time, today time.Time) bool {
	return asOf != nil && dateOnly(*asOf).Before(today)
}
