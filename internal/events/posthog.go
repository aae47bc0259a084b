package events

import (
	"context"
	"log/slog"

	"github.com/posthog/posthog-go"
)

const defaultPosthogEndpoint = "https://eu.i.posthog.com"

// PosthogSink wraps a posthog.Client and tolerates not being configured.
type PosthogSink struct {
	client posthog.Client
	logger *slog.Logger
}

// NewPosthogSink returns a sink that enqueues to PostHog, or an uninitialized sink when apiKey is empty.
func NewPosthogSink(apiKey, endpoint string, logger *slog.Logger) *PosthogSink {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogSink{logger: logger}
	}
	if endpoint == "" {
		endpoint = defaultPosthogEndpoint
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogSink{logger: logger}
	}
	logger.Info("Initialized posthog client", slog.String("endpoint", endpoint))
	return &PosthogSink{client: client, logger: logger}
}

func (s *PosthogSink) IsInitialized() bool {
	return s != nil && s.client != nil
}

func (s *PosthogSink) Publish(_ context.Context, event Event) {
	if !s.IsInitialized() {
		return
	}
	s.logger.Debug("Enqueueing event", slog.String("distinct_id", event.DistinctID), slog.String("event", event.Name))
	if err := s.client.Enqueue(posthog.Capture{
		DistinctId: event.DistinctID,
		Event:      event.Name,
		Properties: posthog.Properties(event.Properties),
	}); err != nil {
		s.logger.Warn("Failed to enqueue event", slog.String("event", event.Name), slog.String("error", err.Error()))
	}
}

// Close flushes queued events.
func (s *PosthogSink) Close() {
	if !s.IsInitialized() {
		return
	}
	s.client.Close()
}
