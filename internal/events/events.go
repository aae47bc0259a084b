// Package events publishes ledger activity to an analytics backend after it has been committed.
// Publishing is best effort: a failed or dropped event never affects the ledger.
package events

import (
	"context"
	"sync"
)

const (
	EntryPosted    = "entry_posted"
	EntryReversed  = "entry_reversed"
	EntrySubmitted = "entry_submitted"
)

// Event is one fact about the ledger, attributed to the actor who caused it.
type Event struct {
	Name       string
	DistinctID string
	Properties map[string]any
}

// Sink receives events. Implementations must not block the caller for long and must not fail it.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, Event) {}

// Recorder keeps events in memory. Tests use it to assert on what was published.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

// Names returns the recorded event names in publish order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
}
