package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), Event{Name: EntryPosted})
	r.Publish(context.Background(), Event{Name: EntryReversed})
	assert.Equal(t, []string{EntryPosted, EntryReversed}, r.Names())
}

func TestPosthogSinkWithoutKeyIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := NewPosthogSink("", "", logger)
	assert.False(t, sink.IsInitialized())
	assert.NotPanics(t, func() {
		sink.Publish(context.Background(), Event{Name: EntryPosted, DistinctID: "u1"})
		sink.Close()
	})
}
