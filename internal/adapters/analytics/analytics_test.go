package analytics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevent/internal/domain"
)

type fakeClient struct {
	msgs   []posthog.Message
	err    error
	closed bool
}

func (f *fakeClient) Enqueue(m posthog.Message) error {
	f.msgs = append(f.msgs, m)
	return f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestPosthogSink_Capture(t *testing.T) {
	var buf bytes.Buffer
	client := &fakeClient{}
	sink := &posthogSink{client: client, logger: slog.New(slog.NewTextHandler(&buf, nil))}

	sink.Capture(context.Background(), "ada@example.com", domain.AnalyticsBookingCreated, map[string]any{"slug": "go-day"})
	require.Len(t, client.msgs, 1)
	capture, ok := client.msgs[0].(posthog.Capture)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", capture.DistinctId)
	assert.Equal(t, "booking_created", capture.Event)
	assert.Equal(t, "go-day", capture.Properties["slug"])

	client.err = errors.New("queue full")
	sink.Capture(context.Background(), "x", "y", nil)
	assert.Contains(t, buf.String(), "queue full")

	require.NoError(t, sink.Close())
	assert.True(t, client.closed)
}

func TestNewSink(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewSink(Config{Provider: "posthog"}, logger)
	require.ErrorIs(t, err, domain.ErrConfiguration)

	s, err := NewSink(Config{Provider: "noop"}, logger)
	require.NoError(t, err)
	s.Capture(context.Background(), "id", "event", nil)
	assert.NoError(t, s.Close())

	s, err = NewSink(Config{Provider: "mixpanel"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &noopSink{}, s)
}
