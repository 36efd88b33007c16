// Package analytics records product events such as event and booking creation.
package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"devevent/internal/domain"
)

// Config holds configuration for creating an analytics sink.
type Config struct {
	Provider string // "posthog" or "noop"
	APIKey   string
	Host     string
}

// Sink is an AnalyticsSink that can flush buffered events on shutdown.
type Sink interface {
	domain.AnalyticsSink
	Close() error
}

// enqueuer is the part of the PostHog client the sink uses.
type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// NewSink creates a sink from config. Provider "posthog" batches events to PostHog; anything else logs them.
func NewSink(config Config, logger *slog.Logger) (Sink, error) {
	switch config.Provider {
	case "posthog":
		if config.APIKey == "" {
			return nil, fmt.Errorf("%w: POSTHOG_API_KEY is required for the posthog provider", domain.ErrConfiguration)
		}
		client, err := posthog.NewWithConfig(config.APIKey, posthog.Config{Endpoint: config.Host})
		if err != nil {
			return nil, fmt.Errorf("%w: posthog client: %w", domain.ErrConfiguration, err)
		}
		return &posthogSink{client: client, logger: logger}, nil
	case "noop", "":
		return &noopSink{logger: logger}, nil
	default:
		logger.Warn("unknown analytics provider, using noop", "provider", config.Provider)
		return &noopSink{logger: logger}, nil
	}
}

type posthogSink struct {
	client enqueuer
	logger *slog.Logger
}

func (s *posthogSink) Capture(ctx context.Context, distinctID, event string, properties map[string]any) {
	err := s.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: posthog.Properties(properties),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "analytics enqueue failed", "event", event, "err", err)
	}
}

func (s *posthogSink) Close() error {
	return s.client.Close()
}

type noopSink struct {
	logger *slog.Logger
}

func (n *noopSink) Capture(ctx context.Context, distinctID, event string, properties map[string]any) {
	n.logger.DebugContext(ctx, "analytics event (noop)", "event", event)
}

func (n *noopSink) Close() error { return nil }
