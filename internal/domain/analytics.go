package domain

import "context"

// Analytics event names.
const (
	AnalyticsEventCreated   = "event_created"
	AnalyticsBookingCreated = "booking_created"
)

// AnalyticsSink records named product events. It is fire-and-forget:
// implementations never report failures to the caller.
type AnalyticsSink interface {
	Capture(ctx context.Context, distinctID, event string, properties map[string]any)
}
