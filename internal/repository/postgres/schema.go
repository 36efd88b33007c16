package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names checked when mapping unique violations.
const (
	eventsSlugConstraint     = "events_slug_key"
	bookingsUniqueConstraint = "unique_event_email"
	uniqueViolation          = "23505"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title       TEXT NOT NULL,
		slug        TEXT NOT NULL,
		description TEXT NOT NULL,
		overview    TEXT NOT NULL,
		image       TEXT NOT NULL,
		venue       TEXT NOT NULL,
		location    TEXT NOT NULL,
		"date"      TEXT NOT NULL,
		"time"      TEXT NOT NULL,
		mode        TEXT NOT NULL CHECK (mode IN ('online', 'offline', 'hybrid')),
		audience    TEXT NOT NULL,
		agenda      TEXT[] NOT NULL,
		organizer   TEXT NOT NULL,
		tags        TEXT[] NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT events_slug_key UNIQUE (slug)
	)`,
	`CREATE INDEX IF NOT EXISTS events_tags_idx ON events USING GIN (tags)`,
	`CREATE INDEX IF NOT EXISTS events_created_at_idx ON events (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id   UUID NOT NULL,
		email      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT unique_event_email UNIQUE (event_id, email)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_event_id_created_at_idx ON bookings (event_id, created_at DESC)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
// Every statement is idempotent, so it runs on each fresh connection.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
