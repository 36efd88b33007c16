package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"devevent/internal/dbconn"
	"devevent/internal/domain"
	"devevent/internal/repository/mongodb"
	"devevent/internal/repository/postgres"
)

// store bundles the repositories of one backend with its lazily dialed connection.
type store struct {
	kind     string
	events   domain.EventRepository
	bookings domain.BookingRepository
	// ping acquires the connection, dialing it on first use.
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// openStore picks the backend from the scheme of databaseURL. Nothing is dialed here.
// An empty URL yields a postgres store whose every operation reports a configuration error.
func openStore(databaseURL, mongoDatabase string, dialTimeout time.Duration) (*store, error) {
	scheme := ""
	if databaseURL != "" {
		u, err := url.Parse(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: DATABASE_URL: %w", domain.ErrConfiguration, err)
		}
		scheme = u.Scheme
	}

	switch scheme {
	case "", "postgres", "postgresql":
		cache := dbconn.New(databaseURL, postgres.Dial, postgres.Close, dialTimeout)
		return &store{
			kind:     "postgres",
			events:   postgres.NewEventRepository(cache),
			bookings: postgres.NewBookingRepository(cache),
			ping:     acquireOnly(cache),
			close:    cache.Close,
		}, nil
	case "mongodb", "mongodb+srv":
		cache := dbconn.New(databaseURL, mongodb.NewDialer(mongoDatabase), mongodb.Close, dialTimeout)
		return &store{
			kind:     "mongodb",
			events:   mongodb.NewEventRepository(cache),
			bookings: mongodb.NewBookingRepository(cache),
			ping:     acquireOnly(cache),
			close:    cache.Close,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported DATABASE_URL scheme %q", domain.ErrConfiguration, scheme)
	}
}

func acquireOnly[T any](c dbconn.Connector[T]) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.Acquire(ctx)
		return err
	}
}
