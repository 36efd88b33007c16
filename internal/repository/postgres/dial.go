package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var openDB = sql.Open

// Dial opens a pool for uri, verifies it with a ping and applies the schema.
// It is the dial function handed to the connection cache.
func Dial(ctx context.Context, uri string) (*sql.DB, error) {
	db, err := openDB("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the pool.
func Close(_ context.Context, db *sql.DB) error {
	return db.Close()
}
