package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"devevent/internal/dbconn"
)

// NewDialer returns a dial function that connects to uri, pings the primary
// and ensures indexes on the named database.
func NewDialer(database string) dbconn.DialFunc[*mongo.Database] {
	return func(ctx context.Context, uri string) (*mongo.Database, error) {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		db := client.Database(database)
		if err := EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		return db, nil
	}
}

// Close disconnects the client behind db.
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
