package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes both collections rely on.
// Creating an index that already exists with the same keys and options is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(eventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("slug_1")},
		{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags_1")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt_-1")},
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}

	_, err = db.Collection(bookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetName("eventId_1")},
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("eventId_1_createdAt_-1")},
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_event_email")},
	})
	if err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}
	return nil
}
