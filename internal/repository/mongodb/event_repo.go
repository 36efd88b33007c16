package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devevent/internal/dbconn"
	"devevent/internal/domain"
)

type eventRepository struct {
	conn dbconn.Connector[*mongo.Database]
}

func NewEventRepository(conn dbconn.Connector[*mongo.Database]) domain.EventRepository {
	return &eventRepository{conn: conn}
}

func (r *eventRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(eventsCollection), nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	ctx, span := tracer.Start(ctx, "EventRepository.Create")
	defer span.End()

	coll, err := r.collection(ctx)
	if err != nil {
		return spanErr(span, err)
	}
	res, err := coll.InsertOne(ctx, newEventDocument(e))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return spanErr(span, &domain.DuplicateError{Entity: "event", Field: "slug", Value: e.Slug})
		}
		return spanErr(span, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.GetByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	e, err := r.findOne(ctx, bson.M{"_id": oid})
	return e, spanErr(span, err)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.GetBySlug")
	defer span.End()

	e, err := r.findOne(ctx, bson.M{"slug": slug})
	return e, spanErr(span, err)
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.List")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	events, err := r.find(ctx, bson.M{}, opts)
	return events, spanErr(span, err)
}

func (r *eventRepository) ListSimilar(ctx context.Context, excludeID string, tags []string) ([]*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.ListSimilar")
	defer span.End()

	if len(tags) == 0 {
		return []*domain.Event{}, nil
	}
	filter := bson.M{"tags": bson.M{"$in": tags}}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	events, err := r.find(ctx, filter)
	return events, spanErr(span, err)
}

func (r *eventRepository) findOne(ctx context.Context, filter bson.M) (*domain.Event, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	var doc eventDocument
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.Event, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].toDomain())
	}
	return events, nil
}
