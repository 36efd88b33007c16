package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"devevent/internal/dbconn"
	"devevent/internal/domain"
)

type bookingRepository struct {
	conn dbconn.Connector[*mongo.Database]
}

func NewBookingRepository(conn dbconn.Connector[*mongo.Database]) domain.BookingRepository {
	return &bookingRepository{conn: conn}
}

func (r *bookingRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(bookingsCollection), nil
}

// Create inserts b. The unique_event_email index decides between concurrent
// attempts for the same pair; the loser gets a *DuplicateError.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	ctx, span := tracer.Start(ctx, "BookingRepository.Create")
	defer span.End()

	eventID, err := primitive.ObjectIDFromHex(b.EventID)
	if err != nil {
		return spanErr(span, domain.ErrReference)
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return spanErr(span, err)
	}
	res, err := coll.InsertOne(ctx, &bookingDocument{
		EventID:   eventID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return spanErr(span, &domain.DuplicateError{Entity: "booking", Field: "email", Value: b.Email})
		}
		return spanErr(span, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *bookingRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingRepository.GetByEventAndEmail")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	var doc bookingDocument
	err = coll.FindOne(ctx, bson.M{"eventId": oid, "email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, spanErr(span, err)
	}
	return doc.toDomain(), nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "BookingRepository.CountByEventID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return 0, nil
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, spanErr(span, err)
	}
	n, err := coll.CountDocuments(ctx, bson.M{"eventId": oid})
	return n, spanErr(span, err)
}
