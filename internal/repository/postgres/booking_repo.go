package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"devevent/internal/dbconn"
	"devevent/internal/domain"
)

type bookingRepository struct {
	conn dbconn.Connector[*sql.DB]
}

func NewBookingRepository(conn dbconn.Connector[*sql.DB]) domain.BookingRepository {
	return &bookingRepository{
		conn: conn,
	}
}

// Create inserts b. The unique_event_email constraint decides between
// concurrent attempts for the same pair; the loser gets a *DuplicateError.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	ctx, span := tracer.Start(ctx, "BookingRepository.Create")
	defer span.End()

	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return spanErr(span, err)
	}
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if isUniqueViolation(err, bookingsUniqueConstraint) {
		return spanErr(span, &domain.DuplicateError{Entity: "booking", Field: "email", Value: b.Email})
	}
	return spanErr(span, err)
}

func (r *bookingRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingRepository.GetByEventAndEmail")
	defer span.End()

	if _, err := uuid.Parse(eventID); err != nil {
		return nil, domain.ErrNotFound
	}
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE event_id = $1 AND email = $2
	`
	b := &domain.Booking{}
	err = db.QueryRowContext(ctx, query, eventID, email).
		Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, spanErr(span, err)
	}
	return b, nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "BookingRepository.CountByEventID")
	defer span.End()

	if _, err := uuid.Parse(eventID); err != nil {
		return 0, nil
	}
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return 0, spanErr(span, err)
	}
	var n int64
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID).Scan(&n)
	return n, spanErr(span, err)
}
