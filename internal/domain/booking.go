package domain

import (
	"context"
	"strings"
	"time"
)

// Booking represents an email reserving a spot at an event.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email_shape"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBooking creates a new Booking. ID is typically set by the repository on create.
func NewBooking(eventID, email string, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// NormalizeBooking trims the event id, lowercases and trims the email and checks
// both against the booking field rules.
func NormalizeBooking(b *Booking) error {
	eventID := strings.TrimSpace(b.EventID)
	email := strings.ToLower(strings.TrimSpace(b.Email))
	probe := Booking{EventID: eventID, Email: email}
	if errs := validateStruct(&probe); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	b.EventID = eventID
	b.Email = email
	return nil
}

// BookingRepository defines storage operations for bookings.
// Create must fail with a *DuplicateError when (EventID, Email) is already booked.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Booking, error)
	CountByEventID(ctx context.Context, eventID string) (int64, error)
}

// BookingService defines booking creation and lookups.
type BookingService interface {
	CreateBooking(ctx context.Context, eventID, email string) (*Booking, error)
	CountBookings(ctx context.Context, slug string) (int64, error)
}
