package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devevent/internal/domain"
)

type bookingService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	emailService   domain.EmailService
	analytics      domain.AnalyticsSink
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService with the given repositories and notifiers.
func NewBookingService(
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	emailService domain.EmailService,
	analytics domain.AnalyticsSink,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		emailService:   emailService,
		analytics:      analytics,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// CreateBooking books email onto the event with eventID.
//
// The duplicate lookup only produces a friendlier error in the common case;
// the storage uniqueness constraint decides concurrent attempts and both paths
// return the same *domain.DuplicateError.
func (s *bookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	now := time.Now().UTC()
	booking := domain.NewBooking(eventID, email, now, now)
	if err := domain.NormalizeBooking(booking); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrReference
		}
		return nil, spanErr(span, fmt.Errorf("get event: %w", err))
	}

	if _, err := s.bookingRepo.GetByEventAndEmail(ctx, booking.EventID, booking.Email); err == nil {
		return nil, &domain.DuplicateError{Entity: "booking", Field: "email", Value: booking.Email}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, spanErr(span, fmt.Errorf("get booking: %w", err))
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			return nil, dup
		}
		return nil, spanErr(span, fmt.Errorf("create booking: %w", err))
	}

	s.notify(ctx, event, booking)
	return booking, nil
}

// notify sends the confirmation email and records the analytics event.
// The booking is already stored, so failures are only logged.
func (s *bookingService) notify(ctx context.Context, event *domain.Event, booking *domain.Booking) {
	err := s.emailService.SendBookingConfirmation(ctx, &domain.BookingConfirmationEmailData{
		Email:      booking.Email,
		EventTitle: event.Title,
		EventSlug:  event.Slug,
		Date:       event.Date,
		Time:       event.Time,
		Venue:      event.Venue,
		Location:   event.Location,
		Mode:       event.Mode,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "booking confirmation email failed", "booking_id", booking.ID, "err", err)
	}
	s.analytics.Capture(ctx, booking.Email, domain.AnalyticsBookingCreated, map[string]any{
		"booking_id": booking.ID,
		"event_id":   event.ID,
		"slug":       event.Slug,
	})
}

func (s *bookingService) CountBookings(ctx context.Context, slug string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "BookingService.CountBookings")
	defer span.End()

	event, err := s.eventRepo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, spanErr(span, fmt.Errorf("get event by slug: %w", err))
	}
	n, err := s.bookingRepo.CountByEventID(ctx, event.ID)
	if err != nil {
		return 0, spanErr(span, fmt.Errorf("count bookings: %w", err))
	}
	return n, nil
}
