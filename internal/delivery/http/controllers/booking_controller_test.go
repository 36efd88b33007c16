package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingService implements domain.BookingService for handler tests.
type fakeBookingService struct {
	createErr     error
	countErr      error
	count         int64
	lastEventID   string
	lastEmail     string
	lastCountSlug string
}

func (f *fakeBookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	f.lastEventID = eventID
	f.lastEmail = email
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b := domain.NewBooking(eventID, email, now, now)
	b.ID = "bk-1"
	return b, nil
}

func (f *fakeBookingService) CountBookings(ctx context.Context, slug string) (int64, error) {
	f.lastCountSlug = slug
	return f.count, f.countErr
}

func TestBookingController_CreateBooking(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantCode       string
		wantBodySubstr string
		wantCalled     bool
	}{
		{
			name:       "success",
			body:       `{"event_id":"ev-1","email":"ada@example.com"}`,
			wantStatus: http.StatusCreated,
			wantCalled: true,
		},
		{
			name:           "invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid JSON body",
		},
		{
			name:           "missing fields",
			body:           `{"event_id":" "}`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeBadRequest,
			wantBodySubstr: "email is required",
		},
		{
			name:           "unknown field rejected",
			body:           `{"event_id":"ev-1","email":"a@b.co","name":"Ada"}`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:       "malformed email",
			body:       `{"event_id":"ev-1","email":"not-an-email"}`,
			fakeErr:    domain.NewValidationError("email", "Please provide a valid email address"),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
			wantCalled: true,
		},
		{
			name:       "event does not exist",
			body:       `{"event_id":"ev-missing","email":"ada@example.com"}`,
			fakeErr:    fmt.Errorf("create booking: %w", domain.ErrReference),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeEventNotFound,
			wantCalled: true,
		},
		{
			name:           "already booked",
			body:           `{"event_id":"ev-1","email":"ada@example.com"}`,
			fakeErr:        &domain.DuplicateError{Entity: "booking", Field: "email", Value: "ada@example.com"},
			wantStatus:     http.StatusConflict,
			wantCode:       helpers.ErrCodeConflict,
			wantBodySubstr: "already booked",
			wantCalled:     true,
		},
		{
			name:       "service error",
			body:       `{"event_id":"ev-1","email":"ada@example.com"}`,
			fakeErr:    errors.New("db error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{createErr: tt.fakeErr}
			ctrl := NewBookingController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.CreateBooking(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.wantCalled, fake.lastEventID != "", "service called")
			booking, apiErr := decodeData[domain.Booking](t, rr)
			if tt.wantCode == "" {
				require.Nil(t, apiErr)
				assert.Equal(t, "bk-1", booking.ID)
				assert.Equal(t, "ada@example.com", booking.Email)
				return
			}
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.wantBodySubstr != "" {
				assert.Contains(t, apiErr.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestBookingController_CountBookings(t *testing.T) {
	tests := []struct {
		name       string
		slug       string
		count      int64
		fakeErr    error
		wantStatus int
		wantCount  int64
	}{
		{name: "success", slug: "go-conf", count: 7, wantStatus: http.StatusOK, wantCount: 7},
		{name: "unknown event", slug: "go-conf", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "bad slug", slug: "Go Conf!", wantStatus: http.StatusBadRequest},
		{name: "database down", slug: "go-conf", fakeErr: domain.ErrConnection, wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{count: tt.count, countErr: tt.fakeErr}
			ctrl := NewBookingController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/api/events/x/bookings/count", nil)
			req.SetPathValue("slug", tt.slug)
			rr := httptest.NewRecorder()

			ctrl.CountBookings(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				got, apiErr := decodeData[BookingCount](t, rr)
				require.Nil(t, apiErr)
				assert.Equal(t, tt.wantCount, got.Count)
			}
		})
	}
}

func TestHealthController(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, func(context.Context) error { return nil })
		rr := httptest.NewRecorder()

		ctrl.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"status":"ok"},"error":null}`, rr.Body.String())
	})
	t.Run("database unavailable", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, func(context.Context) error { return domain.ErrConfiguration })
		rr := httptest.NewRecorder()

		ctrl.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		_, apiErr := decodeData[HealthStatus](t, rr)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeServiceUnavailable, apiErr.Code)
	})
}
