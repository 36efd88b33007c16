package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	EventID string `json:"event_id"`
	Email   string `json:"email"`
}

// Validate implements Validator. Only presence is checked here; format rules live in the domain.
func (c CreateBookingRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(c.EventID) == "" {
		errs = append(errs, domain.FieldError{Field: "event_id", Message: "event_id is required"})
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "email is required"})
	}
	return errs
}

// BookingSuccessResponse is the success response envelope for POST /api/bookings (201).
type BookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BookingCount is the payload of GET /api/events/{slug}/bookings/count.
type BookingCount struct {
	Count int64 `json:"count"`
}

// BookingCountSuccessResponse is the success response envelope for the booking count.
type BookingCountSuccessResponse struct {
	Data  BookingCount      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBooking godoc
// @Summary Book a spot at an event
// @Description Reserves a spot for an email. Each email can book a given event once. A confirmation email is sent on success.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Event id and email"
// @Success 201 {object} controllers.BookingSuccessResponse "data contains the booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.CreateBooking(r.Context(), req.EventID, req.Email)
	if err != nil {
		if status := helpers.WriteServiceError(w, err); status >= http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// CountBookings godoc
// @Summary Count bookings for an event
// @Tags bookings
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.BookingCountSuccessResponse "data.count is the number of bookings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /api/events/{slug}/bookings/count [get]
func (c *BookingController) CountBookings(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}
	count, err := c.Service.CountBookings(r.Context(), slug)
	if err != nil {
		if status := helpers.WriteServiceError(w, err); status >= http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookingCount{Count: count})
}
