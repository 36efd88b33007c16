package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"devevent/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeEventNotFound      = "event_not_found"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeInternalError      = "internal_error"
	ErrCodeRequestCanceled    = "request_canceled"
)

// StatusClientClosedRequest is written when the client gave up before a response was ready.
const StatusClientClosedRequest = 499

// APIError is the error object in the standardized API response envelope.
// Fields lists each failed field for validation errors.
// swagger:model APIError
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeAPIError(w, statusCode, &APIError{Code: code, Message: message})
}

func writeAPIError(w http.ResponseWriter, statusCode int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: nil, Error: apiErr})
}

// WriteServiceError maps a service error onto the envelope and returns the status written.
//
//	validation          400 bad_request (with fields)
//	missing event ref   400 event_not_found
//	duplicate           409 conflict
//	not found           404 not_found
//	infrastructure      503 service_unavailable
//	client went away    499 request_canceled
//	anything else       500 internal_error
func WriteServiceError(w http.ResponseWriter, err error) int {
	status, apiErr := classify(err)
	writeAPIError(w, status, apiErr)
	return status
}

func classify(err error) (int, *APIError) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, domain.ErrReference):
		return http.StatusBadRequest, &APIError{Code: ErrCodeEventNotFound, Message: "Event not found"}
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict, &APIError{Code: ErrCodeConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "not found"}
	case errors.Is(err, domain.ErrConnection),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: "service temporarily unavailable"}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, &APIError{Code: ErrCodeRequestCanceled, Message: "request canceled"}
	default:
		return http.StatusInternalServerError, &APIError{Code: ErrCodeInternalError, Message: "internal server error"}
	}
}
