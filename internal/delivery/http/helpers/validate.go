package helpers

import (
	"encoding/json"
	"net/http"

	"devevent/internal/domain"
)

// MaxJSONBody caps JSON request bodies.
const MaxJSONBody = 1 << 20

// Validator is implemented by request DTOs that check their own presence rules.
// An empty result means valid.
type Validator interface {
	Validate() []domain.FieldError
}

// DecodeAndValidate strictly decodes a JSON body into dest and runs dest's
// Validate when it has one. Failures are written as 400 bad_request (with
// per-field details for validation) and false is returned; callers should
// return immediately in that case.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if fields := v.Validate(); len(fields) > 0 {
			WriteServiceError(w, &domain.ValidationError{Fields: fields})
			return false
		}
	}
	return true
}
