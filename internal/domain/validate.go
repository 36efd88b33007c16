package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailRegex matches the basic local@domain.tld shape with no embedded whitespace.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	return v
}

// fieldMessages maps "<field>.<rule>" to the message shown to API clients.
var fieldMessages = map[string]string{
	"title.required":       "Title is required",
	"description.required": "Description is required",
	"overview.required":    "Overview is required",
	"image.required":       "Image is required",
	"venue.required":       "Venue is required",
	"location.required":    "Location is required",
	"date.required":        "Date is required",
	"time.required":        "Time is required",
	"mode.required":        "Mode is required",
	"mode.oneof":           "Mode must be online, offline, or hybrid",
	"audience.required":    "Audience is required",
	"agenda.required":      "Agenda is required",
	"agenda.min":           "Agenda must contain at least one item",
	"organizer.required":   "Organizer is required",
	"tags.required":        "Tags are required",
	"tags.min":             "At least one tag is required",
	"event_id.required":    "Event ID is required",
	"email.required":       "Email is required",
	"email.email_shape":    "Please provide a valid email address",
}

// validateStruct runs the struct-tag rules of v and returns one FieldError per failed field.
func validateStruct(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
