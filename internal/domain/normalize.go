package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FieldSet names the event fields whose change triggers re-derivation on save.
type FieldSet uint8

const (
	FieldTitle FieldSet = 1 << iota
	FieldDate
	FieldTime
)

// AllEventFields is the change set of a freshly created event.
const AllEventFields = FieldTitle | FieldDate | FieldTime

// Has reports whether f is part of the set.
func (s FieldSet) Has(f FieldSet) bool { return s&f != 0 }

var (
	ErrInvalidDate = errors.New("Invalid date format")
	ErrInvalidTime = errors.New("Invalid time format. Use HH:MM or HH:MM AM/PM")
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	slugSeparators   = regexp.MustCompile(`[\s_]+`)
	slugHyphens      = regexp.MustCompile(`-+`)

	time24Regex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	time12Regex = regexp.MustCompile(`(?i)^(0?[1-9]|1[0-2]):([0-5][0-9])\s?(AM|PM)$`)
)

// Slugify derives the URL identifier of an event from its title.
// Any Unicode whitespace (NBSP, U+3000, vertical tab) separates words.
// The result only contains [a-z0-9-], never starts or ends with a hyphen
// and never contains two hyphens in a row.
func Slugify(title string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, title)
	s = strings.TrimSpace(strings.ToLower(s))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// dateLayouts are the calendar date inputs accepted by NormalizeDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006/1/2",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Mon, January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// NormalizeDate parses a calendar date and returns it as YYYY-MM-DD.
// Inputs carrying a zone offset are converted to UTC first.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateOnly), nil
		}
	}
	return "", ErrInvalidDate
}

// NormalizeTime accepts H:MM / HH:MM (24-hour) or H:MM AM/PM (12-hour)
// and returns the zero-padded 24-hour HH:MM form.
//
// A single-digit 24-hour input such as "9:30" comes back as "09:30", not
// unchanged, so every stored time has the same fixed width. Two-digit 24-hour
// input is returned as is, and the output is a fixed point of NormalizeTime.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if m := time24Regex.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", hours, m[2]), nil
	}
	m := time12Regex.FindStringSubmatch(s)
	if m == nil {
		return "", ErrInvalidTime
	}
	hours, _ := strconv.Atoi(m[1])
	switch period := strings.ToUpper(m[3]); {
	case period == "PM" && hours != 12:
		hours += 12
	case period == "AM" && hours == 12:
		hours = 0
	}
	return fmt.Sprintf("%02d:%s", hours, m[2]), nil
}

// NormalizeEvent validates ev and derives its normalized fields before persistence.
//
// Every field rule is evaluated on each call; slug, date and time are only
// re-derived when their source field is in changed. On failure ev is left
// untouched and a *ValidationError listing each failed field is returned.
func NormalizeEvent(ev *Event, changed FieldSet) error {
	n := *ev
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.Overview = strings.TrimSpace(n.Overview)
	n.Venue = strings.TrimSpace(n.Venue)
	n.Location = strings.TrimSpace(n.Location)
	n.Audience = strings.TrimSpace(n.Audience)
	n.Organizer = strings.TrimSpace(n.Organizer)
	n.Date = strings.TrimSpace(n.Date)
	n.Time = strings.TrimSpace(n.Time)
	n.Mode = Mode(strings.ToLower(strings.TrimSpace(string(n.Mode))))

	errs := validateStruct(&n)

	if changed.Has(FieldTitle) && n.Title != "" {
		n.Slug = Slugify(n.Title)
		if n.Slug == "" {
			errs = append(errs, FieldError{Field: "slug", Message: "Title must contain at least one letter or digit"})
		}
	}
	if changed.Has(FieldDate) && n.Date != "" {
		d, err := NormalizeDate(n.Date)
		if err != nil {
			errs = append(errs, FieldError{Field: "date", Message: err.Error()})
		}
		n.Date = d
	}
	if changed.Has(FieldTime) && n.Time != "" {
		t, err := NormalizeTime(n.Time)
		if err != nil {
			errs = append(errs, FieldError{Field: "time", Message: err.Error()})
		}
		n.Time = t
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	*ev = n
	return nil
}
