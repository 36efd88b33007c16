package domain

import (
	"context"
	"time"
)

// Mode is how an event is attended.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Event represents a listed event
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Slug        string    `json:"slug"`
	Description string    `json:"description" validate:"required"`
	Overview    string    `json:"overview" validate:"required"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        Mode      `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"required,min=1"`
	Organizer   string    `json:"organizer" validate:"required"`
	Tags        []string  `json:"tags" validate:"required,min=1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageFile is a raw banner image as received from the client.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// EventRepository defines the interface for event storage.
// Create must fail with a *DuplicateError when the slug is already taken.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// List returns all events, newest first.
	List(ctx context.Context) ([]*Event, error)
	// ListSimilar returns events other than excludeID sharing at least one of tags.
	ListSimilar(ctx context.Context, excludeID string, tags []string) ([]*Event, error)
}

// EventService defines event creation and read paths.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, image *ImageFile) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	// FindSimilar never fails: any lookup error yields an empty result.
	FindSimilar(ctx context.Context, slug string) []*Event
}
