package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"devevent/internal/domain"
)

// imagePending stands in for the banner URL while the other fields are
// validated; the upload only happens once they pass.
const imagePending = "pending-upload"

type eventService struct {
	eventRepo      domain.EventRepository
	uploader       domain.ImageUploader
	analytics      domain.AnalyticsSink
	logger         *slog.Logger
	uploadFolder   string
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	uploader domain.ImageUploader,
	analytics domain.AnalyticsSink,
	logger *slog.Logger,
	uploadFolder string,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		uploader:       uploader,
		analytics:      analytics,
		logger:         logger,
		uploadFolder:   uploadFolder,
		contextTimeout: timeout,
	}
}

// CreateEvent validates and normalizes event, uploads image and persists the
// result. Nothing is uploaded unless every field passes, and nothing is
// persisted if the upload fails. The caller's event is not modified.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, image *domain.ImageFile) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.CreateEvent")
	defer span.End()

	draft := *event
	draft.Image = imagePending
	if err := joinValidation(
		domain.NormalizeEvent(&draft, domain.AllEventFields),
		domain.ValidateImageUpload(image),
	); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("event.slug", draft.Slug))

	url, err := s.uploader.Upload(ctx, s.uploadFolder, image)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstream) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		return nil, spanErr(span, fmt.Errorf("upload image: %w", err))
	}
	draft.Image = url

	now := time.Now().UTC()
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, &draft); err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			return nil, dup
		}
		return nil, spanErr(span, fmt.Errorf("create event: %w", err))
	}

	s.analytics.Capture(ctx, draft.Organizer, domain.AnalyticsEventCreated, map[string]any{
		"event_id": draft.ID,
		"slug":     draft.Slug,
		"title":    draft.Title,
		"mode":     string(draft.Mode),
		"tags":     draft.Tags,
	})
	return &draft, nil
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.GetEventBySlug")
	defer span.End()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.NewValidationError("slug", "Slug is required")
	}
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, spanErr(span, fmt.Errorf("get event by slug: %w", err))
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.ListEvents")
	defer span.End()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("list events: %w", err))
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// FindSimilar returns other events sharing at least one tag with the event
// at slug. It never fails: a missing source event or any lookup error
// yields an empty slice, with errors logged at warn level.
func (s *eventService) FindSimilar(ctx context.Context, slug string) []*domain.Event {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.FindSimilar")
	defer span.End()

	slug = strings.ToLower(strings.TrimSpace(slug))
	source, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			spanErr(span, err)
			s.logger.WarnContext(ctx, "similar events: source lookup failed", "slug", slug, "err", err)
		}
		return []*domain.Event{}
	}

	similar, err := s.eventRepo.ListSimilar(ctx, source.ID, source.Tags)
	if err != nil {
		spanErr(span, err)
		s.logger.WarnContext(ctx, "similar events: query failed", "slug", slug, "err", err)
		return []*domain.Event{}
	}

	out := make([]*domain.Event, 0, len(similar))
	for _, e := range similar {
		if e != nil && e.ID != source.ID {
			out = append(out, e)
		}
	}
	return out
}

// joinValidation merges the field errors of every *ValidationError in errs.
// Any other non-nil error is returned as is.
func joinValidation(errs ...error) error {
	var fields []domain.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
