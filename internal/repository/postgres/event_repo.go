package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"devevent/internal/dbconn"
	"devevent/internal/domain"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location, "date", "time",
	mode, audience, agenda, organizer, tags, created_at, updated_at`

type eventRepository struct {
	conn dbconn.Connector[*sql.DB]
}

func NewEventRepository(conn dbconn.Connector[*sql.DB]) domain.EventRepository {
	return &eventRepository{
		conn: conn,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	ctx, span := tracer.Start(ctx, "EventRepository.Create")
	defer span.End()

	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return spanErr(span, err)
	}
	query := `
		INSERT INTO events (title, slug, description, overview, image, venue, location, "date", "time",
			mode, audience, agenda, organizer, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location, e.Date, e.Time,
		string(e.Mode), e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if isUniqueViolation(err, eventsSlugConstraint) {
		return spanErr(span, &domain.DuplicateError{Entity: "event", Field: "slug", Value: e.Slug})
	}
	return spanErr(span, err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.GetByID")
	defer span.End()

	// A malformed id can never match a UUID column.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(db.QueryRowContext(ctx, query, id))
	return e, spanErr(span, err)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.GetBySlug")
	defer span.End()

	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(db.QueryRowContext(ctx, query, slug))
	return e, spanErr(span, err)
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.List")
	defer span.End()

	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	events, err := queryEvents(ctx, db, query)
	return events, spanErr(span, err)
}

func (r *eventRepository) ListSimilar(ctx context.Context, excludeID string, tags []string) ([]*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventRepository.ListSimilar")
	defer span.End()

	if len(tags) == 0 {
		return []*domain.Event{}, nil
	}
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, spanErr(span, err)
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id <> $1 AND tags && $2`
	events, err := queryEvents(ctx, db, query, excludeID, pq.Array(tags))
	return events, spanErr(span, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var mode string
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location, &e.Date, &e.Time,
		&mode, &e.Audience, pq.Array(&e.Agenda), &e.Organizer, pq.Array(&e.Tags), &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Mode = domain.Mode(mode)
	return e, nil
}

func queryEvents(ctx context.Context, db *sql.DB, query string, args ...any) ([]*domain.Event, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func isUniqueViolation(err error, constraint string) bool {
	var perr *pq.Error
	if !errors.As(err, &perr) || perr.Code != uniqueViolation {
		return false
	}
	return perr.Constraint == "" || perr.Constraint == constraint
}
