package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"devevent/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu         sync.Mutex
	byID       map[string]*domain.Event
	order      []string
	nextID     int
	createErr  error
	getErr     error
	similarErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
	for _, e := range events {
		f.byID[e.ID] = e
		f.order = append(f.order, e.ID)
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Slug == e.Slug {
			return &domain.DuplicateError{Entity: "event", Field: "slug", Value: e.Slug}
		}
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]*domain.Event, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.byID[f.order[i]])
	}
	return out, nil
}

func (f *fakeEventRepo) ListSimilar(ctx context.Context, excludeID string, tags []string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []*domain.Event
	for _, id := range f.order {
		e := f.byID[id]
		if e.ID == excludeID {
			continue
		}
		for _, t := range e.Tags {
			if want[t] {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// fakeBookingRepo enforces (event, email) uniqueness in Create like the storage constraint does.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  []*domain.Booking
	skipCheck bool // GetByEventAndEmail always misses, as when two requests race
	getErr    error
	createErr error
	countErr  error
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.bookings {
		if existing.EventID == b.EventID && existing.Email == b.Email {
			return &domain.DuplicateError{Entity: "booking", Field: "email", Value: b.Email}
		}
	}
	b.ID = fmt.Sprintf("bk-%d", len(f.bookings)+1)
	stored := *b
	f.bookings = append(f.bookings, &stored)
	return nil
}

func (f *fakeBookingRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.skipCheck {
		return nil, domain.ErrNotFound
	}
	for _, b := range f.bookings {
		if b.EventID == eventID && b.Email == email {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, b := range f.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakeUploader struct {
	url    string
	err    error
	calls  int
	folder string
}

func (f *fakeUploader) Upload(ctx context.Context, folder string, img *domain.ImageFile) (string, error) {
	f.calls++
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type capturedEvent struct {
	distinctID string
	event      string
	props      map[string]any
}

type fakeAnalytics struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakeAnalytics) Capture(ctx context.Context, distinctID, event string, props map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{distinctID: distinctID, event: event, props: props})
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
