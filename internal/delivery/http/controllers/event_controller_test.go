package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createEventErr error
	getBySlugErr   error
	listErr        error
	events         []*domain.Event
	similar        []*domain.Event
	lastCreate     *domain.Event
	lastImage      *domain.ImageFile
	lastSlug       string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, ev *domain.Event, img *domain.ImageFile) (*domain.Event, error) {
	f.lastCreate = ev
	f.lastImage = img
	if f.createEventErr != nil {
		return nil, f.createEventErr
	}
	out := *ev
	out.ID = "ev-created"
	out.Slug = "created-slug"
	out.Image = "/uploads/DevEvent/banner.png"
	return &out, nil
}

func (f *fakeEventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.lastSlug = slug
	if f.getBySlugErr != nil {
		return nil, f.getBySlugErr
	}
	for _, ev := range f.events {
		if ev.Slug == slug {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEventService) FindSimilar(ctx context.Context, slug string) []*domain.Event {
	f.lastSlug = slug
	return f.similar
}

type formPart struct {
	name, value string
}

// multipartBody builds a createEvent form. A nil image omits the file part.
func multipartBody(t *testing.T, fields []formPart, image []byte, imageType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f.name, f.value))
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="banner.png"`)
		if imageType != "" {
			h.Set("Content-Type", imageType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func validFields() []formPart {
	return []formPart{
		{"title", "Go Conf 2025"},
		{"description", "A day of Go"},
		{"overview", "Talks and workshops"},
		{"venue", "Hall A"},
		{"location", "Berlin"},
		{"date", "2025-11-20"},
		{"time", "9:30 AM"},
		{"mode", "hybrid"},
		{"audience", "Developers"},
		{"organizer", "Gophers"},
		{"agenda", `["Keynote","Lunch"]`},
		{"tags", "go"},
		{"tags", "cloud"},
	}
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) (T, *helpers.APIError) {
	t.Helper()
	var envelope struct {
		Data  T                 `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope.Data, envelope.Error
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name        string
		image       []byte
		imageType   string
		fields      []formPart
		fakeErr     error
		wantStatus  int
		wantCode    string
		checkFake   func(t *testing.T, fake *fakeEventService)
		checkResult func(t *testing.T, ev domain.Event)
	}{
		{
			name:       "success",
			image:      pngBytes,
			imageType:  "image/png",
			fields:     validFields(),
			wantStatus: http.StatusCreated,
			checkFake: func(t *testing.T, fake *fakeEventService) {
				require.NotNil(t, fake.lastImage)
				assert.Equal(t, "image/png", fake.lastImage.ContentType)
				assert.Equal(t, "banner.png", fake.lastImage.Filename)
				assert.Equal(t, []string{"Keynote", "Lunch"}, fake.lastCreate.Agenda)
				assert.Equal(t, []string{"go", "cloud"}, fake.lastCreate.Tags)
				assert.Equal(t, domain.ModeHybrid, fake.lastCreate.Mode)
			},
			checkResult: func(t *testing.T, ev domain.Event) {
				assert.Equal(t, "ev-created", ev.ID)
				assert.Equal(t, "Go Conf 2025", ev.Title)
			},
		},
		{
			name:       "content type sniffed when part has none",
			image:      pngBytes,
			fields:     validFields(),
			wantStatus: http.StatusCreated,
			checkFake: func(t *testing.T, fake *fakeEventService) {
				assert.Equal(t, "image/png", fake.lastImage.ContentType)
			},
		},
		{
			name:       "missing image is passed on as nil",
			fields:     validFields(),
			fakeErr:    domain.NewValidationError("image", "Image file is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
			checkFake: func(t *testing.T, fake *fakeEventService) {
				assert.Nil(t, fake.lastImage)
			},
		},
		{
			name:       "malformed agenda json",
			image:      pngBytes,
			fields:     append(validFields()[:10], formPart{"agenda", `["Keynote"`}, formPart{"tags", "go"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
			checkFake: func(t *testing.T, fake *fakeEventService) {
				assert.Nil(t, fake.lastCreate, "service must not be called")
			},
		},
		{
			name:       "duplicate slug",
			image:      pngBytes,
			imageType:  "image/png",
			fields:     validFields(),
			fakeErr:    &domain.DuplicateError{Entity: "event", Field: "slug", Value: "go-conf-2025"},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "upload failure",
			image:      pngBytes,
			imageType:  "image/png",
			fields:     validFields(),
			fakeErr:    fmt.Errorf("upload image: %w", domain.ErrUpstream),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   helpers.ErrCodeServiceUnavailable,
		},
		{
			name:       "unexpected error",
			image:      pngBytes,
			imageType:  "image/png",
			fields:     validFields(),
			fakeErr:    errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{createEventErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			body, contentType := multipartBody(t, tt.fields, tt.image, tt.imageType)
			req := httptest.NewRequest(http.MethodPost, "/api/events", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			ev, apiErr := decodeData[domain.Event](t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
			} else {
				require.Nil(t, apiErr)
			}
			if tt.checkFake != nil {
				tt.checkFake(t, fake)
			}
			if tt.checkResult != nil {
				tt.checkResult(t, ev)
			}
		})
	}
}

func TestEventController_CreateEvent_NotMultipart(t *testing.T) {
	fake := &fakeEventService{}
	ctrl := NewEventController(testLogger, fake)
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, fake.lastCreate)
}

func TestEventController_GetEventBySlug(t *testing.T) {
	events := []*domain.Event{{ID: "ev-1", Slug: "go-conf", Title: "Go Conf"}}
	tests := []struct {
		name       string
		slug       string
		fakeErr    error
		wantStatus int
		wantCode   string
		wantSlug   string
	}{
		{name: "found", slug: "go-conf", wantStatus: http.StatusOK, wantSlug: "go-conf"},
		{name: "normalized before lookup", slug: "  Go-Conf ", wantStatus: http.StatusOK, wantSlug: "go-conf"},
		{name: "not found", slug: "rust-conf", wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound, wantSlug: "rust-conf"},
		{name: "malformed slug", slug: "go--conf", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "empty slug", slug: "   ", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "database down", slug: "go-conf", fakeErr: domain.ErrConnection, wantStatus: http.StatusServiceUnavailable, wantCode: helpers.ErrCodeServiceUnavailable, wantSlug: "go-conf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{events: events, getBySlugErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/api/events/x", nil)
			req.SetPathValue("slug", tt.slug)
			rr := httptest.NewRecorder()

			ctrl.GetEventBySlug(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantSlug, fake.lastSlug)
			ev, apiErr := decodeData[domain.Event](t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "ev-1", ev.ID)
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeEventService{events: []*domain.Event{{ID: "b"}, {ID: "a"}}}
		ctrl := NewEventController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		list, apiErr := decodeData[[]domain.Event](t, rr)
		require.Nil(t, apiErr)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
	})
	t.Run("service error", func(t *testing.T) {
		fake := &fakeEventService{listErr: errors.New("db error")}
		ctrl := NewEventController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db error")
	})
}

func TestEventController_ListEvents_ClientGone(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelError}))
	fake := &fakeEventService{listErr: fmt.Errorf("list events: %w", context.Canceled)}
	ctrl := NewEventController(logger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, helpers.StatusClientClosedRequest, rr.Code)
	_, apiErr := decodeData[[]domain.Event](t, rr)
	require.NotNil(t, apiErr)
	assert.Equal(t, helpers.ErrCodeRequestCanceled, apiErr.Code)
	assert.Empty(t, logs.String(), "a canceled request is not an error")
}

func TestEventController_SimilarEvents(t *testing.T) {
	t.Run("returns matches", func(t *testing.T) {
		fake := &fakeEventService{similar: []*domain.Event{{ID: "ev-2", Slug: "cloud-day"}}}
		ctrl := NewEventController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/api/events/go-conf/similar", nil)
		req.SetPathValue("slug", "go-conf")
		rr := httptest.NewRecorder()

		ctrl.SimilarEvents(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		list, _ := decodeData[[]domain.Event](t, rr)
		require.Len(t, list, 1)
		assert.Equal(t, "cloud-day", list[0].Slug)
	})
	t.Run("nil result is an empty array", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})
		req := httptest.NewRequest(http.MethodGet, "/api/events/go-conf/similar", nil)
		req.SetPathValue("slug", "go-conf")
		rr := httptest.NewRecorder()

		ctrl.SimilarEvents(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	})
	t.Run("malformed slug", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})
		req := httptest.NewRequest(http.MethodGet, "/api/events/x/similar", nil)
		req.SetPathValue("slug", "not a slug")
		rr := httptest.NewRecorder()

		ctrl.SimilarEvents(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
