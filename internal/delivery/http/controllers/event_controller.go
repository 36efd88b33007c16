package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"
)

// maxMultipartBody caps the whole createEvent request: the image limit plus room for text fields.
const maxMultipartBody = domain.MaxImageSize + 1<<20

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// slugRegex matches a normalized slug: lowercase alphanumeric runs joined by single hyphens.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for event lists.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event from a multipart form. The banner image is uploaded only after every text field validated; slug and timestamps are server-generated. agenda and tags accept a JSON array string or repeated form values.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param overview formData string true "Overview"
// @Param venue formData string true "Venue"
// @Param location formData string true "Location"
// @Param date formData string true "Date (any common layout, stored as YYYY-MM-DD)"
// @Param time formData string true "Time (e.g. 9:30 AM or 14:00, stored as HH:MM)"
// @Param mode formData string true "online, offline or hybrid"
// @Param audience formData string true "Audience"
// @Param organizer formData string true "Organizer"
// @Param agenda formData string true "Agenda items"
// @Param tags formData string true "Tags"
// @Param image formData file true "Banner image (JPEG, PNG, WebP or GIF, at most 5MB)"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteServiceError(w, domain.NewValidationError("image", "File size exceeds 5MB limit"))
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	agenda, err := formList(r.MultipartForm, "agenda")
	if err != nil {
		helpers.WriteServiceError(w, domain.NewValidationError("agenda", "Agenda must be a JSON array of strings"))
		return
	}
	tags, err := formList(r.MultipartForm, "tags")
	if err != nil {
		helpers.WriteServiceError(w, domain.NewValidationError("tags", "Tags must be a JSON array of strings"))
		return
	}

	event := &domain.Event{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Overview:    r.FormValue("overview"),
		Venue:       r.FormValue("venue"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Mode:        domain.Mode(r.FormValue("mode")),
		Audience:    r.FormValue("audience"),
		Organizer:   r.FormValue("organizer"),
		Agenda:      agenda,
		Tags:        tags,
	}

	image, err := readImage(r)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read image")
		return
	}

	created, err := c.Service.CreateEvent(r.Context(), event, image)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event, newest first.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the events"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventBySlug godoc
// @Summary Get an event by slug
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /api/events/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEventBySlug(r.Context(), slug)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SimilarEvents godoc
// @Summary Find similar events
// @Description Events sharing at least one tag with the given event. Lookup failures yield an empty list.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the similar events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/events/{slug}/similar [get]
func (c *EventController) SimilarEvents(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugParam(w, r)
	if !ok {
		return
	}
	events := c.Service.FindSimilar(r.Context(), slug)
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if status := helpers.WriteServiceError(w, err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// slugParam reads the {slug} path value, normalizes it and writes a 400 when it is malformed.
func slugParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(r.PathValue("slug")))
	if !slugRegex.MatchString(slug) {
		helpers.WriteServiceError(w, domain.NewValidationError("slug", "Invalid slug"))
		return "", false
	}
	return slug, true
}

// formList reads a list field sent either as one JSON array string or as repeated values.
func formList(form *multipart.Form, key string) ([]string, error) {
	values := form.Value[key]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	return values, nil
}

// readImage returns nil when no image part was sent so the service reports it with the other field errors.
func readImage(r *http.Request) (*domain.ImageFile, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &domain.ImageFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
	}, nil
}
