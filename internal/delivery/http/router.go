package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "devevent/docs"
	"devevent/internal/delivery/http/controllers"
	"devevent/internal/delivery/http/middleware"
)

// UploadsPath is where locally stored banner images are served from.
const UploadsPath = "/uploads/"

// RouterConfig carries the controllers and serving options for NewRouter.
type RouterConfig struct {
	Events   *controllers.EventController
	Bookings *controllers.BookingController
	Health   *controllers.HealthController
	// UploadDir, when set, is served read-only under UploadsPath.
	UploadDir string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /api/events", cfg.Events.CreateEvent)
	mux.HandleFunc("GET /api/events", cfg.Events.ListEvents)
	mux.HandleFunc("GET /api/events/{slug}", cfg.Events.GetEventBySlug)
	mux.HandleFunc("GET /api/events/{slug}/similar", cfg.Events.SimilarEvents)
	mux.HandleFunc("GET /api/events/{slug}/bookings/count", cfg.Bookings.CountBookings)

	// Bookings
	mux.HandleFunc("POST /api/bookings", cfg.Bookings.CreateBooking)

	mux.HandleFunc("GET /healthz", cfg.Health.Health)

	if cfg.UploadDir != "" {
		mux.Handle("GET "+UploadsPath, http.StripPrefix(UploadsPath, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with tracing, request logging and CORS.
func NewHandler(mux *http.ServeMux, logger *slog.Logger, allowedOrigins []string) http.Handler {
	var h http.Handler = middleware.CORS(allowedOrigins, mux)
	h = middleware.LoggingMiddleware(logger, h)
	return otelhttp.NewHandler(h, "devevent",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return operation + " " + r.Method
		}),
	)
}
