package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devevent/config"
	"devevent/internal/adapters/analytics"
	"devevent/internal/adapters/awscfg"
	"devevent/internal/adapters/email"
	"devevent/internal/adapters/upload"
	deliveryhttp "devevent/internal/delivery/http"
	"devevent/internal/delivery/http/controllers"
	"devevent/internal/obs"
	"devevent/internal/services"
)

const serviceName = "devevent"

// @title DevEvent API
// @version 0.1.0
// @description Event listing and booking API.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer flush(logger, "tracer", shutdownTracer)

	st, err := openStore(cfg.DatabaseURL, cfg.MongoDatabase, cfg.DBConnectTimeout)
	if err != nil {
		return err
	}
	defer flush(logger, "database", st.close)
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, database operations will fail until it is configured")
	}
	logger.Info("store selected", "kind", st.kind)

	aws := awscfg.Settings{
		Region:             cfg.AWSRegion,
		AccessKeyID:        cfg.AWSAccessKeyID,
		SecretAccessKey:    cfg.AWSSecretAccessKey,
		InsecureSkipVerify: cfg.SESInsecureSkipVerify,
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		AWS:         aws,
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	uploader, err := upload.NewUploader(upload.Config{
		Provider:      cfg.UploadProvider,
		Bucket:        cfg.S3Bucket,
		LocalDir:      cfg.UploadLocalDir,
		PublicBaseURL: cfg.UploadPublicBaseURL,
		AWS:           awscfg.Settings{Region: cfg.AWSRegion, AccessKeyID: cfg.AWSAccessKeyID, SecretAccessKey: cfg.AWSSecretAccessKey},
	}, logger)
	if err != nil {
		return err
	}
	sink, err := analytics.NewSink(analytics.Config{
		Provider: cfg.AnalyticsProvider,
		APIKey:   cfg.PostHogAPIKey,
		Host:     cfg.PostHogHost,
	}, logger)
	if err != nil {
		return err
	}
	defer flush(logger, "analytics", func(context.Context) error { return sink.Close() })

	eventService := services.NewEventService(st.events, uploader, sink, logger, cfg.UploadFolder, cfg.RequestTimeout)
	emailService := services.NewEmailService(mailer, renderer, logger)
	bookingService := services.NewBookingService(st.events, st.bookings, emailService, sink, logger, cfg.RequestTimeout)

	routes := deliveryhttp.RouterConfig{
		Events:   controllers.NewEventController(logger, eventService),
		Bookings: controllers.NewBookingController(logger, bookingService),
		Health:   controllers.NewHealthController(logger, st.ping),
	}
	if cfg.UploadProvider == "local" || cfg.UploadProvider == "" {
		routes.UploadDir = cfg.UploadLocalDir
	}
	handler := deliveryhttp.NewHandler(deliveryhttp.NewRouter(routes), logger, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// flush runs a shutdown hook with its own deadline and logs failures.
func flush(logger *slog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown failed", "component", name, "err", err)
	}
}
