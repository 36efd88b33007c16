package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `envconfig:"GO_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL selects the store by scheme (postgres:// or mongodb://).
	// It has no default: the connection cache reports a configuration error on first use when empty.
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	MongoDatabase    string        `envconfig:"MONGODB_DATABASE" default:"devevent"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	UploadProvider      string `envconfig:"UPLOAD_PROVIDER" default:"local"`
	UploadFolder        string `envconfig:"UPLOAD_FOLDER" default:"DevEvent"`
	UploadLocalDir      string `envconfig:"UPLOAD_LOCAL_DIR" default:"./uploads"`
	UploadPublicBaseURL string `envconfig:"UPLOAD_PUBLIC_BASE_URL"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket           string `envconfig:"S3_BUCKET"`

	EmailProvider         string `envconfig:"EMAIL_PROVIDER" default:"noop"`
	EmailFromAddress      string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@devevent.local"`
	EmailFromName         string `envconfig:"EMAIL_FROM_NAME" default:"DevEvent"`
	SESInsecureSkipVerify bool   `envconfig:"SES_INSECURE_SKIP_VERIFY" default:"false"`

	AnalyticsProvider string `envconfig:"ANALYTICS_PROVIDER" default:"noop"`
	PostHogAPIKey     string `envconfig:"POSTHOG_API_KEY"`
	PostHogHost       string `envconfig:"POSTHOG_HOST" default:"https://us.i.posthog.com"`

	// OTLPEndpoint enables trace export when set (host:port of an OTLP gRPC collector).
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the .env file usually does not exist and the
	// process environment is authoritative.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the application runs with GO_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
