package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort   string `envconfig:"APP_PORT" default:"8080"`
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`

	APIBaseURL       string        `envconfig:"API_BASE_URL" default:"http://localhost:3000"`
	APITimeout       time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	SignupAPITimeout time.Duration `envconfig:"SIGNUP_API_TIMEOUT" default:"10s"`

	Auth0Domain         string `envconfig:"AUTH0_DOMAIN"`
	Auth0ClientID       string `envconfig:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret   string `envconfig:"AUTH0_CLIENT_SECRET"`
	Auth0Audience       string `envconfig:"AUTH0_AUDIENCE"`
	Auth0ClaimNamespace string `envconfig:"AUTH0_CLAIM_NAMESPACE"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"true"`

	SignupFlowTTL   time.Duration `envconfig:"SIGNUP_FLOW_TTL" default:"30m"`
	SignupRateLimit float64       `envconfig:"SIGNUP_RATE_LIMIT" default:"2"`
	SignupRateBurst int           `envconfig:"SIGNUP_RATE_BURST" default:"10"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	OTelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
	OTelServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"nexus-dashboard"`
	OTelSampleRatio float64 `envconfig:"OTEL_TRACE_SAMPLE_RATIO" default:"0.1"`
}

// Load reads the environment, after merging an optional .env file.
// Missing identity-provider settings are reported as an error; the
// caller treats that as fatal.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if c.Auth0Domain == "" {
		missing = append(missing, "AUTH0_DOMAIN")
	}
	if c.Auth0ClientID == "" {
		missing = append(missing, "AUTH0_CLIENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.APIBaseURL == "" {
		return errors.New("config: API_BASE_URL cannot be empty")
	}
	if c.APITimeout <= 0 || c.SignupAPITimeout <= 0 {
		return errors.New("config: API timeouts must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	return nil
}

// Issuer returns the OIDC issuer URL derived from the tenant domain.
func (c Config) Issuer() string {
	domain := strings.TrimSuffix(c.Auth0Domain, "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain + "/"
}

func (c Config) CallbackURL() string {
	return strings.TrimSuffix(c.PublicURL, "/") + "/callback"
}
