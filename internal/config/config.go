// Package config loads the inboxsort server configuration from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is the full server configuration, grouped by concern.
type Config struct {
	App     AppConfig
	Google  GoogleConfig
	OpenAI  OpenAIConfig
	Gmail   GmailConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// AppConfig holds the HTTP listener port and the frontend origin allowed by CORS.
type AppConfig struct {
	Port        int    `env:"PORT" envDefault:"5000"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

// GoogleConfig holds the OAuth client used for the Google sign-in flow.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:5000/auth/google/callback"`
}

// Configured reports whether the OAuth endpoints can be served.
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// OpenAIConfig selects the chat completions endpoint and model used to
// classify emails. The API key arrives with each request.
type OpenAIConfig struct {
	BaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model     string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	MaxTokens int    `env:"OPENAI_MAX_TOKENS" envDefault:"2000"`
}

// GmailConfig controls Gmail API access and the default fetch size.
type GmailConfig struct {
	// Endpoint overrides the Gmail API base URL.
	Endpoint     string `env:"GMAIL_ENDPOINT"`
	DefaultCount int64  `env:"DEFAULT_FETCH_COUNT" envDefault:"15"`
}

// MetricsConfig controls the separate Prometheus metrics listener.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Addr    string `env:"METRICS_ADDR" envDefault:":9090"`
}

// LogConfig sets the slog level and handler format ("text" or "json").
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment without overriding variables that are already set,
// then parses the configuration. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.App.Port))
	}
	if err := validateURL("FRONTEND_URL", c.App.FrontendURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("OPENAI_BASE_URL", c.OpenAI.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.OpenAI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("OPENAI_MAX_TOKENS must be positive, got %d", c.OpenAI.MaxTokens))
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		errs = append(errs, errors.New("OPENAI_MODEL must not be empty"))
	}
	if c.Gmail.DefaultCount <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_FETCH_COUNT must be positive, got %d", c.Gmail.DefaultCount))
	}
	if c.Gmail.Endpoint != "" {
		if err := validateURL("GMAIL_ENDPOINT", c.Gmail.Endpoint); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Google.Configured() {
		if err := validateURL("GOOGLE_REDIRECT_URI", c.Google.RedirectURL); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", name, raw)
	}
	return nil
}
