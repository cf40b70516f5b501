package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "FRONTEND_URL", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URI",
	"OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_MAX_TOKENS", "GMAIL_ENDPOINT", "DEFAULT_FETCH_COUNT",
	"METRICS_ENABLED", "METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, "http://localhost:5173", cfg.App.FrontendURL)
	assert.Equal(t, "http://localhost:5000/auth/google/callback", cfg.Google.RedirectURL)
	assert.False(t, cfg.Google.Configured())
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 2000, cfg.OpenAI.MaxTokens)
	assert.Equal(t, int64(15), cfg.Gmail.DefaultCount)
	assert.Empty(t, cfg.Gmail.Endpoint)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.Google.Configured())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=6000\nOPENAI_MODEL=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.App.Port)
	assert.Equal(t, "from-env", cfg.OpenAI.Model, "process environment wins over .env")
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load(missingFile(t))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Port: 5000, FrontendURL: "http://localhost:5173"},
			Google:  GoogleConfig{RedirectURL: "http://localhost:5000/auth/google/callback"},
			OpenAI:  OpenAIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o", MaxTokens: 2000},
			Gmail:   GmailConfig{DefaultCount: 15},
			Metrics: MetricsConfig{Enabled: true, Addr: ":9090"},
			Log:     LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.App.Port = 0 }, errContains: "PORT"},
		{name: "bad frontend url", mutate: func(c *Config) { c.App.FrontendURL = "localhost:5173" }, errContains: "FRONTEND_URL"},
		{name: "bad openai url", mutate: func(c *Config) { c.OpenAI.BaseURL = "ftp://x" }, errContains: "OPENAI_BASE_URL"},
		{name: "zero max tokens", mutate: func(c *Config) { c.OpenAI.MaxTokens = 0 }, errContains: "OPENAI_MAX_TOKENS"},
		{name: "empty model", mutate: func(c *Config) { c.OpenAI.Model = " " }, errContains: "OPENAI_MODEL"},
		{name: "zero fetch count", mutate: func(c *Config) { c.Gmail.DefaultCount = 0 }, errContains: "DEFAULT_FETCH_COUNT"},
		{name: "bad gmail endpoint", mutate: func(c *Config) { c.Gmail.Endpoint = "nope" }, errContains: "GMAIL_ENDPOINT"},
		{
			name: "bad redirect when google configured",
			mutate: func(c *Config) {
				c.Google = GoogleConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "/callback"}
			},
			errContains: "GOOGLE_REDIRECT_URI",
		},
		{
			name:   "redirect ignored when google not configured",
			mutate: func(c *Config) { c.Google.RedirectURL = "/callback" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
