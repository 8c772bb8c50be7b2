package testsupport

import (
	"path/filepath"
	"testing"

	"showrunner/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and fast polling so runner tests finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RenderOutputDir = filepath.Join(base, "renders")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Render.BaseURL = "http://127.0.0.1:0"
	cfg.Render.PollInterval = 1
	cfg.Render.MaxPollAttempts = 5

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithRenderBaseURL points the render backend at a test server.
func WithRenderBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Render.BaseURL = url
	}
}

// WithMaxPollAttempts overrides the poll bound on the test config.
func WithMaxPollAttempts(attempts int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Render.MaxPollAttempts = attempts
	}
}
