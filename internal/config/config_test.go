package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"showrunner/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if path != missing {
		t.Fatalf("path = %q, want %q", path, missing)
	}
	if cfg.Render.PollInterval != config.Default().Render.PollInterval {
		t.Fatalf("defaults not applied: %+v", cfg.Render)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[render]
base_url = "http://render-box:8188/"
poll_interval = 2

[runner]
scene_fanout_limit = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("existing file reported missing")
	}
	if cfg.Render.BaseURL != "http://render-box:8188" {
		t.Fatalf("base url = %q, trailing slash must be trimmed", cfg.Render.BaseURL)
	}
	if cfg.Render.PollInterval != 2 || cfg.Runner.SceneFanoutLimit != 8 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Render, cfg.Runner)
	}
	// Untouched sections keep defaults.
	if cfg.Gate.WaitWarnSeconds != config.Default().Gate.WaitWarnSeconds {
		t.Fatalf("gate defaults lost: %+v", cfg.Gate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad-scheme":    "[render]\nbase_url = \"ftp://render\"\n",
		"zero-interval": "[render]\npoll_interval = 0\n",
		"zero-fanout":   "[runner]\nscene_fanout_limit = 0\n",
		"bad-format":    "[logging]\nformat = \"xml\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("second write must refuse to overwrite")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(content), "[render]") {
		t.Fatal("sample config missing render section")
	}
}

func TestEnsureDirectoriesAndDerivedPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RenderOutputDir = filepath.Join(base, "renders")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.RenderOutputDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Paths.DataDir, "showrunner.db") {
		t.Fatalf("database path = %q", cfg.DatabasePath())
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.DataDir, "showrunnerd.lock") {
		t.Fatalf("lock path = %q", cfg.LockPath())
	}
}
