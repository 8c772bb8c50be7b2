package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	if err := c.validateRunner(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.RenderOutputDir) == "" {
		return errors.New("paths.render_output_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if strings.TrimSpace(c.Render.BaseURL) == "" {
		return errors.New("render.base_url must be set")
	}
	if !strings.HasPrefix(c.Render.BaseURL, "http://") && !strings.HasPrefix(c.Render.BaseURL, "https://") {
		return fmt.Errorf("render.base_url must be an http(s) URL, got %q", c.Render.BaseURL)
	}
	if c.Render.PollInterval <= 0 {
		return errors.New("render.poll_interval must be positive")
	}
	if c.Render.MaxPollAttempts <= 0 {
		return errors.New("render.max_poll_attempts must be positive")
	}
	if c.Render.RequestTimeout <= 0 {
		return errors.New("render.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateGate() error {
	if c.Gate.WaitWarnSeconds <= 0 {
		return errors.New("gate.wait_warn_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRunner() error {
	if c.Runner.StuckAfterMinutes <= 0 {
		return errors.New("runner.stuck_after_minutes must be positive")
	}
	if c.Runner.OrphanWindowMinutes <= 0 {
		return errors.New("runner.orphan_window_minutes must be positive")
	}
	if c.Runner.SceneFanoutLimit <= 0 {
		return errors.New("runner.scene_fanout_limit must be positive")
	}
	if c.Runner.MaintenanceIntervalMinutes <= 0 {
		return errors.New("runner.maintenance_interval_minutes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
