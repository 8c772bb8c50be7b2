package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/engines"
	"showrunner/internal/gate"
	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/render"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

// Runner drives one shot through its generation lifecycle: gate acquisition
// for exclusive engines, backend submission, and the bounded completion poll
// loop.
type Runner struct {
	store    *store.Store
	backend  render.Backend
	gate     *gate.Gate
	notifier notifications.Service
	logger   *slog.Logger

	pollInterval time.Duration
	maxAttempts  int
	outputDir    string
	stuckAfter   time.Duration
	orphanWindow time.Duration
}

// New constructs a runner from configuration.
func New(cfg *config.Config, st *store.Store, backend render.Backend, g *gate.Gate, notifier notifications.Service, logger *slog.Logger) *Runner {
	return &Runner{
		store:        st,
		backend:      backend,
		gate:         g,
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "runner"),
		pollInterval: time.Duration(cfg.Render.PollInterval) * time.Second,
		maxAttempts:  cfg.Render.MaxPollAttempts,
		outputDir:    cfg.Paths.RenderOutputDir,
		stuckAfter:   time.Duration(cfg.Runner.StuckAfterMinutes) * time.Minute,
		orphanWindow: time.Duration(cfg.Runner.OrphanWindowMinutes) * time.Minute,
	}
}

func gateLabel(shotID int64) string {
	return fmt.Sprintf("shot-%d", shotID)
}

// Run executes one generation for a routed shot. The caller must not
// double-dispatch a shot; the pending-to-generating transition inside is the
// guard, and a shot in any other state is rejected.
func (r *Runner) Run(ctx context.Context, shot *store.Shot) error {
	if shot == nil {
		return errors.New("shot is nil")
	}
	if shot.Engine == "" {
		return services.Wrap(services.ErrValidation, "runner", "run",
			fmt.Sprintf("shot %d has no routing decision", shot.ID), nil)
	}

	ctx = services.WithShotID(ctx, shot.ID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldEngine, string(shot.Engine)),
	)

	claimed, err := r.store.MarkGenerating(ctx, shot.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return services.Wrap(services.ErrValidation, "runner", "run",
			fmt.Sprintf("shot %d is not pending", shot.ID), nil)
	}

	if engines.IsExclusive(shot.Engine) {
		token, acquireErr := r.gate.Acquire(ctx, gateLabel(shot.ID))
		if acquireErr != nil {
			r.failShot(ctx, logger, shot, "generation cancelled while waiting for accelerator")
			return acquireErr
		}
		defer func() {
			if releaseErr := r.gate.Release(token); releaseErr != nil && !errors.Is(releaseErr, gate.ErrNotHolder) {
				logger.Warn("gate release failed", logging.Error(releaseErr))
			}
		}()
	}

	job := render.Job{
		ShotID:       shot.ID,
		Engine:       shot.Engine,
		Mode:         shot.Mode,
		Prompt:       shot.Prompt,
		SourceImage:  shot.SourceImage,
		SourceVideo:  shot.SourceVideo,
		LoRAName:     shot.LoRAName,
		LoRAWeight:   shot.LoRAWeight,
		OutputPrefix: render.OutputPrefixForShot(shot.ID),
	}

	start := time.Now()
	handle, err := r.backend.Submit(ctx, job)
	if err != nil {
		r.failShot(ctx, logger, shot, err.Error())
		return err
	}

	logger.Info("generation submitted",
		logging.String(logging.FieldEventType, "generation_submitted"),
		logging.String("job_id", handle.ID),
	)

	return r.awaitCompletion(ctx, logger, shot, handle, start)
}

// awaitCompletion is the explicit poll loop: bounded interval, bounded
// attempts. On exhaustion the shot stays generating so orphan recovery or
// clear-stuck can reconcile it.
func (r *Runner) awaitCompletion(ctx context.Context, logger *slog.Logger, shot *store.Shot, handle render.JobHandle, start time.Time) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			r.failShot(ctx, logger, shot, "generation cancelled")
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := r.backend.Poll(ctx, handle)
		if err != nil {
			// Transient poll failures burn an attempt but do not fail the
			// shot; the backend may still be rendering.
			logger.Warn("poll failed", logging.Error(err))
			continue
		}

		switch status.State {
		case render.StateCompleted:
			duration := time.Since(start)
			if err := r.store.MarkCompleted(ctx, shot.ID, status.ArtifactPath, duration); err != nil {
				return err
			}
			logger.Info("generation completed",
				logging.String(logging.FieldEventType, "generation_completed"),
				logging.String("artifact", status.ArtifactPath),
				logging.Duration("duration", duration),
			)
			if err := r.notifier.Publish(ctx, notifications.EventGenerationCompleted, notifications.Payload{
				"shotID":   shot.ID,
				"engine":   shot.Engine,
				"duration": duration.Round(time.Second),
			}); err != nil {
				logger.Debug("completion notification failed", logging.Error(err))
			}
			return nil
		case render.StateFailed:
			r.failShot(ctx, logger, shot, status.Error)
			return services.Wrap(services.ErrExternalTool, "runner", "generate", status.Error, nil)
		case render.StateQueued, render.StateRunning:
			// keep polling
		}
	}

	logger.Warn("poll attempts exhausted; shot left for recovery",
		logging.String(logging.FieldEventType, "generation_stalled"),
		logging.String("job_id", handle.ID),
		logging.String(logging.FieldAlert, "stalled_generation"),
	)
	return services.Wrap(services.ErrTimeout, "runner", "generate",
		fmt.Sprintf("no terminal status after %d polls", r.maxAttempts), nil)
}

func (r *Runner) failShot(ctx context.Context, logger *slog.Logger, shot *store.Shot, message string) {
	persistCtx := context.WithoutCancel(ctx)
	if err := r.store.MarkFailed(persistCtx, shot.ID, message); err != nil {
		logger.Error("failed to persist shot failure", logging.Error(err))
		return
	}
	logger.Error("generation failed",
		logging.String(logging.FieldEventType, "generation_failed"),
		logging.String("error_message", message),
	)
	if err := r.notifier.Publish(persistCtx, notifications.EventGenerationFailed, notifications.Payload{
		"shotID": shot.ID,
		"engine": shot.Engine,
		"error":  message,
	}); err != nil {
		logger.Debug("failure notification failed", logging.Error(err))
	}
}
