package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"showrunner/internal/logging"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

// GenerateShot routes and renders one shot synchronously. The shot must be
// pending; completed or failed shots are regenerated by resetting them
// first. Re-routing happens here on every call, so blacklist growth between
// attempts changes the outcome.
func (m *Manager) GenerateShot(ctx context.Context, shotID int64) error {
	shot, err := m.store.GetShot(ctx, shotID)
	if err != nil {
		return err
	}
	if shot == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "generate",
			fmt.Sprintf("shot %d", shotID), nil)
	}
	if shot.Status != store.ShotPending {
		return services.Wrap(services.ErrValidation, "workflow", "generate",
			fmt.Sprintf("shot %d is %s; reset it to regenerate", shotID, shot.Status), nil)
	}

	decision, err := m.selectForShot(ctx, shot)
	if err != nil {
		return err
	}
	shot.ApplyDecision(decision)
	if err := m.store.UpdateShot(ctx, shot); err != nil {
		return err
	}

	return m.runner.Run(ctx, shot)
}

// DispatchShot validates and routes a shot, then renders it on a background
// task. The returned error is the accept/reject outcome, not the render
// result; render failures land on the shot row and in the notification sink.
func (m *Manager) DispatchShot(ctx context.Context, shotID int64) error {
	shot, err := m.store.GetShot(ctx, shotID)
	if err != nil {
		return err
	}
	if shot == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "dispatch",
			fmt.Sprintf("shot %d", shotID), nil)
	}
	if shot.Status != store.ShotPending {
		return services.Wrap(services.ErrValidation, "workflow", "dispatch",
			fmt.Sprintf("shot %d is %s; reset it to regenerate", shotID, shot.Status), nil)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.GenerateShot(context.WithoutCancel(ctx), shotID); err != nil {
			m.logger.Error("dispatched generation failed",
				logging.Int64(logging.FieldShotID, shotID),
				logging.Error(err),
			)
		}
	}()
	return nil
}

// GenerateScene fans a scene request out into per-shot generations. The
// fan-out is bounded by configuration; the gate still serializes exclusive
// engines underneath. Per-shot failures do not abort the rest of the scene.
func (m *Manager) GenerateScene(ctx context.Context, sceneID int64) (int, error) {
	scene, err := m.store.GetScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}
	if scene == nil {
		return 0, services.Wrap(services.ErrNotFound, "workflow", "scene",
			fmt.Sprintf("scene %d", sceneID), nil)
	}

	shots, err := m.store.ShotsByScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.cfg.Runner.SceneFanoutLimit)

	started := 0
	for _, shot := range shots {
		if shot.Status != store.ShotPending {
			continue
		}
		started++
		shotID := shot.ID
		group.Go(func() error {
			if err := m.GenerateShot(groupCtx, shotID); err != nil {
				m.logger.Error("scene shot generation failed",
					logging.Int64(logging.FieldSceneID, sceneID),
					logging.Int64(logging.FieldShotID, shotID),
					logging.Error(err),
				)
			}
			// Failures are recorded per shot; never collapse the scene.
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return started, err
	}
	return started, nil
}

// ResetShot returns a terminal shot to pending for regeneration.
func (m *Manager) ResetShot(ctx context.Context, shotID int64) error {
	return m.store.ResetShot(ctx, shotID)
}
