package workflow

import (
	"context"
	"fmt"

	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/routing"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

// BuildShotContext reconstructs the selector's input from persistent state:
// the shot's characters and source assets, the project LoRA override, and
// the per-character LoRA catalog.
func (m *Manager) BuildShotContext(ctx context.Context, shot *store.Shot) (routing.ShotContext, error) {
	if shot == nil {
		return routing.ShotContext{}, services.Wrap(services.ErrValidation, "workflow", "context", "shot is nil", nil)
	}

	shotCtx := routing.ShotContext{
		CharacterIDs:   shot.CharacterIDs,
		HasSourceImage: shot.SourceImage != "",
		HasSourceClip:  shot.SourceVideo != "",
	}

	assets, err := m.store.LoRAAssetsFor(ctx, shot.CharacterIDs)
	if err != nil {
		return routing.ShotContext{}, err
	}
	shotCtx.CharacterLoRAs = assets

	scene, err := m.store.GetScene(ctx, shot.SceneID)
	if err != nil {
		return routing.ShotContext{}, err
	}
	if scene != nil {
		project, err := m.store.GetProject(ctx, scene.ProjectID)
		if err != nil {
			return routing.ShotContext{}, err
		}
		if project != nil && project.LoRAName != "" {
			shotCtx.ProjectLoRA = &routing.LoRAAsset{Name: project.LoRAName, Weight: project.LoRAWeight}
		}
	}
	return shotCtx, nil
}

// SelectEngine is the pure routing query: it rebuilds the shot context and
// blacklist snapshot and evaluates the rule table. Nothing is persisted; the
// decision (and its rule index) is logged for audit.
func (m *Manager) SelectEngine(ctx context.Context, shotID int64) (routing.Decision, error) {
	shot, err := m.store.GetShot(ctx, shotID)
	if err != nil {
		return routing.Decision{}, err
	}
	if shot == nil {
		return routing.Decision{}, services.Wrap(services.ErrNotFound, "workflow", "select",
			fmt.Sprintf("shot %d", shotID), nil)
	}
	return m.selectForShot(ctx, shot)
}

func (m *Manager) selectForShot(ctx context.Context, shot *store.Shot) (routing.Decision, error) {
	shotCtx, err := m.BuildShotContext(ctx, shot)
	if err != nil {
		return routing.Decision{}, err
	}
	blacklist, err := m.store.BlacklistSnapshot(ctx, shot.CharacterIDs...)
	if err != nil {
		return routing.Decision{}, err
	}

	decision := routing.Select(shotCtx, blacklist)

	m.logger.Info("routing decision",
		logging.String(logging.FieldEventType, "routing_decision"),
		logging.Int64(logging.FieldShotID, shot.ID),
		logging.String(logging.FieldEngine, string(decision.Engine)),
		logging.String("mode", string(decision.Mode)),
		logging.Int("rule_index", decision.RuleIndex),
		logging.String("rule", decision.RuleName),
		logging.Bool("forced_fallback", decision.Forced),
	)
	if decision.Forced {
		m.publishQuiet(ctx, notifications.EventRoutingFallback, notifications.Payload{
			"shotID": shot.ID,
			"engine": decision.Engine,
		})
	}
	return decision, nil
}
