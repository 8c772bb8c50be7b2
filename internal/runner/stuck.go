package runner

import (
	"context"
	"time"

	"showrunner/internal/logging"
	"showrunner/internal/notifications"
)

// StuckMessage is the error recorded on shots cleared by the operator.
const StuckMessage = "generation stalled; cleared by operator"

// ClearStuck force-fails generating shots with no terminal update inside the
// configured window and reclaims the accelerator gate if a cleared shot was
// presumed to still hold it. Operator-triggered, never automatic: generation
// durations vary too widely by engine and hardware for a safe automatic cut.
func (r *Runner) ClearStuck(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.stuckAfter)
	stale, err := r.store.StaleGenerating(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, shot := range stale {
		if err := r.store.MarkFailed(ctx, shot.ID, StuckMessage); err != nil {
			return cleared, err
		}
		cleared++
		r.logger.Warn("stuck generation cleared",
			logging.String(logging.FieldEventType, "stuck_cleared"),
			logging.Int64(logging.FieldShotID, shot.ID),
			logging.String(logging.FieldEngine, string(shot.Engine)),
		)
		if r.gate.Holder() == gateLabel(shot.ID) {
			if holder, reclaimed := r.gate.Reclaim(); reclaimed {
				r.logger.Warn("gate slot reclaimed from cleared shot",
					logging.String("holder", holder),
				)
			}
		}
	}

	if cleared > 0 {
		if err := r.notifier.Publish(ctx, notifications.EventStuckCleared, notifications.Payload{
			"count": cleared,
		}); err != nil {
			r.logger.Debug("stuck-cleared notification failed", logging.Error(err))
		}
	}
	return cleared, nil
}
