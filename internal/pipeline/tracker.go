package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"showrunner/internal/logging"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

// OverrideAction enumerates the manual phase overrides an operator can apply.
type OverrideAction string

const (
	OverrideSkip     OverrideAction = "skip"
	OverrideReset    OverrideAction = "reset"
	OverrideComplete OverrideAction = "complete"
)

// ParseOverrideAction converts a string into a known OverrideAction.
func ParseOverrideAction(value string) (OverrideAction, bool) {
	switch OverrideAction(strings.ToLower(strings.TrimSpace(value))) {
	case OverrideSkip:
		return OverrideSkip, true
	case OverrideReset:
		return OverrideReset, true
	case OverrideComplete:
		return OverrideComplete, true
	default:
		return "", false
	}
}

// Tracker maintains ordered phase state per project or character. It records
// phase outcomes; the aggregate conditions that complete a phase are computed
// by collaborators, which call Advance when a threshold is crossed.
type Tracker struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTracker constructs a phase tracker.
func NewTracker(st *store.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  st,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Entries returns the entity's phase rows in sequence order, seeding missing
// rows as pending first.
func (t *Tracker) Entries(ctx context.Context, entityType store.EntityType, entityID string) ([]store.PipelineEntry, error) {
	sequence := Sequence(entityType)
	if sequence == nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "entries",
			fmt.Sprintf("unknown entity type %q", entityType), nil)
	}
	if err := t.store.SeedPipeline(ctx, entityType, entityID, sequence); err != nil {
		return nil, err
	}
	byPhase, err := t.store.PipelineEntries(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	entries := make([]store.PipelineEntry, 0, len(sequence))
	for _, phase := range sequence {
		entries = append(entries, byPhase[phase])
	}
	return entries, nil
}

// Current resolves the entity's current phase: the first active phase, else
// the first failed, else the first pending, else the terminal phase.
func (t *Tracker) Current(ctx context.Context, entityType store.EntityType, entityID string) (store.PipelineEntry, error) {
	entries, err := t.Entries(ctx, entityType, entityID)
	if err != nil {
		return store.PipelineEntry{}, err
	}
	for _, status := range []store.PhaseStatus{store.PhaseActive, store.PhaseFailed, store.PhasePending} {
		for _, entry := range entries {
			if entry.Status == status {
				return entry, nil
			}
		}
	}
	return entries[len(entries)-1], nil
}

// Advance moves the entity forward one step: an active current phase is
// completed and the next non-done phase activated; a pending current phase
// is activated. Call it when a collaborator reports the phase's aggregate
// condition crossed. Overrides never cascade here; operators trigger Advance
// separately after an override.
func (t *Tracker) Advance(ctx context.Context, entityType store.EntityType, entityID string) (store.PipelineEntry, error) {
	entries, err := t.Entries(ctx, entityType, entityID)
	if err != nil {
		return store.PipelineEntry{}, err
	}

	current, err := t.Current(ctx, entityType, entityID)
	if err != nil {
		return store.PipelineEntry{}, err
	}

	switch current.Status {
	case store.PhaseFailed:
		return store.PipelineEntry{}, services.Wrap(services.ErrValidation, "pipeline", "advance",
			fmt.Sprintf("phase %s is failed; reset it before advancing", current.Phase), nil)
	case store.PhasePending:
		if err := t.requirePredecessorsDone(entries, current.Phase); err != nil {
			return store.PipelineEntry{}, err
		}
		if err := t.store.SetPhaseStatus(ctx, entityType, entityID, current.Phase, store.PhaseActive); err != nil {
			return store.PipelineEntry{}, err
		}
		t.logAdvance(entityType, entityID, current.Phase, store.PhaseActive)
		return t.Current(ctx, entityType, entityID)
	case store.PhaseActive:
		if err := t.requirePredecessorsDone(entries, current.Phase); err != nil {
			return store.PipelineEntry{}, err
		}
		if err := t.store.SetPhaseStatus(ctx, entityType, entityID, current.Phase, store.PhaseCompleted); err != nil {
			return store.PipelineEntry{}, err
		}
		t.logAdvance(entityType, entityID, current.Phase, store.PhaseCompleted)
		if next, ok := nextPhase(entries, current.Phase); ok {
			if err := t.store.SetPhaseStatus(ctx, entityType, entityID, next, store.PhaseActive); err != nil {
				return store.PipelineEntry{}, err
			}
			t.logAdvance(entityType, entityID, next, store.PhaseActive)
		}
		return t.Current(ctx, entityType, entityID)
	default:
		// Every phase is completed or skipped; nothing to advance.
		return current, nil
	}
}

// Override applies a manual transition immediately. skip waives the phase's
// completion condition; reset returns a failed phase to pending; complete
// force-marks a phase whose predecessors are all done. Overrides never
// cascade to later phases.
func (t *Tracker) Override(ctx context.Context, entityType store.EntityType, entityID, phase string, action OverrideAction) error {
	if !ValidPhase(entityType, phase) {
		return services.Wrap(services.ErrValidation, "pipeline", "override",
			fmt.Sprintf("unknown phase %q for %s", phase, entityType), nil)
	}
	entries, err := t.Entries(ctx, entityType, entityID)
	if err != nil {
		return err
	}
	current := entryFor(entries, phase)

	var target store.PhaseStatus
	switch action {
	case OverrideSkip:
		if current.Status == store.PhaseCompleted {
			return services.Wrap(services.ErrValidation, "pipeline", "override",
				fmt.Sprintf("phase %s is already completed", phase), nil)
		}
		target = store.PhaseSkipped
	case OverrideReset:
		if current.Status != store.PhaseFailed {
			return services.Wrap(services.ErrValidation, "pipeline", "override",
				fmt.Sprintf("phase %s is %s, only failed phases can be reset", phase, current.Status), nil)
		}
		target = store.PhasePending
	case OverrideComplete:
		if err := t.requirePredecessorsDone(entries, phase); err != nil {
			return err
		}
		target = store.PhaseCompleted
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "override",
			fmt.Sprintf("unknown action %q", action), nil)
	}

	if err := t.store.SetPhaseStatus(ctx, entityType, entityID, phase, target); err != nil {
		return err
	}
	t.logger.Info("phase override applied",
		logging.String(logging.FieldEventType, "phase_override"),
		logging.String("entity_type", string(entityType)),
		logging.String("entity_id", entityID),
		logging.String(logging.FieldPhase, phase),
		logging.String("action", string(action)),
		logging.String("status", string(target)),
	)
	return nil
}

// MarkFailed records a failed phase, e.g. when a training job errors out.
func (t *Tracker) MarkFailed(ctx context.Context, entityType store.EntityType, entityID, phase string) error {
	if !ValidPhase(entityType, phase) {
		return services.Wrap(services.ErrValidation, "pipeline", "fail",
			fmt.Sprintf("unknown phase %q for %s", phase, entityType), nil)
	}
	return t.store.SetPhaseStatus(ctx, entityType, entityID, phase, store.PhaseFailed)
}

// requirePredecessorsDone enforces the sequence invariant: a phase cannot
// complete or activate while an earlier phase is neither completed nor
// skipped.
func (t *Tracker) requirePredecessorsDone(entries []store.PipelineEntry, phase string) error {
	for _, entry := range entries {
		if entry.Phase == phase {
			return nil
		}
		if !entry.Status.Done() {
			return services.Wrap(services.ErrValidation, "pipeline", "sequence",
				fmt.Sprintf("phase %s blocked: predecessor %s is %s", phase, entry.Phase, entry.Status), nil)
		}
	}
	return nil
}

func (t *Tracker) logAdvance(entityType store.EntityType, entityID, phase string, status store.PhaseStatus) {
	t.logger.Info("phase advanced",
		logging.String(logging.FieldEventType, "phase_advance"),
		logging.String("entity_type", string(entityType)),
		logging.String("entity_id", entityID),
		logging.String(logging.FieldPhase, phase),
		logging.String("status", string(status)),
	)
}

func nextPhase(entries []store.PipelineEntry, phase string) (string, bool) {
	seen := false
	for _, entry := range entries {
		if seen && !entry.Status.Done() {
			return entry.Phase, true
		}
		if entry.Phase == phase {
			seen = true
		}
	}
	return "", false
}

func entryFor(entries []store.PipelineEntry, phase string) store.PipelineEntry {
	for _, entry := range entries {
		if entry.Phase == phase {
			return entry
		}
	}
	return store.PipelineEntry{}
}
