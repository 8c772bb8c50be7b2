package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/gate"
	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/pipeline"
	"showrunner/internal/render"
	"showrunner/internal/review"
	"showrunner/internal/runner"
	"showrunner/internal/store"
)

// Manager is the orchestration facade: it wires the selector, gate, runner,
// phase tracker, and review loop, and exposes the operations collaborators
// call.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	notifier notifications.Service
	gate     *gate.Gate
	runner   *runner.Runner
	tracker  *pipeline.Tracker
	review   *review.Service

	wg sync.WaitGroup
}

// NewManager constructs a manager with the production render client.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) *Manager {
	return NewManagerWithBackend(cfg, st, logger, notifications.NewService(cfg), render.NewClient(cfg))
}

// NewManagerWithBackend constructs a manager with injected collaborators
// (used in tests).
func NewManagerWithBackend(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service, backend render.Backend) *Manager {
	managerLogger := logging.NewComponentLogger(logger, "workflow")

	g := gate.New(
		time.Duration(cfg.Gate.WaitWarnSeconds)*time.Second,
		gate.WithLogger(managerLogger),
		gate.WithWaitWarning(func(label string, waited time.Duration) {
			if err := notifier.Publish(context.Background(), notifications.EventGateWait, notifications.Payload{
				"waiter": label,
				"waited": waited.Round(time.Second),
			}); err != nil {
				managerLogger.Debug("gate wait notification failed", logging.Error(err))
			}
		}),
	)

	return &Manager{
		cfg:      cfg,
		store:    st,
		logger:   managerLogger,
		notifier: notifier,
		gate:     g,
		runner:   runner.New(cfg, st, backend, g, notifier, logger),
		tracker:  pipeline.NewTracker(st, logger),
		review:   review.NewService(st, notifier, logger),
	}
}

// Close waits for asynchronously dispatched shots to finish.
func (m *Manager) Close() {
	m.wg.Wait()
}

// Gate exposes the accelerator gate for status reporting.
func (m *Manager) Gate() *gate.Gate {
	return m.gate
}

// StatusSummary aggregates orchestration state for status surfaces.
type StatusSummary struct {
	ShotCounts map[store.ShotStatus]int
	GateHolder string
}

// Status reports shot counts and the current gate holder.
func (m *Manager) Status(ctx context.Context) (StatusSummary, error) {
	counts, err := m.store.StatusCounts(ctx)
	if err != nil {
		return StatusSummary{}, err
	}
	return StatusSummary{ShotCounts: counts, GateHolder: m.gate.Holder()}, nil
}

// ClearStuckGenerations force-fails stalled shots and frees an abandoned
// gate slot.
func (m *Manager) ClearStuckGenerations(ctx context.Context) (int, error) {
	return m.runner.ClearStuck(ctx)
}

// RecoverOrphans reconciles lost artifacts with their shots.
func (m *Manager) RecoverOrphans(ctx context.Context) (int, error) {
	return m.runner.RecoverOrphans(ctx)
}

// GetPipelineState returns the entity's phase rows in sequence order.
func (m *Manager) GetPipelineState(ctx context.Context, entityType store.EntityType, entityID string) ([]store.PipelineEntry, error) {
	return m.tracker.Entries(ctx, entityType, entityID)
}

// CurrentPhase resolves the entity's current phase.
func (m *Manager) CurrentPhase(ctx context.Context, entityType store.EntityType, entityID string) (store.PipelineEntry, error) {
	return m.tracker.Current(ctx, entityType, entityID)
}

// AdvancePhase moves the entity's pipeline forward one step. Collaborators
// call it when a phase's aggregate condition is crossed.
func (m *Manager) AdvancePhase(ctx context.Context, entityType store.EntityType, entityID string) (store.PipelineEntry, error) {
	return m.tracker.Advance(ctx, entityType, entityID)
}

// OverridePipelinePhase applies a manual phase transition.
func (m *Manager) OverridePipelinePhase(ctx context.Context, entityType store.EntityType, entityID, phase string, action pipeline.OverrideAction) error {
	return m.tracker.Override(ctx, entityType, entityID, phase, action)
}

// ReviewShot records one human review decision.
func (m *Manager) ReviewShot(ctx context.Context, shotID int64, approved bool, feedback string, blacklistEngine bool) error {
	return m.review.ReviewShot(ctx, shotID, approved, feedback, blacklistEngine)
}

// BatchReview applies a review decision across shots with per-item isolation.
func (m *Manager) BatchReview(ctx context.Context, shotIDs []int64, approved bool, feedback string) review.BatchResult {
	return m.review.BatchReview(ctx, shotIDs, approved, feedback)
}

func (m *Manager) publishQuiet(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		m.logger.Debug(fmt.Sprintf("%s notification failed", event), logging.Error(err))
	}
}
