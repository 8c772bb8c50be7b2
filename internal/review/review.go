package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

// Service consumes human approve/reject decisions for rendered shots. It is
// the sole write path into the engine blacklist; the selector only reads it.
type Service struct {
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewService constructs the review feedback loop.
func NewService(st *store.Store, notifier notifications.Service, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "review"),
	}
}

// ReviewShot records one review decision. Approval and plain rejection only
// update engine usage statistics; rejection with blacklistEngine also writes
// a blacklist entry for every character in the shot, permanently excluding
// the shot's engine from their future routing.
func (s *Service) ReviewShot(ctx context.Context, shotID int64, approved bool, feedback string, blacklistEngine bool) error {
	shot, err := s.store.GetShot(ctx, shotID)
	if err != nil {
		return err
	}
	if shot == nil {
		return services.Wrap(services.ErrNotFound, "review", "shot", fmt.Sprintf("shot %d", shotID), nil)
	}
	if shot.Engine == "" {
		return services.Wrap(services.ErrValidation, "review", "shot",
			fmt.Sprintf("shot %d has no routed engine to review", shotID), nil)
	}

	for _, characterID := range shot.CharacterIDs {
		if err := s.store.RecordEngineResult(ctx, characterID, shot.Engine, approved); err != nil {
			return err
		}
	}

	if approved || !blacklistEngine {
		s.logger.Info("shot reviewed",
			logging.Int64(logging.FieldShotID, shotID),
			logging.String(logging.FieldEngine, string(shot.Engine)),
			logging.Bool("approved", approved),
		)
		return nil
	}

	reason := strings.TrimSpace(feedback)
	if reason == "" {
		reason = "rejected in review"
	}
	for _, characterID := range shot.CharacterIDs {
		if err := s.store.AddBlacklist(ctx, characterID, shot.Engine, reason); err != nil {
			return err
		}
		s.logger.Info("engine blacklisted for character",
			logging.String(logging.FieldEventType, "engine_blacklisted"),
			logging.Int64(logging.FieldShotID, shotID),
			logging.String(logging.FieldEngine, string(shot.Engine)),
			logging.String("character_id", characterID),
			logging.String("reason", reason),
		)
		if err := s.notifier.Publish(ctx, notifications.EventEngineBlacklisted, notifications.Payload{
			"engine":      shot.Engine,
			"characterID": characterID,
			"reason":      reason,
		}); err != nil {
			s.logger.Debug("blacklist notification failed", logging.Error(err))
		}
	}
	return nil
}

// BatchResult reports the outcome of a batch review.
type BatchResult struct {
	Updated int
	Total   int
	Errors  map[int64]error
}

// BatchReview applies the same review semantics to each shot. Failures are
// isolated per shot: one bad item never blocks the rest of the batch.
func (s *Service) BatchReview(ctx context.Context, shotIDs []int64, approved bool, feedback string) BatchResult {
	result := BatchResult{Total: len(shotIDs), Errors: make(map[int64]error)}
	for _, shotID := range shotIDs {
		if err := s.ReviewShot(ctx, shotID, approved, feedback, false); err != nil {
			result.Errors[shotID] = err
			s.logger.Warn("batch review item failed",
				logging.Int64(logging.FieldShotID, shotID),
				logging.Error(err),
			)
			continue
		}
		result.Updated++
	}
	return result
}
