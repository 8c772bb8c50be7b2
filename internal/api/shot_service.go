package api

import (
	"context"

	"showrunner/internal/store"
)

// ShotReader abstracts the store interactions needed for read-only queries.
type ShotReader interface {
	ListShots(ctx context.Context) ([]*store.Shot, error)
	ShotsByStatus(ctx context.Context, status store.ShotStatus) ([]*store.Shot, error)
	GetShot(ctx context.Context, id int64) (*store.Shot, error)
	StatusCounts(ctx context.Context) (map[store.ShotStatus]int, error)
	ListBlacklist(ctx context.Context) ([]store.BlacklistEntry, error)
	EngineStats(ctx context.Context) ([]store.EngineStat, error)
}

// ShotService exposes read-only shot operations returning API DTOs.
type ShotService struct {
	store ShotReader
}

// NewShotService constructs a ShotService around the provided reader.
func NewShotService(store ShotReader) *ShotService {
	if store == nil {
		return nil
	}
	return &ShotService{store: store}
}

// List returns shots, optionally filtered to one status.
func (s *ShotService) List(ctx context.Context, status string) ([]ShotItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if status != "" {
		parsed, ok := store.ParseShotStatus(status)
		if !ok {
			return nil, nil
		}
		shots, err := s.store.ShotsByStatus(ctx, parsed)
		if err != nil {
			return nil, err
		}
		return FromShots(shots), nil
	}
	shots, err := s.store.ListShots(ctx)
	if err != nil {
		return nil, err
	}
	return FromShots(shots), nil
}

// Describe fetches a single shot.
func (s *ShotService) Describe(ctx context.Context, id int64) (*ShotItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	shot, err := s.store.GetShot(ctx, id)
	if err != nil || shot == nil {
		return nil, err
	}
	return FromShot(shot), nil
}

// Counts returns shot summary counts keyed by status string.
func (s *ShotService) Counts(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	return MergeShotCounts(counts), nil
}

// Blacklist returns every character/engine exclusion.
func (s *ShotService) Blacklist(ctx context.Context) ([]BlacklistEntry, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	entries, err := s.store.ListBlacklist(ctx)
	if err != nil {
		return nil, err
	}
	return FromBlacklist(entries), nil
}

// Stats returns aggregate review outcomes per character and engine.
func (s *ShotService) Stats(ctx context.Context) ([]EngineStat, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.EngineStats(ctx)
	if err != nil {
		return nil, err
	}
	return FromEngineStats(stats), nil
}
