package store

import (
	"context"
	"fmt"

	"showrunner/internal/engines"
)

// RecordEngineResult bumps the success or failure counter for a
// (character, engine) pair, creating the row on first use.
func (s *Store) RecordEngineResult(ctx context.Context, characterID string, engine engines.Engine, success bool) error {
	successDelta, failureDelta := 0, 1
	if success {
		successDelta, failureDelta = 1, 0
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO engine_stats (character_id, engine, success_count, failure_count)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (character_id, engine) DO UPDATE SET
             success_count = success_count + excluded.success_count,
             failure_count = failure_count + excluded.failure_count`,
		characterID, string(engine), successDelta, failureDelta,
	)
	if err != nil {
		return fmt.Errorf("record engine result: %w", err)
	}
	return nil
}

// EngineStats returns all aggregated review counters ordered by character
// and engine.
func (s *Store) EngineStats(ctx context.Context) ([]EngineStat, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT character_id, engine, success_count, failure_count
         FROM engine_stats ORDER BY character_id, engine`,
	)
	if err != nil {
		return nil, fmt.Errorf("query engine stats: %w", err)
	}
	defer rows.Close()

	var stats []EngineStat
	for rows.Next() {
		var (
			stat   EngineStat
			engine string
		)
		if err := rows.Scan(&stat.CharacterID, &engine, &stat.Successes, &stat.Failures); err != nil {
			return nil, fmt.Errorf("scan engine stat: %w", err)
		}
		stat.Engine = engines.Engine(engine)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
