package store

import (
	"context"
	"fmt"
)

// SeedPipeline inserts pending rows for any phase an entity is missing.
// Existing rows keep their status, so re-seeding an in-flight pipeline is
// harmless.
func (s *Store) SeedPipeline(ctx context.Context, entityType EntityType, entityID string, phases []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := nowStamp()
	for _, phase := range phases {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO pipeline_entries (entity_type, entity_id, phase, status, updated_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT (entity_type, entity_id, phase) DO NOTHING`,
			string(entityType), entityID, phase, PhasePending, timestamp,
		); err != nil {
			return fmt.Errorf("seed phase %s: %w", phase, err)
		}
	}
	return tx.Commit()
}

// PipelineEntries returns the entity's phase rows keyed by phase name.
// Sequence ordering lives in the pipeline package, not in the table.
func (s *Store) PipelineEntries(ctx context.Context, entityType EntityType, entityID string) (map[string]PipelineEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT entity_type, entity_id, phase, status, updated_at
         FROM pipeline_entries WHERE entity_type = ? AND entity_id = ?`,
		string(entityType), entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pipeline entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]PipelineEntry)
	for rows.Next() {
		var (
			entry     PipelineEntry
			updatedAt string
		)
		if err := rows.Scan(&entry.EntityType, &entry.EntityID, &entry.Phase, &entry.Status, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan pipeline entry: %w", err)
		}
		entry.UpdatedAt = parseTimestamp(updatedAt)
		entries[entry.Phase] = entry
	}
	return entries, rows.Err()
}

// SetPhaseStatus applies one atomic status update to a single phase row.
func (s *Store) SetPhaseStatus(ctx context.Context, entityType EntityType, entityID, phase string, status PhaseStatus) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_entries SET status = ?, updated_at = ?
         WHERE entity_type = ? AND entity_id = ? AND phase = ?`,
		string(status), nowStamp(), string(entityType), entityID, phase,
	)
	if err != nil {
		return fmt.Errorf("set phase status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("pipeline entry %s/%s/%s not found", entityType, entityID, phase)
	}
	return nil
}
