package store

import (
	"context"
	"fmt"

	"showrunner/internal/engines"
	"showrunner/internal/routing"
)

// AddBlacklist records an engine exclusion for a character. Re-blacklisting
// the same pair keeps the original entry; the exclusion never expires.
func (s *Store) AddBlacklist(ctx context.Context, characterID string, engine engines.Engine, reason string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO engine_blacklist (character_id, engine, reason, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (character_id, engine) DO NOTHING`,
		characterID, string(engine), reason, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("add blacklist entry: %w", err)
	}
	return nil
}

// RemoveBlacklist deletes an exclusion. Administrative escape hatch only;
// the normal flow never removes entries.
func (s *Store) RemoveBlacklist(ctx context.Context, characterID string, engine engines.Engine) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM engine_blacklist WHERE character_id = ? AND engine = ?`,
		characterID, string(engine),
	)
	if err != nil {
		return false, fmt.Errorf("remove blacklist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// BlacklistSnapshot assembles the routing snapshot for a set of characters.
// With no ids it snapshots the whole table.
func (s *Store) BlacklistSnapshot(ctx context.Context, characterIDs ...string) (routing.Blacklist, error) {
	query := `SELECT character_id, engine FROM engine_blacklist`
	args := make([]any, 0, len(characterIDs))
	if len(characterIDs) > 0 {
		query += ` WHERE character_id IN (` + placeholders(len(characterIDs)) + `)`
		for _, id := range characterIDs {
			args = append(args, id)
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blacklist: %w", err)
	}
	defer rows.Close()

	snapshot := make(routing.Blacklist)
	for rows.Next() {
		var characterID, engine string
		if err := rows.Scan(&characterID, &engine); err != nil {
			return nil, fmt.Errorf("scan blacklist row: %w", err)
		}
		snapshot.Add(characterID, engines.Engine(engine))
	}
	return snapshot, rows.Err()
}

// ListBlacklist returns every exclusion ordered by character and engine.
func (s *Store) ListBlacklist(ctx context.Context) ([]BlacklistEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT character_id, engine, reason, created_at FROM engine_blacklist ORDER BY character_id, engine`,
	)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var entries []BlacklistEntry
	for rows.Next() {
		var (
			entry     BlacklistEntry
			engine    string
			createdAt string
		)
		if err := rows.Scan(&entry.CharacterID, &engine, &entry.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entry.Engine = engines.Engine(engine)
		entry.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
