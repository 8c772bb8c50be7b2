package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const shotColumns = `id, scene_id, character_ids, prompt, source_image, source_video,
    status, engine, mode, lora_name, lora_weight, rule_index, output_path,
    error_message, duration_seconds, generation_started_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShot(row rowScanner) (*Shot, error) {
	var (
		shot         Shot
		characterIDs string
		sourceImage  sql.NullString
		sourceVideo  sql.NullString
		engine       sql.NullString
		mode         sql.NullString
		loraName     sql.NullString
		outputPath   sql.NullString
		errorMessage sql.NullString
		startedAt    sql.NullString
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(
		&shot.ID,
		&shot.SceneID,
		&characterIDs,
		&shot.Prompt,
		&sourceImage,
		&sourceVideo,
		&shot.Status,
		&engine,
		&mode,
		&loraName,
		&shot.LoRAWeight,
		&shot.RuleIndex,
		&outputPath,
		&errorMessage,
		&shot.DurationSeconds,
		&startedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if characterIDs != "" {
		if err := json.Unmarshal([]byte(characterIDs), &shot.CharacterIDs); err != nil {
			return nil, fmt.Errorf("decode character ids: %w", err)
		}
	}
	shot.SourceImage = sourceImage.String
	shot.SourceVideo = sourceVideo.String
	shot.Engine = engineFromNull(engine)
	shot.Mode = modeFromNull(mode)
	shot.LoRAName = loraName.String
	shot.OutputPath = outputPath.String
	shot.ErrorMessage = errorMessage.String
	if startedAt.Valid && startedAt.String != "" {
		ts := parseTimestamp(startedAt.String)
		shot.GenerationStartedAt = &ts
	}
	shot.CreatedAt = parseTimestamp(createdAt)
	shot.UpdatedAt = parseTimestamp(updatedAt)
	return &shot, nil
}

// CreateShot inserts a pending shot and assigns its identifier.
func (s *Store) CreateShot(ctx context.Context, shot *Shot) error {
	if shot == nil {
		return errors.New("shot is nil")
	}
	if shot.SceneID == 0 {
		return errors.New("shot requires a scene")
	}
	characterIDs, err := json.Marshal(shot.CharacterIDs)
	if err != nil {
		return fmt.Errorf("encode character ids: %w", err)
	}
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO shots (
            scene_id, character_ids, prompt, source_image, source_video,
            status, rule_index, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shot.SceneID,
		string(characterIDs),
		shot.Prompt,
		nullableString(shot.SourceImage),
		nullableString(shot.SourceVideo),
		ShotPending,
		-1,
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert shot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	shot.ID = id
	shot.Status = ShotPending
	shot.RuleIndex = -1
	shot.CreatedAt = parseTimestamp(timestamp)
	shot.UpdatedAt = shot.CreatedAt
	return nil
}

// GetShot fetches a shot by identifier. Returns nil when absent.
func (s *Store) GetShot(ctx context.Context, id int64) (*Shot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE id = ?`, id)
	shot, err := scanShot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shot: %w", err)
	}
	return shot, nil
}

// UpdateShot persists changes to an existing shot as one row update.
func (s *Store) UpdateShot(ctx context.Context, shot *Shot) error {
	if shot == nil {
		return errors.New("shot is nil")
	}
	characterIDs, err := json.Marshal(shot.CharacterIDs)
	if err != nil {
		return fmt.Errorf("encode character ids: %w", err)
	}
	shot.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET scene_id = ?, character_ids = ?, prompt = ?, source_image = ?,
             source_video = ?, status = ?, engine = ?, mode = ?, lora_name = ?,
             lora_weight = ?, rule_index = ?, output_path = ?, error_message = ?,
             duration_seconds = ?, generation_started_at = ?, updated_at = ?
         WHERE id = ?`,
		shot.SceneID,
		string(characterIDs),
		shot.Prompt,
		nullableString(shot.SourceImage),
		nullableString(shot.SourceVideo),
		shot.Status,
		nullableString(string(shot.Engine)),
		nullableString(string(shot.Mode)),
		nullableString(shot.LoRAName),
		shot.LoRAWeight,
		shot.RuleIndex,
		nullableString(shot.OutputPath),
		nullableString(shot.ErrorMessage),
		shot.DurationSeconds,
		nullableTime(shot.GenerationStartedAt),
		shot.UpdatedAt.Format(time.RFC3339Nano),
		shot.ID,
	)
	if err != nil {
		return fmt.Errorf("update shot: %w", err)
	}
	return nil
}

// ShotsByStatus returns shots matching a status ordered by creation time.
func (s *Store) ShotsByStatus(ctx context.Context, status ShotStatus) ([]*Shot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE status = ? ORDER BY created_at, id`, status)
	if err != nil {
		return nil, fmt.Errorf("query shots by status: %w", err)
	}
	defer rows.Close()
	return collectShots(rows)
}

// ShotsByScene returns every shot of a scene ordered by creation time.
func (s *Store) ShotsByScene(ctx context.Context, sceneID int64) ([]*Shot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE scene_id = ? ORDER BY created_at, id`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("query shots by scene: %w", err)
	}
	defer rows.Close()
	return collectShots(rows)
}

// ListShots returns all shots ordered by creation time.
func (s *Store) ListShots(ctx context.Context) ([]*Shot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shotColumns+` FROM shots ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list shots: %w", err)
	}
	defer rows.Close()
	return collectShots(rows)
}

func collectShots(rows *sql.Rows) ([]*Shot, error) {
	var shots []*Shot
	for rows.Next() {
		shot, err := scanShot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

// StatusCounts aggregates shots per lifecycle status.
func (s *Store) StatusCounts(ctx context.Context) (map[ShotStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM shots GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count shots: %w", err)
	}
	defer rows.Close()

	counts := make(map[ShotStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[ShotStatus(status)] = count
	}
	return counts, rows.Err()
}

// MarkGenerating transitions a shot from pending to generating in one atomic
// update. The WHERE clause is the double-dispatch guard: a shot already
// generating (or terminal) is not picked up again.
func (s *Store) MarkGenerating(ctx context.Context, id int64) (bool, error) {
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET status = ?, error_message = NULL, output_path = NULL,
             duration_seconds = 0, generation_started_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		ShotGenerating, timestamp, timestamp, id, ShotPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark generating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkCompleted finalizes a generating shot with its artifact and duration.
func (s *Store) MarkCompleted(ctx context.Context, id int64, outputPath string, duration time.Duration) error {
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET status = ?, output_path = ?, duration_seconds = ?, error_message = NULL,
             generation_started_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		ShotCompleted, outputPath, duration.Seconds(), timestamp, id, ShotGenerating,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return requireTransition(res, id, ShotCompleted)
}

// MarkFailed records a backend failure on a generating shot.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET status = ?, error_message = ?, generation_started_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		ShotFailed, message, timestamp, id, ShotGenerating,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireTransition(res, id, ShotFailed)
}

// MarkRecovered adopts an orphaned artifact onto a shot whose completion
// confirmation was lost. Valid from generating or failed; a completed shot is
// left alone, which keeps recovery idempotent.
func (s *Store) MarkRecovered(ctx context.Context, id int64, outputPath string, duration time.Duration) (bool, error) {
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET status = ?, output_path = ?, duration_seconds = ?, error_message = NULL,
             generation_started_at = NULL, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		ShotCompleted, outputPath, duration.Seconds(), timestamp, id, ShotGenerating, ShotFailed,
	)
	if err != nil {
		return false, fmt.Errorf("mark recovered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// ResetShot returns a completed or failed shot to pending so an operator can
// force regeneration. No other transitions are valid.
func (s *Store) ResetShot(ctx context.Context, id int64) error {
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shots
         SET status = ?, error_message = NULL, output_path = NULL,
             duration_seconds = 0, generation_started_at = NULL, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		ShotPending, timestamp, id, ShotCompleted, ShotFailed,
	)
	if err != nil {
		return fmt.Errorf("reset shot: %w", err)
	}
	return requireTransition(res, id, ShotPending)
}

// StaleGenerating returns generating shots whose generation started before
// the cutoff, oldest first.
func (s *Store) StaleGenerating(ctx context.Context, cutoff time.Time) ([]*Shot, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+shotColumns+` FROM shots
         WHERE status = ? AND generation_started_at IS NOT NULL AND generation_started_at < ?
         ORDER BY generation_started_at`,
		ShotGenerating,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("query stale shots: %w", err)
	}
	defer rows.Close()
	return collectShots(rows)
}

func requireTransition(res sql.Result, id int64, to ShotStatus) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("shot %d: invalid transition to %s", id, to)
	}
	return nil
}
