package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showrunner/internal/engines"
	"showrunner/internal/routing"
)

// UpsertProject creates or updates a project record, including its optional
// project-wide LoRA override.
func (s *Store) UpsertProject(ctx context.Context, project Project) error {
	if project.ID == "" {
		return errors.New("project id required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO projects (id, title, lora_name, lora_weight, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (id) DO UPDATE SET
             title = excluded.title,
             lora_name = excluded.lora_name,
             lora_weight = excluded.lora_weight`,
		project.ID, project.Title, project.LoRAName, project.LoRAWeight, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// GetProject fetches a project by id. Returns nil when absent.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, lora_name, lora_weight, created_at FROM projects WHERE id = ?`,
		id,
	)
	var (
		project   Project
		createdAt string
	)
	err := row.Scan(&project.ID, &project.Title, &project.LoRAName, &project.LoRAWeight, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	project.CreatedAt = parseTimestamp(createdAt)
	return &project, nil
}

// CreateScene inserts a scene and assigns its identifier.
func (s *Store) CreateScene(ctx context.Context, scene *Scene) error {
	if scene == nil {
		return errors.New("scene is nil")
	}
	if scene.ProjectID == "" {
		return errors.New("scene requires a project")
	}
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scenes (project_id, title, created_at) VALUES (?, ?, ?)`,
		scene.ProjectID, scene.Title, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	scene.ID = id
	scene.CreatedAt = parseTimestamp(timestamp)
	return nil
}

// GetScene fetches a scene by id. Returns nil when absent.
func (s *Store) GetScene(ctx context.Context, id int64) (*Scene, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, project_id, title, created_at FROM scenes WHERE id = ?`,
		id,
	)
	var (
		scene     Scene
		createdAt string
	)
	err := row.Scan(&scene.ID, &scene.ProjectID, &scene.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	scene.CreatedAt = parseTimestamp(createdAt)
	return &scene, nil
}

// UpsertLoRAAsset records a trained LoRA for a character on an engine.
func (s *Store) UpsertLoRAAsset(ctx context.Context, asset LoRAAsset) error {
	if asset.CharacterID == "" || asset.Name == "" {
		return errors.New("lora asset requires character and name")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO lora_assets (character_id, engine, name, weight)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (character_id, engine) DO UPDATE SET
             name = excluded.name,
             weight = excluded.weight`,
		asset.CharacterID, string(asset.Engine), asset.Name, asset.Weight,
	)
	if err != nil {
		return fmt.Errorf("upsert lora asset: %w", err)
	}
	return nil
}

// LoRAAssetsFor returns the per-character, per-engine LoRA map the selector
// consumes, restricted to the given characters.
func (s *Store) LoRAAssetsFor(ctx context.Context, characterIDs []string) (map[string]map[engines.Engine]routing.LoRAAsset, error) {
	assets := make(map[string]map[engines.Engine]routing.LoRAAsset)
	if len(characterIDs) == 0 {
		return assets, nil
	}
	args := make([]any, len(characterIDs))
	for i, id := range characterIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT character_id, engine, name, weight FROM lora_assets
         WHERE character_id IN (`+placeholders(len(characterIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query lora assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			characterID string
			engine      string
			asset       routing.LoRAAsset
		)
		if err := rows.Scan(&characterID, &engine, &asset.Name, &asset.Weight); err != nil {
			return nil, fmt.Errorf("scan lora asset: %w", err)
		}
		byEngine, ok := assets[characterID]
		if !ok {
			byEngine = make(map[engines.Engine]routing.LoRAAsset)
			assets[characterID] = byEngine
		}
		byEngine[engines.Engine(engine)] = asset
	}
	return assets, rows.Err()
}
