package testsupport

import (
	"context"
	"testing"

	"showrunner/internal/config"
	"showrunner/internal/store"
)

// MustOpenStore opens a store against the test config and closes it with the
// test.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

// SeedShot creates a project, scene, and pending shot in one call and
// returns the shot.
func SeedShot(t testing.TB, st *store.Store, characterIDs []string, sourceImage, sourceVideo string) *store.Shot {
	t.Helper()
	ctx := context.Background()

	project := store.Project{ID: "proj-test", Title: "Test Project"}
	if err := st.UpsertProject(ctx, project); err != nil {
		t.Fatalf("upsert project: %v", err)
	}
	scene := &store.Scene{ProjectID: project.ID, Title: "Test Scene"}
	if err := st.CreateScene(ctx, scene); err != nil {
		t.Fatalf("create scene: %v", err)
	}
	shot := &store.Shot{
		SceneID:      scene.ID,
		CharacterIDs: characterIDs,
		Prompt:       "test prompt",
		SourceImage:  sourceImage,
		SourceVideo:  sourceVideo,
	}
	if err := st.CreateShot(ctx, shot); err != nil {
		t.Fatalf("create shot: %v", err)
	}
	return shot
}
