package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"showrunner/internal/render"
	"showrunner/internal/runner"
	"showrunner/internal/store"
)

func writeArtifact(t *testing.T, dir string, shotID int64, suffix string, mtime time.Time) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, render.OutputPrefixForShot(shotID)+suffix)
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	return path
}

func TestRecoverOrphansAdoptsArtifact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	artifact := writeArtifact(t, h.cfg.Paths.RenderOutputDir, shot.ID, "_0001.mp4", time.Time{})

	recovered, err := h.runner.RecoverOrphans(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("recovered = %d, want 1", recovered)
	}

	fetched, _ := h.store.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotCompleted || fetched.OutputPath != artifact {
		t.Fatalf("shot = %s %q", fetched.Status, fetched.OutputPath)
	}
}

func TestRecoverOrphansIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	writeArtifact(t, h.cfg.Paths.RenderOutputDir, shot.ID, "_0001.mp4", time.Time{})

	if recovered, err := h.runner.RecoverOrphans(ctx); err != nil || recovered != 1 {
		t.Fatalf("first sweep = (%d, %v), want (1, nil)", recovered, err)
	}
	if recovered, err := h.runner.RecoverOrphans(ctx); err != nil || recovered != 0 {
		t.Fatalf("second sweep = (%d, %v), want (0, nil)", recovered, err)
	}
}

func TestRecoverOrphansCoversFailedShots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if err := h.store.MarkFailed(ctx, shot.ID, "poll lost"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	writeArtifact(t, h.cfg.Paths.RenderOutputDir, shot.ID, "_0001.mp4", time.Time{})

	recovered, err := h.runner.RecoverOrphans(ctx)
	if err != nil || recovered != 1 {
		t.Fatalf("recover = (%d, %v), want (1, nil)", recovered, err)
	}
	fetched, _ := h.store.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotCompleted || fetched.ErrorMessage != "" {
		t.Fatalf("shot = %s %q, recovery must clear the failure", fetched.Status, fetched.ErrorMessage)
	}
}

func TestRecoverOrphansIgnoresOldArtifacts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	window := time.Duration(h.cfg.Runner.OrphanWindowMinutes) * time.Minute
	writeArtifact(t, h.cfg.Paths.RenderOutputDir, shot.ID, "_0001.mp4", time.Now().Add(-window-time.Hour))

	recovered, err := h.runner.RecoverOrphans(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != 0 {
		t.Fatalf("recovered = %d, artifacts outside the window must be ignored", recovered)
	}
	fetched, _ := h.store.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotGenerating {
		t.Fatalf("status = %s, want generating", fetched.Status)
	}
}

func TestRecoverOrphansIgnoresForeignFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if err := os.MkdirAll(h.cfg.Paths.RenderOutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	foreign := filepath.Join(h.cfg.Paths.RenderOutputDir, "unrelated_render.mp4")
	if err := os.WriteFile(foreign, []byte("video"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	recovered, err := h.runner.RecoverOrphans(ctx)
	if err != nil || recovered != 0 {
		t.Fatalf("recover = (%d, %v), want (0, nil)", recovered, err)
	}
}

func TestClearStuckFailsStaleShotsAndReclaimsGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	// Age the generation past the stuck window.
	fetched, _ := h.store.GetShot(ctx, shot.ID)
	started := time.Now().Add(-time.Duration(h.cfg.Runner.StuckAfterMinutes+10) * time.Minute).UTC()
	fetched.GenerationStartedAt = &started
	if err := h.store.UpdateShot(ctx, fetched); err != nil {
		t.Fatalf("age shot: %v", err)
	}

	// Simulate the crashed holder still owning the gate.
	if _, err := h.gate.Acquire(ctx, fmt.Sprintf("shot-%d", shot.ID)); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	cleared, err := h.runner.ClearStuck(ctx)
	if err != nil {
		t.Fatalf("clear stuck: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared = %d, want 1", cleared)
	}

	fetched, _ = h.store.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotFailed || fetched.ErrorMessage != runner.StuckMessage {
		t.Fatalf("shot = %s %q", fetched.Status, fetched.ErrorMessage)
	}
	if holder := h.gate.Holder(); holder != "" {
		t.Fatalf("gate still held by %q after clear", holder)
	}
}

func TestClearStuckLeavesFreshGenerations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	cleared, err := h.runner.ClearStuck(ctx)
	if err != nil || cleared != 0 {
		t.Fatalf("clear = (%d, %v), want (0, nil)", cleared, err)
	}
	fetched, _ := h.store.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotGenerating {
		t.Fatalf("status = %s, fresh generation must survive", fetched.Status)
	}
}

func TestClearStuckLeavesOtherGateHolders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shot := h.routedShot(t)
	if _, err := h.store.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	fetched, _ := h.store.GetShot(ctx, shot.ID)
	started := time.Now().Add(-time.Duration(h.cfg.Runner.StuckAfterMinutes+10) * time.Minute).UTC()
	fetched.GenerationStartedAt = &started
	if err := h.store.UpdateShot(ctx, fetched); err != nil {
		t.Fatalf("age shot: %v", err)
	}

	token, err := h.gate.Acquire(ctx, "some-other-shot")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer h.gate.Release(token)

	if _, err := h.runner.ClearStuck(ctx); err != nil {
		t.Fatalf("clear stuck: %v", err)
	}
	if holder := h.gate.Holder(); holder != "some-other-shot" {
		t.Fatalf("holder = %q, unrelated holder must keep the gate", holder)
	}
}
