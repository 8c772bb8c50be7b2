package store_test

import (
	"context"
	"testing"
	"time"

	"showrunner/internal/engines"
	"showrunner/internal/store"
	"showrunner/internal/testsupport"
)

func TestOpenInitializesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	shot := testsupportSeed(t, st)
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	fetched, err := reopened.GetShot(ctx, shot.ID)
	if err != nil {
		t.Fatalf("get shot: %v", err)
	}
	if fetched == nil || fetched.Prompt != shot.Prompt {
		t.Fatalf("shot did not survive reopen: %+v", fetched)
	}
}

func testsupportSeed(t *testing.T, st *store.Store) *store.Shot {
	t.Helper()
	return testsupport.SeedShot(t, st, []string{"alice"}, "/assets/alice.png", "")
}

func TestGetShotAbsentReturnsNil(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	shot, err := st.GetShot(context.Background(), 9999)
	if err != nil {
		t.Fatalf("get absent shot: %v", err)
	}
	if shot != nil {
		t.Fatalf("absent shot = %+v, want nil", shot)
	}
}

func TestShotRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	shot := testsupport.SeedShot(t, st, []string{"alice", "bob"}, "", "/assets/ref.mp4")
	if shot.Status != store.ShotPending || shot.RuleIndex != -1 {
		t.Fatalf("new shot state = %s/%d, want pending/-1", shot.Status, shot.RuleIndex)
	}

	fetched, err := st.GetShot(ctx, shot.ID)
	if err != nil {
		t.Fatalf("get shot: %v", err)
	}
	if len(fetched.CharacterIDs) != 2 || fetched.CharacterIDs[0] != "alice" {
		t.Fatalf("character ids = %v", fetched.CharacterIDs)
	}
	if fetched.SourceVideo != "/assets/ref.mp4" || fetched.SourceImage != "" {
		t.Fatalf("sources = %q/%q", fetched.SourceImage, fetched.SourceVideo)
	}
}

func TestMarkGeneratingIsAtomicClaim(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	shot := testsupportSeed(t, st)

	claimed, err := st.MarkGenerating(ctx, shot.ID)
	if err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if !claimed {
		t.Fatal("first claim must succeed")
	}

	again, err := st.MarkGenerating(ctx, shot.ID)
	if err != nil {
		t.Fatalf("second mark generating: %v", err)
	}
	if again {
		t.Fatal("second claim must be rejected")
	}

	fetched, _ := st.GetShot(ctx, shot.ID)
	if fetched.GenerationStartedAt == nil {
		t.Fatal("claim must stamp generation_started_at")
	}
}

func TestMarkCompletedRequiresGenerating(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	shot := testsupportSeed(t, st)

	if err := st.MarkCompleted(ctx, shot.ID, "/out/shot.mp4", 3*time.Second); err == nil {
		t.Fatal("completing a pending shot must fail")
	}

	if _, err := st.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if err := st.MarkCompleted(ctx, shot.ID, "/out/shot.mp4", 3*time.Second); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	fetched, _ := st.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotCompleted || fetched.OutputPath != "/out/shot.mp4" {
		t.Fatalf("completed shot = %s %q", fetched.Status, fetched.OutputPath)
	}
	if fetched.DurationSeconds != 3 {
		t.Fatalf("duration = %v, want 3", fetched.DurationSeconds)
	}
}

func TestMarkFailedAndReset(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	shot := testsupportSeed(t, st)

	if err := st.ResetShot(ctx, shot.ID); err == nil {
		t.Fatal("resetting a pending shot must fail")
	}

	if _, err := st.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}
	if err := st.MarkFailed(ctx, shot.ID, "backend exploded"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	fetched, _ := st.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotFailed || fetched.ErrorMessage != "backend exploded" {
		t.Fatalf("failed shot = %s %q", fetched.Status, fetched.ErrorMessage)
	}

	if err := st.ResetShot(ctx, shot.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	fetched, _ = st.GetShot(ctx, shot.ID)
	if fetched.Status != store.ShotPending || fetched.ErrorMessage != "" || fetched.OutputPath != "" {
		t.Fatalf("reset shot = %+v", fetched)
	}
}

func TestMarkRecoveredIdempotent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	shot := testsupportSeed(t, st)

	if _, err := st.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	adopted, err := st.MarkRecovered(ctx, shot.ID, "/out/orphan.mp4", 5*time.Second)
	if err != nil {
		t.Fatalf("mark recovered: %v", err)
	}
	if !adopted {
		t.Fatal("recovery from generating must adopt the artifact")
	}

	again, err := st.MarkRecovered(ctx, shot.ID, "/out/other.mp4", time.Second)
	if err != nil {
		t.Fatalf("second mark recovered: %v", err)
	}
	if again {
		t.Fatal("recovery of a completed shot must be a no-op")
	}

	fetched, _ := st.GetShot(ctx, shot.ID)
	if fetched.OutputPath != "/out/orphan.mp4" {
		t.Fatalf("output = %q, first recovery must win", fetched.OutputPath)
	}
}

func TestStaleGenerating(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	shot := testsupportSeed(t, st)

	if _, err := st.MarkGenerating(ctx, shot.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	none, err := st.StaleGenerating(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("stale query: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("fresh shot reported stale: %d", len(none))
	}

	stale, err := st.StaleGenerating(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("stale query: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != shot.ID {
		t.Fatalf("stale shots = %v", stale)
	}
}

func TestStatusCounts(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupportSeed(t, st)
	testsupportSeed(t, st)
	if _, err := st.MarkGenerating(ctx, first.ID); err != nil {
		t.Fatalf("mark generating: %v", err)
	}

	counts, err := st.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("status counts: %v", err)
	}
	if counts[store.ShotPending] != 1 || counts[store.ShotGenerating] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestBlacklistSnapshotAndRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.AddBlacklist(ctx, "alice", engines.EngineFramepack, "artifacting"); err != nil {
		t.Fatalf("add blacklist: %v", err)
	}
	// Duplicate insert must be silently ignored.
	if err := st.AddBlacklist(ctx, "alice", engines.EngineFramepack, "again"); err != nil {
		t.Fatalf("duplicate add blacklist: %v", err)
	}

	snapshot, err := st.BlacklistSnapshot(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snapshot.Blocked(engines.EngineFramepack, []string{"alice"}) {
		t.Fatal("snapshot must contain alice/framepack")
	}
	if snapshot.Blocked(engines.EngineFramepack, []string{"bob"}) {
		t.Fatal("snapshot must not block bob")
	}

	entries, err := st.ListBlacklist(ctx)
	if err != nil {
		t.Fatalf("list blacklist: %v", err)
	}
	if len(entries) != 1 || entries[0].Reason != "artifacting" {
		t.Fatalf("entries = %+v, duplicate insert must keep the original reason", entries)
	}

	removed, err := st.RemoveBlacklist(ctx, "alice", engines.EngineFramepack)
	if err != nil || !removed {
		t.Fatalf("remove = (%v, %v), want (true, nil)", removed, err)
	}
}

func TestSeedPipelineIdempotent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	phases := []string{"planning", "shot_preparation", "video_generation"}

	if err := st.SeedPipeline(ctx, store.EntityProject, "proj-1", phases); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.SetPhaseStatus(ctx, store.EntityProject, "proj-1", "planning", store.PhaseActive); err != nil {
		t.Fatalf("set status: %v", err)
	}
	// Re-seeding must not clobber progress.
	if err := st.SeedPipeline(ctx, store.EntityProject, "proj-1", phases); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	entries, err := st.PipelineEntries(ctx, store.EntityProject, "proj-1")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entry count = %d, want 3", len(entries))
	}
	if entries["planning"].Status != store.PhaseActive {
		t.Fatalf("planning = %s, reseed clobbered progress", entries["planning"].Status)
	}
}

func TestRecordEngineResultUpserts(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.RecordEngineResult(ctx, "alice", engines.EngineWanI2V, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := st.RecordEngineResult(ctx, "alice", engines.EngineWanI2V, false); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := st.RecordEngineResult(ctx, "alice", engines.EngineWanI2V, false); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, err := st.EngineStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stat rows = %d, want 1", len(stats))
	}
	if stats[0].Successes != 1 || stats[0].Failures != 2 {
		t.Fatalf("stats = %+v, want 1 success 2 failures", stats[0])
	}
}

func TestLoRAAssetsFor(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	asset := store.LoRAAsset{CharacterID: "alice", Engine: engines.EngineFramepack, Name: "alice-v3", Weight: 0.9}
	if err := st.UpsertLoRAAsset(ctx, asset); err != nil {
		t.Fatalf("upsert asset: %v", err)
	}

	assets, err := st.LoRAAssetsFor(ctx, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("assets for: %v", err)
	}
	lora, ok := assets["alice"][engines.EngineFramepack]
	if !ok || lora.Name != "alice-v3" || lora.Weight != 0.9 {
		t.Fatalf("alice asset = %+v (%v)", lora, ok)
	}
	if _, ok := assets["bob"]; ok {
		t.Fatal("bob has no assets")
	}
}
