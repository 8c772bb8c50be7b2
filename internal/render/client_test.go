package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"showrunner/internal/engines"
	"showrunner/internal/render"
	"showrunner/internal/services"
	"showrunner/internal/testsupport"
)

func newTestClient(t *testing.T, handler http.Handler) (*render.Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := testsupport.NewConfig(t, testsupport.WithRenderBaseURL(server.URL))
	return render.NewClient(cfg), cfg.Paths.RenderOutputDir
}

func TestSubmitPostsWorkflowGraph(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/prompt" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"prompt_id": "job-1"})
	}))

	job := render.Job{
		ShotID:       7,
		Engine:       engines.EngineFramepack,
		Mode:         engines.ModeImageToVideo,
		Prompt:       "alice walks through rain",
		SourceImage:  "/assets/alice.png",
		LoRAName:     "alice-v3",
		LoRAWeight:   0.9,
		OutputPrefix: render.OutputPrefixForShot(7),
	}
	handle, err := client.Submit(context.Background(), job)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if handle.ID != "job-1" {
		t.Fatalf("handle = %q, want job-1", handle.ID)
	}

	if captured["client_id"] == "" {
		t.Fatal("submit must carry a client id")
	}
	graph, ok := captured["prompt"].(map[string]any)
	if !ok {
		t.Fatalf("prompt graph missing: %v", captured)
	}
	if _, ok := graph["lora"]; !ok {
		t.Fatal("LoRA-carrying job must include a lora node")
	}
	if _, ok := graph["source"]; !ok {
		t.Fatal("image-to-video job must include a source node")
	}
}

func TestSubmitBackendErrorWrapped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))

	_, err := client.Submit(context.Background(), render.Job{OutputPrefix: "shot_000001"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error = %v, want external tool error", err)
	}
}

func TestPollMissingEntryMeansRunning(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	status, err := client.Poll(context.Background(), render.JobHandle{ID: "job-1"})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if status.State != render.StateRunning {
		t.Fatalf("state = %s, want running", status.State)
	}
}

func TestPollCompletedResolvesArtifactPath(t *testing.T) {
	client, outputDir := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history/job-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job-1": map[string]any{
				"status": map[string]any{"status_str": "success", "completed": true},
				"outputs": map[string]any{
					"save": map[string]any{
						"videos": []any{
							map[string]any{"filename": "shot_000007_0001.mp4", "subfolder": "batch"},
						},
					},
				},
			},
		})
	}))

	status, err := client.Poll(context.Background(), render.JobHandle{ID: "job-1"})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if status.State != render.StateCompleted {
		t.Fatalf("state = %s, want completed", status.State)
	}
	want := filepath.Join(outputDir, "batch", "shot_000007_0001.mp4")
	if status.ArtifactPath != want {
		t.Fatalf("artifact = %q, want %q", status.ArtifactPath, want)
	}
}

func TestPollFailureCarriesExceptionMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"job-1": map[string]any{
				"status": map[string]any{
					"status_str": "error",
					"messages": []any{
						[]any{"execution_error", map[string]any{"exception_message": "CUDA out of memory"}},
					},
				},
			},
		})
	}))

	status, err := client.Poll(context.Background(), render.JobHandle{ID: "job-1"})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if status.State != render.StateFailed || status.Error != "CUDA out of memory" {
		t.Fatalf("status = %+v", status)
	}
}

func TestOutputPrefixForShot(t *testing.T) {
	if got := render.OutputPrefixForShot(7); got != "shot_000007" {
		t.Fatalf("prefix = %q, want shot_000007", got)
	}
	if got := render.OutputPrefixForShot(1234567); got != "shot_1234567" {
		t.Fatalf("prefix = %q, want shot_1234567", got)
	}
}
