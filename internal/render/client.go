package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"showrunner/internal/config"
	"showrunner/internal/engines"
	"showrunner/internal/services"
)

const userAgent = "Showrunner-Go/0.1.0"

// Client talks to a ComfyUI-compatible render server over its submit/poll
// HTTP API.
type Client struct {
	baseURL   string
	outputDir string
	clientID  string
	client    *http.Client
}

// Option configures the HTTP client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// NewClient constructs a render client from configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := time.Duration(cfg.Render.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.Render.BaseURL, "/"),
		outputDir: cfg.Paths.RenderOutputDir,
		clientID:  uuid.NewString(),
		client:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the workflow graph and returns the backend's job handle.
func (c *Client) Submit(ctx context.Context, job Job) (JobHandle, error) {
	payload := map[string]any{
		"client_id": c.clientID,
		"prompt":    buildGraph(job),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return JobHandle{}, fmt.Errorf("encode workflow: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return JobHandle{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return JobHandle{}, services.Wrap(services.ErrExternalTool, "render", "submit", "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return JobHandle{}, services.Wrap(services.ErrExternalTool, "render", "submit",
			fmt.Sprintf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	var decoded struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return JobHandle{}, fmt.Errorf("decode submit response: %w", err)
	}
	if decoded.PromptID == "" {
		return JobHandle{}, services.Wrap(services.ErrExternalTool, "render", "submit", "backend returned no prompt id", nil)
	}
	return JobHandle{ID: decoded.PromptID}, nil
}

// Poll reads the job's history entry. A missing entry means the job is still
// queued or running; a populated one carries the artifact or the error.
func (c *Client) Poll(ctx context.Context, handle JobHandle) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+handle.ID, nil)
	if err != nil {
		return Status{}, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Status{}, services.Wrap(services.ErrExternalTool, "render", "poll", "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, services.Wrap(services.ErrExternalTool, "render", "poll",
			fmt.Sprintf("backend returned %d", resp.StatusCode), nil)
	}

	var history map[string]historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return Status{}, fmt.Errorf("decode poll response: %w", err)
	}

	entry, ok := history[handle.ID]
	if !ok {
		return Status{State: StateRunning}, nil
	}
	if entry.Status.Failed() {
		return Status{State: StateFailed, Error: entry.Status.ErrorMessage()}, nil
	}
	if artifact := entry.artifact(c.outputDir); artifact != "" {
		return Status{State: StateCompleted, ArtifactPath: artifact}, nil
	}
	return Status{State: StateRunning}, nil
}

type historyEntry struct {
	Status  entryStatus               `json:"status"`
	Outputs map[string]map[string]any `json:"outputs"`
}

type entryStatus struct {
	StatusStr string  `json:"status_str"`
	Completed bool    `json:"completed"`
	Messages  [][]any `json:"messages"`
}

func (s entryStatus) Failed() bool {
	return strings.EqualFold(s.StatusStr, "error")
}

func (s entryStatus) ErrorMessage() string {
	for _, message := range s.Messages {
		if len(message) < 2 {
			continue
		}
		kind, _ := message[0].(string)
		if kind != "execution_error" {
			continue
		}
		if detail, ok := message[1].(map[string]any); ok {
			if text, ok := detail["exception_message"].(string); ok && text != "" {
				return text
			}
		}
	}
	return "render backend reported an error"
}

func (e historyEntry) artifact(outputDir string) string {
	for _, output := range e.Outputs {
		for _, key := range []string{"videos", "gifs", "images"} {
			items, ok := output[key].([]any)
			if !ok {
				continue
			}
			for _, item := range items {
				file, ok := item.(map[string]any)
				if !ok {
					continue
				}
				name, _ := file["filename"].(string)
				if name == "" {
					continue
				}
				subfolder, _ := file["subfolder"].(string)
				return filepath.Join(outputDir, subfolder, name)
			}
		}
	}
	return ""
}

// buildGraph assembles the node graph for one job. The shapes mirror the
// standard ComfyUI video workflows for each engine family.
func buildGraph(job Job) map[string]any {
	graph := map[string]any{
		"prompt": map[string]any{
			"class_type": "CLIPTextEncode",
			"inputs":     map[string]any{"text": job.Prompt},
		},
		"engine": map[string]any{
			"class_type": "EngineLoader",
			"inputs":     map[string]any{"engine": string(job.Engine), "mode": string(job.Mode)},
		},
		"save": map[string]any{
			"class_type": "SaveVideo",
			"inputs":     map[string]any{"filename_prefix": job.OutputPrefix},
		},
	}
	switch job.Mode {
	case engines.ModeImageToVideo:
		graph["source"] = map[string]any{
			"class_type": "LoadImage",
			"inputs":     map[string]any{"image": job.SourceImage},
		}
	case engines.ModeVideoToVideo:
		graph["source"] = map[string]any{
			"class_type": "LoadVideo",
			"inputs":     map[string]any{"video": job.SourceVideo},
		}
	}
	if job.LoRAName != "" {
		graph["lora"] = map[string]any{
			"class_type": "LoraLoader",
			"inputs":     map[string]any{"lora_name": job.LoRAName, "strength_model": job.LoRAWeight},
		}
	}
	return graph
}

var _ Backend = (*Client)(nil)
