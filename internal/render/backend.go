package render

import (
	"context"
	"fmt"

	"showrunner/internal/engines"
)

// State is the coarse job state reported by the backend.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Job is the workflow descriptor submitted to the backend for one shot.
type Job struct {
	ShotID      int64
	Engine      engines.Engine
	Mode        engines.Mode
	Prompt      string
	SourceImage string
	SourceVideo string
	LoRAName    string
	LoRAWeight  float64
	// OutputPrefix names the artifact; orphan recovery matches files
	// against it, so it must be derivable from the shot alone.
	OutputPrefix string
}

// OutputPrefixForShot is the canonical artifact naming pattern.
func OutputPrefixForShot(shotID int64) string {
	return fmt.Sprintf("shot_%06d", shotID)
}

// JobHandle identifies a submitted job for later polling.
type JobHandle struct {
	ID string
}

// Status is one poll observation of a submitted job.
type Status struct {
	State        State
	ArtifactPath string
	Error        string
}

// Backend is the external render collaborator. It accepts one job at a time
// per physical accelerator slot; the resource gate enforces that assumption
// on the caller side.
type Backend interface {
	Submit(ctx context.Context, job Job) (JobHandle, error)
	Poll(ctx context.Context, handle JobHandle) (Status, error)
}
