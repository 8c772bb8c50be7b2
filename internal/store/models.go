package store

import (
	"strings"
	"time"

	"showrunner/internal/engines"
	"showrunner/internal/routing"
)

// ShotStatus represents the generation lifecycle of a shot.
type ShotStatus string

const (
	ShotPending    ShotStatus = "pending"
	ShotGenerating ShotStatus = "generating"
	ShotCompleted  ShotStatus = "completed"
	ShotFailed     ShotStatus = "failed"
)

var shotStatusSet = map[ShotStatus]struct{}{
	ShotPending:    {},
	ShotGenerating: {},
	ShotCompleted:  {},
	ShotFailed:     {},
}

// ParseShotStatus converts a string into a known ShotStatus.
func ParseShotStatus(value string) (ShotStatus, bool) {
	normalized := ShotStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := shotStatusSet[normalized]
	return normalized, ok
}

// Shot is the smallest generation unit, one clip within a scene.
type Shot struct {
	ID           int64
	SceneID      int64
	CharacterIDs []string
	Prompt       string
	SourceImage  string
	SourceVideo  string
	Status       ShotStatus

	// Routing outcome, overwritten on re-route.
	Engine     engines.Engine
	Mode       engines.Mode
	LoRAName   string
	LoRAWeight float64
	RuleIndex  int

	OutputPath          string
	ErrorMessage        string
	DurationSeconds     float64
	GenerationStartedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ApplyDecision copies a routing decision onto the shot. A re-route simply
// overwrites the previous decision.
func (s *Shot) ApplyDecision(decision routing.Decision) {
	s.Engine = decision.Engine
	s.Mode = decision.Mode
	s.RuleIndex = decision.RuleIndex
	if decision.LoRA != nil {
		s.LoRAName = decision.LoRA.Name
		s.LoRAWeight = decision.LoRA.Weight
	} else {
		s.LoRAName = ""
		s.LoRAWeight = 0
	}
}

// EntityType distinguishes the two pipeline sequences.
type EntityType string

const (
	EntityProject   EntityType = "project"
	EntityCharacter EntityType = "character"
)

// ParseEntityType converts a string into a known EntityType.
func ParseEntityType(value string) (EntityType, bool) {
	switch EntityType(strings.ToLower(strings.TrimSpace(value))) {
	case EntityProject:
		return EntityProject, true
	case EntityCharacter:
		return EntityCharacter, true
	default:
		return "", false
	}
}

// PhaseStatus represents the state of one pipeline phase.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseActive    PhaseStatus = "active"
	PhaseBlocked   PhaseStatus = "blocked"
	PhaseCompleted PhaseStatus = "completed"
	PhaseFailed    PhaseStatus = "failed"
	PhaseSkipped   PhaseStatus = "skipped"
)

var phaseStatusSet = map[PhaseStatus]struct{}{
	PhasePending:   {},
	PhaseActive:    {},
	PhaseBlocked:   {},
	PhaseCompleted: {},
	PhaseFailed:    {},
	PhaseSkipped:   {},
}

// ParsePhaseStatus converts a string into a known PhaseStatus.
func ParsePhaseStatus(value string) (PhaseStatus, bool) {
	normalized := PhaseStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := phaseStatusSet[normalized]
	return normalized, ok
}

// Done reports whether the phase no longer blocks its successors.
func (p PhaseStatus) Done() bool {
	return p == PhaseCompleted || p == PhaseSkipped
}

// PipelineEntry is one phase row of an entity's production pipeline.
type PipelineEntry struct {
	EntityType EntityType
	EntityID   string
	Phase      string
	Status     PhaseStatus
	UpdatedAt  time.Time
}

// BlacklistEntry permanently excludes an engine for a character.
type BlacklistEntry struct {
	CharacterID string
	Engine      engines.Engine
	Reason      string
	CreatedAt   time.Time
}

// EngineStat aggregates review outcomes per character and engine.
type EngineStat struct {
	CharacterID string
	Engine      engines.Engine
	Successes   int
	Failures    int
}

// Project groups scenes and optionally forces a project-wide LoRA.
type Project struct {
	ID         string
	Title      string
	LoRAName   string
	LoRAWeight float64
	CreatedAt  time.Time
}

// Scene groups the shots of one continuous beat.
type Scene struct {
	ID        int64
	ProjectID string
	Title     string
	CreatedAt time.Time
}

// LoRAAsset records a trained LoRA available for a character on an engine.
type LoRAAsset struct {
	CharacterID string
	Engine      engines.Engine
	Name        string
	Weight      float64
}
