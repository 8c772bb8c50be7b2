package pipeline

import "showrunner/internal/store"

// Project phases, in production order.
const (
	PhasePlanning        = "planning"
	PhaseShotPreparation = "shot_preparation"
	PhaseVideoGeneration = "video_generation"
	PhaseAssembly        = "assembly"
	PhaseEpisode         = "episode"
	PhasePublishing      = "publishing"
)

// Character phases, in production order.
const (
	PhaseDatasetBuilding = "dataset_building"
	PhaseModelTraining   = "model_training"
	PhaseReady           = "ready"
)

var projectSequence = []string{
	PhasePlanning,
	PhaseShotPreparation,
	PhaseVideoGeneration,
	PhaseAssembly,
	PhaseEpisode,
	PhasePublishing,
}

var characterSequence = []string{
	PhaseDatasetBuilding,
	PhaseModelTraining,
	PhaseReady,
}

// Sequence returns the fixed phase order for an entity type.
func Sequence(entityType store.EntityType) []string {
	var seq []string
	switch entityType {
	case store.EntityProject:
		seq = projectSequence
	case store.EntityCharacter:
		seq = characterSequence
	default:
		return nil
	}
	cp := make([]string, len(seq))
	copy(cp, seq)
	return cp
}

// ValidPhase reports whether phase belongs to the entity type's sequence.
func ValidPhase(entityType store.EntityType, phase string) bool {
	for _, candidate := range Sequence(entityType) {
		if candidate == phase {
			return true
		}
	}
	return false
}
