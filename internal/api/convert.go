package api

import (
	"time"

	"showrunner/internal/routing"
	"showrunner/internal/store"
)

const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FromShot converts a stored shot into its API representation.
func FromShot(shot *store.Shot) *ShotItem {
	if shot == nil {
		return nil
	}
	return &ShotItem{
		ID:           shot.ID,
		SceneID:      shot.SceneID,
		CharacterIDs: shot.CharacterIDs,
		Prompt:       shot.Prompt,
		Status:       string(shot.Status),
		Engine:       string(shot.Engine),
		Mode:         string(shot.Mode),
		LoRAName:     shot.LoRAName,
		RuleIndex:    shot.RuleIndex,
		OutputPath:   shot.OutputPath,
		ErrorMessage: shot.ErrorMessage,
		Duration:     shot.DurationSeconds,
		CreatedAt:    formatTime(shot.CreatedAt),
		UpdatedAt:    formatTime(shot.UpdatedAt),
	}
}

// FromShots converts a slice of stored shots.
func FromShots(shots []*store.Shot) []ShotItem {
	items := make([]ShotItem, 0, len(shots))
	for _, shot := range shots {
		if converted := FromShot(shot); converted != nil {
			items = append(items, *converted)
		}
	}
	return items
}

// FromPipelineEntries converts pipeline rows for transport.
func FromPipelineEntries(entries []store.PipelineEntry) []PipelinePhase {
	phases := make([]PipelinePhase, 0, len(entries))
	for _, entry := range entries {
		phases = append(phases, PipelinePhase{
			EntityType: string(entry.EntityType),
			EntityID:   entry.EntityID,
			Phase:      entry.Phase,
			Status:     string(entry.Status),
			UpdatedAt:  formatTime(entry.UpdatedAt),
		})
	}
	return phases
}

// FromBlacklist converts blacklist rows for transport.
func FromBlacklist(entries []store.BlacklistEntry) []BlacklistEntry {
	converted := make([]BlacklistEntry, 0, len(entries))
	for _, entry := range entries {
		converted = append(converted, BlacklistEntry{
			CharacterID: entry.CharacterID,
			Engine:      string(entry.Engine),
			Reason:      entry.Reason,
			CreatedAt:   formatTime(entry.CreatedAt),
		})
	}
	return converted
}

// FromEngineStats converts stat rows for transport.
func FromEngineStats(stats []store.EngineStat) []EngineStat {
	converted := make([]EngineStat, 0, len(stats))
	for _, stat := range stats {
		converted = append(converted, EngineStat{
			CharacterID: stat.CharacterID,
			Engine:      string(stat.Engine),
			Successes:   stat.Successes,
			Failures:    stat.Failures,
		})
	}
	return converted
}

// FromDecision converts a routing decision for transport.
func FromDecision(decision routing.Decision) RoutingDecision {
	converted := RoutingDecision{
		Engine:    string(decision.Engine),
		Mode:      string(decision.Mode),
		RuleIndex: decision.RuleIndex,
		RuleName:  decision.RuleName,
		Forced:    decision.Forced,
	}
	if decision.LoRA != nil {
		converted.LoRAName = decision.LoRA.Name
	}
	return converted
}

// MergeShotCounts converts status-keyed counts into string keys, filling in
// zero entries for every known status so consumers always see a full map.
func MergeShotCounts(counts map[store.ShotStatus]int) map[string]int {
	merged := map[string]int{
		string(store.ShotPending):    0,
		string(store.ShotGenerating): 0,
		string(store.ShotCompleted):  0,
		string(store.ShotFailed):     0,
	}
	for status, count := range counts {
		merged[string(status)] = count
	}
	return merged
}
