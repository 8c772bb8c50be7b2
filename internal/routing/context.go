package routing

import "showrunner/internal/engines"

// LoRAAsset references a trained LoRA checkpoint and the influence weight it
// should be applied with.
type LoRAAsset struct {
	Name   string
	Weight float64
}

// ShotContext is the immutable input to one routing call. It is rebuilt from
// the store for every call and never persisted.
type ShotContext struct {
	CharacterIDs   []string
	HasSourceImage bool
	HasSourceClip  bool
	// CharacterLoRAs maps character id -> engine -> available LoRA asset.
	CharacterLoRAs map[string]map[engines.Engine]LoRAAsset
	// ProjectLoRA is set when the project forces a project-wide LoRA.
	ProjectLoRA *LoRAAsset
}

// CharacterCount returns the number of characters in the shot.
func (c ShotContext) CharacterCount() int {
	return len(c.CharacterIDs)
}

// Solo reports whether exactly one character appears in the shot.
func (c ShotContext) Solo() bool {
	return len(c.CharacterIDs) == 1
}

// LoRAFor returns the LoRA available for a character on a given engine.
func (c ShotContext) LoRAFor(characterID string, engine engines.Engine) (LoRAAsset, bool) {
	byEngine, ok := c.CharacterLoRAs[characterID]
	if !ok {
		return LoRAAsset{}, false
	}
	asset, ok := byEngine[engine]
	return asset, ok
}

// Blacklist is a snapshot of per-character engine exclusions, keyed by
// character id. It is read-only to the selector; the review feedback loop is
// the sole writer of the backing table.
type Blacklist map[string]map[engines.Engine]struct{}

// Blocked reports whether an engine is excluded for any of the characters.
func (b Blacklist) Blocked(engine engines.Engine, characterIDs []string) bool {
	if len(b) == 0 {
		return false
	}
	for _, id := range characterIDs {
		if set, ok := b[id]; ok {
			if _, hit := set[engine]; hit {
				return true
			}
		}
	}
	return false
}

// Add records an exclusion in the snapshot. Used by callers assembling a
// snapshot from store rows; the snapshot itself is never written back.
func (b Blacklist) Add(characterID string, engine engines.Engine) {
	set, ok := b[characterID]
	if !ok {
		set = make(map[engines.Engine]struct{})
		b[characterID] = set
	}
	set[engine] = struct{}{}
}
