package routing

import "showrunner/internal/engines"

// projectLoRAWeight is the influence applied when a project forces a
// project-wide LoRA without declaring its own weight.
const projectLoRAWeight = 0.75

// Decision is the immutable outcome of one routing call.
type Decision struct {
	Engine engines.Engine
	Mode   engines.Mode
	LoRA   *LoRAAsset
	// RuleIndex is the position of the matched rule in the table, kept for
	// audit trails.
	RuleIndex int
	RuleName  string
	// Forced is set when every surviving rule was blacklist-filtered and the
	// terminal fallback rule was returned regardless of blacklist state.
	Forced bool
}

// rule pairs a predicate over the shot context with the decision it produces.
// The table is evaluated top to bottom by Select; earlier rules always win.
type rule struct {
	name   string
	match  func(ShotContext) bool
	decide func(ShotContext) Decision
}

// ruleTable is the authoritative routing order. Rules are mutually exclusive
// by construction within a tier (each checks a distinct combination of
// character count, source asset, and LoRA availability); where two tiers can
// both match, table order decides. The last rule matches every context.
var ruleTable = []rule{
	{
		name: "solo-clip",
		match: func(c ShotContext) bool {
			return c.Solo() && c.HasSourceClip
		},
		decide: func(c ShotContext) Decision {
			return Decision{Engine: engines.EngineReferenceV2V, Mode: engines.ModeVideoToVideo}
		},
	},
	{
		name: "project-lora",
		match: func(c ShotContext) bool {
			return c.ProjectLoRA != nil && c.HasSourceImage
		},
		decide: func(c ShotContext) Decision {
			lora := *c.ProjectLoRA
			if lora.Weight <= 0 {
				lora.Weight = projectLoRAWeight
			}
			return Decision{Engine: engines.EngineFramepack, Mode: engines.ModeImageToVideo, LoRA: &lora}
		},
	},
	{
		name: "ensemble",
		match: func(c ShotContext) bool {
			return c.CharacterCount() != 1
		},
		decide: func(c ShotContext) Decision {
			return Decision{Engine: engines.EngineWanT2V, Mode: engines.ModeTextToVideo}
		},
	},
	{
		name: "solo-lora-image",
		match: func(c ShotContext) bool {
			if !c.Solo() || !c.HasSourceImage {
				return false
			}
			_, ok := c.LoRAFor(c.CharacterIDs[0], engines.EngineFramepack)
			return ok
		},
		decide: func(c ShotContext) Decision {
			lora, _ := c.LoRAFor(c.CharacterIDs[0], engines.EngineFramepack)
			return Decision{Engine: engines.EngineFramepack, Mode: engines.ModeImageToVideo, LoRA: &lora}
		},
	},
	{
		name: "solo-image",
		match: func(c ShotContext) bool {
			return c.Solo() && c.HasSourceImage
		},
		decide: func(c ShotContext) Decision {
			return Decision{Engine: engines.EngineWanI2V, Mode: engines.ModeImageToVideo}
		},
	},
	{
		name: "fallback",
		match: func(c ShotContext) bool {
			return true
		},
		decide: func(c ShotContext) Decision {
			return Decision{Engine: engines.EngineWanT2V, Mode: engines.ModeTextToVideo}
		},
	},
}

// RuleNames returns the table order for display and audit tooling.
func RuleNames() []string {
	names := make([]string, len(ruleTable))
	for i, r := range ruleTable {
		names[i] = r.name
	}
	return names
}
