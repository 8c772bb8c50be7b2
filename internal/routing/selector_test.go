package routing_test

import (
	"testing"

	"showrunner/internal/engines"
	"showrunner/internal/routing"
)

func soloContext(characterID string) routing.ShotContext {
	return routing.ShotContext{CharacterIDs: []string{characterID}}
}

func TestSelectSoloClipWinsOverEverything(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceClip = true
	ctx.HasSourceImage = true
	ctx.ProjectLoRA = &routing.LoRAAsset{Name: "house-style", Weight: 0.5}

	decision := routing.Select(ctx, nil)
	if decision.Engine != engines.EngineReferenceV2V {
		t.Fatalf("engine = %s, want %s", decision.Engine, engines.EngineReferenceV2V)
	}
	if decision.RuleIndex != 0 || decision.RuleName != "solo-clip" {
		t.Fatalf("matched rule %d (%s), want rule 0 (solo-clip)", decision.RuleIndex, decision.RuleName)
	}
	if decision.Forced {
		t.Fatal("unforced selection reported as forced")
	}
}

func TestSelectProjectLoRADefaultWeight(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true
	ctx.ProjectLoRA = &routing.LoRAAsset{Name: "house-style"}

	decision := routing.Select(ctx, nil)
	if decision.Engine != engines.EngineFramepack {
		t.Fatalf("engine = %s, want %s", decision.Engine, engines.EngineFramepack)
	}
	if decision.LoRA == nil {
		t.Fatal("expected project LoRA on decision")
	}
	if decision.LoRA.Weight != 0.75 {
		t.Fatalf("default weight = %v, want 0.75", decision.LoRA.Weight)
	}
}

func TestSelectProjectLoRARequiresSourceImage(t *testing.T) {
	ctx := soloContext("alice")
	ctx.ProjectLoRA = &routing.LoRAAsset{Name: "house-style", Weight: 0.5}

	decision := routing.Select(ctx, nil)
	if decision.RuleName != "fallback" {
		t.Fatalf("matched rule %s, want fallback", decision.RuleName)
	}
	if decision.Forced {
		t.Fatal("natural fallback must not be forced")
	}
}

func TestSelectEnsembleRoutesToTextToVideo(t *testing.T) {
	ctx := routing.ShotContext{
		CharacterIDs:   []string{"alice", "bob"},
		HasSourceImage: true,
	}

	decision := routing.Select(ctx, nil)
	if decision.Engine != engines.EngineWanT2V {
		t.Fatalf("engine = %s, want %s", decision.Engine, engines.EngineWanT2V)
	}
	if decision.RuleName != "ensemble" {
		t.Fatalf("matched rule %s, want ensemble", decision.RuleName)
	}
}

func TestSelectSoloCharacterLoRA(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true
	ctx.CharacterLoRAs = map[string]map[engines.Engine]routing.LoRAAsset{
		"alice": {engines.EngineFramepack: {Name: "alice-v3", Weight: 0.9}},
	}

	decision := routing.Select(ctx, nil)
	if decision.Engine != engines.EngineFramepack {
		t.Fatalf("engine = %s, want %s", decision.Engine, engines.EngineFramepack)
	}
	if decision.LoRA == nil || decision.LoRA.Name != "alice-v3" {
		t.Fatalf("LoRA = %+v, want alice-v3", decision.LoRA)
	}
}

func TestSelectSoloImageWithoutLoRA(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true

	decision := routing.Select(ctx, nil)
	if decision.Engine != engines.EngineWanI2V {
		t.Fatalf("engine = %s, want %s", decision.Engine, engines.EngineWanI2V)
	}
}

func TestSelectBlacklistShiftsRouting(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true
	ctx.CharacterLoRAs = map[string]map[engines.Engine]routing.LoRAAsset{
		"alice": {engines.EngineFramepack: {Name: "alice-v3", Weight: 0.9}},
	}

	blacklist := routing.Blacklist{}
	blacklist.Add("alice", engines.EngineFramepack)

	decision := routing.Select(ctx, blacklist)
	if decision.Engine != engines.EngineWanI2V {
		t.Fatalf("engine = %s, want %s after blacklisting framepack", decision.Engine, engines.EngineWanI2V)
	}
	if decision.Forced {
		t.Fatal("a surviving rule matched; decision must not be forced")
	}
}

func TestSelectForcedFallbackWhenEverythingBlacklisted(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true

	blacklist := routing.Blacklist{}
	for _, spec := range engines.All() {
		blacklist.Add("alice", spec.Engine)
	}

	decision := routing.Select(ctx, blacklist)
	if decision.Engine != engines.EngineWanT2V {
		t.Fatalf("engine = %s, want terminal fallback %s", decision.Engine, engines.EngineWanT2V)
	}
	if !decision.Forced {
		t.Fatal("fully blacklisted context must force the fallback")
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	ctx := soloContext("alice")
	ctx.HasSourceImage = true
	ctx.CharacterLoRAs = map[string]map[engines.Engine]routing.LoRAAsset{
		"alice": {engines.EngineFramepack: {Name: "alice-v3", Weight: 0.9}},
	}
	blacklist := routing.Blacklist{}
	blacklist.Add("alice", engines.EngineReferenceV2V)

	first := routing.Select(ctx, blacklist)
	for i := 0; i < 50; i++ {
		again := routing.Select(ctx, blacklist)
		if again.Engine != first.Engine || again.RuleIndex != first.RuleIndex {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestSelectAlwaysReturnsDecision(t *testing.T) {
	contexts := []routing.ShotContext{
		{},
		{CharacterIDs: []string{"a"}},
		{CharacterIDs: []string{"a", "b", "c"}},
		{CharacterIDs: []string{"a"}, HasSourceImage: true, HasSourceClip: true},
	}
	for _, ctx := range contexts {
		decision := routing.Select(ctx, nil)
		if decision.Engine == "" {
			t.Fatalf("context %+v produced empty decision", ctx)
		}
	}
}

func TestBlacklistBlockedAnyCharacter(t *testing.T) {
	blacklist := routing.Blacklist{}
	blacklist.Add("bob", engines.EngineWanT2V)

	if !blacklist.Blocked(engines.EngineWanT2V, []string{"alice", "bob"}) {
		t.Fatal("engine blocked for one character must block the shot")
	}
	if blacklist.Blocked(engines.EngineWanT2V, []string{"alice"}) {
		t.Fatal("engine must not be blocked for unrelated characters")
	}
}

func TestRuleNamesOrder(t *testing.T) {
	names := routing.RuleNames()
	if len(names) == 0 || names[len(names)-1] != "fallback" {
		t.Fatalf("rule table must end with fallback, got %v", names)
	}
}
