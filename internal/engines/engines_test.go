package engines_test

import (
	"testing"

	"showrunner/internal/engines"
)

func TestParseNormalizes(t *testing.T) {
	engine, ok := engines.Parse("  Framepack ")
	if !ok || engine != engines.EngineFramepack {
		t.Fatalf("parse = (%s, %v)", engine, ok)
	}
	if _, ok := engines.Parse("sora"); ok {
		t.Fatal("unknown engine must not parse")
	}
}

func TestLookupAttributes(t *testing.T) {
	spec, ok := engines.Lookup(engines.EngineFramepack)
	if !ok {
		t.Fatal("framepack missing from registry")
	}
	if !spec.Exclusive || !spec.LoRACapable {
		t.Fatalf("framepack spec = %+v", spec)
	}

	tagger, ok := engines.Lookup(engines.EngineTagger)
	if !ok {
		t.Fatal("tagger missing from registry")
	}
	if tagger.Exclusive {
		t.Fatal("tagger must not be exclusive")
	}
}

func TestIsExclusiveUnknownEngineDefaultsExclusive(t *testing.T) {
	if !engines.IsExclusive("mystery_engine") {
		t.Fatal("unknown engines must be treated as exclusive")
	}
	if engines.IsExclusive(engines.EngineTagger) {
		t.Fatal("tagger must bypass the gate")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := engines.All()
	first[0].Engine = "tampered"
	if engines.All()[0].Engine == "tampered" {
		t.Fatal("All must return a copy")
	}
}
