package engines

import "strings"

// Engine identifies a generative render backend workflow.
type Engine string

const (
	// EngineReferenceV2V restyles an existing clip while keeping its motion.
	EngineReferenceV2V Engine = "reference_v2v"
	// EngineFramepack animates a still image and accepts a character LoRA.
	EngineFramepack Engine = "framepack"
	// EngineWanI2V animates a still image without LoRA conditioning.
	EngineWanI2V Engine = "wan_i2v"
	// EngineWanT2V renders from the prompt alone. Terminal routing fallback.
	EngineWanT2V Engine = "wan_t2v"
	// EngineTagger is the lightweight frame classifier. It coexists with the
	// exclusive engines and never takes the accelerator gate.
	EngineTagger Engine = "wd_tagger"
)

// Mode is the render mode an engine runs in.
type Mode string

const (
	ModeImageToVideo Mode = "image-to-video"
	ModeTextToVideo  Mode = "text-to-video"
	ModeVideoToVideo Mode = "video-to-video"
)

// Spec describes the scheduling-relevant attributes of an engine.
type Spec struct {
	Engine      Engine
	DefaultMode Mode
	// Exclusive engines fully occupy the shared accelerator and must hold
	// the resource gate while running.
	Exclusive   bool
	LoRACapable bool
}

var allSpecs = []Spec{
	{Engine: EngineReferenceV2V, DefaultMode: ModeVideoToVideo, Exclusive: true},
	{Engine: EngineFramepack, DefaultMode: ModeImageToVideo, Exclusive: true, LoRACapable: true},
	{Engine: EngineWanI2V, DefaultMode: ModeImageToVideo, Exclusive: true},
	{Engine: EngineWanT2V, DefaultMode: ModeTextToVideo, Exclusive: true},
	{Engine: EngineTagger, DefaultMode: "", Exclusive: false},
}

var specIndex = func() map[Engine]Spec {
	index := make(map[Engine]Spec, len(allSpecs))
	for _, spec := range allSpecs {
		index[spec.Engine] = spec
	}
	return index
}()

// All returns the ordered list of known engines.
func All() []Spec {
	cp := make([]Spec, len(allSpecs))
	copy(cp, allSpecs)
	return cp
}

// Lookup returns the spec for an engine.
func Lookup(engine Engine) (Spec, bool) {
	spec, ok := specIndex[engine]
	return spec, ok
}

// Parse converts a string into a known Engine.
func Parse(value string) (Engine, bool) {
	normalized := Engine(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := specIndex[normalized]
	return normalized, ok
}

// IsExclusive reports whether an engine requires the accelerator gate.
// Unknown engines are treated as exclusive so a registry gap cannot cause
// two backend jobs to overlap on the accelerator.
func IsExclusive(engine Engine) bool {
	spec, ok := specIndex[engine]
	if !ok {
		return true
	}
	return spec.Exclusive
}
