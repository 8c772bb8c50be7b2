package api

// ShotItem describes a shot in a transport-friendly format.
type ShotItem struct {
	ID           int64    `json:"id"`
	SceneID      int64    `json:"sceneId"`
	CharacterIDs []string `json:"characterIds"`
	Prompt       string   `json:"prompt"`
	Status       string   `json:"status"`
	Engine       string   `json:"engine,omitempty"`
	Mode         string   `json:"mode,omitempty"`
	LoRAName     string   `json:"loraName,omitempty"`
	RuleIndex    int      `json:"ruleIndex"`
	OutputPath   string   `json:"outputPath,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Duration     float64  `json:"durationSeconds,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

// WorkflowStatus summarizes orchestration state.
type WorkflowStatus struct {
	ShotCounts map[string]int `json:"shotCounts"`
	GateHolder string         `json:"gateHolder,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// PipelinePhase describes one phase row of an entity's pipeline.
type PipelinePhase struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Phase      string `json:"phase"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// BlacklistEntry describes one character/engine exclusion.
type BlacklistEntry struct {
	CharacterID string `json:"characterId"`
	Engine      string `json:"engine"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// EngineStat describes aggregate review outcomes per character and engine.
type EngineStat struct {
	CharacterID string `json:"characterId"`
	Engine      string `json:"engine"`
	Successes   int    `json:"successes"`
	Failures    int    `json:"failures"`
}

// RoutingDecision describes a dry-run engine selection.
type RoutingDecision struct {
	Engine    string `json:"engine"`
	Mode      string `json:"mode"`
	LoRAName  string `json:"loraName,omitempty"`
	RuleIndex int    `json:"ruleIndex"`
	RuleName  string `json:"ruleName"`
	Forced    bool   `json:"forcedFallback"`
}

// ReviewRequest carries one review decision over the wire.
type ReviewRequest struct {
	Approved        bool   `json:"approved"`
	Feedback        string `json:"feedback,omitempty"`
	BlacklistEngine bool   `json:"blacklistEngine,omitempty"`
}

// OverrideRequest carries a manual pipeline transition.
type OverrideRequest struct {
	Phase  string `json:"phase"`
	Action string `json:"action"`
}

// MaintenanceResult reports how many rows a maintenance sweep touched.
type MaintenanceResult struct {
	Affected int `json:"affected"`
}
