// Package workflow is the orchestration facade.
//
// The Manager wires the rule-table selector, the accelerator gate, the job
// runner, the phase tracker, and the review feedback loop, and exposes the
// operations collaborators call: engine selection, shot and scene
// generation, pipeline queries and overrides, shot review, orphan recovery,
// and stuck-generation clearing.
//
// Routing is re-evaluated on every generation, so review decisions that grow
// the blacklist change where the next attempt lands without any rule-table
// mutation.
package workflow
