// Package engines enumerates the generative backends the orchestrator can
// route shots to, together with their render mode, accelerator exclusivity,
// and LoRA capability.
//
// The registry is fixed at compile time; routing rules, the store, and the
// runner all key off these identifiers. Adding an engine means adding a Spec
// here and teaching the routing rule table when to pick it.
package engines
