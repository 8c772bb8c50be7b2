// Package pipeline tracks ordered production phases per project and per
// character.
//
// Each entity type has a fixed phase sequence; at most one phase is active
// at a time, and a phase cannot complete while a predecessor is neither
// completed nor skipped. The Tracker records results: aggregate completion
// conditions (approved-image counts, training completion) are evaluated by
// collaborators, which call Advance when a threshold is crossed. Manual
// overrides (skip, reset, complete) apply immediately and never cascade.
package pipeline
