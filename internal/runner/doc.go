// Package runner executes routed shots against the render backend.
//
// Run owns the full lifecycle of one generation: the pending-to-generating
// claim, the accelerator gate for exclusive engines, backend submission, and
// the bounded poll loop. Completion is observed by polling only; a shot
// whose confirmation was lost stays generating and is reconciled by
// RecoverOrphans (artifact scan, idempotent) or force-failed by ClearStuck.
package runner
