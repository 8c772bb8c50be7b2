// Package gate provides single-slot admission control for the shared
// accelerator.
//
// Exclusive engines fully occupy the accelerator, so at most one backend
// invocation may hold the gate at a time; lightweight engines bypass it
// entirely. Waiters block with best-effort fairness and surface a starvation
// warning after a configured threshold instead of failing. An operator can
// Reclaim a slot abandoned by a crashed holder; the stale token's Release
// then reports ErrNotHolder rather than corrupting the slot count.
package gate
