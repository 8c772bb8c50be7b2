// Package routing decides which engine renders a shot.
//
// The rule table is an ordered list of predicate/outcome pairs evaluated by a
// single loop in Select. Earlier rules always win; the terminal rule matches
// every context so routing never fails. Per-character blacklist state filters
// rule outcomes on every call without mutating the table.
//
// The package is pure: no store access, no side effects. Callers assemble the
// ShotContext and Blacklist snapshot from persistent state and log the
// returned rule index for auditability.
package routing
