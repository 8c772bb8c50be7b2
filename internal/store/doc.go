// Package store persists orchestration state in SQLite: shots and their
// generation lifecycle, pipeline phase entries, the per-character engine
// blacklist, review statistics, and the project/scene/LoRA catalog the
// selector draws its context from.
//
// Every mutation is a single-row atomic update; the data model has no
// invariants spanning more than one entity, so there are no cross-entity
// transactions. Status transition guards live in the UPDATE WHERE clauses
// (MarkGenerating doubles as the double-dispatch guard for shots).
//
// Treat this package as the single source of truth for persistence
// semantics; schema changes go into schema.sql with a schemaVersion bump.
package store
