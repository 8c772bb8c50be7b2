// Package logging standardizes slog construction and structured field names
// for the orchestration engine.
//
// New builds console or JSON handlers fanned out to stdout and the log file;
// NewComponentLogger and WithContext attach the component, shot, and
// correlation fields every record should carry. Field name constants keep
// keys consistent across packages so log queries do not chase synonyms.
package logging
