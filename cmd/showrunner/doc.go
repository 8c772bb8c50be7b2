// Package main hosts the showrunner CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into store
// queries, in-process workflow runs, review decisions, pipeline overrides,
// and configuration scaffolding. It centralizes configuration resolution and
// store lifetime so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
