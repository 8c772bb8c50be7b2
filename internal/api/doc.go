// Package api defines the transport-friendly representations shared by the
// daemon's HTTP surface and the CLI, plus read-only services that map store
// rows into those representations.
package api
