// Package daemon hosts the long-running showrunner process: the singleton
// file lock, the periodic maintenance sweeps, and the HTTP API the CLI and
// remote tools talk to.
package daemon
