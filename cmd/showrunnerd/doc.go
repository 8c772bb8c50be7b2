// Command showrunnerd runs the long-lived orchestration daemon: it owns the
// database, the accelerator gate, the maintenance sweeps, and the HTTP API.
package main
