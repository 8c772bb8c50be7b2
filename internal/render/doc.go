// Package render defines the external render backend collaborator and its
// HTTP client.
//
// The Backend interface is submit/poll: the server queues one job per
// accelerator slot, and completion is observed by polling, never pushed.
// Client speaks the ComfyUI prompt/history API; the runner owns the poll
// cadence and attempt bounds.
package render
