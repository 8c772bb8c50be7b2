// Package services holds cross-cutting helpers shared by the orchestration
// components: sentinel error markers with a Wrap helper for classification,
// and context carriers for shot, component, and correlation identifiers used
// by structured logging.
package services
