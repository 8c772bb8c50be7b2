// Package review closes the human feedback loop: approve/reject decisions
// update per-character engine statistics, and an explicit
// reject-with-blacklist writes the engine exclusion that changes future
// routing. This is the only writer of the blacklist table.
package review
