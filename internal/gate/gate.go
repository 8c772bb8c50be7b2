package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"showrunner/internal/logging"
)

// ErrNotHolder is returned when a token that no longer owns the slot is
// released, typically after an operator reclaimed it.
var ErrNotHolder = errors.New("token does not hold the gate")

// Token proves ownership of the accelerator slot. Exactly one token is live
// at a time; Release it when the backend invocation finishes.
type Token struct {
	id         string
	label      string
	acquiredAt time.Time
}

// Label returns the caller-supplied description of the holder.
func (t *Token) Label() string {
	if t == nil {
		return ""
	}
	return t.label
}

// HeldFor reports how long the token has owned the slot.
func (t *Token) HeldFor() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.acquiredAt)
}

// WaitFunc observes gate starvation: called once when a caller has waited
// warnAfter without acquiring, then the caller keeps waiting.
type WaitFunc func(label string, waited time.Duration)

// Gate serializes exclusive-engine access to the shared accelerator. One
// holder system-wide; waiters block with best-effort fairness.
type Gate struct {
	slot      chan struct{}
	warnAfter time.Duration
	logger    *slog.Logger
	onWait    WaitFunc

	mu     sync.Mutex
	holder *Token
}

// Option configures optional Gate behavior.
type Option func(*Gate)

// WithWaitWarning installs the starvation observer.
func WithWaitWarning(fn WaitFunc) Option {
	return func(g *Gate) { g.onWait = fn }
}

// WithLogger sets the gate's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// New constructs a gate with a free slot. warnAfter bounds the silent wait;
// a non-positive value disables the warning.
func New(warnAfter time.Duration, opts ...Option) *Gate {
	g := &Gate{
		slot:      make(chan struct{}, 1),
		warnAfter: warnAfter,
		logger:    logging.NewNop(),
	}
	g.slot <- struct{}{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until the slot is free or ctx is done. The label names the
// caller in starvation warnings and status output.
func (g *Gate) Acquire(ctx context.Context, label string) (*Token, error) {
	start := time.Now()
	var warn <-chan time.Time
	if g.warnAfter > 0 {
		timer := time.NewTimer(g.warnAfter)
		defer timer.Stop()
		warn = timer.C
	}

	for {
		select {
		case <-g.slot:
			token := &Token{id: uuid.NewString(), label: label, acquiredAt: time.Now()}
			g.mu.Lock()
			g.holder = token
			g.mu.Unlock()
			return token, nil
		case <-warn:
			waited := time.Since(start)
			g.logger.Warn("accelerator gate wait exceeded threshold",
				logging.String(logging.FieldEventType, "gate_wait"),
				logging.String("waiter", label),
				logging.Duration("waited", waited),
				logging.String(logging.FieldAlert, "gate_starvation"),
			)
			if g.onWait != nil {
				g.onWait(label, waited)
			}
			warn = nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release frees the slot. Releasing a token that no longer holds the gate
// (after a reclaim) returns ErrNotHolder and leaves the gate untouched.
func (g *Gate) Release(token *Token) error {
	if token == nil {
		return fmt.Errorf("release: %w", ErrNotHolder)
	}
	g.mu.Lock()
	if g.holder == nil || g.holder.id != token.id {
		g.mu.Unlock()
		return fmt.Errorf("release %s: %w", token.label, ErrNotHolder)
	}
	g.holder = nil
	g.mu.Unlock()
	g.slot <- struct{}{}
	return nil
}

// Reclaim force-frees a slot presumed abandoned by a crashed holder. Returns
// the abandoned holder's label and true when a slot was actually reclaimed.
func (g *Gate) Reclaim() (string, bool) {
	g.mu.Lock()
	holder := g.holder
	if holder == nil {
		g.mu.Unlock()
		return "", false
	}
	g.holder = nil
	g.mu.Unlock()

	g.logger.Warn("accelerator gate reclaimed from abandoned holder",
		logging.String(logging.FieldEventType, "gate_reclaimed"),
		logging.String("holder", holder.label),
		logging.Duration("held", time.Since(holder.acquiredAt)),
	)
	g.slot <- struct{}{}
	return holder.label, true
}

// Holder returns the current holder's label, or "" when the slot is free.
func (g *Gate) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder.Label()
}
