package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"showrunner/internal/gate"
)

func TestGateMutualExclusion(t *testing.T) {
	g := gate.New(0)
	ctx := context.Background()

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := g.Acquire(ctx, "worker")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			current := atomic.AddInt32(&active, 1)
			for {
				max := atomic.LoadInt32(&maxActive)
				if current <= max || atomic.CompareAndSwapInt32(&maxActive, max, current) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			if err := g.Release(token); err != nil {
				t.Errorf("release: %v", err)
			}
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&maxActive); max != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", max)
	}
}

func TestGateAcquireRespectsContext(t *testing.T) {
	g := gate.New(0)
	token, err := g.Acquire(context.Background(), "first")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer g.Release(token)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Acquire(ctx, "second"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("blocked acquire error = %v, want deadline exceeded", err)
	}
}

func TestGateWaitWarningFiresOnce(t *testing.T) {
	var warned atomic.Int32
	g := gate.New(10*time.Millisecond, gate.WithWaitWarning(func(label string, waited time.Duration) {
		if label != "waiter" {
			t.Errorf("warning label = %q, want waiter", label)
		}
		warned.Add(1)
	}))

	token, err := g.Acquire(context.Background(), "holder")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		waiterToken, err := g.Acquire(context.Background(), "waiter")
		if err != nil {
			t.Errorf("waiter acquire: %v", err)
			return
		}
		_ = g.Release(waiterToken)
	}()

	time.Sleep(40 * time.Millisecond)
	if err := g.Release(token); err != nil {
		t.Fatalf("release: %v", err)
	}
	<-done

	if got := warned.Load(); got != 1 {
		t.Fatalf("warning fired %d times, want 1", got)
	}
}

func TestGateHolderLabel(t *testing.T) {
	g := gate.New(0)
	if holder := g.Holder(); holder != "" {
		t.Fatalf("free gate holder = %q, want empty", holder)
	}

	token, err := g.Acquire(context.Background(), "shot-42")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if holder := g.Holder(); holder != "shot-42" {
		t.Fatalf("holder = %q, want shot-42", holder)
	}
	if err := g.Release(token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if holder := g.Holder(); holder != "" {
		t.Fatalf("released gate holder = %q, want empty", holder)
	}
}

func TestGateReclaimInvalidatesToken(t *testing.T) {
	g := gate.New(0)
	token, err := g.Acquire(context.Background(), "crashed")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	label, reclaimed := g.Reclaim()
	if !reclaimed || label != "crashed" {
		t.Fatalf("reclaim = (%q, %v), want (crashed, true)", label, reclaimed)
	}

	if err := g.Release(token); !errors.Is(err, gate.ErrNotHolder) {
		t.Fatalf("stale release error = %v, want ErrNotHolder", err)
	}

	// Slot must be free again for the next caller.
	next, err := g.Acquire(context.Background(), "next")
	if err != nil {
		t.Fatalf("acquire after reclaim: %v", err)
	}
	if err := g.Release(next); err != nil {
		t.Fatalf("release after reclaim: %v", err)
	}
}

func TestGateReclaimOnFreeGate(t *testing.T) {
	g := gate.New(0)
	if label, reclaimed := g.Reclaim(); reclaimed || label != "" {
		t.Fatalf("reclaim on free gate = (%q, %v), want no-op", label, reclaimed)
	}
}
