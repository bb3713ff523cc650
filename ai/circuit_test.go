package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyProvider struct {
	err   error
	calls int
}

func (p *flakyProvider) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "rewritten: " + text, nil
}

func TestGuardedPassesThrough(t *testing.T) {
	inner := &flakyProvider{}
	g := NewGuarded(inner)

	out, err := g.Rewrite(context.Background(), "p", "hello", nil)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if out != "rewritten: hello" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	inner := &flakyProvider{err: errors.New("backend down")}
	g := NewGuarded(inner)

	for i := 0; i < 5; i++ {
		if _, err := g.Rewrite(context.Background(), "p", "t", nil); err == nil {
			t.Fatalf("expected error on call %d", i)
		}
	}
	if g.cb.State() != CircuitStateOpen {
		t.Fatalf("breaker should be open after 5 failures, state %s", g.cb.State())
	}

	calls := inner.calls
	if _, err := g.Rewrite(context.Background(), "p", "t", nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != calls {
		t.Fatalf("open breaker must not reach the provider")
	}
}

func TestCircuitHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	cb.RecordFailure()
	if cb.State() != CircuitStateOpen {
		t.Fatalf("expected open state")
	}
	if cb.Allow() {
		t.Fatalf("open breaker should deny immediately")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatalf("breaker should allow a probe after timeout")
	}
	if cb.State() != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", cb.State())
	}

	for i := 0; i < 3; i++ {
		cb.RecordSuccess()
	}
	if cb.State() != CircuitStateClosed {
		t.Fatalf("expected closed after 3 probe successes, got %s", cb.State())
	}
}

func TestCircuitHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 5*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	if !cb.Allow() {
		t.Fatalf("expected probe allowed")
	}
	cb.RecordFailure()
	if cb.State() != CircuitStateOpen {
		t.Fatalf("half-open failure should reopen, got %s", cb.State())
	}
}
