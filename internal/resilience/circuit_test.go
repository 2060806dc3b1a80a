package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker(4, 0.5, time.Minute)
	b.Report(true)
	b.Report(false)
	b.Report(false)
	if b.CurrentState() != Closed {
		t.Fatalf("expected closed below min requests, got %s", b.CurrentState())
	}
	b.Report(false)
	if b.CurrentState() != Open {
		t.Fatalf("expected open after ratio exceeded, got %s", b.CurrentState())
	}
	if b.Allow() {
		t.Fatal("expected open breaker to reject requests")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	b.Report(false)
	if b.CurrentState() != Open {
		t.Fatalf("expected open, got %s", b.CurrentState())
	}

	time.Sleep(15 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected probe allowed after cool-off")
	}
	if b.CurrentState() != HalfOpen {
		t.Fatalf("expected half_open, got %s", b.CurrentState())
	}

	b.Report(true)
	if b.CurrentState() != Closed {
		t.Fatalf("expected closed after successful probe, got %s", b.CurrentState())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	b.Report(false)
	time.Sleep(15 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected probe allowed")
	}
	b.Report(false)
	if b.CurrentState() != Open {
		t.Fatalf("expected reopened, got %s", b.CurrentState())
	}
}

func TestBackoffGrows(t *testing.T) {
	base := 100 * time.Millisecond
	first := Backoff(base, 1, 0)
	third := Backoff(base, 3, 0)
	if first != base {
		t.Fatalf("expected first backoff == base, got %s", first)
	}
	if third != 4*base {
		t.Fatalf("expected 4x base on third attempt, got %s", third)
	}
}
