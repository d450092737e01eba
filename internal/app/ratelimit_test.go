package app

import (
	"testing"
	"time"
)

func TestWindowLimiter_EnforcesLimit(t *testing.T) {
	l := NewWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("fourth request in the window should be rejected")
	}
}

func TestWindowLimiter_KeysAreIndependent(t *testing.T) {
	l := NewWindowLimiter(1, time.Minute)

	if !l.Allow("1.2.3.4") {
		t.Fatal("first key should be allowed")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("a different key should have its own budget")
	}
	if l.Allow("1.2.3.4") {
		t.Error("exhausted key should stay rejected")
	}
}

func TestWindowLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := NewWindowLimiter(1, time.Minute)
	l.Now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("second request in the same window should be rejected")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("1.2.3.4") {
		t.Error("budget should replenish after the window elapses")
	}
}
