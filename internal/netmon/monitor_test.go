package netmon

import "testing"

// TestMonitorInitialState tests the constructor state.
func TestMonitorInitialState(t *testing.T) {
	m := NewMonitor(true)
	if !m.IsOnline() {
		t.Error("expected monitor to start online")
	}

	m = NewMonitor(false)
	if m.IsOnline() {
		t.Error("expected monitor to start offline")
	}
}

// TestMonitorTransitionNotification tests that subscribers fire exactly once
// per transition.
func TestMonitorTransitionNotification(t *testing.T) {
	m := NewMonitor(true)

	var calls []bool
	m.Subscribe(func(online bool) {
		calls = append(calls, online)
	})

	// No-op re-check: same state, no notification.
	m.Set(true)
	if len(calls) != 0 {
		t.Fatalf("expected no notification on no-op set, got %d", len(calls))
	}

	m.Set(false)
	m.Set(false)
	m.Set(true)

	if len(calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(calls))
	}
	if calls[0] != false || calls[1] != true {
		t.Errorf("unexpected notification sequence: %v", calls)
	}
}

// TestMonitorUnsubscribe tests that an unsubscribed listener stops firing.
func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(true)

	count := 0
	unsubscribe := m.Subscribe(func(bool) { count++ })

	m.Set(false)
	unsubscribe()
	m.Set(true)

	if count != 1 {
		t.Errorf("expected 1 notification after unsubscribe, got %d", count)
	}
}

// TestMonitorMultipleSubscribers tests independent subscriptions.
func TestMonitorMultipleSubscribers(t *testing.T) {
	m := NewMonitor(false)

	a, b := 0, 0
	m.Subscribe(func(bool) { a++ })
	m.Subscribe(func(bool) { b++ })

	m.Set(true)

	if a != 1 || b != 1 {
		t.Errorf("expected both subscribers notified once, got a=%d b=%d", a, b)
	}
}
