package connectivity

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestInitialStateFromProbe(t *testing.T) {
	online := NewMonitor(func() bool { return true })
	if !online.IsOnline() {
		t.Error("probe reported online but monitor starts offline")
	}

	offline := NewMonitor(func() bool { return false })
	if offline.IsOnline() {
		t.Error("probe reported offline but monitor starts online")
	}

	if nilProbe := NewMonitor(nil); nilProbe.IsOnline() {
		t.Error("nil probe should start offline")
	}
}

func TestOfflineModeDefaultsEnabled(t *testing.T) {
	m := NewMonitor(func() bool { return false })
	if !m.OfflineModeEnabled() {
		t.Error("offline mode should default to enabled")
	}
}

func TestEnableOfflineModeIdempotent(t *testing.T) {
	m := NewMonitor(nil)
	m.EnableOfflineMode()
	m.EnableOfflineMode()
	if !m.OfflineModeEnabled() {
		t.Error("offline mode disabled after EnableOfflineMode")
	}
}

// TestOfflineModeStickyAcrossRecovery verifies network recovery never clears
// the offline-mode flag.
func TestOfflineModeStickyAcrossRecovery(t *testing.T) {
	m := NewMonitor(func() bool { return false })
	m.SetOnline(true)
	if !m.OfflineModeEnabled() {
		t.Error("going online cleared offline mode")
	}
	m.SetOnline(false)
	m.SetOnline(true)
	if !m.OfflineModeEnabled() {
		t.Error("connectivity churn cleared offline mode")
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	m := NewMonitor(func() bool { return false })
	ch := m.Subscribe()

	m.SetOnline(true)
	select {
	case got := <-ch:
		if !got {
			t.Error("expected online transition, got offline")
		}
	default:
		t.Fatal("no transition delivered")
	}

	// Delivering the same state again is not a transition.
	m.SetOnline(true)
	select {
	case <-ch:
		t.Error("duplicate state delivered as a transition")
	default:
	}
}

// TestTransitionsDoNotLog verifies the monitor stays silent; reporting
// transitions is the subscribers' job.
func TestTransitionsDoNotLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	m := NewMonitor(nil)
	m.SetOnline(true)
	m.SetOnline(false)

	if buf.Len() != 0 {
		t.Errorf("state transitions logged from the monitor: %q", buf.String())
	}
}
