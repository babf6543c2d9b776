package lifecycle

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	Reset()
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
	if d := DrainingFor(t0); d != 0 {
		t.Errorf("DrainingFor() = %v while serving, want 0", d)
	}
}

func TestBeginDrain(t *testing.T) {
	Reset()
	defer Reset()

	BeginDrain(t0)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after BeginDrain, want true")
	}
	if d := DrainingFor(t0.Add(3 * time.Second)); d != 3*time.Second {
		t.Errorf("DrainingFor() = %v, want 3s", d)
	}
}

// TestBeginDrain_FirstCallWins verifies a second signal does not move the drain start.
func TestBeginDrain_FirstCallWins(t *testing.T) {
	Reset()
	defer Reset()

	BeginDrain(t0)
	BeginDrain(t0.Add(time.Minute))
	if d := DrainingFor(t0.Add(time.Minute)); d != time.Minute {
		t.Errorf("DrainingFor() = %v, want 1m from first call", d)
	}
}

func TestReset(t *testing.T) {
	BeginDrain(t0)
	Reset()
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after Reset, want false")
	}
}
