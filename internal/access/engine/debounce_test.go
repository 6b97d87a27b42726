package engine

import (
	"testing"
	"time"
)

func TestDebouncer_SuppressesRepeatWithinWindow(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	if !d.Admit("7", t0) {
		t.Fatal("first read must be admitted")
	}
	if d.Admit("7", t0.Add(1*time.Second)) {
		t.Error("repeat within window must be suppressed")
	}
	if !d.Admit("7", t0.Add(4*time.Second)) {
		t.Error("repeat after window must be admitted")
	}
}

func TestDebouncer_DifferentTagAlwaysAdmitted(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	d.Admit("7", t0)
	if !d.Admit("42", t0.Add(100*time.Millisecond)) {
		t.Error("a different tag must not be debounced")
	}
	// And the window now tracks the new tag.
	if d.Admit("42", t0.Add(200*time.Millisecond)) {
		t.Error("the new tag is now subject to the window")
	}
}

func TestDebouncer_RejectedReadDoesNotExtendWindow(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	d.Admit("7", t0)
	d.Admit("7", t0.Add(2*time.Second)) // rejected
	// 3.5s after the accepted read; had the rejected read restarted
	// the window this would still be suppressed.
	if !d.Admit("7", t0.Add(3500*time.Millisecond)) {
		t.Error("window must be measured from the last accepted read")
	}
}
