package frame

import (
	"testing"
	"time"
)

func TestScheduleRunsNextFrame(t *testing.T) {
	var l Loop
	ran := 0
	l.Schedule(func(time.Time) { ran++ })
	if ran != 0 {
		t.Fatal("task ran before RunFrame")
	}
	if n := l.RunFrame(time.Now()); n != 1 || ran != 1 {
		t.Fatalf("RunFrame ran %d tasks, counter %d", n, ran)
	}
	if l.Pending() != 0 || l.Frame() != 1 {
		t.Errorf("pending=%d frame=%d", l.Pending(), l.Frame())
	}
}

// TestRescheduleDefersToFollowingFrame verifies a self-rescheduling task runs once per frame
func TestRescheduleDefersToFollowingFrame(t *testing.T) {
	var l Loop
	runs := 0
	var step Task
	step = func(time.Time) {
		runs++
		if runs < 3 {
			l.Schedule(step)
		}
	}
	l.Schedule(step)

	for frame := 1; frame <= 3; frame++ {
		l.RunFrame(time.Now())
		if runs != frame {
			t.Fatalf("after frame %d runs = %d", frame, runs)
		}
	}
	if l.Pending() != 0 {
		t.Error("task still pending after finishing")
	}
}

func TestRunFramePreservesOrder(t *testing.T) {
	var l Loop
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Schedule(func(time.Time) { got = append(got, i) })
	}
	l.RunFrame(time.Now())
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
}

func TestDrainStopsAtLimit(t *testing.T) {
	var l Loop
	var forever Task
	forever = func(time.Time) { l.Schedule(forever) }
	l.Schedule(forever)
	if n := l.Drain(time.Now, 10); n != 10 {
		t.Errorf("drain ran %d frames, want 10", n)
	}
	l.Clear()
	if n := l.Drain(time.Now, 10); n != 0 {
		t.Errorf("drain after clear ran %d frames", n)
	}
}

func TestLimiterDisabled(t *testing.T) {
	var f Limiter
	start := time.Now()
	f.Wait(0)
	if time.Since(start) > 50*time.Millisecond {
		t.Error("disabled limiter blocked")
	}
}
