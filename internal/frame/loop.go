// Package frame provides the per-frame cooperative scheduling primitive used by
// the streaming code, and a frame rate limiter for the viewer.
package frame

import "time"

// Task is a continuation run on a later frame.
type Task func(now time.Time)

// Loop defers work to the next frame. Work scheduled while a frame is running
// lands on the following frame, so a task that reschedules itself runs at most
// once per frame. Not safe for concurrent use.
type Loop struct {
	queue []Task
	spare []Task
	frame uint64
}

// Schedule queues fn for the next RunFrame.
func (l *Loop) Schedule(fn Task) {
	l.queue = append(l.queue, fn)
}

// Pending returns the number of tasks waiting for the next frame.
func (l *Loop) Pending() int {
	return len(l.queue)
}

// Frame returns how many frames have run.
func (l *Loop) Frame() uint64 {
	return l.frame
}

// RunFrame runs every task scheduled before the call and returns how many ran.
func (l *Loop) RunFrame(now time.Time) int {
	l.frame++
	run := l.queue
	l.queue = l.spare[:0]
	for i, fn := range run {
		fn(now)
		run[i] = nil
	}
	l.spare = run[:0]
	return len(run)
}

// Drain runs frames until nothing is pending or maxFrames frames have run. It
// returns the number of frames run.
func (l *Loop) Drain(now func() time.Time, maxFrames int) int {
	n := 0
	for l.Pending() > 0 && n < maxFrames {
		l.RunFrame(now())
		n++
	}
	return n
}

// Clear drops all pending tasks.
func (l *Loop) Clear() {
	clear(l.queue)
	l.queue = l.queue[:0]
}
