package stream

import (
	"time"

	"hexworld/internal/hex"
	"hexworld/internal/instance"
)

// Trail is a copy of the top instances of chunks that just left the window,
// kept briefly so the old footprint can fade out instead of vanishing.
type Trail struct {
	Chunks  []hex.ChunkCoord
	Store   *instance.Store
	Started time.Time
	Expires time.Time
}

// captureTrail copies the leavers' slot ranges before any Step overwrites them.
func (m *Manager) captureTrail(mv Move, d time.Duration) *Trail {
	cpc := m.hood.CountPerChunk()
	top := m.hood.Top()
	tr := &Trail{
		Chunks:  append([]hex.ChunkCoord(nil), mv.Leavers...),
		Store:   instance.NewStore(len(mv.Freed) * cpc),
		Started: m.now,
		Expires: m.now.Add(d),
	}
	for i, slot := range mv.Freed {
		src := slot * cpc
		dst := i * cpc
		copy(tr.Store.Transforms[dst:dst+cpc], top.Transforms[src:src+cpc])
		copy(tr.Store.Colors[dst:dst+cpc], top.Colors[src:src+cpc])
	}
	tr.Store.MarkDirty(0, tr.Store.Len())
	return tr
}

func (t *Trail) upload(sink instance.Sink) {
	if sink == nil {
		return
	}
	t.Store.Flush(sink)
	sink.SetVisible(t.Len())
}

// Len returns the number of instances in the snapshot.
func (t *Trail) Len() int {
	return t.Store.Len()
}

// Live reports whether the trail should still be drawn at now.
func (t *Trail) Live(now time.Time) bool {
	return t != nil && now.Before(t.Expires)
}

// Fade returns the draw opacity at now, falling linearly from 1 to 0.
func (t *Trail) Fade(now time.Time) float32 {
	if !t.Live(now) {
		return 0
	}
	total := t.Expires.Sub(t.Started)
	if total <= 0 {
		return 0
	}
	return float32(t.Expires.Sub(now)) / float32(total)
}
