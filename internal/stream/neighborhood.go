// Package stream keeps a fixed-capacity window of hex chunks resident around a
// moving center. Chunks map to stable slots in shared instance stores and are
// (re)filled by a cooperative, time-sliced, resumable build queue.
package stream

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"hexworld/internal/frame"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/profiling"
	"hexworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidConfig is returned for unusable neighborhood options.
var ErrInvalidConfig = errors.New("stream: invalid config")

// minSideHeight keeps side transforms invertible.
const minSideHeight = 1e-3

// Sampler supplies shaped cells; *world.Grid is the production implementation.
type Sampler interface {
	Cell(q, r int) world.Cell
}

// Options configure a Neighborhood.
type Options struct {
	Radius       int
	Dims         hex.Dims
	HexSize      float32
	Budget       time.Duration // per scheduled tick; 0 runs exactly one slice
	RowsPerSlice int

	// Used while nothing is visible yet, until the first queue drains.
	ColdBudget       time.Duration
	ColdRowsPerSlice int

	ChunkColors bool
	Clock       func() time.Time
}

// DefaultOptions returns the streaming defaults.
func DefaultOptions() Options {
	return Options{
		Radius:           2,
		Dims:             hex.Dims{Cols: 16, Rows: 16},
		HexSize:          1,
		Budget:           6 * time.Millisecond,
		RowsPerSlice:     2,
		ColdBudget:       24 * time.Millisecond,
		ColdRowsPerSlice: 8,
	}
}

func (o *Options) normalize() error {
	if o.Radius < 0 {
		return fmt.Errorf("%w: radius %d", ErrInvalidConfig, o.Radius)
	}
	if o.Dims.Cols <= 0 || o.Dims.Rows <= 0 {
		return fmt.Errorf("%w: chunk dims %dx%d", ErrInvalidConfig, o.Dims.Cols, o.Dims.Rows)
	}
	if o.Budget < 0 || o.ColdBudget < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidConfig)
	}
	if o.HexSize <= 0 {
		o.HexSize = 1
	}
	if o.RowsPerSlice <= 0 {
		o.RowsPerSlice = 1
	}
	if o.ColdRowsPerSlice < o.RowsPerSlice {
		o.ColdRowsPerSlice = o.RowsPerSlice
	}
	if o.ColdBudget < o.Budget {
		o.ColdBudget = o.Budget
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return nil
}

// Move describes how a center change partitioned the window.
type Move struct {
	Center   hex.ChunkCoord
	Keepers  []hex.ChunkCoord
	Leavers  []hex.ChunkCoord
	Freed    []int // slots the leavers vacated, parallel to Leavers
	Arrivals []hex.ChunkCoord
	Queued   int
}

// Stats is a snapshot of scheduler counters. A superseded continuation leaves
// the window untouched; Stale is the only thing it updates.
type Stats struct {
	Generation uint64
	Queued     int // tasks in the current generation
	Remaining  int
	Completed  uint64
	Failed     uint64
	Stale      uint64 // superseded continuations that exited
	Slices     uint64
	Written    uint64 // hexes written
	Visible    int
	Capacity   int
	Cold       bool
}

// Neighborhood owns the instance stores for a (2r+1)x(2r+1) chunk window.
// Not safe for concurrent use; all calls belong on the frame loop's goroutine.
type Neighborhood struct {
	opts    Options
	sampler Sampler
	loop    *frame.Loop

	top, side *instance.Store
	coords    []hex.Axial
	cpc       int

	center  hex.ChunkCoord
	started bool
	slotOf  map[hex.ChunkCoord]int
	chunkAt []hex.ChunkCoord
	used    []bool
	state   []SlotState
	filled  []int // instances written into each slot by its current occupant

	queue  []buildTask
	head   int
	active bool
	token  uint64
	cold   bool

	visible  int
	disposed bool
	stats    Stats
}

// NewNeighborhood allocates the stores for opts.Radius. Nothing is filled
// until SetCenterChunk.
func NewNeighborhood(sampler Sampler, loop *frame.Loop, opts Options) (*Neighborhood, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	side := 2*opts.Radius + 1
	slotCount := side * side
	cpc := opts.Dims.Count()
	capacity := slotCount * cpc
	return &Neighborhood{
		opts:    opts,
		sampler: sampler,
		loop:    loop,
		top:     instance.NewStore(capacity),
		side:    instance.NewStore(capacity),
		coords:  make([]hex.Axial, capacity),
		cpc:     cpc,
		slotOf:  make(map[hex.ChunkCoord]int, slotCount),
		chunkAt: make([]hex.ChunkCoord, slotCount),
		used:    make([]bool, slotCount),
		state:   make([]SlotState, slotCount),
		filled:  make([]int, slotCount),
		queue:   make([]buildTask, 0, slotCount),
	}, nil
}

// desired returns the window around c, closest first with ties broken by (wy, wx).
func desired(c hex.ChunkCoord, radius int) []hex.ChunkCoord {
	out := hex.Window(c, radius)
	slices.SortStableFunc(out, func(a, b hex.ChunkCoord) int {
		if d := hex.DistSq(a, c) - hex.DistSq(b, c); d != 0 {
			return d
		}
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// SetCenterChunk moves the window to c. Chunks still in the window keep their
// slots; only arrivals and unfinished keepers are queued. The previous
// generation's pending work is abandoned.
func (n *Neighborhood) SetCenterChunk(c hex.ChunkCoord) Move {
	if n.disposed {
		return Move{Center: c}
	}
	want := desired(c, n.opts.Radius)
	mv := Move{Center: c}

	n.token++
	n.queue = n.queue[:0]
	n.head = 0
	n.center = c

	if !n.started {
		// first build fixes the slot layout: slot i holds the i-th closest chunk
		n.started = true
		for i, ch := range want {
			n.assign(i, ch)
			mv.Arrivals = append(mv.Arrivals, ch)
			n.enqueue(i, ch)
		}
	} else {
		inWindow := make(map[hex.ChunkCoord]bool, len(want))
		for _, ch := range want {
			inWindow[ch] = true
		}
		var free []int
		for slot, ch := range n.chunkAt {
			if n.used[slot] && !inWindow[ch] {
				mv.Leavers = append(mv.Leavers, ch)
				mv.Freed = append(mv.Freed, slot)
				n.release(slot)
				free = append(free, slot)
			}
		}
		for slot, u := range n.used {
			if !u && !slices.Contains(free, slot) {
				free = append(free, slot)
			}
		}
		for _, ch := range want {
			if slot, ok := n.slotOf[ch]; ok {
				mv.Keepers = append(mv.Keepers, ch)
				if n.state[slot] != SlotComplete {
					n.restart(slot)
					n.enqueue(slot, ch)
				}
				continue
			}
			slot := free[0]
			free = free[1:]
			n.assign(slot, ch)
			mv.Arrivals = append(mv.Arrivals, ch)
			n.enqueue(slot, ch)
		}
	}

	mv.Queued = len(n.queue)
	n.beginGeneration()
	return mv
}

// Refresh re-queues every resident chunk, e.g. after the sampler was retuned.
func (n *Neighborhood) Refresh() int {
	if n.disposed || !n.started {
		return 0
	}
	n.token++
	n.queue = n.queue[:0]
	n.head = 0
	for _, ch := range desired(n.center, n.opts.Radius) {
		slot := n.slotOf[ch]
		n.restart(slot)
		n.enqueue(slot, ch)
	}
	n.beginGeneration()
	return len(n.queue)
}

func (n *Neighborhood) beginGeneration() {
	n.active = true
	n.stats.Generation = n.token
	n.stats.Queued = len(n.queue)
	if n.visible == 0 && len(n.queue) > 0 {
		n.cold = true
	}
	if n.loop != nil {
		n.schedule()
	}
}

func (n *Neighborhood) assign(slot int, ch hex.ChunkCoord) {
	n.slotOf[ch] = slot
	n.chunkAt[slot] = ch
	n.used[slot] = true
	n.restart(slot)
}

func (n *Neighborhood) restart(slot int) {
	n.state[slot] = SlotFilling
	n.filled[slot] = 0
}

func (n *Neighborhood) release(slot int) {
	delete(n.slotOf, n.chunkAt[slot])
	n.chunkAt[slot] = hex.ChunkCoord{}
	n.used[slot] = false
	n.state[slot] = SlotEmpty
	n.filled[slot] = 0
}

func (n *Neighborhood) enqueue(slot int, ch hex.ChunkCoord) {
	n.queue = append(n.queue, buildTask{slot: slot, chunk: ch, start: slot * n.cpc})
}

// schedule queues a continuation bound to the current generation token.
func (n *Neighborhood) schedule() {
	token := n.token
	n.loop.Schedule(func(time.Time) {
		if token != n.token || n.disposed {
			n.stats.Stale++
			return
		}
		if n.Step(n.budget()) == Pending {
			n.schedule()
		}
	})
}

func (n *Neighborhood) budget() time.Duration {
	if n.cold {
		return n.opts.ColdBudget
	}
	return n.opts.Budget
}

func (n *Neighborhood) rowsPerSlice() int {
	if n.cold {
		return n.opts.ColdRowsPerSlice
	}
	return n.opts.RowsPerSlice
}

// Step drives the active queue for up to budget, always running at least one
// slice. A zero budget runs exactly one slice.
func (n *Neighborhood) Step(budget time.Duration) Status {
	if !n.active || n.disposed {
		return Completed
	}
	defer profiling.Track("stream.step")()

	start := n.opts.Clock()
	for {
		if n.head >= len(n.queue) {
			n.finish()
			return Completed
		}
		t := &n.queue[n.head]
		if n.runSlice(t, n.rowsPerSlice()) {
			n.head++
		}
		if n.head >= len(n.queue) {
			n.finish()
			return Completed
		}
		if budget <= 0 || n.opts.Clock().Sub(start) >= budget {
			return Pending
		}
	}
}

// runSlice fills up to rows rows of t and reports whether the task is done.
// A panic abandons the task: the slot stays Filling until the next move.
func (n *Neighborhood) runSlice(t *buildTask, rows int) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("stream: fill of chunk (%d,%d) in slot %d failed at row %d: %v",
				t.chunk.X, t.chunk.Y, t.slot, t.row, r)
			n.stats.Failed++
			done = true
		}
	}()
	n.stats.Slices++

	dims := n.opts.Dims
	for i := 0; i < rows && t.row < dims.Rows; i++ {
		lo := t.start + t.write
		for lc := 0; lc < dims.Cols; lc++ {
			n.writeHex(t, dims.HexAt(t.chunk, lc, t.row))
		}
		t.row++
		hi := t.start + t.write
		n.top.MarkDirty(lo, hi)
		n.side.MarkDirty(lo, hi)
		n.filled[t.slot] = t.write
		n.visible = max(n.visible, hi)
	}
	if t.row >= dims.Rows {
		n.state[t.slot] = SlotComplete
		n.stats.Completed++
		return true
	}
	return false
}

func (n *Neighborhood) writeHex(t *buildTask, a hex.Axial) {
	c := n.sampler.Cell(a.Q, a.R)
	idx := t.start + t.write
	size := n.opts.HexSize
	x, z := a.Center(float64(size))
	place := mgl32.Translate3D(float32(x), c.TopHeight, float32(z))

	top := place.Mul4(mgl32.Scale3D(size, 1, size))
	side := place.Mul4(mgl32.Scale3D(size, max(c.SideHeight, minSideHeight), size))
	topColor, sideColor := n.colors(t.chunk, &c)

	n.top.Set(idx, top, topColor)
	n.side.Set(idx, side, sideColor)
	n.coords[idx] = a
	t.write++
	n.stats.Written++
}

func (n *Neighborhood) colors(ch hex.ChunkCoord, c *world.Cell) (top, side mgl32.Vec3) {
	if n.opts.ChunkColors {
		tint := chunkTint(ch)
		return tint, tint.Mul(0.7)
	}
	return c.Top, c.Side
}

// finish closes the generation: visible coverage snaps to the occupied slots
// and the cold-start boost ends.
func (n *Neighborhood) finish() {
	n.active = false
	n.queue = n.queue[:0]
	n.head = 0
	n.cold = false
	highest := -1
	for slot, u := range n.used {
		if u {
			highest = slot
		}
	}
	n.visible = (highest + 1) * n.cpc
}

// SetChunkColors switches between biome and per-chunk debug colors and
// recolors everything already written.
func (n *Neighborhood) SetChunkColors(enabled bool) {
	if n.opts.ChunkColors == enabled || n.disposed {
		return
	}
	n.opts.ChunkColors = enabled
	for slot, u := range n.used {
		if !u || n.filled[slot] == 0 {
			continue
		}
		ch := n.chunkAt[slot]
		lo := slot * n.cpc
		hi := lo + n.filled[slot]
		for i := lo; i < hi; i++ {
			a := n.coords[i]
			c := n.sampler.Cell(a.Q, a.R)
			top, side := n.colors(ch, &c)
			n.top.SetColor(i, top)
			n.side.SetColor(i, side)
		}
		n.top.MarkDirty(lo, hi)
		n.side.MarkDirty(lo, hi)
	}
}

// SetBudget changes the steady-state per-tick budget.
func (n *Neighborhood) SetBudget(d time.Duration) {
	n.opts.Budget = max(d, 0)
	n.opts.ColdBudget = max(n.opts.ColdBudget, n.opts.Budget)
}

// Footprint returns the offset-space rectangle covered by the window.
func (n *Neighborhood) Footprint() hex.Rect {
	r := n.opts.Radius
	lo := n.opts.Dims.Bounds(hex.ChunkCoord{X: n.center.X - r, Y: n.center.Y - r})
	hi := n.opts.Dims.Bounds(hex.ChunkCoord{X: n.center.X + r, Y: n.center.Y + r})
	return lo.Union(hi)
}

// Center returns the current center chunk.
func (n *Neighborhood) Center() hex.ChunkCoord { return n.center }

// Radius returns the window radius in chunks.
func (n *Neighborhood) Radius() int { return n.opts.Radius }

// Dims returns the chunk size.
func (n *Neighborhood) Dims() hex.Dims { return n.opts.Dims }

// Token returns the current generation token.
func (n *Neighborhood) Token() uint64 { return n.token }

// Top returns the top-cap instance store.
func (n *Neighborhood) Top() *instance.Store { return n.top }

// Side returns the side-wall instance store.
func (n *Neighborhood) Side() *instance.Store { return n.side }

// IndexToCoordinate maps instance indices back to hexes. The slice is updated
// in place as slots are refilled.
func (n *Neighborhood) IndexToCoordinate() []hex.Axial { return n.coords }

// CountPerChunk returns the number of instances per slot.
func (n *Neighborhood) CountPerChunk() int { return n.cpc }

// Capacity returns the fixed instance count of each store.
func (n *Neighborhood) Capacity() int { return len(n.chunkAt) * n.cpc }

// Visible returns how many leading instances may be drawn.
func (n *Neighborhood) Visible() int { return n.visible }

// Busy reports whether a generation is still streaming.
func (n *Neighborhood) Busy() bool { return n.active }

// SlotOf returns the slot holding chunk c.
func (n *Neighborhood) SlotOf(c hex.ChunkCoord) (int, bool) {
	s, ok := n.slotOf[c]
	return s, ok
}

// ChunkAt returns the chunk assigned to slot and its state.
func (n *Neighborhood) ChunkAt(slot int) (hex.ChunkCoord, SlotState, bool) {
	if slot < 0 || slot >= len(n.chunkAt) || !n.used[slot] {
		return hex.ChunkCoord{}, SlotEmpty, false
	}
	return n.chunkAt[slot], n.state[slot], true
}

// CoordinateAt maps an instance index to its hex for picking. Indices in
// unwritten parts of a slot report false.
func (n *Neighborhood) CoordinateAt(i int) (hex.Axial, bool) {
	if i < 0 || i >= n.visible || n.disposed {
		return hex.Axial{}, false
	}
	slot := i / n.cpc
	if !n.used[slot] || i-slot*n.cpc >= n.filled[slot] {
		return hex.Axial{}, false
	}
	return n.coords[i], true
}

// Stats returns scheduler counters.
func (n *Neighborhood) Stats() Stats {
	st := n.stats
	st.Remaining = len(n.queue) - n.head
	st.Visible = n.visible
	st.Capacity = n.Capacity()
	st.Cold = n.cold
	return st
}

// Dispose drops the stores and all assignments. Pending continuations exit.
func (n *Neighborhood) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	n.token++
	n.active = false
	n.queue = nil
	clear(n.slotOf)
	for i := range n.used {
		n.used[i] = false
		n.state[i] = SlotEmpty
		n.filled[i] = 0
	}
	n.top, n.side, n.coords = nil, nil, nil
	n.visible = 0
}
