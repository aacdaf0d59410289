// Package clutter places small decorations (trees, rocks, cacti) over the
// neighborhood footprint. Placement is a pure function of the hex and seed and
// is streamed a few rows per frame like the terrain itself.
package clutter

import (
	"log"
	"time"

	"hexworld/internal/frame"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/profiling"
	"hexworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Sampler supplies shaped cells.
type Sampler interface {
	Cell(q, r int) world.Cell
}

// Kind is a decoration type.
type Kind uint8

const (
	KindNone Kind = iota
	KindBroadleaf
	KindConifer
	KindPalm
	KindCactus
	KindShrub
	KindRock
	KindReed
)

var kindNames = [...]string{"none", "broadleaf", "conifer", "palm", "cactus", "shrub", "rock", "reed"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type kindStyle struct {
	color mgl32.Vec3
	scale mgl32.Vec3
}

var styles = [...]kindStyle{
	KindBroadleaf: {mgl32.Vec3{0.22, 0.45, 0.18}, mgl32.Vec3{0.35, 0.9, 0.35}},
	KindConifer:   {mgl32.Vec3{0.12, 0.32, 0.2}, mgl32.Vec3{0.25, 1.2, 0.25}},
	KindPalm:      {mgl32.Vec3{0.35, 0.55, 0.2}, mgl32.Vec3{0.2, 1.0, 0.2}},
	KindCactus:    {mgl32.Vec3{0.4, 0.55, 0.3}, mgl32.Vec3{0.12, 0.6, 0.12}},
	KindShrub:     {mgl32.Vec3{0.45, 0.5, 0.25}, mgl32.Vec3{0.3, 0.3, 0.3}},
	KindRock:      {mgl32.Vec3{0.5, 0.48, 0.46}, mgl32.Vec3{0.3, 0.2, 0.25}},
	KindReed:      {mgl32.Vec3{0.55, 0.6, 0.35}, mgl32.Vec3{0.1, 0.5, 0.1}},
}

// Options configure a Scatter.
type Options struct {
	Seed         int64
	Odds         float64 // base placement chance per hex
	RowsPerFrame int
	HexSize      float32
	Capacity     int
}

// Scatter is the bundled decoration committer.
type Scatter struct {
	opts    Options
	loop    *frame.Loop
	sampler Sampler
	store   *instance.Store
	sink    instance.Sink
	kinds   []Kind

	token   uint64
	rect    hex.Rect
	row     int
	count   int
	visible int
	busy    bool
	full    bool
}

// NewScatter creates a committer writing into sink.
func NewScatter(loop *frame.Loop, sampler Sampler, sink instance.Sink, opts Options) *Scatter {
	if opts.RowsPerFrame <= 0 {
		opts.RowsPerFrame = 4
	}
	if opts.HexSize <= 0 {
		opts.HexSize = 1
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 4096
	}
	return &Scatter{
		opts:    opts,
		loop:    loop,
		sampler: sampler,
		sink:    sink,
		store:   instance.NewStore(opts.Capacity),
		kinds:   make([]Kind, opts.Capacity),
	}
}

// CommitForNeighborhood restarts placement over footprint. Work from an
// earlier commit is abandoned.
func (s *Scatter) CommitForNeighborhood(footprint hex.Rect) {
	s.token++
	s.rect = footprint
	s.row = footprint.MinRow
	s.count = 0
	s.busy = true
	s.full = false
	s.schedule()
}

func (s *Scatter) schedule() {
	token := s.token
	s.loop.Schedule(func(time.Time) {
		if token != s.token {
			return
		}
		if s.step() {
			s.schedule()
		}
	})
}

// step places up to RowsPerFrame rows and reports whether rows remain.
func (s *Scatter) step() bool {
	defer profiling.Track("clutter.step")()
	lo := s.count
	for i := 0; i < s.opts.RowsPerFrame && s.row <= s.rect.MaxRow; i++ {
		for col := s.rect.MinCol; col <= s.rect.MaxCol; col++ {
			s.place(hex.FromOffset(col, s.row))
		}
		s.row++
	}
	s.store.MarkDirty(lo, s.count)
	s.store.Flush(s.sink)

	// never shrink mid-commit; the stale tail is only dropped once placement ends
	s.visible = max(s.visible, s.count)
	more := s.row <= s.rect.MaxRow
	if !more {
		s.busy = false
		s.visible = s.count
	}
	if s.sink != nil {
		s.sink.SetVisible(s.visible)
	}
	return more
}

func (s *Scatter) place(a hex.Axial) {
	if s.count >= s.opts.Capacity {
		if !s.full {
			s.full = true
			log.Printf("clutter: capacity %d reached, footprint %dx%d truncated",
				s.opts.Capacity, s.rect.Width(), s.rect.Height())
		}
		return
	}
	c := s.sampler.Cell(a.Q, a.R)
	kind, odds := Choose(&c.Record)
	if kind == KindNone || world.Roll(a.Q, a.R, s.opts.Seed) >= s.opts.Odds*odds {
		return
	}

	st := styles[kind]
	size := s.opts.HexSize
	x, z := a.Center(float64(size))
	// jitter inside the hex so rows do not line up
	jx := float32(world.Roll(a.Q, a.R, s.opts.Seed+1)-0.5) * 0.8 * size
	jz := float32(world.Roll(a.Q, a.R, s.opts.Seed+2)-0.5) * 0.8 * size
	m := mgl32.Translate3D(float32(x)+jx, c.TopHeight, float32(z)+jz).
		Mul4(mgl32.Scale3D(st.scale[0]*size, st.scale[1]*size, st.scale[2]*size))

	s.store.Set(s.count, m, st.color)
	s.kinds[s.count] = kind
	s.count++
}

// Choose picks the decoration kind for a hex and its odds multiplier.
func Choose(rec *world.HexRecord) (Kind, float64) {
	if rec.Flags.Has(world.FlagOasis) {
		return KindPalm, 6
	}
	if rec.IsWater() {
		if rec.Flags.Has(world.FlagLake) {
			return KindReed, 1.5
		}
		return KindNone, 0
	}
	switch rec.Major {
	case world.BiomeTemperateForest:
		return KindBroadleaf, 4
	case world.BiomeTropicalForest, world.BiomeMangrove:
		return KindBroadleaf, 5
	case world.BiomeTaiga:
		return KindConifer, 4
	case world.BiomeSwamp:
		return KindReed, 3
	case world.BiomeGrassland, world.BiomeSavanna, world.BiomeShrubland, world.BiomeTundra:
		return KindShrub, 1
	case world.BiomeDesert:
		return KindCactus, 0.6
	case world.BiomeAlpine, world.BiomeBarren, world.BiomeVolcanicField:
		return KindRock, 1.5
	case world.BiomeBeach:
		return KindPalm, 0.4
	}
	return KindNone, 0
}

// Count returns the number of decorations placed by the current commit so far.
func (s *Scatter) Count() int { return s.count }

// Visible returns the instance count the sink draws.
func (s *Scatter) Visible() int { return s.visible }

// Busy reports whether a commit is still streaming.
func (s *Scatter) Busy() bool { return s.busy }

// KindAt returns the decoration kind of instance i.
func (s *Scatter) KindAt(i int) Kind {
	if i < 0 || i >= s.count {
		return KindNone
	}
	return s.kinds[i]
}

// Store exposes the decoration instances.
func (s *Scatter) Store() *instance.Store { return s.store }
