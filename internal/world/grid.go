package world

import (
	"log"

	"hexworld/internal/hex"

	"github.com/go-gl/mathgl/mgl32"
)

// Cell is a generator record shaped for rendering.
type Cell struct {
	Record     HexRecord
	TopHeight  float32 // world-space height of the top cap
	SideHeight float32 // vertical scale of the side wall
	Top        mgl32.Vec3
	Side       mgl32.Vec3
}

// Water reports whether the cell renders as water.
func (c *Cell) Water() bool {
	return c.Record.IsWater()
}

// GridOptions tunes elevation shaping and caching.
type GridOptions struct {
	SoftCap      int     // cached cells before a wholesale clear
	HeightScale  float32 // world units per unit of shaped elevation
	Exaggeration float32 // extra vertical scale applied to land bands
	RidgeBonus   float32 // added height per unit ridge on land
	MinSide      float32 // side height used for water tiles
}

// DefaultGridOptions returns the shaping used by the viewer.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		SoftCap:      1 << 16,
		HeightScale:  6,
		Exaggeration: 1.6,
		RidgeBonus:   0.9,
		MinSide:      0.05,
	}
}

// bandLift is the extra exaggeration per elevation band; water stays flat.
var bandLift = [...]float32{0, 0, 0, 0.1, 0.35, 0.7, 1.0, 1.2}

// GridStats reports cache behaviour.
type GridStats struct {
	Cached    int
	Hits      uint64
	Misses    uint64
	Clears    uint64
	Epoch     uint64
	GenScale  float64
	SoftLimit int
}

// Grid caches generator output per coordinate. The cache is cleared wholesale
// once it grows past the soft cap; the access pattern is a bounded moving window
// so there is no per-entry eviction. Not safe for concurrent use.
type Grid struct {
	gen   *Generator
	opts  GridOptions
	scale float64

	cells  map[int64]Cell
	epoch  uint64
	hits   uint64
	misses uint64
	clears uint64
}

// NewGrid wraps a generator.
func NewGrid(gen *Generator, opts GridOptions) *Grid {
	if opts.SoftCap <= 0 {
		opts.SoftCap = DefaultGridOptions().SoftCap
	}
	return &Grid{
		gen:   gen,
		opts:  opts,
		scale: 1,
		cells: make(map[int64]Cell, min(opts.SoftCap, 4096)),
	}
}

// Cell returns the shaped cell for axial (q, r).
func (g *Grid) Cell(q, r int) Cell {
	key := hex.Axial{Q: q, R: r}.Key()
	if c, ok := g.cells[key]; ok {
		g.hits++
		return c
	}
	g.misses++

	var rec HexRecord
	if g.scale == 1 {
		rec = g.gen.Get(q, r)
	} else {
		x, y := hex.ToPlane(float64(q), float64(r))
		rec = g.gen.Sample(x/g.scale, y/g.scale, q, r)
	}
	c := g.shape(rec)

	if len(g.cells) >= g.opts.SoftCap {
		clear(g.cells)
		g.clears++
	}
	g.cells[key] = c
	return c
}

func (g *Grid) shape(rec HexRecord) Cell {
	o := &g.opts
	c := Cell{Record: rec}
	if rec.IsWater() {
		// seabed follows depth but the wall stays short so it never pokes through the water plane
		c.TopHeight = float32(rec.Elevation) * o.HeightScale
		c.SideHeight = o.MinSide
	} else {
		lift := bandLift[rec.ElevationBand]
		above := float32(rec.Elevation - SeaLevel)
		h := float32(SeaLevel)*o.HeightScale + above*o.HeightScale*(1+o.Exaggeration*lift)
		h += o.RidgeBonus * float32(rec.Ridge) * lift
		c.TopHeight = h
		c.SideHeight = max(h, o.MinSide)
	}
	top, side := shadeColors(&rec)
	c.Top = Vec3(top)
	c.Side = Vec3(side)
	return c
}

// Generator returns the wrapped generator.
func (g *Grid) Generator() *Generator {
	return g.gen
}

// Epoch increases whenever cached data is invalidated by a tuning change.
func (g *Grid) Epoch() uint64 {
	return g.epoch
}

// GenerationScale returns the current resampling divisor.
func (g *Grid) GenerationScale() float64 {
	return g.scale
}

// SetGenerationScale resamples the generator at a coarser (>1) or finer (<1)
// density without changing its parameters.
func (g *Grid) SetGenerationScale(s float64) {
	if s <= 0 {
		s = 1
	}
	if s == g.scale {
		return
	}
	g.scale = s
	g.invalidate()
}

// Retune rebuilds the generator from adjusted parameters.
func (g *Grid) Retune(adjust func(p *Params)) {
	p := g.gen.Params()
	adjust(&p)
	g.gen = NewGenerator(p)
	g.invalidate()
}

// SetOptions replaces the shaping options.
func (g *Grid) SetOptions(opts GridOptions) {
	if opts.SoftCap <= 0 {
		opts.SoftCap = g.opts.SoftCap
	}
	g.opts = opts
	g.invalidate()
}

func (g *Grid) invalidate() {
	g.epoch++
	clear(g.cells)
	log.Printf("world: grid cache invalidated (epoch %d, scale %.2f)", g.epoch, g.scale)
}

// Stats returns a snapshot of cache counters.
func (g *Grid) Stats() GridStats {
	return GridStats{
		Cached:    len(g.cells),
		Hits:      g.hits,
		Misses:    g.misses,
		Clears:    g.clears,
		Epoch:     g.epoch,
		GenScale:  g.scale,
		SoftLimit: g.opts.SoftCap,
	}
}
