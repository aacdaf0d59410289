package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hexworld/internal/frame"
	"hexworld/internal/geom"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/profiling"
	"hexworld/internal/world"
)

// ErrMissingGeometry is returned by Build when a mesh is absent or unusable.
var ErrMissingGeometry = errors.New("stream: missing geometry")

// Committer places decorations for the axial footprint of the neighborhood.
type Committer interface {
	CommitForNeighborhood(footprint hex.Rect)
}

// ManagerConfig collects everything the manager builds from.
type ManagerConfig struct {
	Params          world.Params
	Grid            world.GridOptions
	GenerationScale float64
	Stream          Options
	Center          hex.ChunkCoord
	Debounce        time.Duration // quiet period before decorations refresh
}

// BuildResult exposes the shared stores to render and picking code.
type BuildResult struct {
	Top               *instance.Store
	Side              *instance.Store
	IndexToCoordinate []hex.Axial
}

// MoveOptions tune a single center change.
type MoveOptions struct {
	// Trail keeps a snapshot of the vacated chunks drawable for this long.
	Trail time.Duration
}

// Manager wires the grid, the neighborhood, the drawables and decoration
// placement together. Not safe for concurrent use.
type Manager struct {
	cfg       ManagerConfig
	factory   instance.Factory
	committer Committer

	loop frame.Loop
	grid *world.Grid
	hood *Neighborhood

	topMesh, sideMesh *geom.Mesh
	topSink, sideSink instance.Sink
	trailSink         instance.Sink
	trail             *Trail

	now           time.Time
	refreshAt     time.Time
	refreshQueued bool
	commits       int
}

// NewManager creates a manager. The grid exists immediately so decoration code
// can share it; drawables appear on Build.
func NewManager(cfg ManagerConfig, factory instance.Factory) *Manager {
	grid := world.NewGrid(world.NewGenerator(cfg.Params), cfg.Grid)
	if cfg.GenerationScale > 0 {
		grid.SetGenerationScale(cfg.GenerationScale)
	}
	return &Manager{cfg: cfg, factory: factory, grid: grid}
}

// SetCommitter installs decoration placement. Call before Build.
func (m *Manager) SetCommitter(c Committer) {
	m.committer = c
}

// Loop returns the frame loop streaming work is scheduled on.
func (m *Manager) Loop() *frame.Loop { return &m.loop }

// Grid returns the shared cell cache.
func (m *Manager) Grid() *world.Grid { return m.grid }

// Neighborhood returns the active neighborhood, nil before Build.
func (m *Manager) Neighborhood() *Neighborhood { return m.hood }

// Build validates the meshes, allocates stores and drawables, and starts
// streaming around the configured center.
func (m *Manager) Build(ctx context.Context, top, side *geom.Mesh) (*BuildResult, error) {
	if err := top.Validate(); err != nil {
		return nil, fmt.Errorf("%w: top mesh: %w", ErrMissingGeometry, err)
	}
	if err := side.Validate(); err != nil {
		return nil, fmt.Errorf("%w: side mesh: %w", ErrMissingGeometry, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.hood != nil {
		m.Dispose()
	}
	m.topMesh, m.sideMesh = top, side

	if err := m.allocate(); err != nil {
		return nil, err
	}
	m.stamp()
	m.hood.SetCenterChunk(m.cfg.Center)
	m.commit()
	log.Printf("stream: built radius %d window, %d instances", m.hood.Radius(), m.hood.Capacity())
	return m.result(), nil
}

func (m *Manager) allocate() error {
	hood, err := NewNeighborhood(m.grid, &m.loop, m.cfg.Stream)
	if err != nil {
		return err
	}
	capacity := hood.Capacity()

	var sinks []instance.Sink
	fail := func(err error) error {
		for _, s := range sinks {
			s.Dispose()
		}
		hood.Dispose()
		return fmt.Errorf("stream: create drawables: %w", err)
	}
	for _, mesh := range []*geom.Mesh{m.topMesh, m.sideMesh, m.topMesh} {
		s, err := m.factory.NewInstanced(mesh, capacity)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	m.hood = hood
	m.topSink, m.sideSink, m.trailSink = sinks[0], sinks[1], sinks[2]
	return nil
}

func (m *Manager) result() *BuildResult {
	return &BuildResult{
		Top:               m.hood.Top(),
		Side:              m.hood.Side(),
		IndexToCoordinate: m.hood.IndexToCoordinate(),
	}
}

// SetCenterChunk moves the window, snapshots the vacated chunks as a trail and
// debounces the decoration refresh.
func (m *Manager) SetCenterChunk(wx, wy int, opts MoveOptions) Move {
	if m.hood == nil {
		return Move{}
	}
	m.stamp()
	mv := m.hood.SetCenterChunk(hex.ChunkCoord{X: wx, Y: wy})
	// leavers' slots are only overwritten by later Steps, so their data is intact here
	if opts.Trail > 0 && len(mv.Leavers) > 0 {
		m.trail = m.captureTrail(mv, opts.Trail)
		m.trail.upload(m.trailSink)
	}
	m.refreshAt = m.now.Add(m.cfg.Debounce)
	m.refreshQueued = true
	return mv
}

// SetRadius rebuilds the window at a new radius. Stores are reallocated.
func (m *Manager) SetRadius(r int) error {
	if m.hood == nil {
		m.cfg.Stream.Radius = r
		return nil
	}
	if r == m.hood.Radius() {
		return nil
	}
	center := m.hood.Center()
	m.disposeDrawables()
	m.cfg.Stream.Radius = r
	m.cfg.Center = center
	if err := m.allocate(); err != nil {
		return err
	}
	m.hood.SetCenterChunk(center)
	m.commit()
	return nil
}

// Retune rebuilds the generator and refills every resident chunk.
func (m *Manager) Retune(adjust func(p *world.Params)) {
	m.grid.Retune(adjust)
	m.cfg.Params = m.grid.Generator().Params()
	if m.hood != nil {
		m.hood.Refresh()
		m.refreshAt = m.stamp().Add(m.cfg.Debounce)
		m.refreshQueued = true
	}
}

// SetGenerationScale resamples the world at another density and refills.
func (m *Manager) SetGenerationScale(s float64) {
	before := m.grid.Epoch()
	m.grid.SetGenerationScale(s)
	if m.grid.Epoch() != before && m.hood != nil {
		m.hood.Refresh()
	}
}

// ApplyChunkColors toggles the per-chunk debug tint.
func (m *Manager) ApplyChunkColors(enabled bool) {
	m.cfg.Stream.ChunkColors = enabled
	if m.hood != nil {
		m.hood.SetChunkColors(enabled)
	}
}

// stamp reads the streaming clock. Moves can arrive between ticks, so trail
// and debounce deadlines start from the call, not the last frame.
func (m *Manager) stamp() time.Time {
	m.now = m.hood.opts.Clock()
	return m.now
}

// Tick runs one frame: streaming continuations, uploads of dirty ranges, trail
// expiry and the debounced decoration refresh.
func (m *Manager) Tick(now time.Time) {
	defer profiling.Track("stream.tick")()
	m.now = now
	m.loop.RunFrame(now)
	if m.hood == nil {
		return
	}
	m.hood.Top().Flush(m.topSink)
	m.hood.Side().Flush(m.sideSink)
	visible := m.hood.Visible()
	m.topSink.SetVisible(visible)
	m.sideSink.SetVisible(visible)

	if m.trail != nil && !now.Before(m.trail.Expires) {
		m.trail = nil
		m.trailSink.SetVisible(0)
	}
	if m.refreshQueued && !now.Before(m.refreshAt) {
		m.refreshQueued = false
		m.commit()
	}
}

// Settle ticks until streaming is idle, ctx is done, or maxFrames pass. It
// returns the number of frames run.
func (m *Manager) Settle(ctx context.Context, now func() time.Time, maxFrames int) (int, error) {
	frames := 0
	for frames < maxFrames {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		if m.hood == nil || (!m.hood.Busy() && m.loop.Pending() == 0) {
			break
		}
		m.Tick(now())
		frames++
	}
	return frames, nil
}

func (m *Manager) commit() {
	if m.committer == nil || m.hood == nil {
		return
	}
	m.commits++
	m.committer.CommitForNeighborhood(m.hood.Footprint())
}

// Commits counts decoration placements triggered so far.
func (m *Manager) Commits() int { return m.commits }

// Drawables returns the sinks created by the last Build, nil before it.
func (m *Manager) Drawables() (top, side, trail instance.Sink) {
	return m.topSink, m.sideSink, m.trailSink
}

// Trail returns the live trail snapshot, or nil once it expired.
func (m *Manager) Trail() *Trail { return m.trail }

func (m *Manager) disposeDrawables() {
	for _, s := range []instance.Sink{m.topSink, m.sideSink, m.trailSink} {
		if s != nil {
			s.Dispose()
		}
	}
	m.topSink, m.sideSink, m.trailSink = nil, nil, nil
	if m.hood != nil {
		m.hood.Dispose()
	}
	m.hood = nil
	m.trail = nil
}

// Dispose releases the drawables and the neighborhood. Build may be called again.
func (m *Manager) Dispose() {
	m.disposeDrawables()
	m.loop.Clear()
	m.refreshQueued = false
}
