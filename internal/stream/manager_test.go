package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"hexworld/internal/geom"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/world"
)

type recordingCommitter struct {
	rects []hex.Rect
}

func (r *recordingCommitter) CommitForNeighborhood(footprint hex.Rect) {
	r.rects = append(r.rects, footprint)
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

func testManager(t *testing.T) (*Manager, *instance.MemoryFactory, *recordingCommitter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	opts := scenarioOptions()
	opts.Clock = clock.now
	factory := &instance.MemoryFactory{}
	m := NewManager(ManagerConfig{
		Params:   world.DefaultParams(1337),
		Grid:     world.DefaultGridOptions(),
		Stream:   opts,
		Debounce: 250 * time.Millisecond,
	}, factory)
	rc := &recordingCommitter{}
	m.SetCommitter(rc)
	return m, factory, rc, clock
}

func settle(t *testing.T, m *Manager, clock *fakeClock) {
	t.Helper()
	if _, err := m.Settle(context.Background(), func() time.Time { return clock.advance(16 * time.Millisecond) }, 10000); err != nil {
		t.Fatal(err)
	}
}

func TestBuildRequiresGeometry(t *testing.T) {
	m, _, _, _ := testManager(t)
	if _, err := m.Build(context.Background(), nil, geom.HexSide()); !errors.Is(err, ErrMissingGeometry) {
		t.Errorf("nil top: err = %v", err)
	}
	if _, err := m.Build(context.Background(), geom.HexTop(), &geom.Mesh{Name: "empty"}); !errors.Is(err, ErrMissingGeometry) {
		t.Errorf("empty side: err = %v", err)
	}
}

func TestBuildRespectsContext(t *testing.T) {
	m, _, _, _ := testManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Build(ctx, geom.HexTop(), geom.HexSide()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildReleasesSinksOnFactoryError(t *testing.T) {
	m, factory, _, _ := testManager(t)
	boom := errors.New("out of buffers")
	factory.Fail = boom
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if m.Neighborhood() != nil {
		t.Error("neighborhood kept after failed build")
	}
}

func TestBuildStreamsIntoSinks(t *testing.T) {
	m, factory, rc, clock := testManager(t)
	res, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide())
	if err != nil {
		t.Fatal(err)
	}
	if res.Top.Len() != 144 || len(res.IndexToCoordinate) != 144 {
		t.Fatalf("result sized %d/%d", res.Top.Len(), len(res.IndexToCoordinate))
	}
	if len(rc.rects) != 1 {
		t.Errorf("build committed decorations %d times, want 1", len(rc.rects))
	}
	settle(t, m, clock)

	top, side := factory.Sinks[0], factory.Sinks[1]
	if top.Visible != 144 || side.Visible != 144 {
		t.Errorf("sink visible = %d/%d", top.Visible, side.Visible)
	}
	for i := 0; i < 144; i++ {
		if top.Transforms[i] != res.Top.Transforms[i] || side.Colors[i] != res.Side.Colors[i] {
			t.Fatalf("sink out of sync at %d", i)
		}
	}
}

func TestTrailSnapshotExpires(t *testing.T) {
	m, factory, _, clock := testManager(t)
	res, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide())
	if err != nil {
		t.Fatal(err)
	}
	settle(t, m, clock)

	leaving := hex.ChunkCoord{X: -1, Y: 0}
	slot, _ := m.Neighborhood().SlotOf(leaving)
	before := res.IndexToCoordinate[slot*16]
	topBefore := res.Top.Transforms[slot*16]

	mv := m.SetCenterChunk(1, 0, MoveOptions{Trail: 500 * time.Millisecond})
	tr := m.Trail()
	if tr == nil || tr.Len() != 48 || len(tr.Chunks) != 3 {
		t.Fatalf("trail = %+v", tr)
	}
	idx := -1
	for i, ch := range mv.Leavers {
		if ch == leaving {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("leaving chunk not reported")
	}
	if tr.Store.Transforms[idx*16] != topBefore {
		t.Error("trail did not copy the vacated slot")
	}
	if f := tr.Fade(clock.t); f != 1 {
		t.Errorf("fresh trail fade = %v", f)
	}
	if f := tr.Fade(clock.t.Add(250 * time.Millisecond)); f < 0.49 || f > 0.51 {
		t.Errorf("half-way fade = %v", f)
	}
	trailSink := factory.Sinks[2]
	if trailSink.Visible != 48 {
		t.Errorf("trail sink visible = %d", trailSink.Visible)
	}

	settle(t, m, clock)
	if res.IndexToCoordinate[slot*16] == before {
		t.Error("vacated slot was never refilled")
	}
	m.Tick(clock.advance(time.Second))
	if m.Trail() != nil || trailSink.Visible != 0 {
		t.Error("trail outlived its duration")
	}
}

func TestMoveBeforeFirstTick(t *testing.T) {
	m, _, rc, clock := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	start := clock.advance(5 * time.Millisecond)
	m.SetCenterChunk(1, 0, MoveOptions{Trail: 500 * time.Millisecond})
	tr := m.Trail()
	if tr == nil {
		t.Fatal("no trail")
	}
	if !tr.Started.Equal(start) || !tr.Expires.Equal(start.Add(500*time.Millisecond)) {
		t.Errorf("trail spans %v..%v, want it to start at %v", tr.Started, tr.Expires, start)
	}

	m.Tick(clock.advance(16 * time.Millisecond))
	if m.Trail() == nil {
		t.Error("trail expired on the first tick")
	}
	if len(rc.rects) != 1 {
		t.Errorf("refresh skipped the quiet period: %d commits", len(rc.rects))
	}
	m.Tick(clock.advance(234 * time.Millisecond))
	if len(rc.rects) != 2 {
		t.Errorf("commits = %d after the quiet period, want 2", len(rc.rects))
	}
}

func TestDecorationRefreshIsDebounced(t *testing.T) {
	m, _, rc, clock := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	m.Tick(clock.t)

	m.SetCenterChunk(1, 0, MoveOptions{})
	m.Tick(clock.advance(100 * time.Millisecond))
	m.SetCenterChunk(2, 0, MoveOptions{})
	m.Tick(clock.advance(200 * time.Millisecond))
	if len(rc.rects) != 1 {
		t.Fatalf("refresh fired early: %d commits", len(rc.rects))
	}
	m.Tick(clock.advance(49 * time.Millisecond))
	if len(rc.rects) != 1 {
		t.Fatalf("refresh fired before the quiet period: %d commits", len(rc.rects))
	}
	m.Tick(clock.advance(time.Millisecond))
	if len(rc.rects) != 2 {
		t.Fatalf("commits = %d, want 2", len(rc.rects))
	}
	if got, want := rc.rects[1], m.Neighborhood().Footprint(); got != want {
		t.Errorf("footprint = %+v, want %+v", got, want)
	}
	if m.Commits() != 2 {
		t.Errorf("Commits() = %d", m.Commits())
	}
}

func TestApplyChunkColorsReachesSink(t *testing.T) {
	m, factory, _, clock := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	settle(t, m, clock)
	m.ApplyChunkColors(true)
	m.Tick(clock.advance(time.Millisecond))

	hood := m.Neighborhood()
	for i := 0; i < hood.Capacity(); i++ {
		ch, _, _ := hood.ChunkAt(i / hood.CountPerChunk())
		if factory.Sinks[0].Colors[i] != chunkTint(ch) {
			t.Fatalf("instance %d not tinted in the sink", i)
		}
	}
}

func TestRetuneRefillsEverything(t *testing.T) {
	m, _, _, clock := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	settle(t, m, clock)
	before := hashStores(m.Neighborhood())
	writes := m.Neighborhood().Top().Writes()

	m.Retune(func(p *world.Params) { p.LandBias += 0.15 })
	settle(t, m, clock)

	if m.Neighborhood().Top().Writes()-writes != 144 {
		t.Errorf("retune rewrote %d instances", m.Neighborhood().Top().Writes()-writes)
	}
	if hashStores(m.Neighborhood()) == before {
		t.Error("retune left the stores unchanged")
	}
	if m.Grid().Epoch() != 1 {
		t.Errorf("grid epoch = %d", m.Grid().Epoch())
	}
}

func TestSetRadiusReallocates(t *testing.T) {
	m, factory, _, clock := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	settle(t, m, clock)
	if err := m.SetRadius(2); err != nil {
		t.Fatal(err)
	}
	settle(t, m, clock)
	if got := m.Neighborhood().Visible(); got != 25*16 {
		t.Errorf("visible = %d, want 400", got)
	}
	for _, s := range factory.Sinks[:3] {
		if !s.Disposed {
			t.Error("old sink not disposed")
		}
	}
	if factory.Sinks[3].Visible != 400 {
		t.Errorf("new top sink visible = %d", factory.Sinks[3].Visible)
	}
}

func TestDisposeReleasesSinks(t *testing.T) {
	m, factory, _, _ := testManager(t)
	if _, err := m.Build(context.Background(), geom.HexTop(), geom.HexSide()); err != nil {
		t.Fatal(err)
	}
	m.Dispose()
	for i, s := range factory.Sinks {
		if !s.Disposed {
			t.Errorf("sink %d not disposed", i)
		}
	}
	if m.Neighborhood() != nil || m.Loop().Pending() != 0 {
		t.Error("dispose left streaming state behind")
	}
	// moves after dispose are ignored
	if mv := m.SetCenterChunk(4, 4, MoveOptions{}); mv.Queued != 0 {
		t.Error("move after dispose queued work")
	}
}
