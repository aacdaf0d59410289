// Package session assembles a streaming world from a config: the chunk
// manager, the decoration committer and their drawables. The CLI and the
// viewer both run one.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"hexworld/internal/clutter"
	"hexworld/internal/config"
	"hexworld/internal/geom"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/stream"
)

// clutterCapacity bounds decorations per commit.
const clutterCapacity = 1 << 14

// Session owns one streaming world and its drawables.
type Session struct {
	Config  *config.Config
	Manager *stream.Manager
	Scatter *clutter.Scatter
	Result  *stream.BuildResult

	ClutterSink instance.Sink
	Frames      int
}

// StreamOptions converts the stream and grid sections for stream.NewNeighborhood.
func StreamOptions(c *config.Config) stream.Options {
	return stream.Options{
		Radius:           c.Stream.Radius,
		Dims:             hex.Dims{Cols: c.Stream.ChunkCols, Rows: c.Stream.ChunkRows},
		HexSize:          c.Grid.HexSize,
		Budget:           c.Stream.Budget.Std(),
		RowsPerSlice:     c.Stream.RowsPerSlice,
		ColdBudget:       c.Stream.ColdBudget.Std(),
		ColdRowsPerSlice: c.Stream.ColdRows,
		ChunkColors:      c.Stream.ChunkColors,
	}
}

// New builds the manager and decorations and starts streaming around center.
// clock, when non-nil, replaces time.Now for slice budgets.
func New(ctx context.Context, cfg *config.Config, factory instance.Factory, center hex.ChunkCoord, clock func() time.Time) (*Session, error) {
	opts := StreamOptions(cfg)
	opts.Clock = clock
	m := stream.NewManager(stream.ManagerConfig{
		Params:          cfg.Generator,
		Grid:            cfg.GridOptions(),
		GenerationScale: cfg.Grid.GenerationScale,
		Stream:          opts,
		Center:          center,
		Debounce:        cfg.Stream.Debounce.Std(),
	}, factory)

	s := &Session{Config: cfg, Manager: m}
	if cfg.Stream.ClutterOdds > 0 {
		sink, err := factory.NewInstanced(geom.Column(), clutterCapacity)
		if err != nil {
			return nil, fmt.Errorf("session: clutter drawable: %w", err)
		}
		s.ClutterSink = sink
		s.Scatter = clutter.NewScatter(m.Loop(), m.Grid(), sink, clutter.Options{
			Seed:     cfg.Generator.Seed,
			Odds:     cfg.Stream.ClutterOdds,
			HexSize:  cfg.Grid.HexSize,
			Capacity: clutterCapacity,
		})
		m.SetCommitter(s.Scatter)
	}

	res, err := m.Build(ctx, geom.HexTop(), geom.HexSide())
	if err != nil {
		s.Cleanup()
		return nil, err
	}
	s.Result = res
	log.Printf("session: seed %d, radius %d, %dx%d chunks", cfg.Generator.Seed, cfg.Stream.Radius, cfg.Stream.ChunkCols, cfg.Stream.ChunkRows)
	return s, nil
}

// Tick advances one frame.
func (s *Session) Tick(now time.Time) {
	s.Manager.Tick(now)
	s.Frames++
}

// Settle runs frames until terrain and decorations are idle.
func (s *Session) Settle(ctx context.Context, now func() time.Time, maxFrames int) (int, error) {
	frames := 0
	for frames < maxFrames {
		n, err := s.Manager.Settle(ctx, now, maxFrames-frames)
		frames += n
		if err != nil {
			return frames, err
		}
		if s.Scatter == nil || !s.Scatter.Busy() {
			break
		}
		s.Manager.Tick(now())
		frames++
	}
	s.Frames += frames
	return frames, nil
}

// ChunkAt returns the chunk containing world-plane point (x, z).
func (s *Session) ChunkAt(x, z float32) hex.ChunkCoord {
	a := hex.FromPlane(float64(x), float64(z), float64(s.Config.Grid.HexSize))
	return hex.Dims{Cols: s.Config.Stream.ChunkCols, Rows: s.Config.Stream.ChunkRows}.ChunkOf(a)
}

// Cleanup releases drawables.
func (s *Session) Cleanup() {
	s.Manager.Dispose()
	if s.ClutterSink != nil {
		s.ClutterSink.Dispose()
		s.ClutterSink = nil
	}
}
