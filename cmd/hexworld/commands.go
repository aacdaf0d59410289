package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hexworld/internal/config"
	"hexworld/internal/hex"
	"hexworld/internal/instance"
	"hexworld/internal/preview"
	"hexworld/internal/profiling"
	"hexworld/internal/session"
	"hexworld/internal/stream"
	"hexworld/internal/world"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	seed := ctx.Int64("seed")
	if path := ctx.Path("config"); path != "" {
		return config.Load(path, seed)
	}
	cfg := config.Default(seed)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type sampledHex struct {
	Q      int             `yaml:"q"`
	R      int             `yaml:"r"`
	Record world.HexRecord `yaml:"record"`
}

func commandSample(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	radius := ctx.Int("radius")
	if radius < 0 {
		return fmt.Errorf("sample: negative radius %d", radius)
	}
	gen := world.NewGenerator(cfg.Generator)
	center := hex.Axial{Q: ctx.Int("q"), R: ctx.Int("r")}

	var out []sampledHex
	for dq := -radius; dq <= radius; dq++ {
		for dr := max(-radius, -dq-radius); dr <= min(radius, -dq+radius); dr++ {
			a := center.Add(hex.Axial{Q: dq, R: dr})
			out = append(out, sampledHex{Q: a.Q, R: a.R, Record: gen.Get(a.Q, a.R)})
		}
	}
	return printYAML(out)
}

type streamReport struct {
	Center   hex.ChunkCoord   `yaml:"center"`
	Frames   int              `yaml:"frames"`
	Elapsed  string           `yaml:"elapsed"`
	Stats    stream.Stats     `yaml:"stats"`
	Grid     world.GridStats  `yaml:"grid"`
	Clutter  int              `yaml:"clutter"`
	Arrivals []hex.ChunkCoord `yaml:"arrivals,omitempty"`
	Profile  string           `yaml:"profile,omitempty"`
}

func parseMove(s string) (hex.ChunkCoord, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return hex.ChunkCoord{}, fmt.Errorf("move %q: want dx,dy", s)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(x))
	if err != nil {
		return hex.ChunkCoord{}, fmt.Errorf("move %q: %w", s, err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return hex.ChunkCoord{}, fmt.Errorf("move %q: %w", s, err)
	}
	return hex.ChunkCoord{X: dx, Y: dy}, nil
}

func commandStream(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	var moves []hex.ChunkCoord
	for _, m := range ctx.StringSlice("move") {
		mv, err := parseMove(m)
		if err != nil {
			return err
		}
		moves = append(moves, mv)
	}
	maxFrames := ctx.Int("max-frames")
	center := hex.ChunkCoord{X: ctx.Int("wx"), Y: ctx.Int("wy")}

	s, err := session.New(ctx.Context, cfg, &instance.MemoryFactory{}, center, nil)
	if err != nil {
		return err
	}
	defer s.Cleanup()

	report := func(start time.Time, frames int, arrivals []hex.ChunkCoord) error {
		r := streamReport{
			Center:   s.Manager.Neighborhood().Center(),
			Frames:   frames,
			Elapsed:  time.Since(start).Round(time.Microsecond).String(),
			Stats:    s.Manager.Neighborhood().Stats(),
			Grid:     s.Manager.Grid().Stats(),
			Arrivals: arrivals,
			Profile:  profiling.TopN(4),
		}
		if s.Scatter != nil {
			r.Clutter = s.Scatter.Count()
		}
		return printYAML(r)
	}

	profiling.ResetFrame()
	start := time.Now()
	frames, err := s.Settle(ctx.Context, time.Now, maxFrames)
	if err != nil {
		return err
	}
	if err := report(start, frames, nil); err != nil {
		return err
	}
	for _, d := range moves {
		c := s.Manager.Neighborhood().Center()
		mv := s.Manager.SetCenterChunk(c.X+d.X, c.Y+d.Y, stream.MoveOptions{Trail: cfg.Stream.Trail.Std()})
		profiling.ResetFrame()
		start = time.Now()
		frames, err := s.Settle(ctx.Context, time.Now, maxFrames)
		if err != nil {
			return err
		}
		if err := report(start, frames, mv.Arrivals); err != nil {
			return err
		}
	}
	return nil
}

func commandSurvey(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	size := ctx.Int("size")
	if size <= 0 {
		return fmt.Errorf("survey: size must be positive")
	}
	half := size / 2
	rect := hex.Rect{MinCol: -half, MinRow: -half, MaxCol: size - half - 1, MaxRow: size - half - 1}
	cov, err := world.Survey(ctx.Context, world.NewGenerator(cfg.Generator), rect, ctx.Int("stride"), ctx.Int("workers"))
	if err != nil {
		return err
	}
	return printYAML(cov)
}

func commandPreview(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool("chunk-colors") {
		cfg.Stream.ChunkColors = true
	}
	cfg.Stream.ClutterOdds = 0
	center := hex.ChunkCoord{X: ctx.Int("wx"), Y: ctx.Int("wy")}
	s, err := session.New(ctx.Context, cfg, &instance.MemoryFactory{}, center, nil)
	if err != nil {
		return err
	}
	defer s.Cleanup()
	if _, err := s.Settle(ctx.Context, time.Now, 1<<20); err != nil {
		return err
	}

	opts := preview.DefaultOptions()
	opts.Width = ctx.Int("width")
	opts.Caption = fmt.Sprintf("seed %d  chunk (%d,%d)  radius %d", cfg.Generator.Seed, center.X, center.Y, cfg.Stream.Radius)
	hood := s.Manager.Neighborhood()
	img, err := preview.Render(hood.Top(), hood.Visible(), opts)
	if err != nil {
		return err
	}

	out := ctx.Path("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := preview.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", out, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func commandConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return printYAML(cfg)
}
