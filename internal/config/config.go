package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"hexworld/internal/world"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure from Normalize.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration that reads and writes as "6ms" style strings.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Config is the on-disk configuration shared by the CLI and the viewer.
type Config struct {
	Generator world.Params `yaml:"generator"`
	Grid      GridConfig   `yaml:"grid"`
	Stream    StreamConfig `yaml:"stream"`
	Viewer    ViewerConfig `yaml:"viewer"`
}

type GridConfig struct {
	SoftCap         int     `yaml:"soft_cap"`
	HexSize         float32 `yaml:"hex_size"`
	HeightScale     float32 `yaml:"height_scale"`
	Exaggeration    float32 `yaml:"exaggeration"`
	RidgeBonus      float32 `yaml:"ridge_bonus"`
	MinSide         float32 `yaml:"min_side"`
	GenerationScale float64 `yaml:"generation_scale"`
}

type StreamConfig struct {
	Radius       int      `yaml:"radius"`
	ChunkCols    int      `yaml:"chunk_cols"`
	ChunkRows    int      `yaml:"chunk_rows"`
	Budget       Duration `yaml:"budget"`
	RowsPerSlice int      `yaml:"rows_per_slice"`
	ColdBudget   Duration `yaml:"cold_budget"`
	ColdRows     int      `yaml:"cold_rows_per_slice"`
	Trail        Duration `yaml:"trail"`
	Debounce     Duration `yaml:"clutter_debounce"`
	ClutterOdds  float64  `yaml:"clutter_odds"`
	ChunkColors  bool     `yaml:"chunk_colors"`
}

type ViewerConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPSLimit int `yaml:"fps_limit"`
}

// Default returns the built-in configuration for a seed.
func Default(seed int64) *Config {
	gp := world.DefaultGridOptions()
	return &Config{
		Generator: world.DefaultParams(seed),
		Grid: GridConfig{
			SoftCap:         gp.SoftCap,
			HexSize:         1,
			HeightScale:     gp.HeightScale,
			Exaggeration:    gp.Exaggeration,
			RidgeBonus:      gp.RidgeBonus,
			MinSide:         gp.MinSide,
			GenerationScale: 1,
		},
		Stream: StreamConfig{
			Radius:       2,
			ChunkCols:    16,
			ChunkRows:    16,
			Budget:       Duration(6 * time.Millisecond),
			RowsPerSlice: 2,
			ColdBudget:   Duration(24 * time.Millisecond),
			ColdRows:     8,
			Trail:        Duration(600 * time.Millisecond),
			Debounce:     Duration(250 * time.Millisecond),
			ClutterOdds:  0.08,
		},
		Viewer: ViewerConfig{
			Width:    1280,
			Height:   800,
			FPSLimit: 120,
		},
	}
}

// Load reads a YAML file over the defaults for seed and normalizes it.
func Load(path string, seed int64) (*Config, error) {
	cfg := Default(seed)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills zero values with defaults and rejects values the streamer
// cannot work with.
func (c *Config) Normalize() error {
	def := Default(c.Generator.Seed)
	if c.Grid.SoftCap <= 0 {
		c.Grid.SoftCap = def.Grid.SoftCap
	}
	if c.Grid.HexSize <= 0 {
		c.Grid.HexSize = def.Grid.HexSize
	}
	if c.Grid.HeightScale <= 0 {
		c.Grid.HeightScale = def.Grid.HeightScale
	}
	if c.Grid.MinSide <= 0 {
		c.Grid.MinSide = def.Grid.MinSide
	}
	if c.Grid.GenerationScale <= 0 {
		c.Grid.GenerationScale = 1
	}

	s := &c.Stream
	if s.Radius < 0 || s.Radius > MaxRadius {
		return fmt.Errorf("%w: stream.radius %d outside [0,%d]", ErrInvalid, s.Radius, MaxRadius)
	}
	if s.ChunkCols <= 0 || s.ChunkRows <= 0 {
		return fmt.Errorf("%w: stream chunk size %dx%d must be positive", ErrInvalid, s.ChunkCols, s.ChunkRows)
	}
	if s.Budget < 0 || s.ColdBudget < 0 {
		return fmt.Errorf("%w: stream budgets must not be negative", ErrInvalid)
	}
	if s.RowsPerSlice <= 0 {
		s.RowsPerSlice = 1
	}
	if s.ColdRows < s.RowsPerSlice {
		s.ColdRows = s.RowsPerSlice
	}
	if s.ColdBudget < s.Budget {
		s.ColdBudget = s.Budget
	}
	if s.ClutterOdds < 0 || s.ClutterOdds > 1 {
		return fmt.Errorf("%w: stream.clutter_odds %v outside [0,1]", ErrInvalid, s.ClutterOdds)
	}

	if c.Viewer.Width <= 0 {
		c.Viewer.Width = def.Viewer.Width
	}
	if c.Viewer.Height <= 0 {
		c.Viewer.Height = def.Viewer.Height
	}
	return nil
}

// GridOptions converts the grid section for world.NewGrid.
func (c *Config) GridOptions() world.GridOptions {
	return world.GridOptions{
		SoftCap:      c.Grid.SoftCap,
		HeightScale:  c.Grid.HeightScale,
		Exaggeration: c.Grid.Exaggeration,
		RidgeBonus:   c.Grid.RidgeBonus,
		MinSide:      c.Grid.MinSide,
	}
}
