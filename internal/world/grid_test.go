package world

import (
	"testing"
)

func newTestGrid(opts GridOptions) *Grid {
	return NewGrid(NewGenerator(DefaultParams(1337)), opts)
}

func TestGridCachesCells(t *testing.T) {
	g := newTestGrid(DefaultGridOptions())
	a := g.Cell(3, 4)
	b := g.Cell(3, 4)
	if a != b {
		t.Fatal("cached cell differs from first sample")
	}
	st := g.Stats()
	if st.Misses != 1 || st.Hits != 1 || st.Cached != 1 {
		t.Errorf("stats = %+v, want 1 miss, 1 hit, 1 cached", st)
	}
	if a.Record != g.Generator().Get(3, 4) {
		t.Error("cell record differs from generator output")
	}
}

// TestGridSoftCapClearsWholesale verifies the cache never grows past the soft cap
func TestGridSoftCapClearsWholesale(t *testing.T) {
	opts := DefaultGridOptions()
	opts.SoftCap = 10
	g := newTestGrid(opts)
	for q := 0; q < 25; q++ {
		g.Cell(q, 0)
		if n := g.Stats().Cached; n > opts.SoftCap {
			t.Fatalf("cache holds %d > soft cap %d", n, opts.SoftCap)
		}
	}
	st := g.Stats()
	if st.Clears != 2 {
		t.Errorf("clears = %d, want 2", st.Clears)
	}
	if st.Cached != 5 {
		t.Errorf("cached = %d after 25 inserts with cap 10, want 5", st.Cached)
	}
}

func TestGridEpoch(t *testing.T) {
	g := newTestGrid(DefaultGridOptions())
	g.Cell(0, 0)

	g.SetGenerationScale(1)
	if g.Epoch() != 0 {
		t.Fatal("unchanged scale bumped the epoch")
	}

	g.SetGenerationScale(2)
	if g.Epoch() != 1 || g.Stats().Cached != 0 {
		t.Fatalf("scale change: epoch=%d cached=%d", g.Epoch(), g.Stats().Cached)
	}
	coarse := g.Cell(10, 10)
	want := g.Generator().Get(5, 5) // (10,10)/2 lands exactly on axial (5,5)
	if coarse.Record.ElevationBand != want.ElevationBand || coarse.Record.Elevation != want.Elevation {
		t.Errorf("scaled sample elevation %f, want %f", coarse.Record.Elevation, want.Elevation)
	}

	g.Retune(func(p *Params) { p.LandBias = 0.2 })
	if g.Epoch() != 2 {
		t.Fatalf("retune epoch = %d, want 2", g.Epoch())
	}
	if g.Generator().Params().LandBias != 0.2 {
		t.Error("retune did not reach the generator")
	}
}

// TestGridShaping checks heights and colors for both water and land tiles
func TestGridShaping(t *testing.T) {
	opts := DefaultGridOptions()
	g := newTestGrid(opts)
	var sawWater, sawLand bool
	for r := -60; r <= 60; r += 4 {
		for q := -60; q <= 60; q += 4 {
			c := g.Cell(q, r)
			if c.Water() {
				sawWater = true
				if c.SideHeight != opts.MinSide {
					t.Fatalf("water side height = %f, want %f", c.SideHeight, opts.MinSide)
				}
			} else {
				sawLand = true
				if c.TopHeight < float32(SeaLevel)*opts.HeightScale-1e-4 {
					t.Fatalf("land top %f below sea plane", c.TopHeight)
				}
				if c.SideHeight < opts.MinSide {
					t.Fatalf("land side %f below minimum", c.SideHeight)
				}
			}
			for _, v := range []float32{c.Top[0], c.Top[1], c.Top[2], c.Side[0], c.Side[1], c.Side[2]} {
				if v < 0 || v > 1 {
					t.Fatalf("color component %f out of range at (%d,%d)", v, q, r)
				}
			}
		}
	}
	if !sawWater || !sawLand {
		t.Logf("sample had water=%v land=%v", sawWater, sawLand)
	}
}

func TestBiomeColorsDistinct(t *testing.T) {
	seen := map[string]BiomeMajor{}
	for b := BiomeMajor(0); b < biomeMajorCount; b++ {
		h := BiomeColor(b).Hex()
		if prev, ok := seen[h]; ok {
			t.Errorf("%v and %v share color %s", prev, b, h)
		}
		seen[h] = b
	}
}

func BenchmarkGridCell(b *testing.B) {
	g := newTestGrid(DefaultGridOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Cell(i%256, (i/256)%256)
	}
}
