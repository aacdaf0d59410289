package world

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"hexworld/internal/hex"

	"gopkg.in/yaml.v3"
)

var update = flag.Bool("update", false, "rewrite golden files")

// hashRecords computes a SHA-256 over every record in a square of hexes.
func hashRecords(g *Generator, radius int) [32]byte {
	h := sha256.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for r := -radius; r <= radius; r++ {
		for q := -radius; q <= radius; q++ {
			rec := g.Get(q, r)
			put(math.Float64bits(rec.Elevation))
			put(math.Float64bits(rec.Temperature))
			put(math.Float64bits(rec.Moisture))
			put(math.Float64bits(rec.Slope))
			put(uint64(rec.ElevationBand)<<48 | uint64(rec.TempBand)<<40 | uint64(rec.MoistureBand)<<32 |
				uint64(rec.Major)<<24 | uint64(rec.Sub)<<16 | uint64(rec.Flags))
			put(uint64(rec.Shading.BathymetryStep))
			put(math.Float64bits(rec.Shading.SnowMask))
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// TestGeneratorDeterminism verifies fresh generators with one seed agree bit for bit
func TestGeneratorDeterminism(t *testing.T) {
	first := hashRecords(NewGenerator(DefaultParams(12345)), 24)
	for i := 0; i < 5; i++ {
		if got := hashRecords(NewGenerator(DefaultParams(12345)), 24); got != first {
			t.Fatalf("generation not deterministic: run %d differs", i)
		}
	}

	g := NewGenerator(DefaultParams(12345))
	a := g.Get(17, -9)
	for i := 0; i < 50; i++ {
		g.Get(i, -i) // unrelated calls must not perturb state
	}
	if b := g.Get(17, -9); a != b {
		t.Errorf("repeated Get differs:\n%+v\n%+v", a, b)
	}
}

func TestGeneratorSeedsDiffer(t *testing.T) {
	a := hashRecords(NewGenerator(DefaultParams(1)), 16)
	b := hashRecords(NewGenerator(DefaultParams(2)), 16)
	if a == b {
		t.Error("different seeds produced identical worlds")
	}
}

// TestElevationBandOrdering verifies banding is monotone in elevation
func TestElevationBandOrdering(t *testing.T) {
	for i := 1; i < len(elevationThresholds); i++ {
		if elevationThresholds[i] <= elevationThresholds[i-1] {
			t.Fatalf("thresholds not strictly increasing at %d", i)
		}
	}
	prev := ClassifyElevation(0)
	if prev != BandDeepOcean {
		t.Fatalf("ClassifyElevation(0) = %v", prev)
	}
	for e := 0.0; e <= 1.0; e += 0.0005 {
		b := ClassifyElevation(e)
		if b < prev {
			t.Fatalf("band regressed at %f: %v < %v", e, b, prev)
		}
		prev = b
	}
	if prev != BandPeak {
		t.Errorf("ClassifyElevation(1) = %v, want Peak", prev)
	}
	if !ClassifyElevation(SeaLevel - 1e-9).IsWater() || ClassifyElevation(SeaLevel).IsWater() {
		t.Error("sea level does not split water and land bands")
	}
}

func TestClimateBandOrdering(t *testing.T) {
	prevT, prevM := ClassifyTemperature(0), ClassifyMoisture(0)
	for v := 0.0; v <= 1.0; v += 0.001 {
		tb, mb := ClassifyTemperature(v), ClassifyMoisture(v)
		if tb < prevT || mb < prevM {
			t.Fatalf("climate band regressed at %f", v)
		}
		prevT, prevM = tb, mb
	}
	if prevT != TempHot || prevM != MoistWet {
		t.Errorf("top bands = %v/%v", prevT, prevM)
	}
}

// TestRecordConsistency checks ranges and that stored bands match stored values
func TestRecordConsistency(t *testing.T) {
	g := NewGenerator(DefaultParams(777))
	for r := -40; r <= 40; r += 3 {
		for q := -40; q <= 40; q += 3 {
			rec := g.Get(q, r)
			for name, v := range map[string]float64{
				"elevation": rec.Elevation, "temperature": rec.Temperature, "moisture": rec.Moisture,
				"slope": rec.Slope, "ridge": rec.Ridge, "plate_edge": rec.PlateEdge, "latitude": rec.Latitude,
			} {
				if v < 0 || v > 1 || math.IsNaN(v) {
					t.Fatalf("(%d,%d) %s = %f out of [0,1]", q, r, name, v)
				}
			}
			if rec.ElevationBand != ClassifyElevation(rec.Elevation) {
				t.Errorf("(%d,%d) elevation band %v mismatches %f", q, r, rec.ElevationBand, rec.Elevation)
			}
			if rec.TempBand != ClassifyTemperature(rec.Temperature) {
				t.Errorf("(%d,%d) temperature band mismatch", q, r)
			}
			if rec.MoistureBand != ClassifyMoisture(rec.Moisture) {
				t.Errorf("(%d,%d) moisture band mismatch", q, r)
			}
			if rec.Flags.Has(FlagShelf) != (rec.ElevationBand == BandShelf) {
				t.Errorf("(%d,%d) shelf flag disagrees with band %v", q, r, rec.ElevationBand)
			}
			if rec.ElevationBand.IsWater() && rec.Flags.Has(FlagLake) {
				t.Errorf("(%d,%d) lake flagged below sea level", q, r)
			}
			if rec.ElevationBand.IsWater() && rec.Major > BiomeReef {
				t.Errorf("(%d,%d) water band with land biome %v", q, r, rec.Major)
			}
		}
	}
}

func TestSampleMatchesGet(t *testing.T) {
	g := NewGenerator(DefaultParams(5))
	for _, a := range []hex.Axial{{Q: 0, R: 0}, {Q: 3, R: -7}, {Q: -12, R: 4}} {
		x, y := hex.ToPlane(float64(a.Q), float64(a.R))
		if g.Sample(x, y, a.Q, a.R) != g.Get(a.Q, a.R) {
			t.Errorf("Sample and Get disagree at %v", a)
		}
	}
}

// ramp is relief climbing by slope per plane unit along (dx, dy) from (ox, oy).
func ramp(ox, oy, dx, dy, slope float64) func(x, y float64) float64 {
	return func(x, y float64) float64 {
		return 0.5 + slope*((x-ox)*dx+(y-oy)*dy)
	}
}

func TestWindRiseFollowsTerrain(t *testing.T) {
	g := NewGenerator(DefaultParams(3))
	climb := continentGain * 0.01 * 2 * g.p.WindReach
	tests := []struct {
		name         string
		relief       func(x, y float64) float64
		windX, windY float64
		want         float64
	}{
		{"into slope", ramp(0, 0, 1, 0, 0.01), 1, 0, climb},
		{"down slope", ramp(0, 0, 1, 0, 0.01), -1, 0, -climb},
		{"across slope", ramp(0, 0, 1, 0, 0.01), 0, 1, 0},
		{"flat", func(x, y float64) float64 { return 0.5 }, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.windRise(tt.relief, 4, -7, tt.windX, tt.windY); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("windRise = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWindwardWetterThanLee lays terrain climbing along the local wind, then the
// mirror image, and checks that the lee is drier and flagged as rain shadow.
func TestWindwardWetterThanLee(t *testing.T) {
	g := NewGenerator(DefaultParams(1337))
	var land, wetter int
	for r := -300; r <= 300; r += 12 {
		for q := -300; q <= 300; q += 12 {
			x, y := hex.ToPlane(float64(q), float64(r))
			if g.Sample(x, y, q, r) != g.sample(x, y, q, r, g.continental) {
				t.Fatalf("(%d,%d) Sample does not read the continental relief", q, r)
			}

			wx, wy := g.warp(x, y)
			windX, windY := g.wind(g.latitude(wx, wy))
			windward := g.sample(x, y, q, r, ramp(wx, wy, windX, windY, 0.01))
			lee := g.sample(x, y, q, r, ramp(wx, wy, -windX, -windY, 0.01))

			if windward.Elevation != lee.Elevation {
				t.Fatalf("(%d,%d) relief along the wind changed elevation", q, r)
			}
			if windward.Moisture < lee.Moisture {
				t.Errorf("(%d,%d) windward moisture %f < lee %f", q, r, windward.Moisture, lee.Moisture)
			}
			if windward.Moisture > lee.Moisture {
				wetter++
			}
			if lee.ElevationBand.IsWater() {
				continue
			}
			land++
			if !lee.Flags.Has(FlagRainShadow) {
				t.Errorf("(%d,%d) lee slope not in rain shadow", q, r)
			}
			if windward.Flags.Has(FlagRainShadow) {
				t.Errorf("(%d,%d) windward slope flagged as rain shadow", q, r)
			}
		}
	}
	if land == 0 || wetter == 0 {
		t.Fatalf("land=%d wetter=%d; sample area has no usable hexes", land, wetter)
	}
}

// TestWorldHasLandAndWater samples a wide area; exact coverage is tuning dependent.
func TestWorldHasLandAndWater(t *testing.T) {
	g := NewGenerator(DefaultParams(1337))
	var land, water int
	biomes := map[BiomeMajor]bool{}
	for r := -300; r <= 300; r += 6 {
		for q := -300; q <= 300; q += 6 {
			rec := g.Get(q, r)
			if rec.ElevationBand.IsWater() {
				water++
			} else {
				land++
			}
			biomes[rec.Major] = true
		}
	}
	if land == 0 || water == 0 {
		t.Fatalf("expected both land and water, got land=%d water=%d", land, water)
	}
	if len(biomes) < 6 {
		t.Errorf("only %d distinct biomes in a wide sample", len(biomes))
	}
}

// golden is the regression snapshot of one hex.
type golden struct {
	Seed          int64           `yaml:"seed"`
	Q             int             `yaml:"q"`
	R             int             `yaml:"r"`
	ElevationBand ElevationBand   `yaml:"elevation_band"`
	TempBand      TemperatureBand `yaml:"temperature_band"`
	MoistureBand  MoistureBand    `yaml:"moisture_band"`
	Major         BiomeMajor      `yaml:"biome_major"`
}

// TestGoldenSeed42Origin guards against tuning drift. Run with -update after an
// intentional change to the generator to rewrite the snapshot, then fix the
// expectations below to match.
func TestGoldenSeed42Origin(t *testing.T) {
	rec := NewGenerator(DefaultParams(42)).Get(0, 0)
	snap := golden{
		Seed:          42,
		ElevationBand: rec.ElevationBand,
		TempBand:      rec.TempBand,
		MoistureBand:  rec.MoistureBand,
		Major:         rec.Major,
	}
	want := golden{
		Seed:          42,
		ElevationBand: BandCoast,
		TempBand:      TempHot,
		MoistureBand:  MoistMoist,
		Major:         BiomeBeach,
	}
	if snap != want {
		t.Errorf("seed 42 origin = %v/%v/%v/%v, want %v/%v/%v/%v",
			snap.ElevationBand, snap.TempBand, snap.MoistureBand, snap.Major,
			want.ElevationBand, want.TempBand, want.MoistureBand, want.Major)
	}

	got, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join("testdata", "seed42_origin.golden.yaml")
	if *update {
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatal(err)
		}
		t.Logf("wrote %s:\n%s", path, got)
		return
	}
	recorded, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot (run with -update to record it): %v", err)
	}
	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(recorded)) {
		t.Errorf("seed 42 origin drifted\n got:\n%s\nwant:\n%s", got, recorded)
	}
}

func BenchmarkGeneratorGet(b *testing.B) {
	g := NewGenerator(DefaultParams(1337))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Get(i%512, i/512)
	}
}
