package world

import (
	"math"

	"hexworld/internal/hex"

	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Seed offsets for the independent noise fields.
const (
	saltWarpX    = 11
	saltWarpY    = 12
	saltContour  = 21
	saltPlate    = 31
	saltRidge    = 41
	saltDetail   = 51
	saltMoisture = 61
	saltClimate  = 71
	saltRarity   = 81
)

// continentGain scales the continental field into elevation.
const continentGain = 1.7

// Generator is the pure per-hex world function. It holds only immutable noise
// state derived from Params, so Get is deterministic for a given seed.
type Generator struct {
	p Params

	continent opensimplex.Noise
	ridge     opensimplex.Noise
	warpX     *perlin.Perlin
	warpY     *perlin.Perlin

	poleX, poleY float64 // unit vector pointing from equator to pole
}

// NewGenerator builds a generator for the given parameters.
func NewGenerator(p Params) *Generator {
	angle := unit(hash2(p.Seed, saltClimate, p.Seed)) * 2 * math.Pi
	return &Generator{
		p:         p,
		continent: opensimplex.New(p.Seed + saltContour),
		ridge:     opensimplex.New(p.Seed + saltRidge),
		warpX:     perlin.NewPerlin(2, 2, 1, p.Seed+saltWarpX),
		warpY:     perlin.NewPerlin(2, 2, 1, p.Seed+saltWarpY),
		poleX:     math.Cos(angle),
		poleY:     math.Sin(angle),
	}
}

// Params returns a copy of the generator's tuning.
func (g *Generator) Params() Params {
	return g.p
}

// Get samples the hex at axial (q, r).
func (g *Generator) Get(q, r int) HexRecord {
	x, y := hex.ToPlane(float64(q), float64(r))
	return g.Sample(x, y, q, r)
}

// Sample evaluates the world at an arbitrary plane point. q and r only seed the
// hashed-rarity tests, so resampling at another density keeps per-hex variety.
func (g *Generator) Sample(x, y float64, q, r int) HexRecord {
	return g.sample(x, y, q, r, g.continental)
}

// warp bends plane coordinates with two low-frequency fields so coastlines wander.
func (g *Generator) warp(x, y float64) (wx, wy float64) {
	p := &g.p
	wx = x + p.WarpStrength*g.warpX.Noise2D(x*p.WarpFreq, y*p.WarpFreq)
	wy = y + p.WarpStrength*g.warpY.Noise2D(x*p.WarpFreq+17.3, y*p.WarpFreq-9.1)
	return wx, wy
}

// continental is the large-scale land mass field at a warped point, two octaves
// blended into [0,1].
func (g *Generator) continental(wx, wy float64) float64 {
	p := &g.p
	c1 := g.continent.Eval2(wx*p.ContinentFreq, wy*p.ContinentFreq)
	c2 := g.continent.Eval2(wx*p.ContinentFreq*2.3+31.7, wy*p.ContinentFreq*2.3-17.1)
	return 0.5 + 0.5*(0.7*c1+0.3*c2)
}

// latitude projects a warped point onto the seed's pole axis, folded to [0,1].
func (g *Generator) latitude(wx, wy float64) float64 {
	t := (wx*g.poleX + wy*g.poleY) * g.p.ClimateFreq
	return math.Abs(2 * (t - math.Floor(t+0.5)))
}

// windRise is the elevation gained across WindReach upwind to WindReach downwind
// of (wx, wy), read from relief. Positive on windward slopes, negative in the lee.
func (g *Generator) windRise(relief func(x, y float64) float64, wx, wy, windX, windY float64) float64 {
	reach := g.p.WindReach
	up := relief(wx-windX*reach, wy-windY*reach)
	down := relief(wx+windX*reach, wy+windY*reach)
	return continentGain * (down - up)
}

func (g *Generator) sample(x, y float64, q, r int, relief func(x, y float64) float64) HexRecord {
	p := &g.p
	wx, wy := g.warp(x, y)
	cont := g.continental(wx, wy)

	// plates: the F2-F1 gap is small near a boundary
	cell := cellular(wx*p.PlateFreq, wy*p.PlateFreq, p.Seed+saltPlate)
	gap := cell.Gap()
	edge := 1 - smoothstep(0, 0.35, gap)

	ridged := 1 - math.Abs(g.ridge.Eval2(wx*p.RidgeFreq, wy*p.RidgeFreq))
	ridge := ridged * ridged * edge

	// a hashed subset of plate boundaries become oceanic corridors
	lo, hi := cell.ID, cell.ID2
	if lo > hi {
		lo, hi = hi, lo
	}
	corridor := 0.0
	if unit(mix64(lo, hi)) < p.CorridorOdds {
		corridor = 1 - smoothstep(0, p.CorridorWidth, gap)
	}

	detail := octaveNoise2D(wx*p.DetailFreq, wy*p.DetailFreq, p.Seed+saltDetail, 2, 0.5, 2.0)

	elevation := clamp01(0.5 + (cont-0.5)*continentGain + 0.14*(detail-0.5) +
		p.RidgeStrength*ridge - p.CorridorDepth*corridor*(1-0.5*ridge) + p.LandBias)
	band := ClassifyElevation(elevation)

	// slope proxy without neighbour iteration
	slope := clamp01(1.8*p.RidgeStrength*ridge + 1.2*math.Abs(detail-0.5) + 0.6*corridor*edge)

	latitude := g.latitude(wx, wy)
	temperature := 1 - latitude - p.LapseRate*math.Max(0, elevation-SeaLevel)

	// air climbing terrain along the wind rains out; the lee stays dry
	windX, windY := g.wind(latitude)
	rise := g.windRise(relief, wx, wy, windX, windY)
	local := valueNoise2D(wx*p.MoistureFreq, wy*p.MoistureFreq, p.Seed+saltMoisture)

	interior := smoothstep(SeaLevel, 0.66, elevation)
	subtropicDry := 0.18 * math.Exp(-((latitude-0.3)*(latitude-0.3))/0.012)
	moisture := 0.62 - 0.35*interior + 0.25*(local-0.5) + 0.9*rise - subtropicDry + p.MoistureBias

	// regional archetype fades out toward plate boundaries to avoid seams
	arch := Archetype(mix64(cell.ID, uint64(int(latitude*3))) % uint64(archetypeCount))
	weight := smoothstep(0.02, 0.25, gap)
	temperature = clamp01(temperature + archetypeNudge[arch][0]*weight)
	moisture = clamp01(moisture + archetypeNudge[arch][1]*weight)

	tempBand := ClassifyTemperature(temperature)
	moistBand := ClassifyMoisture(moisture)

	coastal := band == BandCoast || band == BandShelf || (band == BandLowland && elevation < SeaLevel+0.07)
	rec := HexRecord{
		Elevation:     elevation,
		ElevationBand: band,
		Temperature:   temperature,
		TempBand:      tempBand,
		Moisture:      moisture,
		MoistureBand:  moistBand,
		Slope:         slope,
		Ridge:         ridge,
		PlateEdge:     edge,
		Latitude:      latitude,
		Archetype:     arch,
	}
	rec.Major = selectMajor(biomeInput{
		band:      band,
		temp:      tempBand,
		moist:     moistBand,
		slope:     slope,
		archetype: arch,
		coastal:   coastal,
	})
	rec.Sub = selectSub(rec.Major, band, slope, ridge, arch)
	rec.Flags = g.flags(&rec, q, r, coastal, rise)
	if rec.Flags.Has(FlagVolcanic) && !band.IsWater() && band < BandPeak {
		rec.Major = BiomeVolcanicField
	}
	rec.Shading = shade(&rec)
	return rec
}

// wind returns the prevailing wind direction for a latitude. Trade winds and polar
// easterlies blow against the pole-perpendicular axis, westerlies along it; the
// regimes blend smoothly around 0.33 and 0.66.
func (g *Generator) wind(latitude float64) (float64, float64) {
	ex, ey := -g.poleY, g.poleX
	toWesterly := smoothstep(0.27, 0.39, latitude)
	toPolar := smoothstep(0.60, 0.72, latitude)
	along := lerp(lerp(-1, 1, toWesterly), -1, toPolar)
	// trades drift equatorward, polar easterlies drift toward the equator as well
	meridional := -0.35*(1-toWesterly) - 0.2*toPolar
	vx := ex*along + g.poleX*meridional
	vy := ey*along + g.poleY*meridional
	n := math.Hypot(vx, vy)
	if n == 0 {
		return ex, ey
	}
	return vx / n, vy / n
}

// rainShadowRise is the wind rise below which land lies in a rain shadow.
const rainShadowRise = -0.08

// flags derives terrain features from hashed rarity and thresholds only.
func (g *Generator) flags(rec *HexRecord, q, r int, coastal bool, rise float64) Flags {
	var f Flags
	seed := g.p.Seed + saltRarity
	roll := func(salt int64) float64 {
		return hash01(int64(q)*7+salt, int64(r)*13-salt, seed)
	}
	band := rec.ElevationBand
	land := !band.IsWater()

	if coastal {
		f |= FlagCoastal
	}
	if band == BandShelf {
		f |= FlagShelf
	}
	if land && rise < rainShadowRise {
		f |= FlagRainShadow
	}
	if land && band <= BandHighland && rec.Moisture > 0.55 && rec.Slope < 0.25 {
		odds := 0.03
		if rec.Archetype == ArchBoreal {
			odds = 0.07
		}
		if roll(1) < odds {
			f |= FlagLake
		}
	}
	if land && rec.PlateEdge > 0.85 && rec.Ridge < 0.2 && roll(2) < 0.25 {
		f |= FlagRift
	}
	if land && rec.PlateEdge > 0.7 && rec.Elevation > 0.58 {
		odds := 0.04
		if rec.Archetype == ArchVolcanic {
			odds = 0.12
		}
		if roll(3) < odds {
			f |= FlagVolcanic
		}
	}
	if (band == BandCoast || band == BandShelf) && rec.TempBand <= TempCold && rec.Slope > 0.35 {
		f |= FlagFjord
	}
	if band == BandShelf && rec.TempBand == TempHot && roll(4) < 0.3 {
		f |= FlagReef
	}
	if rec.Major == BiomeDesert && roll(5) < 0.02 {
		f |= FlagOasis
	}
	return f
}

// shade computes the coloring hints from the classified record.
func shade(rec *HexRecord) Shading {
	var s Shading
	if rec.IsWater() {
		depth := math.Max(0, SeaLevel-rec.Elevation)
		s.BathymetryStep = min(int(depth/0.08), 4)
		return s
	}
	s.Aridity = clamp01((0.45-rec.Moisture)/0.45) * rec.Temperature
	rock := clamp01(rec.Slope*1.3 - 0.2)
	if rec.ElevationBand >= BandMountain {
		rock = clamp01(rock + 0.35)
	}
	s.RockExposure = rock
	s.SnowMask = smoothstep(0.25, 0.08, rec.Temperature)
	if rec.ElevationBand == BandPeak {
		s.SnowMask = clamp01(s.SnowMask + 0.5*smoothstep(0.6, 0.3, rec.Temperature))
	}
	return s
}
