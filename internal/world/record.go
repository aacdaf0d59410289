package world

// ElevationBand is the ordered classification of elevation.
type ElevationBand uint8

const (
	BandDeepOcean ElevationBand = iota
	BandOcean
	BandShelf
	BandCoast
	BandLowland
	BandHighland
	BandMountain
	BandPeak
)

// elevationThresholds holds the exclusive upper bound of each band except Peak.
// Must stay strictly increasing.
var elevationThresholds = [...]float64{0.20, 0.33, 0.40, 0.44, 0.58, 0.72, 0.85}

// SeaLevel is the elevation above which a hex is dry land.
const SeaLevel = 0.40

var elevationNames = [...]string{"DeepOcean", "Ocean", "Shelf", "Coast", "Lowland", "Highland", "Mountain", "Peak"}

func (b ElevationBand) String() string {
	if int(b) < len(elevationNames) {
		return elevationNames[b]
	}
	return "Unknown"
}

// MarshalYAML writes the band by name.
func (b ElevationBand) MarshalYAML() (any, error) { return b.String(), nil }

// IsWater reports whether the band lies below sea level.
func (b ElevationBand) IsWater() bool {
	return b <= BandShelf
}

// ClassifyElevation maps elevation in [0,1] to its band. Monotone in e.
func ClassifyElevation(e float64) ElevationBand {
	for i, t := range elevationThresholds {
		if e < t {
			return ElevationBand(i)
		}
	}
	return BandPeak
}

// TemperatureBand is the ordered classification of temperature.
type TemperatureBand uint8

const (
	TempFrozen TemperatureBand = iota
	TempCold
	TempTemperate
	TempHot
)

var temperatureThresholds = [...]float64{0.20, 0.42, 0.68}

var temperatureNames = [...]string{"Frozen", "Cold", "Temperate", "Hot"}

func (b TemperatureBand) String() string {
	if int(b) < len(temperatureNames) {
		return temperatureNames[b]
	}
	return "Unknown"
}

// MarshalYAML writes the band by name.
func (b TemperatureBand) MarshalYAML() (any, error) { return b.String(), nil }

// ClassifyTemperature maps temperature in [0,1] to its band.
func ClassifyTemperature(t float64) TemperatureBand {
	for i, th := range temperatureThresholds {
		if t < th {
			return TemperatureBand(i)
		}
	}
	return TempHot
}

// MoistureBand is the ordered classification of moisture.
type MoistureBand uint8

const (
	MoistArid MoistureBand = iota
	MoistDry
	MoistMoist
	MoistWet
)

var moistureThresholds = [...]float64{0.22, 0.42, 0.65}

var moistureNames = [...]string{"Arid", "Dry", "Moist", "Wet"}

func (b MoistureBand) String() string {
	if int(b) < len(moistureNames) {
		return moistureNames[b]
	}
	return "Unknown"
}

// MarshalYAML writes the band by name.
func (b MoistureBand) MarshalYAML() (any, error) { return b.String(), nil }

// ClassifyMoisture maps moisture in [0,1] to its band.
func ClassifyMoisture(m float64) MoistureBand {
	for i, th := range moistureThresholds {
		if m < th {
			return MoistureBand(i)
		}
	}
	return MoistWet
}

// Archetype is a regional climate personality attached to a plate cell.
type Archetype uint8

const (
	ArchMaritime Archetype = iota
	ArchContinental
	ArchMonsoon
	ArchSteppe
	ArchBoreal
	ArchVolcanic
	archetypeCount
)

var archetypeNames = [...]string{"Maritime", "Continental", "Monsoon", "Steppe", "Boreal", "Volcanic"}

func (a Archetype) String() string {
	if int(a) < len(archetypeNames) {
		return archetypeNames[a]
	}
	return "Unknown"
}

// MarshalYAML writes the archetype by name.
func (a Archetype) MarshalYAML() (any, error) { return a.String(), nil }

// archetypeNudge is the (temperature, moisture) shift each archetype applies at full weight.
var archetypeNudge = [archetypeCount][2]float64{
	ArchMaritime:    {0.03, 0.10},
	ArchContinental: {-0.04, -0.07},
	ArchMonsoon:     {0.05, 0.14},
	ArchSteppe:      {0.04, -0.14},
	ArchBoreal:      {-0.08, 0.03},
	ArchVolcanic:    {0.02, 0.00},
}

// Flags is a fixed set of boolean terrain features.
type Flags uint16

const (
	FlagLake Flags = 1 << iota
	FlagRift
	FlagVolcanic
	FlagFjord
	FlagReef
	FlagOasis
	FlagCoastal
	FlagShelf
	FlagRainShadow
)

var flagNames = [...]string{"lake", "rift", "volcanic", "fjord", "reef", "oasis", "coastal", "shelf", "rain_shadow"}

// Has reports whether every bit in f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Names lists the set flags in declaration order.
func (f Flags) Names() []string {
	var out []string
	for i, n := range flagNames {
		if f&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

// MarshalYAML writes the set flag names.
func (f Flags) MarshalYAML() (any, error) { return f.Names(), nil }

// Shading holds deterministic hints consumed by the coloring stage.
type Shading struct {
	BathymetryStep int     `yaml:"bathymetry_step"` // 0 at the surface, grows with depth
	Aridity        float64 `yaml:"aridity"`
	RockExposure   float64 `yaml:"rock_exposure"`
	SnowMask       float64 `yaml:"snow_mask"`
}

// HexRecord is the generator output for one hex. Immutable per (seed, q, r).
type HexRecord struct {
	Elevation     float64         `yaml:"elevation"`
	ElevationBand ElevationBand   `yaml:"elevation_band"`
	Temperature   float64         `yaml:"temperature"`
	TempBand      TemperatureBand `yaml:"temperature_band"`
	Moisture      float64         `yaml:"moisture"`
	MoistureBand  MoistureBand    `yaml:"moisture_band"`

	Slope     float64   `yaml:"slope"`
	Ridge     float64   `yaml:"ridge"`
	PlateEdge float64   `yaml:"plate_edge"` // 1 on a plate boundary, 0 deep inside a plate
	Latitude  float64   `yaml:"latitude"`
	Archetype Archetype `yaml:"archetype"`

	Major BiomeMajor `yaml:"biome_major"`
	Sub   BiomeSub   `yaml:"biome_sub"`
	Flags Flags      `yaml:"flags"`

	Shading Shading `yaml:"shading"`
}

// IsWater reports whether the hex renders as water: below sea level or a lake.
func (h HexRecord) IsWater() bool {
	return h.ElevationBand.IsWater() || h.Flags.Has(FlagLake)
}
