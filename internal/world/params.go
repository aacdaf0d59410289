package world

// Params are the generator's tuning knobs. Land/ocean coverage responds to these
// non-linearly because the corridor mask carves through whatever the continental
// field produces; measure coverage with the survey command rather than assuming it.
type Params struct {
	Seed int64 `yaml:"seed"`

	ContinentFreq float64 `yaml:"continent_freq"` // cycles per plane unit
	PlateFreq     float64 `yaml:"plate_freq"`
	RidgeFreq     float64 `yaml:"ridge_freq"`
	DetailFreq    float64 `yaml:"detail_freq"`
	WarpFreq      float64 `yaml:"warp_freq"`
	WarpStrength  float64 `yaml:"warp_strength"` // plane units

	LandBias      float64 `yaml:"land_bias"` // added to elevation before banding
	RidgeStrength float64 `yaml:"ridge_strength"`
	CorridorWidth float64 `yaml:"corridor_width"` // plate-gap below which corridors carve
	CorridorDepth float64 `yaml:"corridor_depth"`
	CorridorOdds  float64 `yaml:"corridor_odds"` // fraction of plate boundaries that become seas

	ClimateFreq  float64 `yaml:"climate_freq"` // pole-to-pole cycles per plane unit
	LapseRate    float64 `yaml:"lapse_rate"`
	MoistureFreq float64 `yaml:"moisture_freq"`
	MoistureBias float64 `yaml:"moisture_bias"`
	WindReach    float64 `yaml:"wind_reach"` // plane units sampled up/downwind
}

// DefaultParams returns the tuning used by the demo worlds.
func DefaultParams(seed int64) Params {
	return Params{
		Seed:          seed,
		ContinentFreq: 0.012,
		PlateFreq:     0.022,
		RidgeFreq:     0.05,
		DetailFreq:    0.11,
		WarpFreq:      0.008,
		WarpStrength:  22,
		LandBias:      0.0,
		RidgeStrength: 0.30,
		CorridorWidth: 0.10,
		CorridorDepth: 0.32,
		CorridorOdds:  0.35,
		ClimateFreq:   0.0025,
		LapseRate:     0.65,
		MoistureFreq:  0.03,
		MoistureBias:  0.0,
		WindReach:     9,
	}
}
