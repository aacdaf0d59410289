package world

// BiomeMajor is the primary biome classification of a hex.
type BiomeMajor uint8

const (
	BiomeDeepSea BiomeMajor = iota
	BiomeSea
	BiomeShallowSea
	BiomeReef
	BiomeBeach
	BiomeMangrove
	BiomeIceSheet
	BiomeTundra
	BiomeTaiga
	BiomeTemperateForest
	BiomeGrassland
	BiomeShrubland
	BiomeDesert
	BiomeSavanna
	BiomeTropicalForest
	BiomeSwamp
	BiomeAlpine
	BiomeBarren
	BiomeGlacier
	BiomeVolcanicField
	biomeMajorCount
)

var biomeMajorNames = [...]string{
	"DeepSea", "Sea", "ShallowSea", "Reef", "Beach", "Mangrove", "IceSheet", "Tundra", "Taiga",
	"TemperateForest", "Grassland", "Shrubland", "Desert", "Savanna", "TropicalForest", "Swamp",
	"Alpine", "Barren", "Glacier", "VolcanicField",
}

func (b BiomeMajor) String() string {
	if int(b) < len(biomeMajorNames) {
		return biomeMajorNames[b]
	}
	return "Unknown"
}

// MarshalYAML writes the biome by name.
func (b BiomeMajor) MarshalYAML() (any, error) { return b.String(), nil }

// BiomeSub refines a major biome by relief.
type BiomeSub uint8

const (
	SubFlat BiomeSub = iota
	SubRolling
	SubHills
	SubRugged
	SubCliffs
	SubDunes
	SubTerraced
	SubTrench
)

var biomeSubNames = [...]string{"Flat", "Rolling", "Hills", "Rugged", "Cliffs", "Dunes", "Terraced", "Trench"}

func (b BiomeSub) String() string {
	if int(b) < len(biomeSubNames) {
		return biomeSubNames[b]
	}
	return "Unknown"
}

// MarshalYAML writes the sub biome by name.
func (b BiomeSub) MarshalYAML() (any, error) { return b.String(), nil }

// landTable is the lowland/highland decision table indexed [temperature][moisture].
var landTable = [4][4]BiomeMajor{
	TempFrozen:    {BiomeBarren, BiomeTundra, BiomeTundra, BiomeIceSheet},
	TempCold:      {BiomeShrubland, BiomeShrubland, BiomeTaiga, BiomeTaiga},
	TempTemperate: {BiomeShrubland, BiomeGrassland, BiomeTemperateForest, BiomeTemperateForest},
	TempHot:       {BiomeDesert, BiomeSavanna, BiomeTropicalForest, BiomeTropicalForest},
}

// biomeInput is the key of the major decision table.
type biomeInput struct {
	band      ElevationBand
	temp      TemperatureBand
	moist     MoistureBand
	slope     float64
	archetype Archetype
	coastal   bool
}

// selectMajor picks the major biome. Water and relief bands short-circuit the
// climate table; archetypes only nudge the climate table for land.
func selectMajor(in biomeInput) BiomeMajor {
	switch in.band {
	case BandDeepOcean:
		return BiomeDeepSea
	case BandOcean:
		return BiomeSea
	case BandShelf:
		if in.temp == TempHot && in.moist >= MoistMoist {
			return BiomeReef
		}
		return BiomeShallowSea
	case BandCoast:
		switch {
		case in.temp == TempFrozen:
			return BiomeIceSheet
		case in.temp == TempHot && in.moist == MoistWet && in.slope < 0.3:
			return BiomeMangrove
		case in.slope > 0.55:
			return BiomeBarren
		}
		return BiomeBeach
	case BandMountain:
		switch {
		case in.temp <= TempCold:
			return BiomeGlacier
		case in.moist == MoistArid:
			return BiomeBarren
		case in.archetype == ArchVolcanic && in.slope > 0.5:
			return BiomeVolcanicField
		}
		return BiomeAlpine
	case BandPeak:
		if in.temp <= TempTemperate {
			return BiomeGlacier
		}
		return BiomeBarren
	}

	if in.slope > 0.75 {
		return BiomeBarren
	}

	b := landTable[in.temp][in.moist]
	switch in.archetype {
	case ArchSteppe:
		if b == BiomeTemperateForest && in.moist == MoistMoist {
			b = BiomeGrassland
		}
	case ArchMonsoon:
		if b == BiomeDesert {
			b = BiomeSavanna
		}
	case ArchBoreal:
		if b == BiomeTemperateForest && in.band == BandHighland {
			b = BiomeTaiga
		}
	}
	if in.moist == MoistWet && in.band == BandLowland && in.slope < 0.2 && in.temp >= TempTemperate {
		b = BiomeSwamp
	}
	if in.coastal && b == BiomeDesert && in.moist == MoistArid {
		b = BiomeShrubland
	}
	return b
}

// selectSub picks the relief sub-biome.
func selectSub(major BiomeMajor, band ElevationBand, slope, ridge float64, archetype Archetype) BiomeSub {
	if band == BandDeepOcean {
		if slope > 0.4 {
			return SubTrench
		}
		return SubFlat
	}
	if band.IsWater() {
		if slope > 0.5 {
			return SubRugged
		}
		return SubFlat
	}
	if major == BiomeDesert && slope < 0.3 && archetype != ArchVolcanic {
		return SubDunes
	}
	if archetype == ArchMonsoon && slope >= 0.25 && slope < 0.5 && band == BandHighland {
		return SubTerraced
	}
	switch {
	case slope > 0.7 || ridge > 0.8:
		return SubCliffs
	case slope > 0.5:
		return SubRugged
	case slope > 0.3:
		return SubHills
	case slope > 0.12:
		return SubRolling
	}
	return SubFlat
}
