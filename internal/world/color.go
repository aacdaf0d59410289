package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

var biomeHex = [biomeMajorCount]string{
	BiomeDeepSea:         "#0b2a4a",
	BiomeSea:             "#14406b",
	BiomeShallowSea:      "#2a6f97",
	BiomeReef:            "#2f9c95",
	BiomeBeach:           "#d8c99b",
	BiomeMangrove:        "#4f6d3a",
	BiomeIceSheet:        "#e4eef2",
	BiomeTundra:          "#9aa58a",
	BiomeTaiga:           "#3f5e44",
	BiomeTemperateForest: "#4d7f3a",
	BiomeGrassland:       "#8fb35a",
	BiomeShrubland:       "#a3a36a",
	BiomeDesert:          "#dcc08a",
	BiomeSavanna:         "#bfae5a",
	BiomeTropicalForest:  "#2f7a32",
	BiomeSwamp:           "#4a5e3a",
	BiomeAlpine:          "#7f8c6e",
	BiomeBarren:          "#8a8178",
	BiomeGlacier:         "#f2f6f8",
	BiomeVolcanicField:   "#4a3b36",
}

var (
	biomePalette [biomeMajorCount]colorful.Color

	sandTint = mustHex("#d9c28c")
	rockTint = mustHex("#7b7570")
	snowTint = mustHex("#f7f9fb")
	deepTint = mustHex("#06182c")
	lakeTint = mustHex("#3b7fa8")
)

func init() {
	for i, h := range biomeHex {
		biomePalette[i] = mustHex(h)
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("world: bad palette color %q: %v", s, err))
	}
	return c
}

// BiomeColor returns the flat palette color for a biome.
func BiomeColor(b BiomeMajor) colorful.Color {
	if int(b) < len(biomePalette) {
		return biomePalette[b]
	}
	return rockTint
}

// shadeColors derives the top and side colors of a hex from its record.
func shadeColors(rec *HexRecord) (top, side colorful.Color) {
	top = BiomeColor(rec.Major)
	s := rec.Shading
	switch {
	case rec.Flags.Has(FlagLake):
		top = lakeTint
	case rec.ElevationBand.IsWater():
		top = top.BlendLab(deepTint, 0.12*float64(s.BathymetryStep))
	default:
		top = top.BlendLab(sandTint, 0.35*s.Aridity)
		top = top.BlendLab(rockTint, 0.6*s.RockExposure)
		top = top.BlendLab(snowTint, s.SnowMask)
	}
	top = top.Clamped()

	side, ok := colorful.MakeColor(gamut.Darker(top, 0.25))
	if !ok {
		side = top
	}
	return top, side
}

// Vec3 converts a color to the float triple used by instance stores.
func Vec3(c colorful.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
