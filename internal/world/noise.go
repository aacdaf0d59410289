package world

import (
	"math"
)

// Deterministic hashed lattice noise. Everything here is a pure function of its
// integer inputs and seed so generator output is stable across runs.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// smoothstep maps v from [e0,e1] onto [0,1] with a cubic ease. e0 > e1 inverts the ramp.
func smoothstep(e0, e1, v float64) float64 {
	t := clamp01((v - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func hash2(x int64, z int64, seed int64) uint64 {
	// SplitMix64 finalizer over a mixed lattice key
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(z)*0xC2B2AE3D27D4EB4F + uint64(seed)*0x165667B19E3779F9
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// hash01 maps a lattice point to [0,1].
func hash01(x, z, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise2D(x float64, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)
	x1 := x0 + 1
	z1 := z0 + 1

	fx := fade(x - x0)
	fz := fade(z - z0)

	v00 := hash01(int64(x0), int64(z0), seed)
	v10 := hash01(int64(x1), int64(z0), seed)
	v01 := hash01(int64(x0), int64(z1), seed)
	v11 := hash01(int64(x1), int64(z1), seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fz) // [0,1]
}

func octaveNoise2D(x float64, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range octaves {
		v := valueNoise2D(x*frequency, z*frequency, seed+int64(i*131))
		sum += v * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm // [0,1]
}

// cellSample is the result of one cellular (Worley) evaluation.
type cellSample struct {
	F1, F2 float64 // distances to the nearest and second-nearest feature points
	ID     uint64  // hash of the nearest feature cell
	ID2    uint64  // hash of the second-nearest feature cell
}

// Gap is the plate-edge distance: small values sit on a boundary between two cells.
func (c cellSample) Gap() float64 {
	return c.F2 - c.F1
}

// cellular evaluates jittered-grid Worley noise. One feature point per unit cell,
// searched over the 3x3 neighbourhood; cost is fixed.
func cellular(x, z float64, seed int64) cellSample {
	cx := int64(math.Floor(x))
	cz := int64(math.Floor(z))
	out := cellSample{F1: math.MaxFloat64, F2: math.MaxFloat64}
	for dz := int64(-1); dz <= 1; dz++ {
		for dx := int64(-1); dx <= 1; dx++ {
			gx := cx + dx
			gz := cz + dz
			h := hash2(gx, gz, seed)
			// two independent jitter values from one hash
			jx := float64(h&0xFFFF) / 0xFFFF
			jz := float64((h>>16)&0xFFFF) / 0xFFFF
			px := float64(gx) + 0.1 + 0.8*jx
			pz := float64(gz) + 0.1 + 0.8*jz
			d := math.Hypot(px-x, pz-z)
			switch {
			case d < out.F1:
				out.F2, out.ID2 = out.F1, out.ID
				out.F1, out.ID = d, h
			case d < out.F2:
				out.F2, out.ID2 = d, h
			}
		}
	}
	return out
}

// mix64 folds extra integers into a hash; used for hashed-rarity tests.
func mix64(h uint64, vals ...uint64) uint64 {
	for _, v := range vals {
		h ^= v + 0x9E3779B97F4A7C15 + (h << 6) + (h >> 2)
		h = (h ^ (h >> 30)) * 0xBF58476D1CE4E5B9
		h = (h ^ (h >> 27)) * 0x94D049BB133111EB
		h ^= h >> 31
	}
	return h
}

func unit(h uint64) float64 {
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// Roll returns a stable value in [0,1] for a hex and salt. Decoration placement
// uses it for hashed-rarity tests of its own.
func Roll(q, r int, salt int64) float64 {
	return hash01(int64(q), int64(r), salt)
}
