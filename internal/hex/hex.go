// Package hex provides axial hex coordinates, the flat-top plane basis, and the
// chunk arithmetic used to tile the hex plane into rectangular streaming blocks.
package hex

import "math"

var sqrt3 = math.Sqrt(3)

// Axial is a hex address in axial coordinates. The third cube coordinate is -Q-R.
type Axial struct {
	Q int `yaml:"q"`
	R int `yaml:"r"`
}

// S returns the implicit third cube coordinate.
func (a Axial) S() int {
	return -a.Q - a.R
}

// Add returns a + b.
func (a Axial) Add(b Axial) Axial {
	return Axial{Q: a.Q + b.Q, R: a.R + b.R}
}

// Directions are the six neighbor offsets of a flat-top hex, clockwise from east.
var Directions = [6]Axial{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent coordinates.
func (a Axial) Neighbors() [6]Axial {
	var out [6]Axial
	for i, d := range Directions {
		out[i] = a.Add(d)
	}
	return out
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Axial) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

// ToPlane maps an axial coordinate to the continuous plane using the flat-top basis
// with unit circumradius.
func ToPlane(q, r float64) (x, y float64) {
	x = 1.5 * q
	y = sqrt3 * (r + q/2)
	return x, y
}

// Center returns the plane position of a hex of the given circumradius.
func (a Axial) Center(size float64) (x, y float64) {
	x, y = ToPlane(float64(a.Q), float64(a.R))
	return x * size, y * size
}

// FromPlane returns the hex of the given circumradius containing plane point (x, y).
func FromPlane(x, y, size float64) Axial {
	q := x / size / 1.5
	r := y/size/sqrt3 - q/2
	return round(q, r)
}

// round snaps fractional axial coordinates to the nearest hex via cube rounding.
func round(q, r float64) Axial {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return Axial{Q: int(rq), R: int(rr)}
}

// FromOffset converts odd-q offset coordinates (col, row) into axial.
// Flat-top hexes laid out in columns produce rectangular chunks in this space.
func FromOffset(col, row int) Axial {
	return Axial{Q: col, R: row - (col-(col&1))/2}
}

// ToOffset converts an axial coordinate back into odd-q offset coordinates.
func ToOffset(a Axial) (col, row int) {
	col = a.Q
	row = a.R + (a.Q-(a.Q&1))/2
	return col, row
}

// Key packs an axial coordinate into a single int64 suitable for map keys.
func (a Axial) Key() int64 {
	return int64(a.Q)<<32 | int64(uint32(a.R))
}

// FromKey reverses Key.
func FromKey(k int64) Axial {
	return Axial{Q: int(int32(k >> 32)), R: int(int32(uint32(k)))}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
