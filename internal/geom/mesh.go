// Package geom holds the small procedural meshes the hex renderer instances.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerVertex is the interleaved layout: position xyz, normal xyz.
const FloatsPerVertex = 6

// ErrEmptyMesh is returned by Validate for meshes without triangles.
var ErrEmptyMesh = errors.New("geom: mesh has no triangles")

// Mesh is an indexed triangle mesh with interleaved position/normal vertices.
type Mesh struct {
	Name     string
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / FloatsPerVertex
}

// Validate checks the mesh is drawable.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Vertices)%FloatsPerVertex != 0 {
		return fmt.Errorf("geom: mesh %q has %d floats, not a multiple of %d", m.Name, len(m.Vertices), FloatsPerVertex)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("geom: mesh %q index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("geom: mesh %q index %d = %d out of range", m.Name, i, idx)
		}
	}
	return nil
}

func (m *Mesh) addVertex(p, n mgl32.Vec3) uint32 {
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, p[0], p[1], p[2], n[0], n[1], n[2])
	return idx
}

// corner returns the i-th corner of a flat-top hex of unit circumradius in the xz plane.
func corner(i int) (x, z float32) {
	a := float64(i) * math.Pi / 3
	return float32(math.Cos(a)), float32(math.Sin(a))
}

// HexTop builds a flat-top hexagonal cap of unit circumradius at y=0 facing +y.
// Instances scale it by the hex size and translate it to the column height.
func HexTop() *Mesh {
	m := &Mesh{Name: "hex-top"}
	up := mgl32.Vec3{0, 1, 0}
	center := m.addVertex(mgl32.Vec3{0, 0, 0}, up)
	for i := 0; i < 6; i++ {
		x, z := corner(i)
		m.addVertex(mgl32.Vec3{x, 0, z}, up)
	}
	for i := uint32(0); i < 6; i++ {
		a := center + 1 + i
		b := center + 1 + (i+1)%6
		m.Indices = append(m.Indices, center, b, a)
	}
	return m
}

// HexSide builds the six outward-facing walls of a hex column spanning y in [-1, 0].
// The instance y scale sets the wall height.
func HexSide() *Mesh {
	m := &Mesh{Name: "hex-side"}
	for i := 0; i < 6; i++ {
		x0, z0 := corner(i)
		x1, z1 := corner((i + 1) % 6)
		n := mgl32.Vec3{x0 + x1, 0, z0 + z1}.Normalize()

		a := m.addVertex(mgl32.Vec3{x0, 0, z0}, n)
		b := m.addVertex(mgl32.Vec3{x1, 0, z1}, n)
		c := m.addVertex(mgl32.Vec3{x1, -1, z1}, n)
		d := m.addVertex(mgl32.Vec3{x0, -1, z0}, n)
		m.Indices = append(m.Indices, a, c, b, a, d, c)
	}
	return m
}

// Column is a closed-top hex prism standing on y=0 with unit height, used for
// decorations.
func Column() *Mesh {
	m := &Mesh{Name: "hex-column"}
	m.append(HexSide(), 1)
	m.append(HexTop(), 1)
	return m
}

// append copies o into m with its positions raised by dy.
func (m *Mesh) append(o *Mesh, dy float32) {
	base := uint32(m.VertexCount())
	for i := 0; i < len(o.Vertices); i += FloatsPerVertex {
		v := o.Vertices[i : i+FloatsPerVertex]
		m.Vertices = append(m.Vertices, v[0], v[1]+dy, v[2], v[3], v[4], v[5])
	}
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}
