package graphics

import (
	"fmt"

	"hexworld/internal/geom"
	"hexworld/internal/instance"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// floats per instance: mat4 + rgb
const instanceFloats = 16 + 3

// InstancedMesh is a GPU drawable: one static mesh drawn once per instance,
// with per-instance transform and color in a second buffer.
type InstancedMesh struct {
	name       string
	vao        uint32
	vbo        uint32
	ebo        uint32
	ibo        uint32
	indexCount int32
	capacity   int
	visible    int32
	scratch    []float32
}

// NewInstancedMesh uploads mesh and reserves an instance buffer for capacity
// instances. Requires a current GL context.
func NewInstancedMesh(mesh *geom.Mesh, capacity int) (*InstancedMesh, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("graphics: %s: capacity %d", mesh.Name, capacity)
	}
	m := &InstancedMesh{name: mesh.Name, capacity: capacity, indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)
	stride := int32(geom.FloatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ibo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.ibo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*instanceFloats*4, nil, gl.DYNAMIC_DRAW)
	istride := int32(instanceFloats * 4)
	// mat4 occupies four vec4 attribute slots
	for col := uint32(0); col < 4; col++ {
		loc := 2 + col
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, istride, uintptr(col*16))
		gl.VertexAttribDivisor(loc, 1)
	}
	gl.EnableVertexAttribArray(6)
	gl.VertexAttribPointerWithOffset(6, 3, gl.FLOAT, false, istride, 16*4)
	gl.VertexAttribDivisor(6, 1)

	gl.BindVertexArray(0)
	return m, nil
}

// Upload copies instances [lo, hi) of store into the instance buffer.
func (m *InstancedMesh) Upload(store *instance.Store, lo, hi int) {
	hi = min(hi, m.capacity)
	if m.ibo == 0 || lo >= hi {
		return
	}
	n := (hi - lo) * instanceFloats
	if cap(m.scratch) < n {
		m.scratch = make([]float32, n)
	}
	buf := m.scratch[:n]
	for i := lo; i < hi; i++ {
		o := (i - lo) * instanceFloats
		t := store.Transforms[i]
		copy(buf[o:o+16], t[:])
		c := store.Colors[i]
		copy(buf[o+16:o+19], c[:])
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.ibo)
	gl.BufferSubData(gl.ARRAY_BUFFER, lo*instanceFloats*4, n*4, gl.Ptr(buf))
}

// SetVisible sets how many leading instances Draw renders.
func (m *InstancedMesh) SetVisible(n int) {
	m.visible = int32(max(0, min(n, m.capacity)))
}

// Visible returns the current draw count.
func (m *InstancedMesh) Visible() int { return int(m.visible) }

// Draw issues one instanced draw call with the bound shader.
func (m *InstancedMesh) Draw() {
	if m.vao == 0 || m.visible == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil, m.visible)
	gl.BindVertexArray(0)
}

// Dispose deletes the GL objects. Safe to call twice.
func (m *InstancedMesh) Dispose() {
	if m.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	bufs := []uint32{m.vbo, m.ebo, m.ibo}
	gl.DeleteBuffers(int32(len(bufs)), &bufs[0])
	m.vao, m.vbo, m.ebo, m.ibo = 0, 0, 0, 0
	m.visible = 0
}

// Factory creates InstancedMeshes on the current GL context.
type Factory struct{}

// NewInstanced implements instance.Factory.
func (Factory) NewInstanced(mesh *geom.Mesh, capacity int) (instance.Sink, error) {
	m, err := NewInstancedMesh(mesh, capacity)
	if err != nil {
		return nil, err
	}
	return m, nil
}
