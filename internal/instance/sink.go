package instance

import (
	"fmt"

	"hexworld/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Sink is an instanced drawable fed from a Store.
type Sink interface {
	// Upload copies instances [lo, hi) of store into the drawable.
	Upload(store *Store, lo, hi int)
	// SetVisible sets how many leading instances are drawn.
	SetVisible(n int)
	Dispose()
}

// Factory creates drawables for a mesh.
type Factory interface {
	NewInstanced(mesh *geom.Mesh, capacity int) (Sink, error)
}

// MemorySink mirrors uploads into plain slices. It backs headless runs and tests.
type MemorySink struct {
	Mesh       *geom.Mesh
	Transforms []mgl32.Mat4
	Colors     []mgl32.Vec3
	Visible    int
	Uploads    int
	Uploaded   int // instances copied across all uploads
	Disposed   bool
}

// NewMemorySink allocates a mirror for capacity instances.
func NewMemorySink(mesh *geom.Mesh, capacity int) *MemorySink {
	return &MemorySink{
		Mesh:       mesh,
		Transforms: make([]mgl32.Mat4, capacity),
		Colors:     make([]mgl32.Vec3, capacity),
	}
}

func (m *MemorySink) Upload(store *Store, lo, hi int) {
	copy(m.Transforms[lo:hi], store.Transforms[lo:hi])
	copy(m.Colors[lo:hi], store.Colors[lo:hi])
	m.Uploads++
	m.Uploaded += hi - lo
}

func (m *MemorySink) SetVisible(n int) {
	m.Visible = n
}

func (m *MemorySink) Dispose() {
	m.Disposed = true
	m.Transforms = nil
	m.Colors = nil
}

// MemoryFactory hands out MemorySinks and remembers them.
type MemoryFactory struct {
	Sinks []*MemorySink
	// Fail, when set, is returned by NewInstanced instead of a sink.
	Fail error
}

func (f *MemoryFactory) NewInstanced(mesh *geom.Mesh, capacity int) (Sink, error) {
	if f.Fail != nil {
		return nil, fmt.Errorf("instance: memory sink for %s: %w", mesh.Name, f.Fail)
	}
	s := NewMemorySink(mesh, capacity)
	f.Sinks = append(f.Sinks, s)
	return s, nil
}
