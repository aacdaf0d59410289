// Package terrain draws the instanced hex layers: tops, sides, decorations and
// the fading trail of chunks that just left the window.
package terrain

import (
	"hexworld/internal/graphics"
	renderer "hexworld/internal/graphics/renderer"
	"hexworld/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Layer is one instanced drawable and its opacity this frame.
type Layer struct {
	Mesh  *graphics.InstancedMesh
	Alpha float32
}

// Terrain implements renderer.Renderable.
type Terrain struct {
	// Layers is asked for the drawables every frame; meshes may be replaced
	// between frames when the window is rebuilt.
	Layers func(ctx renderer.RenderContext) []Layer

	LightDir mgl32.Vec3
	FogFar   float32

	shader *graphics.Shader
}

func NewTerrain(layers func(ctx renderer.RenderContext) []Layer) *Terrain {
	return &Terrain{
		Layers:   layers,
		LightDir: mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
		FogFar:   220,
	}
}

func (t *Terrain) Init() error {
	var err error
	t.shader, err = graphics.LoadShader("hex")
	return err
}

func (t *Terrain) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderTerrain")()
	t.shader.Use()
	t.shader.SetMat4("view", ctx.View)
	t.shader.SetMat4("proj", ctx.Proj)
	t.shader.SetVec3("lightDir", t.LightDir)
	t.shader.SetVec3("fogColor", renderer.SkyColor)
	t.shader.SetFloat("fogFar", t.FogFar)

	layers := t.Layers(ctx)
	// opaque first, then translucent without depth writes
	for _, l := range layers {
		if l.Mesh != nil && l.Alpha >= 1 {
			t.shader.SetFloat("alpha", 1)
			l.Mesh.Draw()
		}
	}
	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	for _, l := range layers {
		if l.Mesh != nil && l.Alpha > 0 && l.Alpha < 1 {
			t.shader.SetFloat("alpha", l.Alpha)
			l.Mesh.Draw()
		}
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (t *Terrain) Dispose() {
	if t.shader != nil {
		t.shader.Delete()
	}
}
