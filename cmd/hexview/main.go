package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"hexworld/internal/config"
	"hexworld/internal/frame"
	"hexworld/internal/graphics"
	"hexworld/internal/graphics/renderables/terrain"
	renderer "hexworld/internal/graphics/renderer"
	"hexworld/internal/hex"
	"hexworld/internal/input"
	"hexworld/internal/profiling"
	"hexworld/internal/session"
	"hexworld/internal/stream"
	"hexworld/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

var (
	configPath = flag.String("config", "", "YAML configuration file")
	seed       = flag.Int64("seed", 42, "world seed when the config does not set one")
)

func main() {
	flag.Parse()
	defer closer.Close()
	closer.Bind(func() {
		log.Printf("hexview: exit, last frame: %s", profiling.TopN(5))
	})

	cfg, err := loadConfig()
	if err != nil {
		closer.Fatalln(err)
	}
	config.Apply(cfg)

	if err := glfw.Init(); err != nil {
		closer.Fatalln(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Viewer.Width, cfg.Viewer.Height)
	if err != nil {
		closer.Fatalln(err)
	}

	v, err := newViewer(window, cfg)
	if err != nil {
		closer.Fatalln(err)
	}
	defer v.cleanup()
	v.run()
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.Load(*configPath, *seed)
	}
	cfg := config.Default(*seed)
	return cfg, cfg.Normalize()
}

func setupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(width, height, "hexview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	// own limiter instead of vsync
	glfw.SwapInterval(0)
	return window, nil
}

type viewer struct {
	window   *glfw.Window
	cfg      *config.Config
	input    *input.Manager
	factory  graphics.Factory
	renderer *renderer.Renderer
	session  *session.Session
	limiter  frame.Limiter

	showClutter bool
	center      hex.ChunkCoord
}

func newViewer(window *glfw.Window, cfg *config.Config) (*viewer, error) {
	v := &viewer{
		window:      window,
		cfg:         cfg,
		input:       input.NewManager(),
		factory:     graphics.Factory{},
		showClutter: true,
	}
	width, height := window.GetFramebufferSize()
	camera := graphics.NewCamera(width, height)
	r, err := renderer.NewRenderer(camera, terrain.NewTerrain(v.layers))
	if err != nil {
		return nil, err
	}
	v.renderer = r
	r.UpdateViewport(width, height)

	// GL context is current, so the factory can allocate drawables
	s, err := session.New(context.Background(), cfg, v.factory, v.center, nil)
	if err != nil {
		r.Dispose()
		return nil, err
	}
	v.session = s

	v.input.Attach(window)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.renderer.UpdateViewport(width, height)
	})
	return v, nil
}

// layers lists what the terrain pass draws this frame.
func (v *viewer) layers(ctx renderer.RenderContext) []terrain.Layer {
	m := v.session.Manager
	top, side, trail := m.Drawables()
	var out []terrain.Layer
	add := func(s any, alpha float32) {
		if mesh, ok := s.(*graphics.InstancedMesh); ok && mesh != nil {
			out = append(out, terrain.Layer{Mesh: mesh, Alpha: alpha})
		}
	}
	add(top, 1)
	add(side, 1)
	if v.showClutter && v.session.ClutterSink != nil {
		add(v.session.ClutterSink, 1)
	}
	if tr := m.Trail(); tr != nil {
		add(trail, 0.6*tr.Fade(ctx.Now))
	}
	return out
}

func (v *viewer) run() {
	last := time.Now()
	lastTitle := last
	frames := 0
	for !v.window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		profiling.ResetFrame()
		glfw.PollEvents()
		v.handleInput(float32(dt))
		v.follow()

		if hood := v.session.Manager.Neighborhood(); hood != nil {
			hood.SetBudget(config.GetBudget())
		}
		v.session.Tick(now)
		v.renderer.Render(now, dt)
		v.window.SwapBuffers()
		v.input.PostUpdate()

		frames++
		if now.Sub(lastTitle) >= time.Second {
			v.window.SetTitle(v.title(frames))
			frames = 0
			lastTitle = now
		}
		v.limiter.Wait(config.GetFPSLimit())
	}
}

func (v *viewer) handleInput(dt float32) {
	in := v.input
	cam := v.renderer.Camera()

	speed := cam.Distance * 0.8
	if in.IsActive(input.ActionFast) {
		speed *= 3
	}
	cam.Pan(in.Axis(input.ActionPanForward, input.ActionPanBackward)*speed*dt,
		in.Axis(input.ActionPanRight, input.ActionPanLeft)*speed*dt)
	cam.Orbit(in.Axis(input.ActionOrbitRight, input.ActionOrbitLeft)*1.5*dt,
		in.Axis(input.ActionTiltUp, input.ActionTiltDown)*dt)
	if s := in.Scroll(); s != 0 {
		cam.Zoom(float32(1 - 0.1*s))
	}

	m := v.session.Manager
	if in.JustPressed(input.ActionToggleChunkColors) {
		config.SetChunkColors(!config.GetChunkColors())
		m.ApplyChunkColors(config.GetChunkColors())
	}
	if in.JustPressed(input.ActionToggleClutter) {
		v.showClutter = !v.showClutter
	}
	if in.JustPressed(input.ActionRadiusUp) || in.JustPressed(input.ActionRadiusDown) {
		r := config.GetRadius()
		if in.JustPressed(input.ActionRadiusUp) {
			r++
		} else {
			r--
		}
		config.SetRadius(r)
		if err := m.SetRadius(config.GetRadius()); err != nil {
			log.Printf("hexview: radius %d: %v", config.GetRadius(), err)
		}
	}
	if in.JustPressed(input.ActionReseed) {
		m.Retune(func(p *world.Params) { p.Seed++ })
		log.Printf("hexview: reseeded to %d", m.Grid().Generator().Params().Seed)
	}
	if in.JustPressed(input.ActionToggleProfiling) {
		log.Printf("hexview: %s", profiling.TopN(5))
	}
	if in.JustPressed(input.ActionQuit) {
		v.window.SetShouldClose(true)
	}
}

// follow recenters the window when the camera target crosses into another chunk.
func (v *viewer) follow() {
	t := v.renderer.Camera().Target
	c := v.session.ChunkAt(t.X(), t.Z())
	if c == v.center {
		return
	}
	v.center = c
	v.session.Manager.SetCenterChunk(c.X, c.Y, stream.MoveOptions{Trail: v.cfg.Stream.Trail.Std()})
}

func (v *viewer) title(frames int) string {
	hood := v.session.Manager.Neighborhood()
	if hood == nil {
		return "hexview"
	}
	st := hood.Stats()
	return fmt.Sprintf("hexview  %d fps  chunk (%d,%d)  r=%d  %d/%d hexes  queued %d",
		frames, v.center.X, v.center.Y, config.GetRadius(), st.Visible, st.Capacity, st.Remaining)
}

func (v *viewer) cleanup() {
	v.session.Cleanup()
	v.renderer.Dispose()
}
