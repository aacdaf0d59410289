package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key
type Action int

const (
	ActionPanForward Action = iota
	ActionPanBackward
	ActionPanLeft
	ActionPanRight
	ActionOrbitLeft
	ActionOrbitRight
	ActionTiltUp
	ActionTiltDown
	ActionRadiusUp
	ActionRadiusDown
	ActionToggleChunkColors
	ActionToggleClutter
	ActionToggleProfiling
	ActionReseed
	ActionFast
	ActionQuit
	ActionCount // sentinel for array sizing
)

var defaultBindings = []struct {
	key    glfw.Key
	action Action
}{
	{glfw.KeyW, ActionPanForward},
	{glfw.KeyUp, ActionPanForward},
	{glfw.KeyS, ActionPanBackward},
	{glfw.KeyDown, ActionPanBackward},
	{glfw.KeyA, ActionPanLeft},
	{glfw.KeyLeft, ActionPanLeft},
	{glfw.KeyD, ActionPanRight},
	{glfw.KeyRight, ActionPanRight},
	{glfw.KeyQ, ActionOrbitLeft},
	{glfw.KeyE, ActionOrbitRight},
	{glfw.KeyR, ActionTiltUp},
	{glfw.KeyF, ActionTiltDown},
	{glfw.KeyEqual, ActionRadiusUp},
	{glfw.KeyKPAdd, ActionRadiusUp},
	{glfw.KeyMinus, ActionRadiusDown},
	{glfw.KeyKPSubtract, ActionRadiusDown},
	{glfw.KeyC, ActionToggleChunkColors},
	{glfw.KeyT, ActionToggleClutter},
	{glfw.KeyV, ActionToggleProfiling},
	{glfw.KeyN, ActionReseed},
	{glfw.KeyLeftShift, ActionFast},
	{glfw.KeyRightShift, ActionFast},
	{glfw.KeyEscape, ActionQuit},
}

// Manager maps keys to actions and tracks held and edge state. Events arrive
// from GLFW callbacks; queries happen on the frame loop.
type Manager struct {
	mu sync.RWMutex

	keyToActions map[glfw.Key][]Action

	current      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	scroll float64 // accumulated wheel offset since the last PostUpdate
}

// NewManager creates a Manager with the default bindings.
func NewManager() *Manager {
	im := &Manager{keyToActions: make(map[glfw.Key][]Action)}
	for _, b := range defaultBindings {
		im.BindKey(b.key, b.action)
	}
	return im
}

// BindKey binds a key to an action. Several keys may share an action.
func (im *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *Manager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.keyToActions, key)
}

// HandleKeyEvent updates action state for one key event.
func (im *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	pressed := action == glfw.Press || action == glfw.Repeat
	for _, act := range im.keyToActions[key] {
		if pressed && !im.current[act] {
			im.justPressed[act] = true
		}
		if !pressed && im.current[act] {
			im.justReleased[act] = true
		}
		im.current[act] = pressed
	}
}

// HandleScroll accumulates a wheel event.
func (im *Manager) HandleScroll(yoff float64) {
	im.mu.Lock()
	im.scroll += yoff
	im.mu.Unlock()
}

// Attach installs key and scroll callbacks on window.
func (im *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		im.HandleScroll(yoff)
	})
}

// PostUpdate ends the frame: edge flags and the scroll accumulator reset.
func (im *Manager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.justPressed = [ActionCount]bool{}
	im.justReleased = [ActionCount]bool{}
	im.scroll = 0
}

// IsActive reports whether the action is held.
func (im *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.current[action]
}

// JustPressed reports whether the action went down this frame.
func (im *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.justPressed[action]
}

// JustReleased reports whether the action went up this frame.
func (im *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.justReleased[action]
}

// Axis returns +1, -1 or 0 from a pair of opposing actions.
func (im *Manager) Axis(pos, neg Action) float32 {
	var v float32
	if im.IsActive(pos) {
		v++
	}
	if im.IsActive(neg) {
		v--
	}
	return v
}

// Scroll returns the wheel offset accumulated this frame.
func (im *Manager) Scroll() float64 {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.scroll
}
