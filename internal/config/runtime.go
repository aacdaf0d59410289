package config

import (
	"sync"
	"time"
)

// MaxRadius bounds the neighborhood radius; capacity grows with (2r+1)^2.
const MaxRadius = 6

// RuntimeSettings are the knobs the viewer changes while running.
type RuntimeSettings struct {
	mu          sync.RWMutex
	radius      int
	chunkColors bool
	budget      time.Duration
	fpsLimit    int
}

var runtimeSettings = &RuntimeSettings{
	radius:   2,
	budget:   6 * time.Millisecond,
	fpsLimit: 120,
}

// Apply seeds the runtime settings from a loaded config.
func Apply(c *Config) {
	SetRadius(c.Stream.Radius)
	SetChunkColors(c.Stream.ChunkColors)
	SetBudget(c.Stream.Budget.Std())
	SetFPSLimit(c.Viewer.FPSLimit)
}

// GetRadius returns the neighborhood radius in chunks
func GetRadius() int {
	runtimeSettings.mu.RLock()
	defer runtimeSettings.mu.RUnlock()
	return runtimeSettings.radius
}

// SetRadius sets the neighborhood radius, clamped to [0, MaxRadius]
func SetRadius(r int) {
	runtimeSettings.mu.Lock()
	defer runtimeSettings.mu.Unlock()
	runtimeSettings.radius = max(0, min(r, MaxRadius))
}

// GetChunkColors reports whether hexes are tinted by chunk instead of biome
func GetChunkColors() bool {
	runtimeSettings.mu.RLock()
	defer runtimeSettings.mu.RUnlock()
	return runtimeSettings.chunkColors
}

// SetChunkColors toggles the chunk tint debug mode
func SetChunkColors(enabled bool) {
	runtimeSettings.mu.Lock()
	defer runtimeSettings.mu.Unlock()
	runtimeSettings.chunkColors = enabled
}

// GetBudget returns the per-frame streaming time budget
func GetBudget() time.Duration {
	runtimeSettings.mu.RLock()
	defer runtimeSettings.mu.RUnlock()
	return runtimeSettings.budget
}

// SetBudget sets the streaming budget, clamped to [0, 50ms]. Zero means one
// slice per frame.
func SetBudget(d time.Duration) {
	runtimeSettings.mu.Lock()
	defer runtimeSettings.mu.Unlock()
	runtimeSettings.budget = max(0, min(d, 50*time.Millisecond))
}

// GetFPSLimit returns the frame cap, 0 for unlimited
func GetFPSLimit() int {
	runtimeSettings.mu.RLock()
	defer runtimeSettings.mu.RUnlock()
	return runtimeSettings.fpsLimit
}

// SetFPSLimit sets the frame cap; negative values disable it
func SetFPSLimit(fps int) {
	runtimeSettings.mu.Lock()
	defer runtimeSettings.mu.Unlock()
	runtimeSettings.fpsLimit = max(0, fps)
}
