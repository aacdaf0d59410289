package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point on the ground plane. Yaw turns around +Y,
// pitch tilts down from the horizon.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians
	Pitch    float32 // radians, clamped to (minPitch, maxPitch)

	AspectRatio float32
	FOV         float32 // degrees
	NearPlane   float32
	FarPlane    float32
}

const (
	minPitch    = 0.15
	maxPitch    = 1.5
	minDistance = 4
	maxDistance = 400
)

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Distance:  60,
		Yaw:       -math.Pi / 2,
		Pitch:     0.9,
		FOV:       50.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio; a zero height is ignored.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	cp, sp := float32(math.Cos(float64(c.Pitch))), float32(math.Sin(float64(c.Pitch)))
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
	offset := mgl32.Vec3{cp * cy, sp, cp * sy}.Mul(c.Distance)
	return c.Target.Add(offset)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Pan moves the target along the ground, relative to the view direction:
// forward is away from the eye.
func (c *Camera) Pan(forward, right float32) {
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
	fwd := mgl32.Vec3{-cy, 0, -sy}
	side := mgl32.Vec3{sy, 0, -cy}
	c.Target = c.Target.Add(fwd.Mul(forward)).Add(side.Mul(right))
}

// Orbit rotates around the target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float32) {
	c.Distance = mgl32.Clamp(c.Distance*factor, minDistance, maxDistance)
}
