package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Camera is an orthographic view that orbits the centre of the scene.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64

	center dynamo.Vec3
	radius float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: -0.6, Pitch: 0.35, Zoom: 1, radius: 1}
}

func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centres the view on points and scales it so all of them are visible
// at any rotation.
func (c *Camera) Fit(points []dynamo.Vec3) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = dynamo.Vec3{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = dynamo.Vec3{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	c.center = r3.Scale(0.5, r3.Add(lo, hi))

	c.radius = 0
	for _, p := range points {
		c.radius = math.Max(c.radius, r3.Norm(r3.Sub(p, c.center)))
	}
	if c.radius < 1e-9 {
		c.radius = 1
	}
}

func (c *Camera) view(p dynamo.Vec3) dynamo.Vec3 {
	p = r3.Sub(p, c.center)
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p.Y, p.Z = p.Y*cp-p.Z*sp, p.Y*sp+p.Z*cp
	return p
}

// Project maps a world point to dot coordinates on a w x h dot surface and
// reports its depth. +Y in the world is up on screen.
func (c *Camera) Project(p dynamo.Vec3, w, h int) (x, y int, depth float64) {
	v := c.view(p)
	half := 0.45 * math.Min(float64(w), float64(h)) * c.Zoom / c.radius
	x = int(math.Round(float64(w)/2 + v.X*half))
	y = int(math.Round(float64(h)/2 - v.Y*half))
	return x, y, v.Z
}
