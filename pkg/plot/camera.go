package plot

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera describes the viewpoint of a render. FOV is the vertical
// field of view in degrees.
type Camera struct {
	Position   r3.Vec
	FocalPoint r3.Vec
	Up         r3.Vec
	FOV        float64
	Near, Far  float64
}

// NewCamera returns a camera at position looking at the focal point
// with z up.
func NewCamera(position, focalPoint r3.Vec) *Camera {
	return &Camera{
		Position:   position,
		FocalPoint: focalPoint,
		Up:         r3.Vec{Z: 1},
		FOV:        30,
		Near:       0.1,
		Far:        1000,
	}
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() Matrix {
	return LookAt(c.Position, c.FocalPoint, c.Up)
}

// Matrix returns the combined world-to-clip transform for the given
// aspect ratio.
func (c *Camera) Matrix(aspect float64) Matrix {
	return Perspective(c.FOV, aspect, c.Near, c.Far).Mul(c.ViewMatrix())
}

// Fit widens the field of view until all the given bounding box
// corners are inside the frustum, with a small margin.
func (c *Camera) Fit(boxes []r3.Box, aspect float64) {
	if len(boxes) == 0 {
		return
	}
	view := c.ViewMatrix()
	var maxAngleX, maxAngleY float64
	for _, box := range boxes {
		for _, corner := range boxCorners(box) {
			p := view.MulPosition(corner)
			// The camera looks down -z in view space.
			absZ := math.Abs(p.Z)
			if absZ < 1e-6 {
				continue
			}
			maxAngleX = math.Max(maxAngleX, math.Atan(math.Abs(p.X)/absZ))
			maxAngleY = math.Max(maxAngleY, math.Atan(math.Abs(p.Y)/absZ))
		}
	}
	fovFromY := 2 * maxAngleY
	fovFromX := 2 * math.Atan(math.Tan(maxAngleX)/aspect)
	fov := math.Max(fovFromX, fovFromY) * (180 / math.Pi) * 1.05
	if fov > 0 {
		c.FOV = fov
	}
}

func boxCorners(b r3.Box) []r3.Vec {
	return []r3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}
