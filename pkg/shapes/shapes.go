// Package shapes builds parametric surface primitives. The curved
// primitives are evaluated as signed distance fields and polygonized,
// so their resolution is controlled by the octree cell count; the
// flat-sided primitives are built exactly.
package shapes

import (
	"fmt"

	"github.com/soypat/sdf"
	form3 "github.com/soypat/sdf/form3/must3"
	"github.com/soypat/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/kernel"
)

// DefaultResolution is the octree cell count used when a primitive is
// polygonized without an explicit resolution.
const DefaultResolution = 64

// FromSDF3 polygonizes a signed distance field into a triangle
// surface. cells controls the octree resolution along the longest
// axis; zero selects DefaultResolution.
func FromSDF3(s sdf.SDF3, cells int) (*grid.PolyData, error) {
	if cells <= 0 {
		cells = DefaultResolution
	}
	tris, err := render.RenderAll(render.NewOctreeRenderer(s, cells))
	if err != nil {
		return nil, fmt.Errorf("shapes: render: %w", err)
	}
	return grid.FromTriMesh(kernel.FromTriangles(tris)), nil
}

// Sphere builds a sphere of the given radius centered at the origin.
func Sphere(radius float64) (*grid.PolyData, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("shapes: sphere radius must be positive, got %g", radius)
	}
	return FromSDF3(form3.Sphere(radius), 0)
}

// Cylinder builds a cylinder of the given height and radius, axis
// along z, centered at the origin.
func Cylinder(height, radius float64) (*grid.PolyData, error) {
	if height <= 0 || radius <= 0 {
		return nil, fmt.Errorf("shapes: cylinder dimensions must be positive, got h=%g r=%g", height, radius)
	}
	return FromSDF3(form3.Cylinder(height, radius, 0), 0)
}

// Capsule builds a capsule of the given total height and radius, axis
// along z, centered at the origin. Height must exceed the diameter.
func Capsule(height, radius float64) (*grid.PolyData, error) {
	if radius <= 0 || height <= 2*radius {
		return nil, fmt.Errorf("shapes: capsule needs radius > 0 and height > 2*radius, got h=%g r=%g", height, radius)
	}
	// A cylinder whose edge round equals its radius is a capsule.
	return FromSDF3(form3.Cylinder(height, radius, radius), 0)
}

// RoundedBox builds a box with the given side lengths and rounded
// edges, centered at the origin.
func RoundedBox(size r3.Vec, round float64) (*grid.PolyData, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("shapes: box dimensions must be positive, got %v", size)
	}
	return FromSDF3(form3.Box(size, round), 0)
}

// Box builds an exact axis-aligned box with the given side lengths,
// centered at the origin. The surface holds six quads.
func Box(size r3.Vec) (*grid.PolyData, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("shapes: box dimensions must be positive, got %v", size)
	}
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	points := []r3.Vec{
		{X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz},
		{X: hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz},
		{X: -hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: hz},
		{X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz},
	}
	faces := []int64{
		4, 0, 3, 2, 1,
		4, 4, 5, 6, 7,
		4, 0, 1, 5, 4,
		4, 2, 3, 7, 6,
		4, 0, 4, 7, 3,
		4, 1, 2, 6, 5,
	}
	return grid.FromArrays(points, faces, nil)
}

// Cube builds an exact cube with the given side length, centered at
// the origin.
func Cube(side float64) (*grid.PolyData, error) {
	return Box(r3.Vec{X: side, Y: side, Z: side})
}

// Plane builds a flat rectangular surface in the xy plane, centered
// at the origin, subdivided into nx by ny quads.
func Plane(width, height float64, nx, ny int) (*grid.PolyData, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shapes: plane dimensions must be positive, got %g x %g", width, height)
	}
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("shapes: plane subdivisions must be positive, got %d x %d", nx, ny)
	}
	points := make([]r3.Vec, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			points = append(points, r3.Vec{
				X: width * (float64(i)/float64(nx) - 0.5),
				Y: height * (float64(j)/float64(ny) - 0.5),
			})
		}
	}
	var faces []int64
	stride := int64(nx + 1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := int64(i) + int64(j)*stride
			faces = append(faces, 4, a, a+1, a+1+stride, a+stride)
		}
	}
	return grid.FromArrays(points, faces, nil)
}
