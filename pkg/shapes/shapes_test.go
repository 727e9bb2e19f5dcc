package shapes_test

import (
	"math"
	"testing"

	"github.com/beorn7/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/shapes"
)

func TestBox(t *testing.T) {
	b, err := shapes.Box(r3.Vec{X: 2, Y: 3, Z: 4})
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	if b.NFaces() != 6 {
		t.Fatalf("NFaces = %d, want 6", b.NFaces())
	}
	vol, err := b.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(24, vol, 1e-9) {
		t.Fatalf("Volume = %g, want 24", vol)
	}
	c := b.Center()
	if r3.Norm(c) > 1e-9 {
		t.Fatalf("Center = %v, want origin", c)
	}
}

func TestBoxInvalid(t *testing.T) {
	if _, err := shapes.Box(r3.Vec{X: 1, Y: -1, Z: 1}); err == nil {
		t.Fatal("negative side accepted")
	}
}

func TestCube(t *testing.T) {
	c, err := shapes.Cube(2)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	vol, err := c.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(8, vol, 1e-9) {
		t.Fatalf("Volume = %g, want 8", vol)
	}
}

func TestSphere(t *testing.T) {
	s, err := shapes.Sphere(1)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	if !s.IsAllTriangles() {
		t.Fatal("polygonized sphere not all triangles")
	}
	if n := s.NOpenEdges(); n != 0 {
		t.Fatalf("NOpenEdges = %d, want watertight", n)
	}
	vol, err := s.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	want := 4 * math.Pi / 3
	if math.Abs(vol-want)/want > 0.05 {
		t.Fatalf("Volume = %g, want within 5%% of %g", vol, want)
	}
}

func TestSphereInvalid(t *testing.T) {
	if _, err := shapes.Sphere(0); err == nil {
		t.Fatal("zero radius accepted")
	}
}

func TestCylinder(t *testing.T) {
	c, err := shapes.Cylinder(2, 1)
	if err != nil {
		t.Fatalf("Cylinder: %v", err)
	}
	vol, err := c.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	want := 2 * math.Pi
	if math.Abs(vol-want)/want > 0.05 {
		t.Fatalf("Volume = %g, want within 5%% of %g", vol, want)
	}
	bounds := c.Bounds()
	if math.Abs(bounds.Max.Z-1) > 0.1 || math.Abs(bounds.Min.Z+1) > 0.1 {
		t.Fatalf("Bounds = %v, want z in [-1, 1]", bounds)
	}
}

func TestCapsule(t *testing.T) {
	c, err := shapes.Capsule(4, 1)
	if err != nil {
		t.Fatalf("Capsule: %v", err)
	}
	if n := c.NOpenEdges(); n != 0 {
		t.Fatalf("NOpenEdges = %d, want watertight", n)
	}
	// Cylinder of height h-2r plus two hemispheres.
	vol, err := c.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	want := 2*math.Pi + 4*math.Pi/3
	if math.Abs(vol-want)/want > 0.05 {
		t.Fatalf("Volume = %g, want within 5%% of %g", vol, want)
	}
	if _, err := shapes.Capsule(1, 1); err == nil {
		t.Fatal("height below diameter accepted")
	}
}

func TestPlane(t *testing.T) {
	p, err := shapes.Plane(2, 1, 4, 2)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}
	if p.NFaces() != 8 {
		t.Fatalf("NFaces = %d, want 8", p.NFaces())
	}
	area, err := p.Triangulate().Area()
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if !floats.AlmostEqual(2, area, 1e-9) {
		t.Fatalf("Area = %g, want 2", area)
	}
	if _, err := shapes.Plane(1, 1, 0, 1); err == nil {
		t.Fatal("zero subdivisions accepted")
	}
}
