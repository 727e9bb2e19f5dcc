package plot_test

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/plot"
	"github.com/chazu/trellis/pkg/shapes"
)

func TestMatrixInverse(t *testing.T) {
	m := plot.LookAt(r3.Vec{X: 3, Y: 2, Z: 5}, r3.Vec{}, r3.Vec{Z: 1})
	id := m.Mul(m.Inverse())
	want := plot.Identity()
	got := [...]float64{id.X00, id.X11, id.X22, id.X33, id.X01, id.X10, id.X23}
	exp := [...]float64{want.X00, want.X11, want.X22, want.X33, want.X01, want.X10, want.X23}
	for i := range got {
		if math.Abs(got[i]-exp[i]) > 1e-9 {
			t.Fatalf("M * M^-1 = %+v, want identity", id)
		}
	}
}

func TestLookAtMapsFocalPointToAxis(t *testing.T) {
	view := plot.LookAt(r3.Vec{X: 10}, r3.Vec{}, r3.Vec{Z: 1})
	p := view.MulPosition(r3.Vec{})
	// The focal point lands on the view axis, 10 units down -z.
	if r3.Norm(r3.Sub(p, r3.Vec{Z: -10})) > 1e-9 {
		t.Fatalf("focal point in view space = %v, want (0, 0, -10)", p)
	}
}

func TestPerspectiveDepthOrder(t *testing.T) {
	proj := plot.Perspective(60, 1, 0.1, 100)
	near := proj.MulPositionW(r3.Vec{Z: -1})
	far := proj.MulPositionW(r3.Vec{Z: -50})
	zn := near.DivScalar(near.W).Z
	zf := far.DivScalar(far.W).Z
	if zn >= zf {
		t.Fatalf("near depth %g not in front of far depth %g", zn, zf)
	}
}

func TestCameraFitCoversBounds(t *testing.T) {
	c := plot.NewCamera(r3.Vec{X: 10, Y: 10, Z: 10}, r3.Vec{})
	c.FOV = 1
	box := r3.Box{Min: r3.Vec{X: -2, Y: -2, Z: -2}, Max: r3.Vec{X: 2, Y: 2, Z: 2}}
	c.Fit([]r3.Box{box}, 1)

	transform := c.Matrix(1)
	for _, corner := range []r3.Vec{box.Min, box.Max, {X: 2, Y: -2, Z: 2}} {
		clip := transform.MulPositionW(corner)
		ndc := clip.DivScalar(clip.W)
		if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 {
			t.Fatalf("corner %v outside the fitted frustum: %+v", corner, ndc)
		}
	}
}

func TestScreenshotPNG(t *testing.T) {
	cube, err := shapes.Cube(1)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	pl := plot.NewPlotter()
	pl.Size = 64
	pl.Scale = 2
	if err := pl.AddMesh(cube, plot.HexColor("4488cc")); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	pl.AddAxes(r3.Vec{}, 1)

	var buf bytes.Buffer
	if err := pl.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("image bounds = %v, want 64x64", img.Bounds())
	}

	// The cube fills the view center, so the center pixel is not
	// the background.
	r, g, b, _ := img.At(32, 32).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Fatal("center pixel still background, nothing rendered")
	}
}

func TestAddMeshEmpty(t *testing.T) {
	pl := plot.NewPlotter()
	if err := pl.AddMesh(grid.NewPolyData(), plot.White); err == nil {
		t.Fatal("empty mesh accepted")
	}
}

func TestDrawMeshDepthOrder(t *testing.T) {
	// A small red square in front of a large blue square. The center
	// pixel must come out red.
	red, err := shapes.Plane(1, 1, 1, 1)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}
	red.Translate(r3.Vec{Z: 1})
	blue, err := shapes.Plane(4, 4, 1, 1)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}

	pl := plot.NewPlotter()
	pl.Size = 64
	pl.Scale = 1
	cam := plot.NewCamera(r3.Vec{Z: 10}, r3.Vec{})
	cam.Up = r3.Vec{Y: 1}
	cam.FOV = 40
	pl.SetCamera(cam)
	if err := pl.AddMesh(blue, plot.Color{B: 1, A: 1}); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	if err := pl.AddMesh(red, plot.Color{R: 1, A: 1}); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}

	var buf bytes.Buffer
	if err := pl.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	r, _, b, _ := img.At(32, 32).RGBA()
	if r <= b {
		t.Fatalf("center pixel r=%d b=%d, want the near red square on top", r, b)
	}
}
