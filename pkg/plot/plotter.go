// Package plot renders mesh datasets to images with a software
// rasterizer. A Plotter collects meshes and annotation, positions a
// camera and writes PNG screenshots.
package plot

import (
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/kernel"
)

type meshItem struct {
	mesh    *kernel.TriMesh
	normals []r3.Vec
	color   Color
}

type lineItem struct {
	a, b  r3.Vec
	color Color
}

// Plotter composes a scene of meshes and line annotations.
type Plotter struct {
	// Size is the output image edge in pixels. Scale is the
	// supersampling factor: the scene renders at Size*Scale and is
	// downsampled for the final image.
	Size       int
	Scale      int
	Background Color
	Light      r3.Vec

	camera *Camera
	meshes []meshItem
	lines  []lineItem
	boxes  []r3.Box
}

// NewPlotter returns a plotter with a white background and a light
// over the viewer's shoulder.
func NewPlotter() *Plotter {
	return &Plotter{
		Size:       1024,
		Scale:      2,
		Background: White,
		Light:      r3.Unit(r3.Vec{X: 0.5, Y: 0.5, Z: 1}),
	}
}

// SetCamera pins the camera. Without one the plotter places a camera
// on the scene diagonal and fits the view to the scene bounds.
func (pl *Plotter) SetCamera(c *Camera) { pl.camera = c }

// Camera returns the pinned camera, or nil when the view is
// automatic.
func (pl *Plotter) Camera() *Camera { return pl.camera }

// AddMesh adds a surface to the scene. Non-triangular faces are
// triangulated for rendering.
func (pl *Plotter) AddMesh(p *grid.PolyData, col Color) error {
	m := p.AsTriMesh()
	if m.IsEmpty() {
		return fmt.Errorf("plot: mesh has no faces to render")
	}
	normals := grid.DefaultKernel.PointNormals(m)
	pl.meshes = append(pl.meshes, meshItem{mesh: m, normals: normals, color: col})
	pl.boxes = append(pl.boxes, m.Bounds())
	return nil
}

// AddLine adds a single world-space segment.
func (pl *Plotter) AddLine(a, b r3.Vec, col Color) {
	pl.lines = append(pl.lines, lineItem{a: a, b: b, color: col})
	pl.boxes = append(pl.boxes, r3.Box{Min: minVec(a, b), Max: maxVec(a, b)})
}

// AddAxes draws coordinate axes at origin: x red, y green, z blue.
func (pl *Plotter) AddAxes(origin r3.Vec, length float64) {
	pl.AddLine(origin, r3.Add(origin, r3.Vec{X: length}), Color{R: 1, A: 1})
	pl.AddLine(origin, r3.Add(origin, r3.Vec{Y: length}), Color{G: 1, A: 1})
	pl.AddLine(origin, r3.Add(origin, r3.Vec{Z: length}), Color{B: 1, A: 1})
}

// sceneCamera returns the pinned camera or builds one on the scene
// diagonal fitted to the bounds.
func (pl *Plotter) sceneCamera() *Camera {
	if pl.camera != nil {
		return pl.camera
	}
	center := r3.Vec{}
	radius := 1.0
	if len(pl.boxes) > 0 {
		union := pl.boxes[0]
		for _, b := range pl.boxes[1:] {
			union.Min = minVec(union.Min, b.Min)
			union.Max = maxVec(union.Max, b.Max)
		}
		center = r3.Scale(0.5, r3.Add(union.Min, union.Max))
		radius = r3.Norm(r3.Sub(union.Max, union.Min))
		if radius == 0 {
			radius = 1
		}
	}
	eye := r3.Add(center, r3.Scale(radius*1.5, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})))
	c := NewCamera(eye, center)
	c.Fit(pl.boxes, 1)
	return c
}

// WritePNG renders the scene and writes it as PNG.
func (pl *Plotter) WritePNG(w io.Writer) error {
	if pl.Size <= 0 || pl.Scale <= 0 {
		return fmt.Errorf("plot: size and scale must be positive, got %d and %d", pl.Size, pl.Scale)
	}
	side := pl.Size * pl.Scale
	dc := NewContext(side, side)
	dc.ClearColor = pl.Background
	dc.Clear()
	dc.LineWidth = 2 * float64(pl.Scale)

	transform := pl.sceneCamera().Matrix(1)
	for _, item := range pl.meshes {
		dc.DrawMesh(item.mesh, item.normals, transform, pl.Light, item.color)
	}
	for _, item := range pl.lines {
		dc.DrawLine(item.a, item.b, transform, item.color)
	}

	img := dc.Image()
	if pl.Scale > 1 {
		img = resize.Resize(uint(pl.Size), uint(pl.Size), img, resize.Bilinear)
	}
	return png.Encode(w, img)
}

// Screenshot renders the scene to a PNG file.
func (pl *Plotter) Screenshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pl.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func minVec(a, b r3.Vec) r3.Vec {
	if b.X < a.X {
		a.X = b.X
	}
	if b.Y < a.Y {
		a.Y = b.Y
	}
	if b.Z < a.Z {
		a.Z = b.Z
	}
	return a
}

func maxVec(a, b r3.Vec) r3.Vec {
	if b.X > a.X {
		a.X = b.X
	}
	if b.Y > a.Y {
		a.Y = b.Y
	}
	if b.Z > a.Z {
		a.Z = b.Z
	}
	return a
}
