package plot

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// Context is a depth-buffered software rasterizer target.
type Context struct {
	Width       int
	Height      int
	ColorBuffer *image.NRGBA
	DepthBuffer []float64
	ClearColor  Color
	LineWidth   float64

	screenMatrix Matrix
	locks        []sync.Mutex
}

// NewContext returns a cleared render target of the given pixel size.
func NewContext(width, height int) *Context {
	dc := &Context{
		Width:        width,
		Height:       height,
		ColorBuffer:  image.NewNRGBA(image.Rect(0, 0, width, height)),
		DepthBuffer:  make([]float64, width*height),
		ClearColor:   White,
		LineWidth:    2,
		screenMatrix: Screen(width, height),
		locks:        make([]sync.Mutex, 256),
	}
	dc.Clear()
	return dc
}

// Image returns the rendered image.
func (dc *Context) Image() image.Image { return dc.ColorBuffer }

// Clear resets the color buffer to the clear color and the depth
// buffer to the far plane.
func (dc *Context) Clear() {
	nrgba := dc.ClearColor.NRGBA()
	row := make([]uint8, dc.Width*4)
	for x := 0; x < dc.Width; x++ {
		i := x * 4
		row[i+0] = nrgba.R
		row[i+1] = nrgba.G
		row[i+2] = nrgba.B
		row[i+3] = nrgba.A
	}
	pix := dc.ColorBuffer.Pix
	stride := dc.ColorBuffer.Stride
	for y := 0; y < dc.Height; y++ {
		copy(pix[y*stride:], row)
	}
	for i := range dc.DepthBuffer {
		dc.DepthBuffer[i] = math.MaxFloat64
	}
}

// DrawMesh renders a shaded triangle surface. The transform maps
// world space to clip space, normals holds one unit normal per mesh
// vertex and light is the direction toward the light in world space.
// Surfaces are lit from both sides.
func (dc *Context) DrawMesh(m *kernel.TriMesh, normals []r3.Vec, transform Matrix, light r3.Vec, col Color) {
	light = r3.Unit(light)

	var wg sync.WaitGroup
	wn := runtime.NumCPU()
	wg.Add(wn)
	for wi := 0; wi < wn; wi++ {
		go func(wi int) {
			defer wg.Done()
			for i := wi; i < m.TriangleCount(); i += wn {
				t := m.Triangle(i)
				var shades [3]Color
				var clip [3]VecW
				for j := 0; j < 3; j++ {
					id := m.Indices[3*i+j]
					diffuse := math.Abs(r3.Dot(normals[id], light))
					shades[j] = col.MulScalar(0.3 + 0.7*diffuse)
					clip[j] = transform.MulPositionW(t[j])
				}
				dc.drawClippedTriangle(clip, shades)
			}
		}(wi)
	}
	wg.Wait()
}

// DrawLine renders a world-space segment as a screen-space quad of
// LineWidth pixels.
func (dc *Context) DrawLine(a, b r3.Vec, transform Matrix, col Color) {
	ca := transform.MulPositionW(a)
	cb := transform.MulPositionW(b)
	if ca.W <= 1e-9 || cb.W <= 1e-9 {
		return
	}
	s0 := dc.screenMatrix.MulPosition(ca.DivScalar(ca.W).Vec())
	s1 := dc.screenMatrix.MulPosition(cb.DivScalar(cb.W).Vec())

	d := r3.Sub(s1, s0)
	d.Z = 0
	if r3.Norm(d) < 1e-9 {
		return
	}
	n := r3.Scale(dc.LineWidth/2, r3.Unit(r3.Vec{X: -d.Y, Y: d.X}))
	s00 := r3.Add(s0, n)
	s01 := r3.Sub(s0, n)
	s10 := r3.Add(s1, n)
	s11 := r3.Sub(s1, n)
	dc.rasterize([3]r3.Vec{s00, s01, s10}, [3]Color{col, col, col})
	dc.rasterize([3]r3.Vec{s01, s11, s10}, [3]Color{col, col, col})
}

// drawClippedTriangle rejects triangles touching the near plane and
// rasterizes the rest. The camera fit keeps scene geometry well
// inside the frustum, so dropped triangles only occur with manually
// misplaced cameras.
func (dc *Context) drawClippedTriangle(clip [3]VecW, shades [3]Color) {
	var screen [3]r3.Vec
	for i, c := range clip {
		if c.W <= 1e-9 {
			return
		}
		screen[i] = dc.screenMatrix.MulPosition(c.DivScalar(c.W).Vec())
	}
	dc.rasterize(screen, shades)
}

func edge(a, b, c r3.Vec) float64 {
	return (b.X-c.X)*(a.Y-c.Y) - (b.Y-c.Y)*(a.X-c.X)
}

func (dc *Context) rasterize(s [3]r3.Vec, shades [3]Color) {
	area := edge(s[0], s[1], s[2])
	if area == 0 {
		return
	}
	if area < 0 {
		s[1], s[2] = s[2], s[1]
		shades[1], shades[2] = shades[2], shades[1]
		area = -area
	}

	x0 := clampInt(int(math.Floor(min3(s[0].X, s[1].X, s[2].X))), 0, dc.Width-1)
	x1 := clampInt(int(math.Ceil(max3(s[0].X, s[1].X, s[2].X))), 0, dc.Width-1)
	y0 := clampInt(int(math.Floor(min3(s[0].Y, s[1].Y, s[2].Y))), 0, dc.Height-1)
	y1 := clampInt(int(math.Ceil(max3(s[0].Y, s[1].Y, s[2].Y))), 0, dc.Height-1)

	p := r3.Vec{X: float64(x0) + 0.5, Y: float64(y0) + 0.5}
	w00 := edge(s[1], s[2], p)
	w01 := edge(s[2], s[0], p)
	w02 := edge(s[0], s[1], p)
	a01 := s[1].Y - s[0].Y
	b01 := s[0].X - s[1].X
	a12 := s[2].Y - s[1].Y
	b12 := s[1].X - s[2].X
	a20 := s[0].Y - s[2].Y
	b20 := s[2].X - s[0].X

	ra := 1 / area
	pix := dc.ColorBuffer.Pix

	for y := y0; y <= y1; y++ {
		w0 := w00
		w1 := w01
		w2 := w02
		for x := x0; x <= x1; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				b0 := w0 * ra
				b1 := w1 * ra
				b2 := w2 * ra
				i := y*dc.Width + x
				z := b0*s[0].Z + b1*s[1].Z + b2*s[2].Z

				if z <= dc.DepthBuffer[i] {
					c := Color{
						R: b0*shades[0].R + b1*shades[1].R + b2*shades[2].R,
						G: b0*shades[0].G + b1*shades[1].G + b2*shades[2].G,
						B: b0*shades[0].B + b1*shades[1].B + b2*shades[2].B,
						A: 1,
					}
					lock := &dc.locks[(x+y)&255]
					lock.Lock()
					if z <= dc.DepthBuffer[i] {
						dc.DepthBuffer[i] = z
						nrgba := c.NRGBA()
						j := i * 4
						pix[j+0] = nrgba.R
						pix[j+1] = nrgba.G
						pix[j+2] = nrgba.B
						pix[j+3] = nrgba.A
					}
					lock.Unlock()
				}
			}
			w0 += a12
			w1 += a20
			w2 += a01
		}
		w00 += b12
		w01 += b20
		w02 += b01
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
