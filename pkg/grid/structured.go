package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
)

// StructuredGrid is a curvilinear grid whose points are implicitly
// ordered by an (nx, ny, nz) dimension tuple, x varying fastest.
type StructuredGrid struct {
	dataset
	dims [3]int
}

// NewStructuredGrid returns an empty grid.
func NewStructuredGrid() *StructuredGrid {
	return &StructuredGrid{}
}

// StructuredFromPoints builds a grid from explicit points ordered
// column-major for the given dimensions.
func StructuredFromPoints(dims [3]int, points []r3.Vec) (*StructuredGrid, error) {
	for _, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("grid: dimensions must be positive, got %v", dims)
		}
	}
	if n := dims[0] * dims[1] * dims[2]; n != len(points) {
		return nil, fmt.Errorf("grid: dimensions %v imply %d points, got %d", dims, n, len(points))
	}
	g := &StructuredGrid{dims: dims}
	g.points = points
	return g, nil
}

// StructuredFromRanges builds a grid from per-axis coordinate ranges,
// the meshgrid construction. The grid has len(x) x len(y) x len(z)
// points.
func StructuredFromRanges(x, y, z []float64) (*StructuredGrid, error) {
	if len(x) == 0 || len(y) == 0 || len(z) == 0 {
		return nil, fmt.Errorf("grid: coordinate ranges may not be empty")
	}
	points := make([]r3.Vec, 0, len(x)*len(y)*len(z))
	for _, zc := range z {
		for _, yc := range y {
			for _, xc := range x {
				points = append(points, r3.Vec{X: xc, Y: yc, Z: zc})
			}
		}
	}
	return StructuredFromPoints([3]int{len(x), len(y), len(z)}, points)
}

// Dimensions returns the (nx, ny, nz) point dimensions.
func (g *StructuredGrid) Dimensions() [3]int { return g.dims }

// SetDimensions reinterprets the existing points with new dimensions.
// Their product must match the number of points.
func (g *StructuredGrid) SetDimensions(nx, ny, nz int) error {
	if nx < 1 || ny < 1 || nz < 1 {
		return fmt.Errorf("grid: dimensions must be positive, got (%d, %d, %d)", nx, ny, nz)
	}
	if n := nx * ny * nz; n != len(g.points) {
		return fmt.Errorf("grid: dimensions (%d, %d, %d) imply %d points, got %d",
			nx, ny, nz, n, len(g.points))
	}
	g.dims = [3]int{nx, ny, nz}
	return nil
}

// cellDims returns the per-axis cell counts. Singleton point axes
// still count one cell deep so flat grids keep a cell layer.
func (g *StructuredGrid) cellDims() [3]int {
	var cd [3]int
	for i, d := range g.dims {
		cd[i] = d - 1
		if cd[i] < 1 {
			cd[i] = 1
		}
	}
	return cd
}

// NCells returns the number of cells.
func (g *StructuredGrid) NCells() int {
	if len(g.points) == 0 {
		return 0
	}
	cd := g.cellDims()
	return cd[0] * cd[1] * cd[2]
}

// PointIndex flattens (i, j, k) point coordinates, x varying fastest.
func (g *StructuredGrid) PointIndex(i, j, k int) int {
	return i + g.dims[0]*(j+g.dims[1]*k)
}

// At returns the point at structured coordinates (i, j, k).
func (g *StructuredGrid) At(i, j, k int) r3.Vec {
	return g.points[g.PointIndex(i, j, k)]
}

// X returns the x coordinates of all points in point order.
func (g *StructuredGrid) X() []float64 { return g.component(func(p r3.Vec) float64 { return p.X }) }

// Y returns the y coordinates of all points in point order.
func (g *StructuredGrid) Y() []float64 { return g.component(func(p r3.Vec) float64 { return p.Y }) }

// Z returns the z coordinates of all points in point order.
func (g *StructuredGrid) Z() []float64 { return g.component(func(p r3.Vec) float64 { return p.Z }) }

// PointsMatrix returns the points as an n x 3 dense matrix, one row
// per point in point order.
func (g *StructuredGrid) PointsMatrix() *mat.Dense {
	if len(g.points) == 0 {
		return nil
	}
	m := mat.NewDense(len(g.points), 3, nil)
	for i, p := range g.points {
		m.SetRow(i, []float64{p.X, p.Y, p.Z})
	}
	return m
}

func (g *StructuredGrid) component(f func(r3.Vec) float64) []float64 {
	out := make([]float64, len(g.points))
	for i, p := range g.points {
		out[i] = f(p)
	}
	return out
}

// SetCellData attaches a named per-cell array.
func (g *StructuredGrid) SetCellData(name string, values []float64) error {
	return g.setCellData(name, values, g.NCells())
}

// Copy returns a deep copy.
func (g *StructuredGrid) Copy() *StructuredGrid {
	out := &StructuredGrid{dims: g.dims}
	g.dataset.copyInto(&out.dataset)
	return out
}

// HideCellsMask hides the cells selected by a boolean mask whose
// length must equal the cell count. Cells cannot be removed from a
// structured grid, only hidden.
func (g *StructuredGrid) HideCellsMask(mask []bool) error {
	ind, err := maskToIndices(mask, g.NCells())
	if err != nil {
		return err
	}
	return g.HideCells(ind)
}

// HideCells hides cells by index, marking them in the ghost array.
func (g *StructuredGrid) HideCells(ind []int) error {
	if err := validCellIndices(ind, g.NCells()); err != nil {
		return err
	}
	ghost := g.cellData[GhostArrayName]
	if ghost == nil {
		ghost = make([]float64, g.NCells())
	}
	for _, i := range ind {
		ghost[i] = CellHidden
	}
	return g.SetCellData(GhostArrayName, ghost)
}

// CellVisible reports whether cell i is not hidden.
func (g *StructuredGrid) CellVisible(i int) bool {
	ghost := g.cellData[GhostArrayName]
	return ghost == nil || ghost[i] != CellHidden
}

// ExtractSubset extracts a volume of interest. voi holds inclusive
// (imin, imax, jmin, jmax, kmin, kmax) point extents and rate the
// per-axis sampling steps.
func (g *StructuredGrid) ExtractSubset(voi [6]int, rate [3]int) (*StructuredGrid, error) {
	for i := 0; i < 3; i++ {
		lo, hi := voi[2*i], voi[2*i+1]
		if lo < 0 || hi >= g.dims[i] || lo > hi {
			return nil, fmt.Errorf("grid: VOI axis %d extent [%d, %d] outside [0, %d)", i, lo, hi, g.dims[i])
		}
		if rate[i] < 1 {
			return nil, fmt.Errorf("grid: sampling rate must be positive, got %v", rate)
		}
	}

	var dims [3]int
	for i := 0; i < 3; i++ {
		dims[i] = (voi[2*i+1]-voi[2*i])/rate[i] + 1
	}
	points := make([]r3.Vec, 0, dims[0]*dims[1]*dims[2])
	for k := voi[4]; k <= voi[5]; k += rate[2] {
		for j := voi[2]; j <= voi[3]; j += rate[1] {
			for i := voi[0]; i <= voi[1]; i += rate[0] {
				points = append(points, g.At(i, j, k))
			}
		}
	}
	return StructuredFromPoints(dims, points)
}

// ExtractSurface returns the outer shell of the grid as quads. For a
// flat grid (some dimension of one point) the cell layer itself is
// returned.
func (g *StructuredGrid) ExtractSurface() *PolyData {
	ug, err := g.ToUnstructured()
	if err != nil {
		return NewPolyData()
	}
	return ug.ExtractSurface()
}

// ToUnstructured converts the implicit cells to an explicit
// unstructured grid of hexahedra (or quads for flat grids).
func (g *StructuredGrid) ToUnstructured() (*UnstructuredGrid, error) {
	nx, ny, nz := g.dims[0], g.dims[1], g.dims[2]
	var padded []int64
	var types []cells.CellType

	switch {
	case len(g.points) == 0:
		return NewUnstructuredGrid(), nil
	case nz == 1 && ny == 1:
		for i := 0; i+1 < nx; i++ {
			padded = append(padded, 2, int64(i), int64(i+1))
			types = append(types, cells.Line)
		}
	case nz == 1:
		for j := 0; j+1 < ny; j++ {
			for i := 0; i+1 < nx; i++ {
				padded = append(padded, 4,
					int64(g.PointIndex(i, j, 0)), int64(g.PointIndex(i+1, j, 0)),
					int64(g.PointIndex(i+1, j+1, 0)), int64(g.PointIndex(i, j+1, 0)))
				types = append(types, cells.Quad)
			}
		}
	default:
		for k := 0; k+1 < nz; k++ {
			for j := 0; j+1 < ny; j++ {
				for i := 0; i+1 < nx; i++ {
					padded = append(padded, 8,
						int64(g.PointIndex(i, j, k)), int64(g.PointIndex(i+1, j, k)),
						int64(g.PointIndex(i+1, j+1, k)), int64(g.PointIndex(i, j+1, k)),
						int64(g.PointIndex(i, j, k+1)), int64(g.PointIndex(i+1, j, k+1)),
						int64(g.PointIndex(i+1, j+1, k+1)), int64(g.PointIndex(i, j+1, k+1)))
					types = append(types, cells.Hexahedron)
				}
			}
		}
	}
	return FromCells(padded, types, append([]r3.Vec(nil), g.points...))
}

// Volume returns the volume enclosed by the outer surface.
func (g *StructuredGrid) Volume() (float64, error) {
	return g.ExtractSurface().Triangulate().Volume()
}
