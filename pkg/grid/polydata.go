package grid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
	"github.com/chazu/trellis/pkg/kernel"
)

// PolyData is a polygonal surface: a point set plus padded vertex,
// line and face connectivity arrays.
type PolyData struct {
	dataset
	verts cells.Array
	lines cells.Array
	faces cells.Array

	obb kernel.OBBTree // built on demand, reset on mutation
}

// NewPolyData returns an empty surface.
func NewPolyData() *PolyData {
	return &PolyData{}
}

// FromPoints builds a surface from bare points. Each point is assigned
// its own Vertex cell, the encoding for connectivity-free point clouds.
func FromPoints(points []r3.Vec) *PolyData {
	p := &PolyData{}
	p.points = points
	p.verts = cells.VertexCells(len(points))
	return p
}

// FromArrays builds a surface from points and padded face and/or line
// arrays. Either array may be nil; when both are nil the result is a
// point cloud with one Vertex cell per point.
func FromArrays(points []r3.Vec, faces, lines []int64) (*PolyData, error) {
	p := &PolyData{}
	p.points = points

	if faces == nil && lines == nil {
		p.verts = cells.VertexCells(len(points))
		return p, nil
	}
	if faces != nil {
		fa, err := cells.ParseArray(faces)
		if err != nil {
			return nil, fmt.Errorf("%w: faces: %w", ErrInvalidInput, err)
		}
		if max := fa.MaxPointID(); max >= int64(len(points)) {
			return nil, fmt.Errorf("grid: faces reference point %d but only %d points given", max, len(points))
		}
		p.faces = fa
	}
	if lines != nil {
		la, err := cells.ParseArray(lines)
		if err != nil {
			return nil, fmt.Errorf("%w: lines: %w", ErrInvalidInput, err)
		}
		if max := la.MaxPointID(); max >= int64(len(points)) {
			return nil, fmt.Errorf("grid: lines reference point %d but only %d points given", max, len(points))
		}
		p.lines = la
	}
	return p, nil
}

// FromTriMesh converts a kernel triangle mesh to a surface.
func FromTriMesh(m *kernel.TriMesh) *PolyData {
	points := make([]r3.Vec, m.VertexCount())
	for i := range points {
		points[i] = m.Vertex(i)
	}
	lists := make([][]int64, m.TriangleCount())
	for i := range lists {
		lists[i] = []int64{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
	}
	p := &PolyData{}
	p.points = points
	p.faces = cells.NewArray(lists)
	return p
}

// Copy returns a deep copy.
func (p *PolyData) Copy() *PolyData {
	out := &PolyData{}
	p.dataset.copyInto(&out.dataset)
	out.verts = p.verts.Clone()
	out.lines = p.lines.Clone()
	out.faces = p.faces.Clone()
	return out
}

// NVerts returns the number of vertex cells.
func (p *PolyData) NVerts() int { return p.verts.NCells() }

// NLines returns the number of line cells.
func (p *PolyData) NLines() int { return p.lines.NCells() }

// NFaces returns the number of face cells.
func (p *PolyData) NFaces() int { return p.faces.NCells() }

// NCells returns the total cell count across verts, lines and faces.
func (p *PolyData) NCells() int {
	return p.verts.NCells() + p.lines.NCells() + p.faces.NCells()
}

// Verts returns the padded vertex cell array.
func (p *PolyData) Verts() []int64 { return p.verts.Data() }

// Lines returns the padded line cell array.
func (p *PolyData) Lines() []int64 { return p.lines.Data() }

// Faces returns the padded face cell array.
func (p *PolyData) Faces() []int64 { return p.faces.Data() }

// SetVerts replaces the vertex cells with a padded array.
func (p *PolyData) SetVerts(data []int64) error {
	a, err := cells.ParseArray(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	p.verts = a
	p.obb = nil
	return nil
}

// SetLines replaces the line cells with a padded array.
func (p *PolyData) SetLines(data []int64) error {
	a, err := cells.ParseArray(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	p.lines = a
	p.obb = nil
	return nil
}

// SetFaces replaces the face cells with a padded array.
func (p *PolyData) SetFaces(data []int64) error {
	a, err := cells.ParseArray(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	p.faces = a
	p.obb = nil
	return nil
}

// SetCellData attaches a named per-cell array; its length must match
// the total cell count.
func (p *PolyData) SetCellData(name string, values []float64) error {
	return p.setCellData(name, values, p.NCells())
}

// IsAllTriangles reports whether the surface consists solely of
// triangular faces, with no line or vertex cells.
func (p *PolyData) IsAllTriangles() bool {
	if p.faces.IsEmpty() || !p.lines.IsEmpty() || !p.verts.IsEmpty() {
		return false
	}
	size, uniform := p.faces.UniformSize()
	return uniform && size == 3
}

// Triangulate returns a copy with every face converted to triangles by
// fan triangulation. Line and vertex cells are dropped.
func (p *PolyData) Triangulate() *PolyData {
	var tris [][]int64
	p.faces.ForEach(func(_ int, pts []int64) {
		for i := 1; i+1 < len(pts); i++ {
			tris = append(tris, []int64{pts[0], pts[i], pts[i+1]})
		}
	})
	out := &PolyData{}
	p.dataset.copyInto(&out.dataset)
	out.cellData = nil // cell count changed
	out.faces = cells.NewArray(tris)
	return out
}

// AsTriMesh converts the surface to the kernel exchange mesh,
// triangulating non-triangular faces first.
func (p *PolyData) AsTriMesh() *kernel.TriMesh {
	m := &kernel.TriMesh{
		Vertices: make([]float64, 0, 3*len(p.points)),
	}
	for _, pt := range p.points {
		m.Vertices = append(m.Vertices, pt.X, pt.Y, pt.Z)
	}
	p.faces.ForEach(func(_ int, pts []int64) {
		for i := 1; i+1 < len(pts); i++ {
			m.AppendTriangle(pts[0], pts[i], pts[i+1])
		}
	})
	return m
}

// Area returns the total surface area.
func (p *PolyData) Area() (float64, error) {
	props, err := DefaultKernel.MassProperties(p.AsTriMesh())
	if err != nil {
		return 0, err
	}
	return props.Area, nil
}

// Volume returns the volume enclosed by the surface. The result is
// only meaningful for closed surfaces.
func (p *PolyData) Volume() (float64, error) {
	props, err := DefaultKernel.MassProperties(p.AsTriMesh())
	if err != nil {
		return 0, err
	}
	return props.Volume, nil
}

// PointNormals returns one unit normal per point.
func (p *PolyData) PointNormals() []r3.Vec {
	return DefaultKernel.PointNormals(p.AsTriMesh())
}

// CellNormals returns one unit normal per triangulated face cell.
func (p *PolyData) CellNormals() []r3.Vec {
	return DefaultKernel.CellNormals(p.AsTriMesh())
}

// FaceNormals is an alias for CellNormals.
func (p *PolyData) FaceNormals() []r3.Vec {
	return p.CellNormals()
}

// NOpenEdges returns the number of boundary and non-manifold edges.
// A watertight surface has none.
func (p *PolyData) NOpenEdges() int {
	fe := DefaultKernel.FeatureEdges(p.AsTriMesh())
	return len(fe.Boundary) + len(fe.NonManifold)
}

// OBBTree returns the oriented-bounding-box tree for the surface,
// building it on first use. Mutating the cell arrays or the points
// resets it.
func (p *PolyData) OBBTree() kernel.OBBTree {
	if p.obb == nil {
		p.obb = DefaultKernel.NewOBBTree(p.AsTriMesh())
	}
	return p.obb
}

// The point transforms shadow the embedded dataset methods so that a
// cached spatial tree never answers queries against stale geometry.

// Translate shifts every point by v in place.
func (p *PolyData) Translate(v r3.Vec) {
	p.dataset.Translate(v)
	p.obb = nil
}

// Scale multiplies every point by f about the origin, in place.
func (p *PolyData) Scale(f float64) {
	p.dataset.Scale(f)
	p.obb = nil
}

// RotateX rotates the points about the x axis by angle degrees.
// When about is non-nil the rotation is centered on that point.
func (p *PolyData) RotateX(angle float64, about *r3.Vec) {
	p.RotateVector(r3.Vec{X: 1}, angle, about)
}

// RotateY rotates the points about the y axis by angle degrees.
func (p *PolyData) RotateY(angle float64, about *r3.Vec) {
	p.RotateVector(r3.Vec{Y: 1}, angle, about)
}

// RotateZ rotates the points about the z axis by angle degrees.
func (p *PolyData) RotateZ(angle float64, about *r3.Vec) {
	p.RotateVector(r3.Vec{Z: 1}, angle, about)
}

// RotateVector rotates the points about an arbitrary axis by angle
// degrees, optionally centered on a point.
func (p *PolyData) RotateVector(axis r3.Vec, angle float64, about *r3.Vec) {
	p.dataset.RotateVector(axis, angle, about)
	p.obb = nil
}

// BooleanDifference cuts the other surface out of this one.
func (p *PolyData) BooleanDifference(other *PolyData) (*PolyData, error) {
	m, err := DefaultKernel.Difference(p.AsTriMesh(), other.AsTriMesh())
	if err != nil {
		return nil, err
	}
	return FromTriMesh(m), nil
}

// Subtract is an alias for BooleanDifference.
func (p *PolyData) Subtract(other *PolyData) (*PolyData, error) {
	return p.BooleanDifference(other)
}

// BooleanUnion merges this surface with another.
func (p *PolyData) BooleanUnion(other *PolyData) (*PolyData, error) {
	m, err := DefaultKernel.Union(p.AsTriMesh(), other.AsTriMesh())
	if err != nil {
		return nil, err
	}
	return FromTriMesh(m), nil
}

// BooleanIntersection keeps the region common to both surfaces.
func (p *PolyData) BooleanIntersection(other *PolyData) (*PolyData, error) {
	m, err := DefaultKernel.Intersect(p.AsTriMesh(), other.AsTriMesh())
	if err != nil {
		return nil, err
	}
	return FromTriMesh(m), nil
}

// Decimate reduces the face count by approximately the given fraction.
func (p *PolyData) Decimate(reduction float64) (*PolyData, error) {
	m, err := DefaultKernel.Decimate(p.AsTriMesh(), reduction)
	if err != nil {
		return nil, err
	}
	return FromTriMesh(m), nil
}

// RemoveCellsMask removes the cells selected by a boolean mask whose
// length must equal the total cell count.
func (p *PolyData) RemoveCellsMask(mask []bool) error {
	ind, err := maskToIndices(mask, p.NCells())
	if err != nil {
		return err
	}
	return p.RemoveCells(ind)
}

// RemoveCells removes cells by index. Indices count verts first, then
// lines, then faces, matching the NCells ordering.
func (p *PolyData) RemoveCells(ind []int) error {
	if err := validCellIndices(ind, p.NCells()); err != nil {
		return err
	}
	drop := make(map[int]bool, len(ind))
	for _, i := range ind {
		drop[i] = true
	}

	base := 0
	filter := func(a cells.Array) cells.Array {
		var kept [][]int64
		a.ForEach(func(i int, pts []int64) {
			if !drop[base+i] {
				cell := make([]int64, len(pts))
				copy(cell, pts)
				kept = append(kept, cell)
			}
		})
		base += a.NCells()
		return cells.NewArray(kept)
	}
	p.verts = filter(p.verts)
	p.lines = filter(p.lines)
	p.faces = filter(p.faces)
	p.cellData = nil
	p.obb = nil
	return nil
}
