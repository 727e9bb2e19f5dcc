package grid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
)

// UnstructuredGrid is a mixed-cell grid: points plus per-cell type
// tags and connectivity. Internally the modern encoding is kept (flat
// connectivity plus an offsets array of length NCells+1); the legacy
// padded array is derived on demand.
type UnstructuredGrid struct {
	dataset
	conn    []int64
	offsets []int64
	types   []cells.CellType
}

// NewUnstructuredGrid returns an empty grid.
func NewUnstructuredGrid() *UnstructuredGrid {
	return &UnstructuredGrid{offsets: []int64{0}}
}

// FromCells builds a grid from a padded cell array, one type tag per
// cell and the point set. This is the modern construction signature;
// offsets are generated internally.
func FromCells(padded []int64, types []cells.CellType, points []r3.Vec) (*UnstructuredGrid, error) {
	arr, err := cells.ParseArray(padded)
	if err != nil {
		return nil, err
	}
	offsets, err := cells.GenerateOffsets(types, arr)
	if err != nil {
		return nil, err
	}
	conn, _ := arr.ToModern()
	g := &UnstructuredGrid{conn: conn, offsets: offsets, types: types}
	g.points = points
	if err := g.checkConsistency(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromLegacyCells builds a grid from the legacy four-array form, where
// offset holds the start location of each cell in the padded array and
// must have exactly one entry per cell.
func FromLegacyCells(offset, padded []int64, types []cells.CellType, points []r3.Vec) (*UnstructuredGrid, error) {
	arr, err := cells.ParseArray(padded)
	if err != nil {
		return nil, err
	}
	if len(offset) != arr.NCells() {
		return nil, fmt.Errorf("grid: size of the offset (%d) must match the number of cells (%d)",
			len(offset), arr.NCells())
	}
	// Verify the offsets agree with the padding before discarding them.
	pos := int64(0)
	for i, o := range offset {
		if o != pos {
			return nil, fmt.Errorf("grid: offset %d is %d, but cell %d starts at %d", i, o, i, pos)
		}
		pos += 1 + padded[pos]
	}
	return FromCells(padded, types, points)
}

// FromCellsDict builds a grid from a per-type cell dictionary.
func FromCellsDict(dict map[cells.CellType][][]int64, points []r3.Vec) (*UnstructuredGrid, error) {
	types, arr, err := cells.FromDict(dict, len(points))
	if err != nil {
		return nil, err
	}
	return FromCells(arr.Data(), types, points)
}

// FromPolyData converts a surface into an unstructured grid, mapping
// verts, lines and faces to the corresponding cell types.
func FromPolyData(p *PolyData) (*UnstructuredGrid, error) {
	var padded []int64
	var types []cells.CellType

	add := func(pts []int64, t cells.CellType) {
		padded = append(padded, int64(len(pts)))
		padded = append(padded, pts...)
		types = append(types, t)
	}
	p.verts.ForEach(func(_ int, pts []int64) {
		if len(pts) == 1 {
			add(pts, cells.Vertex)
		} else {
			add(pts, cells.PolyVertex)
		}
	})
	p.lines.ForEach(func(_ int, pts []int64) {
		if len(pts) == 2 {
			add(pts, cells.Line)
		} else {
			add(pts, cells.PolyLine)
		}
	})
	p.faces.ForEach(func(_ int, pts []int64) {
		switch len(pts) {
		case 3:
			add(pts, cells.Triangle)
		case 4:
			add(pts, cells.Quad)
		default:
			add(pts, cells.Polygon)
		}
	})
	return FromCells(padded, types, append([]r3.Vec(nil), p.Points()...))
}

// checkConsistency verifies the sizes of the offsets and cell types
// against the number of cells.
func (g *UnstructuredGrid) checkConsistency() error {
	n := g.NCells()
	if len(g.types) != n {
		return fmt.Errorf("grid: number of cell types (%d) must match the number of cells (%d)",
			len(g.types), n)
	}
	if len(g.offsets) != n+1 {
		return fmt.Errorf("grid: size of the offset (%d) must be one greater than the number of cells (%d)",
			len(g.offsets), n)
	}
	if max := g.maxPointID(); max >= int64(len(g.points)) {
		return fmt.Errorf("grid: cells reference point %d but only %d points given", max, len(g.points))
	}
	return nil
}

func (g *UnstructuredGrid) maxPointID() int64 {
	max := int64(-1)
	for _, id := range g.conn {
		if id > max {
			max = id
		}
	}
	return max
}

// NCells returns the number of cells.
func (g *UnstructuredGrid) NCells() int {
	if len(g.offsets) == 0 {
		return 0
	}
	return len(g.offsets) - 1
}

// Cells returns the legacy padded cell array.
func (g *UnstructuredGrid) Cells() []int64 {
	arr, err := cells.FromModern(g.conn, g.offsets)
	if err != nil {
		return nil
	}
	return arr.Data()
}

// CellConnectivity returns the flat connectivity without padding.
func (g *UnstructuredGrid) CellConnectivity() []int64 { return g.conn }

// Offsets returns the offsets array (length NCells+1).
func (g *UnstructuredGrid) Offsets() []int64 { return g.offsets }

// CellTypes returns the per-cell type tags.
func (g *UnstructuredGrid) CellTypes() []cells.CellType { return g.types }

// CellPoints returns the point IDs of cell i.
func (g *UnstructuredGrid) CellPoints(i int) []int64 {
	return g.conn[g.offsets[i]:g.offsets[i+1]]
}

// CellsDict groups the cells by type. All cell types present must be
// fixed-size.
func (g *UnstructuredGrid) CellsDict() (map[cells.CellType][][]int64, error) {
	arr, err := cells.FromModern(g.conn, g.offsets)
	if err != nil {
		return nil, err
	}
	return cells.ToDict(g.types, arr)
}

// SetCellData attaches a named per-cell array.
func (g *UnstructuredGrid) SetCellData(name string, values []float64) error {
	return g.setCellData(name, values, g.NCells())
}

// Copy returns a deep copy.
func (g *UnstructuredGrid) Copy() *UnstructuredGrid {
	out := &UnstructuredGrid{
		conn:    append([]int64(nil), g.conn...),
		offsets: append([]int64(nil), g.offsets...),
		types:   append([]cells.CellType(nil), g.types...),
	}
	g.dataset.copyInto(&out.dataset)
	return out
}

// LinearCopy returns a copy with quadratic cells re-tagged as their
// linear equivalents. Quadratic triangles and quads additionally get
// their midside points collapsed onto the first corner so they render
// as flat cells; other quadratic types keep their connectivity, whose
// leading points are the linear corners.
func (g *UnstructuredGrid) LinearCopy() *UnstructuredGrid {
	out := g.Copy()
	for i, t := range out.types {
		out.types[i] = t.LinearType()
		off := out.offsets[i]
		switch t {
		case cells.QuadraticTriangle:
			base := out.conn[off]
			for j := int64(3); j < 6; j++ {
				out.conn[off+j] = base
			}
		case cells.QuadraticQuad:
			base := out.conn[off]
			for j := int64(4); j < 8; j++ {
				out.conn[off+j] = base
			}
		}
	}
	return out
}

// RemoveCellsMask removes the cells selected by a boolean mask whose
// length must equal the cell count.
func (g *UnstructuredGrid) RemoveCellsMask(mask []bool) error {
	ind, err := maskToIndices(mask, g.NCells())
	if err != nil {
		return err
	}
	return g.RemoveCells(ind)
}

// RemoveCells removes cells by index.
func (g *UnstructuredGrid) RemoveCells(ind []int) error {
	if err := validCellIndices(ind, g.NCells()); err != nil {
		return err
	}
	drop := make(map[int]bool, len(ind))
	for _, i := range ind {
		drop[i] = true
	}

	var conn []int64
	offsets := []int64{0}
	var types []cells.CellType
	for i := 0; i < g.NCells(); i++ {
		if drop[i] {
			continue
		}
		conn = append(conn, g.CellPoints(i)...)
		offsets = append(offsets, int64(len(conn)))
		types = append(types, g.types[i])
	}
	g.conn, g.offsets, g.types = conn, offsets, types
	g.cellData = nil
	return nil
}

// cellFaces lists the boundary faces of the linear 3D cell types as
// indices into the cell's point list.
var cellFaces = map[cells.CellType][][]int{
	cells.Tetra: {
		{0, 1, 3}, {1, 2, 3}, {2, 0, 3}, {0, 2, 1},
	},
	cells.Hexahedron: {
		{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 1, 5, 4}, {3, 7, 6, 2}, {0, 3, 2, 1}, {4, 5, 6, 7},
	},
	cells.Wedge: {
		{0, 2, 1}, {3, 4, 5}, {0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
	},
	cells.Pyramid: {
		{0, 3, 2, 1}, {0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	},
}

// voxelToHex reorders voxel points (x-fastest) into hexahedron order.
var voxelToHex = []int{0, 1, 3, 2, 4, 5, 7, 6}

// ExtractSurface returns the outer surface of the grid as a PolyData.
// Faces of 3D cells shared by two cells are interior and dropped; 2D,
// 1D and 0D cells pass through. Quadratic cells contribute the faces
// of their linear corner cells.
func (g *UnstructuredGrid) ExtractSurface() *PolyData {
	type faceRec struct {
		pts   []int64
		count int
	}
	boundary := make(map[string]*faceRec)

	addFace := func(pts []int64) {
		key := faceKey(pts)
		if rec, ok := boundary[key]; ok {
			rec.count++
			return
		}
		cell := make([]int64, len(pts))
		copy(cell, pts)
		boundary[key] = &faceRec{pts: cell, count: 1}
	}

	var faceCells, lineCells, vertCells [][]int64
	var faceOrder []string

	for i := 0; i < g.NCells(); i++ {
		pts := g.CellPoints(i)
		t := g.types[i].LinearType()

		switch t {
		case cells.Vertex, cells.PolyVertex:
			vertCells = append(vertCells, append([]int64(nil), pts...))
		case cells.Line, cells.PolyLine:
			lineCells = append(lineCells, append([]int64(nil), pts...))
		case cells.Triangle, cells.Quad, cells.Polygon:
			if n, ok := t.PointCount(); ok && len(pts) > n {
				pts = pts[:n] // quadratic corners only
			}
			faceCells = append(faceCells, append([]int64(nil), pts...))
		case cells.Pixel:
			faceCells = append(faceCells, []int64{pts[0], pts[1], pts[3], pts[2]})
		case cells.Voxel:
			hex := make([]int64, 8)
			for j, v := range voxelToHex {
				hex[j] = pts[v]
			}
			for _, f := range cellFaces[cells.Hexahedron] {
				face := make([]int64, len(f))
				for j, fi := range f {
					face[j] = hex[fi]
				}
				addFace(face)
				faceOrder = append(faceOrder, faceKey(face))
			}
		default:
			faces, ok := cellFaces[t]
			if !ok {
				continue
			}
			for _, f := range faces {
				face := make([]int64, len(f))
				for j, fi := range f {
					face[j] = pts[fi]
				}
				addFace(face)
				faceOrder = append(faceOrder, faceKey(face))
			}
		}
	}

	seen := make(map[string]bool)
	for _, key := range faceOrder {
		if seen[key] {
			continue
		}
		seen[key] = true
		if rec := boundary[key]; rec.count == 1 {
			faceCells = append(faceCells, rec.pts)
		}
	}

	surf := &PolyData{}
	// Keep the full point set; surface cells index into it unchanged.
	surf.points = append([]r3.Vec(nil), g.points...)
	surf.verts = cells.NewArray(vertCells)
	surf.lines = cells.NewArray(lineCells)
	surf.faces = cells.NewArray(faceCells)
	return surf
}

// faceKey builds an orientation-independent key for a cell face.
func faceKey(pts []int64) string {
	sorted := append([]int64(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := make([]byte, 0, 16*len(sorted))
	for _, p := range sorted {
		key = fmt.Appendf(key, "%d,", p)
	}
	return string(key)
}

// Volume returns the volume enclosed by the outer surface.
func (g *UnstructuredGrid) Volume() (float64, error) {
	return g.ExtractSurface().Triangulate().Volume()
}
