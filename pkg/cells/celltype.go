// Package cells implements the flat connectivity encodings shared by all
// grid types: padded cell arrays, modern offset-based cell arrays, and the
// per-type grouped form used for mixed-cell unstructured grids.
package cells

import "fmt"

// CellType tags a cell with its geometric kind. The numeric values follow
// the VTK cell type enumeration so grids written to .vtk/.vtu files keep
// their meaning.
type CellType uint8

const (
	EmptyCell     CellType = 0
	Vertex        CellType = 1
	PolyVertex    CellType = 2
	Line          CellType = 3
	PolyLine      CellType = 4
	Triangle      CellType = 5
	TriangleStrip CellType = 6
	Polygon       CellType = 7
	Pixel         CellType = 8
	Quad          CellType = 9
	Tetra         CellType = 10
	Voxel         CellType = 11
	Hexahedron    CellType = 12
	Wedge         CellType = 13
	Pyramid       CellType = 14

	QuadraticEdge       CellType = 21
	QuadraticTriangle   CellType = 22
	QuadraticQuad       CellType = 23
	QuadraticTetra      CellType = 24
	QuadraticHexahedron CellType = 25
	QuadraticWedge      CellType = 26
	QuadraticPyramid    CellType = 27
)

// pointCounts maps fixed-size cell types to their point count.
// Variable-size types (PolyVertex, PolyLine, Polygon, TriangleStrip) are
// intentionally absent.
var pointCounts = map[CellType]int{
	Vertex:              1,
	Line:                2,
	Triangle:            3,
	Pixel:               4,
	Quad:                4,
	Tetra:               4,
	Voxel:               8,
	Hexahedron:          8,
	Wedge:               6,
	Pyramid:             5,
	QuadraticEdge:       3,
	QuadraticTriangle:   6,
	QuadraticQuad:       8,
	QuadraticTetra:      10,
	QuadraticHexahedron: 20,
	QuadraticWedge:      15,
	QuadraticPyramid:    13,
}

var typeNames = map[CellType]string{
	EmptyCell:           "EmptyCell",
	Vertex:              "Vertex",
	PolyVertex:          "PolyVertex",
	Line:                "Line",
	PolyLine:            "PolyLine",
	Triangle:            "Triangle",
	TriangleStrip:       "TriangleStrip",
	Polygon:             "Polygon",
	Pixel:               "Pixel",
	Quad:                "Quad",
	Tetra:               "Tetra",
	Voxel:               "Voxel",
	Hexahedron:          "Hexahedron",
	Wedge:               "Wedge",
	Pyramid:             "Pyramid",
	QuadraticEdge:       "QuadraticEdge",
	QuadraticTriangle:   "QuadraticTriangle",
	QuadraticQuad:       "QuadraticQuad",
	QuadraticTetra:      "QuadraticTetra",
	QuadraticHexahedron: "QuadraticHexahedron",
	QuadraticWedge:      "QuadraticWedge",
	QuadraticPyramid:    "QuadraticPyramid",
}

// String returns the cell type name, or its numeric tag if unknown.
func (t CellType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CellType(%d)", uint8(t))
}

// PointCount reports the number of points for fixed-size cell types.
// ok is false for variable-size or unknown types.
func (t CellType) PointCount() (n int, ok bool) {
	n, ok = pointCounts[t]
	return n, ok
}

// IsLinear reports whether the cell type is a linear (non-quadratic) cell.
func (t CellType) IsLinear() bool {
	return t < QuadraticEdge
}

// linearEquivalents maps quadratic cell types to their linear counterparts.
var linearEquivalents = map[CellType]CellType{
	QuadraticEdge:       Line,
	QuadraticTriangle:   Triangle,
	QuadraticQuad:       Quad,
	QuadraticTetra:      Tetra,
	QuadraticHexahedron: Hexahedron,
	QuadraticWedge:      Wedge,
	QuadraticPyramid:    Pyramid,
}

// LinearType returns the linear equivalent of a quadratic cell type.
// Linear types map to themselves.
func (t CellType) LinearType() CellType {
	if lin, ok := linearEquivalents[t]; ok {
		return lin
	}
	return t
}
