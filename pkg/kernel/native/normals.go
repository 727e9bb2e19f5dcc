package native

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// CellNormals returns one unit normal per triangle, oriented by the
// triangle winding. Degenerate triangles get a zero normal.
func (n *Native) CellNormals(m *kernel.TriMesh) []r3.Vec {
	normals := make([]r3.Vec, m.TriangleCount())
	for i := range normals {
		t := m.Triangle(i)
		cr := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		if r3.Norm(cr) > 0 {
			normals[i] = r3.Unit(cr)
		}
	}
	return normals
}

// PointNormals returns one unit normal per vertex. Each incident
// triangle contributes its unnormalized cross product, so larger
// triangles weigh more.
func (n *Native) PointNormals(m *kernel.TriMesh) []r3.Vec {
	normals := make([]r3.Vec, m.VertexCount())
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		cr := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		for j := 0; j < 3; j++ {
			id := m.Indices[3*i+j]
			normals[id] = r3.Add(normals[id], cr)
		}
	}
	for i, v := range normals {
		if r3.Norm(v) > 0 {
			normals[i] = r3.Unit(v)
		}
	}
	return normals
}
