package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TriMesh is the flat triangle mesh exchanged with the kernel.
// Both arrays are flat: Vertices has 3 floats per vertex (x,y,z),
// Indices has 3 point IDs per triangle.
type TriMesh struct {
	Vertices []float64
	Indices  []int64
}

// VertexCount returns the number of vertices.
func (m *TriMesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *TriMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *TriMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *TriMesh) Vertex(i int) r3.Vec {
	return r3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Triangle returns the corner positions of triangle i.
func (m *TriMesh) Triangle(i int) r3.Triangle {
	return r3.Triangle{
		m.Vertex(int(m.Indices[3*i])),
		m.Vertex(int(m.Indices[3*i+1])),
		m.Vertex(int(m.Indices[3*i+2])),
	}
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *TriMesh) Bounds() r3.Box {
	if m.IsEmpty() {
		return r3.Box{}
	}
	min := m.Vertex(0)
	max := min
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return r3.Box{Min: min, Max: max}
}

// Validate checks that every index references an existing vertex.
func (m *TriMesh) Validate() error {
	n := int64(m.VertexCount())
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index array length %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("kernel: index %d at position %d outside [0, %d)", idx, i, n)
		}
	}
	return nil
}

// AppendVertex adds a vertex and returns its ID.
func (m *TriMesh) AppendVertex(v r3.Vec) int64 {
	m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
	return int64(m.VertexCount() - 1)
}

// AppendTriangle adds a triangle by vertex IDs.
func (m *TriMesh) AppendTriangle(a, b, c int64) {
	m.Indices = append(m.Indices, a, b, c)
}

// FromTriangles assembles an indexed mesh from a triangle soup, merging
// vertices that compare exactly equal.
func FromTriangles(tris []r3.Triangle) *TriMesh {
	m := &TriMesh{
		Vertices: make([]float64, 0, 9*len(tris)),
		Indices:  make([]int64, 0, 3*len(tris)),
	}
	seen := make(map[r3.Vec]int64, 3*len(tris))
	for _, t := range tris {
		var ids [3]int64
		for j, v := range t {
			id, ok := seen[v]
			if !ok {
				id = m.AppendVertex(v)
				seen[v] = id
			}
			ids[j] = id
		}
		m.AppendTriangle(ids[0], ids[1], ids[2])
	}
	return m
}

// Triangles flattens the mesh back to a triangle soup.
func (m *TriMesh) Triangles() []r3.Triangle {
	out := make([]r3.Triangle, m.TriangleCount())
	for i := range out {
		out[i] = m.Triangle(i)
	}
	return out
}
