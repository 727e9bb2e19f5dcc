// Package kernel defines the abstract geometry kernel interface.
// The grid layer delegates all real geometric computation (mass
// properties, normals, feature edges, spatial trees, boolean
// operations) to a Kernel. The abstraction allows swapping backends
// without changing the rest of the system; the default backend lives
// in the native subpackage.
package kernel

import "gonum.org/v1/gonum/spatial/r3"

// MassProps holds the surface area and enclosed volume of a triangle
// mesh. Volume is only meaningful for closed surfaces.
type MassProps struct {
	Area   float64
	Volume float64
}

// FeatureEdges holds the edges extracted from a surface, each as a pair
// of point IDs. Boundary edges are used by exactly one triangle;
// non-manifold edges by three or more.
type FeatureEdges struct {
	Boundary    [][2]int64
	NonManifold [][2]int64
}

// OBBTree is a hierarchical tree of oriented bounding boxes over a
// triangle mesh, supporting spatial queries.
type OBBTree interface {
	// Contains reports whether a point lies inside the closed surface.
	Contains(p r3.Vec) bool
	// IntersectRay returns the parametric distances at which a ray
	// (origin + t*dir, t > 0) crosses the surface, sorted ascending.
	IntersectRay(origin, dir r3.Vec) []float64
	// Depth returns the depth of the tree.
	Depth() int
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// MassProperties computes surface area and enclosed volume.
	MassProperties(m *TriMesh) (MassProps, error)

	// PointNormals returns one unit normal per vertex, averaged over
	// incident triangles weighted by area.
	PointNormals(m *TriMesh) []r3.Vec
	// CellNormals returns one unit normal per triangle.
	CellNormals(m *TriMesh) []r3.Vec

	// FeatureEdges extracts boundary and non-manifold edges.
	FeatureEdges(m *TriMesh) FeatureEdges

	// CenterOfMass computes the weighted centroid of a point set.
	// A nil weights slice means uniform weighting.
	CenterOfMass(points []r3.Vec, weights []float64) r3.Vec

	// NewOBBTree builds an oriented-bounding-box tree over the mesh.
	NewOBBTree(m *TriMesh) OBBTree

	// Boolean operations on closed triangle meshes.
	Union(a, b *TriMesh) (*TriMesh, error)
	Difference(a, b *TriMesh) (*TriMesh, error)
	Intersect(a, b *TriMesh) (*TriMesh, error)

	// Decimate reduces the triangle count by approximately the given
	// fraction (0 keeps everything, 0.9 drops ~90% of triangles).
	Decimate(m *TriMesh, reduction float64) (*TriMesh, error)
}
