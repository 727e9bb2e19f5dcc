package native

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// Boolean operations classify whole triangles of each operand as inside
// or outside the other closed surface, using the OBB tree containment
// query on triangle centroids. Triangles crossing the other surface are
// not split, so the result is exact only where the surfaces do not
// interpenetrate a triangle.

// Union keeps the triangles of each mesh outside the other.
func (n *Native) Union(a, b *kernel.TriMesh) (*kernel.TriMesh, error) {
	return n.boolean(a, b, false, false, false)
}

// Intersect keeps the triangles of each mesh inside the other.
func (n *Native) Intersect(a, b *kernel.TriMesh) (*kernel.TriMesh, error) {
	return n.boolean(a, b, true, true, false)
}

// Difference keeps a's triangles outside b plus b's triangles inside a,
// the latter with reversed winding so the result stays outward-facing.
func (n *Native) Difference(a, b *kernel.TriMesh) (*kernel.TriMesh, error) {
	return n.boolean(a, b, false, true, true)
}

func (n *Native) boolean(a, b *kernel.TriMesh, keepAInside, keepBInside, flipB bool) (*kernel.TriMesh, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("native: first operand: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("native: second operand: %w", err)
	}
	if a.IsEmpty() || b.IsEmpty() {
		return nil, fmt.Errorf("native: boolean operation on empty mesh")
	}

	treeA := n.NewOBBTree(a)
	treeB := n.NewOBBTree(b)

	var tris []r3.Triangle
	for i := 0; i < a.TriangleCount(); i++ {
		t := a.Triangle(i)
		if treeB.Contains(triCentroid(t)) == keepAInside {
			tris = append(tris, t)
		}
	}
	for i := 0; i < b.TriangleCount(); i++ {
		t := b.Triangle(i)
		if treeA.Contains(triCentroid(t)) == keepBInside {
			if flipB {
				t[1], t[2] = t[2], t[1]
			}
			tris = append(tris, t)
		}
	}
	return kernel.FromTriangles(tris), nil
}

func triCentroid(t r3.Triangle) r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(t[0], r3.Add(t[1], t[2])))
}
