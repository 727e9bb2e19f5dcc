package native

import (
	"fmt"

	"github.com/fogleman/simplify"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// Decimate reduces the triangle count by approximately the requested
// fraction using quadric edge collapse.
func (n *Native) Decimate(m *kernel.TriMesh, reduction float64) (*kernel.TriMesh, error) {
	if reduction < 0 || reduction >= 1 {
		return nil, fmt.Errorf("native: reduction must be in [0, 1), got %v", reduction)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if reduction == 0 || m.TriangleCount() == 0 {
		out := &kernel.TriMesh{
			Vertices: append([]float64(nil), m.Vertices...),
			Indices:  append([]int64(nil), m.Indices...),
		}
		return out, nil
	}

	tris := make([]*simplify.Triangle, m.TriangleCount())
	for i := range tris {
		t := m.Triangle(i)
		tris[i] = simplify.NewTriangle(toSimplify(t[0]), toSimplify(t[1]), toSimplify(t[2]))
	}
	reduced := simplify.NewMesh(tris).Simplify(1 - reduction)

	out := make([]r3.Triangle, len(reduced.Triangles))
	for i, t := range reduced.Triangles {
		out[i] = r3.Triangle{fromSimplify(t.V1), fromSimplify(t.V2), fromSimplify(t.V3)}
	}
	return kernel.FromTriangles(out), nil
}

func toSimplify(v r3.Vec) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func fromSimplify(v simplify.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
