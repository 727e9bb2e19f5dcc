package meshio

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/kernel"
)

// LoadGLTF reads a .gltf or .glb file. All triangle primitives of all
// meshes are merged into a single surface; other primitive modes are
// skipped.
func LoadGLTF(path string) (*grid.PolyData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	var tris []r3.Triangle
	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("meshio: gltf positions: %w", err)
			}

			var indices []uint32
			if primitive.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("meshio: gltf indices: %w", err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}

			for i := 0; i+2 < len(indices); i += 3 {
				var t r3.Triangle
				for j := 0; j < 3; j++ {
					p := positions[indices[i+j]]
					t[j] = r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
				}
				tris = append(tris, t)
			}
		}
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("meshio: no triangles found in %s", path)
	}
	return grid.FromTriMesh(kernel.FromTriangles(tris)), nil
}
