package native

import (
	"sort"

	"github.com/chazu/trellis/pkg/kernel"
)

type edgeKey struct {
	a, b int64 // a < b
}

func makeEdgeKey(a, b int64) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// FeatureEdges counts how many triangles use each edge. Edges used by
// exactly one triangle are boundary edges; edges used by three or more
// are non-manifold. The returned edge lists are sorted for determinism.
func (n *Native) FeatureEdges(m *kernel.TriMesh) kernel.FeatureEdges {
	use := make(map[edgeKey]int)
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
		use[makeEdgeKey(a, b)]++
		use[makeEdgeKey(b, c)]++
		use[makeEdgeKey(c, a)]++
	}

	var fe kernel.FeatureEdges
	for k, count := range use {
		switch {
		case count == 1:
			fe.Boundary = append(fe.Boundary, [2]int64{k.a, k.b})
		case count > 2:
			fe.NonManifold = append(fe.NonManifold, [2]int64{k.a, k.b})
		}
	}
	sortEdges(fe.Boundary)
	sortEdges(fe.NonManifold)
	return fe
}

func sortEdges(edges [][2]int64) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
}
