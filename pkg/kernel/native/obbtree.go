package native

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

const (
	obbLeafSize = 8
	obbPad      = 1e-9
)

// obbTree is a hierarchy of oriented bounding boxes. Box axes come from
// the eigenvectors of the covariance of the contained triangle
// vertices, so deeper boxes align with the local geometry rather than
// the coordinate axes.
type obbTree struct {
	mesh *kernel.TriMesh
	root *obbNode
}

type obbNode struct {
	center      r3.Vec
	axes        [3]r3.Vec // orthonormal
	half        [3]float64
	left, right *obbNode
	tris        []int32 // leaf only
}

// NewOBBTree builds an oriented-bounding-box tree over the mesh.
func (n *Native) NewOBBTree(m *kernel.TriMesh) kernel.OBBTree {
	t := &obbTree{mesh: m}
	tris := make([]int32, m.TriangleCount())
	for i := range tris {
		tris[i] = int32(i)
	}
	if len(tris) > 0 {
		t.root = buildOBBNode(m, tris)
	}
	return t
}

func buildOBBNode(m *kernel.TriMesh, tris []int32) *obbNode {
	n := newOBBox(m, tris)
	if len(tris) <= obbLeafSize {
		n.tris = tris
		return n
	}

	// Split at the median centroid projection along the widest axis.
	axis := 0
	for i := 1; i < 3; i++ {
		if n.half[i] > n.half[axis] {
			axis = i
		}
	}
	proj := make([]float64, len(tris))
	order := make([]int, len(tris))
	for i, ti := range tris {
		proj[i] = r3.Dot(centroid(m, ti), n.axes[axis])
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return proj[order[i]] < proj[order[j]] })

	mid := len(order) / 2
	left := make([]int32, 0, mid)
	right := make([]int32, 0, len(order)-mid)
	for i, oi := range order {
		if i < mid {
			left = append(left, tris[oi])
		} else {
			right = append(right, tris[oi])
		}
	}
	if len(left) == 0 || len(right) == 0 {
		n.tris = tris
		return n
	}
	n.left = buildOBBNode(m, left)
	n.right = buildOBBNode(m, right)
	return n
}

func centroid(m *kernel.TriMesh, ti int32) r3.Vec {
	t := m.Triangle(int(ti))
	return r3.Scale(1.0/3.0, r3.Add(t[0], r3.Add(t[1], t[2])))
}

// newOBBox fits an oriented box around the vertices of a triangle set.
func newOBBox(m *kernel.TriMesh, tris []int32) *obbNode {
	var mean r3.Vec
	count := 0
	forEachVertex(m, tris, func(v r3.Vec) {
		mean = r3.Add(mean, v)
		count++
	})
	mean = r3.Scale(1/float64(count), mean)

	// Covariance of vertex positions about the mean.
	var c [3][3]float64
	forEachVertex(m, tris, func(v r3.Vec) {
		d := [3]float64{v.X - mean.X, v.Y - mean.Y, v.Z - mean.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				c[i][j] += d[i] * d[j]
			}
		}
	})

	node := &obbNode{}
	node.axes = covarianceAxes(c)

	// Project vertices onto the axes to size the box.
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	forEachVertex(m, tris, func(v r3.Vec) {
		for i := 0; i < 3; i++ {
			p := r3.Dot(v, node.axes[i])
			lo[i] = math.Min(lo[i], p)
			hi[i] = math.Max(hi[i], p)
		}
	})
	for i := 0; i < 3; i++ {
		mid := (lo[i] + hi[i]) / 2
		node.center = r3.Add(node.center, r3.Scale(mid, node.axes[i]))
		node.half[i] = (hi[i]-lo[i])/2 + obbPad
	}
	return node
}

func forEachVertex(m *kernel.TriMesh, tris []int32, fn func(v r3.Vec)) {
	for _, ti := range tris {
		t := m.Triangle(int(ti))
		fn(t[0])
		fn(t[1])
		fn(t[2])
	}
}

// covarianceAxes returns the orthonormal eigenvectors of a symmetric
// 3x3 covariance matrix. Falls back to the coordinate axes when the
// factorization fails (degenerate geometry).
func covarianceAxes(c [3][3]float64) [3]r3.Vec {
	sym := mat.NewSymDense(3, []float64{
		c[0][0], c[0][1], c[0][2],
		c[1][0], c[1][1], c[1][2],
		c[2][0], c[2][1], c[2][2],
	})
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	var axes [3]r3.Vec
	for i := 0; i < 3; i++ {
		v := r3.Vec{X: vecs.At(0, i), Y: vecs.At(1, i), Z: vecs.At(2, i)}
		if r3.Norm(v) == 0 {
			return [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
		}
		axes[i] = r3.Unit(v)
	}
	return axes
}

// Depth returns the depth of the tree.
func (t *obbTree) Depth() int {
	return nodeDepth(t.root)
}

func nodeDepth(n *obbNode) int {
	if n == nil {
		return 0
	}
	d := nodeDepth(n.left)
	if r := nodeDepth(n.right); r > d {
		d = r
	}
	return d + 1
}

// IntersectRay returns the sorted parametric distances at which the ray
// origin + t*dir (t > 0) crosses the surface. Crossings closer than
// 1e-12 apart are merged, which collapses the duplicate hit produced
// when a ray grazes a shared edge.
func (t *obbTree) IntersectRay(origin, dir r3.Vec) []float64 {
	if t.root == nil || r3.Norm(dir) == 0 {
		return nil
	}
	dir = r3.Unit(dir)
	var ts []float64
	rayNode(t.mesh, t.root, origin, dir, &ts)
	sort.Float64s(ts)

	out := ts[:0]
	for i, v := range ts {
		if i > 0 && v-out[len(out)-1] < 1e-12 {
			continue
		}
		out = append(out, v)
	}
	return out
}

func rayNode(m *kernel.TriMesh, n *obbNode, origin, dir r3.Vec, ts *[]float64) {
	if !rayHitsOBB(n, origin, dir) {
		return
	}
	if n.left != nil {
		rayNode(m, n.left, origin, dir, ts)
		rayNode(m, n.right, origin, dir, ts)
		return
	}
	for _, ti := range n.tris {
		if tv, ok := rayTriangle(m.Triangle(int(ti)), origin, dir); ok {
			*ts = append(*ts, tv)
		}
	}
}

// rayHitsOBB performs the slab test in the box's own frame.
func rayHitsOBB(n *obbNode, origin, dir r3.Vec) bool {
	rel := r3.Sub(origin, n.center)
	tmin, tmax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		o := r3.Dot(rel, n.axes[i])
		d := r3.Dot(dir, n.axes[i])
		if math.Abs(d) < 1e-15 {
			if o < -n.half[i] || o > n.half[i] {
				return false
			}
			continue
		}
		t1 := (-n.half[i] - o) / d
		t2 := (n.half[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// rayTriangle is the Moeller-Trumbore intersection test.
func rayTriangle(tri r3.Triangle, origin, dir r3.Vec) (float64, bool) {
	const eps = 1e-12
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	p := r3.Cross(dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	tv := r3.Sub(origin, tri[0])
	u := r3.Dot(tv, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(tv, e1)
	v := r3.Dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := r3.Dot(e2, q) * inv
	if t <= eps {
		return 0, false
	}
	return t, true
}

// containsDir is an arbitrary direction unlikely to graze mesh edges
// for meshes aligned with the coordinate axes.
var containsDir = r3.Unit(r3.Vec{X: 0.2348761, Y: 0.7581439, Z: 0.6093287})

// Contains reports whether p is inside the closed surface, using the
// parity of ray crossings.
func (t *obbTree) Contains(p r3.Vec) bool {
	return len(t.IntersectRay(p, containsDir))%2 == 1
}
