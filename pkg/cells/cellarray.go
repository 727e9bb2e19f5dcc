package cells

import "fmt"

// Array is a padded flat connectivity array. Each cell is encoded as its
// point count followed by its point IDs, so the two triangles {0,1,2} and
// {1,3,2} become [3 0 1 2 3 1 3 2]. This is the legacy cell encoding and
// the one carried by PolyData verts/lines/faces.
type Array struct {
	data []int64
	n    int
}

// NewArray builds a padded array from per-cell point lists.
func NewArray(pointLists [][]int64) Array {
	size := 0
	for _, c := range pointLists {
		size += 1 + len(c)
	}
	data := make([]int64, 0, size)
	for _, c := range pointLists {
		data = append(data, int64(len(c)))
		data = append(data, c...)
	}
	return Array{data: data, n: len(pointLists)}
}

// ParseArray wraps an existing padded array, walking the count prefixes to
// find the cell count. A truncated or negative count is an error.
func ParseArray(data []int64) (Array, error) {
	n := 0
	for i := 0; i < len(data); {
		count := data[i]
		if count <= 0 {
			return Array{}, fmt.Errorf("cells: invalid point count %d at index %d", count, i)
		}
		i += 1 + int(count)
		if i > len(data) {
			return Array{}, fmt.Errorf("cells: padded array truncated: cell %d needs %d points", n, count)
		}
		n++
	}
	return Array{data: data, n: n}, nil
}

// Clone returns a deep copy of the array.
func (a Array) Clone() Array {
	return Array{data: append([]int64(nil), a.data...), n: a.n}
}

// NCells returns the number of cells in the array.
func (a Array) NCells() int { return a.n }

// Data returns the raw padded encoding. The slice is shared, not copied.
func (a Array) Data() []int64 { return a.data }

// IsEmpty reports whether the array holds no cells.
func (a Array) IsEmpty() bool { return a.n == 0 }

// ForEach calls fn for every cell with its index and point IDs. The points
// slice aliases the underlying array and must not be retained.
func (a Array) ForEach(fn func(i int, points []int64)) {
	cell := 0
	for i := 0; i < len(a.data); {
		count := int(a.data[i])
		fn(cell, a.data[i+1:i+1+count])
		i += 1 + count
		cell++
	}
}

// Cells splits the array back into per-cell point lists.
func (a Array) Cells() [][]int64 {
	out := make([][]int64, 0, a.n)
	a.ForEach(func(_ int, points []int64) {
		cell := make([]int64, len(points))
		copy(cell, points)
		out = append(out, cell)
	})
	return out
}

// MaxPointID returns the largest point ID referenced, or -1 when empty.
func (a Array) MaxPointID() int64 {
	max := int64(-1)
	a.ForEach(func(_ int, points []int64) {
		for _, p := range points {
			if p > max {
				max = p
			}
		}
	})
	return max
}

// UniformSize reports the common point count if every cell has the same
// number of points, or ok=false otherwise. Empty arrays report (0, true).
func (a Array) UniformSize() (size int, ok bool) {
	first := true
	uniform := true
	a.ForEach(func(_ int, points []int64) {
		if first {
			size = len(points)
			first = false
		} else if len(points) != size {
			uniform = false
		}
	})
	if !uniform {
		return 0, false
	}
	return size, true
}

// VertexCells returns the padded array assigning one Vertex cell per point,
// the encoding used for connectivity-free point clouds.
func VertexCells(npoints int) Array {
	data := make([]int64, 2*npoints)
	for i := 0; i < npoints; i++ {
		data[2*i] = 1
		data[2*i+1] = int64(i)
	}
	return Array{data: data, n: npoints}
}

// ToModern converts the padded encoding to the modern pair of a flat
// connectivity array and an offsets array of length NCells+1, where cell i
// occupies connectivity[offsets[i]:offsets[i+1]].
func (a Array) ToModern() (connectivity, offsets []int64) {
	connectivity = make([]int64, 0, len(a.data)-a.n)
	offsets = make([]int64, 1, a.n+1)
	a.ForEach(func(_ int, points []int64) {
		connectivity = append(connectivity, points...)
		offsets = append(offsets, int64(len(connectivity)))
	})
	return connectivity, offsets
}

// FromModern converts a modern connectivity/offsets pair back to the padded
// encoding. Offsets must start at zero, end at len(connectivity), and be
// non-decreasing.
func FromModern(connectivity, offsets []int64) (Array, error) {
	if len(offsets) == 0 {
		return Array{}, fmt.Errorf("cells: offsets array may not be empty")
	}
	if offsets[0] != 0 {
		return Array{}, fmt.Errorf("cells: offsets must start at 0, got %d", offsets[0])
	}
	last := offsets[len(offsets)-1]
	if last != int64(len(connectivity)) {
		return Array{}, fmt.Errorf("cells: final offset (%d) must equal connectivity length (%d)",
			last, len(connectivity))
	}
	n := len(offsets) - 1
	data := make([]int64, 0, len(connectivity)+n)
	for i := 0; i < n; i++ {
		lo, hi := offsets[i], offsets[i+1]
		if hi < lo {
			return Array{}, fmt.Errorf("cells: offsets must be non-decreasing (offset %d: %d > %d)", i, lo, hi)
		}
		data = append(data, hi-lo)
		data = append(data, connectivity[lo:hi]...)
	}
	return Array{data: data, n: n}, nil
}
