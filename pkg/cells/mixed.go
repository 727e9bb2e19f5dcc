package cells

import (
	"fmt"
	"sort"
)

// FromDict flattens a per-type cell dictionary into the padded array and
// matching cell type tags used to build an unstructured grid. Only
// fixed-size cell types are representable in dictionary form. Cells of
// different types are emitted grouped, ordered by ascending type tag so the
// result is deterministic. Point IDs are validated against npoints.
func FromDict(dict map[CellType][][]int64, npoints int) (types []CellType, arr Array, err error) {
	if len(dict) == 0 {
		return nil, Array{}, fmt.Errorf("cells: empty cell dictionary")
	}

	keys := make([]CellType, 0, len(dict))
	for t := range dict {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var lists [][]int64
	for _, t := range keys {
		size, ok := t.PointCount()
		if !ok {
			return nil, Array{}, fmt.Errorf("cells: type %s is not a fixed-size cell type", t)
		}
		group := dict[t]
		for i, cell := range group {
			if len(cell) != size {
				return nil, Array{}, fmt.Errorf("cells: %s cell %d has %d points, want %d",
					t, i, len(cell), size)
			}
			for _, p := range cell {
				if p < 0 || p >= int64(npoints) {
					return nil, Array{}, fmt.Errorf("cells: %s cell %d references point %d outside [0, %d)",
						t, i, p, npoints)
				}
			}
			lists = append(lists, cell)
			types = append(types, t)
		}
	}
	return types, NewArray(lists), nil
}

// ToDict groups the cells of a mixed array by cell type, preserving the
// relative order of cells within each type. All present types must be
// fixed-size; variable-size cells cannot be represented in dictionary form.
func ToDict(types []CellType, arr Array) (map[CellType][][]int64, error) {
	if len(types) != arr.NCells() {
		return nil, fmt.Errorf("cells: number of cell types (%d) must match the number of cells (%d)",
			len(types), arr.NCells())
	}

	dict := make(map[CellType][][]int64)
	var convErr error
	arr.ForEach(func(i int, points []int64) {
		if convErr != nil {
			return
		}
		t := types[i]
		size, ok := t.PointCount()
		if !ok {
			convErr = fmt.Errorf("cells: type %s is not a fixed-size cell type", t)
			return
		}
		if len(points) != size {
			convErr = fmt.Errorf("cells: %s cell %d has %d points, want %d", t, i, len(points), size)
			return
		}
		cell := make([]int64, size)
		copy(cell, points)
		dict[t] = append(dict[t], cell)
	})
	if convErr != nil {
		return nil, convErr
	}
	return dict, nil
}

// GenerateOffsets derives the modern offsets array (length NCells+1) from a
// padded array, cross-checking each cell's point count against its type tag
// for fixed-size types.
func GenerateOffsets(types []CellType, arr Array) ([]int64, error) {
	if len(types) != arr.NCells() {
		return nil, fmt.Errorf("cells: number of cell types (%d) must match the number of cells (%d)",
			len(types), arr.NCells())
	}

	offsets := make([]int64, 1, arr.NCells()+1)
	var sizeErr error
	total := int64(0)
	arr.ForEach(func(i int, points []int64) {
		if sizeErr != nil {
			return
		}
		if want, ok := types[i].PointCount(); ok && len(points) != want {
			sizeErr = fmt.Errorf("cells: %s cell %d has %d points, want %d",
				types[i], i, len(points), want)
			return
		}
		total += int64(len(points))
		offsets = append(offsets, total)
	})
	if sizeErr != nil {
		return nil, sizeErr
	}
	return offsets, nil
}
