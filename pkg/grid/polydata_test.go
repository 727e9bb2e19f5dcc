package grid_test

import (
	"errors"
	"testing"

	"github.com/beorn7/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
)

// cubePoly returns a unit cube bounded by six outward-facing quads.
func cubePoly(t *testing.T) *grid.PolyData {
	t.Helper()
	points := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	faces := []int64{
		4, 0, 3, 2, 1,
		4, 4, 5, 6, 7,
		4, 0, 1, 5, 4,
		4, 2, 3, 7, 6,
		4, 0, 4, 7, 3,
		4, 1, 2, 6, 5,
	}
	p, err := grid.FromArrays(points, faces, nil)
	if err != nil {
		t.Fatalf("FromArrays: %v", err)
	}
	return p
}

func TestFromPoints(t *testing.T) {
	points := []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	p := grid.FromPoints(points)
	if p.NPoints() != 3 {
		t.Fatalf("NPoints = %d, want 3", p.NPoints())
	}
	if p.NVerts() != 3 {
		t.Fatalf("NVerts = %d, want 3", p.NVerts())
	}
	want := []int64{1, 0, 1, 1, 1, 2}
	got := p.Verts()
	if len(got) != len(want) {
		t.Fatalf("Verts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Verts = %v, want %v", got, want)
		}
	}
}

func TestFromArraysValidation(t *testing.T) {
	points := []r3.Vec{{}, {X: 1}, {Y: 1}}
	tests := []struct {
		name        string
		faces       []int64
		lines       []int64
		wantInvalid bool
	}{
		{name: "truncated faces", faces: []int64{3, 0, 1}, wantInvalid: true},
		{name: "zero count", faces: []int64{0, 0, 1, 2}, wantInvalid: true},
		{name: "point id out of range", faces: []int64{3, 0, 1, 3}},
		{name: "bad lines", lines: []int64{2, 0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grid.FromArrays(points, tt.faces, tt.lines)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantInvalid && !errors.Is(err, grid.ErrInvalidInput) {
				t.Fatalf("error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}

func TestPolyDataCellCounts(t *testing.T) {
	p := cubePoly(t)
	if p.NFaces() != 6 {
		t.Fatalf("NFaces = %d, want 6", p.NFaces())
	}
	if p.NCells() != 6 {
		t.Fatalf("NCells = %d, want 6", p.NCells())
	}
	if err := p.SetLines([]int64{2, 0, 1}); err != nil {
		t.Fatalf("SetLines: %v", err)
	}
	if p.NLines() != 1 || p.NCells() != 7 {
		t.Fatalf("NLines = %d, NCells = %d, want 1, 7", p.NLines(), p.NCells())
	}
}

func TestIsAllTriangles(t *testing.T) {
	p := cubePoly(t)
	if p.IsAllTriangles() {
		t.Fatal("quad cube reported as all triangles")
	}
	tri := p.Triangulate()
	if !tri.IsAllTriangles() {
		t.Fatal("triangulated cube not all triangles")
	}
	if tri.NFaces() != 12 {
		t.Fatalf("NFaces = %d, want 12", tri.NFaces())
	}
	// Original untouched.
	if p.NFaces() != 6 {
		t.Fatalf("source NFaces = %d after Triangulate, want 6", p.NFaces())
	}
}

func TestAreaAndVolume(t *testing.T) {
	p := cubePoly(t)
	area, err := p.Area()
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if !floats.AlmostEqual(6, area, 1e-9) {
		t.Fatalf("Area = %g, want 6", area)
	}
	vol, err := p.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(1, vol, 1e-9) {
		t.Fatalf("Volume = %g, want 1", vol)
	}
}

func TestNormals(t *testing.T) {
	// A single square in the xy plane, wound counterclockwise.
	points := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	p, err := grid.FromArrays(points, []int64{4, 0, 1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("FromArrays: %v", err)
	}
	for i, n := range p.FaceNormals() {
		if !floats.AlmostEqual(1, n.Z, 1e-9) {
			t.Fatalf("face normal %d = %v, want +z", i, n)
		}
	}
	for i, n := range p.PointNormals() {
		if !floats.AlmostEqual(1, n.Z, 1e-9) {
			t.Fatalf("point normal %d = %v, want +z", i, n)
		}
	}
}

func TestNOpenEdges(t *testing.T) {
	p := cubePoly(t)
	if n := p.NOpenEdges(); n != 0 {
		t.Fatalf("closed cube NOpenEdges = %d, want 0", n)
	}
	// Drop the top face, opening four edges.
	if err := p.RemoveCells([]int{1}); err != nil {
		t.Fatalf("RemoveCells: %v", err)
	}
	if n := p.NOpenEdges(); n != 4 {
		t.Fatalf("open cube NOpenEdges = %d, want 4", n)
	}
}

func TestRemoveCellsMask(t *testing.T) {
	p := cubePoly(t)
	if err := p.RemoveCellsMask([]bool{true, false}); err == nil {
		t.Fatal("short mask accepted")
	}
	mask := make([]bool, p.NCells())
	mask[0] = true
	mask[5] = true
	if err := p.RemoveCellsMask(mask); err != nil {
		t.Fatalf("RemoveCellsMask: %v", err)
	}
	if p.NFaces() != 4 {
		t.Fatalf("NFaces = %d after removal, want 4", p.NFaces())
	}
}

func TestPolyDataCopy(t *testing.T) {
	p := cubePoly(t)
	q := p.Copy()
	q.Translate(r3.Vec{X: 10})
	if !floats.AlmostEqual(0.5, p.Center().X, 1e-9) {
		t.Fatalf("source center moved to %v", p.Center())
	}
	if !floats.AlmostEqual(10.5, q.Center().X, 1e-9) {
		t.Fatalf("copy center = %v, want x 10.5", q.Center())
	}
}

func TestRotate(t *testing.T) {
	p := grid.FromPoints([]r3.Vec{{X: 1}})
	p.RotateZ(90, nil)
	got := p.Point(0)
	if r3.Norm(r3.Sub(got, r3.Vec{Y: 1})) > 1e-9 {
		t.Fatalf("rotated point = %v, want (0, 1, 0)", got)
	}

	// Rotation about a pivot keeps the pivot fixed.
	q := grid.FromPoints([]r3.Vec{{X: 2}})
	pivot := r3.Vec{X: 1}
	q.RotateZ(180, &pivot)
	got = q.Point(0)
	if r3.Norm(got) > 1e-9 {
		t.Fatalf("pivoted point = %v, want origin", got)
	}
}

func TestOBBTreeFollowsTransform(t *testing.T) {
	p := cubePoly(t)
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	if !p.OBBTree().Contains(center) {
		t.Fatal("center not inside the cube")
	}
	p.Translate(r3.Vec{X: 10})
	if p.OBBTree().Contains(center) {
		t.Fatal("tree answers for the pre-translation geometry")
	}
	if !p.OBBTree().Contains(r3.Add(center, r3.Vec{X: 10})) {
		t.Fatal("translated cube does not contain its new center")
	}
	p.RotateZ(90, nil)
	// (10.5, 0.5) rotates to (-0.5, 10.5).
	if !p.OBBTree().Contains(r3.Vec{X: -0.5, Y: 10.5, Z: 0.5}) {
		t.Fatal("tree not rebuilt after rotation")
	}
}

func TestBooleanOperations(t *testing.T) {
	a := cubePoly(t)
	b := cubePoly(t)
	b.Translate(r3.Vec{X: 10})

	union, err := a.BooleanUnion(b)
	if err != nil {
		t.Fatalf("BooleanUnion: %v", err)
	}
	vol, err := union.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(2, vol, 1e-9) {
		t.Fatalf("union volume = %g, want 2", vol)
	}

	diff, err := a.BooleanDifference(b)
	if err != nil {
		t.Fatalf("BooleanDifference: %v", err)
	}
	vol, err = diff.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(1, vol, 1e-9) {
		t.Fatalf("difference volume = %g, want 1", vol)
	}

	inter, err := a.BooleanIntersection(b)
	if err != nil {
		t.Fatalf("BooleanIntersection: %v", err)
	}
	if inter.NFaces() != 0 {
		t.Fatalf("disjoint intersection has %d faces, want 0", inter.NFaces())
	}
}

func TestDecimateInvalid(t *testing.T) {
	p := cubePoly(t)
	if _, err := p.Decimate(1.5); err == nil {
		t.Fatal("reduction above one accepted")
	}
}

func TestCellDataValidation(t *testing.T) {
	p := cubePoly(t)
	if err := p.SetCellData("quality", []float64{1, 2}); err == nil {
		t.Fatal("short cell array accepted")
	}
	values := []float64{0, 1, 2, 3, 4, 5}
	if err := p.SetCellData("quality", values); err != nil {
		t.Fatalf("SetCellData: %v", err)
	}
	if got := p.CellData("quality"); len(got) != 6 || got[3] != 3 {
		t.Fatalf("CellData = %v", got)
	}
}

func TestPointDataValidation(t *testing.T) {
	p := cubePoly(t)
	if err := p.SetPointData("temp", []float64{1}); err == nil {
		t.Fatal("short point array accepted")
	}
	values := make([]float64, p.NPoints())
	if err := p.SetPointData("temp", values); err != nil {
		t.Fatalf("SetPointData: %v", err)
	}
}
