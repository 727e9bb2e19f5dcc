package meshio_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beorn7/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/meshio"
)

// cubeSurface returns a unit cube bounded by six outward-facing
// quads.
func cubeSurface(t *testing.T) *grid.PolyData {
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

func checkUnitVolume(t *testing.T, p *grid.PolyData) {
	t.Helper()
	vol, err := p.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if !floats.AlmostEqual(1, vol, 1e-6) {
		t.Fatalf("volume = %g, want 1", vol)
	}
}

func TestSTLRoundTrip(t *testing.T) {
	cube := cubeSurface(t)
	var buf bytes.Buffer
	if err := meshio.WriteSTL(&buf, cube); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	back, err := meshio.LoadSTLFromBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("LoadSTLFromBytes: %v", err)
	}
	if back.NFaces() != 12 {
		t.Fatalf("NFaces = %d, want 12", back.NFaces())
	}
	if back.NPoints() != 8 {
		t.Fatalf("NPoints = %d after merging, want 8", back.NPoints())
	}
	checkUnitVolume(t, back)
}

func TestSTLASCII(t *testing.T) {
	data := `solid tri
facet normal 0 0 1
 outer loop
  vertex 0 0 0
  vertex 1 0 0
  vertex 0 1 0
 endloop
endfacet
endsolid tri
`
	p, err := meshio.LoadSTLFromBytes([]byte(data))
	if err != nil {
		t.Fatalf("LoadSTLFromBytes: %v", err)
	}
	if p.NFaces() != 1 || p.NPoints() != 3 {
		t.Fatalf("NFaces = %d, NPoints = %d, want 1, 3", p.NFaces(), p.NPoints())
	}
	area, err := p.Area()
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if !floats.AlmostEqual(0.5, area, 1e-9) {
		t.Fatalf("area = %g, want 0.5", area)
	}
}

func TestSTLTruncated(t *testing.T) {
	if _, err := meshio.LoadSTLFromBytes(make([]byte, 40)); err == nil {
		t.Fatal("truncated stl accepted")
	}
}

func TestOBJRoundTrip(t *testing.T) {
	cube := cubeSurface(t)
	var buf bytes.Buffer
	if err := meshio.WriteOBJ(&buf, cube); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	back, err := meshio.LoadOBJFromReader(&buf)
	if err != nil {
		t.Fatalf("LoadOBJFromReader: %v", err)
	}
	// Quads survive as quads.
	if back.NFaces() != 6 {
		t.Fatalf("NFaces = %d, want 6", back.NFaces())
	}
	if back.IsAllTriangles() {
		t.Fatal("quads were triangulated on the way through obj")
	}
	checkUnitVolume(t, back)
}

func TestOBJNegativeIndices(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	p, err := meshio.LoadOBJFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadOBJFromReader: %v", err)
	}
	if p.NFaces() != 1 {
		t.Fatalf("NFaces = %d, want 1", p.NFaces())
	}
	faces := p.Faces()
	want := []int64{3, 0, 1, 2}
	for i := range want {
		if faces[i] != want[i] {
			t.Fatalf("faces = %v, want %v", faces, want)
		}
	}
}

func TestOBJBadReference(t *testing.T) {
	data := "v 0 0 0\nf 1 2 3\n"
	if _, err := meshio.LoadOBJFromReader(strings.NewReader(data)); err == nil {
		t.Fatal("out-of-range face reference accepted")
	}
}

func TestPLYRoundTrip(t *testing.T) {
	cube := cubeSurface(t)
	var buf bytes.Buffer
	if err := meshio.WritePLY(&buf, cube); err != nil {
		t.Fatalf("WritePLY: %v", err)
	}
	back, err := meshio.LoadPLYFromReader(&buf)
	if err != nil {
		t.Fatalf("LoadPLYFromReader: %v", err)
	}
	if back.NFaces() != 6 || back.NPoints() != 8 {
		t.Fatalf("NFaces = %d, NPoints = %d, want 6, 8", back.NFaces(), back.NPoints())
	}
	checkUnitVolume(t, back)
}

func TestPLYRejectsBinary(t *testing.T) {
	data := "ply\nformat binary_little_endian 1.0\nelement vertex 0\nend_header\n"
	if _, err := meshio.LoadPLYFromReader(strings.NewReader(data)); err == nil {
		t.Fatal("binary ply accepted")
	}
}

func TestVTKLegacyPolyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.vtk")
	cube := cubeSurface(t)
	if err := meshio.WritePolyData(path, cube); err != nil {
		t.Fatalf("WritePolyData: %v", err)
	}
	back, err := meshio.ReadPolyData(path)
	if err != nil {
		t.Fatalf("ReadPolyData: %v", err)
	}
	if back.NFaces() != 6 || back.NPoints() != 8 {
		t.Fatalf("NFaces = %d, NPoints = %d, want 6, 8", back.NFaces(), back.NPoints())
	}
	// A faces-only file must not come back with vertex cells.
	if back.NVerts() != 0 || back.NCells() != 6 {
		t.Fatalf("NVerts = %d, NCells = %d, want 0 and 6", back.NVerts(), back.NCells())
	}
	checkUnitVolume(t, back)
}

func TestVTKLegacyPointCloud(t *testing.T) {
	cloud := grid.FromPoints([]r3.Vec{{}, {X: 1}, {Y: 2}})
	for _, name := range []string{"cloud.vtk", "cloud.vtp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := meshio.WritePolyData(path, cloud); err != nil {
				t.Fatalf("WritePolyData: %v", err)
			}
			back, err := meshio.ReadPolyData(path)
			if err != nil {
				t.Fatalf("ReadPolyData: %v", err)
			}
			if back.NVerts() != 3 || back.NCells() != 3 {
				t.Fatalf("NVerts = %d, NCells = %d, want 3 and 3", back.NVerts(), back.NCells())
			}
		})
	}
}

func TestVTKLegacyUnstructured(t *testing.T) {
	points := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}, {X: 2}}
	g, err := grid.FromCells(
		[]int64{4, 0, 1, 2, 3, 2, 1, 4},
		[]cells.CellType{cells.Tetra, cells.Line},
		points,
	)
	if err != nil {
		t.Fatalf("FromCells: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mixed.vtk")
	if err := meshio.WriteUnstructuredGrid(path, g); err != nil {
		t.Fatalf("WriteUnstructuredGrid: %v", err)
	}
	back, err := meshio.ReadUnstructuredGrid(path)
	if err != nil {
		t.Fatalf("ReadUnstructuredGrid: %v", err)
	}
	if back.NCells() != 2 {
		t.Fatalf("NCells = %d, want 2", back.NCells())
	}
	if got := back.CellTypes(); got[0] != cells.Tetra || got[1] != cells.Line {
		t.Fatalf("CellTypes = %v", got)
	}
}

func TestVTKLegacyStructured(t *testing.T) {
	g, err := grid.StructuredFromRanges(
		[]float64{0, 1, 2}, []float64{0, 1}, []float64{0, 1},
	)
	if err != nil {
		t.Fatalf("StructuredFromRanges: %v", err)
	}
	path := filepath.Join(t.TempDir(), "grid.vtk")
	if err := meshio.WriteStructuredGrid(path, g); err != nil {
		t.Fatalf("WriteStructuredGrid: %v", err)
	}
	back, err := meshio.ReadStructuredGrid(path)
	if err != nil {
		t.Fatalf("ReadStructuredGrid: %v", err)
	}
	if back.Dimensions() != [3]int{3, 2, 2} {
		t.Fatalf("Dimensions = %v, want [3 2 2]", back.Dimensions())
	}
	if got := back.At(2, 1, 1); got.X != 2 || got.Y != 1 || got.Z != 1 {
		t.Fatalf("At(2, 1, 1) = %v", got)
	}
}

func TestVTKLegacyWrongDataset(t *testing.T) {
	g, err := grid.StructuredFromRanges([]float64{0, 1}, []float64{0, 1}, []float64{0})
	if err != nil {
		t.Fatalf("StructuredFromRanges: %v", err)
	}
	path := filepath.Join(t.TempDir(), "grid.vtk")
	if err := meshio.WriteStructuredGrid(path, g); err != nil {
		t.Fatalf("WriteStructuredGrid: %v", err)
	}
	if _, err := meshio.ReadPolyData(path); err == nil {
		t.Fatal("structured grid read as polydata")
	}
}

func TestVTPRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.vtp")
	cube := cubeSurface(t)
	if err := cube.SetLines([]int64{2, 0, 6}); err != nil {
		t.Fatalf("SetLines: %v", err)
	}
	if err := meshio.WritePolyData(path, cube); err != nil {
		t.Fatalf("WritePolyData: %v", err)
	}
	back, err := meshio.ReadPolyData(path)
	if err != nil {
		t.Fatalf("ReadPolyData: %v", err)
	}
	if back.NFaces() != 6 || back.NLines() != 1 || back.NPoints() != 8 {
		t.Fatalf("NFaces = %d, NLines = %d, NPoints = %d, want 6, 1, 8",
			back.NFaces(), back.NLines(), back.NPoints())
	}
	if back.NVerts() != 0 {
		t.Fatalf("NVerts = %d, want no vertex cells", back.NVerts())
	}
	checkUnitVolume(t, back)
}

func TestVTURoundTrip(t *testing.T) {
	points := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	g, err := grid.FromCells(
		[]int64{4, 0, 1, 2, 3},
		[]cells.CellType{cells.Tetra},
		points,
	)
	if err != nil {
		t.Fatalf("FromCells: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tet.vtu")
	if err := meshio.WriteUnstructuredGrid(path, g); err != nil {
		t.Fatalf("WriteUnstructuredGrid: %v", err)
	}
	back, err := meshio.ReadUnstructuredGrid(path)
	if err != nil {
		t.Fatalf("ReadUnstructuredGrid: %v", err)
	}
	if back.NCells() != 1 || back.CellTypes()[0] != cells.Tetra {
		t.Fatalf("NCells = %d, CellTypes = %v", back.NCells(), back.CellTypes())
	}
	wantOffsets := []int64{0, 4}
	for i, o := range back.Offsets() {
		if o != wantOffsets[i] {
			t.Fatalf("Offsets = %v, want %v", back.Offsets(), wantOffsets)
		}
	}
}

func TestVTSRoundTrip(t *testing.T) {
	g, err := grid.StructuredFromRanges(
		[]float64{0, 0.5, 1}, []float64{0, 1}, []float64{0, 2},
	)
	if err != nil {
		t.Fatalf("StructuredFromRanges: %v", err)
	}
	path := filepath.Join(t.TempDir(), "grid.vts")
	if err := meshio.WriteStructuredGrid(path, g); err != nil {
		t.Fatalf("WriteStructuredGrid: %v", err)
	}
	back, err := meshio.ReadStructuredGrid(path)
	if err != nil {
		t.Fatalf("ReadStructuredGrid: %v", err)
	}
	if back.Dimensions() != [3]int{3, 2, 2} {
		t.Fatalf("Dimensions = %v, want [3 2 2]", back.Dimensions())
	}
	if got := back.At(1, 0, 1); !floats.AlmostEqual(0.5, got.X, 1e-9) || got.Z != 2 {
		t.Fatalf("At(1, 0, 1) = %v", got)
	}
}

func TestUnknownExtension(t *testing.T) {
	_, err := meshio.ReadPolyData("mesh.xyz")
	if !errors.Is(err, meshio.ErrFormat) {
		t.Fatalf("ReadPolyData error = %v, want ErrFormat", err)
	}
	// The message names the formats that would have worked.
	if !strings.Contains(err.Error(), ".stl") || !strings.Contains(err.Error(), ".vtk") {
		t.Fatalf("error %q does not list the supported extensions", err)
	}
	if err := meshio.WritePolyData("mesh.xyz", grid.NewPolyData()); !errors.Is(err, meshio.ErrFormat) {
		t.Fatalf("WritePolyData error = %v, want ErrFormat", err)
	}
}

func TestDXFExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.dxf")
	cube := cubeSurface(t)
	if err := meshio.WritePolyData(path, cube); err != nil {
		t.Fatalf("WritePolyData: %v", err)
	}
}
