package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
	"github.com/chazu/trellis/pkg/grid"
)

// LoadVTK reads a legacy ASCII VTK file. The concrete return type
// depends on the DATASET keyword: *grid.PolyData,
// *grid.UnstructuredGrid or *grid.StructuredGrid.
func LoadVTK(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadVTKFromReader(f)
}

// vtkScanner tokenizes a legacy VTK body word by word, skipping the
// two header lines first.
type vtkScanner struct {
	s *bufio.Scanner
}

func newVTKScanner(r io.Reader) (*vtkScanner, error) {
	br := bufio.NewReader(r)
	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("meshio: vtk header: %w", err)
	}
	if !strings.HasPrefix(magic, "# vtk DataFile") {
		return nil, fmt.Errorf("meshio: not a legacy vtk file")
	}
	// Title line, free text.
	if _, err := br.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("meshio: vtk header: %w", err)
	}
	s := bufio.NewScanner(br)
	s.Split(bufio.ScanWords)
	return &vtkScanner{s: s}, nil
}

func (v *vtkScanner) word() (string, error) {
	if !v.s.Scan() {
		if err := v.s.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return v.s.Text(), nil
}

func (v *vtkScanner) int() (int, error) {
	w, err := v.word()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(w)
}

func (v *vtkScanner) float() (float64, error) {
	w, err := v.word()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(w, 64)
}

func (v *vtkScanner) ints(n int) ([]int64, error) {
	out := make([]int64, n)
	for i := range out {
		w, err := v.word()
		if err != nil {
			return nil, err
		}
		out[i], err = strconv.ParseInt(w, 10, 64)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (v *vtkScanner) points(n int) ([]r3.Vec, error) {
	pts := make([]r3.Vec, n)
	for i := range pts {
		var err error
		if pts[i].X, err = v.float(); err != nil {
			return nil, err
		}
		if pts[i].Y, err = v.float(); err != nil {
			return nil, err
		}
		if pts[i].Z, err = v.float(); err != nil {
			return nil, err
		}
	}
	return pts, nil
}

// expect consumes structural keywords like POINTS or CELL_TYPES.
func (v *vtkScanner) expect(keyword string) error {
	w, err := v.word()
	if err != nil {
		return err
	}
	if !strings.EqualFold(w, keyword) {
		return fmt.Errorf("meshio: vtk: expected %s, got %q", keyword, w)
	}
	return nil
}

// LoadVTKFromReader reads legacy ASCII VTK data from r.
func LoadVTKFromReader(r io.Reader) (any, error) {
	v, err := newVTKScanner(r)
	if err != nil {
		return nil, err
	}
	enc, err := v.word()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(enc, "ASCII") {
		return nil, fmt.Errorf("meshio: only ascii legacy vtk is supported, got %q", enc)
	}
	if err := v.expect("DATASET"); err != nil {
		return nil, err
	}
	kind, err := v.word()
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(kind) {
	case "POLYDATA":
		return loadVTKPolyData(v)
	case "UNSTRUCTURED_GRID":
		return loadVTKUnstructured(v)
	case "STRUCTURED_GRID":
		return loadVTKStructured(v)
	}
	return nil, fmt.Errorf("meshio: unsupported vtk dataset %q", kind)
}

func loadVTKPolyData(v *vtkScanner) (*grid.PolyData, error) {
	if err := v.expect("POINTS"); err != nil {
		return nil, err
	}
	n, err := v.int()
	if err != nil {
		return nil, err
	}
	if _, err := v.word(); err != nil { // data type
		return nil, err
	}
	points, err := v.points(n)
	if err != nil {
		return nil, err
	}

	// Collect the cell sections before constructing: only a file with
	// no cell sections at all is a point cloud that gets auto vertex
	// cells.
	var verts, lines, faces []int64
scan:
	for {
		section, err := v.word()
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(section) {
		case "VERTICES", "LINES", "POLYGONS":
			if _, err := v.int(); err != nil { // cell count
				return nil, err
			}
			size, err := v.int()
			if err != nil {
				return nil, err
			}
			data, err := v.ints(size)
			if err != nil {
				return nil, err
			}
			switch strings.ToUpper(section) {
			case "VERTICES":
				verts = data
			case "LINES":
				lines = data
			case "POLYGONS":
				faces = data
			}
		default:
			// Attribute sections are not read back.
			break scan
		}
	}

	p, err := grid.FromArrays(points, faces, lines)
	if err != nil {
		return nil, err
	}
	if verts != nil {
		if err := p.SetVerts(verts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func loadVTKUnstructured(v *vtkScanner) (*grid.UnstructuredGrid, error) {
	if err := v.expect("POINTS"); err != nil {
		return nil, err
	}
	n, err := v.int()
	if err != nil {
		return nil, err
	}
	if _, err := v.word(); err != nil {
		return nil, err
	}
	points, err := v.points(n)
	if err != nil {
		return nil, err
	}

	if err := v.expect("CELLS"); err != nil {
		return nil, err
	}
	ncells, err := v.int()
	if err != nil {
		return nil, err
	}
	size, err := v.int()
	if err != nil {
		return nil, err
	}
	padded, err := v.ints(size)
	if err != nil {
		return nil, err
	}

	if err := v.expect("CELL_TYPES"); err != nil {
		return nil, err
	}
	if m, err := v.int(); err != nil {
		return nil, err
	} else if m != ncells {
		return nil, fmt.Errorf("meshio: vtk declares %d cells but %d cell types", ncells, m)
	}
	types := make([]cells.CellType, ncells)
	for i := range types {
		t, err := v.int()
		if err != nil {
			return nil, err
		}
		types[i] = cells.CellType(t)
	}
	return grid.FromCells(padded, types, points)
}

func loadVTKStructured(v *vtkScanner) (*grid.StructuredGrid, error) {
	if err := v.expect("DIMENSIONS"); err != nil {
		return nil, err
	}
	var dims [3]int
	for i := range dims {
		var err error
		if dims[i], err = v.int(); err != nil {
			return nil, err
		}
	}
	if err := v.expect("POINTS"); err != nil {
		return nil, err
	}
	n, err := v.int()
	if err != nil {
		return nil, err
	}
	if _, err := v.word(); err != nil {
		return nil, err
	}
	points, err := v.points(n)
	if err != nil {
		return nil, err
	}
	return grid.StructuredFromPoints(dims, points)
}

func saveVTK(path string, write func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "trellis output")
	fmt.Fprintln(bw, "ASCII")
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeVTKPoints(bw *bufio.Writer, points []r3.Vec) {
	fmt.Fprintf(bw, "POINTS %d double\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
	}
}

func writeVTKCellArray(bw *bufio.Writer, keyword string, ncells int, data []int64) {
	if ncells == 0 {
		return
	}
	fmt.Fprintf(bw, "%s %d %d\n", keyword, ncells, len(data))
	for i := 0; i < len(data); {
		n := int(data[i])
		fmt.Fprintf(bw, "%d", n)
		for _, id := range data[i+1 : i+1+n] {
			fmt.Fprintf(bw, " %d", id)
		}
		fmt.Fprintln(bw)
		i += 1 + n
	}
}

// SaveVTKPolyData writes a legacy ASCII VTK POLYDATA file.
func SaveVTKPolyData(path string, p *grid.PolyData) error {
	return saveVTK(path, func(bw *bufio.Writer) error {
		fmt.Fprintln(bw, "DATASET POLYDATA")
		writeVTKPoints(bw, p.Points())
		writeVTKCellArray(bw, "VERTICES", p.NVerts(), p.Verts())
		writeVTKCellArray(bw, "LINES", p.NLines(), p.Lines())
		writeVTKCellArray(bw, "POLYGONS", p.NFaces(), p.Faces())
		return nil
	})
}

// SaveVTKUnstructuredGrid writes a legacy ASCII VTK UNSTRUCTURED_GRID
// file.
func SaveVTKUnstructuredGrid(path string, g *grid.UnstructuredGrid) error {
	return saveVTK(path, func(bw *bufio.Writer) error {
		fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")
		writeVTKPoints(bw, g.Points())
		writeVTKCellArray(bw, "CELLS", g.NCells(), g.Cells())
		fmt.Fprintf(bw, "CELL_TYPES %d\n", g.NCells())
		for _, t := range g.CellTypes() {
			fmt.Fprintf(bw, "%d\n", uint8(t))
		}
		return nil
	})
}

// SaveVTKStructuredGrid writes a legacy ASCII VTK STRUCTURED_GRID
// file.
func SaveVTKStructuredGrid(path string, g *grid.StructuredGrid) error {
	return saveVTK(path, func(bw *bufio.Writer) error {
		fmt.Fprintln(bw, "DATASET STRUCTURED_GRID")
		dims := g.Dimensions()
		fmt.Fprintf(bw, "DIMENSIONS %d %d %d\n", dims[0], dims[1], dims[2])
		writeVTKPoints(bw, g.Points())
		return nil
	})
}
