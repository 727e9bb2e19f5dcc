package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
)

// LoadPLY reads an ASCII PLY file.
func LoadPLY(path string) (*grid.PolyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPLYFromReader(f)
}

// LoadPLYFromReader reads ASCII PLY data from r. Binary PLY variants
// are rejected. Vertex properties other than the coordinates are
// skipped.
func LoadPLYFromReader(r io.Reader) (*grid.PolyData, error) {
	scanner := bufio.NewScanner(r)

	nextLine := func() ([]string, error) {
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 || fields[0] == "comment" {
				continue
			}
			return fields, nil
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	fields, err := nextLine()
	if err != nil || len(fields) != 1 || fields[0] != "ply" {
		return nil, fmt.Errorf("meshio: not a ply file")
	}

	// Header: element counts and the vertex property layout, which
	// tells us which columns hold the coordinates.
	nvertex, nface := -1, -1
	var props []string
	element := ""
	for {
		fields, err = nextLine()
		if err != nil {
			return nil, fmt.Errorf("meshio: ply header: %w", err)
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("meshio: only ascii ply is supported, got %q", strings.Join(fields[1:], " "))
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("meshio: malformed ply element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("meshio: ply element count: %w", err)
			}
			element = fields[1]
			switch element {
			case "vertex":
				nvertex = n
			case "face":
				nface = n
			}
		case "property":
			if element == "vertex" && fields[1] != "list" {
				props = append(props, fields[len(fields)-1])
			}
		case "end_header":
		}
		if fields[0] == "end_header" {
			break
		}
	}
	if nvertex < 0 {
		return nil, fmt.Errorf("meshio: ply header declares no vertex element")
	}
	xi, yi, zi := -1, -1, -1
	for i, name := range props {
		switch name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, fmt.Errorf("meshio: ply vertex element lacks x, y, z properties")
	}

	points := make([]r3.Vec, 0, nvertex)
	for i := 0; i < nvertex; i++ {
		fields, err = nextLine()
		if err != nil {
			return nil, fmt.Errorf("meshio: ply vertex %d: %w", i, err)
		}
		if len(fields) < len(props) {
			return nil, fmt.Errorf("meshio: ply vertex %d has %d of %d properties", i, len(fields), len(props))
		}
		var v r3.Vec
		if v.X, err = strconv.ParseFloat(fields[xi], 64); err != nil {
			return nil, fmt.Errorf("meshio: ply vertex %d: %w", i, err)
		}
		if v.Y, err = strconv.ParseFloat(fields[yi], 64); err != nil {
			return nil, fmt.Errorf("meshio: ply vertex %d: %w", i, err)
		}
		if v.Z, err = strconv.ParseFloat(fields[zi], 64); err != nil {
			return nil, fmt.Errorf("meshio: ply vertex %d: %w", i, err)
		}
		points = append(points, v)
	}

	var faces []int64
	for i := 0; i < nface; i++ {
		fields, err = nextLine()
		if err != nil {
			return nil, fmt.Errorf("meshio: ply face %d: %w", i, err)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < 1+n {
			return nil, fmt.Errorf("meshio: malformed ply face %d", i)
		}
		faces = append(faces, int64(n))
		for _, s := range fields[1 : 1+n] {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("meshio: ply face %d: %w", i, err)
			}
			faces = append(faces, id)
		}
	}
	return grid.FromArrays(points, faces, nil)
}

// SavePLY writes an ASCII PLY file.
func SavePLY(path string, p *grid.PolyData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePLY(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePLY writes ASCII PLY data to w. Point normals are recomputed
// from the current geometry and stored alongside the coordinates.
func WritePLY(w io.Writer, p *grid.PolyData) error {
	normals := p.PointNormals()

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", p.NPoints())
	for _, c := range []string{"x", "y", "z"} {
		fmt.Fprintf(bw, "property float %s\n", c)
	}
	if normals != nil {
		for _, c := range []string{"nx", "ny", "nz"} {
			fmt.Fprintf(bw, "property float %s\n", c)
		}
	}
	fmt.Fprintf(bw, "element face %d\n", p.NFaces())
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for i, v := range p.Points() {
		if normals != nil {
			n := normals[i]
			fmt.Fprintf(bw, "%g %g %g %g %g %g\n", v.X, v.Y, v.Z, n.X, n.Y, n.Z)
		} else {
			fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
		}
	}
	faces := p.Faces()
	for i := 0; i < len(faces); {
		n := int(faces[i])
		fmt.Fprintf(bw, "%d", n)
		for _, id := range faces[i+1 : i+1+n] {
			fmt.Fprintf(bw, " %d", id)
		}
		fmt.Fprintln(bw)
		i += 1 + n
	}
	return bw.Flush()
}
