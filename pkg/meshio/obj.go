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

// LoadOBJ reads a Wavefront OBJ file. Polygonal faces are kept as
// polygons, not triangulated.
func LoadOBJ(path string) (*grid.PolyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadOBJFromReader(f)
}

// LoadOBJFromReader reads OBJ data from r. Texture coordinates,
// normals, groups and materials are skipped.
func LoadOBJFromReader(r io.Reader) (*grid.PolyData, error) {
	var points []r3.Vec
	var faces, lines []int64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("meshio: malformed obj vertex line %q", line)
			}
			var v r3.Vec
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, fmt.Errorf("meshio: obj vertex: %w", err)
			}
			if v.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
				return nil, fmt.Errorf("meshio: obj vertex: %w", err)
			}
			if v.Z, err = strconv.ParseFloat(fields[3], 64); err != nil {
				return nil, fmt.Errorf("meshio: obj vertex: %w", err)
			}
			points = append(points, v)
		case "f":
			ids, err := objIndices(fields[1:], len(points))
			if err != nil {
				return nil, err
			}
			faces = append(faces, int64(len(ids)))
			faces = append(faces, ids...)
		case "l":
			ids, err := objIndices(fields[1:], len(points))
			if err != nil {
				return nil, err
			}
			lines = append(lines, int64(len(ids)))
			lines = append(lines, ids...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return grid.FromArrays(points, faces, lines)
}

// objIndices resolves "v", "v/vt" and "v/vt/vn" references to
// zero-based point ids. Negative indices count back from the last
// vertex read so far.
func objIndices(args []string, npoints int) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		ref, _, _ := strings.Cut(arg, "/")
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("meshio: obj face reference %q: %w", arg, err)
		}
		if n < 0 {
			n += npoints + 1
		}
		if n < 1 || n > npoints {
			return nil, fmt.Errorf("meshio: obj face references vertex %d of %d", n, npoints)
		}
		ids[i] = int64(n - 1)
	}
	return ids, nil
}

// SaveOBJ writes a Wavefront OBJ file.
func SaveOBJ(path string, p *grid.PolyData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteOBJ writes OBJ data to w. Faces and lines use one-based
// indices per the format.
func WriteOBJ(w io.Writer, p *grid.PolyData) error {
	bw := bufio.NewWriter(w)
	for _, v := range p.Points() {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	writeObjCells := func(keyword string, data []int64) {
		for i := 0; i < len(data); {
			n := int(data[i])
			fmt.Fprint(bw, keyword)
			for _, id := range data[i+1 : i+1+n] {
				fmt.Fprintf(bw, " %d", id+1)
			}
			fmt.Fprintln(bw)
			i += 1 + n
		}
	}
	writeObjCells("l", p.Lines())
	writeObjCells("f", p.Faces())
	return bw.Flush()
}
