package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/grid"
	"github.com/chazu/trellis/pkg/kernel"
)

// LoadSTL reads a binary or ASCII STL file. Duplicate vertices shared
// between facets are merged.
func LoadSTL(path string) (*grid.PolyData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadSTLFromBytes(b)
}

// LoadSTLFromBytes reads STL data, detecting the binary and ASCII
// variants.
func LoadSTLFromBytes(b []byte) (*grid.PolyData, error) {
	if isASCIISTL(b) {
		return loadTextSTL(bytes.NewReader(b))
	}
	return loadBinarySTL(b)
}

// isASCIISTL sniffs the variant. A "solid" prefix alone is not enough
// since binary exporters write it into the header too.
func isASCIISTL(b []byte) bool {
	head := b
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(bytes.TrimSpace(head), []byte("solid")) &&
		bytes.Contains(head, []byte("facet"))
}

func loadBinarySTL(b []byte) (*grid.PolyData, error) {
	if len(b) < 84 {
		return nil, fmt.Errorf("meshio: stl data truncated at %d bytes", len(b))
	}
	n := binary.LittleEndian.Uint32(b[80:84])
	if int64(len(b)) < 84+int64(n)*50 {
		return nil, fmt.Errorf("meshio: stl header promises %d facets, data truncated", n)
	}
	tris := make([]r3.Triangle, 0, n)
	off := 84
	for i := uint32(0); i < n; i++ {
		// Skip the stored facet normal, it is recomputed on demand.
		var t r3.Triangle
		for j := 0; j < 3; j++ {
			base := off + 12 + j*12
			t[j] = r3.Vec{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[base:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[base+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[base+8:]))),
			}
		}
		tris = append(tris, t)
		off += 50
	}
	return grid.FromTriMesh(kernel.FromTriangles(tris)), nil
}

func loadTextSTL(r io.Reader) (*grid.PolyData, error) {
	var tris []r3.Triangle
	var cur r3.Triangle
	nv := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("meshio: malformed stl vertex line %q", scanner.Text())
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("meshio: stl vertex: %w", err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("meshio: stl vertex: %w", err)
		}
		z, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("meshio: stl vertex: %w", err)
		}
		cur[nv] = r3.Vec{X: x, Y: y, Z: z}
		nv++
		if nv == 3 {
			tris = append(tris, cur)
			nv = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if nv != 0 {
		return nil, fmt.Errorf("meshio: stl facet with %d vertices", nv)
	}
	return grid.FromTriMesh(kernel.FromTriangles(tris)), nil
}

// SaveSTL writes a binary STL file. Non-triangular faces are
// triangulated and facet normals recomputed from the geometry.
func SaveSTL(path string, p *grid.PolyData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSTL(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSTL writes binary STL data to w.
func WriteSTL(w io.Writer, p *grid.PolyData) error {
	m := p.AsTriMesh()
	normals := grid.DefaultKernel.CellNormals(m)

	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "solid")
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}
	buf := make([]byte, 50)
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		putVec32(buf[0:], normals[i])
		putVec32(buf[12:], t[0])
		putVec32(buf[24:], t[1])
		putVec32(buf[36:], t[2])
		buf[48], buf[49] = 0, 0
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec32(b []byte, v r3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
