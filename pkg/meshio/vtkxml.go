package meshio

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/cells"
	"github.com/chazu/trellis/pkg/grid"
)

// The XML file formats store cell arrays as a connectivity array plus
// an offsets array holding the end of each cell, one entry per cell.

type xmlDataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr,omitempty"`
	Components int    `xml:"NumberOfComponents,attr,omitempty"`
	Format     string `xml:"format,attr"`
	Data       string `xml:",chardata"`
}

type xmlPoints struct {
	Array xmlDataArray `xml:"DataArray"`
}

type xmlCellBlock struct {
	Arrays []xmlDataArray `xml:"DataArray"`
}

type xmlPolyPiece struct {
	NumberOfPoints int           `xml:"NumberOfPoints,attr"`
	NumberOfVerts  int           `xml:"NumberOfVerts,attr"`
	NumberOfLines  int           `xml:"NumberOfLines,attr"`
	NumberOfPolys  int           `xml:"NumberOfPolys,attr"`
	Points         xmlPoints     `xml:"Points"`
	Verts          *xmlCellBlock `xml:"Verts"`
	Lines          *xmlCellBlock `xml:"Lines"`
	Polys          *xmlCellBlock `xml:"Polys"`
}

type xmlGridPiece struct {
	NumberOfPoints int          `xml:"NumberOfPoints,attr"`
	NumberOfCells  int          `xml:"NumberOfCells,attr"`
	Points         xmlPoints    `xml:"Points"`
	Cells          xmlCellBlock `xml:"Cells"`
}

type xmlStructPiece struct {
	Extent string    `xml:"Extent,attr"`
	Points xmlPoints `xml:"Points"`
}

type xmlVTKFile struct {
	XMLName   xml.Name `xml:"VTKFile"`
	Type      string   `xml:"type,attr"`
	Version   string   `xml:"version,attr"`
	ByteOrder string   `xml:"byte_order,attr"`

	PolyData *struct {
		Piece xmlPolyPiece `xml:"Piece"`
	} `xml:"PolyData"`
	UnstructuredGrid *struct {
		Piece xmlGridPiece `xml:"Piece"`
	} `xml:"UnstructuredGrid"`
	StructuredGrid *struct {
		WholeExtent string         `xml:"WholeExtent,attr"`
		Piece       xmlStructPiece `xml:"Piece"`
	} `xml:"StructuredGrid"`
}

func formatInts(data []int64) string {
	var sb strings.Builder
	for i, v := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

func formatPoints(points []r3.Vec) string {
	var sb strings.Builder
	for i, p := range points {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%g %g %g", p.X, p.Y, p.Z)
	}
	return sb.String()
}

func parseInts(s string) ([]int64, error) {
	fields := strings.Fields(s)
	out := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("meshio: xml integer array: %w", err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoints(s string) ([]r3.Vec, error) {
	fields := strings.Fields(s)
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("meshio: xml point array holds %d values, not a multiple of 3", len(fields))
	}
	out := make([]r3.Vec, len(fields)/3)
	for i := range out {
		var vals [3]float64
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[3*i+j], 64)
			if err != nil {
				return nil, fmt.Errorf("meshio: xml point array: %w", err)
			}
			vals[j] = v
		}
		out[i] = r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
	}
	return out, nil
}

func pointsArray(points []r3.Vec) xmlPoints {
	return xmlPoints{Array: xmlDataArray{
		Type: "Float64", Components: 3, Format: "ascii",
		Data: formatPoints(points),
	}}
}

func intArray(name string, data []int64) xmlDataArray {
	return xmlDataArray{Type: "Int64", Name: name, Format: "ascii", Data: formatInts(data)}
}

// cellBlock encodes a padded cell array as connectivity and offsets
// arrays.
func cellBlock(padded []int64) (*xmlCellBlock, error) {
	arr, err := cells.ParseArray(padded)
	if err != nil {
		return nil, err
	}
	conn, offsets := arr.ToModern()
	return &xmlCellBlock{Arrays: []xmlDataArray{
		intArray("connectivity", conn),
		intArray("offsets", offsets[1:]),
	}}, nil
}

func (b *xmlCellBlock) named(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, a := range b.Arrays {
		if a.Name == name {
			return a.Data, true
		}
	}
	return "", false
}

// paddedCells decodes a connectivity/offsets block back to a padded
// cell array.
func (b *xmlCellBlock) paddedCells() ([]int64, error) {
	connStr, ok := b.named("connectivity")
	if !ok {
		return nil, nil
	}
	endsStr, _ := b.named("offsets")
	conn, err := parseInts(connStr)
	if err != nil {
		return nil, err
	}
	ends, err := parseInts(endsStr)
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, len(ends)+1)
	copy(offsets[1:], ends)
	arr, err := cells.FromModern(conn, offsets)
	if err != nil {
		return nil, err
	}
	return arr.Data(), nil
}

func loadVTKFile(r io.Reader, wantType string) (*xmlVTKFile, error) {
	var file xmlVTKFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("meshio: xml vtk: %w", err)
	}
	if file.Type != wantType {
		return nil, fmt.Errorf("meshio: xml vtk file holds %q, want %q", file.Type, wantType)
	}
	return &file, nil
}

func saveVTKFile(path string, file *xmlVTKFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		f.Close()
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(file); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadVTP reads an XML PolyData (.vtp) file. Only inline ascii data
// arrays are supported.
func LoadVTP(path string) (*grid.PolyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadVTPFromReader(f)
}

// LoadVTPFromReader reads XML PolyData from r.
func LoadVTPFromReader(r io.Reader) (*grid.PolyData, error) {
	file, err := loadVTKFile(r, "PolyData")
	if err != nil {
		return nil, err
	}
	if file.PolyData == nil {
		return nil, fmt.Errorf("meshio: xml vtk file lacks a PolyData element")
	}
	piece := file.PolyData.Piece
	points, err := parsePoints(piece.Points.Array.Data)
	if err != nil {
		return nil, err
	}
	// Decode the cell blocks before constructing: only a file with no
	// cells at all is a point cloud that gets auto vertex cells.
	verts, err := piece.Verts.paddedCells()
	if err != nil {
		return nil, err
	}
	lines, err := piece.Lines.paddedCells()
	if err != nil {
		return nil, err
	}
	faces, err := piece.Polys.paddedCells()
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		faces = nil
	}
	if len(lines) == 0 {
		lines = nil
	}
	if len(verts) == 0 && lines == nil && faces == nil {
		return grid.FromPoints(points), nil
	}
	p, err := grid.FromArrays(points, faces, lines)
	if err != nil {
		return nil, err
	}
	if len(verts) > 0 {
		if err := p.SetVerts(verts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SaveVTP writes an XML PolyData (.vtp) file with inline ascii data.
func SaveVTP(path string, p *grid.PolyData) error {
	verts, err := cellBlock(p.Verts())
	if err != nil {
		return err
	}
	lines, err := cellBlock(p.Lines())
	if err != nil {
		return err
	}
	polys, err := cellBlock(p.Faces())
	if err != nil {
		return err
	}
	file := &xmlVTKFile{
		Type: "PolyData", Version: "1.0", ByteOrder: "LittleEndian",
		PolyData: &struct {
			Piece xmlPolyPiece `xml:"Piece"`
		}{Piece: xmlPolyPiece{
			NumberOfPoints: p.NPoints(),
			NumberOfVerts:  p.NVerts(),
			NumberOfLines:  p.NLines(),
			NumberOfPolys:  p.NFaces(),
			Points:         pointsArray(p.Points()),
			Verts:          verts,
			Lines:          lines,
			Polys:          polys,
		}},
	}
	return saveVTKFile(path, file)
}

// LoadVTU reads an XML UnstructuredGrid (.vtu) file.
func LoadVTU(path string) (*grid.UnstructuredGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadVTUFromReader(f)
}

// LoadVTUFromReader reads XML UnstructuredGrid data from r.
func LoadVTUFromReader(r io.Reader) (*grid.UnstructuredGrid, error) {
	file, err := loadVTKFile(r, "UnstructuredGrid")
	if err != nil {
		return nil, err
	}
	if file.UnstructuredGrid == nil {
		return nil, fmt.Errorf("meshio: xml vtk file lacks an UnstructuredGrid element")
	}
	piece := file.UnstructuredGrid.Piece
	points, err := parsePoints(piece.Points.Array.Data)
	if err != nil {
		return nil, err
	}
	padded, err := piece.Cells.paddedCells()
	if err != nil {
		return nil, err
	}
	typesStr, ok := piece.Cells.named("types")
	if !ok {
		return nil, fmt.Errorf("meshio: xml vtk cells lack a types array")
	}
	rawTypes, err := parseInts(typesStr)
	if err != nil {
		return nil, err
	}
	types := make([]cells.CellType, len(rawTypes))
	for i, t := range rawTypes {
		types[i] = cells.CellType(t)
	}
	return grid.FromCells(padded, types, points)
}

// SaveVTU writes an XML UnstructuredGrid (.vtu) file with inline
// ascii data.
func SaveVTU(path string, g *grid.UnstructuredGrid) error {
	rawTypes := make([]int64, g.NCells())
	for i, t := range g.CellTypes() {
		rawTypes[i] = int64(t)
	}
	offsets := g.Offsets()
	file := &xmlVTKFile{
		Type: "UnstructuredGrid", Version: "1.0", ByteOrder: "LittleEndian",
		UnstructuredGrid: &struct {
			Piece xmlGridPiece `xml:"Piece"`
		}{Piece: xmlGridPiece{
			NumberOfPoints: g.NPoints(),
			NumberOfCells:  g.NCells(),
			Points:         pointsArray(g.Points()),
			Cells: xmlCellBlock{Arrays: []xmlDataArray{
				intArray("connectivity", g.CellConnectivity()),
				intArray("offsets", offsets[1:]),
				intArray("types", rawTypes),
			}},
		}},
	}
	return saveVTKFile(path, file)
}

// LoadVTS reads an XML StructuredGrid (.vts) file.
func LoadVTS(path string) (*grid.StructuredGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadVTSFromReader(f)
}

// LoadVTSFromReader reads XML StructuredGrid data from r.
func LoadVTSFromReader(r io.Reader) (*grid.StructuredGrid, error) {
	file, err := loadVTKFile(r, "StructuredGrid")
	if err != nil {
		return nil, err
	}
	if file.StructuredGrid == nil {
		return nil, fmt.Errorf("meshio: xml vtk file lacks a StructuredGrid element")
	}
	var e [6]int
	if _, err := fmt.Sscan(file.StructuredGrid.WholeExtent,
		&e[0], &e[1], &e[2], &e[3], &e[4], &e[5]); err != nil {
		return nil, fmt.Errorf("meshio: xml vtk extent %q: %w", file.StructuredGrid.WholeExtent, err)
	}
	dims := [3]int{e[1] - e[0] + 1, e[3] - e[2] + 1, e[5] - e[4] + 1}
	points, err := parsePoints(file.StructuredGrid.Piece.Points.Array.Data)
	if err != nil {
		return nil, err
	}
	return grid.StructuredFromPoints(dims, points)
}

// SaveVTS writes an XML StructuredGrid (.vts) file with inline ascii
// data.
func SaveVTS(path string, g *grid.StructuredGrid) error {
	dims := g.Dimensions()
	extent := fmt.Sprintf("0 %d 0 %d 0 %d", dims[0]-1, dims[1]-1, dims[2]-1)
	file := &xmlVTKFile{
		Type: "StructuredGrid", Version: "1.0", ByteOrder: "LittleEndian",
		StructuredGrid: &struct {
			WholeExtent string         `xml:"WholeExtent,attr"`
			Piece       xmlStructPiece `xml:"Piece"`
		}{
			WholeExtent: extent,
			Piece: xmlStructPiece{
				Extent: extent,
				Points: pointsArray(g.Points()),
			},
		},
	}
	return saveVTKFile(path, file)
}
