// Package meshio reads and writes mesh datasets in the common
// exchange formats. The format is chosen by file extension: surface
// meshes use .ply, .stl, .obj, .vtk, .vtp, .gltf and .glb,
// unstructured grids use .vtu and .vtk, structured grids use .vts and
// .vtk.
package meshio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/trellis/pkg/grid"
)

// ErrFormat reports an extension no reader or writer is registered
// for.
var ErrFormat = errors.New("meshio: unsupported file format")

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// formatErr reports an unsupported extension along with the formats
// the operation does support.
func formatErr(path string, supported ...string) error {
	return fmt.Errorf("%w: %q (supported: %s)", ErrFormat, ext(path), strings.Join(supported, " "))
}

// ReadPolyData reads a surface mesh, dispatching on the file
// extension.
func ReadPolyData(path string) (*grid.PolyData, error) {
	switch ext(path) {
	case ".stl":
		return LoadSTL(path)
	case ".obj":
		return LoadOBJ(path)
	case ".ply":
		return LoadPLY(path)
	case ".vtp":
		return LoadVTP(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".vtk":
		ds, err := LoadVTK(path)
		if err != nil {
			return nil, err
		}
		p, ok := ds.(*grid.PolyData)
		if !ok {
			return nil, fmt.Errorf("meshio: %s holds a %T, not polydata", path, ds)
		}
		return p, nil
	}
	return nil, formatErr(path, ".stl", ".obj", ".ply", ".vtp", ".gltf", ".glb", ".vtk")
}

// WritePolyData writes a surface mesh, dispatching on the file
// extension. Saving to .stl or .ply recomputes normals from the
// current geometry.
func WritePolyData(path string, p *grid.PolyData) error {
	switch ext(path) {
	case ".stl":
		return SaveSTL(path, p)
	case ".obj":
		return SaveOBJ(path, p)
	case ".ply":
		return SavePLY(path, p)
	case ".vtp":
		return SaveVTP(path, p)
	case ".vtk":
		return SaveVTKPolyData(path, p)
	case ".dxf":
		return SaveDXF(path, p)
	}
	return formatErr(path, ".stl", ".obj", ".ply", ".vtp", ".vtk", ".dxf")
}

// ReadUnstructuredGrid reads an unstructured grid, dispatching on the
// file extension.
func ReadUnstructuredGrid(path string) (*grid.UnstructuredGrid, error) {
	switch ext(path) {
	case ".vtu":
		return LoadVTU(path)
	case ".vtk":
		ds, err := LoadVTK(path)
		if err != nil {
			return nil, err
		}
		g, ok := ds.(*grid.UnstructuredGrid)
		if !ok {
			return nil, fmt.Errorf("meshio: %s holds a %T, not an unstructured grid", path, ds)
		}
		return g, nil
	}
	return nil, formatErr(path, ".vtu", ".vtk")
}

// WriteUnstructuredGrid writes an unstructured grid, dispatching on
// the file extension.
func WriteUnstructuredGrid(path string, g *grid.UnstructuredGrid) error {
	switch ext(path) {
	case ".vtu":
		return SaveVTU(path, g)
	case ".vtk":
		return SaveVTKUnstructuredGrid(path, g)
	}
	return formatErr(path, ".vtu", ".vtk")
}

// ReadStructuredGrid reads a structured grid, dispatching on the file
// extension.
func ReadStructuredGrid(path string) (*grid.StructuredGrid, error) {
	switch ext(path) {
	case ".vts":
		return LoadVTS(path)
	case ".vtk":
		ds, err := LoadVTK(path)
		if err != nil {
			return nil, err
		}
		g, ok := ds.(*grid.StructuredGrid)
		if !ok {
			return nil, fmt.Errorf("meshio: %s holds a %T, not a structured grid", path, ds)
		}
		return g, nil
	}
	return nil, formatErr(path, ".vts", ".vtk")
}

// WriteStructuredGrid writes a structured grid, dispatching on the
// file extension.
func WriteStructuredGrid(path string, g *grid.StructuredGrid) error {
	switch ext(path) {
	case ".vts":
		return SaveVTS(path, g)
	case ".vtk":
		return SaveVTKStructuredGrid(path, g)
	}
	return formatErr(path, ".vts", ".vtk")
}
