// Package grid implements the typed dataset containers: polygonal
// surfaces, mixed-cell unstructured grids and dimensioned structured
// grids. The containers own point and connectivity bookkeeping and
// input validation; geometric computation is delegated to the kernel.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
	"github.com/chazu/trellis/pkg/kernel/native"
)

// DefaultKernel is the geometry kernel backing dataset accessors.
// Swappable for an alternate backend.
var DefaultKernel kernel.Kernel = native.New()

// ErrInvalidInput marks constructor failures caused by input of the
// wrong kind, as opposed to size mismatches.
var ErrInvalidInput = errors.New("grid: invalid input")

// GhostArrayName is the cell data array used to mark duplicate or
// hidden cells.
const GhostArrayName = "GhostType"

// Ghost cell markers stored in the GhostArrayName cell array.
const (
	CellVisible   = 0
	CellDuplicate = 1
	CellHidden    = 2
)

// dataset carries the state common to every grid type: the point set
// and named point/cell data arrays.
type dataset struct {
	points    []r3.Vec
	pointData map[string][]float64
	cellData  map[string][]float64
}

// NPoints returns the number of points.
func (d *dataset) NPoints() int { return len(d.points) }

// Points returns the point coordinates. The slice is shared, not copied.
func (d *dataset) Points() []r3.Vec { return d.points }

// Point returns point i.
func (d *dataset) Point(i int) r3.Vec { return d.points[i] }

// Bounds returns the axis-aligned bounding box of the points.
func (d *dataset) Bounds() r3.Box {
	if len(d.points) == 0 {
		return r3.Box{}
	}
	min, max := d.points[0], d.points[0]
	for _, p := range d.points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return r3.Box{Min: min, Max: max}
}

// Center returns the center of the bounding box.
func (d *dataset) Center() r3.Vec {
	b := d.Bounds()
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// CenterOfMass returns the centroid of the point set. When weights is
// non-nil its length must match the number of points.
func (d *dataset) CenterOfMass(weights []float64) (r3.Vec, error) {
	if weights != nil && len(weights) != len(d.points) {
		return r3.Vec{}, fmt.Errorf("grid: weights length (%d) must match the number of points (%d)",
			len(weights), len(d.points))
	}
	return DefaultKernel.CenterOfMass(d.points, weights), nil
}

// PointData returns the named point array, or nil if absent.
func (d *dataset) PointData(name string) []float64 {
	return d.pointData[name]
}

// SetPointData attaches a named per-point array. The length must match
// the number of points.
func (d *dataset) SetPointData(name string, values []float64) error {
	if len(values) != len(d.points) {
		return fmt.Errorf("grid: point array %q length (%d) must match the number of points (%d)",
			name, len(values), len(d.points))
	}
	if d.pointData == nil {
		d.pointData = make(map[string][]float64)
	}
	d.pointData[name] = values
	return nil
}

// CellData returns the named cell array, or nil if absent.
func (d *dataset) CellData(name string) []float64 {
	return d.cellData[name]
}

// setCellData validates against the owner's cell count; the exported
// wrappers live on the concrete types, which know their cell count.
func (d *dataset) setCellData(name string, values []float64, ncells int) error {
	if len(values) != ncells {
		return fmt.Errorf("grid: cell array %q length (%d) must match the number of cells (%d)",
			name, len(values), ncells)
	}
	if d.cellData == nil {
		d.cellData = make(map[string][]float64)
	}
	d.cellData[name] = values
	return nil
}

// copyInto deep-copies the dataset state into dst.
func (d *dataset) copyInto(dst *dataset) {
	dst.points = append([]r3.Vec(nil), d.points...)
	if d.pointData != nil {
		dst.pointData = make(map[string][]float64, len(d.pointData))
		for k, v := range d.pointData {
			dst.pointData[k] = append([]float64(nil), v...)
		}
	}
	if d.cellData != nil {
		dst.cellData = make(map[string][]float64, len(d.cellData))
		for k, v := range d.cellData {
			dst.cellData[k] = append([]float64(nil), v...)
		}
	}
}

// Translate shifts every point by v in place.
func (d *dataset) Translate(v r3.Vec) {
	for i := range d.points {
		d.points[i] = r3.Add(d.points[i], v)
	}
}

// Scale multiplies every point by f about the origin, in place.
func (d *dataset) Scale(f float64) {
	for i := range d.points {
		d.points[i] = r3.Scale(f, d.points[i])
	}
}

// RotateX rotates the points about the x axis by angle degrees.
// When about is non-nil the rotation is centered on that point.
func (d *dataset) RotateX(angle float64, about *r3.Vec) {
	d.RotateVector(r3.Vec{X: 1}, angle, about)
}

// RotateY rotates the points about the y axis by angle degrees.
func (d *dataset) RotateY(angle float64, about *r3.Vec) {
	d.RotateVector(r3.Vec{Y: 1}, angle, about)
}

// RotateZ rotates the points about the z axis by angle degrees.
func (d *dataset) RotateZ(angle float64, about *r3.Vec) {
	d.RotateVector(r3.Vec{Z: 1}, angle, about)
}

// RotateVector rotates the points about an arbitrary axis by angle
// degrees, optionally centered on a point. A zero axis is a no-op.
func (d *dataset) RotateVector(axis r3.Vec, angle float64, about *r3.Vec) {
	if r3.Norm(axis) == 0 {
		return
	}
	rot := r3.NewRotation(angle*math.Pi/180, axis)
	var origin r3.Vec
	if about != nil {
		origin = *about
	}
	for i := range d.points {
		d.points[i] = r3.Add(rot.Rotate(r3.Sub(d.points[i], origin)), origin)
	}
}

// maskToIndices converts a boolean cell mask to indices, validating
// the mask length against the cell count.
func maskToIndices(mask []bool, ncells int) ([]int, error) {
	if len(mask) != ncells {
		return nil, fmt.Errorf("grid: boolean mask size (%d) must match the number of cells (%d)",
			len(mask), ncells)
	}
	var ind []int
	for i, m := range mask {
		if m {
			ind = append(ind, i)
		}
	}
	return ind, nil
}

// validCellIndices checks every index against the cell count.
func validCellIndices(ind []int, ncells int) error {
	for _, i := range ind {
		if i < 0 || i >= ncells {
			return fmt.Errorf("grid: cell index %d outside [0, %d)", i, ncells)
		}
	}
	return nil
}
