package native

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// MassProperties computes the total surface area and, via the
// divergence theorem, the volume enclosed by the surface. The volume
// is only meaningful for closed, consistently wound meshes.
func (n *Native) MassProperties(m *kernel.TriMesh) (kernel.MassProps, error) {
	if err := m.Validate(); err != nil {
		return kernel.MassProps{}, err
	}
	var area, vol6 float64
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		cr := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		area += 0.5 * r3.Norm(cr)
		vol6 += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return kernel.MassProps{Area: area, Volume: math.Abs(vol6) / 6}, nil
}
