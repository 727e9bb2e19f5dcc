// Package native implements the default pure-Go geometry kernel
// backend. It provides mass properties, normals, feature-edge
// extraction, OBB trees and classification-based boolean operations
// over indexed triangle meshes.
package native

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/trellis/pkg/kernel"
)

// Native is the built-in geometry kernel.
type Native struct{}

// New returns the native kernel backend.
func New() kernel.Kernel {
	return &Native{}
}

// CenterOfMass computes the weighted centroid of a point set. A nil
// weights slice means uniform weighting; a weights slice shorter than
// the points is treated as zero-padded.
func (n *Native) CenterOfMass(points []r3.Vec, weights []float64) r3.Vec {
	if len(points) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	var total float64
	for i, p := range points {
		w := 1.0
		if weights != nil {
			if i < len(weights) {
				w = weights[i]
			} else {
				w = 0
			}
		}
		sum = r3.Add(sum, r3.Scale(w, p))
		total += w
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, sum)
}
