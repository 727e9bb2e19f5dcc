package plot

import (
	"fmt"
	"image/color"
	"math"
)

// Color holds floating point RGBA components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{1, 1, 1, 1}
	Black = Color{0, 0, 0, 1}
)

// HexColor parses "rrggbb" or "#rrggbb" into a Color.
func HexColor(s string) Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	var r, g, b uint8
	fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// NRGBA converts to an 8-bit image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// MulScalar scales the color components, leaving alpha alone.
func (c Color) MulScalar(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Add adds color components, leaving alpha alone.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// Min clamps each component against o.
func (c Color) Min(o Color) Color {
	return Color{
		math.Min(c.R, o.R), math.Min(c.G, o.G),
		math.Min(c.B, o.B), math.Min(c.A, o.A),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
