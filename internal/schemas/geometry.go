// internal/schemas/geometry.go
package schemas

import "math"

// DisplayGeometry is the display configuration read once per run. Logical
// dimensions are what input and window-management APIs use; raw captures on
// high-density displays are Scale times larger on each axis.
type DisplayGeometry struct {
	LogicalWidth  int
	LogicalHeight int
	Scale         float64
}

// Denormalize converts a normalized [0,1]x[0,1] position to logical device
// pixels: pixel = round(norm * logical).
func (g DisplayGeometry) Denormalize(xNorm, yNorm float64) (int, int) {
	x := int(math.Round(xNorm * float64(g.LogicalWidth)))
	y := int(math.Round(yNorm * float64(g.LogicalHeight)))
	return x, y
}

// Normalize is the inverse mapping, used for round-trip verification and
// debug output.
func (g DisplayGeometry) Normalize(x, y int) (float64, float64) {
	return float64(x) / float64(g.LogicalWidth), float64(y) / float64(g.LogicalHeight)
}

// Retina reports whether raw captures need downscaling to logical resolution.
func (g DisplayGeometry) Retina() bool {
	return g.Scale > 1
}
