package detection

import (
	"math"
)

// ArrowDensityThreshold is the fraction of set pixels in the tip region above
// which an arrowhead is assumed.
const ArrowDensityThreshold = 0.15

// DefaultArrowTipSize is the half-size of the inspected square in pixels.
const DefaultArrowTipSize = 15

// Endpoint is a node as seen by the arrow detector: its centroid and the
// extent of its bounding box.
type Endpoint struct {
	Center Point
	Width  float64
	Height float64
}

// ArrowDetector decides whether an arrowhead sits at the "to" end of a
// connection.
type ArrowDetector struct {
	// TipSize is the half-size of the square region inspected around the tip.
	TipSize int
}

// NewArrowDetector returns a detector inspecting a (2*tipSize+1)² region. A
// non-positive tipSize selects DefaultArrowTipSize.
func NewArrowDetector(tipSize int) *ArrowDetector {
	if tipSize <= 0 {
		tipSize = DefaultArrowTipSize
	}
	return &ArrowDetector{TipSize: tipSize}
}

// TipPoint returns where an arrowhead pointing at "to" would touch its
// bounding box: the centroid of "to" moved toward "from" by half the box
// width along X and half the box height along Y, scaled by the unit
// direction.
func TipPoint(from, to Endpoint) (Point, bool) {
	dx := to.Center.X - from.Center.X
	dy := to.Center.Y - from.Center.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Point{}, false
	}
	return Point{
		X: math.Round(to.Center.X - dx/length*to.Width*0.5),
		Y: math.Round(to.Center.Y - dy/length*to.Height*0.5),
	}, true
}

// Density returns the fraction of set mask pixels in the square of half-size
// TipSize around the tip point of from→to. The square is clipped to the
// mask; a square entirely outside the mask has density 0.
func (d *ArrowDetector) Density(mask EdgeMask, from, to Endpoint) float64 {
	tip, ok := TipPoint(from, to)
	if !ok {
		return 0
	}

	bounds := mask.Bounds()
	tx, ty := int(tip.X), int(tip.Y)
	x0 := maxInt(bounds.Min.X, tx-d.TipSize)
	y0 := maxInt(bounds.Min.Y, ty-d.TipSize)
	x1 := minInt(bounds.Max.X-1, tx+d.TipSize)
	y1 := minInt(bounds.Max.Y-1, ty+d.TipSize)
	if x1 < x0 || y1 < y0 {
		return 0
	}

	count := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if mask.Edge(x, y) {
				count++
			}
		}
	}

	area := (x1 - x0 + 1) * (y1 - y0 + 1)
	return float64(count) / float64(area)
}

// Detect reports whether an arrowhead points at "to" along from→to.
//
// Arrowheads add pixel density at the line tip compared with the bare
// stroke; anything denser than ArrowDensityThreshold counts.
func (d *ArrowDetector) Detect(mask EdgeMask, from, to Endpoint) bool {
	return d.Density(mask, from, to) > ArrowDensityThreshold
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
