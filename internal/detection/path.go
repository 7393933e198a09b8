package detection

import (
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
)

// EdgeMask is a read-only binary raster of detected edges.
type EdgeMask interface {
	Bounds() image.Rectangle
	Edge(x, y int) bool
}

// Point is a position in pixel space. Centroids fall between pixels, so the
// coordinates are real-valued.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DefaultLineThickness is the stroke width of the synthetic line in pixels.
const DefaultLineThickness = 6

// coverageCutoff is the minimum alpha for an anti-aliased stroke pixel to
// count as part of the synthetic line.
const coverageCutoff = 128

// PathScorer measures how well a straight line between two points is backed
// by edge pixels.
//
// A PathScorer holds no per-call state and is safe for concurrent use.
type PathScorer struct {
	// Thickness is the stroke width of the synthetic line in pixels.
	Thickness int
}

// NewPathScorer returns a scorer with the given stroke width. A non-positive
// width selects DefaultLineThickness.
func NewPathScorer(thickness int) *PathScorer {
	if thickness <= 0 {
		thickness = DefaultLineThickness
	}
	return &PathScorer{Thickness: thickness}
}

// Score returns |line ∩ mask| / |line| in [0, 1].
//
// The endpoints are rounded to whole pixels. A zero-length line, or one that
// falls entirely outside the mask, scores 0.
//
// # Algorithm
//
//  1. Compute the line's bounding rectangle padded by the stroke width and
//     clip it to the mask.
//  2. Borrow a scratch RGBA raster of that size and stroke the line into it
//     with round caps.
//  3. Count stroke pixels, and stroke pixels whose mask pixel is set.
//  4. Return the scratch raster to the pool.
func (s *PathScorer) Score(mask EdgeMask, a, b Point) float64 {
	ax, ay := math.Round(a.X), math.Round(a.Y)
	bx, by := math.Round(b.X), math.Round(b.Y)
	if ax == bx && ay == by {
		return 0
	}

	pad := s.Thickness
	area := image.Rect(
		int(math.Min(ax, bx))-pad, int(math.Min(ay, by))-pad,
		int(math.Max(ax, bx))+pad+1, int(math.Max(ay, by))+pad+1,
	).Intersect(mask.Bounds())
	if area.Empty() {
		return 0
	}

	scratch := acquireScratch(area.Dx(), area.Dy())
	defer releaseScratch(scratch)

	dc := gg.NewContextForRGBA(scratch)
	dc.SetRGBA(1, 1, 1, 1)
	dc.SetLineWidth(float64(s.Thickness))
	dc.SetLineCapRound()
	// Pixel centers sit at +0.5 in gg's coordinate space.
	ox := float64(area.Min.X) - 0.5
	oy := float64(area.Min.Y) - 0.5
	dc.DrawLine(ax-ox, ay-oy, bx-ox, by-oy)
	dc.Stroke()

	lineLen, overlap := 0, 0
	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < area.Dx(); x++ {
			if scratch.RGBAAt(x, y).A < coverageCutoff {
				continue
			}
			lineLen++
			if mask.Edge(x+area.Min.X, y+area.Min.Y) {
				overlap++
			}
		}
	}

	if lineLen == 0 {
		return 0
	}
	return float64(overlap) / float64(lineLen)
}

// scratchPool recycles pixel buffers across pair evaluations so that the
// quadratic pair loop does not accumulate line rasters.
var scratchPool = sync.Pool{
	New: func() any { return new([]uint8) },
}

// acquireScratch returns a cleared w×h RGBA raster backed by a pooled buffer.
func acquireScratch(w, h int) *image.RGBA {
	bufp := scratchPool.Get().(*[]uint8)
	n := 4 * w * h
	if cap(*bufp) < n {
		*bufp = make([]uint8, n)
	}
	pix := (*bufp)[:n]
	clear(pix)
	return &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}

// releaseScratch hands the raster's buffer back to the pool. The raster must
// not be used afterwards.
func releaseScratch(img *image.RGBA) {
	pix := img.Pix[:0]
	img.Pix = nil
	scratchPool.Put(&pix)
}
