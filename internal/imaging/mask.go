package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Mask is a binary edge raster. White pixels (255) are edges, black pixels
// (0) are background.
//
// Mask satisfies detection.EdgeMask. Once handed to the graph assembler it is
// read-only; concurrent reads are safe.
type Mask struct {
	gray *image.Gray
}

// NewMask returns an empty mask of the given size, with its origin at (0, 0).
func NewMask(width, height int) *Mask {
	return &Mask{gray: image.NewGray(image.Rect(0, 0, width, height))}
}

// MaskFromImage thresholds img at mid-gray: pixels with luminance >= 128
// become edges.
func MaskFromImage(img image.Image) *Mask {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y >= 128 {
				gray.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return &Mask{gray: gray}
}

// Bounds returns the raster bounds.
func (m *Mask) Bounds() image.Rectangle {
	return m.gray.Bounds()
}

// Edge reports whether (x, y) is an edge pixel. Coordinates outside the
// bounds are never edges.
func (m *Mask) Edge(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(m.gray.Rect) {
		return false
	}
	return m.gray.GrayAt(x, y).Y > 0
}

// Set marks or clears a pixel. Out-of-bounds coordinates are ignored.
func (m *Mask) Set(x, y int, edge bool) {
	v := uint8(0)
	if edge {
		v = 255
	}
	m.gray.SetGray(x, y, color.Gray{Y: v})
}

// FillRect marks every pixel of r (clipped to the mask) as an edge.
func (m *Mask) FillRect(r image.Rectangle) {
	r = r.Intersect(m.gray.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.gray.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

// Count returns the number of edge pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.gray.Pix {
		if v > 0 {
			n++
		}
	}
	return n
}

// Image exposes the underlying grayscale raster.
func (m *Mask) Image() *image.Gray {
	return m.gray
}

// EncodePNG writes the mask as a grayscale PNG.
func (m *Mask) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, m.gray); err != nil {
		return fmt.Errorf("failed to encode edge mask: %w", err)
	}
	return nil
}

// Base64PNG returns the mask as a base64-encoded PNG, the form used by the
// MCP server to return images inline.
func (m *Mask) Base64PNG() (string, error) {
	var buf bytes.Buffer
	if err := m.EncodePNG(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
