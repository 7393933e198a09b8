package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/pathway-extract/internal/detection"
)

// EdgeOptions controls edge-mask construction.
type EdgeOptions struct {
	// Low is the weak-edge hysteresis threshold (0-255). Typical value: 50.
	Low int

	// High is the strong-edge hysteresis threshold (0-255). Typical value: 150.
	High int

	// BlurRadius is the Gaussian blur radius applied before gradients.
	// Zero disables the blur.
	BlurRadius float64

	// DilateRadius grows detected edges to close small gaps in drawn
	// connectors. Zero disables dilation.
	DilateRadius float64
}

// DefaultEdgeOptions matches a 3x3 blur and a 3x3 kernel dilated twice.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		Low:          50,
		High:         150,
		BlurRadius:   1.0,
		DilateRadius: 2.0,
	}
}

// BuildEdgeMask converts a diagram image into a binary edge mask.
//
// # Algorithm
//
//  1. Grayscale conversion
//  2. Gaussian blur to reduce noise (bild)
//  3. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//  4. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//  5. Hysteresis thresholding:
//     - Pixels above High are strong edges (always kept)
//     - Pixels between Low and High are kept only next to a strong edge
//  6. Dilation (bild) so that one-pixel connectors line up with the
//     synthetic lines used for path scoring
//
// The returned mask has its origin at (0, 0) regardless of img's bounds.
func BuildEdgeMask(img image.Image, opts EdgeOptions) (*Mask, error) {
	if opts.Low < 0 || opts.High > 255 || opts.Low > opts.High {
		return nil, fmt.Errorf("invalid edge thresholds: low=%d high=%d", opts.Low, opts.High)
	}

	var src image.Image = imaging.Grayscale(img)
	if opts.BlurRadius > 0 {
		src = blur.Gaussian(src, opts.BlurRadius)
	}

	edges := canny(luminance(src), opts.Low, opts.High)

	if opts.DilateRadius > 0 {
		var dilated image.Image = effect.Dilate(edges, opts.DilateRadius)
		return MaskFromImage(dilated), nil
	}
	return &Mask{gray: edges}, nil
}

// EdgeMasker is the edge-mask collaborator of the extraction pipeline. It
// loads images through a shared cache and builds masks with fixed options.
type EdgeMasker struct {
	cache *ImageCache
	opts  EdgeOptions
}

// NewEdgeMasker returns a masker reading images through cache.
func NewEdgeMasker(cache *ImageCache, opts EdgeOptions) *EdgeMasker {
	return &EdgeMasker{cache: cache, opts: opts}
}

// EdgeMask loads the image at path and returns its edge mask.
func (m *EdgeMasker) EdgeMask(ctx context.Context, path string) (detection.EdgeMask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := m.cache.Load(path)
	if err != nil {
		return nil, err
	}
	mask, err := BuildEdgeMask(img, m.opts)
	if err != nil {
		return nil, err
	}
	return mask, nil
}

// luminance returns the gray level of every pixel scaled to [0, 1], indexed
// [y][x] from the top-left of img's bounds.
func luminance(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray)
			out[y][x] = float64(g.Y) / 255.0
		}
	}
	return out
}

// canny runs Sobel gradients, non-maximum suppression and hysteresis over a
// pre-blurred luminance grid.
func canny(gray [][]float64, thresholdLow, thresholdHigh int) *image.Gray {
	height := len(gray)
	width := 0
	if height > 0 {
		width = len(gray[0])
	}
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 {
		return result
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += gray[py][px] * sobelX[ky+1][kx+1]
					gy += gray[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val == 0 {
				continue
			}
			if val >= highThresh {
				result.SetGray(x, y, color.Gray{Y: 255})
			} else if val >= lowThresh && hasStrongNeighbor(suppressed, x, y, highThresh) {
				result.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return result
}

func hasStrongNeighbor(suppressed [][]float64, x, y int, highThresh float64) bool {
	height, width := len(suppressed), len(suppressed[0])
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			py := clamp(y+ky, 0, height-1)
			px := clamp(x+kx, 0, width-1)
			if suppressed[py][px] >= highThresh {
				return true
			}
		}
	}
	return false
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
