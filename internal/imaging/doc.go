// Package imaging is the image-processing collaborator of the pathway
// extractor: it decodes diagram images and turns them into binary edge masks.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Edge Masks
//
// BuildEdgeMask runs grayscale conversion, Gaussian blur, Canny-style
// gradient thresholding and dilation. The result is a Mask, a grayscale
// raster where 255 marks an edge. The graph assembler only reads masks; the
// parameters used to build one are opaque to it.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A Mask is safe for
// concurrent reads; Set and FillRect are meant for building fixtures and must
// not race with readers.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading
//   - Undecodable image data
//   - Invalid threshold combinations (low > high, values outside 0-255)
//   - Encoding errors during PNG output
package imaging
