// Package detection turns pixel evidence in an edge mask into connection
// evidence between two diagram nodes.
//
// This package implements the two heuristics the graph assembler relies on:
//
//   - PathScorer: how much of a straight line between two node centroids is
//     covered by edge pixels.
//   - ArrowDetector: whether the area just outside a node, on the side facing
//     the other node, is dense enough with edge pixels to hold an arrowhead.
//
// # Edge Masks
//
// Both heuristics read an EdgeMask, a binary raster owned by the image
// processing stage. The mask is only ever read; out-of-bounds queries report
// no edge.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Path Score
//
// The path score is the fraction of pixels of a synthetic line, rendered with
// a configurable stroke width between the two centroids, that are also set in
// the edge mask:
//   - 1.0 = every pixel of the synthetic line lies on detected edges
//   - 0.0 = no overlap, or a degenerate zero-length line
//
// # Limitations
//
// The arrow test is a density heuristic, not a shape classifier. Dense text
// near a node can produce a false arrowhead and thin arrowheads drawn with a
// one-pixel stroke can be missed. Curved or rotated connectors are not
// followed; only straight lines between centroids are scored.
package detection
