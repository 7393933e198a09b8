package graph

import (
	"github.com/ironsheep/pathway-extract/internal/detection"
)

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Center returns the centroid of the box.
func (b Box) Center() detection.Point {
	return detection.Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Overlaps reports whether b and o intersect once both are grown by pad
// pixels. Touching edges count as overlap.
func (b Box) Overlaps(o Box, pad float64) bool {
	return !(o.X0 > b.X1+pad ||
		o.X1 < b.X0-pad ||
		o.Y0 > b.Y1+pad ||
		o.Y1 < b.Y0-pad)
}

// Word is a located token produced by the OCR collaborator.
type Word struct {
	Text string `json:"text"`
	Box  Box    `json:"bbox"`
	// Confidence is the recognizer's confidence in [0, 100].
	Confidence float64 `json:"confidence"`
}

// Node is one entity drawn in the diagram.
type Node struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Raw        string          `json:"raw"`
	Confidence float64         `json:"confidence"`
	Box        Box             `json:"bbox"`
	Centroid   detection.Point `json:"centroid"`
}

// Endpoint returns the node as seen by the arrow detector.
func (n *Node) Endpoint() detection.Endpoint {
	return detection.Endpoint{Center: n.Centroid, Width: n.Box.Width(), Height: n.Box.Height()}
}

// EdgeKind classifies a relationship between two nodes.
type EdgeKind string

const (
	Undirected EdgeKind = "undirected"
	Directed   EdgeKind = "directed"
	Bidirected EdgeKind = "bidirected"
	Physical   EdgeKind = "physical"
)

// EdgeKinds lists every kind in classification precedence order.
var EdgeKinds = []EdgeKind{Physical, Bidirected, Directed, Undirected}

// Edge is a typed connection between two nodes, identified by label.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`

	// Score is RawScore scaled to 0-100 and rounded.
	Score    int     `json:"score"`
	RawScore float64 `json:"raw_score"`

	// SourceNode and TargetNode are the endpoints Source and Target were
	// taken from.
	SourceNode *Node `json:"-"`
	TargetNode *Node `json:"-"`
}

// Graph is the result of one extraction.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// HasLabel reports whether any node carries label.
func (g *Graph) HasLabel(label string) bool {
	for _, n := range g.Nodes {
		if n.Label == label {
			return true
		}
	}
	return false
}

// CountByKind returns the number of edges of each kind.
func (g *Graph) CountByKind() map[EdgeKind]int {
	counts := make(map[EdgeKind]int, len(EdgeKinds))
	for _, e := range g.Edges {
		counts[e.Kind]++
	}
	return counts
}
