package graph

import (
	"fmt"
)

// DefaultDedupRadius is the centroid distance below which two detections of
// the same label are treated as one entity.
const DefaultDedupRadius = 30.0

// Resolver maps recognized text to a canonical symbol.
type Resolver interface {
	Match(raw string) (string, bool)
}

// BuildNodes resolves words into nodes, in input order.
//
// Words that do not resolve are dropped. A word whose label was already
// accepted is compared with the most recent node carrying that label: closer
// than radius it is a duplicate and discarded, otherwise it becomes a second
// node with the same label. A non-positive radius selects
// DefaultDedupRadius.
func BuildNodes(resolver Resolver, words []Word, radius float64) []*Node {
	if radius <= 0 {
		radius = DefaultDedupRadius
	}

	nodes := make([]*Node, 0, len(words))
	latest := make(map[string]*Node)

	for _, w := range words {
		label, ok := resolver.Match(w.Text)
		if !ok {
			continue
		}

		center := w.Box.Center()
		if prev, seen := latest[label]; seen && prev.Centroid.Dist(center) < radius {
			continue
		}

		n := &Node{
			ID:         fmt.Sprintf("node_%d", len(nodes)),
			Label:      label,
			Raw:        w.Text,
			Confidence: w.Confidence,
			Box:        w.Box,
			Centroid:   center,
		}
		nodes = append(nodes, n)
		latest[label] = n
	}

	return nodes
}
