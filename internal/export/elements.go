package export

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

// Element groups.
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// Element is one entry of a renderer element list.
type Element struct {
	Group string         `json:"group"`
	Data  map[string]any `json:"data"`
}

var kindColors = map[graph.EdgeKind]string{
	graph.Undirected: "#7f8c8d",
	graph.Directed:   "#2980b9",
	graph.Bidirected: "#8e44ad",
	graph.Physical:   "#d35400",
}

var (
	lowConfidence  = mustHex("#e74c3c")
	highConfidence = mustHex("#27ae60")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// KindColor returns the display color for an edge kind.
func KindColor(kind graph.EdgeKind) string {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return kindColors[graph.Undirected]
}

// ConfidenceColor blends from red at confidence 0 to green at 100 in Lab
// space. Values outside 0-100 are clamped.
func ConfidenceColor(confidence float64) string {
	t := math.Max(0, math.Min(100, confidence)) / 100
	return lowConfidence.BlendLab(highConfidence, t).Clamped().Hex()
}

// Elements returns every node followed by every edge.
func Elements(g *graph.Graph) []Element {
	elements := make([]Element, 0, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		elements = append(elements, Element{
			Group: GroupNodes,
			Data: map[string]any{
				"id":    n.ID,
				"label": n.Label,
				"conf":  int(math.Round(n.Confidence)),
				"x":     n.Centroid.X,
				"y":     n.Centroid.Y,
				"color": ConfidenceColor(n.Confidence),
			},
		})
	}
	for _, e := range g.Edges {
		elements = append(elements, Element{
			Group: GroupEdges,
			Data: map[string]any{
				"id":     e.ID,
				"source": endpointID(e.SourceNode, e.Source),
				"target": endpointID(e.TargetNode, e.Target),
				"type":   string(e.Kind),
				"score":  e.Score,
				"color":  KindColor(e.Kind),
			},
		})
	}
	return elements
}

// endpointID returns the node ID an edge element points at. Labels may repeat
// across spatially separate nodes, IDs never do.
func endpointID(n *graph.Node, label string) string {
	if n != nil && n.ID != "" {
		return n.ID
	}
	return label
}
