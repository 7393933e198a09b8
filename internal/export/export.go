// Package export serializes an extracted pathway graph.
//
// Three forms are supported: a CSV edge list, a JSON graph document that
// DecodeJSON reads back, and a flat element list for graph renderers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

// CSVHeader is the first row written by CSV.
var CSVHeader = []string{"source", "target", "interaction_type", "confidence_score"}

// CSV writes one row per edge after CSVHeader.
func CSV(w io.Writer, g *graph.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range g.Edges {
		row := []string{e.Source, e.Target, string(e.Kind), strconv.Itoa(e.Score)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON graph document.
type Document struct {
	Nodes []DocumentNode `json:"nodes"`
	Edges []DocumentEdge `json:"edges"`
}

// DocumentNode is a node in the JSON document. ID is the node's label.
type DocumentNode struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence int     `json:"confidence"`
}

// DocumentEdge is an edge in the JSON document.
type DocumentEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Score  int    `json:"score"`
}

// NewDocument converts g into its JSON document form.
func NewDocument(g *graph.Graph) *Document {
	doc := &Document{
		Nodes: make([]DocumentNode, 0, len(g.Nodes)),
		Edges: make([]DocumentEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:         n.Label,
			X:          n.Centroid.X,
			Y:          n.Centroid.Y,
			Confidence: int(math.Round(n.Confidence)),
		})
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, DocumentEdge{
			Source: e.Source,
			Target: e.Target,
			Type:   string(e.Kind),
			Score:  e.Score,
		})
	}
	return doc
}

// JSON writes g as an indented JSON document.
func JSON(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(g)); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// DecodeJSON reads a document written by JSON.
func DecodeJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return &doc, nil
}
