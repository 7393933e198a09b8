package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pathway-extract/internal/detection"
	"github.com/ironsheep/pathway-extract/internal/graph"
)

func sampleGraph() *graph.Graph {
	stat1 := &graph.Node{ID: "node_0", Label: "STAT1", Confidence: 91.6, Centroid: detection.Point{X: 100, Y: 100}}
	jak2 := &graph.Node{ID: "node_1", Label: "JAK2", Confidence: 64.2, Centroid: detection.Point{X: 300, Y: 100}}
	tgfb := &graph.Node{ID: "node_2", Label: "TGF-β", Confidence: 50, Centroid: detection.Point{X: 300, Y: 250.5}}
	return &graph.Graph{
		Nodes: []*graph.Node{stat1, jak2, tgfb},
		Edges: []*graph.Edge{
			{ID: "e_0_1", Source: "STAT1", Target: "JAK2", Kind: graph.Directed, Score: 64, RawScore: 0.641, SourceNode: stat1, TargetNode: jak2},
			{ID: "e_1_2", Source: "JAK2", Target: "TGF-β", Kind: graph.Undirected, Score: 23, RawScore: 0.234, SourceNode: jak2, TargetNode: tgfb},
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleGraph()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "source,target,interaction_type,confidence_score", lines[0])
	assert.Equal(t, "STAT1,JAK2,directed,64", lines[1])
	assert.Equal(t, "JAK2,TGF-β,undirected,23", lines[2])
}

func TestCSV_RowCountMatchesEdges(t *testing.T) {
	for _, g := range []*graph.Graph{sampleGraph(), {}} {
		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, g))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, len(g.Edges)+1)
	}
}

func TestJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleGraph()))

	assert.Contains(t, buf.String(), "\n  \"nodes\": [")

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw["nodes"], 3)
	require.Len(t, raw["edges"], 2)

	node := raw["nodes"][0]
	assert.Equal(t, "STAT1", node["id"])
	assert.Equal(t, 100.0, node["x"])
	assert.Equal(t, 92.0, node["confidence"])
	assert.Len(t, node, 4)

	edge := raw["edges"][0]
	assert.Equal(t, "directed", edge["type"])
	assert.Equal(t, 64.0, edge["score"])
	assert.Len(t, edge, 4)
}

func TestJSON_RoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, g))

	doc, err := DecodeJSON(&buf)
	require.NoError(t, err)

	require.Len(t, doc.Nodes, len(g.Nodes))
	require.Len(t, doc.Edges, len(g.Edges))
	for i, n := range g.Nodes {
		assert.Equal(t, n.Label, doc.Nodes[i].ID)
		assert.Equal(t, n.Centroid.Y, doc.Nodes[i].Y)
	}
	for i, e := range g.Edges {
		assert.Equal(t, e.Source, doc.Edges[i].Source)
		assert.Equal(t, e.Target, doc.Edges[i].Target)
		assert.Equal(t, string(e.Kind), doc.Edges[i].Type)
		assert.Equal(t, e.Score, doc.Edges[i].Score)
	}
}

func TestJSON_EmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, &graph.Graph{}))

	doc, err := DecodeJSON(&buf)
	require.NoError(t, err)
	assert.Empty(t, doc.Nodes)
	assert.Empty(t, doc.Edges)
	assert.NotContains(t, buf.String(), "null")
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader("{not json"))
	assert.Error(t, err)
}
