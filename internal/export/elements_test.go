package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

func TestElements(t *testing.T) {
	g := sampleGraph()
	elements := Elements(g)

	require.Len(t, elements, len(g.Nodes)+len(g.Edges))

	for i := range g.Nodes {
		assert.Equal(t, GroupNodes, elements[i].Group)
	}
	for i := range g.Edges {
		assert.Equal(t, GroupEdges, elements[len(g.Nodes)+i].Group)
	}

	node := elements[0].Data
	assert.Equal(t, "node_0", node["id"])
	assert.Equal(t, "STAT1", node["label"])
	assert.Equal(t, 92, node["conf"])
	assert.Regexp(t, `^#[0-9a-f]{6}$`, node["color"])

	edge := elements[3].Data
	assert.Equal(t, "e_0_1", edge["id"])
	assert.Equal(t, "node_0", edge["source"])
	assert.Equal(t, "node_1", edge["target"])
	assert.Equal(t, "directed", edge["type"])
	assert.Equal(t, 64, edge["score"])
	assert.Equal(t, KindColor(graph.Directed), edge["color"])
}

func TestElements_RepeatedLabelHasUniqueIDs(t *testing.T) {
	left := &graph.Node{ID: "node_0", Label: "MAPK1", Confidence: 90}
	right := &graph.Node{ID: "node_1", Label: "MAPK1", Confidence: 80}
	raf := &graph.Node{ID: "node_2", Label: "RAF1", Confidence: 85}
	g := &graph.Graph{
		Nodes: []*graph.Node{left, right, raf},
		Edges: []*graph.Edge{
			{ID: "e_0_2", Source: "MAPK1", Target: "RAF1", Kind: graph.Directed, SourceNode: left, TargetNode: raf},
			{ID: "e_1_2", Source: "MAPK1", Target: "RAF1", Kind: graph.Undirected, SourceNode: right, TargetNode: raf},
		},
	}

	elements := Elements(g)
	ids := map[any]bool{}
	for _, el := range elements {
		assert.False(t, ids[el.Data["id"]], "duplicate element id %v", el.Data["id"])
		ids[el.Data["id"]] = true
	}
	assert.Equal(t, "MAPK1", elements[1].Data["label"])
	assert.Equal(t, "node_0", elements[3].Data["source"])
	assert.Equal(t, "node_1", elements[4].Data["source"])
}

func TestElements_EdgeWithoutNodeFallsBackToLabel(t *testing.T) {
	g := &graph.Graph{Edges: []*graph.Edge{{ID: "e_0_1", Source: "STAT1", Target: "JAK2", Kind: graph.Directed}}}

	edge := Elements(g)[0].Data
	assert.Equal(t, "STAT1", edge["source"])
	assert.Equal(t, "JAK2", edge["target"])
}

func TestKindColor(t *testing.T) {
	seen := map[string]graph.EdgeKind{}
	for _, k := range graph.EdgeKinds {
		c := KindColor(k)
		if prev, dup := seen[c]; dup {
			t.Errorf("kinds %s and %s share color %s", prev, k, c)
		}
		seen[c] = k
	}
	assert.Equal(t, KindColor(graph.Undirected), KindColor("unknown"))
}

func TestConfidenceColor(t *testing.T) {
	assert.Equal(t, "#e74c3c", ConfidenceColor(0))
	assert.Equal(t, "#27ae60", ConfidenceColor(100))
	assert.Equal(t, ConfidenceColor(0), ConfidenceColor(-20))
	assert.Equal(t, ConfidenceColor(100), ConfidenceColor(250))
	assert.NotEqual(t, ConfidenceColor(0), ConfidenceColor(50))
}
