package graph

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pathway-extract/internal/detection"
)

// ErrInvalidTransition is returned when an assembler step is called out of
// order.
var ErrInvalidTransition = errors.New("invalid state transition")

// physicalPadding is the tolerance in pixels for treating two boxes as
// touching.
const physicalPadding = 5.0

// State is the position of an Assembler in its run lifecycle.
type State int

const (
	Idle State = iota
	WordsResolved
	NodesBuilt
	EdgesDetected
	Exported
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WordsResolved:
		return "words_resolved"
	case NodesBuilt:
		return "nodes_built"
	case EdgesDetected:
		return "edges_detected"
	case Exported:
		return "exported"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tunes edge detection and node deduplication.
type Options struct {
	// MaxDistance is the largest centroid distance for which a pair is
	// considered at all.
	MaxDistance float64

	// PathThreshold is the minimum path score for a pair to become an edge.
	PathThreshold float64

	// LineThickness is the stroke width of the synthetic connector line.
	LineThickness int

	// ArrowTipSize is the half-size of the arrowhead search region.
	ArrowTipSize int

	// DedupRadius is the same-label merge distance used by BuildNodes.
	DedupRadius float64

	// Workers is the number of goroutines evaluating pairs. Values below 2
	// evaluate pairs sequentially.
	Workers int
}

// DefaultOptions returns the standard detection parameters.
func DefaultOptions() Options {
	return Options{
		MaxDistance:   400,
		PathThreshold: 0.2,
		LineThickness: detection.DefaultLineThickness,
		ArrowTipSize:  detection.DefaultArrowTipSize,
		DedupRadius:   DefaultDedupRadius,
		Workers:       1,
	}
}

// Assembler drives one extraction run from recognized words to a typed graph.
//
// Steps must be called in order: AcceptWords, BuildNodes, DetectEdges,
// MarkExported. A step called out of order returns ErrInvalidTransition and
// leaves the assembler untouched. A step that fails moves the assembler to
// Failed, from which only Reset leads back to Idle.
//
// An Assembler is not safe for concurrent use.
type Assembler struct {
	opts   Options
	log    logrus.FieldLogger
	scorer *detection.PathScorer
	arrows *detection.ArrowDetector

	state State
	words []Word
	nodes []*Node
	edges []*Edge
}

// NewAssembler creates an idle assembler. A nil log discards output.
func NewAssembler(opts Options, log logrus.FieldLogger) *Assembler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Assembler{
		opts:   opts,
		log:    log,
		scorer: detection.NewPathScorer(opts.LineThickness),
		arrows: detection.NewArrowDetector(opts.ArrowTipSize),
	}
}

// State returns the current lifecycle state.
func (a *Assembler) State() State { return a.state }

// AcceptWords keeps the words whose confidence is at least minConfidence.
// This is the only place recognition confidence is filtered.
func (a *Assembler) AcceptWords(words []Word, minConfidence float64) error {
	if err := a.expect(Idle, "accept words"); err != nil {
		return err
	}

	a.words = a.words[:0]
	for _, w := range words {
		if w.Confidence >= minConfidence {
			a.words = append(a.words, w)
		}
	}

	a.log.WithFields(logrus.Fields{
		"received": len(words),
		"accepted": len(a.words),
	}).Debug("words accepted")
	a.state = WordsResolved
	return nil
}

// BuildNodes resolves the accepted words into deduplicated nodes.
func (a *Assembler) BuildNodes(resolver Resolver) error {
	if err := a.expect(WordsResolved, "build nodes"); err != nil {
		return err
	}
	if resolver == nil {
		return a.fail(errors.New("build nodes: no resolver"))
	}

	a.nodes = BuildNodes(resolver, a.words, a.opts.DedupRadius)
	a.log.Infof("validated genes: %d", len(a.nodes))
	a.state = NodesBuilt
	return nil
}

// DetectEdges evaluates every unordered node pair against mask and keeps the
// pairs backed by a drawn connector.
//
// Pairs are skipped when their centroids are farther apart than MaxDistance,
// when both nodes carry the same label, or when the path score is below
// PathThreshold. Surviving pairs are classified by precedence: overlapping
// boxes are physical; arrowheads at both ends are bidirected; an arrowhead
// at one end makes a directed edge pointing at it; otherwise the edge is
// undirected in enumeration order.
//
// Edges are returned in pair enumeration order whatever the worker count.
func (a *Assembler) DetectEdges(mask detection.EdgeMask) error {
	if err := a.expect(NodesBuilt, "detect edges"); err != nil {
		return err
	}
	if mask == nil {
		return a.fail(errors.New("detect edges: no edge mask"))
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, len(a.nodes)*(len(a.nodes)-1)/2)
	for i := 0; i < len(a.nodes); i++ {
		for j := i + 1; j < len(a.nodes); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	results := make([]*Edge, len(pairs))
	if a.opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(a.opts.Workers)
		for k, p := range pairs {
			g.Go(func() error {
				results[k] = a.evaluate(mask, p.i, p.j)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for k, p := range pairs {
			results[k] = a.evaluate(mask, p.i, p.j)
		}
	}

	a.edges = a.edges[:0]
	for _, e := range results {
		if e != nil {
			a.edges = append(a.edges, e)
		}
	}

	a.log.WithField("pairs", len(pairs)).Infof("connections detected: %d", len(a.edges))
	a.state = EdgesDetected
	return nil
}

// evaluate returns the edge for nodes i and j, or nil when the pair does not
// qualify. It reads shared state only.
func (a *Assembler) evaluate(mask detection.EdgeMask, i, j int) *Edge {
	n1, n2 := a.nodes[i], a.nodes[j]
	if n1.Label == n2.Label {
		return nil
	}
	if n1.Centroid.Dist(n2.Centroid) > a.opts.MaxDistance {
		return nil
	}

	score := a.scorer.Score(mask, n1.Centroid, n2.Centroid)
	if score < a.opts.PathThreshold {
		return nil
	}

	arrowAt1 := a.arrows.Detect(mask, n2.Endpoint(), n1.Endpoint())
	arrowAt2 := a.arrows.Detect(mask, n1.Endpoint(), n2.Endpoint())

	kind, src, dst := Undirected, n1, n2
	switch {
	case n1.Box.Overlaps(n2.Box, physicalPadding):
		kind = Physical
	case arrowAt1 && arrowAt2:
		kind = Bidirected
	case arrowAt2:
		kind = Directed
	case arrowAt1:
		kind, src, dst = Directed, n2, n1
	}

	return &Edge{
		ID:         fmt.Sprintf("e_%d_%d", i, j),
		Source:     src.Label,
		Target:     dst.Label,
		Kind:       kind,
		Score:      int(math.Round(score * 100)),
		RawScore:   score,
		SourceNode: src,
		TargetNode: dst,
	}
}

// MarkExported records that the graph has been handed to an exporter.
func (a *Assembler) MarkExported() error {
	if err := a.expect(EdgesDetected, "mark exported"); err != nil {
		return err
	}
	a.state = Exported
	return nil
}

// Reset discards all run state and returns the assembler to Idle.
func (a *Assembler) Reset() {
	a.state = Idle
	a.words = nil
	a.nodes = nil
	a.edges = nil
}

// Graph returns a snapshot of the nodes and edges built so far.
func (a *Assembler) Graph() *Graph {
	return &Graph{
		Nodes: append([]*Node(nil), a.nodes...),
		Edges: append([]*Edge(nil), a.edges...),
	}
}

func (a *Assembler) expect(want State, op string) error {
	if a.state != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, a.state)
	}
	return nil
}

func (a *Assembler) fail(err error) error {
	a.state = Failed
	a.log.WithError(err).Error("assembly failed")
	return err
}
