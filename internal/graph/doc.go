// Package graph holds the pathway data model and turns recognized words plus
// an edge mask into a typed interaction graph.
//
// # Pipeline
//
// BuildNodes resolves words through a Resolver (normally a symbols.Index)
// and merges same-label detections whose centroids lie within the dedup
// radius. The Assembler then scores every node pair within MaxDistance with
// a detection.PathScorer, looks for arrowheads at both ends with a
// detection.ArrowDetector, and classifies the pair.
//
// # Invariants
//
//   - Every edge's Source and Target name a node in the same graph.
//   - No edge joins two nodes with the same label.
//   - Nodes and edges are immutable once the step that created them returns.
//
// The pair scan is quadratic in the node count. Diagrams carry tens of
// nodes; a spatial index would be the place to start for larger inputs.
package graph
