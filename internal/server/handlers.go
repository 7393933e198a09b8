package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/pathway-extract/internal/export"
	"github.com/ironsheep/pathway-extract/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pathway_extract", "vocabulary_match").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool call failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "pathway_extract":
		return s.handlePathwayExtract(ctx, args)
	case "edge_mask":
		return s.handleEdgeMask(ctx, args)

	case "vocabulary_load":
		return s.handleVocabularyLoad(ctx, args)
	case "vocabulary_merge":
		return s.handleVocabularyMerge(args)
	case "vocabulary_match":
		return s.handleVocabularyMatch(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Extraction Handlers ===

type pathwayExtractArgs struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type pathwayExtractResult struct {
	RunID      string         `json:"run_id"`
	Image      string         `json:"image"`
	Words      int            `json:"words"`
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	EdgeKinds  map[string]int `json:"edge_kinds"`
	DurationMS int64          `json:"duration_ms"`
	Format     export.Format  `json:"format"`
	Output     string         `json:"output"`
}

func (s *Server) handlePathwayExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathwayExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Format == "" {
		a.Format = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	res, err := s.extractor.ExtractTo(ctx, a.Path, &buf, format)
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]int)
	for kind, n := range res.Graph.CountByKind() {
		kinds[string(kind)] = n
	}
	return &pathwayExtractResult{
		RunID:      res.RunID,
		Image:      res.Image,
		Words:      res.Words,
		Nodes:      len(res.Graph.Nodes),
		Edges:      len(res.Graph.Edges),
		EdgeKinds:  kinds,
		DurationMS: res.Duration.Milliseconds(),
		Format:     format,
		Output:     buf.String(),
	}, nil
}

type edgeMaskArgs struct {
	Path string `json:"path"`
}

type edgeMaskResult struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	EdgePixels int    `json:"edge_pixels"`
	PNGBase64  string `json:"png_base64"`
}

func (s *Server) handleEdgeMask(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a edgeMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.masker == nil {
		return nil, errors.New("edge masks are not available")
	}
	m, err := s.masker.EdgeMask(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	mask, ok := m.(*imaging.Mask)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", m)
	}
	encoded, err := mask.Base64PNG()
	if err != nil {
		return nil, err
	}
	b := mask.Bounds()
	return &edgeMaskResult{
		Width:      b.Dx(),
		Height:     b.Dy(),
		EdgePixels: mask.Count(),
		PNGBase64:  encoded,
	}, nil
}

// === Vocabulary Handlers ===

type vocabularyLoadArgs struct {
	Source string `json:"source"`
}

type vocabularyResult struct {
	Added   int `json:"added,omitempty"`
	Symbols int `json:"symbols"`
}

func (s *Server) handleVocabularyLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a vocabularyLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" {
		return nil, errors.New("source is required")
	}
	if err := s.extractor.LoadVocabulary(ctx, a.Source); err != nil {
		return nil, err
	}
	return &vocabularyResult{Symbols: s.extractor.Index().Len()}, nil
}

type vocabularyMergeArgs struct {
	Content string `json:"content"`
}

func (s *Server) handleVocabularyMerge(args json.RawMessage) (interface{}, error) {
	var a vocabularyMergeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	added, err := s.extractor.MergeVocabulary([]byte(a.Content))
	if err != nil {
		return nil, err
	}
	return &vocabularyResult{Added: added, Symbols: s.extractor.Index().Len()}, nil
}

type vocabularyMatchArgs struct {
	Tokens []string `json:"tokens"`
}

type tokenMatch struct {
	Token   string `json:"token"`
	Symbol  string `json:"symbol,omitempty"`
	Matched bool   `json:"matched"`
}

func (s *Server) handleVocabularyMatch(args json.RawMessage) (interface{}, error) {
	var a vocabularyMatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	idx := s.extractor.Index()
	matches := make([]tokenMatch, len(a.Tokens))
	for i, tok := range a.Tokens {
		sym, ok := idx.Match(tok)
		matches[i] = tokenMatch{Token: tok, Symbol: sym, Matched: ok}
	}
	return map[string]interface{}{"matches": matches}, nil
}
