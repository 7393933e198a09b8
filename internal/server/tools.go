package server

import (
	"github.com/ironsheep/pathway-extract/internal/export"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func formatNames() []string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Extraction
		{
			Name:        "pathway_extract",
			Description: "Extract a gene/protein interaction graph from a pathway diagram image. Words are recognized with OCR, resolved against the loaded vocabulary, and connected using drawn lines and arrowheads. Returns node and edge counts plus the graph in the requested format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the diagram image",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        formatNames(),
						"description": "Output format for the graph. Default json",
						"default":     "json",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "edge_mask",
			Description: "Compute the binary edge mask used for connection detection and return it as base64-encoded PNG. Use this to check why a connection was or was not detected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the diagram image",
					},
				},
				"required": []string{"path"},
			},
		},

		// Vocabulary
		{
			Name:        "vocabulary_load",
			Description: "Load a categorized symbol catalog ({\"categories\": {...}, \"all_symbols\": [...]}) from a file path or http(s) URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "File path or http(s) URL of the catalog",
					},
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "vocabulary_merge",
			Description: "Merge user-supplied symbols into the vocabulary. Accepts a JSON array of strings, a categorized catalog, or {\"symbols\": [...]}.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"content": map[string]interface{}{
						"type":        "string",
						"description": "JSON vocabulary document",
					},
				},
				"required": []string{"content"},
			},
		},
		{
			Name:        "vocabulary_match",
			Description: "Resolve raw tokens to canonical symbols, tolerating OCR noise such as l/1 and O/0 confusion.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tokens": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Tokens to resolve",
					},
				},
				"required": []string{"tokens"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
