// Package server implements the MCP (Model Context Protocol) server for
// pathway extraction.
//
// The server exposes one pipeline.Extractor over JSON-RPC 2.0 so that MCP
// clients can load a vocabulary, extract interaction graphs from diagram
// images and inspect the edge masks used for connection detection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs are written to stderr so they never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Extraction:
//   - pathway_extract: Build the graph of a diagram (csv, json or elements)
//   - edge_mask: Return the binary edge mask as base64 PNG
//
// Vocabulary:
//   - vocabulary_load: Load a categorized catalog from a path or URL
//   - vocabulary_merge: Merge user symbols into the loaded vocabulary
//   - vocabulary_match: Resolve raw tokens to canonical symbols
//
// The vocabulary is shared by every call for the lifetime of the process.
// pathway_extract fails until a vocabulary has been loaded or merged.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which names the failing stage for
//     extraction errors
//
// # Usage
//
//	srv := server.New(extractor, masker, log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
