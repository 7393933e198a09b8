package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

// Format names an output form.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatElements Format = "elements"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatElements}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or elements)", s)
}

// Write serializes g in format f.
func Write(w io.Writer, g *graph.Graph, f Format) error {
	switch f {
	case FormatCSV:
		return CSV(w, g)
	case FormatJSON:
		return JSON(w, g)
	case FormatElements:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Elements(g)); err != nil {
			return fmt.Errorf("failed to encode elements: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
