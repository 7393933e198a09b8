package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

// SymbolWhitelist restricts recognition to the characters gene and protein
// symbols are written with.
const SymbolWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-αβγδ"

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Tesseract extracts located words from diagram images.
//
// Each call opens its own gosseract client, so a Tesseract value is safe for
// concurrent use.
type Tesseract struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty uses the system default.
	TessdataPrefix string

	// Whitelist limits the recognized characters. Empty allows everything.
	Whitelist string
}

// New returns an extractor for language using the symbol whitelist.
func New(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{
		Language:       language,
		TessdataPrefix: tessdataPrefix,
		Whitelist:      SymbolWhitelist,
	}
}

// ExtractWords runs word-level OCR over the image at imagePath.
//
// Every non-empty word is returned with its bounding box and confidence on
// a 0-100 scale; confidence filtering is left to the caller. Interword
// spaces are preserved so that multi-token labels keep their boxes apart.
func (t *Tesseract) ExtractWords(ctx context.Context, imagePath string) ([]graph.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if t.Whitelist != "" {
		if err := client.SetWhitelist(t.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return nil, fmt.Errorf("failed to set tesseract variable: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return toWords(boxes), nil
}

// toWords converts Tesseract word boxes, dropping empty words.
func toWords(boxes []gosseract.BoundingBox) []graph.Word {
	words := make([]graph.Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, graph.Word{
			Text: box.Word,
			Box: graph.Box{
				X0: float64(box.Box.Min.X),
				Y0: float64(box.Box.Min.Y),
				X1: float64(box.Box.Max.X),
				Y1: float64(box.Box.Max.Y),
			},
			Confidence: float64(box.Confidence),
		})
	}
	return words
}

// Status describes the OCR backend.
type Status struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Language       string `json:"language"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	Backend        string `json:"backend"`
}

// Status reports the linked Tesseract version.
func (t *Tesseract) Status() Status {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Status{
		Available:      version != "",
		Version:        version,
		Language:       t.Language,
		TessdataPrefix: t.TessdataPrefix,
		Backend:        "gosseract",
	}
}
