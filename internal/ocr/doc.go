// Package ocr is the word-recognition collaborator of the pathway extractor.
//
// It wraps the Tesseract OCR engine (via gosseract/v2) and returns the
// located words of a diagram image as graph.Word values.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other locations: point TessdataPrefix at the directory holding the
//     *.traineddata files
//
// # Recognition Settings
//
// Recognition is restricted to SymbolWhitelist: ASCII letters, digits, the
// hyphen and the Greek letters α through δ. Interword spaces are preserved.
// Word boxes come from Tesseract's RIL_WORD iterator level.
//
// # Confidence
//
// Confidence is reported on Tesseract's native 0-100 scale. This package
// never filters by confidence; the graph assembler does that exactly once.
//
// # Error Handling
//
// ExtractWords returns errors for:
//   - Missing or unreadable image files
//   - Unsupported language codes or missing traineddata
//   - Tesseract initialization failures
//   - A context that is already done
package ocr
