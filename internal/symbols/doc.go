// Package symbols holds the vocabulary of canonical gene and protein symbols
// and resolves noisy OCR tokens to them.
//
// # Vocabulary Formats
//
// Index.Load reads the bundled catalog format:
//
//	{
//	  "categories": {"cytokines": ["IL6", "TNF"], "kinases": ["JAK2"]},
//	  "all_symbols": ["STAT1"]
//	}
//
// Index.LoadFromFile additionally accepts user uploads as a flat array of
// strings or as {"symbols": [...]}.
//
// # Resolution
//
// Match applies, in order: character cleanup, exact case-insensitive lookup,
// OCR confusion corrections (l→1, O→0, I→1 before a digit), and a bounded
// Levenshtein fallback. The fallback only accepts a unique closest symbol;
// a token equally close to two different symbols does not resolve.
//
// # Thread Safety
//
// Index is safe for concurrent use. Loads take a write lock, Match takes a
// read lock.
package symbols
