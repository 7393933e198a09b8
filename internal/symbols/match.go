package symbols

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// greekLetters are kept by cleanToken; gene nomenclature uses them in names
// such as TGF-β or IL-1α.
const greekLetters = "αβγδεζηθΑΒΓΔΕΖΗΘ"

const (
	minTokenLen = 2
	minFuzzyLen = 3
	maxLenDelta = 2
	maxFuzzyDst = 1
)

// Match resolves a raw OCR token to a canonical symbol.
//
// It returns false when the token does not resolve; that is the expected
// outcome for any non-vocabulary text in an image.
func (idx *Index) Match(raw string) (string, bool) {
	clean := cleanToken(raw)
	if utf8.RuneCountInString(clean) < minTokenLen {
		return "", false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if sym, ok := idx.exact(clean); ok {
		return sym, true
	}

	if corrected := applyOCRCorrections(clean); corrected != clean {
		if sym, ok := idx.exact(corrected); ok {
			return sym, true
		}
	}

	return idx.fuzzy(clean)
}

// exact must be called with the read lock held. A canonical spelling always
// resolves to itself, even when another symbol shares its case-folded forms.
func (idx *Index) exact(token string) (string, bool) {
	if idx.symbols.Contains(token) {
		return token, true
	}
	if sym, ok := idx.lookup[token]; ok {
		return sym, true
	}
	if sym, ok := idx.lookup[strings.ToUpper(token)]; ok {
		return sym, true
	}
	if sym, ok := idx.lookup[strings.ToLower(token)]; ok {
		return sym, true
	}
	return "", false
}

// fuzzy returns the unique canonical symbol closest to token within edit
// distance 1. Keys are scanned in sorted order so that results never depend
// on map iteration.
func (idx *Index) fuzzy(token string) (string, bool) {
	upper := []rune(strings.ToUpper(token))
	if len(upper) < minFuzzyLen {
		return "", false
	}

	keys := make([]string, 0, len(idx.lookup))
	for k := range idx.lookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := maxFuzzyDst + 1
	var winner string
	ambiguous := false
	for _, key := range keys {
		candidate := []rune(strings.ToUpper(key))
		if abs(len(candidate)-len(upper)) > maxLenDelta {
			continue
		}
		d := levenshtein(upper, candidate)
		if d > maxFuzzyDst {
			continue
		}
		canonical := idx.lookup[key]
		switch {
		case d < best:
			best, winner, ambiguous = d, canonical, false
		case d == best && canonical != winner:
			ambiguous = true
		}
	}

	if winner == "" || ambiguous {
		return "", false
	}
	return winner, true
}

// cleanToken keeps letters, digits, hyphens and the Greek letters used in
// gene names, then trims hyphens from both ends.
func cleanToken(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case strings.ContainsRune(greekLetters, r):
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// applyOCRCorrections rewrites common Tesseract confusions: lowercase l read
// for 1 (STATl), uppercase O read for 0, and I read for 1 ahead of a digit.
func applyOCRCorrections(token string) string {
	runes := []rune(token)
	for i, r := range runes {
		switch r {
		case 'l':
			runes[i] = '1'
		case 'O':
			runes[i] = '0'
		}
	}
	// Second pass so that "IO2" becomes "102". The lookahead reads the
	// first-pass result, never a rune this pass rewrote.
	ahead := append([]rune(nil), runes...)
	for i := 0; i+1 < len(runes); i++ {
		if ahead[i] == 'I' && isDigit(ahead[i+1]) {
			runes[i] = '1'
		}
	}
	return string(runes)
}

// levenshtein is the unit-cost edit distance between a and b.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
