package symbols

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tidwall/gjson"
)

var (
	// ErrUnrecognizedFormat is returned by LoadFromFile for well-formed JSON
	// that is neither an array, a categorized catalog, nor a symbols list.
	ErrUnrecognizedFormat = errors.New("unrecognized vocabulary format")

	// ErrMalformedCatalog is returned by Load when the catalog lacks a
	// "categories" object.
	ErrMalformedCatalog = errors.New("malformed vocabulary catalog")
)

// Index is the closed vocabulary of canonical symbols.
type Index struct {
	mu      sync.RWMutex
	symbols mapset.Set[string]
	// lookup maps case-folded forms (lower and upper) to the canonical spelling.
	lookup map[string]string
	loaded bool
	client *http.Client
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		symbols: mapset.NewThreadUnsafeSet[string](),
		lookup:  make(map[string]string),
		client:  http.DefaultClient,
	}
}

// NewIndexFrom creates an index holding the given symbols.
func NewIndexFrom(symbols ...string) *Index {
	idx := NewIndex()
	idx.mu.Lock()
	for _, s := range symbols {
		idx.add(s)
	}
	idx.loaded = len(symbols) > 0
	idx.mu.Unlock()
	return idx
}

// Load reads a categorized catalog from source, which is either an http(s)
// URL or a file path.
//
// An unreachable source, invalid JSON, or a catalog without a "categories"
// object fails. Individual entries that are not strings are skipped.
func (idx *Index) Load(ctx context.Context, source string) error {
	data, err := idx.fetch(ctx, source)
	if err != nil {
		return err
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("failed to parse vocabulary %s: invalid JSON", source)
	}
	doc := gjson.ParseBytes(data)
	categories := doc.Get("categories")
	if !categories.IsObject() {
		return fmt.Errorf("%w: %s has no categories object", ErrMalformedCatalog, source)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	categories.ForEach(func(_, list gjson.Result) bool {
		idx.addAll(list)
		return true
	})
	idx.addAll(doc.Get("all_symbols"))
	idx.loaded = true
	return nil
}

// LoadFromFile merges user-provided vocabulary content into the index and
// returns the number of symbols that were not already present.
//
// Invalid JSON is rejected before the index is touched.
func (idx *Index) LoadFromFile(content []byte) (int, error) {
	if !gjson.ValidBytes(content) {
		return 0, fmt.Errorf("failed to parse vocabulary file: invalid JSON")
	}
	doc := gjson.ParseBytes(content)

	var lists []gjson.Result
	switch {
	case doc.IsArray():
		lists = append(lists, doc)
	case doc.Get("categories").IsObject():
		doc.Get("categories").ForEach(func(_, list gjson.Result) bool {
			lists = append(lists, list)
			return true
		})
	case doc.Get("symbols").IsArray():
		lists = append(lists, doc.Get("symbols"))
	default:
		return 0, ErrUnrecognizedFormat
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	count := 0
	for _, list := range lists {
		count += idx.addAll(list)
	}
	idx.loaded = true
	return count, nil
}

func (idx *Index) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build vocabulary request: %w", err)
		}
		resp, err := idx.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch vocabulary: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch vocabulary: %s returned %s", source, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read vocabulary: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return data, nil
}

// addAll adds every string element of an array result and reports how many
// were new. Non-arrays and non-string elements are ignored.
func (idx *Index) addAll(list gjson.Result) int {
	if !list.IsArray() {
		return 0
	}
	added := 0
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && idx.add(v.Str) {
			added++
		}
		return true
	})
	return added
}

// add must be called with the write lock held.
func (idx *Index) add(sym string) bool {
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return false
	}
	idx.lookup[strings.ToLower(sym)] = sym
	idx.lookup[strings.ToUpper(sym)] = sym
	return idx.symbols.Add(sym)
}

// Len returns the number of canonical symbols.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.symbols.Cardinality()
}

// Loaded reports whether any load has succeeded.
func (idx *Index) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.loaded
}

// Contains reports whether sym is a canonical symbol, exactly as spelled.
func (idx *Index) Contains(sym string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.symbols.Contains(sym)
}

// Symbols returns the canonical symbols in sorted order.
func (idx *Index) Symbols() []string {
	idx.mu.RLock()
	out := idx.symbols.ToSlice()
	idx.mu.RUnlock()
	sort.Strings(out)
	return out
}
