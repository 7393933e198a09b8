package symbols

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "categories": {
    "jak_stat": ["STAT1", "STAT3", "JAK2"],
    "cytokines": ["IL6", "TGF-β", 42, null],
    "broken": "not-a-list"
  },
  "all_symbols": ["MAPK1", "STAT1"]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndex_Load(t *testing.T) {
	idx := NewIndex()
	err := idx.Load(context.Background(), writeTemp(t, catalogJSON))
	require.NoError(t, err)

	assert.True(t, idx.Loaded())
	assert.Equal(t, []string{"IL6", "JAK2", "MAPK1", "STAT1", "STAT3", "TGF-β"}, idx.Symbols())
	assert.True(t, idx.Contains("TGF-β"))
	assert.False(t, idx.Contains("42"))
}

func TestIndex_Load_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gene_symbols.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	idx := NewIndex()
	require.NoError(t, idx.Load(context.Background(), srv.URL+"/gene_symbols.json"))
	assert.Equal(t, 6, idx.Len())

	err := NewIndex().Load(context.Background(), srv.URL+"/missing.json")
	assert.Error(t, err)
}

func TestIndex_Load_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return "/nonexistent/vocab.json" }},
		{"invalid json", func(t *testing.T) string { return writeTemp(t, `{"categories": [`) }},
		{"no categories", func(t *testing.T) string { return writeTemp(t, `{"symbols": ["STAT1"]}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex()
			err := idx.Load(context.Background(), tt.source(t))
			assert.Error(t, err)
			assert.False(t, idx.Loaded())
			assert.Equal(t, 0, idx.Len())
		})
	}
}

func TestIndex_LoadFromFile_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"flat array", `["STAT1", "JAK2", 7]`, 2},
		{"categorized", `{"categories": {"a": ["STAT1"], "b": ["JAK2", "TNF"]}}`, 3},
		{"symbols list", `{"symbols": ["STAT1"]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex()
			n, err := idx.LoadFromFile([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.True(t, idx.Loaded())
		})
	}
}

func TestIndex_LoadFromFile_CountsOnlyNew(t *testing.T) {
	idx := NewIndexFrom("STAT1")
	n, err := idx.LoadFromFile([]byte(`["STAT1", "JAK2"]`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_LoadFromFile_Rejects(t *testing.T) {
	idx := NewIndexFrom("STAT1")

	_, err := idx.LoadFromFile([]byte(`["JAK2",`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse"))
	assert.Equal(t, 1, idx.Len())

	_, err = idx.LoadFromFile([]byte(`{"genes": ["JAK2"]}`))
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
	assert.Equal(t, 1, idx.Len())
}

func TestNewIndexFrom_SkipsBlank(t *testing.T) {
	idx := NewIndexFrom("STAT1", "  ", "")
	assert.Equal(t, 1, idx.Len())
}
