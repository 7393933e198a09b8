package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pathway-extract/internal/detection"
	"github.com/ironsheep/pathway-extract/internal/export"
	"github.com/ironsheep/pathway-extract/internal/graph"
	"github.com/ironsheep/pathway-extract/internal/imaging"
	"github.com/ironsheep/pathway-extract/internal/symbols"
)

type fakeWords struct {
	words []graph.Word
	err   error
	calls int
}

func (f *fakeWords) ExtractWords(ctx context.Context, imagePath string) ([]graph.Word, error) {
	f.calls++
	return f.words, f.err
}

type fakeMask struct {
	mask detection.EdgeMask
	err  error
}

func (f *fakeMask) EdgeMask(ctx context.Context, imagePath string) (detection.EdgeMask, error) {
	return f.mask, f.err
}

func word(text string, cx, cy, conf float64) graph.Word {
	return graph.Word{
		Text:       text,
		Box:        graph.Box{X0: cx - 10, Y0: cy - 5, X1: cx + 10, Y1: cy + 5},
		Confidence: conf,
	}
}

// scenarioMask draws a connector from (100,100) to (300,100) with an
// arrowhead at the right end.
func scenarioMask() *imaging.Mask {
	mask := imaging.NewMask(400, 200)
	mask.FillRect(image.Rect(100, 99, 301, 102))
	mask.FillRect(image.Rect(278, 88, 300, 113))
	return mask
}

func scenarioWords() *fakeWords {
	return &fakeWords{words: []graph.Word{
		word("STATl", 100, 100, 92),
		word("JAK2", 300, 100, 88),
		word("cytoplasm", 200, 40, 95),
	}}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newExtractor(t *testing.T, words WordSource, masks MaskSource, opts ...Option) *Extractor {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(symbols.NewIndexFrom("STAT1", "JAK2"), words, masks, nil, opts...)
}

func TestExtract_DirectedScenario(t *testing.T) {
	e := newExtractor(t, scenarioWords(), &fakeMask{mask: scenarioMask()})

	res, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "diagram.png", res.Image)
	assert.Equal(t, 3, res.Words)

	require.Len(t, res.Graph.Nodes, 2)
	assert.Equal(t, "STAT1", res.Graph.Nodes[0].Label)
	assert.Equal(t, "JAK2", res.Graph.Nodes[1].Label)

	require.Len(t, res.Graph.Edges, 1)
	edge := res.Graph.Edges[0]
	assert.Equal(t, graph.Directed, edge.Kind)
	assert.Equal(t, "STAT1", edge.Source)
	assert.Equal(t, "JAK2", edge.Target)
	assert.Greater(t, edge.RawScore, e.Config().Detection.PathThreshold)
}

func TestExtract_EmptyMask(t *testing.T) {
	e := newExtractor(t, scenarioWords(), &fakeMask{mask: imaging.NewMask(400, 200)})

	res, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)
	assert.Len(t, res.Graph.Nodes, 2)
	assert.Empty(t, res.Graph.Edges)
}

func TestExtract_ConfidenceFilteredOnce(t *testing.T) {
	words := &fakeWords{words: []graph.Word{
		word("STAT1", 100, 100, 49),
		word("JAK2", 300, 100, 50),
	}}
	e := newExtractor(t, words, &fakeMask{mask: scenarioMask()})

	res, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)
	require.Len(t, res.Graph.Nodes, 1)
	assert.Equal(t, "JAK2", res.Graph.Nodes[0].Label)
}

func TestExtract_StageErrors(t *testing.T) {
	ocrErr := errors.New("tesseract crashed")
	maskErr := errors.New("undecodable image")

	tests := []struct {
		name      string
		index     *symbols.Index
		words     *fakeWords
		masks     *fakeMask
		wantStage Stage
		wantErr   error
	}{
		{
			name:      "vocabulary not loaded",
			index:     symbols.NewIndex(),
			words:     scenarioWords(),
			masks:     &fakeMask{mask: scenarioMask()},
			wantStage: StageLoad,
			wantErr:   ErrNotLoaded,
		},
		{
			name:      "recognition failure",
			index:     symbols.NewIndexFrom("STAT1"),
			words:     &fakeWords{err: ocrErr},
			masks:     &fakeMask{mask: scenarioMask()},
			wantStage: StageRecognition,
			wantErr:   ocrErr,
		},
		{
			name:      "edge mask failure",
			index:     symbols.NewIndexFrom("STAT1"),
			words:     scenarioWords(),
			masks:     &fakeMask{err: maskErr},
			wantStage: StageExtraction,
			wantErr:   maskErr,
		},
		{
			name:      "missing mask",
			index:     symbols.NewIndexFrom("STAT1"),
			words:     scenarioWords(),
			masks:     &fakeMask{},
			wantStage: StageExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.index, tt.words, tt.masks, nil, WithLogger(quietLogger()))

			res, err := e.Extract(context.Background(), "diagram.png")
			require.Error(t, err)
			assert.Nil(t, res, "a failed run must not report a result")

			stage, ok := StageOf(err)
			require.True(t, ok, "error should carry a stage: %v", err)
			assert.Equal(t, tt.wantStage, stage)
			assert.True(t, strings.HasPrefix(err.Error(), string(tt.wantStage)+" failed: "), err.Error())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtract_NotLoadedSkipsCollaborators(t *testing.T) {
	words := scenarioWords()
	e := New(symbols.NewIndex(), words, &fakeMask{mask: scenarioMask()}, nil, WithLogger(quietLogger()))

	_, err := e.Extract(context.Background(), "diagram.png")
	require.ErrorIs(t, err, ErrNotLoaded)
	assert.Zero(t, words.calls)
}

func TestExtractTo(t *testing.T) {
	e := newExtractor(t, scenarioWords(), &fakeMask{mask: scenarioMask()})

	var buf bytes.Buffer
	res, err := e.ExtractTo(context.Background(), "diagram.png", &buf, export.FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(res.Graph.Edges)+1)
	assert.True(t, strings.HasPrefix(lines[1], "STAT1,JAK2,directed,"))

	_, err = e.ExtractTo(context.Background(), "diagram.png", &buf, "xml")
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageExtraction, stage)
}

func TestOnLog(t *testing.T) {
	e := newExtractor(t, scenarioWords(), &fakeMask{mask: scenarioMask()})

	var (
		mu       sync.Mutex
		first    []string
		secondN  int
		observer = func(msg string) {
			mu.Lock()
			defer mu.Unlock()
			first = append(first, msg)
		}
	)
	e.OnLog(observer)
	e.OnLog(func(string) {
		mu.Lock()
		defer mu.Unlock()
		secondN++
	})

	_, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, first, "OCR complete, 3 words")
	assert.Contains(t, first, "validated genes: 2")
	assert.Contains(t, first, "connections detected: 1")
	assert.Equal(t, len(first), secondN)
}

func TestLogFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	e := New(symbols.NewIndexFrom("STAT1", "JAK2"), scenarioWords(), &fakeMask{mask: scenarioMask()}, nil, WithLogger(l))
	res, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+res.RunID+`"`)
	assert.Contains(t, out, `"stage":"recognition"`)
	assert.Contains(t, out, `"stage":"extraction"`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	e := newExtractor(t, scenarioWords(), &fakeMask{mask: scenarioMask()}, WithMetrics(m))
	_, err := e.Extract(context.Background(), "diagram.png")
	require.NoError(t, err)

	failing := New(symbols.NewIndexFrom("STAT1"), &fakeWords{err: errors.New("boom")}, &fakeMask{mask: scenarioMask()}, nil,
		WithLogger(quietLogger()), WithMetrics(m))
	_, err = failing.Extract(context.Background(), "diagram.png")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Edges.WithLabelValues("directed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RunDuration))
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "genes.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"categories":{"kinases":["JAK2","MAPK1"]}}`), 0o644))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"all_symbols":["STAT1"]}`), 0o644))

	e := New(symbols.NewIndex(), &fakeWords{}, &fakeMask{}, nil, WithLogger(quietLogger()))

	require.NoError(t, e.LoadVocabulary(context.Background(), good))
	assert.Equal(t, 2, e.Index().Len())

	err := e.LoadVocabulary(context.Background(), bad)
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageLoad, stage)
	assert.ErrorIs(t, err, symbols.ErrMalformedCatalog)
}

func TestMergeVocabulary(t *testing.T) {
	e := New(symbols.NewIndex(), &fakeWords{}, &fakeMask{}, nil, WithLogger(quietLogger()))

	added, err := e.MergeVocabulary([]byte(`["STAT1", "JAK2"]`))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = e.MergeVocabulary([]byte(`{"symbols": ["JAK2", "TP53"]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	_, err = e.MergeVocabulary([]byte(`{"genes": []}`))
	assert.ErrorIs(t, err, symbols.ErrUnrecognizedFormat)
	stage, _ := StageOf(err)
	assert.Equal(t, StageLoad, stage)
}

func TestStageError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := stageErr(StageRecognition, cause)

	assert.Equal(t, "recognition failed: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)

	// Already tagged errors keep their original stage
	assert.Same(t, err, stageErr(StageExtraction, err))
	assert.NoError(t, stageErr(StageLoad, nil))

	_, ok := StageOf(cause)
	assert.False(t, ok)
}
