package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pathway-extract/internal/config"
	"github.com/ironsheep/pathway-extract/internal/detection"
	"github.com/ironsheep/pathway-extract/internal/export"
	"github.com/ironsheep/pathway-extract/internal/graph"
	"github.com/ironsheep/pathway-extract/internal/symbols"
)

// WordSource recognizes located words in an image.
type WordSource interface {
	ExtractWords(ctx context.Context, imagePath string) ([]graph.Word, error)
}

// MaskSource computes the edge mask of an image.
type MaskSource interface {
	EdgeMask(ctx context.Context, imagePath string) (detection.EdgeMask, error)
}

// Result is the outcome of one extraction run.
type Result struct {
	RunID    string        `json:"run_id"`
	Image    string        `json:"image"`
	Words    int           `json:"words"`
	Graph    *graph.Graph  `json:"graph"`
	Duration time.Duration `json:"duration"`
}

// Extractor runs the full pipeline for one image at a time against a shared
// vocabulary.
type Extractor struct {
	index   *symbols.Index
	words   WordSource
	masks   MaskSource
	cfg     *config.Config
	log     *logrus.Logger
	metrics *Metrics
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger replaces the extractor's logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// WithMetrics sets the collectors updated after each run.
func WithMetrics(m *Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// New creates an extractor. A nil cfg selects config.Default().
func New(index *symbols.Index, words WordSource, masks MaskSource, cfg *config.Config, opts ...Option) *Extractor {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Extractor{
		index: index,
		words: words,
		masks: masks,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.New()
		e.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// OnLog registers fn to receive every progress message the extractor logs.
// Several observers may be registered.
func (e *Extractor) OnLog(fn func(string)) {
	e.log.AddHook(&observerHook{fn: fn})
}

// Index returns the vocabulary the extractor resolves words against.
func (e *Extractor) Index() *symbols.Index {
	return e.index
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() *config.Config {
	return e.cfg
}

// LoadVocabulary loads a categorized catalog from a file path or URL.
func (e *Extractor) LoadVocabulary(ctx context.Context, source string) error {
	log := e.log.WithField("stage", StageLoad)
	if err := e.index.Load(ctx, source); err != nil {
		log.WithError(err).Error("vocabulary load failed")
		return stageErr(StageLoad, err)
	}
	log.Infof("vocabulary loaded: %d symbols", e.index.Len())
	return nil
}

// MergeVocabulary merges user-supplied vocabulary content and returns the
// number of new symbols.
func (e *Extractor) MergeVocabulary(content []byte) (int, error) {
	log := e.log.WithField("stage", StageLoad)
	added, err := e.index.LoadFromFile(content)
	if err != nil {
		log.WithError(err).Error("vocabulary merge failed")
		return 0, stageErr(StageLoad, err)
	}
	log.Infof("vocabulary merged: %d new symbols, %d total", added, e.index.Len())
	return added, nil
}

// Extract builds the pathway graph of the image at imagePath.
//
// Word recognition and edge-mask computation run concurrently; node
// building starts only after both have finished. Errors carry the failing
// stage as a *StageError.
func (e *Extractor) Extract(ctx context.Context, imagePath string) (*Result, error) {
	return e.run(ctx, imagePath, nil)
}

// ExtractTo runs Extract and writes the graph to w in format f.
func (e *Extractor) ExtractTo(ctx context.Context, imagePath string, w io.Writer, f export.Format) (*Result, error) {
	return e.run(ctx, imagePath, func(asm *graph.Assembler) error {
		if err := export.Write(w, asm.Graph(), f); err != nil {
			return err
		}
		return asm.MarkExported()
	})
}

func (e *Extractor) run(ctx context.Context, imagePath string, finish func(*graph.Assembler) error) (res *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.log.WithFields(logrus.Fields{"run_id": runID, "image": imagePath})

	defer func() {
		o := outcome(err)
		e.metrics.Runs.WithLabelValues(o).Inc()
		e.metrics.RunDuration.WithLabelValues(o).Observe(time.Since(start).Seconds())
		if err != nil {
			log.WithError(err).Error("extraction failed")
		}
	}()

	if !e.index.Loaded() {
		return nil, stageErr(StageLoad, ErrNotLoaded)
	}

	var (
		words []graph.Word
		mask  detection.EdgeMask
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := e.words.ExtractWords(gctx, imagePath)
		if err != nil {
			return stageErr(StageRecognition, err)
		}
		words = w
		log.WithField("stage", StageRecognition).Infof("OCR complete, %d words", len(w))
		return nil
	})
	g.Go(func() error {
		m, err := e.masks.EdgeMask(gctx, imagePath)
		if err != nil {
			return stageErr(StageExtraction, err)
		}
		mask = m
		log.WithField("stage", StageExtraction).Debug("edge mask ready")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asm := graph.NewAssembler(e.cfg.AssemblerOptions(), log.WithField("stage", StageExtraction))
	if err := asm.AcceptWords(words, e.cfg.OCR.MinConfidence); err != nil {
		return nil, stageErr(StageExtraction, err)
	}
	if err := asm.BuildNodes(e.index); err != nil {
		return nil, stageErr(StageExtraction, err)
	}
	if err := asm.DetectEdges(mask); err != nil {
		return nil, stageErr(StageExtraction, err)
	}
	if finish != nil {
		if err := finish(asm); err != nil {
			return nil, stageErr(StageExtraction, err)
		}
	}

	graphOut := asm.Graph()
	e.metrics.observeGraph(graphOut)

	res = &Result{
		RunID:    runID,
		Image:    imagePath,
		Words:    len(words),
		Graph:    graphOut,
		Duration: time.Since(start),
	}
	return res, nil
}
