package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/pathway-extract/internal/config"
	"github.com/ironsheep/pathway-extract/internal/imaging"
	"github.com/ironsheep/pathway-extract/internal/ocr"
	"github.com/ironsheep/pathway-extract/internal/pipeline"
	"github.com/ironsheep/pathway-extract/internal/symbols"
)

// EnvLogLevel selects the log level when --log-level is not given.
const EnvLogLevel = "PATHWAY_LOG_LEVEL"

var (
	configPath  string
	envFile     string
	logLevel    string
	vocabSource string
	metricsAddr string
)

// app holds the collaborators shared by every subcommand. It is built once
// per invocation by setup.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	ocr       *ocr.Tesseract
	masker    *imaging.EdgeMasker
	extractor *pipeline.Extractor
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "pathway-extract",
	Short: "Extract gene interaction graphs from pathway diagrams",
	Long: `pathway-extract reads a pathway diagram image, recognizes the gene and
protein names printed on it, and reconstructs the interactions drawn between
them as a graph of nodes and typed edges.

Names are resolved against a vocabulary catalog given with --vocab, the
[vocabulary] section of the config file, or PATHWAY_VOCABULARY.

Examples:
  # Extract a graph as CSV
  pathway-extract extract --vocab genes.json --format csv diagram.png

  # Resolve OCR tokens against the vocabulary
  pathway-extract match --vocab genes.json STATl JAK2

  # Serve the MCP tools over stdio
  pathway-extract serve --vocab genes.json`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file (defaults are used when empty)")
	flags.StringVar(&envFile, "env", ".env", "dotenv file loaded before reading PATHWAY_* variables")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default info, or $"+EnvLogLevel+")")
	flags.StringVar(&vocabSource, "vocab", "", "vocabulary catalog path or URL, overriding the config")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if vocabSource != "" {
		cfg.Vocabulary.Source = vocabSource
	}

	log, err := newLogger(logLevel, os.Getenv(EnvLogLevel))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := pipeline.NewMetrics(reg)
	if metricsAddr != "" {
		go serveMetrics(log, reg, metricsAddr)
	}

	tess := ocr.New(cfg.OCR.Language, cfg.OCR.TessdataPrefix)
	masker := imaging.NewEdgeMasker(imaging.NewImageCache(), cfg.EdgeOptions())
	extractor := pipeline.New(symbols.NewIndex(), tess, masker, cfg,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics),
	)

	if cfg.Vocabulary.Source != "" {
		if err := extractor.LoadVocabulary(cmd.Context(), cfg.Vocabulary.Source); err != nil {
			return err
		}
	}

	current = &app{
		cfg:       cfg,
		log:       log,
		ocr:       tess,
		masker:    masker,
		extractor: extractor,
	}
	return nil
}

// loadEnvFile loads path into the process environment. A missing file is
// not an error; variables already set are never overwritten.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return nil
}

// newLogger builds the stderr logger. flag wins over env; both empty means
// info.
func newLogger(flag, env string) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	name := flag
	if name == "" {
		name = env
	}
	if name != "" {
		parsed, err := logrus.ParseLevel(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", name, err)
		}
		level = parsed
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
	return log, nil
}

func serveMetrics(log logrus.FieldLogger, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}
