package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/pathway-extract/internal/graph"
	"github.com/ironsheep/pathway-extract/internal/imaging"
)

// DetectionConfig holds the [detection] section: edge-mask thresholds and
// the connection detection gates.
type DetectionConfig struct {
	CannyLow      int     `toml:"canny_low"`
	CannyHigh     int     `toml:"canny_high"`
	BlurRadius    float64 `toml:"blur_radius"`
	DilateRadius  float64 `toml:"dilate_radius"`
	MaxDistance   float64 `toml:"max_distance"`
	PathThreshold float64 `toml:"path_threshold"`
	LineThickness int     `toml:"line_thickness"`
	ArrowTipSize  int     `toml:"arrow_tip_size"`
	Workers       int     `toml:"workers"`
}

// OCRConfig holds the [ocr] section.
type OCRConfig struct {
	MinConfidence  float64 `toml:"min_confidence"`
	Language       string  `toml:"language"`
	TessdataPrefix string  `toml:"tessdata_prefix"`
}

// NodesConfig holds the [nodes] section.
type NodesConfig struct {
	DedupRadius float64 `toml:"dedup_radius"`
}

// VocabularyConfig holds the [vocabulary] section.
type VocabularyConfig struct {
	// Source is a file path or http(s) URL of a categorized catalog.
	Source string `toml:"source"`
}

// Config is the full extractor configuration, decoded from TOML.
type Config struct {
	Detection  DetectionConfig  `toml:"detection"`
	OCR        OCRConfig        `toml:"ocr"`
	Nodes      NodesConfig      `toml:"nodes"`
	Vocabulary VocabularyConfig `toml:"vocabulary"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	edge := imaging.DefaultEdgeOptions()
	asm := graph.DefaultOptions()
	return &Config{
		Detection: DetectionConfig{
			CannyLow:      edge.Low,
			CannyHigh:     edge.High,
			BlurRadius:    edge.BlurRadius,
			DilateRadius:  edge.DilateRadius,
			MaxDistance:   asm.MaxDistance,
			PathThreshold: asm.PathThreshold,
			LineThickness: asm.LineThickness,
			ArrowTipSize:  asm.ArrowTipSize,
			Workers:       asm.Workers,
		},
		OCR: OCRConfig{
			MinConfidence: 50,
			Language:      "eng",
		},
		Nodes: NodesConfig{
			DedupRadius: asm.DedupRadius,
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML content over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvVocabulary     = "PATHWAY_VOCABULARY"
	EnvTessdataPrefix = "PATHWAY_TESSDATA_PREFIX"
	EnvLanguage       = "PATHWAY_OCR_LANGUAGE"
	EnvMinConfidence  = "PATHWAY_MIN_CONFIDENCE"
	EnvWorkers        = "PATHWAY_WORKERS"
)

// ApplyEnv overrides fields from the environment. getenv is usually
// os.Getenv; unset or empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvVocabulary); v != "" {
		c.Vocabulary.Source = v
	}
	if v := getenv(EnvTessdataPrefix); v != "" {
		c.OCR.TessdataPrefix = v
	}
	if v := getenv(EnvLanguage); v != "" {
		c.OCR.Language = v
	}
	if v := getenv(EnvMinConfidence); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMinConfidence, v, err)
		}
		c.OCR.MinConfidence = f
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, v, err)
		}
		c.Detection.Workers = n
	}
	return c.Validate()
}

// Validate reports every out-of-range value.
func (c *Config) Validate() error {
	var errs []error
	d := c.Detection
	if d.CannyLow < 0 || d.CannyHigh > 255 || d.CannyLow > d.CannyHigh {
		errs = append(errs, fmt.Errorf("detection: canny thresholds must satisfy 0 <= low <= high <= 255, got %d/%d", d.CannyLow, d.CannyHigh))
	}
	if d.BlurRadius < 0 || d.DilateRadius < 0 {
		errs = append(errs, errors.New("detection: blur and dilate radii must not be negative"))
	}
	if d.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("detection: max_distance must be positive, got %v", d.MaxDistance))
	}
	if d.PathThreshold < 0 || d.PathThreshold > 1 {
		errs = append(errs, fmt.Errorf("detection: path_threshold must be within [0, 1], got %v", d.PathThreshold))
	}
	if d.LineThickness <= 0 {
		errs = append(errs, fmt.Errorf("detection: line_thickness must be positive, got %d", d.LineThickness))
	}
	if d.ArrowTipSize <= 0 {
		errs = append(errs, fmt.Errorf("detection: arrow_tip_size must be positive, got %d", d.ArrowTipSize))
	}
	if d.Workers < 1 {
		errs = append(errs, fmt.Errorf("detection: workers must be at least 1, got %d", d.Workers))
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("ocr: min_confidence must be within [0, 100], got %v", c.OCR.MinConfidence))
	}
	if c.OCR.Language == "" {
		errs = append(errs, errors.New("ocr: language must not be empty"))
	}
	if c.Nodes.DedupRadius <= 0 {
		errs = append(errs, fmt.Errorf("nodes: dedup_radius must be positive, got %v", c.Nodes.DedupRadius))
	}
	return errors.Join(errs...)
}

// AssemblerOptions returns the graph assembler settings.
func (c *Config) AssemblerOptions() graph.Options {
	return graph.Options{
		MaxDistance:   c.Detection.MaxDistance,
		PathThreshold: c.Detection.PathThreshold,
		LineThickness: c.Detection.LineThickness,
		ArrowTipSize:  c.Detection.ArrowTipSize,
		DedupRadius:   c.Nodes.DedupRadius,
		Workers:       c.Detection.Workers,
	}
}

// EdgeOptions returns the edge-mask settings.
func (c *Config) EdgeOptions() imaging.EdgeOptions {
	return imaging.EdgeOptions{
		Low:          c.Detection.CannyLow,
		High:         c.Detection.CannyHigh,
		BlurRadius:   c.Detection.BlurRadius,
		DilateRadius: c.Detection.DilateRadius,
	}
}
