package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/metrics"
	"github.com/MeKo-Tech/topacc/internal/models"
	"github.com/MeKo-Tech/topacc/internal/utils"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{metrics.FormatText, metrics.FormatJSON, metrics.FormatYAML, metrics.FormatCSV}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  "info",
		Eval: EvalConfig{
			ImageSize:  utils.DefaultTargetSize,
			MeanCenter: true,
			TopK:       evaluator.DefaultTopK,
			Workers:    1,
		},
		Output: OutputConfig{
			Format: metrics.FormatText,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Model.Threads < 0 {
		return fmt.Errorf("invalid model threads: %d (must not be negative)", c.Model.Threads)
	}
	if c.Eval.Workers <= 0 {
		return fmt.Errorf("invalid eval workers: %d (must be positive)", c.Eval.Workers)
	}
	if c.Eval.ImageSize <= 0 {
		return fmt.Errorf("invalid eval image size: %d (must be positive)", c.Eval.ImageSize)
	}
	if c.Eval.TopK <= 0 {
		return fmt.Errorf("invalid eval top_k: %d (must be positive)", c.Eval.TopK)
	}
	return nil
}

// ModelPath returns the configured model path, or the default under ModelsDir.
func (c *Config) ModelPath() string {
	if c.Model.Path != "" {
		return c.Model.Path
	}
	return models.GetModelPath(c.ModelsDir)
}

// MappingPath returns the configured mapping table path, or the default under ModelsDir.
func (c *Config) MappingPath() string {
	if c.Data.MappingPath != "" {
		return c.Data.MappingPath
	}
	return models.GetMappingPath(c.ModelsDir)
}

// LexiconPath returns the configured lexical database path, or the default under ModelsDir.
func (c *Config) LexiconPath() string {
	if c.Data.LexiconPath != "" {
		return c.Data.LexiconPath
	}
	return models.GetLexiconPath(c.ModelsDir)
}

// ToMetricsConfig converts the config to the accuracy runner's configuration.
func (c *Config) ToMetricsConfig() metrics.Config {
	return metrics.Config{
		ModelPath:   c.ModelPath(),
		ImageDir:    c.Eval.ImageDir,
		ExpectedID:  c.Eval.ExpectedID,
		MappingPath: c.MappingPath(),
		LexiconPath: c.LexiconPath(),
		Strict:      c.Eval.Strict,
		Threads:     c.Model.Threads,
		Workers:     c.Eval.Workers,
		ImageSize:   c.Eval.ImageSize,
		MeanCenter:  c.Eval.MeanCenter,
		TopK:        c.Eval.TopK,
	}
}
