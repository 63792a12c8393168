// Package metrics measures a classifier's accuracy over a directory of
// images labelled with one expected WordNet id.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/utils"
)

var (
	// ErrInputNotFound is returned when the image directory does not exist.
	ErrInputNotFound = utils.ErrInputNotFound
	// ErrNoInputImages is returned when no image matches the expected id.
	ErrNoInputImages = errors.New("no input images")
)

// Config holds the parameters of one accuracy run.
type Config struct {
	ModelPath   string
	ImageDir    string
	ExpectedID  string
	MappingPath string
	LexiconPath string
	Strict      bool

	// Threads is handed to the model runtime for intra-op parallelism.
	Threads int
	// Workers is the number of images processed at once. 1 is fully sequential.
	Workers    int
	ImageSize  int
	MeanCenter bool
	TopK       int
}

// DefaultConfig returns a sequential, mean-centered, top-5 configuration.
func DefaultConfig() Config {
	return Config{
		Workers:    1,
		ImageSize:  utils.DefaultTargetSize,
		MeanCenter: true,
		TopK:       evaluator.DefaultTopK,
	}
}

// NormalizeID strips surrounding space and an optional "n" prefix, so both
// "n01440764" and "01440764" name the same class.
func NormalizeID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "n")
}

func (c *Config) applyDefaults() {
	c.ExpectedID = NormalizeID(c.ExpectedID)
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ImageSize <= 0 {
		c.ImageSize = utils.DefaultTargetSize
	}
	if c.TopK <= 0 {
		c.TopK = evaluator.DefaultTopK
	}
}

// Validate checks the fields a run cannot do without.
func (c Config) Validate() error {
	if c.ImageDir == "" {
		return errors.New("image directory is required")
	}
	id := NormalizeID(c.ExpectedID)
	if id == "" {
		return errors.New("expected id is required")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("expected id %q must be numeric", c.ExpectedID)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.ImageSize < 0 {
		return fmt.Errorf("image size must be >= 0, got %d", c.ImageSize)
	}
	return nil
}
