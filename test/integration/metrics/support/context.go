package support

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/MeKo-Tech/topacc/internal/metrics"
)

// imageSize keeps decoding cheap; the classifier only looks at one pixel.
const imageSize = 8

// TestContext holds the state of one scenario.
type TestContext struct {
	TempDir   string
	ImageDir  string
	MapPath   string
	LexPath   string
	Workers   int
	Lenient   bool
	nextShade int

	classifier *shadeClassifier

	LastResult *metrics.Result
	LastOutput string
	LastError  error
}

// NewTestContext creates a scenario workspace under the system temp dir.
func NewTestContext() (*TestContext, error) {
	dir, err := os.MkdirTemp("", "topacc-metrics-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	imageDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imageDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &TestContext{
		TempDir:    dir,
		ImageDir:   imageDir,
		Workers:    1,
		classifier: &shadeClassifier{rankings: map[int][]int{}},
	}, nil
}

// Cleanup removes the scenario workspace.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.TempDir == "" {
		return nil
	}
	return os.RemoveAll(testCtx.TempDir)
}

// shadeClassifier identifies an image by the red intensity of its first
// pixel and returns the ranking registered for that shade. Shades are spaced
// far enough apart to survive JPEG compression.
type shadeClassifier struct {
	mu       sync.Mutex
	rankings map[int][]int
}

func (c *shadeClassifier) register(shade int, ranking []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rankings[shade] = ranking
}

func (c *shadeClassifier) Evaluate(tensor []float32) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	red := float64(tensor[0])
	best, bestDist := -1, math.MaxFloat64
	for shade := range c.rankings {
		if d := math.Abs(float64(shade) - red); d < bestDist {
			best, bestDist = shade, d
		}
	}
	if best < 0 || bestDist > 10 {
		return nil, fmt.Errorf("no ranking for red intensity %.0f", red)
	}
	return c.rankings[best], nil
}

func parseOffsets(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	offsets := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", f, err)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}
