package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/topacc/internal/mempool"
	"github.com/MeKo-Tech/topacc/internal/utils"
)

// Classifier returns the ranked class offsets for a tensor.
type Classifier interface {
	Evaluate(tensor []float32) ([]int, error)
}

// IDResolver maps class offsets to WordNet ids; unresolved offsets yield "".
type IDResolver interface {
	WordnetIDs(offsets []int) []string
}

// TensorBuilder turns an image file into a size x size channel-major tensor,
// filling buf when it is large enough.
type TensorBuilder func(path string, size int, meanCenter bool, buf []float32) ([]float32, error)

// Runner evaluates every image of one class and tallies the matches.
type Runner struct {
	cfg             Config
	eval            Classifier
	resolver        IDResolver
	logger          *slog.Logger
	continueOnError bool
	build           TensorBuilder
	pool            *mempool.TensorPool
	instr           *instrumentation
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for per-image and summary output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// ContinueOnError records per-image failures as unmatched instead of
// aborting the run.
func ContinueOnError(enabled bool) Option {
	return func(r *Runner) { r.continueOnError = enabled }
}

// WithTensorBuilder replaces the image decoding step.
func WithTensorBuilder(b TensorBuilder) Option {
	return func(r *Runner) {
		if b != nil {
			r.build = b
		}
	}
}

// NewRunner validates cfg and wires the run's collaborators.
func NewRunner(cfg Config, eval Classifier, resolver IDResolver, opts ...Option) (*Runner, error) {
	if eval == nil {
		return nil, errors.New("classifier is required")
	}
	if resolver == nil {
		return nil, errors.New("id resolver is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}
	cfg.applyDefaults()

	r := &Runner{
		cfg:      cfg,
		eval:     eval,
		resolver: resolver,
		logger:   slog.Default(),
		build:    utils.BuildPixelTensorInto,
		pool:     mempool.NewTensorPool(utils.TensorLength(cfg.ImageSize)),
		instr:    newInstrumentation(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the effective configuration.
func (r *Runner) Config() Config { return r.cfg }

// Run evaluates all images of the expected class and returns the tally.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	files, err := DiscoverImages(r.cfg.ImageDir, r.cfg.ExpectedID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no n%s_*.jpeg in %s", ErrNoInputImages, r.cfg.ExpectedID, r.cfg.ImageDir)
	}
	r.logger.Info("starting accuracy run",
		"images", len(files), "expected_id", r.cfg.ExpectedID,
		"strict", r.cfg.Strict, "workers", r.cfg.Workers)

	results := make([]ImageResult, len(files))
	if r.cfg.Workers == 1 {
		err = r.runSequential(ctx, files, results)
	} else {
		err = r.runParallel(ctx, files, results)
	}
	if err != nil {
		return nil, err
	}

	res := r.reduce(results, time.Since(start))
	r.instr.recordRun(res.Percentage)
	r.logger.Info("accuracy run complete",
		"total", res.Total, "matched", res.Matched, "failed", res.Failed,
		"percentage", res.Percentage, "duration", res.Duration)
	return res, nil
}

func (r *Runner) runSequential(ctx context.Context, files []string, results []ImageResult) error {
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i] = r.processImage(path)
		if err := r.checkImage(results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, files []string, results []ImageResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns results[i]; counters are reduced after Wait.
			results[i] = r.processImage(path)
			return r.checkImage(results[i])
		})
	}
	return g.Wait()
}

func (r *Runner) checkImage(res ImageResult) error {
	if res.Err == nil || r.continueOnError {
		return nil
	}
	return fmt.Errorf("%s: %w", res.Path, res.Err)
}

func (r *Runner) processImage(path string) ImageResult {
	start := time.Now()
	res := ImageResult{Path: path}

	buf := r.pool.Get()
	defer r.pool.Put(buf)

	tensor, err := r.build(path, r.cfg.ImageSize, r.cfg.MeanCenter, buf)
	if err == nil {
		res.Offsets, err = r.eval.Evaluate(tensor)
	}
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		r.instr.recordImage(res)
		r.logger.Warn("image failed", "path", path, "error", err)
		return res
	}

	res.WordnetIDs = r.resolver.WordnetIDs(res.Offsets)
	res.Matched = Matches(res.WordnetIDs, r.cfg.ExpectedID, r.cfg.Strict, r.cfg.TopK)
	res.Elapsed = time.Since(start)
	r.instr.recordImage(res)
	r.logger.Debug("image evaluated",
		"path", path, "offsets", res.Offsets, "ids", res.WordnetIDs,
		"matched", res.Matched, "elapsed", res.Elapsed)
	return res
}

func (r *Runner) reduce(results []ImageResult, elapsed time.Duration) *Result {
	res := &Result{
		Total:      len(results),
		Strict:     r.cfg.Strict,
		ExpectedID: r.cfg.ExpectedID,
		Images:     results,
		Duration:   elapsed,
	}
	for _, ir := range results {
		switch {
		case ir.Err != nil:
			res.Failed++
		case ir.Matched:
			res.Matched++
		}
	}
	res.Percentage = Percentage(res.Matched, res.Total)
	return res
}

// WriteMetricsFile writes the run's Prometheus collectors to path in the
// node-exporter textfile format.
func (r *Runner) WriteMetricsFile(path string) error {
	if err := r.instr.writeTextfile(path); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// PoolStats reports tensor buffer reuse for the run so far.
func (r *Runner) PoolStats() mempool.Stats { return r.pool.Stats() }
