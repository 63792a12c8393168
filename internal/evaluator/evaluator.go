// Package evaluator wraps a loaded classification model and turns its raw
// output scores into ranked class offsets.
package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/topacc/internal/utils"
)

// DefaultTopK is the number of ranked offsets Evaluate returns.
const DefaultTopK = 5

var (
	// ErrInputNotFound is returned when the model artifact does not exist.
	ErrInputNotFound = utils.ErrInputNotFound
	// ErrModelLoad is returned when the runtime cannot initialize or parse a model.
	ErrModelLoad = errors.New("model load failed")
)

// Runtime loads model artifacts. threads is a hint for the runtime's own
// intra-op parallelism.
type Runtime interface {
	Load(path string, threads int) (Model, error)
}

// Model is a loaded network with a single input slot and a single output slot.
type Model interface {
	InputName() string
	OutputName() string
	// Infer binds each slice to the named input slot and returns the score
	// vectors of the output slots by name.
	Infer(inputs map[string][]float32) (map[string][]float32, error)
	Close() error
}

// Prediction is one ranked class offset with its raw score.
type Prediction struct {
	Offset int
	Score  float32
}

// Evaluator runs tensors through a Model. It is safe for concurrent use;
// inference calls are serialized.
type Evaluator struct {
	model  Model
	topK   int
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTopK changes how many offsets Evaluate returns.
func WithTopK(k int) Option {
	return func(e *Evaluator) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// New loads the model at path through rt.
func New(rt Runtime, path string, threads int, opts ...Option) (*Evaluator, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: nil runtime", ErrModelLoad)
	}
	if err := utils.CheckInputFile(path, "model"); err != nil {
		return nil, err
	}
	model, err := rt.Load(path, threads)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, path, err)
	}
	return NewWithModel(model, opts...), nil
}

// NewWithModel wraps an already loaded model.
func NewWithModel(model Model, opts ...Option) *Evaluator {
	e := &Evaluator{model: model, topK: DefaultTopK, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the underlying model.
func (e *Evaluator) Close() error {
	if e.model == nil {
		return nil
	}
	return e.model.Close()
}

// InputSize returns the square edge length the model declares, or 0 when the
// model does not say.
func (e *Evaluator) InputSize() int {
	if sized, ok := e.model.(interface{ InputSize() int }); ok {
		return sized.InputSize()
	}
	return 0
}

// Scores runs inference and returns the full output score vector.
func (e *Evaluator) Scores(tensor []float32) ([]float32, error) {
	if len(tensor) == 0 {
		return nil, errors.New("empty input tensor")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	in, out := e.model.InputName(), e.model.OutputName()
	outputs, err := e.model.Infer(map[string][]float32{in: tensor})
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	scores, ok := outputs[out]
	if !ok {
		return nil, fmt.Errorf("model produced no output for slot %q", out)
	}
	e.logger.Debug("inference complete", "input", in, "output", out, "classes", len(scores))
	return scores, nil
}

// Evaluate returns the top offsets for tensor, best first.
func (e *Evaluator) Evaluate(tensor []float32) ([]int, error) {
	scores, err := e.Scores(tensor)
	if err != nil {
		return nil, err
	}
	return TopOffsets(scores, e.topK), nil
}

// EvaluateScores is Evaluate with the score of every returned offset.
func (e *Evaluator) EvaluateScores(tensor []float32) ([]Prediction, error) {
	scores, err := e.Scores(tensor)
	if err != nil {
		return nil, err
	}
	return Rank(scores, e.topK), nil
}
