package mock

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
)

// Default slot names of a Model built with NewModel.
const (
	InputName  = "data"
	OutputName = "prob"
)

// Model returns the same score vector for every input.
type Model struct {
	Input  string
	Output string
	Scores []float32
	// Size is reported through InputSize; 0 means the model does not declare one.
	Size int

	mu     sync.Mutex
	calls  int
	closed bool
}

// NewModel returns a model with the default slot names answering scores.
func NewModel(scores []float32) *Model {
	return &Model{Input: InputName, Output: OutputName, Scores: scores}
}

func (m *Model) InputName() string  { return m.Input }
func (m *Model) OutputName() string { return m.Output }
func (m *Model) InputSize() int     { return m.Size }

// Infer checks the input slot and returns a copy of Scores.
func (m *Model) Infer(inputs map[string][]float32) (map[string][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("model is closed")
	}
	data, ok := inputs[m.Input]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("no tensor bound to input %q", m.Input)
	}
	m.calls++
	return map[string][]float32{m.Output: slices.Clone(m.Scores)}, nil
}

// Calls reports how many successful Infer calls were made.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the model closed.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Model) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Runtime hands out Model, or fails with Err.
type Runtime struct {
	Model *Model
	Err   error

	mu      sync.Mutex
	path    string
	threads int
}

var _ evaluator.Runtime = (*Runtime)(nil)

// Load records its arguments and returns r.Model.
func (r *Runtime) Load(path string, threads int) (evaluator.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path, r.threads = path, threads
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Model == nil {
		return nil, errors.New("mock runtime has no model")
	}
	return r.Model, nil
}

// Loaded returns the arguments of the last Load call.
func (r *Runtime) Loaded() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path, r.threads
}
