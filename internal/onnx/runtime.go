package onnx

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
	onnxrt "github.com/yalue/onnxruntime_go"
)

// DefaultInputSize is used when a model leaves its spatial input dims dynamic.
const DefaultInputSize = 224

// Runtime loads ONNX models through onnxruntime_go.
type Runtime struct{}

// NewRuntime returns a Runtime. The shared library is located and the global
// environment initialized lazily on the first Load.
func NewRuntime() *Runtime { return &Runtime{} }

// Load opens the model at path. threads > 0 sets the session's intra-op thread count.
func (r *Runtime) Load(path string, threads int) (evaluator.Model, error) {
	if err := InitializeEnvironment(); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("io info: %w", err)
	}
	in, out, err := validateModelIO(inputs, outputs)
	if err != nil {
		return nil, err
	}

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session opts: %w", err)
	}
	defer func() {
		if err := opts.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session options: %v\n", err)
		}
	}()
	if threads > 0 {
		if err := opts.SetIntraOpNumThreads(threads); err != nil {
			return nil, fmt.Errorf("intra-op threads: %w", err)
		}
	}

	sess, err := onnxrt.NewDynamicAdvancedSession(path, []string{in.Name}, []string{out.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Model{
		session: sess,
		input:   in.Name,
		output:  out.Name,
		size:    squareInputSize(in.Dimensions, DefaultInputSize),
	}, nil
}

func validateModelIO(inputs, outputs []onnxrt.InputOutputInfo) (onnxrt.InputOutputInfo, onnxrt.InputOutputInfo, error) {
	if len(inputs) != 1 || len(outputs) != 1 {
		return onnxrt.InputOutputInfo{}, onnxrt.InputOutputInfo{},
			fmt.Errorf("unexpected io (in:%d out:%d)", len(inputs), len(outputs))
	}
	in, out := inputs[0], outputs[0]
	if len(in.Dimensions) != 4 {
		return onnxrt.InputOutputInfo{}, onnxrt.InputOutputInfo{},
			fmt.Errorf("expected 4D input, got %dD", len(in.Dimensions))
	}
	if in.DataType != onnxrt.TensorElementDataTypeFloat || out.DataType != onnxrt.TensorElementDataTypeFloat {
		return onnxrt.InputOutputInfo{}, onnxrt.InputOutputInfo{},
			fmt.Errorf("expected float32 io, got in:%v out:%v", in.DataType, out.DataType)
	}
	return in, out, nil
}

// Model is an ONNX classification session with one image input and one
// score output.
type Model struct {
	mu      sync.Mutex
	session *onnxrt.DynamicAdvancedSession
	input   string
	output  string
	size    int
}

func (m *Model) InputName() string  { return m.input }
func (m *Model) OutputName() string { return m.output }

// InputSize is the square edge length the model expects.
func (m *Model) InputSize() int { return m.size }

// Infer runs the session on the tensor bound to the input slot.
func (m *Model) Infer(inputs map[string][]float32) (map[string][]float32, error) {
	data, ok := inputs[m.input]
	if !ok {
		return nil, fmt.Errorf("no tensor bound to input %q", m.input)
	}
	tensor, err := NewImageTensor(data, 3, m.size, m.size)
	if err != nil {
		return nil, err
	}
	if err := VerifyImageTensor(tensor); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, errors.New("model is closed")
	}

	input, err := onnxrt.NewTensor(onnxrt.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := []onnxrt.Value{nil}
	if err := m.session.Run([]onnxrt.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				if err := o.Destroy(); err != nil {
					fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
				}
			}
		}
	}()

	t, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	// The tensor's backing memory is freed on Destroy.
	scores := append([]float32(nil), t.GetData()...)
	return map[string][]float32{m.output: scores}, nil
}

// Close destroys the session.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
