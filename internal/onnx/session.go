// Package onnx wraps ONNX Runtime session bootstrap for the optional
// model-backed embedder. All of it is inert unless a model path is
// configured; the default pipeline never touches the runtime.
package onnx

import (
	"errors"
	"fmt"
	"os"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// EnvLibraryPath optionally points at the ONNX Runtime shared library.
const EnvLibraryPath = "PLATESCAN_ONNX_LIB"

// ensureRuntime initializes the ONNX Runtime environment once.
func ensureRuntime() error {
	if onnxrt.IsInitialized() {
		return nil
	}
	if p := os.Getenv(EnvLibraryPath); p != "" {
		onnxrt.SetSharedLibraryPath(p)
	}
	if err := onnxrt.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnx runtime: %w", err)
	}
	return nil
}

// Session wraps a single-input, single-output float32 model.
type Session struct {
	sess     *onnxrt.DynamicAdvancedSession
	InHeight int
	InWidth  int
}

// NewSession loads the model at modelPath and validates its IO signature:
// one 4D image input, one output.
func NewSession(modelPath string, numThreads int) (*Session, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model not found: %w", err)
	}
	if err := ensureRuntime(); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("model io info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("unexpected model io (in:%d out:%d)", len(inputs), len(outputs))
	}
	in := inputs[0]
	if len(in.Dimensions) != 4 {
		return nil, fmt.Errorf("expected 4D image input, got %dD", len(in.Dimensions))
	}

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer func() {
		if err := opts.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session options: %v\n", err)
		}
	}()
	if numThreads > 0 {
		_ = opts.SetIntraOpNumThreads(numThreads)
	}

	sess, err := onnxrt.NewDynamicAdvancedSession(modelPath, []string{in.Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := &Session{sess: sess}
	if h := in.Dimensions[2]; h > 0 {
		s.InHeight = int(h)
	}
	if w := in.Dimensions[3]; w > 0 {
		s.InWidth = int(w)
	}
	return s, nil
}

// Run feeds a NCHW float32 tensor through the model and returns a copy of
// the flat output.
func (s *Session) Run(data []float32, height, width int) ([]float32, error) {
	if s == nil || s.sess == nil {
		return nil, errors.New("session not initialized")
	}
	input, err := onnxrt.NewTensor(onnxrt.NewShape(1, 3, int64(height), int64(width)), data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := []onnxrt.Value{nil}
	if err := s.sess.Run([]onnxrt.Value{input}, outputs); err != nil {
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
	out := make([]float32, len(t.GetData()))
	copy(out, t.GetData())
	return out, nil
}

// Close releases the underlying session.
func (s *Session) Close() {
	if s.sess != nil {
		if err := s.sess.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session: %v\n", err)
		}
		s.sess = nil
	}
}
