// Package onnxscore backs the engine's Scorer capability with an ONNX
// runtime session. Initialization errors are fatal to the run; errors
// during inference are returned per call and treated as data-quality
// conditions by the caller.
package onnxscore

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hadron-data/hfskim/internal/monitoring"
)

var initOnce sync.Once

// initRuntime loads the shared ONNX runtime library once per process.
func initRuntime(libraryPath string) error {
	var err error
	initOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		err = ort.InitializeEnvironment()
	})
	if err == nil && !ort.IsInitialized() {
		return fmt.Errorf("onnx runtime environment not initialized")
	}
	return err
}

// Session wraps one loaded model. The runtime session is created once
// at load and is not documented to be concurrent-safe, so Run calls are
// serialized; construction is the single-writer phase, inference the
// many-reader phase.
type Session struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	inputName string
	numInputs int
}

// Options configures model loading.
type Options struct {
	// LibraryPath points to the onnxruntime shared library. Empty uses
	// the platform default lookup.
	LibraryPath string
	// InputName and OutputName are the model graph tensor names.
	InputName  string
	OutputName string
	// NumInputs is the expected feature-vector length.
	NumInputs int
}

// Load opens the model file and prepares a session. Any failure here
// aborts the run: a missing model is a run-level precondition, not a
// per-event condition.
func Load(modelPath string, opts Options) (*Session, error) {
	if err := initRuntime(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("init onnx runtime: %w", err)
	}
	if opts.InputName == "" {
		opts.InputName = "input"
	}
	if opts.OutputName == "" {
		opts.OutputName = "output"
	}
	if opts.NumInputs <= 0 {
		return nil, fmt.Errorf("model %s: NumInputs must be positive", modelPath)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{opts.InputName}, []string{opts.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	monitoring.Logf("loaded ONNX model %s (input %q, %d features)", modelPath, opts.InputName, opts.NumInputs)
	return &Session{session: session, inputName: opts.InputName, numInputs: opts.NumInputs}, nil
}

// Predict runs one inference and returns the three classification
// scores (background, prompt, non-prompt). Malformed model output is an
// error, never a panic.
func (s *Session) Predict(features []float32) ([3]float32, error) {
	var scores [3]float32
	if len(features) != s.numInputs {
		return scores, fmt.Errorf("feature vector has %d entries, model expects %d", len(features), s.numInputs)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(s.numInputs)), features)
	if err != nil {
		return scores, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}

	s.mu.Lock()
	err = s.session.Run([]ort.Value{input}, outputs)
	s.mu.Unlock()
	if err != nil {
		return scores, fmt.Errorf("run inference: %w", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return scores, fmt.Errorf("model output is not a float32 tensor")
	}
	data := tensor.GetData()
	if len(data) != 3 {
		return scores, fmt.Errorf("model returned %d scores, want 3", len(data))
	}
	copy(scores[:], data)
	return scores, nil
}

// Close releases the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		return err
	}
	return nil
}
