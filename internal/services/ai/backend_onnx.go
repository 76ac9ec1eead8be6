package ai

import (
	"fmt"
	"runtime"

	"animalfinder/internal/model"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// ONNXRuntimeOptions locates the shared library and names the graph's tensors.
type ONNXRuntimeOptions struct {
	LibraryPath string
	InputName   string
	OutputName  string
}

type onnxBackend struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNXRuntimeFactory returns a BackendFactory that runs the network through ONNX Runtime.
func NewONNXRuntimeFactory(opts ONNXRuntimeOptions) BackendFactory {
	return func(weightsPath string) (Backend, error) {
		if !ort.IsInitialized() {
			ort.SetSharedLibraryPath(opts.LibraryPath)
			if err := ort.InitializeEnvironment(); err != nil {
				return nil, fmt.Errorf("error initializing onnxruntime: %w", err)
			}
		}

		options, err := ort.NewSessionOptions()
		if err != nil {
			return nil, fmt.Errorf("error creating session options: %w", err)
		}
		defer options.Destroy()

		options.SetIntraOpNumThreads(runtime.NumCPU())
		options.SetInterOpNumThreads(1)

		inputShape := ort.NewShape(1, 3, model.InferenceHeight, model.InferenceWidth)
		outputShape := ort.NewShape(1, PredictionCount, PredictionStride)

		inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
		if err != nil {
			return nil, fmt.Errorf("error creating input tensor: %w", err)
		}

		outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
		if err != nil {
			inputTensor.Destroy()
			return nil, fmt.Errorf("error creating output tensor: %w", err)
		}

		session, err := ort.NewAdvancedSession(
			weightsPath,
			[]string{opts.InputName},
			[]string{opts.OutputName},
			[]ort.ArbitraryTensor{inputTensor},
			[]ort.ArbitraryTensor{outputTensor},
			options,
		)
		if err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, fmt.Errorf("error creating session: %w", err)
		}

		return &onnxBackend{
			session: session,
			input:   inputTensor,
			output:  outputTensor,
		}, nil
	}
}

func (b *onnxBackend) Infer(blob gocv.Mat) ([]float32, error) {
	data, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read input blob: %w", err)
	}
	dst := b.input.GetData()
	if len(data) != len(dst) {
		return nil, fmt.Errorf("input blob has %d values, session expects %d", len(data), len(dst))
	}
	copy(dst, data)

	if err := b.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	out := b.output.GetData()
	predictions := make([]float32, len(out))
	copy(predictions, out)
	return predictions, nil
}

func (b *onnxBackend) Close() error {
	var firstErr error
	for _, destroy := range []func() error{b.session.Destroy, b.input.Destroy, b.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
