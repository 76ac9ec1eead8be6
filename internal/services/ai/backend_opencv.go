package ai

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

type openCVBackend struct {
	net gocv.Net
}

// NewOpenCVBackend loads an ONNX network into the OpenCV DNN module.
func NewOpenCVBackend(weightsPath string) (Backend, error) {
	if _, err := os.Stat(weightsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", weightsPath)
	}

	net := gocv.ReadNetFromONNX(weightsPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", weightsPath)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	return &openCVBackend{net: net}, nil
}

func (b *openCVBackend) Infer(blob gocv.Mat) ([]float32, error) {
	b.net.SetInput(blob, "")

	output := b.net.Forward("")
	defer output.Close()
	if output.Empty() {
		return nil, fmt.Errorf("network returned an empty output")
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}
	// data aliases the Mat closed above.
	predictions := make([]float32, len(data))
	copy(predictions, data)
	return predictions, nil
}

func (b *openCVBackend) Close() error {
	return b.net.Close()
}
