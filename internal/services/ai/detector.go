package ai

import (
	"context"
	"fmt"
	"image"
	"sync"

	"animalfinder/internal/logger"
	"animalfinder/internal/model"
	"animalfinder/internal/services/ai/yolo"
	"animalfinder/internal/services/imageio"

	"gocv.io/x/gocv"
)

// Backend runs one forward pass on a (1, 3, 1280, 1280) float32 blob and
// returns the flat prediction rows.
type Backend interface {
	Infer(blob gocv.Mat) ([]float32, error)
	Close() error
}

// BackendFactory opens a Backend for a weights file.
type BackendFactory func(weightsPath string) (Backend, error)

// WeightsProvider resolves the local weights file, fetching it when needed.
type WeightsProvider interface {
	Ensure(ctx context.Context) (string, error)
}

// ModelLoadError reports that the detection model could not be constructed.
type ModelLoadError struct {
	Err error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load detection model: %v", e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

type modelState int

const (
	modelUninitialized modelState = iota
	modelReady
)

// DetectorService owns the detection model. The backend is constructed on the
// first Detect call and kept until Close.
type DetectorService struct {
	mu      sync.Mutex
	state   modelState
	backend Backend

	weights WeightsProvider
	open    BackendFactory
	logger  *logger.Logger
}

// NewDetectorService creates a detector in the uninitialized state. Nothing is loaded yet.
func NewDetectorService(weights WeightsProvider, open BackendFactory, logger *logger.Logger) *DetectorService {
	return &DetectorService{
		state:   modelUninitialized,
		weights: weights,
		open:    open,
		logger:  logger,
	}
}

// Ready reports whether the model has been constructed.
func (s *DetectorService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == modelReady
}

// ensureModel performs the single Uninitialized -> Ready transition. A failed
// attempt leaves the state untouched.
func (s *DetectorService) ensureModel(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == modelReady {
		return s.backend, nil
	}

	path, err := s.weights.Ensure(ctx)
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	s.logger.Info("Loading detection model from %s", path)
	backend, err := s.open(path)
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	s.backend = backend
	s.state = modelReady
	s.logger.Info("Detection model ready")
	return backend, nil
}

// Detect runs the model on raster and returns detections in inference space.
// The result is never nil; no detections is an empty slice.
func (s *DetectorService) Detect(ctx context.Context, raster *imageio.Raster) ([]model.Detection, error) {
	backend, err := s.ensureModel(ctx)
	if err != nil {
		return nil, err
	}

	blob, ok, err := Preprocess(raster.Mat)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess %s: %w", raster.Path, err)
	}
	if !ok {
		s.logger.Warning("%s has no non-zero samples, skipping detection", raster.Path)
		return []model.Detection{}, nil
	}
	defer blob.Close()

	predictions, err := backend.Infer(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to run inference on %s: %w", raster.Path, err)
	}

	candidates, err := yolo.Decode(predictions, PredictionStride, ConfidenceThreshold, Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode predictions for %s: %w", raster.Path, err)
	}
	detections := yolo.NMS(candidates, ConfidenceThreshold, IoUThreshold)

	for _, d := range detections {
		s.logger.Debug("Detected %s (%.2f) in %s", d.Label, d.Score, raster.Path)
	}
	return detections, nil
}

// Close releases the backend if it was constructed.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != modelReady {
		return nil
	}
	s.state = modelUninitialized
	err := s.backend.Close()
	s.backend = nil
	return err
}

// Preprocess stretches img to the inference resolution, divides every sample
// by the image maximum and packs it into an RGB NCHW blob. ok is false when
// the image maximum is zero, in which case no blob is returned.
func Preprocess(img gocv.Mat) (blob gocv.Mat, ok bool, err error) {
	if img.Empty() {
		return gocv.Mat{}, false, fmt.Errorf("empty image")
	}

	size := image.Pt(model.InferenceWidth, model.InferenceHeight)
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationLinear)

	samples := gocv.NewMat()
	defer samples.Close()
	resized.ConvertTo(&samples, gocv.MatTypeCV32F)

	// MinMaxLoc needs a single channel view.
	flat := samples.Reshape(1, 0)
	defer flat.Close()
	_, maxVal, _, _ := gocv.MinMaxLoc(flat)
	if maxVal <= 0 {
		return gocv.Mat{}, false, nil
	}

	blob = gocv.BlobFromImage(samples, 1.0/float64(maxVal), size, gocv.NewScalar(0, 0, 0, 0), true, false)
	if blob.Empty() {
		blob.Close()
		return gocv.Mat{}, false, fmt.Errorf("failed to build input blob")
	}
	return blob, true, nil
}
