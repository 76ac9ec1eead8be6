package imageio

import (
	"fmt"
	"os"

	"animalfinder/internal/logger"

	"gocv.io/x/gocv"
)

// Raster is a decoded 3-channel image in OpenCV BGR order. Callers must Close it.
type Raster struct {
	Path string
	Mat  gocv.Mat
}

// Channels returns the number of channels, always 3 for a loaded raster.
func (r *Raster) Channels() int { return r.Mat.Channels() }

// Rows returns the image height.
func (r *Raster) Rows() int { return r.Mat.Rows() }

// Cols returns the image width.
func (r *Raster) Cols() int { return r.Mat.Cols() }

// Close releases the underlying Mat.
func (r *Raster) Close() error {
	return r.Mat.Close()
}

// Loader reads image files from disk.
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *logger.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load decodes path into a Raster. An alpha channel is dropped and grayscale
// is expanded so the result always has 3 channels. No resizing happens here.
func (l *Loader) Load(path string) (*Raster, error) {
	mat, err := l.read(path)
	if err != nil {
		return nil, err
	}

	var code gocv.ColorConversionCode
	switch mat.Channels() {
	case 3:
		return &Raster{Path: path, Mat: mat}, nil
	case 4:
		code = gocv.ColorBGRAToBGR
	case 1:
		code = gocv.ColorGrayToBGR
	default:
		mat.Close()
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("unsupported channel count %d", mat.Channels())}
	}

	converted := gocv.NewMat()
	if err := gocv.CvtColor(mat, &converted, code); err != nil {
		mat.Close()
		converted.Close()
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("failed to convert to 3 channels: %v", err)}
	}
	l.logger.Debug("Converted %s from %d to 3 channels", path, mat.Channels())
	mat.Close()

	return &Raster{Path: path, Mat: converted}, nil
}

// Validate runs the full Load path so anything Load would reject fails here.
func (l *Loader) Validate(path string) error {
	raster, err := l.Load(path)
	if err != nil {
		return err
	}
	return raster.Close()
}

// ValidateAll validates every path in order. step, when not nil, is called after each file.
func (l *Loader) ValidateAll(paths []string, step func()) []ValidationResult {
	results := make([]ValidationResult, 0, len(paths))
	for _, path := range paths {
		err := l.Validate(path)
		if err != nil {
			l.logger.Debug("Validation failed for %s: %v", path, err)
		}
		results = append(results, ValidationResult{Path: path, Err: err})
		if step != nil {
			step()
		}
	}
	return results
}

func (l *Loader) read(path string) (gocv.Mat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return gocv.Mat{}, &DecodeError{Path: path, Reason: fmt.Sprintf("cannot access file: %v", err)}
	}
	if !info.Mode().IsRegular() {
		return gocv.Mat{}, &DecodeError{Path: path, Reason: "not a regular file"}
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, &DecodeError{Path: path, Reason: "cannot be decoded as an image"}
	}
	return mat, nil
}
