// Package display shows detections on screen in an OpenCV window.
package display

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"animalfinder/internal/config"
	"animalfinder/internal/logger"
	"animalfinder/internal/model"
	"animalfinder/internal/services/imageio"

	"gocv.io/x/gocv"
)

// WindowName is the title of the viewer window.
const WindowName = "image"

var boxColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}

// Viewer draws boxes on a copy of the raster and blocks until the user
// dismisses the window.
type Viewer struct {
	thickness int
	scale     int
	logger    *logger.Logger
}

func NewViewer(cfg *config.Config, logger *logger.Logger) *Viewer {
	return &Viewer{
		thickness: cfg.BoxThickness,
		scale:     cfg.DisplayScale,
		logger:    logger,
	}
}

// Show renders detections on raster and waits for a key press or for the
// window to be closed. The raster itself is left untouched.
func (v *Viewer) Show(ctx context.Context, raster *imageio.Raster, detections []model.Detection) error {
	canvas := raster.Mat.Clone()
	defer canvas.Close()

	boxes := make([]image.Rectangle, 0, len(detections))
	for _, d := range detections {
		boxes = append(boxes, d.Rescale(raster.Cols(), raster.Rows()))
	}
	if err := DrawBoxes(&canvas, boxes, v.thickness); err != nil {
		return fmt.Errorf("failed to draw %s: %w", raster.Path, err)
	}

	small := Downsample(canvas, v.scale)
	defer small.Close()

	v.logger.Debug("Showing %s with %d detection(s)", raster.Path, len(detections))
	window := gocv.NewWindow(WindowName)
	defer window.Close()

	window.IMShow(small)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if key := window.WaitKey(1); key >= 0 {
			return nil
		}
		if window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return nil
		}
	}
}

// DrawBoxes outlines every box on img in red.
func DrawBoxes(img *gocv.Mat, boxes []image.Rectangle, thickness int) error {
	for _, box := range boxes {
		if err := gocv.Rectangle(img, box, boxColor, thickness); err != nil {
			return fmt.Errorf("failed to draw rectangle: %w", err)
		}
	}
	return nil
}

// Downsample shrinks img by factor on both axes with nearest neighbour
// sampling. The caller must Close the result.
func Downsample(img gocv.Mat, factor int) gocv.Mat {
	out := gocv.NewMat()
	if factor <= 1 {
		img.CopyTo(&out)
		return out
	}
	f := 1.0 / float64(factor)
	gocv.Resize(img, &out, image.Point{}, f, f, gocv.InterpolationNearestNeighbor)
	return out
}
