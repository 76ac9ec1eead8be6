package model

import "image"

const (
	// InferenceWidth and InferenceHeight give the fixed grid the detector runs on.
	InferenceWidth  = 1280
	InferenceHeight = 1280
)

// Detection is one predicted object. Box holds x0, y0, x1, y1 in inference space.
type Detection struct {
	Box     [4]float32
	Score   float32
	ClassID int
	Label   string
}

// Rescale maps the box from inference space onto an image of cols x rows.
// Even coordinate indices scale along x and odd ones along y; results are truncated.
func (d Detection) Rescale(cols, rows int) image.Rectangle {
	var out [4]int
	for i, v := range d.Box {
		dim, inference := cols, InferenceWidth
		if i%2 == 1 {
			dim, inference = rows, InferenceHeight
		}
		out[i] = int(float64(v) * float64(dim) / float64(inference))
	}
	// Not image.Rect: that would reorder inverted corners.
	return image.Rectangle{Min: image.Pt(out[0], out[1]), Max: image.Pt(out[2], out[3])}
}
