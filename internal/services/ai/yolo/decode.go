// Package yolo decodes raw YOLOv5 prediction rows into detections.
package yolo

import (
	"fmt"
	"image"
	"math"
	"sort"

	"animalfinder/internal/model"

	"gocv.io/x/gocv"
)

// Row layout: cx, cy, w, h, objectness, then one score per class.
const boxFields = 5

// Decode turns a flat prediction buffer into detections whose combined
// confidence (objectness times best class score) reaches threshold.
// Coordinates stay in inference pixels. The result is never nil.
func Decode(data []float32, stride int, threshold float32, labels []string) ([]model.Detection, error) {
	if stride <= boxFields {
		return nil, fmt.Errorf("prediction stride %d too small", stride)
	}
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("prediction buffer of %d values is not a multiple of stride %d", len(data), stride)
	}

	detections := make([]model.Detection, 0)
	for idx := 0; idx < len(data); idx += stride {
		row := data[idx : idx+stride]
		objectness := row[4]
		if objectness < threshold {
			continue
		}
		classID, classScore := argmax(row[boxFields:])
		score := objectness * classScore
		if score < threshold {
			continue
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		detections = append(detections, model.Detection{
			Box:     [4]float32{cx - w/2, cy - h/2, cx + w/2, cy + h/2},
			Score:   score,
			ClassID: classID,
			Label:   label(labels, classID),
		})
	}
	return detections, nil
}

// classOffset separates the classes in coordinate space so a single
// class-agnostic NMSBoxes pass never suppresses across classes.
const classOffset = 4096

// NMS runs non-maximum suppression per class and returns the kept detections
// ordered by descending score. The input is not modified.
func NMS(detections []model.Detection, scoreThreshold, iouThreshold float32) []model.Detection {
	kept := make([]model.Detection, 0, len(detections))
	if len(detections) == 0 {
		return kept
	}

	bboxes := make([]image.Rectangle, len(detections))
	scores := make([]float32, len(detections))
	for i, d := range detections {
		shift := d.ClassID * classOffset
		bboxes[i] = image.Rect(
			int(math.Round(float64(d.Box[0])))+shift,
			int(math.Round(float64(d.Box[1])))+shift,
			int(math.Round(float64(d.Box[2])))+shift,
			int(math.Round(float64(d.Box[3])))+shift,
		)
		scores[i] = d.Score
	}

	indices := make([]int, len(bboxes))
	for i := range indices {
		indices[i] = -1
	}
	gocv.NMSBoxes(bboxes, scores, scoreThreshold, iouThreshold, indices)

	for _, idx := range indices {
		if idx >= 0 {
			kept = append(kept, detections[idx])
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

func argmax(f []float32) (int, float32) {
	r, m := 0, f[0]
	for i, v := range f {
		if v > m {
			m = v
			r = i
		}
	}
	return r, m
}

func label(labels []string, class int) string {
	if class < len(labels) {
		return labels[class]
	}
	return fmt.Sprintf("class%d", class)
}
