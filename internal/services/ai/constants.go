package ai

const (
	// ConfidenceThreshold is the minimum objectness times class score kept.
	ConfidenceThreshold = 0.2
	// IoUThreshold is the overlap above which same-class boxes are suppressed.
	IoUThreshold = 0.45

	// PredictionStride is the width of one YOLOv5 output row for three classes.
	PredictionStride = 8
	// PredictionCount is the number of anchors a 1280x1280 P6 model emits.
	PredictionCount = 102000
)

// Labels maps MegaDetector class ids to names.
var Labels = []string{"animal", "person", "vehicle"}
