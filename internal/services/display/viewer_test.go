package display

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func TestDrawBoxes(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 120, gocv.MatTypeCV8UC3)
	defer img.Close()

	box := image.Rect(20, 30, 80, 70)
	if err := DrawBoxes(&img, []image.Rectangle{box}, 2); err != nil {
		t.Fatalf("DrawBoxes failed: %v", err)
	}

	// OpenCV stores pixels as BGR.
	edge := img.GetVecbAt(30, 50)
	if edge[0] != 0 || edge[1] != 0 || edge[2] != 255 {
		t.Errorf("Expected red on the box edge, got %v", edge)
	}
	inside := img.GetVecbAt(50, 50)
	if inside[0] != 0 || inside[1] != 0 || inside[2] != 0 {
		t.Errorf("Box interior should stay untouched, got %v", inside)
	}
	outside := img.GetVecbAt(5, 5)
	if outside[2] != 0 {
		t.Errorf("Pixels far from the box should stay untouched, got %v", outside)
	}
}

func TestDrawBoxes_NoBoxes(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(9, 9, 9, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer img.Close()
	before := img.ToBytes()

	if err := DrawBoxes(&img, nil, 10); err != nil {
		t.Fatalf("DrawBoxes failed: %v", err)
	}
	after := img.ToBytes()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("Image changed without boxes")
		}
	}
}

func TestDownsample(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 2, 3, 0), 400, 600, gocv.MatTypeCV8UC3)
	defer img.Close()

	tests := []struct {
		factor     int
		rows, cols int
	}{
		{4, 100, 150},
		{2, 200, 300},
		{1, 400, 600},
	}

	for _, tt := range tests {
		small := Downsample(img, tt.factor)
		if small.Rows() != tt.rows || small.Cols() != tt.cols {
			t.Errorf("factor %d: expected %dx%d, got %dx%d", tt.factor, tt.cols, tt.rows, small.Cols(), small.Rows())
		}
		if v := small.GetVecbAt(0, 0); v[0] != 1 || v[1] != 2 || v[2] != 3 {
			t.Errorf("factor %d: nearest sampling changed pixel values: %v", tt.factor, v)
		}
		small.Close()
	}
}
