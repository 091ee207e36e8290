package analyzer

import (
	"image"

	"gocv.io/x/gocv"
)

// GridDetector is the blind 2x2 splitter kept as an explicitly selectable
// strategy for pages known to hold a full four-photo layout. Every quadrant
// becomes a candidate region; the bounds refiner downstream trims the white
// margins and discards quadrants without content.
type GridDetector struct{}

func NewGridDetector() *GridDetector {
	return &GridDetector{}
}

func (d *GridDetector) Detect(page, gray gocv.Mat) (*Detection, error) {
	det := &Detection{}
	w, h := gray.Cols(), gray.Rows()
	midX, midY := w/2, h/2
	det.logf("grid pass: fixed 2x2 split at (%d, %d)", midX, midY)

	det.Regions = []Region{
		BoxRegion(image.Rect(0, 0, midX, midY)),
		BoxRegion(image.Rect(midX, 0, w, midY)),
		BoxRegion(image.Rect(0, midY, midX, h)),
		BoxRegion(image.Rect(midX, midY, w, h)),
	}
	return det, nil
}
