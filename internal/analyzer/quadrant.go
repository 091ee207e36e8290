package analyzer

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	quadrantMeanDelta      = 15.0
	quadrantMinInkFraction = 0.05
)

var quadrantNames = [4]string{"top-left", "top-right", "bottom-left", "bottom-right"}

// QuadrantClassifier is the fallback layout strategy: after trimming the outer
// page margins, the content box is split into a 2x2 grid and every quadrant is
// tested for content independently. Occupied quadrants become axis-aligned
// candidate regions to be tightened by the bounds refiner.
type QuadrantClassifier struct {
	BackgroundThreshold int
	MeanDelta           float64 // required mean luminance drop below background
	MinInkFraction      float64 // or: minimum fraction of non-background pixels
}

// Classify returns the candidate regions for the page and records layout
// diagnostics and warnings into det.
func (q *QuadrantClassifier) Classify(gray gocv.Mat, det *Detection) []Region {
	full := image.Rect(0, 0, gray.Cols(), gray.Rows())
	content, ok := ContentBounds(gray, full, q.BackgroundThreshold)
	if !ok {
		det.logf("quadrant classifier: no content bounds on page")
		return nil
	}
	det.logf("quadrant classifier: page content box %v", content)

	midX := content.Min.X + content.Dx()/2
	midY := content.Min.Y + content.Dy()/2
	quads := [4]image.Rectangle{
		image.Rect(content.Min.X, content.Min.Y, midX, midY),
		image.Rect(midX, content.Min.Y, content.Max.X, midY),
		image.Rect(content.Min.X, midY, midX, content.Max.Y),
		image.Rect(midX, midY, content.Max.X, content.Max.Y),
	}

	var occupied [4]bool
	for i, quad := range quads {
		occupied[i] = q.hasContent(gray, quad)
		det.logf("  quadrant %s %v: occupied=%v", quadrantNames[i], quad, occupied[i])
	}

	// Diagonal pairs cannot be told apart from four low-contrast photos, so
	// they are treated as all-four and flagged ambiguous.
	if diagonalOnly(occupied) {
		det.logf("  diagonal quadrant pattern, treating as all four")
		det.warn(WarnAmbiguousLayout)
		occupied = [4]bool{true, true, true, true}
	}

	var regions []Region
	for i, on := range occupied {
		if on {
			regions = append(regions, BoxRegion(quads[i]))
		}
	}
	det.logf("  layout: %s", layoutName(occupied))
	return regions
}

func (q *QuadrantClassifier) hasContent(gray gocv.Mat, quad image.Rectangle) bool {
	if quad.Empty() {
		return false
	}
	sub := gray.Region(quad)
	defer sub.Close()

	if sub.Mean().Val1 < float64(q.BackgroundThreshold)-q.MeanDelta {
		return true
	}

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(sub, &bin, float32(q.BackgroundThreshold), 255, gocv.ThresholdBinaryInv)
	frac := float64(gocv.CountNonZero(bin)) / float64(quad.Dx()*quad.Dy())
	return frac > q.MinInkFraction
}

func diagonalOnly(o [4]bool) bool {
	return (o[0] && o[3] && !o[1] && !o[2]) || (o[1] && o[2] && !o[0] && !o[3])
}

func layoutName(o [4]bool) string {
	count := 0
	for _, on := range o {
		if on {
			count++
		}
	}
	switch count {
	case 0:
		return "empty"
	case 1:
		for i, on := range o {
			if on {
				return "single " + quadrantNames[i]
			}
		}
	case 2:
		switch {
		case o[0] && o[1]:
			return "top pair"
		case o[2] && o[3]:
			return "bottom pair"
		case o[0] && o[2]:
			return "left pair"
		case o[1] && o[3]:
			return "right pair"
		}
	case 3:
		return "three of four"
	}
	return "all four"
}
