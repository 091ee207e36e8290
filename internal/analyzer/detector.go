package analyzer

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Region is a candidate photograph found on a scanned page.
type Region struct {
	Contour  []image.Point    // boundary polygon, nil for box-derived regions
	Box      image.Rectangle  // axis-aligned bounding box
	Oriented gocv.RotatedRect // minimum-area oriented rectangle
	Area     float64          // contour area in pixels²
}

// Warning is a non-fatal condition accumulated during extraction.
type Warning string

const (
	WarnEmptyPage       Warning = "EmptyPage"
	WarnAmbiguousLayout Warning = "AmbiguousLayout"
	WarnRegionMerged    Warning = "RegionMerged"
	WarnRegionDiscarded Warning = "RegionDiscarded"
)

// Detection is the outcome of one detector pass over a page.
type Detection struct {
	Regions  []Region
	Warnings []Warning
	Log      []string
}

func (d *Detection) logf(format string, args ...interface{}) {
	d.Log = append(d.Log, fmt.Sprintf(format, args...))
}

func (d *Detection) warn(w Warning) {
	for _, have := range d.Warnings {
		if have == w {
			return
		}
	}
	d.Warnings = append(d.Warnings, w)
}

// Detector is the interface for page layout detection strategies.
// page is the BGR source, gray its luminance plane; both are read-only.
type Detector interface {
	Detect(page, gray gocv.Mat) (*Detection, error)
}

// BoxRegion builds an axis-aligned Region from a plain rectangle.
func BoxRegion(box image.Rectangle) Region {
	corners := []image.Point{
		{X: box.Min.X, Y: box.Min.Y},
		{X: box.Max.X - 1, Y: box.Min.Y},
		{X: box.Max.X - 1, Y: box.Max.Y - 1},
		{X: box.Min.X, Y: box.Max.Y - 1},
	}
	return Region{
		Box: box,
		Oriented: gocv.RotatedRect{
			Points:       corners,
			BoundingRect: box,
			Center:       image.Pt(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2),
			Width:        box.Dx(),
			Height:       box.Dy(),
			Angle:        0,
		},
		Area: float64(box.Dx() * box.Dy()),
	}
}
