package analyzer

import (
	"image"

	"gocv.io/x/gocv"
)

// mergeOverlapTolerance is the fraction of the smaller box's area beyond which
// two candidates are considered one touching photograph.
const mergeOverlapTolerance = 0.02

// ContourDetector is the primary detection strategy: outer contours of the ink
// mask, filtered by area, absolute size and aspect ratio. When the contour
// pass finds nothing on a visibly non-blank page it falls back to quadrant
// classification.
type ContourDetector struct {
	MinAreaRatio        float64 // fraction of page area, lower bound
	MaxAreaRatio        float64 // fraction of page area, upper bound
	MinDimensionPx      int     // absolute floor for either oriented side
	MaxAspectRatio      float64 // ceiling for long/short oriented side ratio
	BackgroundThreshold int     // luminance above this counts as page white
}

// NewContourDetector creates a contour detector with defaults for 300 DPI A4.
func NewContourDetector() *ContourDetector {
	return &ContourDetector{
		MinAreaRatio:        0.02,
		MaxAreaRatio:        0.90,
		MinDimensionPx:      100,
		MaxAspectRatio:      3.5,
		BackgroundThreshold: 220,
	}
}

func (d *ContourDetector) Detect(page, gray gocv.Mat) (*Detection, error) {
	det := &Detection{}

	mask := InkMask(gray, d.BackgroundThreshold)
	defer mask.Close()

	regions := d.findRegions(mask, det)

	if len(regions) == 0 && HasContent(gray, d.BackgroundThreshold) {
		// Low-contrast content the contours failed to isolate cleanly.
		det.logf("contour pass empty on non-blank page, falling back to quadrant classification")
		q := &QuadrantClassifier{
			BackgroundThreshold: d.BackgroundThreshold,
			MeanDelta:           quadrantMeanDelta,
			MinInkFraction:      quadrantMinInkFraction,
		}
		det.Regions = q.Classify(gray, det)
		if len(det.Regions) == 0 {
			det.warn(WarnEmptyPage)
		}
		return det, nil
	}

	regions = d.mergeOverlapping(regions, float64(gray.Rows()*gray.Cols()), det)
	if len(regions) == 0 {
		det.warn(WarnEmptyPage)
		det.logf("no regions survived filtering, page treated as empty")
	}
	det.Regions = regions
	return det, nil
}

func (d *ContourDetector) findRegions(mask gocv.Mat, det *Detection) []Region {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	pageArea := float64(mask.Rows() * mask.Cols())
	minArea := d.MinAreaRatio * pageArea
	maxArea := d.MaxAreaRatio * pageArea

	det.logf("contour pass: %d outer contours, area window [%.0f, %.0f] px²",
		contours.Size(), minArea, maxArea)

	var regions []Region
	for i := 0; i < contours.Size(); i++ {
		cnt := contours.At(i)
		area := gocv.ContourArea(cnt)
		if area < minArea || area > maxArea {
			if area >= minArea/4 {
				det.logf("  contour %d rejected: area %.0f outside window", i, area)
			}
			continue
		}

		rect := gocv.MinAreaRect(cnt)
		long, short := float64(rect.Width), float64(rect.Height)
		if short > long {
			long, short = short, long
		}
		if short < float64(d.MinDimensionPx) {
			det.logf("  contour %d rejected: oriented side %.0fpx below floor %dpx",
				i, short, d.MinDimensionPx)
			continue
		}
		if short > 0 && long/short > d.MaxAspectRatio {
			det.logf("  contour %d rejected: aspect %.2f over ceiling %.2f (thin strip)",
				i, long/short, d.MaxAspectRatio)
			continue
		}

		regions = append(regions, Region{
			Contour:  cnt.ToPoints(),
			Box:      gocv.BoundingRect(cnt),
			Oriented: rect,
			Area:     area,
		})
		det.logf("  contour %d accepted: area %.0f, box %v, angle %.2f°",
			i, area, gocv.BoundingRect(cnt), rect.Angle)
	}
	return regions
}

// mergeOverlapping collapses candidates whose axis-aligned boxes overlap
// beyond the tolerance into a single union region (touching photos). The
// union is a photo candidate itself and must satisfy the same size filters;
// an oversized or degenerate union discards both constituents.
func (d *ContourDetector) mergeOverlapping(regions []Region, pageArea float64, det *Detection) []Region {
	for {
		merged := false
		for i := 0; i < len(regions) && !merged; i++ {
			for j := i + 1; j < len(regions); j++ {
				inter := regions[i].Box.Intersect(regions[j].Box)
				if inter.Empty() {
					continue
				}
				smaller := regions[i].Box.Dx() * regions[i].Box.Dy()
				if a := regions[j].Box.Dx() * regions[j].Box.Dy(); a < smaller {
					smaller = a
				}
				if float64(inter.Dx()*inter.Dy()) <= mergeOverlapTolerance*float64(smaller) {
					continue
				}

				union := regions[i].Box.Union(regions[j].Box)
				det.warn(WarnRegionMerged)
				if !d.unionWithinLimits(union, pageArea) {
					det.logf("  regions %d and %d overlap, union %v fails size filters, both discarded",
						i, j, union)
					det.warn(WarnRegionDiscarded)
					regions = append(regions[:j], regions[j+1:]...)
					regions = append(regions[:i], regions[i+1:]...)
				} else {
					det.logf("  regions %d and %d overlap, merged into %v", i, j, union)
					regions[i] = BoxRegion(union)
					regions = append(regions[:j], regions[j+1:]...)
				}
				merged = true
				break
			}
		}
		if !merged {
			return regions
		}
	}
}

// unionWithinLimits applies the area ceiling and aspect ceiling to a merged
// box. The area floor is not re-checked: both constituents already passed it.
func (d *ContourDetector) unionWithinLimits(union image.Rectangle, pageArea float64) bool {
	if float64(union.Dx()*union.Dy()) > d.MaxAreaRatio*pageArea {
		return false
	}
	long, short := float64(union.Dx()), float64(union.Dy())
	if short > long {
		long, short = short, long
	}
	return long/short <= d.MaxAspectRatio
}
