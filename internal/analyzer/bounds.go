package analyzer

import (
	"image"

	"gocv.io/x/gocv"
)

// ContentBounds trims residual near-white margins inside rect down to the
// tight content bounding box. The fixed cutoff is OR-combined with an adaptive
// threshold so slightly gray prints are still seen. Returns ok=false when the
// sub-image holds no content pixel at all; rect is then returned unchanged.
func ContentBounds(gray gocv.Mat, rect image.Rectangle, backgroundThreshold int) (image.Rectangle, bool) {
	rect = rect.Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))
	if rect.Empty() {
		return rect, false
	}

	sub := gray.Region(rect)
	defer sub.Close()

	fixed := gocv.NewMat()
	defer fixed.Close()
	gocv.Threshold(sub, &fixed, float32(backgroundThreshold), 255, gocv.ThresholdBinaryInv)

	adaptive := gocv.NewMat()
	defer adaptive.Close()
	gocv.AdaptiveThreshold(sub, &adaptive, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, adaptiveBlock, adaptiveC)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.BitwiseOr(fixed, adaptive, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	top, bottom, left, right := -1, -1, -1, -1
	rows, cols := mask.Rows(), mask.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				continue
			}
			if top < 0 {
				top = y
			}
			bottom = y
			if left < 0 || x < left {
				left = x
			}
			if x > right {
				right = x
			}
		}
	}

	if top < 0 {
		return rect, false
	}
	return image.Rect(rect.Min.X+left, rect.Min.Y+top,
		rect.Min.X+right+1, rect.Min.Y+bottom+1), true
}
