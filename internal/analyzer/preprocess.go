package analyzer

import (
	"image"

	"gocv.io/x/gocv"
)

// Ink mask construction: luminance -> edge-preserving blur -> binarization ->
// morphological close/open. The bilateral filter parameters and the adaptive
// threshold block follow the values tuned for 300 DPI flatbed scans.
const (
	bilateralDiameter = 9
	bilateralSigma    = 75
	adaptiveBlock     = 11
	adaptiveC         = 2
)

// InkMask builds a binary foreground mask from the luminance plane. White
// pixels mark non-background content. The mask is always produced, possibly
// all-background; the caller owns it.
func InkMask(gray gocv.Mat, backgroundThreshold int) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.BilateralFilter(gray, &blurred, bilateralDiameter, bilateralSigma, bilateralSigma)

	// Fixed cutoff catches solid photo content, adaptive catches faint prints
	// on slightly gray or unevenly lit backgrounds.
	fixed := gocv.NewMat()
	defer fixed.Close()
	gocv.Threshold(blurred, &fixed, float32(backgroundThreshold), 255, gocv.ThresholdBinaryInv)

	adaptive := gocv.NewMat()
	defer adaptive.Close()
	gocv.AdaptiveThreshold(blurred, &adaptive, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, adaptiveBlock, adaptiveC)

	mask := gocv.NewMat()
	gocv.BitwiseOr(fixed, adaptive, &mask)

	// Close bridges gaps inside photo texture, open removes isolated specks.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, morphKernelSize(gray.Cols()))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	return mask
}

// morphKernelSize scales the structuring element to ~0.7% of the page width.
func morphKernelSize(pageWidth int) image.Point {
	k := pageWidth / 150
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return image.Pt(k, k)
}

// HasContent is the coarse non-blank test used to decide whether a page with
// zero contour hits deserves the quadrant fallback.
func HasContent(gray gocv.Mat, backgroundThreshold int) bool {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, float32(backgroundThreshold), 255, gocv.ThresholdBinaryInv)

	total := gray.Rows() * gray.Cols()
	if total == 0 {
		return false
	}
	return float64(gocv.CountNonZero(bin))/float64(total) > 0.005
}
