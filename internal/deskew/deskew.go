// Package deskew re-samples an obliquely placed photograph into an
// axis-aligned crop using the oriented rectangle produced by detection.
package deskew

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// NegligibleAngle is the tilt below which warping is skipped entirely: the
// resampling blur would cost more than the sub-pixel alignment gains.
const NegligibleAngle = 0.3

// Canonical normalizes an oriented rectangle to landscape form: width >=
// height, with the tilt angle folded into (-90°, 90°]. Swapping the sides
// adds 90° to the angle; the corner set is unchanged.
func Canonical(rect gocv.RotatedRect) (center image.Point, width, height int, angle float64) {
	width, height, angle = rect.Width, rect.Height, rect.Angle
	if width < height {
		width, height = height, width
		angle += 90
	}
	for angle > 90 {
		angle -= 180
	}
	for angle <= -90 {
		angle += 180
	}
	return rect.Center, width, height, angle
}

// Extract returns the deskewed, padded crop of the oriented rectangle. The
// whole page is warped about the rectangle's center so the target ends up
// axis-aligned, with white fill for pixels outside the source; the output
// canvas is expanded by the trigonometric bound so nothing clips. The crop is
// always at least 1x1 and clipped to the canvas. Caller owns the Mat.
func Extract(page gocv.Mat, rect gocv.RotatedRect, paddingPx int) gocv.Mat {
	center, width, height, angle := Canonical(rect)

	if math.Abs(angle) < NegligibleAngle {
		box := paddedBox(center, width, height, paddingPx,
			image.Rect(0, 0, page.Cols(), page.Rows()))
		region := page.Region(box)
		defer region.Close()
		return region.Clone()
	}

	m := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer m.Close()

	// Expand the canvas so the rotated page fits, then move the rectangle's
	// center to the canvas center.
	cos := math.Abs(m.GetDoubleAt(0, 0))
	sin := math.Abs(m.GetDoubleAt(0, 1))
	pageW, pageH := float64(page.Cols()), float64(page.Rows())
	newW := int(pageH*sin + pageW*cos)
	newH := int(pageH*cos + pageW*sin)
	m.SetDoubleAt(0, 2, m.GetDoubleAt(0, 2)+float64(newW)/2-float64(center.X))
	m.SetDoubleAt(1, 2, m.GetDoubleAt(1, 2)+float64(newH)/2-float64(center.Y))

	warped := gocv.NewMat()
	defer warped.Close()
	white := color.RGBA{R: 255, G: 255, B: 255}
	gocv.WarpAffineWithParams(page, &warped, m, image.Pt(newW, newH),
		gocv.InterpolationLinear, gocv.BorderConstant, white)

	box := paddedBox(image.Pt(newW/2, newH/2), width, height, paddingPx,
		image.Rect(0, 0, newW, newH))
	region := warped.Region(box)
	defer region.Close()
	return region.Clone()
}

// paddedBox centers a (width+2p)x(height+2p) box on center, clamped to bounds
// and never smaller than 1x1.
func paddedBox(center image.Point, width, height, padding int, bounds image.Rectangle) image.Rectangle {
	halfW := width/2 + padding
	halfH := height/2 + padding
	box := image.Rect(center.X-halfW, center.Y-halfH, center.X+halfW, center.Y+halfH)
	box = box.Intersect(bounds)
	if box.Empty() {
		x := clamp(center.X, bounds.Min.X, bounds.Max.X-1)
		y := clamp(center.Y, bounds.Min.Y, bounds.Max.Y-1)
		box = image.Rect(x, y, x+1, y+1)
	}
	return box
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
