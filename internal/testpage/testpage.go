// Package testpage builds deterministic synthetic scans: a white A4 page with
// photo prints placed at known positions, sizes and tilt angles. It backs the
// pipeline tests and the makescan helper; the extraction core never uses it.
package testpage

import (
	"image"
	"image/color"
	"math"

	qrcode "github.com/skip2/go-qrcode"
	"gocv.io/x/gocv"
)

// A4 at 300 DPI.
const (
	A4Width  = 2480
	A4Height = 3508
)

// Photo describes one printed photograph placed on a synthetic page.
type Photo struct {
	Center       image.Point
	Width        int
	Height       int
	AngleDegrees float64    // tilt, same corner convention as detection
	Shade        color.RGBA // paper tone of the print
}

// Gray returns a neutral print shade; 200 is comfortably below the default
// background threshold of 220.
func Gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// NewPage renders a white page of the given size with the photos on it.
// Caller owns the returned Mat.
func NewPage(width, height int, photos []Photo) gocv.Mat {
	white := gocv.NewScalar(255, 255, 255, 0)
	page := gocv.NewMatWithSizeFromScalar(white, height, width, gocv.MatTypeCV8UC3)
	for _, p := range photos {
		drawPhoto(&page, p)
	}
	return page
}

// WritePage renders the page and saves it as PNG.
func WritePage(path string, width, height int, photos []Photo) bool {
	page := NewPage(width, height, photos)
	defer page.Close()
	return gocv.IMWrite(path, page)
}

func drawPhoto(page *gocv.Mat, p Photo) {
	fillQuad(page, corners(p.Center, p.Width, p.Height, p.AngleDegrees), p.Shade)

	// Nested frame lines stand in for photo content so thresholding always
	// sees texture, not just a flat tone.
	frame := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	for i := 1; i <= 3; i++ {
		inset := i * 40
		w, h := p.Width-2*inset, p.Height-2*inset
		if w < 4 || h < 4 {
			break
		}
		pts := corners(p.Center, w, h, p.AngleDegrees)
		for j := 0; j < 4; j++ {
			gocv.Line(page, pts[j], pts[(j+1)%4], frame, 2)
		}
	}

	drawQRBlock(page, p)
}

// drawQRBlock pastes a QR code at the photo center as deterministic
// high-texture content. Axis-aligned on purpose: print content carries no
// orientation guarantee.
func drawQRBlock(page *gocv.Mat, p Photo) {
	size := p.Width / 3
	if p.Height/3 < size {
		size = p.Height / 3
	}
	if size < 40 {
		return
	}

	qr, err := qrcode.New("scansplit test page", qrcode.Medium)
	if err != nil {
		return
	}
	qmat, err := gocv.ImageToMatRGB(qr.Image(size))
	if err != nil {
		return
	}
	defer qmat.Close()

	box := image.Rect(
		p.Center.X-qmat.Cols()/2, p.Center.Y-qmat.Rows()/2,
		p.Center.X-qmat.Cols()/2+qmat.Cols(), p.Center.Y-qmat.Rows()/2+qmat.Rows(),
	).Intersect(image.Rect(0, 0, page.Cols(), page.Rows()))
	if box.Dx() != qmat.Cols() || box.Dy() != qmat.Rows() {
		return
	}

	roi := page.Region(box)
	defer roi.Close()
	qmat.CopyTo(&roi)
}

func fillQuad(page *gocv.Mat, pts [4]image.Point, c color.RGBA) {
	pv := gocv.NewPointVectorFromPoints(pts[:])
	defer pv.Close()
	psv := gocv.NewPointsVector()
	defer psv.Close()
	psv.Append(pv)
	gocv.FillPoly(page, psv, c)
}

// corners computes the rectangle corners for the given tilt, matching the
// rotated-rect parametrization used by minimum-area rectangles.
func corners(c image.Point, width, height int, angleDeg float64) [4]image.Point {
	cos := math.Cos(angleDeg * math.Pi / 180)
	sin := math.Sin(angleDeg * math.Pi / 180)
	hw := float64(width) / 2
	hh := float64(height) / 2
	cx := float64(c.X)
	cy := float64(c.Y)

	return [4]image.Point{
		{X: int(cx + hw*cos - hh*sin), Y: int(cy + hw*sin + hh*cos)},
		{X: int(cx - hw*cos - hh*sin), Y: int(cy - hw*sin + hh*cos)},
		{X: int(cx - hw*cos + hh*sin), Y: int(cy - hw*sin - hh*cos)},
		{X: int(cx + hw*cos + hh*sin), Y: int(cy + hw*sin - hh*cos)},
	}
}
