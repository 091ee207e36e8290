package analyzer

import (
	"image"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ivlev/scansplit/internal/testpage"
)

// grayOf converts a synthetic page to its luminance plane. Caller closes both.
func grayOf(page gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(page, &gray, gocv.ColorBGRToGray)
	return gray
}

func TestContourDetectorSinglePhoto(t *testing.T) {
	photos := []testpage.Photo{{
		Center: image.Pt(testpage.A4Width/2, testpage.A4Height/2),
		Width:  800, Height: 600, Shade: testpage.Gray(200),
	}}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d\nlog: %v", len(det.Regions), det.Log)
	}

	box := det.Regions[0].Box
	if diff(box.Dx(), 800) > 10 || diff(box.Dy(), 600) > 10 {
		t.Errorf("region box %v, want ~800x600", box)
	}
	if len(det.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", det.Warnings)
	}
}

func TestContourDetectorBlankPage(t *testing.T) {
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, nil)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 0 {
		t.Fatalf("expected 0 regions on blank page, got %d", len(det.Regions))
	}
	if !hasWarning(det, WarnEmptyPage) {
		t.Errorf("expected EmptyPage warning, got %v", det.Warnings)
	}
}

func TestContourDetectorQuadLayout(t *testing.T) {
	// Four 600x400 photos in a 2x2 arrangement with 100px gutters.
	x0 := (testpage.A4Width - 1300) / 2
	y0 := (testpage.A4Height - 900) / 2
	var photos []testpage.Photo
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			photos = append(photos, testpage.Photo{
				Center: image.Pt(x0+300+col*700, y0+200+row*500),
				Width:  600, Height: 400, Shade: testpage.Gray(200),
			})
		}
	}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 4 {
		t.Fatalf("expected 4 regions, got %d\nlog: %v", len(det.Regions), det.Log)
	}
	if hasWarning(det, WarnRegionMerged) {
		t.Errorf("gutters should keep photos separate, warnings: %v", det.Warnings)
	}
}

func TestContourDetectorMergesOverlappingBoxes(t *testing.T) {
	// Two parallel tilted photos: masks stay apart, axis-aligned boxes
	// overlap well beyond the tolerance (touching-photo policy).
	photos := []testpage.Photo{
		{Center: image.Pt(900, 1200), Width: 800, Height: 600, AngleDegrees: 12, Shade: testpage.Gray(200)},
		{Center: image.Pt(1760, 1200), Width: 800, Height: 600, AngleDegrees: 12, Shade: testpage.Gray(195)},
	}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 1 {
		t.Fatalf("expected 1 merged region, got %d\nlog: %v", len(det.Regions), det.Log)
	}
	if !hasWarning(det, WarnRegionMerged) {
		t.Errorf("expected RegionMerged warning, got %v", det.Warnings)
	}
}

func TestContourDetectorRejectsThinStrip(t *testing.T) {
	// A 20x400 scratch mark near the threshold brightness must never
	// survive: aspect ratio 20 is far over the ceiling.
	photos := []testpage.Photo{{
		Center: image.Pt(1200, 1700), Width: 20, Height: 400, Shade: testpage.Gray(215),
	}}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 0 {
		t.Fatalf("thin strip detected as photo: %v", det.Regions)
	}
}

func TestContourDetectorQuadrantFallback(t *testing.T) {
	// Four 200x200 blobs: each is rejected by the area filter, but the page
	// is clearly non-blank, so the quadrant classifier takes over.
	var photos []testpage.Photo
	for _, c := range []image.Point{{600, 600}, {900, 600}, {600, 900}, {900, 900}} {
		photos = append(photos, testpage.Photo{
			Center: c, Width: 200, Height: 200, Shade: testpage.Gray(150),
		})
	}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 4 {
		t.Fatalf("expected 4 quadrant regions from fallback, got %d\nlog: %v",
			len(det.Regions), det.Log)
	}
	if !containsLine(det.Log, "falling back") {
		t.Errorf("expected fallback diagnostics, got %v", det.Log)
	}
	if hasWarning(det, WarnEmptyPage) {
		t.Errorf("page is non-blank, warnings: %v", det.Warnings)
	}
}

func TestContourDetectorDiagonalQuadrants(t *testing.T) {
	// Low-contrast prints in two diagonal quadrants only: each blob falls
	// under the contour area floor, and a diagonal occupancy pattern cannot
	// be told apart from four faint photos, so the classifier keeps all
	// four quadrants and flags the layout.
	photos := []testpage.Photo{
		{Center: image.Pt(650, 650), Width: 300, Height: 300, Shade: testpage.Gray(150)},
		{Center: image.Pt(1350, 1350), Width: 300, Height: 300, Shade: testpage.Gray(150)},
	}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 4 {
		t.Fatalf("expected 4 regions for diagonal pattern, got %d\nlog: %v",
			len(det.Regions), det.Log)
	}
	if !hasWarning(det, WarnAmbiguousLayout) {
		t.Errorf("expected AmbiguousLayout warning, got %v", det.Warnings)
	}
	if !containsLine(det.Log, "diagonal quadrant pattern") {
		t.Errorf("expected diagonal diagnostics, got %v", det.Log)
	}
}

func TestContourDetectorTopPairQuadrants(t *testing.T) {
	// Two sub-floor prints side by side in the upper half, plus a faint
	// mark stretching the content box downward: the classifier must report
	// the top pair and nothing else.
	photos := []testpage.Photo{
		{Center: image.Pt(650, 650), Width: 300, Height: 300, Shade: testpage.Gray(150)},
		{Center: image.Pt(1350, 650), Width: 300, Height: 300, Shade: testpage.Gray(150)},
		{Center: image.Pt(1000, 1600), Width: 40, Height: 40, Shade: testpage.Gray(210)},
	}
	page := testpage.NewPage(testpage.A4Width, testpage.A4Height, photos)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewContourDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 2 {
		t.Fatalf("expected 2 regions for top pair, got %d\nlog: %v",
			len(det.Regions), det.Log)
	}
	if hasWarning(det, WarnAmbiguousLayout) {
		t.Errorf("top pair is unambiguous, warnings: %v", det.Warnings)
	}
	if !containsLine(det.Log, "top pair") {
		t.Errorf("expected top pair diagnostics, got %v", det.Log)
	}
	for i, r := range det.Regions {
		if cy := r.Box.Min.Y + r.Box.Dy()/2; cy > testpage.A4Height/2 {
			t.Errorf("region %d centered at y=%d, want upper half", i, cy)
		}
	}
}

func TestMergeDiscardsOversizedUnion(t *testing.T) {
	// Two individually legal candidates whose union would swallow nearly
	// the whole page: the merge product fails the area ceiling and both
	// are dropped rather than emitted as one page-sized "photo".
	d := NewContourDetector()
	pageArea := float64(testpage.A4Width * testpage.A4Height)
	regions := []Region{
		BoxRegion(image.Rect(0, 0, 2000, 3300)),
		BoxRegion(image.Rect(400, 200, testpage.A4Width, testpage.A4Height)),
	}

	det := &Detection{}
	out := d.mergeOverlapping(regions, pageArea, det)
	if len(out) != 0 {
		t.Fatalf("expected oversized union to be discarded, got %d regions", len(out))
	}
	if !hasWarning(det, WarnRegionMerged) || !hasWarning(det, WarnRegionDiscarded) {
		t.Errorf("expected RegionMerged and RegionDiscarded, got %v", det.Warnings)
	}
}

func TestGridDetector(t *testing.T) {
	page := testpage.NewPage(1000, 800, nil)
	defer page.Close()
	gray := grayOf(page)
	defer gray.Close()

	det, err := NewGridDetector().Detect(page, gray)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Regions) != 4 {
		t.Fatalf("expected 4 quadrants, got %d", len(det.Regions))
	}
	union := det.Regions[0].Box
	for _, r := range det.Regions[1:] {
		union = union.Union(r.Box)
	}
	if union != image.Rect(0, 0, 1000, 800) {
		t.Errorf("quadrants do not tile the page: %v", union)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contour", false},
		{"", false}, // default
		{"grid", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func hasWarning(det *Detection, w Warning) bool {
	for _, have := range det.Warnings {
		if have == w {
			return true
		}
	}
	return false
}

func containsLine(log []string, substr string) bool {
	for _, line := range log {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
