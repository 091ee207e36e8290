package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contour", "":
		return NewContourDetector(), nil
	case "grid":
		return NewGridDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
