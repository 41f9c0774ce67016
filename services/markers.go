package services

import (
	"fmt"
	"math"
	"strings"
)

// LocationMarker is a numbered inspection point on a product image. X and Y
// are percentages of the image width and height so markers survive resizing.
type LocationMarker struct {
	No   int     `json:"No"`
	Name string  `json:"Name"`
	X    float64 `json:"X"`
	Y    float64 `json:"Y"`
}

// PlaceMarker converts a click at (clickX, clickY) on an image rendered at
// width x height into percentage coordinates rounded to two decimals and
// clamped to the image.
func PlaceMarker(clickX, clickY, width, height float64) (float64, float64, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, &ValidationError{Field: "size", Message: "image width and height must be positive"}
	}
	return toPercent(clickX, width), toPercent(clickY, height), nil
}

func toPercent(v, total float64) float64 {
	p := v / total * 100
	p = math.Max(0, math.Min(100, p))
	return math.Round(p*100) / 100
}

// ValidateLocationMarkers checks marker numbering and coordinates.
func ValidateLocationMarkers(markers []LocationMarker) error {
	seen := make(map[int]bool, len(markers))
	for i, m := range markers {
		field := fmt.Sprintf("locations[%d]", i)
		if m.No <= 0 {
			return &ValidationError{Field: field + ".No", Message: "must be a positive number"}
		}
		if seen[m.No] {
			return &ValidationError{Field: field + ".No", Message: fmt.Sprintf("duplicate marker number %d", m.No)}
		}
		seen[m.No] = true
		if strings.TrimSpace(m.Name) == "" {
			return &ValidationError{Field: field + ".Name", Message: "cannot be blank"}
		}
		if m.X < 0 || m.X > 100 || m.Y < 0 || m.Y > 100 {
			return &ValidationError{Field: field, Message: "coordinates must be percentages between 0 and 100"}
		}
	}
	return nil
}
