package docx

import (
	"fmt"
	"strconv"
	"strings"
)

// OOXML measurement conversions. Twips are 1/20 pt (spacing, indents),
// font sizes come in half-points, border widths in eighths of a point,
// and drawing extents in EMU (914400 per inch, 9525 per pixel).

const emuPerPixel = 9525

// twipsToPoints converts a twip attribute value to points.
// Returns ok=false for empty or non-numeric input.
func twipsToPoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v / 20, true
}

// halfPointsToPoints converts a half-point font size to points.
func halfPointsToPoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v / 2, true
}

// eighthPointsToPoints converts a border width in eighths of a point.
func eighthPointsToPoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v / 8, true
}

// EMUToPixels converts a drawing extent in EMU to CSS pixels.
func EMUToPixels(s string) (int, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int(v / emuPerPixel), true
}

// formatPoints renders a point value as a CSS length, trimming
// insignificant decimals ("16pt", "8.5pt").
func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%dpt", int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}
