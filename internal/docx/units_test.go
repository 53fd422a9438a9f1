package docx

import "testing"

func TestUnitConversions(t *testing.T) {
	if pt, ok := twipsToPoints("240"); !ok || pt != 12 {
		t.Errorf("twipsToPoints(240) = %v, %v", pt, ok)
	}
	if pt, ok := halfPointsToPoints("32"); !ok || pt != 16 {
		t.Errorf("halfPointsToPoints(32) = %v, %v", pt, ok)
	}
	if pt, ok := eighthPointsToPoints("4"); !ok || pt != 0.5 {
		t.Errorf("eighthPointsToPoints(4) = %v, %v", pt, ok)
	}
	if px, ok := EMUToPixels("914400"); !ok || px != 96 {
		t.Errorf("EMUToPixels(914400) = %v, %v", px, ok)
	}
	if _, ok := twipsToPoints(""); ok {
		t.Error("empty twips must not parse")
	}
	if _, ok := halfPointsToPoints("-4"); ok {
		t.Error("negative size must not parse")
	}
	if _, ok := EMUToPixels("junk"); ok {
		t.Error("junk EMU must not parse")
	}
}

func TestFormatPoints(t *testing.T) {
	if got := formatPoints(16); got != "16pt" {
		t.Errorf("formatPoints(16) = %q", got)
	}
	if got := formatPoints(8.5); got != "8.5pt" {
		t.Errorf("formatPoints(8.5) = %q", got)
	}
}
