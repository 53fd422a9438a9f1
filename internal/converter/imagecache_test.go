package converter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImageCache_StoreAndDedup(t *testing.T) {
	dir := t.TempDir()
	c := NewImageCache(dir, nil)

	ref1, err := c.Store("rId1", []byte("imagebytes"), "photo.png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref1 != "images/photo.png" {
		t.Errorf("ref = %q, want images/photo.png", ref1)
	}

	// Repeated references to the same relationship reuse the entry.
	ref2, err := c.Store("rId1", []byte("imagebytes"), "photo.png")
	if err != nil {
		t.Fatalf("second Store: %v", err)
	}
	if ref2 != ref1 {
		t.Errorf("dedup refs differ: %q vs %q", ref1, ref2)
	}
	if c.Len() != 1 {
		t.Errorf("cache len = %d, want 1", c.Len())
	}

	entries, err := os.ReadDir(filepath.Join(dir, "images"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("files on disk = %d, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, "images", "photo.png"))
	if err != nil || string(data) != "imagebytes" {
		t.Errorf("cached bytes = %q, %v", data, err)
	}
}

func TestImageCache_NameCollision(t *testing.T) {
	c := NewImageCache(t.TempDir(), nil)

	ref1, err := c.Store("rId1", []byte("a"), "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	ref2, err := c.Store("rId2", []byte("b"), "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	if ref1 != "images/pic.png" {
		t.Errorf("first ref = %q", ref1)
	}
	if ref2 != "images/pic-2.png" {
		t.Errorf("colliding ref = %q, want images/pic-2.png", ref2)
	}
}

func TestImageCache_ZipSlipNeutralized(t *testing.T) {
	dir := t.TempDir()
	c := NewImageCache(dir, nil)

	ref, err := c.Store("rId1", []byte("x"), "../../../etc/passwd")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref != "images/passwd" {
		t.Errorf("ref = %q, want images/passwd", ref)
	}
	if _, err := os.Stat(filepath.Join(dir, "images", "passwd")); err != nil {
		t.Errorf("sanitized file missing: %v", err)
	}
}

func TestSanitizeImageName(t *testing.T) {
	cases := map[string]string{
		"photo.png":             "photo.png",
		`dir\sub\shot.jpeg`:     "shot.jpeg",
		"weird name!.png":       "weird_name_.png",
		"..":                    "image",
		"":                      "image",
		"...":                   "image",
	}
	for in, want := range cases {
		if got := sanitizeImageName(in); got != want {
			t.Errorf("sanitizeImageName(%q) = %q, want %q", in, got, want)
		}
	}
}
