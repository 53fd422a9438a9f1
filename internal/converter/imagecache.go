package converter

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// imagesSubdir is where cached images land under the cache directory.
const imagesSubdir = "images"

// ImageCache deduplicates and persists referenced images for one
// conversion. Entries are keyed by relationship id: repeated references
// resolve to the same path without re-reading or re-writing the bytes.
// The cache directory belongs to a single conversion at a time.
type ImageCache struct {
	dir     string
	scaler  *ImageScaler
	entries map[string]string // relID -> reference path
	taken   map[string]string // file name -> relID
}

// NewImageCache creates a cache rooted at dir. scaler may be nil, in which
// case image bytes are written unmodified.
func NewImageCache(dir string, scaler *ImageScaler) *ImageCache {
	return &ImageCache{
		dir:     dir,
		scaler:  scaler,
		entries: make(map[string]string),
		taken:   make(map[string]string),
	}
}

// Store writes image bytes under the cache directory and returns a stable
// conversion-local reference path ("images/<name>"). Idempotent per
// relationship id: the first call writes, later calls return the same path.
func (c *ImageCache) Store(relID string, data []byte, suggestedName string) (string, error) {
	if ref, ok := c.entries[relID]; ok {
		return ref, nil
	}

	name := sanitizeImageName(suggestedName)
	name = c.uniqueName(name, relID)

	if c.scaler != nil {
		data = c.scaler.Scale(data)
	}

	destDir := filepath.Join(c.dir, imagesSubdir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating image cache dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(destDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing cached image %s: %w", name, err)
	}

	ref := path.Join(imagesSubdir, name)
	c.entries[relID] = ref
	c.taken[name] = relID
	return ref, nil
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	return len(c.entries)
}

// uniqueName resolves file-name collisions between distinct relationship
// ids with a deterministic numeric suffix.
func (c *ImageCache) uniqueName(name, relID string) string {
	if _, ok := c.taken[name]; !ok {
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if _, ok := c.taken[candidate]; !ok {
			return candidate
		}
	}
}

// sanitizeImageName reduces a suggested file name to a safe base name.
// Directory components are discarded so a crafted package cannot escape
// the cache directory (zip-slip).
func sanitizeImageName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "image"
	}
	return cleaned
}
