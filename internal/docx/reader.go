// Package docx provides read access to the parts of an OOXML
// word-processing package (a zip container of XML and media parts).
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Well-known part paths inside the package.
const (
	MainDocumentPart  = "word/document.xml"
	StylesPart        = "word/styles.xml"
	NumberingPart     = "word/numbering.xml"
	RelationshipsPart = "word/_rels/document.xml.rels"
	ThemePart         = "word/theme/theme1.xml"
	SettingsPart      = "word/settings.xml"
	mediaPrefix       = "word/media/"
)

var (
	// ErrInvalidPackage indicates the input is not a readable zip container.
	ErrInvalidPackage = errors.New("invalid package: not a readable zip container")
	// ErrMissingMainDocument indicates the package has no main document part.
	ErrMissingMainDocument = errors.New("missing main document part")
)

// Package provides access to the named parts of one opened container.
// A Package is read-only after Open and safe for concurrent part reads.
type Package struct {
	files map[string]*zip.File
}

// OpenFile opens the package at path.
func OpenFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return OpenBytes(data)
}

// OpenBytes opens a package from an in-memory byte buffer.
func OpenBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	p := &Package{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.files[normalizePartPath(f.Name)] = f
	}

	if _, ok := p.files[MainDocumentPart]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingMainDocument, MainDocumentPart)
	}
	return p, nil
}

// Has reports whether the named part exists.
func (p *Package) Has(partPath string) bool {
	_, ok := p.files[normalizePartPath(partPath)]
	return ok
}

// ReadText reads a part as text. A missing part yields ok=false, never an
// error: every part except the main document is optional.
func (p *Package) ReadText(partPath string) (string, bool) {
	data, ok := p.ReadBinary(partPath)
	if !ok {
		return "", false
	}
	return string(data), true
}

// ReadBinary reads the raw bytes of a part. Missing parts yield ok=false.
func (p *Package) ReadBinary(partPath string) ([]byte, bool) {
	f, ok := p.files[normalizePartPath(partPath)]
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// MediaParts returns the paths of all binary parts under the media
// directory, sorted for deterministic iteration.
func (p *Package) MediaParts() []string {
	var parts []string
	for name := range p.files {
		if strings.HasPrefix(name, mediaPrefix) {
			parts = append(parts, name)
		}
	}
	sort.Strings(parts)
	return parts
}

// normalizePartPath normalizes a part path to the form used as the lookup
// key (no leading "/" or "./", forward slashes only).
func normalizePartPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
