package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const minimalDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>hello</w:t></w:r></w:p></w:body>
</w:document>`

// buildPackage assembles an in-memory zip container from part paths.
func buildPackage(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating part %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("writing part %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpenBytes_InvalidContainer(t *testing.T) {
	_, err := OpenBytes([]byte("this is not a zip file"))
	if !errors.Is(err, ErrInvalidPackage) {
		t.Fatalf("expected ErrInvalidPackage, got %v", err)
	}
}

func TestOpenBytes_MissingMainDocument(t *testing.T) {
	data := buildPackage(t, map[string]string{
		"word/styles.xml": "<w:styles/>",
	})
	_, err := OpenBytes(data)
	if !errors.Is(err, ErrMissingMainDocument) {
		t.Fatalf("expected ErrMissingMainDocument, got %v", err)
	}
}

func TestOpenBytes_ReadParts(t *testing.T) {
	data := buildPackage(t, map[string]string{
		MainDocumentPart:     minimalDocumentXML,
		"word/media/a.png":   "pngbytes",
		"word/media/b.jpeg":  "jpegbytes",
		"word/other/ignored": "x",
	})
	pkg, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	if text, ok := pkg.ReadText(MainDocumentPart); !ok || text != minimalDocumentXML {
		t.Errorf("ReadText(main) = %q, %v", text, ok)
	}
	if _, ok := pkg.ReadText(StylesPart); ok {
		t.Error("ReadText on absent part should report ok=false")
	}
	if raw, ok := pkg.ReadBinary("word/media/a.png"); !ok || string(raw) != "pngbytes" {
		t.Errorf("ReadBinary(a.png) = %q, %v", raw, ok)
	}

	media := pkg.MediaParts()
	want := []string{"word/media/a.png", "word/media/b.jpeg"}
	if len(media) != len(want) {
		t.Fatalf("MediaParts = %v, want %v", media, want)
	}
	for i := range want {
		if media[i] != want[i] {
			t.Errorf("MediaParts[%d] = %q, want %q", i, media[i], want[i])
		}
	}
}

func TestOpenFile(t *testing.T) {
	data := buildPackage(t, map[string]string{MainDocumentPart: minimalDocumentXML})
	path := filepath.Join(t.TempDir(), "doc.docx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	pkg, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if !pkg.Has(MainDocumentPart) {
		t.Error("main document part missing after open")
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "nope.docx")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestNormalizePartPath(t *testing.T) {
	cases := map[string]string{
		"/word/document.xml":  "word/document.xml",
		"./word/styles.xml":   "word/styles.xml",
		`word\media\pic.png`:  "word/media/pic.png",
		"word/numbering.xml":  "word/numbering.xml",
	}
	for in, want := range cases {
		if got := normalizePartPath(in); got != want {
			t.Errorf("normalizePartPath(%q) = %q, want %q", in, got, want)
		}
	}
}
