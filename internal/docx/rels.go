package docx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// Relationships maps relationship ids used in document content to their
// targets (image parts, hyperlink URLs). Immutable after parse.
type Relationships struct {
	targets  map[string]string
	external map[string]bool
}

type relationshipsXML struct {
	XMLName       xml.Name `xml:"Relationships"`
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// EmptyRelationships returns an empty map, used when the relationships
// part is absent or malformed.
func EmptyRelationships() *Relationships {
	return &Relationships{
		targets:  make(map[string]string),
		external: make(map[string]bool),
	}
}

// ParseRelationships builds the relationship map from the per-document
// relationships part.
func ParseRelationships(data []byte) (*Relationships, error) {
	var raw relationshipsXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", RelationshipsPart, err)
	}
	r := EmptyRelationships()
	for _, rel := range raw.Relationships {
		if rel.ID == "" {
			continue
		}
		r.targets[rel.ID] = rel.Target
		if rel.TargetMode == "External" {
			r.external[rel.ID] = true
		}
	}
	return r, nil
}

// Target returns the raw relationship target for an id.
func (r *Relationships) Target(id string) (string, bool) {
	t, ok := r.targets[id]
	return t, ok
}

// External reports whether the relationship points outside the package
// (hyperlink URLs rather than parts).
func (r *Relationships) External(id string) bool {
	return r.external[id]
}

// PartPath resolves an internal relationship target to a package part
// path. Targets are relative to the word/ directory unless rooted.
func (r *Relationships) PartPath(id string) (string, bool) {
	t, ok := r.targets[id]
	if !ok || r.external[id] {
		return "", false
	}
	if strings.HasPrefix(t, "/") {
		return normalizePartPath(t), true
	}
	return normalizePartPath(path.Join("word", t)), true
}

// MediaStore holds the bytes of every part under the media directory,
// keyed by package path. Built once per conversion, read-only thereafter.
type MediaStore struct {
	parts map[string][]byte
}

// LoadMedia reads all media parts from the package. A package without a
// media directory yields an empty store.
func LoadMedia(p *Package) *MediaStore {
	m := &MediaStore{parts: make(map[string][]byte)}
	for _, name := range p.MediaParts() {
		if data, ok := p.ReadBinary(name); ok {
			m.parts[name] = data
		}
	}
	return m
}

// Get returns the bytes of a media part by package path.
func (m *MediaStore) Get(partPath string) ([]byte, bool) {
	data, ok := m.parts[normalizePartPath(partPath)]
	return data, ok
}

// Parts returns the loaded media as a path->bytes map. The returned map is
// shared; callers must not mutate the byte slices.
func (m *MediaStore) Parts() map[string][]byte {
	return m.parts
}

// Len reports the number of loaded media parts.
func (m *MediaStore) Len() int {
	return len(m.parts)
}
