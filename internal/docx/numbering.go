package docx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ListKind discriminates ordered from unordered lists.
type ListKind int

const (
	ListUnordered ListKind = iota
	ListOrdered
)

// LevelDef is one nesting level of an abstract numbering definition.
type LevelDef struct {
	Start     int
	Format    string // decimal, bullet, lowerLetter, ...
	LevelText string // e.g. "%1." or a bullet glyph
	IndentCSS string // left indent of the level, as a CSS length
}

// NumberingTable maps numbering instances to abstract definitions.
// Immutable after parse.
type NumberingTable struct {
	abstract  map[string]map[int]LevelDef // abstractNumId -> level -> def
	instances map[string]string           // numId -> abstractNumId
}

type numberingXML struct {
	XMLName      xml.Name `xml:"numbering"`
	AbstractNums []struct {
		ID     string `xml:"abstractNumId,attr"`
		Levels []struct {
			ILvl    string   `xml:"ilvl,attr"`
			Start   *ValAttr `xml:"start"`
			NumFmt  *ValAttr `xml:"numFmt"`
			LvlText *ValAttr `xml:"lvlText"`
			PPr     struct {
				Ind *Indent `xml:"ind"`
			} `xml:"pPr"`
		} `xml:"lvl"`
	} `xml:"abstractNum"`
	Nums []struct {
		NumID      string   `xml:"numId,attr"`
		AbstractID *ValAttr `xml:"abstractNumId"`
	} `xml:"num"`
}

// EmptyNumberingTable returns a table with no definitions, used when the
// numbering part is absent or malformed.
func EmptyNumberingTable() *NumberingTable {
	return &NumberingTable{
		abstract:  make(map[string]map[int]LevelDef),
		instances: make(map[string]string),
	}
}

// ParseNumbering builds the numbering table from the numbering part XML.
func ParseNumbering(data []byte) (*NumberingTable, error) {
	var raw numberingXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", NumberingPart, err)
	}

	nt := EmptyNumberingTable()
	for _, an := range raw.AbstractNums {
		levels := make(map[int]LevelDef, len(an.Levels))
		for _, lvl := range an.Levels {
			idx, err := strconv.Atoi(lvl.ILvl)
			if err != nil || idx < 0 {
				continue
			}
			def := LevelDef{Start: 1}
			if lvl.Start != nil {
				if s, err := strconv.Atoi(lvl.Start.Val); err == nil && s >= 0 {
					def.Start = s
				}
			}
			if lvl.NumFmt != nil {
				def.Format = lvl.NumFmt.Val
			}
			if lvl.LvlText != nil {
				def.LevelText = lvl.LvlText.Val
			}
			if lvl.PPr.Ind != nil {
				if pt, ok := twipsToPoints(lvl.PPr.Ind.Left); ok {
					def.IndentCSS = formatPoints(pt)
				}
			}
			levels[idx] = def
		}
		nt.abstract[an.ID] = levels
	}
	for _, num := range raw.Nums {
		if num.AbstractID != nil {
			nt.instances[num.NumID] = num.AbstractID.Val
		}
	}
	return nt, nil
}

// Level returns the level definition for a numbering instance, walking the
// numId -> abstractNumId indirection.
func (nt *NumberingTable) Level(numID string, level int) (LevelDef, bool) {
	abstractID, ok := nt.instances[numID]
	if !ok {
		return LevelDef{}, false
	}
	levels, ok := nt.abstract[abstractID]
	if !ok {
		return LevelDef{}, false
	}
	def, ok := levels[level]
	return def, ok
}

// ResolveListType reports whether the given numbering reference is an
// ordered or unordered list. A missing numId or abstract definition
// defaults to unordered: an absent numbering part must not fail a whole
// conversion over one list.
func (nt *NumberingTable) ResolveListType(numID string, level int) ListKind {
	def, ok := nt.Level(numID, level)
	if !ok {
		return ListUnordered
	}
	switch def.Format {
	case "bullet", "disc", "circle", "square":
		return ListUnordered
	case "":
		if isBulletGlyph(def.LevelText) {
			return ListUnordered
		}
		return ListOrdered
	}
	// A counter placeholder in the level text marks an ordered list even
	// for exotic formats.
	if strings.Contains(def.LevelText, "%") {
		return ListOrdered
	}
	if isBulletGlyph(def.LevelText) {
		return ListUnordered
	}
	return ListOrdered
}

// bulletGlyphs are level-text characters that mark an unordered list,
// covering the common Latin, geometric and CJK bullet forms.
var bulletGlyphs = map[rune]bool{
	'•': true, '◦': true, '▪': true, '▫': true, '‣': true, '⁃': true,
	'·': true, '*': true, '-': true, '–': true, '—': true,
	'○': true, '●': true, '■': true, '□': true, '►': true, '▶': true,
	'◆': true, '◇': true, '★': true, '☆': true, '※': true, '〇': true,
}

// isBulletGlyph reports whether s is a known bullet glyph. Symbol-font
// characters mapped into the Private Use Area (Wingdings and friends)
// always render as bullets.
func isBulletGlyph(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r >= 0xE000 && r <= 0xF8FF {
			return true
		}
		if !bulletGlyphs[r] {
			return false
		}
	}
	return true
}
