package docx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// StyleKind classifies a style definition.
type StyleKind int

const (
	StyleParagraph StyleKind = iota
	StyleCharacter
	StyleTableKind
	StyleNumbering
	StyleDefault
)

func styleKindOf(t string) StyleKind {
	switch t {
	case "paragraph":
		return StyleParagraph
	case "character":
		return StyleCharacter
	case "table":
		return StyleTableKind
	case "numbering":
		return StyleNumbering
	default:
		return StyleDefault
	}
}

// StyleDefinition is one resolved style record. CSS holds only recognized,
// validated property/value pairs. Immutable after parse.
type StyleDefinition struct {
	ID      string
	Kind    StyleKind
	Name    string
	BasedOn string
	CSS     map[string]string
}

// StyleTable holds all style definitions of one document plus the
// document-wide defaults. basedOn chains are recorded, not flattened:
// callers needing the full cascade walk BasedOn themselves.
type StyleTable struct {
	styles   map[string]*StyleDefinition
	order    []string
	defaults map[string]string
}

type stylesXML struct {
	XMLName     xml.Name `xml:"styles"`
	DocDefaults struct {
		RPrDefault struct {
			RPr RunProps `xml:"rPr"`
		} `xml:"rPrDefault"`
		PPrDefault struct {
			PPr ParagraphProps `xml:"pPr"`
		} `xml:"pPrDefault"`
	} `xml:"docDefaults"`
	Styles []styleXML `xml:"style"`
}

type styleXML struct {
	Type    string         `xml:"type,attr"`
	StyleID string         `xml:"styleId,attr"`
	Name    *ValAttr       `xml:"name"`
	BasedOn *ValAttr       `xml:"basedOn"`
	PPr     ParagraphProps `xml:"pPr"`
	RPr     RunProps       `xml:"rPr"`
}

// EmptyStyleTable returns a table with no styles and no defaults, used when
// the styles part is absent or malformed.
func EmptyStyleTable() *StyleTable {
	return &StyleTable{
		styles:   make(map[string]*StyleDefinition),
		defaults: make(map[string]string),
	}
}

// ParseStyles builds the style table from the styles part XML.
func ParseStyles(data []byte) (*StyleTable, error) {
	var raw stylesXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", StylesPart, err)
	}

	st := EmptyStyleTable()

	mergeCSS(st.defaults, RunPropsCSS(&raw.DocDefaults.RPrDefault.RPr))
	mergeCSS(st.defaults, ParagraphPropsCSS(&raw.DocDefaults.PPrDefault.PPr))

	for _, s := range raw.Styles {
		if s.StyleID == "" {
			continue
		}
		def := &StyleDefinition{
			ID:   s.StyleID,
			Kind: styleKindOf(s.Type),
			CSS:  make(map[string]string),
		}
		if s.Name != nil {
			def.Name = s.Name.Val
		}
		if s.BasedOn != nil {
			def.BasedOn = s.BasedOn.Val
		}
		mergeCSS(def.CSS, ParagraphPropsCSS(&s.PPr))
		mergeCSS(def.CSS, RunPropsCSS(&s.RPr))

		if _, dup := st.styles[s.StyleID]; !dup {
			st.order = append(st.order, s.StyleID)
		}
		st.styles[s.StyleID] = def
	}
	return st, nil
}

// Get returns a copy of the CSS map for a style id. A miss returns an empty
// map, never an error: callers merge in declaration order so that directly
// specified properties win.
func (st *StyleTable) Get(id string) map[string]string {
	css := make(map[string]string)
	if def, ok := st.styles[id]; ok {
		mergeCSS(css, def.CSS)
	}
	return css
}

// Lookup returns the full definition for a style id.
func (st *StyleTable) Lookup(id string) (*StyleDefinition, bool) {
	def, ok := st.styles[id]
	return def, ok
}

// BasedOn returns the parent style id, or "" when there is none.
func (st *StyleTable) BasedOn(id string) string {
	if def, ok := st.styles[id]; ok {
		return def.BasedOn
	}
	return ""
}

// Defaults returns a copy of the document-wide default properties.
func (st *StyleTable) Defaults() map[string]string {
	css := make(map[string]string, len(st.defaults))
	mergeCSS(css, st.defaults)
	return css
}

// EnsureDefaultFont installs a fallback font-family default (from the theme
// part) when the styles part did not set one.
func (st *StyleTable) EnsureDefaultFont(name string) {
	if name == "" {
		return
	}
	if _, ok := st.defaults["font-family"]; !ok {
		st.defaults["font-family"] = quoteFontName(name)
	}
}

// Definitions returns all style definitions in declaration order.
func (st *StyleTable) Definitions() []*StyleDefinition {
	defs := make([]*StyleDefinition, 0, len(st.order))
	for _, id := range st.order {
		defs = append(defs, st.styles[id])
	}
	return defs
}

func mergeCSS(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

// ParagraphPropsCSS translates paragraph properties into CSS declarations.
// Unknown or unparseable values are dropped rather than emitted raw.
func ParagraphPropsCSS(p *ParagraphProps) map[string]string {
	css := make(map[string]string)
	if p == nil {
		return css
	}

	if p.Jc != nil {
		switch p.Jc.Val {
		case "left", "start":
			css["text-align"] = "left"
		case "right", "end":
			css["text-align"] = "right"
		case "center":
			css["text-align"] = "center"
		case "both", "distribute":
			css["text-align"] = "justify"
		}
	}

	if p.Spacing != nil {
		if pt, ok := twipsToPoints(p.Spacing.Before); ok {
			css["margin-top"] = formatPoints(pt)
		}
		if pt, ok := twipsToPoints(p.Spacing.After); ok {
			css["margin-bottom"] = formatPoints(pt)
		}
		if p.Spacing.Line != "" {
			if v, err := strconv.ParseFloat(p.Spacing.Line, 64); err == nil && v > 0 {
				switch p.Spacing.LineRule {
				case "", "auto":
					// Line value is in 240ths of a single line.
					css["line-height"] = trimFloat(v / 240)
				case "exact", "atLeast":
					css["line-height"] = formatPoints(v / 20)
				}
			}
		}
	}

	if p.Ind != nil {
		if pt, ok := twipsToPoints(p.Ind.Left); ok {
			css["margin-left"] = formatPoints(pt)
		}
		if pt, ok := twipsToPoints(p.Ind.Right); ok {
			css["margin-right"] = formatPoints(pt)
		}
		if pt, ok := twipsToPoints(p.Ind.FirstLine); ok {
			css["text-indent"] = formatPoints(pt)
		}
		if pt, ok := twipsToPoints(p.Ind.Hanging); ok {
			css["text-indent"] = formatPoints(-pt)
		}
	}

	if p.Borders != nil {
		borderCSS(css, p.Borders)
	}

	if p.Shading != nil {
		if c, ok := hexColor(p.Shading.Fill); ok {
			css["background-color"] = c
		}
	}

	return css
}

// RunPropsCSS translates run properties into CSS declarations. Toggle
// properties follow the OOXML default: present without a value means on.
func RunPropsCSS(r *RunProps) map[string]string {
	css := make(map[string]string)
	if r == nil {
		return css
	}

	if r.Fonts != nil {
		if fam := fontFamily(r.Fonts); fam != "" {
			css["font-family"] = fam
		}
	}
	if r.Size != nil {
		if pt, ok := halfPointsToPoints(r.Size.Val); ok {
			css["font-size"] = formatPoints(pt)
		}
	}
	if r.Bold != nil {
		if r.Bold.Toggled() {
			css["font-weight"] = "bold"
		} else {
			css["font-weight"] = "normal"
		}
	}
	if r.Italic != nil {
		if r.Italic.Toggled() {
			css["font-style"] = "italic"
		} else {
			css["font-style"] = "normal"
		}
	}
	if r.Underline != nil && r.Underline.Val != "" && r.Underline.Val != "none" {
		css["text-decoration"] = "underline"
		switch r.Underline.Val {
		case "double":
			css["text-decoration-style"] = "double"
		case "dotted", "dottedHeavy":
			css["text-decoration-style"] = "dotted"
		case "dash", "dashLong", "dashedHeavy":
			css["text-decoration-style"] = "dashed"
		case "wave", "wavyDouble", "wavyHeavy":
			css["text-decoration-style"] = "wavy"
		}
	}
	if r.Strike != nil && r.Strike.Toggled() {
		if css["text-decoration"] == "underline" {
			css["text-decoration"] = "underline line-through"
		} else {
			css["text-decoration"] = "line-through"
		}
	}
	if r.Caps != nil && r.Caps.Toggled() {
		css["text-transform"] = "uppercase"
	}
	if r.SmallCaps != nil && r.SmallCaps.Toggled() {
		css["font-variant"] = "small-caps"
	}
	if r.Color != nil {
		if c, ok := hexColor(r.Color.Val); ok {
			css["color"] = c
		}
	}
	if r.Highlight != nil && r.Highlight.Val != "" && r.Highlight.Val != "none" {
		css["background-color"] = r.Highlight.Val
	}
	if r.Shading != nil {
		if c, ok := hexColor(r.Shading.Fill); ok {
			css["background-color"] = c
		}
	}
	if r.VertAlign != nil {
		switch r.VertAlign.Val {
		case "superscript":
			css["vertical-align"] = "super"
			css["font-size"] = "smaller"
		case "subscript":
			css["vertical-align"] = "sub"
			css["font-size"] = "smaller"
		}
	}

	return css
}

// borderCSS emits border-* declarations for the set edges.
func borderCSS(css map[string]string, edges *EdgeSet) {
	for side, b := range map[string]*Border{
		"top": edges.Top, "bottom": edges.Bottom, "left": edges.Left, "right": edges.Right,
	} {
		if b == nil || b.Val == "" || b.Val == "none" || b.Val == "nil" {
			continue
		}
		width := 0.5
		if pt, ok := eighthPointsToPoints(b.Sz); ok && pt > 0 {
			width = pt
		}
		style := "solid"
		switch b.Val {
		case "double":
			style = "double"
		case "dotted":
			style = "dotted"
		case "dashed", "dashSmallGap":
			style = "dashed"
		}
		color := "#000000"
		if c, ok := hexColor(b.Color); ok {
			color = c
		}
		css["border-"+side] = fmt.Sprintf("%s %s %s", formatPoints(width), style, color)
	}
}

// fontFamily builds a font-family list from rFonts, with the East-Asian
// face as fallback when it differs from the primary face.
func fontFamily(f *Fonts) string {
	primary := f.ASCII
	if primary == "" {
		primary = f.HAnsi
	}
	if primary == "" {
		primary = f.EastAsia
	}
	if primary == "" {
		return ""
	}
	family := quoteFontName(primary)
	if f.EastAsia != "" && f.EastAsia != primary {
		family += ", " + quoteFontName(f.EastAsia)
	}
	return family
}

func quoteFontName(name string) string {
	if strings.ContainsAny(name, " \t") {
		return `"` + name + `"`
	}
	return name
}

// hexColor validates a 6-digit hex color value. "auto" and malformed
// values are rejected.
func hexColor(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if len(v) != 6 {
		return "", false
	}
	for _, c := range v {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return "#" + strings.ToUpper(v), true
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
