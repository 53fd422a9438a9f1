package converter

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuanying/docx2html/internal/docx"
)

// Renderer emits HTML from a document tree in a single depth-first pass.
// List nesting is tracked with a stack of open list kinds, one entry per
// level; the browser computes visible counters, so no number formatting
// happens here.
type Renderer struct {
	numbering *docx.NumberingTable
}

// NewRenderer creates a renderer over the document's numbering table.
func NewRenderer(numbering *docx.NumberingTable) *Renderer {
	return &Renderer{numbering: numbering}
}

// Render walks the tree and returns the HTML body content.
func (r *Renderer) Render(tree *DocumentTree) string {
	var sb strings.Builder
	r.renderBlocks(&sb, tree.Blocks)
	return sb.String()
}

func (r *Renderer) renderBlocks(sb *strings.Builder, blocks []BlockNode) {
	var stack []docx.ListKind
	for _, blk := range blocks {
		switch n := blk.(type) {
		case *ParagraphNode:
			r.renderParagraph(sb, &stack, n)
		case *TableNode:
			closeListsTo(sb, &stack, 0)
			r.renderTable(sb, n)
		}
	}
	closeListsTo(sb, &stack, 0)
}

func (r *Renderer) renderParagraph(sb *strings.Builder, stack *[]docx.ListKind, p *ParagraphNode) {
	// Formal numbering always wins over any manual marker in the text.
	if p.Numbering != nil {
		kind := r.numbering.ResolveListType(p.Numbering.NumID, p.Numbering.Level)
		var indent string
		if def, ok := r.numbering.Level(p.Numbering.NumID, p.Numbering.Level); ok {
			indent = def.IndentCSS
		}
		r.renderListItem(sb, stack, p.Numbering.Level, kind, indent, p, p.Children)
		return
	}

	if level := headingLevel(p); level > 0 {
		closeListsTo(sb, stack, 0)
		tag := fmt.Sprintf("h%d", level)
		sb.WriteString("<" + tag + paragraphAttrs(p) + ">")
		r.renderInline(sb, p, p.Children)
		sb.WriteString("</" + tag + ">\n")
		return
	}

	// A paragraph whose text starts with a recognizable bullet or number
	// marker renders as a list item one level deep, marker stripped.
	if kind, markerLen, ok := detectManualMarker(paragraphText(p)); ok {
		children := stripLeadingText(p.Children, markerLen)
		r.renderListItem(sb, stack, 0, kind, "", p, children)
		return
	}

	closeListsTo(sb, stack, 0)
	sb.WriteString("<p" + paragraphAttrs(p) + ">")
	if !r.renderInline(sb, p, p.Children) {
		// An empty paragraph keeps its vertical rhythm.
		sb.WriteString("&nbsp;")
	}
	sb.WriteString("</p>\n")
}

// renderListItem adjusts the open-list stack for (level, kind) and emits
// one list item.
func (r *Renderer) renderListItem(sb *strings.Builder, stack *[]docx.ListKind, level int, kind docx.ListKind, indent string, p *ParagraphNode, children []InlineNode) {
	closeListsTo(sb, stack, level+1)
	if len(*stack) == level+1 && (*stack)[level] != kind {
		closeListsTo(sb, stack, level)
	}
	for len(*stack) < level+1 {
		openList(sb, stack, kind, indent)
	}

	sb.WriteString("<li" + paragraphAttrs(p, "margin-left") + ">")
	if !r.renderInline(sb, p, children) {
		sb.WriteString("&nbsp;")
	}
	sb.WriteString("</li>\n")
}

func openList(sb *strings.Builder, stack *[]docx.ListKind, kind docx.ListKind, indent string) {
	tag := "ul"
	if kind == docx.ListOrdered {
		tag = "ol"
	}
	if indent != "" {
		sb.WriteString(`<` + tag + ` style="margin-left: ` + html.EscapeString(indent) + `">` + "\n")
	} else {
		sb.WriteString("<" + tag + ">\n")
	}
	*stack = append(*stack, kind)
}

// closeListsTo closes open lists until at most depth remain.
func closeListsTo(sb *strings.Builder, stack *[]docx.ListKind, depth int) {
	for len(*stack) > depth {
		kind := (*stack)[len(*stack)-1]
		if kind == docx.ListOrdered {
			sb.WriteString("</ol>\n")
		} else {
			sb.WriteString("</ul>\n")
		}
		*stack = (*stack)[:len(*stack)-1]
	}
}

// renderInline emits the inline children and reports whether anything
// visible was written.
func (r *Renderer) renderInline(sb *strings.Builder, p *ParagraphNode, children []InlineNode) bool {
	wrote := false
	for _, child := range children {
		switch n := child.(type) {
		case *RunNode:
			if n.Text == "" {
				continue
			}
			text := normalizeText(n.Text)
			if attr := styleAttr(n.Style); attr != "" {
				sb.WriteString("<span" + attr + ">" + text + "</span>")
			} else {
				sb.WriteString(text)
			}
			wrote = true
		case *BreakNode:
			sb.WriteString("<br>")
			wrote = true
		case *ImageNode:
			sb.WriteString(`<img src="` + html.EscapeString(n.Path) + `"`)
			if n.Alt != "" {
				sb.WriteString(` alt="` + html.EscapeString(n.Alt) + `"`)
			}
			sb.WriteString(styleAttr(n.Style))
			sb.WriteString(">")
			wrote = true
		case *HyperlinkNode:
			sb.WriteString(`<a href="` + html.EscapeString(n.Target) + `">`)
			r.renderInline(sb, p, n.Children)
			sb.WriteString("</a>")
			wrote = true
		}
	}
	return wrote
}

func (r *Renderer) renderTable(sb *strings.Builder, t *TableNode) {
	sb.WriteString("<table" + styleAttr(t.Style) + ">\n")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		tag := "td"
		if row.Header {
			tag = "th"
		}
		for _, cell := range row.Cells {
			sb.WriteString("<" + tag)
			if cell.ColSpan > 1 {
				sb.WriteString(` colspan="` + strconv.Itoa(cell.ColSpan) + `"`)
			}
			if cell.RowSpan > 1 {
				sb.WriteString(` rowspan="` + strconv.Itoa(cell.RowSpan) + `"`)
			}
			sb.WriteString(styleAttr(cell.Style))
			sb.WriteString(">")
			blocks := make([]BlockNode, 0, len(cell.Children))
			for i := range cell.Children {
				blocks = append(blocks, &cell.Children[i])
			}
			r.renderBlocks(sb, blocks)
			sb.WriteString("</" + tag + ">")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
}

// headingLevel maps bold text at or above the size thresholds to h1-h5.
// List paragraphs never reach this check.
func headingLevel(p *ParagraphNode) int {
	best := 0
	for _, child := range p.Children {
		run, ok := child.(*RunNode)
		if !ok || strings.TrimSpace(run.Text) == "" {
			continue
		}
		if effectiveStyle(run, p, "font-weight") != "bold" {
			continue
		}
		size, ok := parsePoints(effectiveStyle(run, p, "font-size"))
		if !ok {
			continue
		}
		level := 0
		switch {
		case size >= 22:
			level = 1
		case size >= 18:
			level = 2
		case size >= 16:
			level = 3
		case size >= 14:
			level = 4
		case size >= 12:
			level = 5
		}
		if level > 0 && (best == 0 || level < best) {
			best = level
		}
	}
	return best
}

// effectiveStyle reads a property from the run style, falling back to the
// paragraph style.
func effectiveStyle(run *RunNode, p *ParagraphNode, prop string) string {
	if v, ok := run.Style[prop]; ok {
		return v
	}
	return p.Style[prop]
}

func parsePoints(v string) (float64, bool) {
	if !strings.HasSuffix(v, "pt") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// paragraphText concatenates the visible run text of a paragraph.
func paragraphText(p *ParagraphNode) string {
	var sb strings.Builder
	for _, child := range p.Children {
		if run, ok := child.(*RunNode); ok {
			sb.WriteString(run.Text)
		}
	}
	return sb.String()
}

// Manual list markers. Glyph markers open unordered lists; digit, letter,
// roman, circled-digit and CJK-ordinal markers open ordered lists.
var (
	dashMarkerRe    = regexp.MustCompile(`^[-*]\s+`)
	decimalMarkerRe = regexp.MustCompile(`^\(?\d{1,3}[.)]\s+`)
	cjkDecimalRe    = regexp.MustCompile(`^\d{1,3}[、．）]\s*`)
	parenDecimalRe  = regexp.MustCompile(`^[(（]\d{1,3}[)）]\s*`)
	letterMarkerRe  = regexp.MustCompile(`^[a-zA-Z][.)]\s+`)
	romanMarkerRe   = regexp.MustCompile(`^(?:[ivx]{2,4}|[IVX]{2,4})[.)]\s+`)
	cjkOrdinalRe    = regexp.MustCompile(`^[一二三四五六七八九十]{1,3}[、．.]\s*`)
)

// detectManualMarker checks whether text begins with a recognized manual
// bullet or number marker. markerLen is the byte length of the marker
// including trailing whitespace.
func detectManualMarker(text string) (docx.ListKind, int, bool) {
	if text == "" {
		return docx.ListUnordered, 0, false
	}

	// Glyph bullets, including geometric and CJK forms.
	for _, glyph := range []string{"•", "◦", "▪", "▫", "‣", "⁃", "·", "○", "●", "■", "□", "◆", "◇", "►", "▶", "※"} {
		if strings.HasPrefix(text, glyph) {
			n := len(glyph)
			for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
				n++
			}
			return docx.ListUnordered, n, true
		}
	}
	if m := dashMarkerRe.FindString(text); m != "" {
		return docx.ListUnordered, len(m), true
	}

	// Circled digits: U+2460-U+2473 (1-20), U+2474-U+2487, U+2488-U+249B.
	first := []rune(text)[0]
	if first >= 0x2460 && first <= 0x249B {
		n := len(string(first))
		for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
			n++
		}
		return docx.ListOrdered, n, true
	}

	for _, re := range []*regexp.Regexp{romanMarkerRe, decimalMarkerRe, cjkDecimalRe, parenDecimalRe, letterMarkerRe, cjkOrdinalRe} {
		if m := re.FindString(text); m != "" {
			return docx.ListOrdered, len(m), true
		}
	}
	return docx.ListUnordered, 0, false
}

// stripLeadingText removes n bytes of text from the front of the inline
// children, dropping runs it fully consumes.
func stripLeadingText(children []InlineNode, n int) []InlineNode {
	out := make([]InlineNode, 0, len(children))
	for _, child := range children {
		run, ok := child.(*RunNode)
		if !ok || n == 0 {
			out = append(out, child)
			continue
		}
		if n >= len(run.Text) {
			n -= len(run.Text)
			continue
		}
		out = append(out, &RunNode{Text: run.Text[n:], Style: run.Style})
		n = 0
	}
	return out
}

var multiSpaceRe = regexp.MustCompile(`  +`)

// normalizeText escapes text for HTML and normalizes whitespace: runs of
// two or more spaces become non-breaking spaces, tabs become four, and
// newlines become explicit breaks.
func normalizeText(s string) string {
	s = html.EscapeString(s)
	s = multiSpaceRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat("&nbsp;", len(m))
	})
	s = strings.ReplaceAll(s, "\t", "&nbsp;&nbsp;&nbsp;&nbsp;")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}

// styleAttr renders a CSS map as a style attribute with deterministic
// property order. Returns "" for an empty map.
func styleAttr(css map[string]string) string {
	if len(css) == 0 {
		return ""
	}
	keys := make([]string, 0, len(css))
	for k := range css {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	decls := make([]string, 0, len(keys))
	for _, k := range keys {
		decls = append(decls, k+": "+css[k])
	}
	return ` style="` + html.EscapeString(strings.Join(decls, "; ")) + `"`
}

// paragraphAttrs renders the class and style attributes of a paragraph,
// optionally excluding properties handled by the enclosing element.
func paragraphAttrs(p *ParagraphNode, exclude ...string) string {
	css := p.Style
	if len(exclude) > 0 {
		css = copyCSS(p.Style)
		for _, k := range exclude {
			delete(css, k)
		}
	}
	var attrs string
	if p.StyleID != "" {
		attrs += ` class="` + ClassName(p.StyleID) + `"`
	}
	attrs += styleAttr(css)
	return attrs
}
