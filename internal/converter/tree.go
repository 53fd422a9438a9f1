// Package converter turns an opened word-processing package into styled
// HTML, a stylesheet and a set of cached image files.
package converter

import (
	"fmt"
	"path"
	"strconv"

	"github.com/yuanying/docx2html/internal/docx"
)

// DocumentTree is the typed node tree built from the main document part.
// The builder owns the tree; the renderer walks it read-only.
type DocumentTree struct {
	Blocks []BlockNode
}

// BlockNode is a block-level node: *ParagraphNode or *TableNode.
type BlockNode interface{ blockNode() }

// InlineNode is an inline-level node: *RunNode, *BreakNode, *ImageNode or
// *HyperlinkNode.
type InlineNode interface{ inlineNode() }

// NumberingRef ties a paragraph to a numbering instance and level.
type NumberingRef struct {
	NumID string
	Level int
}

// ParagraphNode is one paragraph with resolved style properties.
type ParagraphNode struct {
	StyleID   string // named paragraph style, "" when none
	Style     map[string]string
	Numbering *NumberingRef
	Children  []InlineNode
}

// RunNode is a span of text with resolved inline style.
type RunNode struct {
	Text  string
	Style map[string]string
}

// BreakNode is an explicit line break.
type BreakNode struct{}

// ImageNode references an image written to the cache.
type ImageNode struct {
	RelID string
	Path  string // conversion-local reference path ("images/...")
	Alt   string
	Style map[string]string
}

// HyperlinkNode wraps inline content in a link.
type HyperlinkNode struct {
	Target   string
	Children []InlineNode
}

// TableNode, RowNode and CellNode mirror the table grid. Continuation
// cells of vertical merges are dropped during building; the originating
// cell carries the accumulated RowSpan.
type TableNode struct {
	Style map[string]string
	Rows  []RowNode
}

type RowNode struct {
	Header bool
	Cells  []CellNode
}

type CellNode struct {
	Style   map[string]string
	ColSpan int
	RowSpan int
	Children []ParagraphNode
}

func (*ParagraphNode) blockNode() {}
func (*TableNode) blockNode()     {}

func (*RunNode) inlineNode()       {}
func (*BreakNode) inlineNode()     {}
func (*ImageNode) inlineNode()     {}
func (*HyperlinkNode) inlineNode() {}

// TreeBuilder walks the parsed document and produces the node tree,
// resolving style references, numbering, hyperlink targets and images.
// One builder serves one conversion.
type TreeBuilder struct {
	styles    *docx.StyleTable
	numbering *docx.NumberingTable
	rels      *docx.Relationships
	media     *docx.MediaStore
	cache     *ImageCache
	diags     []Diagnostic
}

// NewTreeBuilder wires the part tables a build needs.
func NewTreeBuilder(styles *docx.StyleTable, numbering *docx.NumberingTable, rels *docx.Relationships, media *docx.MediaStore, cache *ImageCache) *TreeBuilder {
	return &TreeBuilder{
		styles:    styles,
		numbering: numbering,
		rels:      rels,
		media:     media,
		cache:     cache,
	}
}

// Diagnostics returns the non-fatal problems recorded while building.
func (b *TreeBuilder) Diagnostics() []Diagnostic {
	return b.diags
}

func (b *TreeBuilder) report(part, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{Part: part, Message: fmt.Sprintf(format, args...)})
}

// Build constructs the tree, preserving the original interleaving of
// paragraphs and tables in the body.
func (b *TreeBuilder) Build(doc *docx.Document) (*DocumentTree, error) {
	tree := &DocumentTree{}
	for _, el := range doc.Body.Elements {
		switch {
		case el.Paragraph != nil:
			tree.Blocks = append(tree.Blocks, b.buildParagraph(el.Paragraph))
		case el.Table != nil:
			tree.Blocks = append(tree.Blocks, b.buildTable(el.Table))
		}
	}
	return tree, nil
}

// styleChainCSS resolves a style id through its basedOn chain, merging
// base-first so derived properties win. The chain walk is cycle-guarded.
func (b *TreeBuilder) styleChainCSS(id string) map[string]string {
	var chain []string
	visited := make(map[string]bool)
	for cur := id; cur != "" && !visited[cur]; cur = b.styles.BasedOn(cur) {
		visited[cur] = true
		chain = append(chain, cur)
	}
	css := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range b.styles.Get(chain[i]) {
			css[k] = v
		}
	}
	return css
}

func (b *TreeBuilder) buildParagraph(p *docx.Paragraph) *ParagraphNode {
	node := &ParagraphNode{Style: make(map[string]string)}

	if p.Props.Style != nil && p.Props.Style.Val != "" {
		node.StyleID = p.Props.Style.Val
		if _, ok := b.styles.Lookup(node.StyleID); !ok {
			b.report(docx.StylesPart, "paragraph style %q not defined, using direct formatting only", node.StyleID)
		}
		for k, v := range b.styleChainCSS(node.StyleID) {
			node.Style[k] = v
		}
	}

	// Direct paragraph properties override style-sourced ones.
	for k, v := range docx.ParagraphPropsCSS(&p.Props) {
		node.Style[k] = v
	}

	if ref := numberingRef(&p.Props); ref != nil {
		node.Numbering = ref
		if _, ok := b.numbering.Level(ref.NumID, ref.Level); !ok {
			b.report(docx.NumberingPart, "numbering id %q level %d not defined, treating as unordered", ref.NumID, ref.Level)
		}
	}

	for _, child := range p.Children {
		switch {
		case child.Run != nil:
			node.Children = append(node.Children, b.buildRun(child.Run)...)
		case child.Hyperlink != nil:
			node.Children = append(node.Children, b.buildHyperlink(child.Hyperlink)...)
		}
	}
	return node
}

func numberingRef(props *docx.ParagraphProps) *NumberingRef {
	if props.NumPr == nil || props.NumPr.NumID == nil {
		return nil
	}
	numID := props.NumPr.NumID.Val
	if numID == "" || numID == "0" {
		return nil
	}
	ref := &NumberingRef{NumID: numID}
	if props.NumPr.ILvl != nil {
		if lvl, err := strconv.Atoi(props.NumPr.ILvl.Val); err == nil && lvl >= 0 {
			ref.Level = lvl
		}
	}
	return ref
}

// buildRun flattens one run into inline nodes: consecutive text and tabs
// share a RunNode, breaks and images split it.
func (b *TreeBuilder) buildRun(r *docx.Run) []InlineNode {
	css := make(map[string]string)
	if r.Props.Style != nil && r.Props.Style.Val != "" {
		for k, v := range b.styleChainCSS(r.Props.Style.Val) {
			css[k] = v
		}
	}
	for k, v := range docx.RunPropsCSS(&r.Props) {
		css[k] = v
	}

	var nodes []InlineNode
	var text string
	flush := func() {
		if text != "" {
			nodes = append(nodes, &RunNode{Text: text, Style: copyCSS(css)})
			text = ""
		}
	}

	for _, item := range r.Items {
		switch item.Kind {
		case docx.RunItemText:
			text += item.Text
		case docx.RunItemTab:
			text += "\t"
		case docx.RunItemBreak:
			flush()
			nodes = append(nodes, &BreakNode{})
		case docx.RunItemDrawing:
			flush()
			if img := b.buildDrawing(item.Drawing); img != nil {
				nodes = append(nodes, img)
			}
		case docx.RunItemPict:
			flush()
			if img := b.buildImage(item.Pict.RelID, "", nil); img != nil {
				nodes = append(nodes, img)
			}
		}
	}
	flush()
	return nodes
}

// buildDrawing handles the inline and anchored drawing variants.
func (b *TreeBuilder) buildDrawing(d *docx.Drawing) *ImageNode {
	obj := d.Object()
	if obj == nil || obj.Blip == nil || obj.Blip.Embed == "" {
		return nil
	}
	var alt string
	if obj.DocPr != nil {
		alt = obj.DocPr.Descr
		if alt == "" {
			alt = obj.DocPr.Name
		}
	}
	return b.buildImage(obj.Blip.Embed, alt, obj.Extent)
}

// buildImage resolves a relationship id to cached image bytes. An
// unresolvable reference yields no node, only a diagnostic: one broken
// image must not fail the conversion.
func (b *TreeBuilder) buildImage(relID, alt string, extent *docx.Extent) *ImageNode {
	if relID == "" {
		return nil
	}
	partPath, ok := b.rels.PartPath(relID)
	if !ok {
		b.report(docx.RelationshipsPart, "image relationship %q has no target, skipping", relID)
		return nil
	}
	data, ok := b.media.Get(partPath)
	if !ok {
		b.report(partPath, "image part missing from package, skipping")
		return nil
	}

	cached, err := b.cache.Store(relID, data, path.Base(partPath))
	if err != nil {
		b.report(partPath, "caching image: %v", err)
		return nil
	}

	node := &ImageNode{RelID: relID, Path: cached, Alt: alt, Style: make(map[string]string)}
	if extent != nil {
		if px, ok := docx.EMUToPixels(extent.CX); ok {
			node.Style["width"] = strconv.Itoa(px) + "px"
		}
		if px, ok := docx.EMUToPixels(extent.CY); ok {
			node.Style["height"] = strconv.Itoa(px) + "px"
		}
	}
	return node
}

func (b *TreeBuilder) buildHyperlink(h *docx.Hyperlink) []InlineNode {
	var children []InlineNode
	for i := range h.Runs {
		children = append(children, b.buildRun(&h.Runs[i])...)
	}

	var target string
	switch {
	case h.Anchor != "":
		target = "#" + h.Anchor
	case h.RelID != "":
		if t, ok := b.rels.Target(h.RelID); ok {
			target = t
		} else {
			b.report(docx.RelationshipsPart, "hyperlink relationship %q has no target, rendering as plain text", h.RelID)
		}
	}
	if target == "" {
		return children
	}
	return []InlineNode{&HyperlinkNode{Target: target, Children: children}}
}

// cellSlot is the intermediate cell record used for rowspan accounting.
type cellSlot struct {
	node         CellNode
	gridCol      int
	continuation bool
}

func (b *TreeBuilder) buildTable(t *docx.Table) *TableNode {
	node := &TableNode{Style: make(map[string]string)}
	if t.Props.Style != nil && t.Props.Style.Val != "" {
		for k, v := range b.styleChainCSS(t.Props.Style.Val) {
			node.Style[k] = v
		}
	}
	tableProps := docx.ParagraphProps{Borders: t.Props.Borders, Shading: t.Props.Shading}
	for k, v := range docx.ParagraphPropsCSS(&tableProps) {
		node.Style[k] = v
	}

	// First pass: build every cell with its grid column position.
	rows := make([][]cellSlot, len(t.Rows))
	for ri := range t.Rows {
		col := 0
		for ci := range t.Rows[ri].Cells {
			cell := &t.Rows[ri].Cells[ci]
			slot := cellSlot{gridCol: col}
			slot.node = b.buildCell(cell)
			slot.continuation = cell.Props.VMerge.Continuation()
			col += slot.node.ColSpan
			rows[ri] = append(rows[ri], slot)
		}
	}

	// Second pass: a continuation cell extends the rowspan of the nearest
	// originating cell above it in the same grid column.
	for ri := range rows {
		for si := range rows[ri] {
			slot := &rows[ri][si]
			if !slot.continuation {
				continue
			}
			for above := ri - 1; above >= 0; above-- {
				origin := slotAtColumn(rows[above], slot.gridCol)
				if origin == nil {
					break
				}
				if !origin.continuation {
					origin.node.RowSpan++
					break
				}
			}
		}
	}

	// Third pass: continuation cells are omitted from output entirely.
	for ri := range rows {
		row := RowNode{Header: t.Rows[ri].Props.Header.Toggled()}
		for si := range rows[ri] {
			if rows[ri][si].continuation {
				continue
			}
			row.Cells = append(row.Cells, rows[ri][si].node)
		}
		node.Rows = append(node.Rows, row)
	}
	return node
}

func slotAtColumn(row []cellSlot, col int) *cellSlot {
	for i := range row {
		start := row[i].gridCol
		end := start + row[i].node.ColSpan
		if col >= start && col < end {
			return &row[i]
		}
	}
	return nil
}

func (b *TreeBuilder) buildCell(c *docx.TableCell) CellNode {
	cell := CellNode{ColSpan: 1, RowSpan: 1, Style: make(map[string]string)}
	if c.Props.GridSpan != nil {
		if span, err := strconv.Atoi(c.Props.GridSpan.Val); err == nil && span > 1 {
			cell.ColSpan = span
		}
	}
	cellProps := docx.ParagraphProps{Borders: c.Props.Borders, Shading: c.Props.Shading}
	for k, v := range docx.ParagraphPropsCSS(&cellProps) {
		cell.Style[k] = v
	}
	if c.Props.VAlign != nil {
		switch c.Props.VAlign.Val {
		case "center":
			cell.Style["vertical-align"] = "middle"
		case "bottom":
			cell.Style["vertical-align"] = "bottom"
		case "top":
			cell.Style["vertical-align"] = "top"
		}
	}
	for pi := range c.Paragraphs {
		cell.Children = append(cell.Children, *b.buildParagraph(&c.Paragraphs[pi]))
	}
	return cell
}

func copyCSS(css map[string]string) map[string]string {
	out := make(map[string]string, len(css))
	for k, v := range css {
		out[k] = v
	}
	return out
}
