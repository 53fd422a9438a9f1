package docx

import (
	"encoding/xml"
	"fmt"
)

// Models for word/document.xml. Body content, paragraph children and run
// items are decoded through custom UnmarshalXML so that original document
// order survives: encoding/xml struct tags alone would group all "p"
// elements apart from all "tbl" elements.

// Document is the root of the main document part.
type Document struct {
	XMLName xml.Name `xml:"document"`
	Body    Body     `xml:"body"`
}

// ParseDocument parses the main document part.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MainDocumentPart, err)
	}
	return &doc, nil
}

// Body holds the block-level elements of the document in original order.
type Body struct {
	Elements []BodyElement
}

// BodyElement is one block-level element: exactly one field is non-nil.
type BodyElement struct {
	Paragraph *Paragraph
	Table     *Table
}

// UnmarshalXML decodes body children one element at a time, preserving the
// interleaving of paragraphs and tables.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p Paragraph
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, BodyElement{Paragraph: &p})
			case "tbl":
				var tbl Table
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, BodyElement{Table: &tbl})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Paragraph is a <w:p> element.
type Paragraph struct {
	Props    ParagraphProps
	Children []ParagraphChild
}

// ParagraphChild is one inline-level child: exactly one field is non-nil.
type ParagraphChild struct {
	Run       *Run
	Hyperlink *Hyperlink
}

// UnmarshalXML keeps runs and hyperlinks in document order.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Props, &t); err != nil {
					return err
				}
			case "r":
				var r Run
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, ParagraphChild{Run: &r})
			case "hyperlink":
				var h Hyperlink
				if err := d.DecodeElement(&h, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, ParagraphChild{Hyperlink: &h})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// ParagraphProps is <w:pPr>.
type ParagraphProps struct {
	Style   *ValAttr   `xml:"pStyle"`
	NumPr   *NumProps  `xml:"numPr"`
	Jc      *ValAttr   `xml:"jc"`
	Spacing *Spacing   `xml:"spacing"`
	Ind     *Indent    `xml:"ind"`
	Borders *EdgeSet   `xml:"pBdr"`
	Shading *Shading   `xml:"shd"`
	RunDefs *RunProps  `xml:"rPr"`
	Outline *ValAttr   `xml:"outlineLvl"`
}

// NumProps is <w:numPr>, the numbering reference of a list paragraph.
type NumProps struct {
	ILvl  *ValAttr `xml:"ilvl"`
	NumID *ValAttr `xml:"numId"`
}

// ValAttr is the ubiquitous single-attribute element <w:x w:val="..."/>.
type ValAttr struct {
	Val string `xml:"val,attr"`
}

// Spacing is <w:spacing>: before/after/line in twips.
type Spacing struct {
	Before   string `xml:"before,attr"`
	After    string `xml:"after,attr"`
	Line     string `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"`
}

// Indent is <w:ind>.
type Indent struct {
	Left      string `xml:"left,attr"`
	Right     string `xml:"right,attr"`
	FirstLine string `xml:"firstLine,attr"`
	Hanging   string `xml:"hanging,attr"`
}

// EdgeSet groups the four border edges of <w:pBdr> or <w:tcBorders>.
type EdgeSet struct {
	Top    *Border `xml:"top"`
	Bottom *Border `xml:"bottom"`
	Left   *Border `xml:"left"`
	Right  *Border `xml:"right"`
}

// Border is one border edge; Sz is in eighths of a point.
type Border struct {
	Val   string `xml:"val,attr"`
	Sz    string `xml:"sz,attr"`
	Color string `xml:"color,attr"`
}

// Shading is <w:shd>; Fill carries the background color.
type Shading struct {
	Val   string `xml:"val,attr"`
	Fill  string `xml:"fill,attr"`
	Color string `xml:"color,attr"`
}

// Run is a <w:r> element.
type Run struct {
	Props RunProps
	Items []RunItem
}

// RunItemKind discriminates the items inside a run.
type RunItemKind int

const (
	RunItemText RunItemKind = iota
	RunItemTab
	RunItemBreak
	RunItemDrawing
	RunItemPict
)

// RunItem is one ordered item inside a run.
type RunItem struct {
	Kind      RunItemKind
	Text      string   // RunItemText
	BreakType string   // RunItemBreak: "", "page", "column", "textWrapping"
	Drawing   *Drawing // RunItemDrawing
	Pict      *Pict    // RunItemPict
}

// UnmarshalXML keeps text, tabs, breaks and drawings in document order.
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Props, &t); err != nil {
					return err
				}
			case "t":
				var txt struct {
					Value string `xml:",chardata"`
				}
				if err := d.DecodeElement(&txt, &t); err != nil {
					return err
				}
				r.Items = append(r.Items, RunItem{Kind: RunItemText, Text: txt.Value})
			case "tab":
				if err := d.Skip(); err != nil {
					return err
				}
				r.Items = append(r.Items, RunItem{Kind: RunItemTab})
			case "br", "cr":
				var breakType string
				for _, a := range t.Attr {
					if a.Name.Local == "type" {
						breakType = a.Value
					}
				}
				if err := d.Skip(); err != nil {
					return err
				}
				r.Items = append(r.Items, RunItem{Kind: RunItemBreak, BreakType: breakType})
			case "drawing":
				var dr Drawing
				if err := d.DecodeElement(&dr, &t); err != nil {
					return err
				}
				r.Items = append(r.Items, RunItem{Kind: RunItemDrawing, Drawing: &dr})
			case "pict", "object":
				var pict Pict
				if err := pict.decode(d); err != nil {
					return err
				}
				r.Items = append(r.Items, RunItem{Kind: RunItemPict, Pict: &pict})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// RunProps is <w:rPr>. Toggle elements (b, i, strike, caps, smallCaps) are
// pointers: presence without a val attribute means enabled.
type RunProps struct {
	Style     *ValAttr `xml:"rStyle"`
	Bold      *ValAttr `xml:"b"`
	Italic    *ValAttr `xml:"i"`
	Underline *ValAttr `xml:"u"`
	Strike    *ValAttr `xml:"strike"`
	Caps      *ValAttr `xml:"caps"`
	SmallCaps *ValAttr `xml:"smallCaps"`
	Size      *ValAttr `xml:"sz"`
	Fonts     *Fonts   `xml:"rFonts"`
	Color     *ValAttr `xml:"color"`
	Highlight *ValAttr `xml:"highlight"`
	Shading   *Shading `xml:"shd"`
	VertAlign *ValAttr `xml:"vertAlign"`
}

// Toggled reports the effective state of an OOXML toggle property: present
// without a value means on; val "false"/"0" turns it off.
func (v *ValAttr) Toggled() bool {
	if v == nil {
		return false
	}
	return v.Val != "false" && v.Val != "0" && v.Val != "none"
}

// Fonts is <w:rFonts>.
type Fonts struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	EastAsia string `xml:"eastAsia,attr"`
	CS       string `xml:"cs,attr"`
}

// Drawing is <w:drawing>: either an inline or an anchored image.
type Drawing struct {
	Inline *DrawingObject `xml:"inline"`
	Anchor *DrawingObject `xml:"anchor"`
}

// Object returns whichever drawing variant is present.
func (d *Drawing) Object() *DrawingObject {
	if d == nil {
		return nil
	}
	if d.Inline != nil {
		return d.Inline
	}
	return d.Anchor
}

// DrawingObject holds the parts of an inline/anchored drawing we render.
type DrawingObject struct {
	Extent *Extent    `xml:"extent"`
	DocPr  *DocProps  `xml:"docPr"`
	Blip   *Blip      `xml:"graphic>graphicData>pic>blipFill>blip"`
}

// Extent is the drawing size in EMU.
type Extent struct {
	CX string `xml:"cx,attr"`
	CY string `xml:"cy,attr"`
}

// DocProps carries the drawing name and alt text.
type DocProps struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

// Blip references the image bytes through a relationship id.
type Blip struct {
	Embed string `xml:"embed,attr"`
}

// Pict is a legacy VML picture (<w:pict>). Only the <v:imagedata r:id>
// reference is extracted; all other VML content is ignored.
type Pict struct {
	RelID string
}

// decode scans the pict subtree for an imagedata relationship reference.
// The element has already been entered; decode consumes through its end tag.
func (p *Pict) decode(d *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "imagedata" && p.RelID == "" {
				for _, a := range t.Attr {
					if a.Name.Local == "id" {
						p.RelID = a.Value
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// Hyperlink is <w:hyperlink>: an external target via relationship id, or an
// internal anchor.
type Hyperlink struct {
	RelID  string `xml:"id,attr"`
	Anchor string `xml:"anchor,attr"`
	Runs   []Run  `xml:"r"`
}

// Table is a <w:tbl> element.
type Table struct {
	Props TableProps `xml:"tblPr"`
	Rows  []TableRow `xml:"tr"`
}

// TableProps is <w:tblPr>.
type TableProps struct {
	Style   *ValAttr `xml:"tblStyle"`
	Borders *EdgeSet `xml:"tblBorders"`
	Shading *Shading `xml:"shd"`
}

// TableRow is <w:tr>.
type TableRow struct {
	Props RowProps    `xml:"trPr"`
	Cells []TableCell `xml:"tc"`
}

// RowProps is <w:trPr>.
type RowProps struct {
	Header *ValAttr `xml:"tblHeader"`
}

// TableCell is <w:tc>. Cell content is restricted to paragraphs.
type TableCell struct {
	Props      CellProps   `xml:"tcPr"`
	Paragraphs []Paragraph `xml:"p"`
}

// CellProps is <w:tcPr>.
type CellProps struct {
	GridSpan *ValAttr `xml:"gridSpan"`
	VMerge   *VMerge  `xml:"vMerge"`
	Borders  *EdgeSet `xml:"tcBorders"`
	Shading  *Shading `xml:"shd"`
	VAlign   *ValAttr `xml:"vAlign"`
}

// VMerge marks vertical cell merging: val "restart" begins a merge, an
// empty val continues the merge from the row above.
type VMerge struct {
	Val string `xml:"val,attr"`
}

// Continuation reports whether this cell continues a merge from above.
func (v *VMerge) Continuation() bool {
	return v != nil && v.Val != "restart"
}
