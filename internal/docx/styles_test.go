package docx

import "testing"

const stylesFixture = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:docDefaults>
    <w:rPrDefault>
      <w:rPr>
        <w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/>
        <w:sz w:val="22"/>
      </w:rPr>
    </w:rPrDefault>
  </w:docDefaults>
  <w:style w:type="paragraph" w:styleId="Base">
    <w:name w:val="Base"/>
    <w:rPr><w:sz w:val="24"/><w:color w:val="333333"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:basedOn w:val="Base"/>
    <w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
  </w:style>
  <w:style w:type="character" w:styleId="Quiet">
    <w:rPr><w:b w:val="false"/><w:i w:val="0"/></w:rPr>
  </w:style>
</w:styles>`

func TestParseStyles_Table(t *testing.T) {
	st, err := ParseStyles([]byte(stylesFixture))
	if err != nil {
		t.Fatalf("ParseStyles: %v", err)
	}

	defaults := st.Defaults()
	if defaults["font-size"] != "11pt" {
		t.Errorf("default font-size = %q, want 11pt", defaults["font-size"])
	}
	if defaults["font-family"] != "Calibri" {
		t.Errorf("default font-family = %q, want Calibri", defaults["font-family"])
	}

	h1 := st.Get("Heading1")
	if h1["font-size"] != "16pt" {
		t.Errorf("Heading1 font-size = %q, want 16pt", h1["font-size"])
	}
	if h1["font-weight"] != "bold" {
		t.Errorf("Heading1 font-weight = %q, want bold", h1["font-weight"])
	}
	if h1["margin-top"] != "12pt" || h1["margin-bottom"] != "6pt" {
		t.Errorf("Heading1 margins = %q / %q", h1["margin-top"], h1["margin-bottom"])
	}
	// basedOn is recorded, not flattened.
	if _, flattened := h1["color"]; flattened {
		t.Error("Heading1 should not inherit Base color at parse time")
	}
	if st.BasedOn("Heading1") != "Base" {
		t.Errorf("BasedOn(Heading1) = %q, want Base", st.BasedOn("Heading1"))
	}
}

func TestParseStyles_ToggleOff(t *testing.T) {
	st, err := ParseStyles([]byte(stylesFixture))
	if err != nil {
		t.Fatalf("ParseStyles: %v", err)
	}

	quiet := st.Get("Quiet")
	if quiet["font-weight"] != "normal" {
		t.Errorf("b val=false should emit font-weight normal, got %q", quiet["font-weight"])
	}
	if quiet["font-style"] != "normal" {
		t.Errorf("i val=0 should emit font-style normal, got %q", quiet["font-style"])
	}
}

func TestStyleTable_GetMissingAndMutation(t *testing.T) {
	st, err := ParseStyles([]byte(stylesFixture))
	if err != nil {
		t.Fatalf("ParseStyles: %v", err)
	}

	if css := st.Get("NoSuchStyle"); len(css) != 0 {
		t.Errorf("missing style should yield empty map, got %v", css)
	}

	css := st.Get("Base")
	css["font-size"] = "99pt"
	if st.Get("Base")["font-size"] == "99pt" {
		t.Error("Get must return a copy, not the stored map")
	}
}

func TestStyleTable_DefinitionsOrder(t *testing.T) {
	st, err := ParseStyles([]byte(stylesFixture))
	if err != nil {
		t.Fatalf("ParseStyles: %v", err)
	}
	defs := st.Definitions()
	if len(defs) != 3 {
		t.Fatalf("got %d definitions, want 3", len(defs))
	}
	want := []string{"Base", "Heading1", "Quiet"}
	for i, id := range want {
		if defs[i].ID != id {
			t.Errorf("definition %d = %q, want %q", i, defs[i].ID, id)
		}
	}
}

func TestEnsureDefaultFont(t *testing.T) {
	st := EmptyStyleTable()
	st.EnsureDefaultFont("Yu Gothic")
	if got := st.Defaults()["font-family"]; got != `"Yu Gothic"` {
		t.Errorf("theme fallback font = %q", got)
	}

	// A font from the styles part wins over the theme fallback.
	st2, err := ParseStyles([]byte(stylesFixture))
	if err != nil {
		t.Fatal(err)
	}
	st2.EnsureDefaultFont("Yu Gothic")
	if got := st2.Defaults()["font-family"]; got != "Calibri" {
		t.Errorf("styles font overridden by theme: %q", got)
	}
}

func TestRunPropsCSS(t *testing.T) {
	cases := []struct {
		name  string
		props RunProps
		key   string
		want  string
	}{
		{"size half-points", RunProps{Size: &ValAttr{Val: "32"}}, "font-size", "16pt"},
		{"bold present", RunProps{Bold: &ValAttr{}}, "font-weight", "bold"},
		{"underline", RunProps{Underline: &ValAttr{Val: "single"}}, "text-decoration", "underline"},
		{"underline wavy", RunProps{Underline: &ValAttr{Val: "wave"}}, "text-decoration-style", "wavy"},
		{"strike", RunProps{Strike: &ValAttr{}}, "text-decoration", "line-through"},
		{"color", RunProps{Color: &ValAttr{Val: "ff0000"}}, "color", "#FF0000"},
		{"highlight", RunProps{Highlight: &ValAttr{Val: "yellow"}}, "background-color", "yellow"},
		{"superscript", RunProps{VertAlign: &ValAttr{Val: "superscript"}}, "vertical-align", "super"},
		{"caps", RunProps{Caps: &ValAttr{}}, "text-transform", "uppercase"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			css := RunPropsCSS(&c.props)
			if css[c.key] != c.want {
				t.Errorf("%s = %q, want %q", c.key, css[c.key], c.want)
			}
		})
	}
}

func TestRunPropsCSS_StrikeCombinesWithUnderline(t *testing.T) {
	css := RunPropsCSS(&RunProps{
		Underline: &ValAttr{Val: "single"},
		Strike:    &ValAttr{},
	})
	if css["text-decoration"] != "underline line-through" {
		t.Errorf("text-decoration = %q", css["text-decoration"])
	}
}

func TestRunPropsCSS_AutoColorDropped(t *testing.T) {
	css := RunPropsCSS(&RunProps{Color: &ValAttr{Val: "auto"}})
	if _, ok := css["color"]; ok {
		t.Errorf("auto color must be dropped, got %q", css["color"])
	}
}

func TestParagraphPropsCSS(t *testing.T) {
	css := ParagraphPropsCSS(&ParagraphProps{
		Jc:      &ValAttr{Val: "both"},
		Spacing: &Spacing{Before: "240", Line: "360"},
		Ind:     &Indent{Left: "720", Hanging: "360"},
	})
	if css["text-align"] != "justify" {
		t.Errorf("text-align = %q", css["text-align"])
	}
	if css["margin-top"] != "12pt" {
		t.Errorf("margin-top = %q", css["margin-top"])
	}
	if css["line-height"] != "1.5" {
		t.Errorf("line-height = %q", css["line-height"])
	}
	if css["margin-left"] != "36pt" {
		t.Errorf("margin-left = %q", css["margin-left"])
	}
	if css["text-indent"] != "-18pt" {
		t.Errorf("hanging indent = %q", css["text-indent"])
	}
}

func TestBorderCSS(t *testing.T) {
	css := make(map[string]string)
	borderCSS(css, &EdgeSet{
		Top:    &Border{Val: "single", Sz: "8", Color: "00FF00"},
		Bottom: &Border{Val: "dotted"},
		Left:   &Border{Val: "nil"},
	})
	if css["border-top"] != "1pt solid #00FF00" {
		t.Errorf("border-top = %q", css["border-top"])
	}
	if css["border-bottom"] != "0.5pt dotted #000000" {
		t.Errorf("border-bottom = %q", css["border-bottom"])
	}
	if _, ok := css["border-left"]; ok {
		t.Error("nil border must be dropped")
	}
}

func TestFontFamily(t *testing.T) {
	if got := fontFamily(&Fonts{ASCII: "Times New Roman"}); got != `"Times New Roman"` {
		t.Errorf("fontFamily = %q", got)
	}
	if got := fontFamily(&Fonts{ASCII: "Arial", EastAsia: "MS Mincho"}); got != `Arial, "MS Mincho"` {
		t.Errorf("fontFamily with eastAsia = %q", got)
	}
	if got := fontFamily(&Fonts{}); got != "" {
		t.Errorf("empty rFonts = %q", got)
	}
}

func TestParseStyles_Malformed(t *testing.T) {
	if _, err := ParseStyles([]byte("<w:styles><unclosed")); err == nil {
		t.Error("expected parse error for malformed XML")
	}
}
