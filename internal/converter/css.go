package converter

import (
	"sort"
	"strings"

	"github.com/yuanying/docx2html/internal/docx"
)

// classPrefix keeps generated class names valid: a CSS class may not
// begin with a digit, and style ids frequently do ("1", "a3").
const classPrefix = "dx-"

// baseStylesheet carries the typography, table and list defaults every
// converted document shares. Named-style rules are appended after it, so
// they always win over these defaults.
const baseStylesheet = `body {
  font-family: Calibri, "Helvetica Neue", Arial, sans-serif;
  font-size: 11pt;
  line-height: 1.4;
  margin: 2em auto;
  max-width: 50em;
  padding: 0 1em;
  color: #222222;
}
p {
  margin: 0 0 0.5em 0;
}
h1, h2, h3, h4, h5 {
  margin: 0.8em 0 0.4em 0;
  line-height: 1.2;
}
table {
  border-collapse: collapse;
  margin: 0.5em 0;
}
td, th {
  border: 1px solid #999999;
  padding: 0.25em 0.5em;
  vertical-align: top;
}
ul, ol {
  margin: 0.25em 0;
  padding-left: 2em;
}
li {
  margin: 0.15em 0;
}
img {
  max-width: 100%;
  height: auto;
}
a {
  color: #0563c1;
}
`

// GenerateCSS emits the base stylesheet followed by one class rule per
// style definition with a non-empty property map, in declaration order.
func GenerateCSS(styles *docx.StyleTable) string {
	var sb strings.Builder
	sb.WriteString(baseStylesheet)

	if defaults := styles.Defaults(); len(defaults) > 0 {
		sb.WriteString("\n")
		writeRule(&sb, "body", defaults)
	}

	for _, def := range styles.Definitions() {
		if len(def.CSS) == 0 {
			continue
		}
		sb.WriteString("\n")
		writeRule(&sb, "."+ClassName(def.ID), def.CSS)
	}
	return sb.String()
}

func writeRule(sb *strings.Builder, selector string, css map[string]string) {
	keys := make([]string, 0, len(css))
	for k := range css {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString(selector + " {\n")
	for _, k := range keys {
		sb.WriteString("  " + k + ": " + css[k] + ";\n")
	}
	sb.WriteString("}\n")
}

// ClassName sanitizes a style id into a CSS class name. The fixed prefix
// guarantees the name never starts with a digit.
func ClassName(styleID string) string {
	var b strings.Builder
	for _, r := range styleID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "style"
	}
	return classPrefix + name
}
