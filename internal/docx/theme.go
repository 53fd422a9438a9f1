package docx

import (
	"encoding/xml"
	"fmt"
)

// Theme carries the document theme's default font faces. Only the minor
// (body) font matters for rendering; everything else in the theme part is
// presentation detail this converter does not use.
type Theme struct {
	MinorFont string
	MajorFont string
}

type themeXML struct {
	XMLName      xml.Name `xml:"theme"`
	ThemeElems   struct {
		FontScheme struct {
			Major struct {
				Latin struct {
					Typeface string `xml:"typeface,attr"`
				} `xml:"latin"`
			} `xml:"majorFont"`
			Minor struct {
				Latin struct {
					Typeface string `xml:"typeface,attr"`
				} `xml:"latin"`
			} `xml:"minorFont"`
		} `xml:"fontScheme"`
	} `xml:"themeElements"`
}

// ParseTheme extracts the default font faces from the theme part.
func ParseTheme(data []byte) (*Theme, error) {
	var raw themeXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ThemePart, err)
	}
	return &Theme{
		MinorFont: raw.ThemeElems.FontScheme.Minor.Latin.Typeface,
		MajorFont: raw.ThemeElems.FontScheme.Major.Latin.Typeface,
	}, nil
}
