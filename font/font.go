// Package font provides the Font value object the subsetter consumes
// and produces, and the Subset operation itself.
package font

import (
	"github.com/tdewolff/otfsubset/opentype"
)

// Metrics is carried through a subset operation unchanged; the
// subsetter never interprets it.
type Metrics struct {
	UnitsPerEm uint16
	Ascender   int16
	Descender  int16
	LineGap    int16
}

// Font is the value object spec'd in spec.md §3: a program (the raw
// font bytes), a per-glyph width table, a character-to-glyph mapping,
// a guaranteed-present default glyph, and opaque name/metrics payload.
type Font struct {
	Program      []byte
	Widths       []uint16
	Mapping      map[rune]uint16
	DefaultGlyph uint16
	Name         string
	Metrics      Metrics
}

// NewFont builds a Font from a fully parsed opentype.Reader: the widths
// cover the font's entire glyph set (old glyph IDs). The mapping of the
// returned Font is empty; characters are resolved through the reader's
// cmap when subsetting.
func NewFont(r *opentype.Reader) (*Font, error) {
	if r.Outlines() != opentype.TrueType {
		return nil, &UnsupportedFontError{Reason: "only TrueType outlines are supported"}
	}

	head := r.Head()
	if head == nil {
		return nil, &MissingTableError{Tag: "head"}
	}
	maxp := r.Maxp()
	if maxp == nil {
		return nil, &MissingTableError{Tag: "maxp"}
	}
	hhea := r.Hhea()
	if hhea == nil {
		return nil, &MissingTableError{Tag: "hhea"}
	}

	hmtx, err := r.HorizontalMetrics()
	if err != nil {
		return nil, wrapTableError("hmtx", err)
	}
	widths := make([]uint16, maxp.NumGlyphs)
	for glyphID := range widths {
		m, ok := hmtx.Get(uint16(glyphID))
		if !ok {
			return nil, &InvalidFontError{Msg: "hmtx: missing glyph width"}
		}
		widths[glyphID] = m.AdvanceWidth
	}

	fontName := ""
	if name, err := r.Name(); err == nil {
		if records := name.Get(opentype.NameFullName); len(records) > 0 {
			fontName = records[0].String()
		} else if records := name.Get(opentype.NameFontFamily); len(records) > 0 {
			fontName = records[0].String()
		}
	}

	// Mapping is left empty for a freshly parsed input font: the input's
	// character map is consulted on demand through opentype.Reader
	// during Subset (see subset.go), since materializing every character
	// a cmap covers would mean walking the entire BMP and supplementary
	// planes up front for no benefit. Mapping on a Font is populated by
	// Subset's output, per spec.md §4.13.
	return &Font{
		Program:      r.Program(),
		Widths:       widths,
		Mapping:      map[rune]uint16{},
		DefaultGlyph: 0,
		Name:         fontName,
		Metrics: Metrics{
			UnitsPerEm: head.UnitsPerEm,
			Ascender:   hhea.Ascender,
			Descender:  hhea.Descender,
			LineGap:    hhea.LineGap,
		},
	}, nil
}
