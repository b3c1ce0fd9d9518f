package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// Hhea is the parsed "hhea" table.
type Hhea struct {
	Ascender, Descender, LineGap int16
	NumberOfHMetrics             uint16
}

func (r *Reader) parseHhea() error {
	b := r.tables[MustTag("hhea")]
	if len(b) != 36 {
		return fmt.Errorf("opentype: hhea: %w", ErrInvalidFont)
	}
	p := parse.NewBinaryReader(b)
	_ = p.ReadUint16() // majorVersion
	_ = p.ReadUint16() // minorVersion
	ascender := p.ReadInt16()
	descender := p.ReadInt16()
	lineGap := p.ReadInt16()
	_ = p.ReadUint16() // advanceWidthMax
	_ = p.ReadInt16()  // minLeftSideBearing
	_ = p.ReadInt16()  // minRightSideBearing
	_ = p.ReadInt16()  // xMaxExtent
	_ = p.ReadInt16()  // caretSlopeRise
	_ = p.ReadInt16()  // caretSlopeRun
	_ = p.ReadInt16()  // caretOffset
	_ = p.ReadInt16()  // reserved
	_ = p.ReadInt16()  // reserved
	_ = p.ReadInt16()  // reserved
	_ = p.ReadInt16()  // reserved
	_ = p.ReadInt16()  // metricDataFormat
	numberOfHMetrics := p.ReadUint16()

	r.hhea = &Hhea{
		Ascender:         ascender,
		Descender:        descender,
		LineGap:          lineGap,
		NumberOfHMetrics: numberOfHMetrics,
	}
	return nil
}

// Hhea returns the parsed hhea table, or nil if the font has none.
func (r *Reader) Hhea() *Hhea {
	return r.hhea
}

// Maxp is the parsed "maxp" table. Only the version and numGlyphs are
// kept: the rest of
// the table (present in version 1.0) is copied verbatim by the subsetter
// and never interpreted.
type Maxp struct {
	Version   uint32
	NumGlyphs uint16
}

func (r *Reader) parseMaxp() error {
	b := r.tables[MustTag("maxp")]
	if len(b) < 6 {
		return fmt.Errorf("opentype: maxp: %w", ErrInvalidFont)
	}
	p := parse.NewBinaryReader(b)
	version := p.ReadUint32()
	numGlyphs := p.ReadUint16()

	r.maxp = &Maxp{Version: version, NumGlyphs: numGlyphs}
	return nil
}

// Maxp returns the parsed maxp table, or nil if the font has none.
func (r *Reader) Maxp() *Maxp {
	return r.maxp
}
