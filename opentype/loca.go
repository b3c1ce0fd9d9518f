package opentype

import (
	"encoding/binary"
	"fmt"
)

// Locations is the parsed "loca" table: one entry per glyph plus a
// trailing sentinel, each giving the byte offset of that glyph's outline
// within "glyf".
type Locations struct {
	format int16 // from head.IndexToLocFormat: 0 = short (half-offsets), 1 = long
	data   []byte
}

// Locations parses the "loca" table. It requires "head" to already be
// known, since the encoding format (short or long offsets) is recorded
// there.
func (r *Reader) Locations() (*Locations, error) {
	if r.head == nil {
		return nil, fmt.Errorf("opentype: loca: missing head table")
	}
	b, ok := r.tables[MustTag("loca")]
	if !ok {
		return nil, fmt.Errorf("opentype: loca: %w", ErrMissingTable)
	}
	return &Locations{format: r.head.IndexToLocFormat, data: b}, nil
}

// Offset returns the byte offset of glyphID's outline data within glyf.
// Passing NumGlyphs (one past the last glyph) returns the sentinel
// offset, i.e. the total length of glyf.
func (loca *Locations) Offset(glyphID uint16) (uint32, bool) {
	if loca.format == 0 {
		pos := int(glyphID) * 2
		if pos+2 > len(loca.data) {
			return 0, false
		}
		return 2 * uint32(binary.BigEndian.Uint16(loca.data[pos:])), true
	}
	pos := int(glyphID) * 4
	if pos+4 > len(loca.data) {
		return 0, false
	}
	return binary.BigEndian.Uint32(loca.data[pos:]), true
}

// Length returns the byte length of glyphID's outline data within glyf,
// i.e. Offset(glyphID+1) - Offset(glyphID).
func (loca *Locations) Length(glyphID uint16) (uint32, bool) {
	start, ok := loca.Offset(glyphID)
	if !ok {
		return 0, false
	}
	end, ok := loca.Offset(glyphID + 1)
	if !ok {
		return 0, false
	}
	return end - start, true
}
