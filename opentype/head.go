package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// Head is the parsed "head" table. Only the fields the subsetter or
// Font construction need are kept; the rest of the table rides along
// unparsed in RawTable when it's copied verbatim.
type Head struct {
	UnitsPerEm        uint16
	XMin, YMin        int16
	XMax, YMax        int16
	IndexToLocFormat  int16 // 0: short (loca entries are half the byte offset), 1: long
}

func (r *Reader) parseHead() error {
	b := r.tables[MustTag("head")]
	if len(b) != 54 {
		return fmt.Errorf("opentype: head: %w", ErrInvalidFont)
	}
	p := parse.NewBinaryReader(b)
	_ = p.ReadUint16() // majorVersion
	_ = p.ReadUint16() // minorVersion
	_ = p.ReadUint32() // fontRevision
	_ = p.ReadUint32() // checkSumAdjustment
	if p.ReadUint32() != 0x5F0F3CF5 {
		return fmt.Errorf("opentype: head: bad magic number")
	}
	_ = p.ReadUint16() // flags
	unitsPerEm := p.ReadUint16()
	_ = p.ReadUint64() // created
	_ = p.ReadUint64() // modified
	xMin := p.ReadInt16()
	yMin := p.ReadInt16()
	xMax := p.ReadInt16()
	yMax := p.ReadInt16()
	_ = p.ReadUint16() // macStyle
	_ = p.ReadUint16() // lowestRecPPEM
	_ = p.ReadInt16()  // fontDirectionHint
	indexToLocFormat := p.ReadInt16()
	if indexToLocFormat != 0 && indexToLocFormat != 1 {
		return fmt.Errorf("opentype: head: bad indexToLocFormat")
	}
	_ = p.ReadInt16() // glyphDataFormat

	r.head = &Head{
		UnitsPerEm:       unitsPerEm,
		XMin:             xMin,
		YMin:             yMin,
		XMax:             xMax,
		YMax:             yMax,
		IndexToLocFormat: indexToLocFormat,
	}
	return nil
}

// Head returns the parsed head table, or nil if the font has none.
func (r *Reader) Head() *Head {
	return r.head
}
