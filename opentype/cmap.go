package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// CharMap is a parsed Unicode-to-glyph character map, built from
// whichever "cmap" subtable the reader judged most suitable (see
// Reader.CharMap). Subtable formats 0, 4, and 12 are understood; any other
// format present in the table is ignored rather than rejected, since a
// font may carry encodings the subsetter has no use for (Mac Roman
// symbol tables, variation selectors, etc).
type CharMap struct {
	subtables []cmapSubtable
}

type cmapSubtable interface {
	get(r rune) (uint16, bool)
}

// Get returns the glyph ID mapped to r by the first subtable that has
// an entry for it.
func (c *CharMap) Get(r rune) (uint16, bool) {
	for _, subtable := range c.subtables {
		if glyphID, ok := subtable.get(r); ok {
			return glyphID, true
		}
	}
	return 0, false
}

type cmapFormat0 struct {
	glyphIDs [256]uint8
}

func (s *cmapFormat0) get(r rune) (uint16, bool) {
	if r < 0 || 256 <= r {
		return 0, false
	}
	return uint16(s.glyphIDs[r]), true
}

type cmapFormat4 struct {
	startCode     []uint16
	endCode       []uint16
	idDelta       []int16
	idRangeOffset []uint16
	glyphIDArray  []uint16
}

func (s *cmapFormat4) get(r rune) (uint16, bool) {
	if r < 0 || 0xFFFF < r {
		return 0, false
	}
	c := uint16(r)
	for i, start := range s.startCode {
		if start <= c && c <= s.endCode[i] {
			if s.idRangeOffset[i] == 0 {
				return c + uint16(s.idDelta[i]), true
			}
			n := len(s.startCode)
			index := int(s.idRangeOffset[i]/2) + int(c-start) - (n - i)
			if index < 0 || len(s.glyphIDArray) <= index {
				return 0, false
			}
			return s.glyphIDArray[index], true
		}
	}
	return 0, false
}

type cmapFormat12 struct {
	startCharCode []uint32
	endCharCode   []uint32
	startGlyphID  []uint32
}

func (s *cmapFormat12) get(r rune) (uint16, bool) {
	if r < 0 {
		return 0, false
	}
	c := uint32(r)
	for i, start := range s.startCharCode {
		if start <= c && c <= s.endCharCode[i] {
			return uint16((c - start) + s.startGlyphID[i]), true
		}
	}
	return 0, false
}

// CharMap parses and returns the font's character map, preferring a
// Unicode-capable encoding (platform 3/encoding 10 or 0/4 for format 12,
// platform 3/encoding 1 or 0/3 for format 4) and falling back to any
// other subtable the font carries.
func (r *Reader) CharMap() (*CharMap, error) {
	b, ok := r.tables[MustTag("cmap")]
	if !ok {
		return nil, fmt.Errorf("opentype: cmap: %w", ErrMissingTable)
	} else if len(b) < 4 {
		return nil, fmt.Errorf("opentype: cmap: %w", ErrInvalidFont)
	}

	p := parse.NewBinaryReader(b)
	if p.ReadUint16() != 0 {
		return nil, fmt.Errorf("opentype: cmap: bad version")
	}
	numTables := p.ReadUint16()
	if int64(len(b)) < 4+8*int64(numTables) {
		return nil, fmt.Errorf("opentype: cmap: %w", ErrInvalidFont)
	}

	type encodingRecord struct {
		platformID, encodingID uint16
		offset                 uint32
	}
	records := make([]encodingRecord, numTables)
	for i := range records {
		records[i] = encodingRecord{
			platformID: p.ReadUint16(),
			encodingID: p.ReadUint16(),
			offset:     p.ReadUint32(),
		}
	}

	charMap := &CharMap{}
	rank := func(rec encodingRecord) int {
		switch {
		case rec.platformID == 3 && rec.encodingID == 10:
			return 0
		case rec.platformID == 0 && rec.encodingID >= 4:
			return 0
		case rec.platformID == 3 && rec.encodingID == 1:
			return 1
		case rec.platformID == 0:
			return 1
		case rec.platformID == 1 && rec.encodingID == 0:
			return 2
		default:
			return 3
		}
	}
	best := -1
	for i, rec := range records {
		if uint32(len(b)) < rec.offset+2 {
			return nil, fmt.Errorf("opentype: cmap: %w", ErrInvalidFont)
		}
		switch parse.NewBinaryReader(b[rec.offset:]).ReadUint16() {
		case 0, 4, 12:
		default:
			continue // formats this package doesn't read are ignored
		}
		if best == -1 || rank(rec) < rank(records[best]) {
			best = i
		}
	}
	if best == -1 {
		return nil, fmt.Errorf("opentype: cmap: no supported subtables")
	}

	offset := records[best].offset
	if uint32(len(b)) < offset+2 {
		return nil, fmt.Errorf("opentype: cmap: %w", ErrInvalidFont)
	}
	format := parse.NewBinaryReader(b[offset:]).ReadUint16()
	subtable, err := parseCmapSubtable(format, b[offset:])
	if err != nil {
		return nil, err
	}
	charMap.subtables = append(charMap.subtables, subtable)
	return charMap, nil
}

func parseCmapSubtable(format uint16, b []byte) (cmapSubtable, error) {
	p := parse.NewBinaryReader(b)
	_ = p.ReadUint16() // format

	switch format {
	case 0:
		_ = p.ReadUint16() // length
		_ = p.ReadUint16() // language
		if p.Len() < 256 {
			return nil, fmt.Errorf("opentype: cmap: %w", ErrInvalidFont)
		}
		subtable := &cmapFormat0{}
		copy(subtable.glyphIDs[:], p.ReadBytes(256))
		return subtable, nil
	case 4:
		_ = p.ReadUint16() // length
		_ = p.ReadUint16() // language
		segCountX2 := p.ReadUint16()
		if segCountX2 == 0 || segCountX2%2 != 0 {
			return nil, fmt.Errorf("opentype: cmap: bad segCount")
		}
		segCount := int(segCountX2 / 2)
		_ = p.ReadUint16() // searchRange
		_ = p.ReadUint16() // entrySelector
		_ = p.ReadUint16() // rangeShift

		subtable := &cmapFormat4{
			endCode: make([]uint16, segCount),
		}
		for i := range subtable.endCode {
			subtable.endCode[i] = p.ReadUint16()
		}
		_ = p.ReadUint16() // reservedPad
		subtable.startCode = make([]uint16, segCount)
		for i := range subtable.startCode {
			subtable.startCode[i] = p.ReadUint16()
		}
		subtable.idDelta = make([]int16, segCount)
		for i := range subtable.idDelta {
			subtable.idDelta[i] = p.ReadInt16()
		}
		subtable.idRangeOffset = make([]uint16, segCount)
		for i := range subtable.idRangeOffset {
			subtable.idRangeOffset[i] = p.ReadUint16()
		}
		remaining := p.Len() / 2
		subtable.glyphIDArray = make([]uint16, remaining)
		for i := range subtable.glyphIDArray {
			subtable.glyphIDArray[i] = p.ReadUint16()
		}
		return subtable, nil
	case 12:
		_ = p.ReadUint16() // reserved
		_ = p.ReadUint32() // length
		_ = p.ReadUint32() // language
		numGroups := p.ReadUint32()
		subtable := &cmapFormat12{
			startCharCode: make([]uint32, numGroups),
			endCharCode:   make([]uint32, numGroups),
			startGlyphID:  make([]uint32, numGroups),
		}
		for i := 0; i < int(numGroups); i++ {
			subtable.startCharCode[i] = p.ReadUint32()
			subtable.endCharCode[i] = p.ReadUint32()
			subtable.startGlyphID[i] = p.ReadUint32()
		}
		return subtable, nil
	}
	return nil, fmt.Errorf("opentype: cmap: unsupported subtable format %d", format)
}
