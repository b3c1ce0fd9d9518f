package opentype

import (
	"sort"
	"testing"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/test"
)

// buildSFNT assembles a minimal but structurally valid SFNT binary out of
// raw table bytes, computing the directory, checksums and padding the
// way a real font file would.
func buildSFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	head := parse.NewBinaryWriter([]byte{})
	head.WriteBytes([]byte{0x00, 0x01, 0x00, 0x00}) // sfnt version
	head.WriteUint16(uint16(len(tags)))
	head.WriteUint16(0) // searchRange
	head.WriteUint16(0) // entrySelector
	head.WriteUint16(0) // rangeShift

	offset := uint32(12 + 16*len(tags))
	dir := parse.NewBinaryWriter([]byte{})
	body := parse.NewBinaryWriter([]byte{})
	for _, tag := range tags {
		b := tables[tag]
		padded := make([]byte, len(b))
		copy(padded, b)
		for len(padded)%4 != 0 {
			padded = append(padded, 0)
		}
		dir.WriteBytes([]byte(tag))
		dir.WriteUint32(CalcChecksum(padded))
		dir.WriteUint32(offset)
		dir.WriteUint32(uint32(len(b)))
		body.WriteBytes(padded)
		offset += uint32(len(padded))
	}
	out := append(head.Bytes(), dir.Bytes()...)
	out = append(out, body.Bytes()...)
	return out
}

func buildHead(indexToLocFormat int16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)          // majorVersion
	w.WriteUint16(0)          // minorVersion
	w.WriteUint32(0)          // fontRevision
	w.WriteUint32(0)          // checkSumAdjustment
	w.WriteUint32(0x5F0F3CF5) // magicNumber
	w.WriteUint16(0)          // flags
	w.WriteUint16(1000)       // unitsPerEm
	w.WriteUint64(0)          // created
	w.WriteUint64(0)          // modified
	w.WriteInt16(0)           // xMin
	w.WriteInt16(0)           // yMin
	w.WriteInt16(500)         // xMax
	w.WriteInt16(700)         // yMax
	w.WriteUint16(0)          // macStyle
	w.WriteUint16(8)          // lowestRecPPEM
	w.WriteInt16(2)           // fontDirectionHint
	w.WriteInt16(indexToLocFormat)
	w.WriteInt16(0) // glyphDataFormat
	return w.Bytes()
}

func buildHhea(numberOfHMetrics uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)      // majorVersion
	w.WriteUint16(0)      // minorVersion
	w.WriteInt16(800)     // ascender
	w.WriteInt16(-200)    // descender
	w.WriteInt16(0)       // lineGap
	w.WriteUint16(600)    // advanceWidthMax
	w.WriteInt16(0)       // minLeftSideBearing
	w.WriteInt16(0)       // minRightSideBearing
	w.WriteInt16(500)     // xMaxExtent
	w.WriteInt16(1)       // caretSlopeRise
	w.WriteInt16(0)       // caretSlopeRun
	w.WriteInt16(0)       // caretOffset
	w.WriteInt16(0)       // reserved
	w.WriteInt16(0)       // reserved
	w.WriteInt16(0)       // reserved
	w.WriteInt16(0)       // reserved
	w.WriteInt16(0)       // metricDataFormat
	w.WriteUint16(numberOfHMetrics)
	return w.Bytes()
}

func buildMaxp(numGlyphs uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00005000)
	w.WriteUint16(numGlyphs)
	w.WriteBytes(make([]byte, 26-6)) // zero bytes after numGlyphs, never read
	return w.Bytes()
}

func TestParseDirectory(t *testing.T) {
	b := buildSFNT(map[string][]byte{
		"head": buildHead(0),
		"hhea": buildHhea(2),
		"maxp": buildMaxp(3),
	})

	r, err := Parse(b)
	test.Error(t, err)
	test.T(t, r.Outlines(), TrueType)
	test.T(t, len(r.Tables()), 3)
	test.T(t, r.HasTable(MustTag("head")), true)
	test.T(t, r.HasTable(MustTag("glyf")), false)

	test.T(t, r.Head().UnitsPerEm, uint16(1000))
	test.T(t, r.Hhea().NumberOfHMetrics, uint16(2))
	test.T(t, r.Maxp().NumGlyphs, uint16(3))
}

func TestParseDirectoryBadHeadLength(t *testing.T) {
	b := buildSFNT(map[string][]byte{
		"head": {0, 1, 2, 3},
	})
	_, err := Parse(b)
	test.T(t, err != nil, true)
}

func buildCmapFormat4(pairs map[rune]uint16) []byte {
	var runes []rune
	for r := range pairs {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	// one segment per rune plus the required trailing 0xFFFF sentinel.
	segCount := len(runes) + 1
	sub := parse.NewBinaryWriter([]byte{})
	sub.WriteUint16(4) // format
	sub.WriteUint16(0) // length, left 0 (the reader ignores it)
	sub.WriteUint16(0) // language
	sub.WriteUint16(uint16(segCount * 2))
	sub.WriteUint16(0) // searchRange
	sub.WriteUint16(0) // entrySelector
	sub.WriteUint16(0) // rangeShift
	for _, r := range runes {
		sub.WriteUint16(uint16(r))
	}
	sub.WriteUint16(0xFFFF)
	sub.WriteUint16(0) // reservedPad
	for _, r := range runes {
		sub.WriteUint16(uint16(r))
	}
	sub.WriteUint16(0xFFFF)
	for _, r := range runes {
		sub.WriteInt16(int16(pairs[r]) - int16(r))
	}
	sub.WriteInt16(1)
	for i := 0; i < segCount; i++ {
		sub.WriteUint16(0)
	}

	cmap := parse.NewBinaryWriter([]byte{})
	cmap.WriteUint16(0) // version
	cmap.WriteUint16(1) // numTables
	cmap.WriteUint16(3) // platformID windows
	cmap.WriteUint16(1) // encodingID unicode BMP
	cmap.WriteUint32(12)
	cmap.WriteBytes(sub.Bytes())
	return cmap.Bytes()
}

func TestCharMapFormat4(t *testing.T) {
	b := buildSFNT(map[string][]byte{
		"head": buildHead(0),
		"hhea": buildHhea(1),
		"maxp": buildMaxp(4),
		"cmap": buildCmapFormat4(map[rune]uint16{'A': 3, 'B': 4}),
	})
	r, err := Parse(b)
	test.Error(t, err)

	cmap, err := r.CharMap()
	test.Error(t, err)

	glyphID, ok := cmap.Get('A')
	test.T(t, ok, true)
	test.T(t, glyphID, uint16(3))

	_, ok = cmap.Get('Z')
	test.T(t, ok, false)
}

func TestLocaShortFormat(t *testing.T) {
	loca := &Locations{format: 0, data: []byte{
		0, 0, // glyph 0 at 0
		0, 5, // glyph 1 at 10
		0, 8, // sentinel at 16
	}}
	offset, ok := loca.Offset(1)
	test.T(t, ok, true)
	test.T(t, offset, uint32(10))

	length, ok := loca.Length(1)
	test.T(t, ok, true)
	test.T(t, length, uint32(6))
}

func TestLocaLongFormat(t *testing.T) {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0)
	w.WriteUint32(20)
	w.WriteUint32(20) // empty glyph, zero length
	w.WriteUint32(44)
	loca := &Locations{format: 1, data: w.Bytes()}

	length, ok := loca.Length(1)
	test.T(t, ok, true)
	test.T(t, length, uint32(0))

	length, ok = loca.Length(2)
	test.T(t, ok, true)
	test.T(t, length, uint32(24))
}

func buildSimpleGlyph() []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteInt16(1) // numberOfContours
	w.WriteInt16(0)
	w.WriteInt16(0)
	w.WriteInt16(100)
	w.WriteInt16(100)
	w.WriteUint16(2) // endPtsOfContours[0]
	w.WriteUint16(0) // instructionLength
	w.WriteBytes([]byte{0x01, 0x01, 0x01, 10, 10, 10, 0, 0, 0})
	return w.Bytes()
}

func buildCompositeGlyph(components []uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteInt16(-1) // composite
	w.WriteInt16(0)
	w.WriteInt16(0)
	w.WriteInt16(100)
	w.WriteInt16(100)
	for i, glyphID := range components {
		flags := uint16(0x0001) // ARG_1_AND_2_ARE_WORDS
		if i != len(components)-1 {
			flags |= 0x0020 // MORE_COMPONENTS
		}
		w.WriteUint16(flags)
		w.WriteUint16(glyphID)
		w.WriteInt16(0)
		w.WriteInt16(0)
	}
	return w.Bytes()
}

func TestGlyfComposite(t *testing.T) {
	simple := buildSimpleGlyph()
	for len(simple)%2 != 0 {
		simple = append(simple, 0)
	}
	composite := buildCompositeGlyph([]uint16{1, 2})

	glyfData := append(append([]byte{}, simple...), composite...)

	locaW := parse.NewBinaryWriter([]byte{})
	locaW.WriteUint32(0)
	locaW.WriteUint32(uint32(len(simple)))
	locaW.WriteUint32(uint32(len(glyfData)))
	loca := &Locations{format: 1, data: locaW.Bytes()}

	glyphs := &Glyphs{data: glyfData, loca: loca}

	entry0, err := glyphs.Entry(0)
	test.Error(t, err)
	test.T(t, len(entry0.Composites), 0)

	entry1, err := glyphs.Entry(1)
	test.Error(t, err)
	test.T(t, len(entry1.Composites), 2)
	test.T(t, entry1.Composites[0], uint16(1))
	test.T(t, entry1.Composites[1], uint16(2))
}

func TestHorizontalMetrics(t *testing.T) {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(500) // glyph 0 advance
	w.WriteInt16(10)
	w.WriteUint16(600) // glyph 1 advance
	w.WriteInt16(20)
	w.WriteInt16(30) // glyph 2 lsb only, shares glyph 1's advance

	b := buildSFNT(map[string][]byte{
		"head": buildHead(0),
		"hhea": buildHhea(2),
		"maxp": buildMaxp(3),
		"hmtx": w.Bytes(),
	})
	r, err := Parse(b)
	test.Error(t, err)

	hmtx, err := r.HorizontalMetrics()
	test.Error(t, err)

	m, ok := hmtx.Get(2)
	test.T(t, ok, true)
	test.T(t, m.AdvanceWidth, uint16(600))
	test.T(t, m.LeftSideBearing, int16(30))
}

func buildNameTable(records []NameRecord) []byte {
	storageOffset := 6 + 12*len(records)
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)
	w.WriteUint16(uint16(len(records)))
	w.WriteUint16(uint16(storageOffset))

	storage := parse.NewBinaryWriter([]byte{})
	for _, rec := range records {
		w.WriteUint16(uint16(rec.Platform))
		w.WriteUint16(uint16(rec.Encoding))
		w.WriteUint16(rec.Language)
		w.WriteUint16(uint16(rec.Name))
		w.WriteUint16(uint16(len(rec.raw)))
		w.WriteUint16(uint16(storage.Len()))
		storage.WriteBytes(rec.raw)
	}
	w.WriteBytes(storage.Bytes())
	return w.Bytes()
}

func utf16be(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func TestNameTable(t *testing.T) {
	b := buildSFNT(map[string][]byte{
		"head": buildHead(0),
		"hhea": buildHhea(1),
		"maxp": buildMaxp(1),
		"name": buildNameTable([]NameRecord{
			{Platform: PlatformWindows, Encoding: 1, Name: NameFontFamily, raw: utf16be("Example Sans")},
		}),
	})
	r, err := Parse(b)
	test.Error(t, err)

	name, err := r.Name()
	test.Error(t, err)

	records := name.Get(NameFontFamily)
	test.T(t, len(records), 1)
	test.T(t, records[0].String(), "Example Sans")
}
