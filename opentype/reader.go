package opentype

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tdewolff/parse/v2"
)

// Outlines identifies the glyph outline format a font uses.
type Outlines int

// The two outline flavors an SFNT container can carry.
const (
	TrueType Outlines = iota
	CFF
)

func (o Outlines) String() string {
	if o == CFF {
		return "CFF"
	}
	return "TrueType"
}

// TableRecord mirrors one entry of the OpenType table directory. Offset
// and Length are byte positions/sizes within the font program that
// produced this record.
type TableRecord struct {
	Tag      Tag
	CheckSum uint32
	Offset   uint32
	Length   uint32
}

// Reader is a parsed view over an SFNT font binary: the top-level
// directory plus the handful of structured tables the subsetter needs.
// It never mutates the bytes it was given.
type Reader struct {
	data     []byte
	outlines Outlines
	records  []TableRecord
	tables   map[Tag][]byte

	head *Head
	hhea *Hhea
	maxp *Maxp
}

// Parse reads an SFNT (TTF/OTF) top-level directory and, when present,
// the head, hhea and maxp tables out of b. Individual optional tables (cmap,
// loca, glyf, hmtx, name) are parsed lazily by their respective accessors
// so that a reader can be built for fonts missing tables it doesn't end
// up using.
func Parse(b []byte) (*Reader, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("opentype: %w", ErrInvalidFont)
	}

	r := parse.NewBinaryReader(b)
	version := r.ReadBytes(4)
	var outlines Outlines
	switch {
	case string(version) == "OTTO":
		outlines = CFF
	case string(version) == "true", binary.BigEndian.Uint32(version) == 0x00010000:
		outlines = TrueType
	default:
		return nil, fmt.Errorf("opentype: bad sfnt version")
	}

	numTables := r.ReadUint16()
	_ = r.ReadUint16() // searchRange
	_ = r.ReadUint16() // entrySelector
	_ = r.ReadUint16() // rangeShift
	if r.Len() < 16*int64(numTables) {
		return nil, fmt.Errorf("opentype: %w", ErrInvalidFont)
	}

	records := make([]TableRecord, numTables)
	tables := make(map[Tag][]byte, numTables)
	for i := 0; i < int(numTables); i++ {
		var tag Tag
		copy(tag[:], r.ReadBytes(4))
		checkSum := r.ReadUint32()
		offset := r.ReadUint32()
		length := r.ReadUint32()

		padding := (4 - length&3) & 3
		if uint32(len(b)) <= offset || uint32(len(b))-offset < length || uint32(len(b))-offset-length < padding {
			return nil, fmt.Errorf("opentype: %s: %w", tag, ErrInvalidFont)
		}

		records[i] = TableRecord{Tag: tag, CheckSum: checkSum, Offset: offset, Length: length}
		tables[tag] = b[offset : offset+length : offset+length]
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Tag.Less(records[j].Tag) })

	reader := &Reader{
		data:     b,
		outlines: outlines,
		records:  records,
		tables:   tables,
	}

	if _, ok := tables[MustTag("head")]; ok {
		if err := reader.parseHead(); err != nil {
			return nil, err
		}
	}
	if _, ok := tables[MustTag("maxp")]; ok {
		if err := reader.parseMaxp(); err != nil {
			return nil, err
		}
	}
	if _, ok := tables[MustTag("hhea")]; ok {
		if err := reader.parseHhea(); err != nil {
			return nil, err
		}
	}
	return reader, nil
}

// Program returns the raw font bytes this reader was parsed from.
func (r *Reader) Program() []byte {
	return r.data
}

// Outlines reports whether the font carries TrueType or CFF outlines.
func (r *Reader) Outlines() Outlines {
	return r.outlines
}

// Tables returns the table directory, sorted ascending by tag.
func (r *Reader) Tables() []TableRecord {
	return r.records
}

// HasTable reports whether tag is present in the font's directory.
func (r *Reader) HasTable(tag Tag) bool {
	_, ok := r.tables[tag]
	return ok
}

// RawTable returns the unparsed byte range for tag, for tables the
// subsetter copies verbatim.
func (r *Reader) RawTable(tag Tag) ([]byte, bool) {
	b, ok := r.tables[tag]
	return b, ok
}
