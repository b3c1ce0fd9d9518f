package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PlatformID identifies the platform a "name" table record was encoded
// for. Only the values the decoder needs to distinguish are named.
type PlatformID uint16

// Platform IDs recognized by NameRecord.String.
const (
	PlatformUnicode   PlatformID = 0
	PlatformMacintosh PlatformID = 1
	PlatformWindows   PlatformID = 3
)

// EncodingID identifies the platform-specific encoding of a "name"
// record.
type EncodingID uint16

// EncodingMacintoshRoman is the Macintosh platform's Roman encoding, the
// only Macintosh encoding this package knows how to decode.
const EncodingMacintoshRoman EncodingID = 0

// NameID identifies which predefined string a "name" record holds (font
// family, subfamily, full name, and so on).
type NameID uint16

// Name IDs the font package asks for by default.
const (
	NameFontFamily NameID = 1
	NameFullName   NameID = 4
)

// NameRecord is one decoded entry of the "name" table.
type NameRecord struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     NameID
	raw      []byte
}

// String decodes the record's raw bytes using the encoding implied by
// its platform/encoding IDs. Unicode and Windows platform records are
// UTF-16BE; Macintosh Roman records use the Mac Roman single-byte
// encoding; anything else is returned as raw bytes, which is usually
// wrong but never panics.
func (rec NameRecord) String() string {
	var decoder *encoding.Decoder
	if rec.Platform == PlatformUnicode || rec.Platform == PlatformWindows {
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	} else if rec.Platform == PlatformMacintosh && rec.Encoding == EncodingMacintoshRoman {
		decoder = charmap.Macintosh.NewDecoder()
	}
	if decoder == nil {
		return string(rec.raw)
	}
	s, _, err := transform.String(decoder, string(rec.raw))
	if err == nil {
		return s
	}
	return string(rec.raw)
}

// Name is the parsed "name" table.
type Name struct {
	records []NameRecord
}

// Get returns every record carrying the given name ID, in table order.
func (n *Name) Get(name NameID) []NameRecord {
	var records []NameRecord
	for _, rec := range n.records {
		if rec.Name == name {
			records = append(records, rec)
		}
	}
	return records
}

// Name parses the "name" table. Only format 0/1 name records are read;
// format 1's language-tag records are skipped, since nothing in this
// package looks glyphs up by custom language tag.
func (r *Reader) Name() (*Name, error) {
	b, ok := r.tables[MustTag("name")]
	if !ok {
		return nil, fmt.Errorf("opentype: name: %w", ErrMissingTable)
	} else if len(b) < 6 {
		return nil, fmt.Errorf("opentype: name: %w", ErrInvalidFont)
	}

	p := parse.NewBinaryReader(b)
	version := p.ReadUint16()
	if version != 0 && version != 1 {
		return nil, fmt.Errorf("opentype: name: bad version")
	}
	count := p.ReadUint16()
	storageOffset := p.ReadUint16()
	if uint32(len(b)) < 6+12*uint32(count) || uint16(len(b)) < storageOffset {
		return nil, fmt.Errorf("opentype: name: %w", ErrInvalidFont)
	}

	records := make([]NameRecord, count)
	for i := range records {
		records[i].Platform = PlatformID(p.ReadUint16())
		records[i].Encoding = EncodingID(p.ReadUint16())
		records[i].Language = p.ReadUint16()
		records[i].Name = NameID(p.ReadUint16())

		length := p.ReadUint16()
		offset := p.ReadUint16()
		if uint16(len(b))-storageOffset < offset || uint16(len(b))-storageOffset-offset < length {
			return nil, fmt.Errorf("opentype: name: %w", ErrInvalidFont)
		}
		records[i].raw = b[storageOffset+offset : storageOffset+offset+length]
	}
	return &Name{records: records}, nil
}
