package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// Glyphs is the parsed "glyf" table: raw outline data addressed through
// a Locations table.
type Glyphs struct {
	data []byte
	loca *Locations
}

// Glyphs parses the "glyf" table. It requires loca to locate glyph
// boundaries within the table's byte blob.
func (r *Reader) Glyphs(loca *Locations) (*Glyphs, error) {
	b, ok := r.tables[MustTag("glyf")]
	if !ok {
		return nil, fmt.Errorf("opentype: glyf: %w", ErrMissingTable)
	}
	return &Glyphs{data: b, loca: loca}, nil
}

// Get returns the raw outline bytes for glyphID, or nil if its loca
// entries can't be resolved.
func (g *Glyphs) Get(glyphID uint16) ([]byte, bool) {
	start, ok := g.loca.Offset(glyphID)
	if !ok {
		return nil, false
	}
	end, ok := g.loca.Offset(glyphID + 1)
	if !ok || end < start || uint32(len(g.data)) < end {
		return nil, false
	}
	return g.data[start:end], true
}

// GlyphEntry is a minimal, decoded view of one glyph's outline header:
// just enough for the subsetter's composite-glyph closure. It never
// decodes point coordinates.
type GlyphEntry struct {
	// Composites holds the glyph IDs directly referenced by this glyph's
	// component records, in file order, for composite glyphs. Empty for
	// simple glyphs (including glyphs with no outline at all).
	Composites []uint16
}

// Entry decodes glyphID's outline header enough to report its direct
// composite dependencies. Simple glyphs and glyphs with no outline
// (loca start == end) report no composites.
func (g *Glyphs) Entry(glyphID uint16) (*GlyphEntry, error) {
	b, ok := g.Get(glyphID)
	if !ok {
		return nil, fmt.Errorf("opentype: glyf: %w", ErrInvalidFont)
	}
	if len(b) == 0 {
		return &GlyphEntry{}, nil
	}
	if len(b) < 10 {
		return nil, fmt.Errorf("opentype: glyf: glyph %d: %w", glyphID, ErrInvalidFont)
	}

	p := parse.NewBinaryReader(b)
	numberOfContours := p.ReadInt16()
	if numberOfContours >= 0 {
		return &GlyphEntry{}, nil
	}

	_ = p.ReadBytes(8) // bounding box
	entry := &GlyphEntry{}
	for {
		if p.Len() < 4 {
			return nil, fmt.Errorf("opentype: glyf: glyph %d: %w", glyphID, ErrInvalidFont)
		}
		flags := p.ReadUint16()
		componentGlyphID := p.ReadUint16()
		entry.Composites = append(entry.Composites, componentGlyphID)

		length, more := CompositeComponentLength(flags)
		remaining := int64(length) - 4
		if p.Len() < remaining {
			return nil, fmt.Errorf("opentype: glyf: glyph %d: %w", glyphID, ErrInvalidFont)
		}
		_ = p.ReadBytes(remaining)
		if !more {
			break
		}
	}
	return entry, nil
}

// CompositeComponentLength returns the byte length of a composite glyph
// component record (including its 4-byte flags+glyphIndex header) given
// its flags word, and whether MORE_COMPONENTS is set.
//
// Flag bits, per the OpenType "glyf" table composite glyph description:
//
//	0x0001 ARG_1_AND_2_ARE_WORDS
//	0x0008 WE_HAVE_A_SCALE
//	0x0020 MORE_COMPONENTS
//	0x0040 WE_HAVE_AN_X_AND_Y_SCALE
//	0x0080 WE_HAVE_A_TWO_BY_TWO
func CompositeComponentLength(flags uint16) (length uint32, more bool) {
	length = 4 + 2
	if flags&0x0001 != 0 {
		length += 2
	}
	if flags&0x0008 != 0 {
		length += 2
	} else if flags&0x0040 != 0 {
		length += 4
	} else if flags&0x0080 != 0 {
		length += 8
	}
	more = flags&0x0020 != 0
	return
}
