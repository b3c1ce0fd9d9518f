package font

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"

	"github.com/tdewolff/otfsubset/opentype"
)

type tableCategory int

const (
	categoryVerbatim tableCategory = iota
	categoryMetric
	categoryStructural
)

// tableCategories is the table dispatch of spec.md §4.2: every tag the
// subsetter knows how to handle, and which rewrite strategy applies.
// A tag absent from this map is UnsupportedTable.
var tableCategories = map[string]tableCategory{
	"head": categoryVerbatim,
	"name": categoryVerbatim,
	"OS/2": categoryVerbatim,
	"post": categoryVerbatim,
	"cvt ": categoryVerbatim,
	"fpgm": categoryVerbatim,
	"prep": categoryVerbatim,
	"gasp": categoryVerbatim,
	"hhea": categoryMetric,
	"maxp": categoryMetric,
	"hmtx": categoryStructural,
	"cmap": categoryStructural,
	"glyf": categoryStructural,
	"loca": categoryStructural,
}

// Subset builds a new Font containing only the glyphs needed to render
// chars (closed transitively over composite glyph references) and only
// the requested tables, rewritten so that every internal offset and
// count stays consistent. r must be a parsed view of src.Program.
func Subset(src *Font, r *opentype.Reader, chars []rune, tags []string) (*Font, error) {
	if r.Outlines() != opentype.TrueType {
		return nil, &UnsupportedFontError{Reason: "CFF outlines are not supported"}
	}

	glyphs, err := closeGlyphs(r, src.DefaultGlyph, chars)
	if err != nil {
		return nil, err
	}
	glyphMap := make(map[uint16]uint16, len(glyphs))
	for newID, oldID := range glyphs {
		glyphMap[oldID] = uint16(newID)
	}

	use, err := filterTags(r, tags)
	if err != nil {
		return nil, err
	}

	var loca *opentype.Locations
	var glyf *opentype.Glyphs
	needsGlyf := false
	for _, t := range use {
		if t.String() == "glyf" || t.String() == "loca" {
			needsGlyf = true
		}
	}
	if needsGlyf {
		loca, err = r.Locations()
		if err != nil {
			return nil, wrapTableError("loca", err)
		}
		glyf, err = r.Glyphs(loca)
		if err != nil {
			return nil, wrapTableError("glyf", err)
		}
	}

	body := parse.NewBinaryWriter([]byte{})
	var records []opentype.TableRecord
	frame := func(tag opentype.Tag, write func() error) error {
		start := body.Len()
		if err := write(); err != nil {
			return err
		}
		end := body.Len()
		padding := (4 - (end-start)&3) & 3
		for i := uint32(0); i < padding; i++ {
			body.WriteByte(0)
		}
		checksum := opentype.CalcChecksum(body.Bytes()[start : end+padding])
		records = append(records, opentype.TableRecord{
			Tag:      tag,
			CheckSum: checksum,
			Offset:   start,
			Length:   end - start,
		})
		return nil
	}

	for _, tag := range use {
		var writeErr error
		switch tag.String() {
		case "head", "name", "OS/2", "post", "cvt ", "fpgm", "prep", "gasp":
			writeErr = frame(tag, func() error {
				b, _ := r.RawTable(tag)
				body.WriteBytes(b)
				return nil
			})
		case "hhea":
			writeErr = frame(tag, func() error { return writeHhea(body, r, len(glyphs)) })
		case "maxp":
			writeErr = frame(tag, func() error { return writeMaxp(body, r, len(glyphs)) })
		case "hmtx":
			writeErr = frame(tag, func() error { return writeHmtx(body, r, glyphs) })
		case "cmap":
			writeErr = frame(tag, func() error { writeCmap(body, chars); return nil })
		case "glyf":
			writeErr = frame(tag, func() error { return writeGlyf(body, glyf, glyphs, glyphMap) })
		case "loca":
			writeErr = frame(tag, func() error { return writeLoca(body, r, loca, glyphs) })
		}
		if writeErr != nil {
			return nil, writeErr
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Tag.Less(records[j].Tag) })

	program := assembleProgram(records, body.Bytes())

	mapping := make(map[rune]uint16, len(chars))
	for i, c := range chars {
		mapping[c] = uint16(1 + i)
	}

	widths := make([]uint16, len(glyphs))
	for i, oldID := range glyphs {
		if int(oldID) >= len(src.Widths) {
			return nil, &InvalidFontError{Msg: fmt.Sprintf("missing glyph width for glyph %d", oldID)}
		}
		widths[i] = src.Widths[oldID]
	}

	return &Font{
		Program:      program,
		Widths:       widths,
		Mapping:      mapping,
		DefaultGlyph: src.DefaultGlyph,
		Name:         src.Name,
		Metrics:      src.Metrics,
	}, nil
}

// closeGlyphs implements the glyph closure of spec.md §4.1: seed with
// the default glyph, resolve every requested character, then
// transitively close over composite glyph references using a cursor
// over the growing glyphs slice.
func closeGlyphs(r *opentype.Reader, defaultGlyph uint16, chars []rune) ([]uint16, error) {
	charMap, err := r.CharMap()
	if err != nil {
		return nil, wrapTableError("cmap", err)
	}

	glyphs := []uint16{defaultGlyph}
	present := map[uint16]bool{defaultGlyph: true}
	for _, c := range chars {
		glyphID, ok := charMap.Get(c)
		if !ok {
			return nil, &MissingCharacterError{Char: c}
		}
		glyphs = append(glyphs, glyphID)
		present[glyphID] = true
	}

	loca, err := r.Locations()
	if err != nil {
		return nil, wrapTableError("loca", err)
	}
	glyf, err := r.Glyphs(loca)
	if err != nil {
		return nil, wrapTableError("glyf", err)
	}

	for i := 0; i < len(glyphs); i++ {
		entry, err := glyf.Entry(glyphs[i])
		if err != nil {
			return nil, wrapTableError("glyf", err)
		}
		for _, dep := range entry.Composites {
			if !present[dep] {
				present[dep] = true
				glyphs = append(glyphs, dep)
			}
		}
	}
	if math.MaxUint16 < len(glyphs) {
		return nil, &InvalidFontError{Msg: "too many glyphs for one font"}
	}
	return glyphs, nil
}

// filterTags validates and order-preserves the caller's requested tags:
// an unparseable or unrecognized tag is UnsupportedTable; a recognized
// tag missing from the input directory is silently skipped, since
// callers routinely pass union tag sets (spec.md §4.2, §7).
func filterTags(r *opentype.Reader, tags []string) ([]opentype.Tag, error) {
	seen := make(map[opentype.Tag]bool, len(tags))
	var use []opentype.Tag
	for _, s := range tags {
		tag, err := opentype.ParseTag(s)
		if _, known := tableCategories[s]; err != nil || !known {
			return nil, &UnsupportedTableError{Tag: s}
		}
		if !r.HasTable(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		use = append(use, tag)
	}
	return use, nil
}

// writeHhea implements spec.md §4.4: copy everything but the last two
// bytes (numberOfHMetrics), then write the new glyph count.
func writeHhea(w *parse.BinaryWriter, r *opentype.Reader, numGlyphs int) error {
	table, _ := r.RawTable(opentype.MustTag("hhea"))
	if len(table) != 36 {
		return &InvalidFontError{Msg: "hhea: unexpected table length"}
	}
	w.WriteBytes(table[:34])
	w.WriteUint16(uint16(numGlyphs))
	return nil
}

// writeMaxp implements spec.md §4.6: version verbatim, numGlyphs
// rewritten, rest verbatim.
func writeMaxp(w *parse.BinaryWriter, r *opentype.Reader, numGlyphs int) error {
	table, _ := r.RawTable(opentype.MustTag("maxp"))
	if len(table) < 6 {
		return &InvalidFontError{Msg: "maxp: unexpected table length"}
	}
	w.WriteBytes(table[:4])
	w.WriteUint16(uint16(numGlyphs))
	w.WriteBytes(table[6:])
	return nil
}

// writeHmtx implements spec.md §4.5: every glyph in glyphs gets a full
// long-metric record, in order, no trailing-advance compaction.
func writeHmtx(w *parse.BinaryWriter, r *opentype.Reader, glyphs []uint16) error {
	hmtx, err := r.HorizontalMetrics()
	if err != nil {
		return wrapTableError("hmtx", err)
	}
	for _, oldID := range glyphs {
		m, ok := hmtx.Get(oldID)
		if !ok {
			return &InvalidFontError{Msg: fmt.Sprintf("hmtx: missing metric for glyph %d", oldID)}
		}
		w.WriteUint16(m.AdvanceWidth)
		w.WriteInt16(m.LeftSideBearing)
	}
	return nil
}

// writeCmap implements spec.md §4.7: a single format-12 Microsoft
// Unicode subtable, grouping chars into maximal consecutive runs.
// startGlyphID for a run starting at position p is 1+p, since the
// glyph closure assigns new glyph ID 1+i to chars[i] positionally.
func writeCmap(w *parse.BinaryWriter, chars []rune) {
	type group struct {
		start, end   rune
		startGlyphID uint32
	}
	var groups []group
	for i := 0; i < len(chars); i++ {
		start := i
		for i+1 < len(chars) && chars[i+1] == chars[i]+1 {
			i++
		}
		groups = append(groups, group{chars[start], chars[i], uint32(1 + start)})
	}

	w.WriteUint16(0) // version
	w.WriteUint16(1) // numTables
	w.WriteUint16(3) // platformID: Windows
	w.WriteUint16(1) // encodingID: Unicode BMP
	w.WriteUint32(12)

	w.WriteUint16(12) // format
	w.WriteUint16(0)  // reserved
	w.WriteUint32(16 + 12*uint32(len(groups)))
	w.WriteUint32(0) // language
	w.WriteUint32(uint32(len(groups)))
	for _, g := range groups {
		w.WriteUint32(uint32(g.start))
		w.WriteUint32(uint32(g.end))
		w.WriteUint32(g.startGlyphID)
	}
}

// writeGlyf implements spec.md §4.8: copy each glyph's bytes unchanged,
// except for composite glyphs, whose component glyphIndex fields are
// rewritten in place from old to new glyph IDs.
func writeGlyf(w *parse.BinaryWriter, glyf *opentype.Glyphs, glyphs []uint16, glyphMap map[uint16]uint16) error {
	for _, oldID := range glyphs {
		raw, ok := glyf.Get(oldID)
		if !ok {
			return &InvalidFontError{Msg: fmt.Sprintf("glyf: missing loca entry for glyph %d", oldID)}
		}
		if len(raw) == 0 {
			continue
		}
		if len(raw) < 10 {
			return &InvalidFontError{Msg: fmt.Sprintf("glyf: truncated glyph %d", oldID)}
		}

		buf := append([]byte(nil), raw...)
		numberOfContours := int16(binary.BigEndian.Uint16(buf[0:2]))
		if numberOfContours < 0 {
			offset := 10
			for {
				if len(buf) < offset+4 {
					return &InvalidFontError{Msg: fmt.Sprintf("glyf: truncated composite glyph %d", oldID)}
				}
				flags := binary.BigEndian.Uint16(buf[offset:])
				oldComponent := binary.BigEndian.Uint16(buf[offset+2:])
				newComponent, ok := glyphMap[oldComponent]
				if !ok {
					return &InvalidFontError{Msg: fmt.Sprintf("glyf: invalid composite glyph %d", oldID)}
				}
				binary.BigEndian.PutUint16(buf[offset+2:], newComponent)

				length, more := opentype.CompositeComponentLength(flags)
				offset += int(length)
				if !more {
					break
				}
			}
		}
		w.WriteBytes(buf)
	}
	return nil
}

// writeLoca implements spec.md §4.9: emit in the input's offset format,
// advancing a running offset by each glyph's byte length in the input
// loca, regardless of whether that glyph's bytes were actually
// non-empty, then a trailing sentinel.
func writeLoca(w *parse.BinaryWriter, r *opentype.Reader, loca *opentype.Locations, glyphs []uint16) error {
	head := r.Head()
	if head == nil {
		return &MissingTableError{Tag: "head"}
	}

	write := func(offset uint32) {
		if head.IndexToLocFormat == 0 {
			w.WriteUint16(uint16(offset / 2))
		} else {
			w.WriteUint32(offset)
		}
	}

	var running uint32
	write(running)
	for _, oldID := range glyphs {
		length, ok := loca.Length(oldID)
		if !ok {
			return &InvalidFontError{Msg: fmt.Sprintf("loca: missing entry for glyph %d", oldID)}
		}
		running += length
		write(running)
	}
	return nil
}

// assembleProgram implements spec.md §4.11: build the 12-byte header
// plus table directory with binary-search hints, rebase each record's
// offset to be absolute, and prepend to body. records must already be
// sorted ascending by tag.
func assembleProgram(records []opentype.TableRecord, body []byte) []byte {
	numTables := uint16(len(records))
	maxPow2 := uint16(1)
	entrySelector := uint16(0)
	for maxPow2*2 <= numTables {
		maxPow2 *= 2
		entrySelector++
	}
	if numTables < maxPow2 {
		maxPow2 = numTables
	}
	searchRange := maxPow2 * 16
	rangeShift := numTables*16 - searchRange
	headerLen := uint32(12 + 16*int(numTables))

	header := parse.NewBinaryWriter(make([]byte, 0, headerLen))
	header.WriteUint32(0x00010000) // sfntVersion: TrueType
	header.WriteUint16(numTables)
	header.WriteUint16(searchRange)
	header.WriteUint16(entrySelector)
	header.WriteUint16(rangeShift)
	for _, rec := range records {
		header.WriteBytes(rec.Tag[:])
		header.WriteUint32(rec.CheckSum)
		header.WriteUint32(headerLen + rec.Offset)
		header.WriteUint32(rec.Length)
	}

	program := make([]byte, 0, int(headerLen)+len(body))
	program = append(program, header.Bytes()...)
	program = append(program, body...)
	return program
}
