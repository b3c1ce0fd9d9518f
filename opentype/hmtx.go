package opentype

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// HorizontalMetric is one glyph's advance width and left side bearing,
// as stored (or implied) by the "hmtx" table.
type HorizontalMetric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// HorizontalMetrics is the parsed "hmtx" table. Glyphs beyond
// NumberOfHMetrics-1 share the last long metric's advance width and carry
// their own left side bearing, per the OpenType "hmtx" trailing-array
// rule.
type HorizontalMetrics struct {
	longMetrics      []HorizontalMetric
	leftSideBearings []int16
}

// HorizontalMetrics parses the "hmtx" table. hhea.NumberOfHMetrics gives
// the count of full (advance width, lsb) pairs at the head of the table;
// any remaining glyphs carry only a left side bearing.
func (r *Reader) HorizontalMetrics() (*HorizontalMetrics, error) {
	if r.hhea == nil {
		return nil, fmt.Errorf("opentype: hmtx: missing hhea table")
	}
	if r.maxp == nil {
		return nil, fmt.Errorf("opentype: hmtx: missing maxp table")
	}
	b, ok := r.tables[MustTag("hmtx")]
	if !ok {
		return nil, fmt.Errorf("opentype: hmtx: %w", ErrMissingTable)
	}

	numberOfHMetrics := int(r.hhea.NumberOfHMetrics)
	numGlyphs := int(r.maxp.NumGlyphs)
	if numGlyphs < numberOfHMetrics {
		return nil, fmt.Errorf("opentype: hmtx: %w", ErrInvalidFont)
	}

	need := int64(numberOfHMetrics)*4 + int64(numGlyphs-numberOfHMetrics)*2
	if int64(len(b)) < need {
		return nil, fmt.Errorf("opentype: hmtx: %w", ErrInvalidFont)
	}

	p := parse.NewBinaryReader(b)
	hmtx := &HorizontalMetrics{
		longMetrics:      make([]HorizontalMetric, numberOfHMetrics),
		leftSideBearings: make([]int16, numGlyphs-numberOfHMetrics),
	}
	for i := range hmtx.longMetrics {
		hmtx.longMetrics[i] = HorizontalMetric{
			AdvanceWidth:    p.ReadUint16(),
			LeftSideBearing: p.ReadInt16(),
		}
	}
	for i := range hmtx.leftSideBearings {
		hmtx.leftSideBearings[i] = p.ReadInt16()
	}
	return hmtx, nil
}

// Get returns glyphID's advance width and left side bearing. Glyph IDs
// at or beyond the font's glyph count return false.
func (h *HorizontalMetrics) Get(glyphID uint16) (HorizontalMetric, bool) {
	i := int(glyphID)
	if i < len(h.longMetrics) {
		return h.longMetrics[i], true
	}
	i -= len(h.longMetrics)
	if i < len(h.leftSideBearings) {
		last := h.longMetrics[len(h.longMetrics)-1]
		return HorizontalMetric{
			AdvanceWidth:    last.AdvanceWidth,
			LeftSideBearing: h.leftSideBearings[i],
		}, true
	}
	return HorizontalMetric{}, false
}
