package font

import (
	"errors"
	"fmt"

	"github.com/tdewolff/otfsubset/opentype"
)

// UnsupportedFontError is returned when the input font cannot be
// subsetted at all, independent of the requested characters or tables
// (currently: CFF outline fonts).
type UnsupportedFontError struct {
	Reason string
}

func (e *UnsupportedFontError) Error() string {
	return fmt.Sprintf("font: unsupported font: %s", e.Reason)
}

// UnsupportedTableError is returned for a requested table tag the
// subsetter doesn't know how to dispatch, either because it isn't a
// well-formed 4-byte tag or because it isn't one of the tags
// recognized by the table dispatch (see spec §4.2).
type UnsupportedTableError struct {
	Tag string
}

func (e *UnsupportedTableError) Error() string {
	return fmt.Sprintf("font: unsupported table: %s", e.Tag)
}

// MissingTableError is returned when an internal lookup needs a table
// that the font's directory doesn't carry. Top-level dispatch over the
// caller's requested tags skips missing tables silently instead of
// raising this; it only surfaces from tables read internally (for
// instance the cmap, loca and glyf tables the glyph closure always
// reads, or head/hhea/maxp/hmtx when building a Font).
type MissingTableError struct {
	Tag string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("font: missing table: %s", e.Tag)
}

// MissingCharacterError is returned when a requested character has no
// entry in the input font's character map.
type MissingCharacterError struct {
	Char rune
}

func (e *MissingCharacterError) Error() string {
	return fmt.Sprintf("font: missing character: %q", e.Char)
}

// InvalidFontError covers any structural inconsistency encountered
// while reading or rewriting table data: a missing glyf entry, a
// truncated table, an out-of-range glyph width, a composite component
// referencing a glyph outside the closure, and so on.
type InvalidFontError struct {
	Msg string
}

func (e *InvalidFontError) Error() string {
	return fmt.Sprintf("font: invalid font: %s", e.Msg)
}

// IoError wraps a failure writing to the in-memory output buffer.
// Practically unreachable (byte slices never fail to grow), but
// propagated rather than assumed impossible.
type IoError struct {
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("font: io: %s", e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// wrapTableError translates an error from an opentype.* accessor into
// this package's typed errors, so callers can errors.As for
// MissingTableError/InvalidFontError per spec.md §7 instead of seeing
// the opentype package's own sentinel errors. tag names the table the
// failing accessor was reading. Errors opentype doesn't classify (bad
// sfnt version, bad magic number, and the like) pass through unchanged,
// since they don't map to one of this package's kinds.
func wrapTableError(tag string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, opentype.ErrMissingTable) {
		return &MissingTableError{Tag: tag}
	}
	if errors.Is(err, opentype.ErrInvalidFont) {
		return &InvalidFontError{Msg: err.Error()}
	}
	return err
}
