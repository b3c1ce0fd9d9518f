package opentype

import "errors"

// ErrInvalidFont is returned for structurally malformed font data: a
// truncated table, an offset/length pair that runs past the end of the
// program, or a table whose fixed-size header is missing.
var ErrInvalidFont = errors.New("invalid font data")

// ErrMissingTable is returned when an accessor is asked to parse a table
// tag that isn't present in the font's directory.
var ErrMissingTable = errors.New("missing table")
