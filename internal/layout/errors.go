package layout

import "errors"

var (
	// ErrShortControl indicates the device segment lacks a complete control block.
	ErrShortControl = errors.New("layout: control block truncated")
	// ErrBadString indicates string table bytes that do not decode as UTF-8.
	ErrBadString = errors.New("layout: invalid utf-8 in string table")
)
