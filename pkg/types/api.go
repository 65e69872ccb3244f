package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindAttach ErrKind = iota // segment missing, unmappable, or control block short
	ErrKindBounds                // indexed access outside [0, count)
	ErrKindDecode                // stored bytes do not decode (UTF-8, snapshot)
	ErrKindConfig                // bad layout, address, or option input
	ErrKindState                 // invalid operation for current state (e.g. closed)
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations.
var (
	// ErrIndexOutOfRange indicates indexed access outside a region's cell count.
	ErrIndexOutOfRange = &Error{Kind: ErrKindBounds, Msg: "index out of range"}
	// ErrClosed indicates an operation on a closed device or segment.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "device is closed"}
	// ErrBadAddress indicates an address that maps to no memory area.
	ErrBadAddress = &Error{Kind: ErrKindConfig, Msg: "malformed address"}
)
