package vterm

// EventType distinguishes input event categories
type EventType uint8

const (
	EventNone    EventType = iota
	EventRune              // Printable character (check Event.Rune)
	EventKey               // Control or function key (check Event.Key)
	EventUnknown           // Unrecognized sequence (check Event.Raw)

	// Internal: device replies identified by the decoder and consumed by
	// the session rather than delivered to the caller.
	eventCursorReport // CSI row ; col R
	eventStatusReport // CSI 0 n / CSI 3 n
)

// Event represents a decoded input event. Immutable once emitted;
// ownership transfers to the caller.
type Event struct {
	Type EventType
	Key  Key
	Rune rune
	Mod  Modifier

	// Raw holds the undecodable byte sequence for EventUnknown.
	Raw []byte

	// Cursor report payload, 0-based model coordinates.
	Row, Col int

	// Status report payload: true when the terminal reported no
	// malfunction (CSI 0 n).
	OK bool
}
