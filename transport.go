package vterm

import "time"

// Transport is the byte-stream endpoint connecting the library to the
// terminal. Implementations cover the physical channel only; all protocol
// interpretation happens above this interface.
//
// A Transport is exclusively owned by one Session for its lifetime.
type Transport interface {
	// Read reads up to len(p) bytes into p. A timeout of zero polls
	// without blocking; a negative timeout blocks until data arrives or
	// the transport closes. An expired timeout returns (0, nil), not an
	// error.
	Read(p []byte, timeout time.Duration) (int, error)

	// Write writes p in full or fails. A closed channel returns
	// ErrTransportClosed.
	Write(p []byte) (int, error)

	// IsOpen reports whether the channel is still usable.
	IsOpen() bool

	// Close releases the channel. Safe to call more than once.
	Close() error
}

// windowSizer is implemented by transports bound to a local window (stdio
// on a tty). The session uses it as a geometry fallback when the DSR probe
// gets no reply.
type windowSizer interface {
	WindowSize() (rows, cols int, err error)
}
