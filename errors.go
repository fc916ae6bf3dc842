package vterm

import "errors"

var (
	// ErrTransportClosed reports that the underlying channel is gone.
	// Fatal to the session; the caller must re-open or abandon it.
	ErrTransportClosed = errors.New("vterm: transport closed")

	// ErrSessionNotOpen reports an operation on a session outside the
	// open state.
	ErrSessionNotOpen = errors.New("vterm: session not open")

	// ErrGeometryUnknown reports that no size query has succeeded yet.
	ErrGeometryUnknown = errors.New("vterm: geometry unknown")

	// ErrNoReply reports that the terminal did not answer a status or
	// cursor probe within the bounded retry window.
	ErrNoReply = errors.New("vterm: no reply from terminal")
)
