package vterm

import (
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultEscapeTimeout is the bounded wait that distinguishes a lone ESC
// keypress from the start of an escape sequence.
const DefaultEscapeTimeout = 50 * time.Millisecond

// Probe retry policy: a refreshing terminal can answer late, so the DSR
// wait is generous and the request is re-sent on silence
const (
	probeAttempts = 12
	probeInterval = 250 * time.Millisecond
)

type sessionState uint8

const (
	sessionOpen sessionState = iota + 1
	sessionClosed
)

// Geometry holds the terminal dimensions
type Geometry struct {
	Rows, Cols int
}

// Session owns one Transport and drives the protocol in both directions.
// Single-threaded: one caller alternates between Poll and output commands;
// wrap externally for concurrent use.
type Session struct {
	t   Transport
	dec *Decoder
	enc *encoder

	state      sessionState
	escTimeout time.Duration

	queue   []Event // decoded input awaiting delivery
	readBuf []byte

	// Start of the current partial escape sequence's bounded wait
	pendingSince time.Time

	// Device replies captured out of the decode stream
	reportSeen bool
	reportRow  int
	reportCol  int
	statusSeen bool
	statusOK   bool
}

// Option configures a Session at open time
type Option func(*Session)

// WithEscapeTimeout overrides the lone-ESC disambiguation wait.
func WithEscapeTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.escTimeout = d
		}
	}
}

// WithDECGraphics translates Unicode box-drawing runes to the DEC special
// graphics charset, for VT-100 hardware without UTF-8 support.
func WithDECGraphics() Option {
	return func(s *Session) { s.enc.decGraphics = true }
}

// WithGeometry seeds the device dimensions for fixed-size terminals,
// making clamping effective before any size query.
func WithGeometry(rows, cols int) Option {
	return func(s *Session) { s.enc.setGeometry(rows, cols) }
}

// Open binds a session to a transport. No terminal I/O happens here; use
// Ping or Reset to probe or initialize the device.
func Open(t Transport, opts ...Option) (*Session, error) {
	if t == nil || !t.IsOpen() {
		return nil, fmt.Errorf("open: %w", ErrTransportClosed)
	}
	s := &Session{
		t:          t,
		dec:        NewDecoder(),
		enc:        newEncoder(t),
		state:      sessionOpen,
		escTimeout: DefaultEscapeTimeout,
		readBuf:    make([]byte, 256),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Poll returns the next input event. A zero timeout polls without
// blocking, a negative timeout blocks until an event arrives. An expired
// timeout returns ok == false with a nil error.
func (s *Session) Poll(timeout time.Duration) (Event, bool, error) {
	if s.state != sessionOpen {
		return Event{}, false, ErrSessionNotOpen
	}
	if ev, ok := s.pop(); ok {
		return ev, true, nil
	}

	block := timeout < 0
	var deadline time.Time
	if !block {
		deadline = time.Now().Add(timeout)
	}

	// Even an expired window gets one non-blocking read, so Poll(0) drains
	// input the transport already holds
	didRead := false

	for {
		// Conclude a partial sequence whose bounded wait has elapsed
		if s.dec.Pending() {
			if s.pendingSince.IsZero() {
				s.pendingSince = time.Now()
			}
			if time.Since(s.pendingSince) >= s.escTimeout {
				s.absorb(s.dec.ExpirePartial())
				s.pendingSince = time.Time{}
				if ev, ok := s.pop(); ok {
					return ev, true, nil
				}
			}
		}

		// Size this iteration's read window
		var slice time.Duration
		if block {
			slice = -1
		} else {
			slice = time.Until(deadline)
			if slice < 0 {
				slice = 0
			}
		}
		// A pending partial shortens the window to its remaining wait; it
		// never stretches a zero or expired one
		if s.dec.Pending() && slice != 0 {
			if w := s.escTimeout - time.Since(s.pendingSince); w <= 0 {
				slice = 0 // Wait just elapsed; take a non-blocking pass
			} else if slice < 0 || w < slice {
				slice = w
			}
		}
		if !block && slice <= 0 && didRead {
			return Event{}, false, nil
		}

		n, err := s.t.Read(s.readBuf, slice)
		didRead = true
		if err != nil {
			return Event{}, false, fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			if !s.t.IsOpen() {
				return Event{}, false, fmt.Errorf("poll: %w", ErrTransportClosed)
			}
			continue
		}

		s.feed(s.readBuf[:n])
		if ev, ok := s.pop(); ok {
			return ev, true, nil
		}
	}
}

// feed runs bytes through the decoder and restarts the partial-sequence
// clock
func (s *Session) feed(p []byte) {
	s.absorb(s.dec.Feed(p))
	if s.dec.Pending() {
		s.pendingSince = time.Now()
	} else {
		s.pendingSince = time.Time{}
	}
}

// absorb routes decoded events: device replies are captured for the probe
// paths, everything else queues for Poll
func (s *Session) absorb(events []Event) {
	for _, ev := range events {
		switch ev.Type {
		case eventCursorReport:
			s.reportSeen = true
			s.reportRow, s.reportCol = ev.Row, ev.Col
			// The reply names the true cursor position
			s.enc.curRow, s.enc.curCol = ev.Row, ev.Col
			s.enc.posValid = true
		case eventStatusReport:
			s.statusSeen = true
			s.statusOK = ev.OK
		default:
			s.queue = append(s.queue, ev)
		}
	}
}

func (s *Session) pop() (Event, bool) {
	if len(s.queue) == 0 {
		return Event{}, false
	}
	ev := s.queue[0]
	copy(s.queue, s.queue[1:])
	s.queue = s.queue[:len(s.queue)-1]
	return ev, true
}

// awaitReport pumps the decode path until the wanted reply arrives,
// queueing interleaved user input rather than dropping it. The request is
// re-sent on silence; gives up after the bounded retry window.
func (s *Session) awaitReport(request []byte, seen func() bool) error {
	for attempt := 0; attempt < probeAttempts; attempt++ {
		deadline := time.Now().Add(probeInterval)
		for !seen() {
			slice := time.Until(deadline)
			if slice <= 0 {
				break
			}
			if slice > s.escTimeout {
				slice = s.escTimeout
			}
			n, err := s.t.Read(s.readBuf, slice)
			if err != nil {
				return err
			}
			if n == 0 {
				if !s.t.IsOpen() {
					return ErrTransportClosed
				}
				// Silence long enough to conclude any partial sequence
				if s.dec.Pending() {
					s.absorb(s.dec.ExpirePartial())
					s.pendingSince = time.Time{}
				}
				continue
			}
			s.feed(s.readBuf[:n])
		}
		if seen() {
			return nil
		}
		if _, err := s.t.Write(request); err != nil {
			return err
		}
	}
	return ErrNoReply
}

// QueryGeometry measures the terminal by parking the cursor in the far
// corner and asking where it ended up (DSR 6). The reply is identified in
// the decode stream and consumed here, never delivered as an input event.
func (s *Session) QueryGeometry() (Geometry, error) {
	if s.state != sessionOpen {
		return Geometry{}, ErrSessionNotOpen
	}

	s.reportSeen = false
	e := s.enc
	e.buf = append(e.buf[:0], seqSaveCursor...)
	// Clamping is bypassed on purpose: the device pins the cursor at its
	// true bottom-right corner
	e.buf = appendCursorPos(e.buf, 998, 998)
	e.buf = append(e.buf, seqDSRCursor...)
	if _, err := s.t.Write(e.buf); err != nil {
		return Geometry{}, fmt.Errorf("query geometry: %w", err)
	}

	err := s.awaitReport(seqDSRCursor, func() bool { return s.reportSeen })

	// Put the cursor back regardless; the restored position predates the
	// probe, so the mirror goes stale either way
	s.t.Write(seqRestoreCursor)
	e.posValid = false

	if err != nil {
		// Probe silent; fall back to a locally reported window size
		if ws, ok := s.t.(windowSizer); ok {
			if rows, cols, werr := ws.WindowSize(); werr == nil && rows > 0 && cols > 0 {
				e.setGeometry(rows, cols)
				return Geometry{Rows: rows, Cols: cols}, nil
			}
		}
		return Geometry{}, fmt.Errorf("query geometry: %w", err)
	}

	rows, cols := s.reportRow+1, s.reportCol+1
	e.setGeometry(rows, cols)
	return Geometry{Rows: rows, Cols: cols}, nil
}

// Geometry returns the last known dimensions, or ErrGeometryUnknown if no
// query has succeeded. Never guesses a default.
func (s *Session) Geometry() (Geometry, error) {
	if s.state != sessionOpen {
		return Geometry{}, ErrSessionNotOpen
	}
	if !s.enc.sized {
		return Geometry{}, ErrGeometryUnknown
	}
	return Geometry{Rows: s.enc.rows, Cols: s.enc.cols}, nil
}

// FetchCursor returns the cursor position, probing the device (DSR 6)
// when the mirror is stale. This is the explicit re-synchronization path.
func (s *Session) FetchCursor() (row, col int, err error) {
	if s.state != sessionOpen {
		return 0, 0, ErrSessionNotOpen
	}
	if s.enc.posValid {
		return s.enc.curRow, s.enc.curCol, nil
	}

	s.reportSeen = false
	if _, err := s.t.Write(seqDSRCursor); err != nil {
		return 0, 0, fmt.Errorf("fetch cursor: %w", err)
	}
	if err := s.awaitReport(seqDSRCursor, func() bool { return s.reportSeen }); err != nil {
		return 0, 0, fmt.Errorf("fetch cursor: %w", err)
	}
	// absorb refreshed the mirror from the reply
	return s.reportRow, s.reportCol, nil
}

// Ping verifies the terminal is responsive (DSR 5, expecting "ok")
func (s *Session) Ping() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	s.statusSeen = false
	if _, err := s.t.Write(seqDSRStatus); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := s.awaitReport(seqDSRStatus, func() bool { return s.statusSeen }); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !s.statusOK {
		return fmt.Errorf("ping: terminal reported malfunction")
	}
	return nil
}

// Output commands, one per display intent. Each fails with
// ErrSessionNotOpen outside the open state and leaves the device mirror
// untouched on transport errors.

func (s *Session) MoveCursor(row, col int) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.moveCursor(row, col)
}

func (s *Session) WriteText(text string) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.writeText(text)
}

func (s *Session) SetColor(fg, bg Color) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.setColor(fg, bg)
}

func (s *Session) SetAttr(a Attr, on bool) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.setAttr(a, on)
}

func (s *Session) ClearLine() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.clearLine()
}

// ClearToEnd clears from the cursor to the end of the line
func (s *Session) ClearToEnd() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.clearToEnd()
}

func (s *Session) ClearScreen() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.clearScreen()
}

// ClearToOrigin clears from the cursor back to the top of the screen
func (s *Session) ClearToOrigin() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.clearToOrigin()
}

func (s *Session) ShowCursor(visible bool) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.showCursor(visible)
}

func (s *Session) SetAutoWrap(on bool) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.setAutoWrap(on)
}

func (s *Session) SetScrollRegion(top, bottom int) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.setScrollRegion(top, bottom)
}

func (s *Session) ClearScrollRegion() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.clearScrollRegion()
}

// SetColumns switches between 80 and 132 column mode
func (s *Session) SetColumns(cols int) error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.setColumns(cols)
}

func (s *Session) SaveCursor() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.saveCursor()
}

func (s *Session) RestoreCursor() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.restoreCursor()
}

// Reset puts the terminal into a known baseline state
func (s *Session) Reset() error {
	if s.state != sessionOpen {
		return ErrSessionNotOpen
	}
	return s.enc.reset()
}

// Close restores what it can and releases the transport. Idempotent; the
// transport is released even when prior operations failed.
func (s *Session) Close() error {
	if s.state == sessionClosed {
		return nil
	}
	s.state = sessionClosed

	if s.t.IsOpen() {
		// Best-effort restore; the channel may already be half dead
		s.t.Write(seqCursorShow)
		s.t.Write(seqSGR0)
		s.t.Write(seqAutoWrapOn)
	}
	return s.t.Close()
}

// EmergencyReset attempts to restore a terminal to a sane state.
// Call this from panic recovery when Close cannot run normally.
func EmergencyReset(w io.Writer) {
	w.Write(seqRegionOff)
	w.Write(seqCursorShow)
	w.Write(seqSGR0)
	w.Write(seqAutoWrapOn)
	w.Write(seqRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
