package vterm

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestOpenRequiresLiveTransport(t *testing.T) {
	tr := newScriptTransport()
	tr.open = false

	if _, err := Open(tr); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Expected ErrTransportClosed, got %v", err)
	}
	if _, err := Open(nil); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Expected ErrTransportClosed for nil transport, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	tr := newScriptTransport()
	s, err := Open(tr)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if tr.open {
		t.Error("Expected transport released on Close")
	}
	// Best-effort restore before release
	if !bytes.Contains(tr.written(), seqCursorShow) {
		t.Error("Expected cursor restored on Close")
	}

	// Idempotent
	if err := s.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}

	if _, _, err := s.Poll(0); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("Expected ErrSessionNotOpen from Poll, got %v", err)
	}
	if err := s.WriteText("x"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("Expected ErrSessionNotOpen from WriteText, got %v", err)
	}
	if _, err := s.QueryGeometry(); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("Expected ErrSessionNotOpen from QueryGeometry, got %v", err)
	}
}

func TestPollDeliversEvents(t *testing.T) {
	tr := newScriptTransport([]byte("a"), []byte("\x1b[A"), []byte("b"))
	s, err := Open(tr)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	want := []Event{
		{Type: EventRune, Rune: 'a'},
		{Type: EventKey, Key: KeyUp},
		{Type: EventRune, Rune: 'b'},
	}
	for i, w := range want {
		ev, ok, err := s.Poll(time.Second)
		if err != nil {
			t.Fatalf("Poll %d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("Poll %d timed out", i)
		}
		if ev.Type != w.Type || ev.Key != w.Key || ev.Rune != w.Rune {
			t.Errorf("Event %d: expected %+v, got %+v", i, w, ev)
		}
	}
}

func TestPollTimeout(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr)
	defer s.Close()

	start := time.Now()
	ev, ok, err := s.Poll(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if ok {
		t.Errorf("Expected timeout, got event %+v", ev)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Poll overshot its timeout")
	}
}

func TestPollNonBlocking(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr)
	defer s.Close()

	if _, ok, err := s.Poll(0); ok || err != nil {
		t.Errorf("Expected immediate empty poll, got ok=%v err=%v", ok, err)
	}
}

func TestPollZeroDeliversAvailableInput(t *testing.T) {
	// Input already sitting on the transport must surface even without a
	// wait window
	tr := newScriptTransport([]byte("a"))
	s, _ := Open(tr)
	defer s.Close()

	ev, ok, err := s.Poll(0)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !ok {
		t.Fatal("Poll(0) dropped available input")
	}
	if ev.Type != EventRune || ev.Rune != 'a' {
		t.Errorf("Expected rune a, got %+v", ev)
	}
}

func TestPollZeroDoesNotWaitOnPartial(t *testing.T) {
	// A buffered partial sequence must not stretch a zero timeout into the
	// escape wait
	tr := newScriptTransport([]byte{0x1b})
	s, _ := Open(tr, WithEscapeTimeout(200*time.Millisecond))
	defer s.Close()

	start := time.Now()
	if _, ok, err := s.Poll(0); ok || err != nil {
		t.Fatalf("Expected empty poll with a partial buffered, got ok=%v err=%v", ok, err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Poll(0) blocked on the escape wait")
	}

	// Once the bounded wait elapses, the partial concludes as a lone ESC
	time.Sleep(250 * time.Millisecond)
	ev, ok, err := s.Poll(0)
	if err != nil || !ok {
		t.Fatalf("Expected expired partial, got ok=%v err=%v", ok, err)
	}
	if ev.Type != EventKey || ev.Key != KeyEscape {
		t.Errorf("Expected KeyEscape, got %+v", ev)
	}
}

func TestPollReassemblesSplitSequence(t *testing.T) {
	// One arrow key delivered a byte at a time across three reads
	tr := newScriptTransport([]byte{0x1b}, []byte{'['}, []byte{'A'})
	s, _ := Open(tr)
	defer s.Close()

	ev, ok, err := s.Poll(time.Second)
	if err != nil || !ok {
		t.Fatalf("Poll failed: ok=%v err=%v", ok, err)
	}
	if ev.Type != EventKey || ev.Key != KeyUp {
		t.Errorf("Expected KeyUp, got %+v", ev)
	}
}

func TestPollLoneEscapeExpires(t *testing.T) {
	tr := newScriptTransport([]byte{0x1b})
	s, _ := Open(tr, WithEscapeTimeout(5*time.Millisecond))
	defer s.Close()

	start := time.Now()
	ev, ok, err := s.Poll(time.Second)
	if err != nil || !ok {
		t.Fatalf("Poll failed: ok=%v err=%v", ok, err)
	}
	if ev.Type != EventKey || ev.Key != KeyEscape {
		t.Errorf("Expected lone ESC as KeyEscape, got %+v", ev)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Lone ESC took longer than the bounded wait")
	}
}

func TestPollTransportClosed(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr)
	tr.open = false

	if _, _, err := s.Poll(time.Second); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Expected ErrTransportClosed, got %v", err)
	}
}

func TestQueryGeometry(t *testing.T) {
	tr := newScriptTransport()
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Contains(p, seqDSRCursor) {
			t.push([]byte("\x1b[24;80R"))
		}
	}
	s, _ := Open(tr)
	defer s.Close()

	g, err := s.QueryGeometry()
	if err != nil {
		t.Fatalf("QueryGeometry failed: %v", err)
	}
	if g.Rows != 24 || g.Cols != 80 {
		t.Errorf("Expected 24x80, got %dx%d", g.Rows, g.Cols)
	}

	// Probe parked the cursor in the far corner
	if !bytes.Contains(tr.written(), []byte("\x1b[999;999H")) {
		t.Error("Expected far-corner park in the probe stream")
	}
	if !bytes.Contains(tr.written(), seqRestoreCursor) {
		t.Error("Expected cursor restored after the probe")
	}

	// Cached afterward
	g2, err := s.Geometry()
	if err != nil {
		t.Fatalf("Geometry failed: %v", err)
	}
	if g2 != g {
		t.Errorf("Expected cached geometry %+v, got %+v", g, g2)
	}
}

func TestQueryGeometryPreservesInput(t *testing.T) {
	// A keystroke arrives interleaved ahead of the device reply
	tr := newScriptTransport()
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Contains(p, seqDSRCursor) {
			t.push([]byte("x\x1b[24;80R"))
		}
	}
	s, _ := Open(tr)
	defer s.Close()

	if _, err := s.QueryGeometry(); err != nil {
		t.Fatalf("QueryGeometry failed: %v", err)
	}

	ev, ok, err := s.Poll(0)
	if err != nil || !ok {
		t.Fatalf("Expected queued keystroke, got ok=%v err=%v", ok, err)
	}
	if ev.Type != EventRune || ev.Rune != 'x' {
		t.Errorf("Expected rune x, got %+v", ev)
	}
}

func TestQueryGeometryWindowSizeFallback(t *testing.T) {
	// The device never answers; the transport's local size is the fallback
	tr := &sizedScriptTransport{rows: 40, cols: 120}
	tr.scriptTransport.open = true
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Contains(p, seqDSRCursor) {
			t.open = false
		}
	}
	s, _ := Open(tr)

	g, err := s.QueryGeometry()
	if err != nil {
		t.Fatalf("Expected fallback geometry, got error: %v", err)
	}
	if g.Rows != 40 || g.Cols != 120 {
		t.Errorf("Expected 40x120, got %dx%d", g.Rows, g.Cols)
	}
}

func TestGeometryUnknown(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr)
	defer s.Close()

	if _, err := s.Geometry(); !errors.Is(err, ErrGeometryUnknown) {
		t.Errorf("Expected ErrGeometryUnknown, got %v", err)
	}
}

func TestGeometrySeeded(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr, WithGeometry(24, 80))
	defer s.Close()

	g, err := s.Geometry()
	if err != nil {
		t.Fatalf("Geometry failed: %v", err)
	}
	if g.Rows != 24 || g.Cols != 80 {
		t.Errorf("Expected seeded 24x80, got %dx%d", g.Rows, g.Cols)
	}
}

func TestFetchCursorFromMirror(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr, WithGeometry(24, 80))
	defer s.Close()

	if err := s.MoveCursor(5, 10); err != nil {
		t.Fatalf("MoveCursor failed: %v", err)
	}

	row, col, err := s.FetchCursor()
	if err != nil {
		t.Fatalf("FetchCursor failed: %v", err)
	}
	if row != 5 || col != 10 {
		t.Errorf("Expected (5,10), got (%d,%d)", row, col)
	}
	// Served from the mirror, no probe on the wire
	if bytes.Contains(tr.written(), seqDSRCursor) {
		t.Error("Expected no cursor probe for a valid mirror")
	}
}

func TestFetchCursorProbes(t *testing.T) {
	tr := newScriptTransport()
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Contains(p, seqDSRCursor) {
			t.push([]byte("\x1b[12;40R"))
		}
	}
	s, _ := Open(tr) // no geometry: mirror starts stale
	defer s.Close()

	row, col, err := s.FetchCursor()
	if err != nil {
		t.Fatalf("FetchCursor failed: %v", err)
	}
	if row != 11 || col != 39 {
		t.Errorf("Expected (11,39), got (%d,%d)", row, col)
	}
}

func TestPing(t *testing.T) {
	tr := newScriptTransport()
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Equal(p, seqDSRStatus) {
			t.push([]byte("\x1b[0n"))
		}
	}
	s, _ := Open(tr)
	defer s.Close()

	if err := s.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestPingMalfunction(t *testing.T) {
	tr := newScriptTransport()
	tr.onWrite = func(t *scriptTransport, p []byte) {
		if bytes.Equal(p, seqDSRStatus) {
			t.push([]byte("\x1b[3n"))
		}
	}
	s, _ := Open(tr)
	defer s.Close()

	if err := s.Ping(); err == nil {
		t.Error("Expected error for a malfunction reply")
	}
}

func TestOutputCommandsReachTransport(t *testing.T) {
	tr := newScriptTransport()
	s, _ := Open(tr, WithGeometry(24, 80))
	defer s.Close()

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := s.SetColor(ColorWhite, ColorBlue); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if err := s.MoveCursor(0, 0); err != nil {
		t.Fatalf("MoveCursor failed: %v", err)
	}
	if err := s.WriteText("hello"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if err := s.ShowCursor(false); err != nil {
		t.Fatalf("ShowCursor failed: %v", err)
	}

	got := tr.written()
	for _, want := range []string{"\x1b[2J", "\x1b[37;44m", "\x1b[1;1H", "hello", "\x1b[?25l"} {
		if !bytes.Contains(got, []byte(want)) {
			t.Errorf("Expected %q in the output stream", want)
		}
	}

	row, col, err := s.FetchCursor()
	if err != nil {
		t.Fatalf("FetchCursor failed: %v", err)
	}
	if row != 0 || col != 5 {
		t.Errorf("Expected mirror (0,5) after text, got (%d,%d)", row, col)
	}
}
