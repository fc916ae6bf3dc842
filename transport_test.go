package vterm

import (
	"bytes"
	"time"
)

// scriptTransport is an in-memory Transport for tests: reads come from a
// scripted queue of chunks (an empty chunk is one timeout), writes are
// recorded, and an onWrite hook can push replies like a live device.
type scriptTransport struct {
	reads   [][]byte
	writes  [][]byte
	open    bool
	onWrite func(t *scriptTransport, p []byte)
}

func newScriptTransport(chunks ...[]byte) *scriptTransport {
	return &scriptTransport{reads: chunks, open: true}
}

func (t *scriptTransport) Read(p []byte, timeout time.Duration) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}
	if len(t.reads) == 0 {
		// Nothing scheduled; let a little time pass so timeout-driven
		// loops make progress without spinning
		time.Sleep(50 * time.Microsecond)
		return 0, nil
	}
	chunk := t.reads[0]
	t.reads = t.reads[1:]
	if len(chunk) == 0 {
		return 0, nil // Scripted timeout
	}
	n := copy(p, chunk)
	if n < len(chunk) {
		t.reads = append([][]byte{chunk[n:]}, t.reads...)
	}
	return n, nil
}

func (t *scriptTransport) Write(p []byte) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}
	cp := append([]byte(nil), p...)
	t.writes = append(t.writes, cp)
	if t.onWrite != nil {
		t.onWrite(t, cp)
	}
	return len(p), nil
}

func (t *scriptTransport) IsOpen() bool {
	return t.open
}

func (t *scriptTransport) Close() error {
	t.open = false
	return nil
}

// push appends a read chunk, used by onWrite hooks to script replies
func (t *scriptTransport) push(p []byte) {
	t.reads = append(t.reads, p)
}

// written returns everything written so far as one stream
func (t *scriptTransport) written() []byte {
	return bytes.Join(t.writes, nil)
}

// sizedScriptTransport additionally reports a local window size
type sizedScriptTransport struct {
	scriptTransport
	rows, cols int
}

func (t *sizedScriptTransport) WindowSize() (int, int, error) {
	return t.rows, t.cols, nil
}
