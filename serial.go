package vterm

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialTransport binds the library to a terminal attached over a serial
// line.
type SerialTransport struct {
	port serial.Port
	open bool

	// Last applied read timeout, to skip redundant ioctls
	timeout    time.Duration
	timeoutSet bool
}

// OpenSerial opens a serial port as a transport. Standard 8N1 framing;
// the terminal end decides everything else.
func OpenSerial(device string, baud int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}
	return &SerialTransport{port: port, open: true}, nil
}

// Read reads with the given timeout. The port-level read timeout maps
// directly: an expired window returns (0, nil).
func (t *SerialTransport) Read(p []byte, timeout time.Duration) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}

	want := timeout
	if want < 0 {
		want = serial.NoTimeout
	}
	if !t.timeoutSet || want != t.timeout {
		if err := t.port.SetReadTimeout(want); err != nil {
			return 0, fmt.Errorf("serial: set timeout: %w", err)
		}
		t.timeout = want
		t.timeoutSet = true
	}

	n, err := t.port.Read(p)
	if err != nil {
		t.open = false
		return 0, fmt.Errorf("serial: read: %w", err)
	}
	return n, nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}
	n, err := t.port.Write(p)
	if err != nil {
		t.open = false
		return n, fmt.Errorf("serial: write: %w", err)
	}
	return n, nil
}

func (t *SerialTransport) IsOpen() bool {
	return t.open
}

// Close releases the port. Safe to call more than once.
func (t *SerialTransport) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	return t.port.Close()
}
