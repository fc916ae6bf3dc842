//go:build unix

package vterm

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// StdioTransport binds the library to the process's own terminal through
// redirected stdin/stdout, holding it in raw mode for the transport's
// lifetime.
type StdioTransport struct {
	in, out     *os.File
	inFd, outFd int
	saved       *term.State
	open        bool
	sigCh       chan os.Signal
}

// Stdio opens the stdio transport and enters raw mode.
func Stdio() (*StdioTransport, error) {
	t := &StdioTransport{
		in:    os.Stdin,
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}

	if !term.IsTerminal(t.inFd) {
		return nil, fmt.Errorf("stdio: stdin is not a terminal")
	}

	saved, err := term.MakeRaw(t.inFd)
	if err != nil {
		return nil, fmt.Errorf("stdio: raw mode: %w", err)
	}
	t.saved = saved

	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)

	t.open = true
	return t, nil
}

// Read polls stdin with the given timeout. An expired timeout returns
// (0, nil); EOF surfaces as ErrTransportClosed.
func (t *StdioTransport) Read(p []byte, timeout time.Duration) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}

	block := timeout < 0
	var deadline time.Time
	if !block {
		deadline = time.Now().Add(timeout)
	}

	for {
		ms := -1
		if !block {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int(remaining.Milliseconds())
			if ms == 0 && remaining > 0 {
				ms = 1 // Sub-millisecond waits round up, not down to a busy poll
			}
		}

		fds := []unix.PollFd{
			{Fd: int32(t.inFd), Events: unix.POLLIN},
		}
		n, err := unix.Poll(fds, ms)
		if err != nil {
			if err == unix.EINTR {
				if !block && time.Now().After(deadline) {
					return 0, nil
				}
				continue
			}
			return 0, fmt.Errorf("stdio: poll: %w", err)
		}
		if n == 0 {
			return 0, nil // Timeout
		}

		rn, err := unix.Read(t.inFd, p)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return 0, fmt.Errorf("stdio: read: %w", err)
		}
		if rn == 0 {
			// EOF: the channel is gone
			t.open = false
			return 0, ErrTransportClosed
		}
		return rn, nil
	}
}

func (t *StdioTransport) Write(p []byte) (int, error) {
	if !t.open {
		return 0, ErrTransportClosed
	}
	return t.out.Write(p)
}

func (t *StdioTransport) IsOpen() bool {
	return t.open
}

// Close restores the saved terminal mode and releases the transport.
// Safe to call more than once.
func (t *StdioTransport) Close() error {
	if !t.open && t.saved == nil {
		return nil
	}
	t.open = false
	signal.Stop(t.sigCh)
	if t.saved != nil {
		term.Restore(t.inFd, t.saved)
		t.saved = nil
	}
	return nil
}

// WindowSize reports the local window dimensions via TIOCGWINSZ. Used by
// the session as a geometry fallback when the DSR probe gets no reply.
func (t *StdioTransport) WindowSize() (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(t.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("stdio: winsize: %w", err)
	}
	return int(ws.Row), int(ws.Col), nil
}

// Resized reports and clears a pending SIGWINCH. Callers that care about
// live resizes check this between polls and re-query geometry.
func (t *StdioTransport) Resized() bool {
	select {
	case <-t.sigCh:
		return true
	default:
		return false
	}
}

// resetTerminalMode attempts to restore the terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		// Get current termios, enable ECHO and ICANON
		if termios, err := unix.IoctlGetTermios(fd, unix.TCGETS); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			unix.IoctlSetTermios(fd, unix.TCSETS, termios)
		}
	}
}
