//go:build !unix

package vterm

// resetTerminalMode is a no-op where termios recovery is unavailable
func resetTerminalMode() {}
