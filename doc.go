// Package vterm provides direct VT-100/ANSI control of a terminal attached
// over a serial line or redirected stdio.
//
// Features:
//   - Escape-sequence input decoding with explicit parser state (chunk-safe,
//     UTF-8 aware, bounded lone-ESC disambiguation)
//   - Output encoding with a best-effort device mirror (cursor position,
//     colors, attributes) and redundant-command coalescing
//   - Device status and cursor-position probes through the same decode path
//   - Serial and stdio transport bindings behind one byte-stream contract
//   - Clean terminal restoration on close/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI
// sequences. Target devices: VT-100 family hardware and xterm-compatible
// emulators.
//
// A Session is single-threaded by design: one caller alternates between
// Poll and output commands. Wrap it externally if concurrent access is
// needed.
package vterm
