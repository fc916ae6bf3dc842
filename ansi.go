package vterm

// Pre-allocated ANSI sequence fragments (avoid allocations on the write path)
var (
	csi = []byte("\x1b[")

	seqSGR0          = []byte("\x1b[0m")
	seqClearScreen   = []byte("\x1b[2J")
	seqClearToOrigin = []byte("\x1b[1J")
	seqClearLine     = []byte("\x1b[2K")
	seqClearToEnd    = []byte("\x1b[0K")
	seqCursorHome    = []byte("\x1b[H")

	seqCursorShow = []byte("\x1b[?25h")
	seqCursorHide = []byte("\x1b[?25l")

	seqSaveCursor    = []byte("\x1b7")
	seqRestoreCursor = []byte("\x1b8")

	// DECAWM: auto-wrap mode. ?7l keeps the cursor pinned at the right
	// edge instead of wrapping.
	seqAutoWrapOn  = []byte("\x1b[?7h")
	seqAutoWrapOff = []byte("\x1b[?7l")

	// DECOM: origin mode, cursor addressing relative to the scroll region
	seqRegionOn  = []byte("\x1b[?6h")
	seqRegionOff = []byte("\x1b[?6l")

	// DECCOLM: column mode switch (side effect: clears the screen)
	seqCols132 = []byte("\x1b[?3h")
	seqCols80  = []byte("\x1b[?3l")

	// Device status report requests
	seqDSRStatus = []byte("\x1b[5n") // reply: CSI 0 n (ok) / CSI 3 n
	seqDSRCursor = []byte("\x1b[6n") // reply: CSI row ; col R

	// Charset designation: G0 US ASCII, G1 DEC special graphics
	seqG0US       = []byte("\x1b(B")
	seqG1Graphics = []byte("\x1b)0")

	seqRIS = []byte("\x1bc") // Reset to Initial State (emergency)
)

// SO/SI shift the active charset between G1 (graphics) and G0 (text)
const (
	shiftOut = 0x0e
	shiftIn  = 0x0f
)

// appendInt appends n in decimal without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func appendInt(dst []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return append(dst, byte(n)+'0')
	}
	if n < 100 {
		return append(dst, byte(n/10)+'0', byte(n%10)+'0')
	}
	if n < 1000 {
		return append(dst, byte(n/100)+'0', byte(n/10%10)+'0', byte(n%10)+'0')
	}
	// Fallback for >999 (rare)
	var buf [8]byte
	i := 7
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	return append(dst, buf[i+1:]...)
}

// appendCursorPos appends the 1-based positioning sequence for a 0-based
// row/column
func appendCursorPos(dst []byte, row, col int) []byte {
	dst = append(dst, csi...)
	dst = appendInt(dst, row+1)
	dst = append(dst, ';')
	dst = appendInt(dst, col+1)
	return append(dst, 'H')
}

// appendScrollRegion appends the DECSTBM sequence for 0-based top/bottom
func appendScrollRegion(dst []byte, top, bottom int) []byte {
	dst = append(dst, csi...)
	dst = appendInt(dst, top+1)
	dst = append(dst, ';')
	dst = appendInt(dst, bottom+1)
	return append(dst, 'r')
}
