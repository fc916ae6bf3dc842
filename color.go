package vterm

// Color selects a palette color. Values 0-7 are the standard ANSI colors,
// 8-15 the bright variants, 16-255 the xterm-256 palette. ColorDefault
// restores the terminal's configured default.
type Color int16

// ColorDefault selects the terminal default foreground or background.
const ColorDefault Color = -1

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightBlack
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
)

// appendFg appends foreground SGR parameters (no CSI prefix, no 'm' suffix)
func appendFg(dst []byte, c Color) []byte {
	switch {
	case c < 0:
		return append(dst, '3', '9')
	case c < 8:
		return appendInt(dst, 30+int(c))
	case c < 16:
		return appendInt(dst, 90+int(c)-8)
	default:
		dst = append(dst, "38;5;"...)
		return appendInt(dst, int(c))
	}
}

// appendBg appends background SGR parameters (no CSI prefix, no 'm' suffix)
func appendBg(dst []byte, c Color) []byte {
	switch {
	case c < 0:
		return append(dst, '4', '9')
	case c < 8:
		return appendInt(dst, 40+int(c))
	case c < 16:
		return appendInt(dst, 100+int(c)-8)
	default:
		dst = append(dst, "48;5;"...)
		return appendInt(dst, int(c))
	}
}
