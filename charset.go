package vterm

// decGraphics maps Unicode runes onto the DEC special graphics charset,
// written through G1 with SO/SI shifts. Covers the VT-100 line-drawing set
// plus the handful of symbols the hardware can render.
var decGraphics = map[rune]byte{
	// Box drawing
	'─': 'q',
	'│': 'x',
	'┌': 'l',
	'┐': 'k',
	'└': 'm',
	'┘': 'j',
	'┼': 'n',
	'├': 't',
	'┤': 'u',
	'┴': 'v',
	'┬': 'w',

	// Symbols
	'°': 'f', // degree
	'±': 'g', // plus-minus
	'≤': 'y', // less-or-equal
	'≥': 'z', // greater-or-equal
	'π': '{', // pi
	'≠': '|', // not-equal
	'£': '}', // pound
	'·': '~', // middle dot
	'•': '~', // bullet, same glyph
}
