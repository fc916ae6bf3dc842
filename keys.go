package vterm

// Key identifies a decoded non-rune input key.
type Key uint16

const (
	KeyNone Key = iota

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab // Shift+Tab
	KeyBackspace
	KeyDelete

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Ctrl+letter (Ctrl+A = 0x01, Ctrl+Z = 0x1A)
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlK
	KeyCtrlL
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// Ctrl+special
	KeyCtrlSpace
	KeyCtrlBackslash
	KeyCtrlBracketRight
	KeyCtrlCaret
	KeyCtrlUnderscore
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

// escapeSequence pairs the bytes between the introducer and the caller's
// key. For CSI entries seq is everything after ESC [ including the final
// byte ("A" for up arrow); for SS3 entries the single byte after ESC O.
type escapeSequence struct {
	seq string
	key Key
	mod Modifier
}

// Common xterm/VT100 CSI table; syntactically valid sequences outside it
// surface as EventUnknown with the raw bytes attached.
var csiSequences = []escapeSequence{
	// Arrow keys
	{"A", KeyUp, ModNone},
	{"B", KeyDown, ModNone},
	{"C", KeyRight, ModNone},
	{"D", KeyLeft, ModNone},
	{"Z", KeyBacktab, ModShift}, // Shift+Tab

	// Arrow keys with modifiers (xterm style: ESC [ 1 ; mod X)
	{"1;2A", KeyUp, ModShift},
	{"1;2B", KeyDown, ModShift},
	{"1;2C", KeyRight, ModShift},
	{"1;2D", KeyLeft, ModShift},
	{"1;3A", KeyUp, ModAlt},
	{"1;3B", KeyDown, ModAlt},
	{"1;3C", KeyRight, ModAlt},
	{"1;3D", KeyLeft, ModAlt},
	{"1;5A", KeyUp, ModCtrl},
	{"1;5B", KeyDown, ModCtrl},
	{"1;5C", KeyRight, ModCtrl},
	{"1;5D", KeyLeft, ModCtrl},

	// Navigation
	{"H", KeyHome, ModNone},
	{"F", KeyEnd, ModNone},
	{"1~", KeyHome, ModNone},
	{"4~", KeyEnd, ModNone},
	{"5~", KeyPageUp, ModNone},
	{"6~", KeyPageDown, ModNone},
	{"2~", KeyInsert, ModNone},
	{"3~", KeyDelete, ModNone},

	// Function keys (xterm)
	{"11~", KeyF1, ModNone},
	{"12~", KeyF2, ModNone},
	{"13~", KeyF3, ModNone},
	{"14~", KeyF4, ModNone},
	{"15~", KeyF5, ModNone},
	{"17~", KeyF6, ModNone},
	{"18~", KeyF7, ModNone},
	{"19~", KeyF8, ModNone},
	{"20~", KeyF9, ModNone},
	{"21~", KeyF10, ModNone},
	{"23~", KeyF11, ModNone},
	{"24~", KeyF12, ModNone},
}

// SS3 sequences (ESC O ...), sent in application cursor/keypad mode
var ss3Sequences = []escapeSequence{
	{"A", KeyUp, ModNone},
	{"B", KeyDown, ModNone},
	{"C", KeyRight, ModNone},
	{"D", KeyLeft, ModNone},
	{"H", KeyHome, ModNone},
	{"F", KeyEnd, ModNone},
	{"P", KeyF1, ModNone},
	{"Q", KeyF2, ModNone},
	{"R", KeyF3, ModNone},
	{"S", KeyF4, ModNone},
}

var csiMap = buildSequenceMap(csiSequences)
var ss3Map = buildSequenceMap(ss3Sequences)

func buildSequenceMap(seqs []escapeSequence) map[string]escapeSequence {
	m := make(map[string]escapeSequence, len(seqs))
	for _, s := range seqs {
		m[s.seq] = s
	}
	return m
}

// The string(seq) conversions below stay inline in the map index so they
// do not allocate on the decode hot path.

func lookupCSI(seq []byte) (Key, Modifier, bool) {
	if s, ok := csiMap[string(seq)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}

func lookupSS3(seq []byte) (Key, Modifier, bool) {
	if s, ok := ss3Map[string(seq)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}

// controlKey resolves a C0 byte to its key, KeyNone for bytes with no
// keyboard meaning
func controlKey(b byte) Key {
	switch b {
	case 0x00:
		return KeyCtrlSpace
	case 0x01:
		return KeyCtrlA
	case 0x02:
		return KeyCtrlB
	case 0x03:
		return KeyCtrlC
	case 0x04:
		return KeyCtrlD
	case 0x05:
		return KeyCtrlE
	case 0x06:
		return KeyCtrlF
	case 0x07:
		return KeyCtrlG
	case 0x08: // Ctrl+H or Backspace
		return KeyBackspace
	case 0x09:
		return KeyTab
	case 0x0a, 0x0d: // LF, CR
		return KeyEnter
	case 0x0b:
		return KeyCtrlK
	case 0x0c:
		return KeyCtrlL
	case 0x0e:
		return KeyCtrlN
	case 0x0f:
		return KeyCtrlO
	case 0x10:
		return KeyCtrlP
	case 0x11:
		return KeyCtrlQ
	case 0x12:
		return KeyCtrlR
	case 0x13:
		return KeyCtrlS
	case 0x14:
		return KeyCtrlT
	case 0x15:
		return KeyCtrlU
	case 0x16:
		return KeyCtrlV
	case 0x17:
		return KeyCtrlW
	case 0x18:
		return KeyCtrlX
	case 0x19:
		return KeyCtrlY
	case 0x1a:
		return KeyCtrlZ
	case 0x1c:
		return KeyCtrlBackslash
	case 0x1d:
		return KeyCtrlBracketRight
	case 0x1e:
		return KeyCtrlCaret
	case 0x1f:
		return KeyCtrlUnderscore
	}
	return KeyNone
}
