package vterm

import (
	"fmt"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// cursorSnapshot captures the mirror state covered by DECSC/DECRC
type cursorSnapshot struct {
	row, col int
	posValid bool
	fg, bg   Color
	attrs    Attr
	colorVal bool
	attrVal  bool
	inG1     bool
}

// encoder translates display commands into wire sequences while tracking a
// best-effort mirror of the device state. The mirror is a hint for
// coalescing and clamping, never ground truth; the session's probe path is
// the re-synchronization mechanism.
type encoder struct {
	t Transport

	// Geometry, when known
	rows, cols int
	sized      bool

	// Cursor mirror, 0-based
	curRow, curCol int
	posValid       bool

	// Style mirror for coalescing
	fg, bg   Color
	attrs    Attr
	colorVal bool
	attrVal  bool

	// Mode mirror
	autowrap bool
	visible  bool
	visValid bool
	inG1     bool

	// DEC special graphics translation for box-drawing runes
	decGraphics bool

	saved    cursorSnapshot
	hasSaved bool

	buf []byte // sequence assembly scratch
}

func newEncoder(t Transport) *encoder {
	return &encoder{
		t:   t,
		fg:  ColorDefault,
		bg:  ColorDefault,
		buf: make([]byte, 0, 64),
	}
}

// setGeometry records the device dimensions used for clamping
func (e *encoder) setGeometry(rows, cols int) {
	if rows < 1 || cols < 1 {
		return
	}
	e.rows, e.cols = rows, cols
	e.sized = true
}

// send writes one fully assembled command. All-or-nothing: the caller
// updates the mirror only on nil return.
func (e *encoder) send(seq []byte) error {
	if _, err := e.t.Write(seq); err != nil {
		return err
	}
	return nil
}

// moveCursor positions the cursor, clamping into the known geometry.
// With unknown geometry the move is sent verbatim and the position mirror
// goes stale until the next size query.
func (e *encoder) moveCursor(row, col int) error {
	if e.sized {
		if row < 0 {
			row = 0
		}
		if col < 0 {
			col = 0
		}
		if row >= e.rows {
			row = e.rows - 1
		}
		if col >= e.cols {
			col = e.cols - 1
		}
	}

	e.buf = appendCursorPos(e.buf[:0], row, col)
	if err := e.send(e.buf); err != nil {
		return err
	}
	e.curRow, e.curCol = row, col
	e.posValid = e.sized
	return nil
}

// setColor updates foreground and background, skipping the write when the
// mirror already reflects both
func (e *encoder) setColor(fg, bg Color) error {
	if e.colorVal && fg == e.fg && bg == e.bg {
		return nil
	}

	e.buf = append(e.buf[:0], csi...)
	e.buf = appendFg(e.buf, fg)
	e.buf = append(e.buf, ';')
	e.buf = appendBg(e.buf, bg)
	e.buf = append(e.buf, 'm')
	if err := e.send(e.buf); err != nil {
		return err
	}
	e.fg, e.bg = fg, bg
	e.colorVal = true
	return nil
}

// setAttr turns one attribute on or off. The wire protocol has no reliable
// per-attribute off, so any change resets and replays the full style.
func (e *encoder) setAttr(a Attr, on bool) error {
	next := e.attrs
	if on {
		next |= a
	} else {
		next &^= a
	}
	if e.attrVal && next == e.attrs {
		return nil
	}

	e.buf = append(e.buf[:0], csi...)
	e.buf = append(e.buf, '0')
	e.buf = appendAttrs(e.buf, next)
	e.buf = append(e.buf, ';')
	e.buf = appendFg(e.buf, e.fg)
	e.buf = append(e.buf, ';')
	e.buf = appendBg(e.buf, e.bg)
	e.buf = append(e.buf, 'm')
	if err := e.send(e.buf); err != nil {
		return err
	}
	e.attrs = next
	e.attrVal = true
	e.colorVal = true
	return nil
}

// writeText sends text at the current position, advancing the cursor
// mirror by display width. CR and LF adjust the mirror; other control
// bytes pass through but invalidate it.
func (e *encoder) writeText(s string) error {
	if s == "" {
		return nil
	}

	e.buf = e.buf[:0]
	row, col := e.curRow, e.curCol
	valid := e.posValid
	inG1 := e.inG1

	for _, r := range s {
		if r == '\r' {
			e.buf = append(e.buf, '\r')
			col = 0
			continue
		}
		if r == '\n' {
			e.buf = append(e.buf, '\n')
			row++
			if e.sized && row >= e.rows {
				valid = false // scrolled
			}
			continue
		}
		if r < 0x20 || r == 0x7f {
			e.buf = append(e.buf, byte(r))
			valid = false
			continue
		}

		if g, ok := decGraphics[r]; ok && e.decGraphics {
			if !inG1 {
				e.buf = append(e.buf, shiftOut)
				inG1 = true
			}
			e.buf = append(e.buf, g)
			col++
		} else {
			if inG1 {
				e.buf = append(e.buf, shiftIn)
				inG1 = false
			}
			e.buf = utf8.AppendRune(e.buf, r)
			col += runewidth.RuneWidth(r)
		}

		if e.sized && col >= e.cols {
			if e.autowrap {
				col = 0
				row++
				if row >= e.rows {
					valid = false
				}
			} else {
				col = e.cols - 1
			}
		}
	}

	if err := e.send(e.buf); err != nil {
		return err
	}
	e.inG1 = inG1
	e.posValid = valid
	if valid {
		e.curRow, e.curCol = row, col
	}
	return nil
}

func (e *encoder) clearLine() error {
	return e.send(seqClearLine)
}

func (e *encoder) clearToEnd() error {
	return e.send(seqClearToEnd)
}

func (e *encoder) clearScreen() error {
	return e.send(seqClearScreen)
}

func (e *encoder) clearToOrigin() error {
	return e.send(seqClearToOrigin)
}

func (e *encoder) showCursor(visible bool) error {
	if e.visValid && e.visible == visible {
		return nil
	}
	seq := seqCursorHide
	if visible {
		seq = seqCursorShow
	}
	if err := e.send(seq); err != nil {
		return err
	}
	e.visible = visible
	e.visValid = true
	return nil
}

func (e *encoder) setAutoWrap(on bool) error {
	if e.autowrap == on {
		return nil
	}
	seq := seqAutoWrapOff
	if on {
		seq = seqAutoWrapOn
	}
	if err := e.send(seq); err != nil {
		return err
	}
	e.autowrap = on
	return nil
}

// setScrollRegion confines scrolling to rows [top, bottom] (0-based,
// inclusive) and enables origin mode. The cursor homes to the region
// origin, position mirror included.
func (e *encoder) setScrollRegion(top, bottom int) error {
	if top < 0 || bottom <= top {
		return fmt.Errorf("vterm: invalid scroll region %d..%d", top, bottom)
	}
	if e.sized && bottom >= e.rows {
		bottom = e.rows - 1
	}

	e.buf = appendScrollRegion(e.buf[:0], top, bottom)
	e.buf = append(e.buf, seqRegionOn...)
	if err := e.send(e.buf); err != nil {
		return err
	}
	e.posValid = false
	return nil
}

func (e *encoder) clearScrollRegion() error {
	if err := e.send(seqRegionOff); err != nil {
		return err
	}
	e.posValid = false
	return nil
}

// setColumns switches between 80 and 132 column mode. DECCOLM clears the
// screen and homes the cursor as a side effect.
func (e *encoder) setColumns(cols int) error {
	var seq []byte
	switch cols {
	case 80:
		seq = seqCols80
	case 132:
		seq = seqCols132
	default:
		return fmt.Errorf("vterm: unsupported column mode %d", cols)
	}
	if err := e.send(seq); err != nil {
		return err
	}
	if e.sized {
		e.cols = cols
	}
	e.curRow, e.curCol = 0, 0
	e.posValid = true
	return nil
}

func (e *encoder) saveCursor() error {
	if err := e.send(seqSaveCursor); err != nil {
		return err
	}
	e.saved = cursorSnapshot{
		row: e.curRow, col: e.curCol, posValid: e.posValid,
		fg: e.fg, bg: e.bg, attrs: e.attrs,
		colorVal: e.colorVal, attrVal: e.attrVal,
		inG1: e.inG1,
	}
	e.hasSaved = true
	return nil
}

func (e *encoder) restoreCursor() error {
	if err := e.send(seqRestoreCursor); err != nil {
		return err
	}
	if !e.hasSaved {
		// Device restored something we never saw
		e.posValid = false
		e.colorVal = false
		e.attrVal = false
		return nil
	}
	s := e.saved
	e.curRow, e.curCol, e.posValid = s.row, s.col, s.posValid
	e.fg, e.bg, e.attrs = s.fg, s.bg, s.attrs
	e.colorVal, e.attrVal = s.colorVal, s.attrVal
	e.inG1 = s.inG1
	return nil
}

// reset puts the terminal into a known baseline: default style, no scroll
// region, cleared screen, cursor home, US text charset with graphics on
// G1, auto-wrap off
func (e *encoder) reset() error {
	e.buf = append(e.buf[:0], seqSGR0...)
	e.buf = append(e.buf, seqRegionOff...)
	e.buf = append(e.buf, seqClearScreen...)
	e.buf = append(e.buf, seqCursorHome...)
	e.buf = append(e.buf, seqG0US...)
	e.buf = append(e.buf, seqG1Graphics...)
	e.buf = append(e.buf, seqAutoWrapOff...)
	e.buf = append(e.buf, shiftIn)
	if err := e.send(e.buf); err != nil {
		return err
	}

	e.curRow, e.curCol = 0, 0
	e.posValid = true
	e.fg, e.bg = ColorDefault, ColorDefault
	e.attrs = AttrNone
	e.colorVal = true
	e.attrVal = true
	e.autowrap = false
	e.inG1 = false
	return nil
}
