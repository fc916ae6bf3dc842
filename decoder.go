package vterm

// decoderState is the escape parser's current mode. Exactly one live
// instance per session; reset to ground after every completed or abandoned
// sequence.
type decoderState uint8

const (
	stateGround decoderState = iota
	stateEscape              // ESC buffered, dispatch byte pending
	stateCSI                 // ESC [ seen, accumulating parameter bytes
	stateSS3                 // ESC O seen, final byte pending
	stateUTF8                // multibyte rune, continuation bytes pending
)

// maxCSIParams bounds parameter accumulation; longer sequences are treated
// as malformed
const maxCSIParams = 16

// Decoder turns an arbitrarily chunked byte stream into input events.
// Restartable across calls: partial sequences persist between Feed
// invocations. Not safe for concurrent use.
type Decoder struct {
	state  decoderState
	params []byte // CSI parameter bytes, final byte excluded

	// UTF-8 accumulation
	rn     rune
	rnMin  rune // smallest value the sequence length may encode
	rnNeed int  // continuation bytes outstanding

	seq    []byte // lookup scratch
	events []Event
}

// NewDecoder creates a decoder in the ground state.
func NewDecoder() *Decoder {
	return &Decoder{
		params: make([]byte, 0, maxCSIParams),
		seq:    make([]byte, 0, maxCSIParams+1),
	}
}

// Feed consumes raw bytes and returns the events completed by them.
// The returned slice is reused by the next Feed or ExpirePartial call.
func (d *Decoder) Feed(p []byte) []Event {
	d.events = d.events[:0]
	for _, b := range p {
		d.step(b)
	}
	return d.events
}

// Pending reports whether a partial sequence is buffered.
func (d *Decoder) Pending() bool {
	return d.state != stateGround
}

// ExpirePartial concludes any partially accumulated sequence after the
// caller's bounded wait: a buffered lone ESC becomes KeyEscape, dangling
// CSI/SS3 prefixes surface as EventUnknown, and an incomplete UTF-8 rune
// is discarded. The returned slice is reused by the next Feed call.
func (d *Decoder) ExpirePartial() []Event {
	d.events = d.events[:0]
	switch d.state {
	case stateEscape:
		d.emitKey(KeyEscape, ModNone)
	case stateCSI:
		raw := make([]byte, 0, len(d.params)+2)
		raw = append(raw, 0x1b, '[')
		d.emitUnknown(append(raw, d.params...))
	case stateSS3:
		d.emitUnknown([]byte{0x1b, 'O'})
	case stateUTF8:
		// Partial rune, nothing worth surfacing
	}
	d.reset()
	return d.events
}

func (d *Decoder) reset() {
	d.state = stateGround
	d.params = d.params[:0]
	d.rn = 0
	d.rnNeed = 0
}

func (d *Decoder) step(b byte) {
	switch d.state {
	case stateGround:
		d.ground(b)
	case stateEscape:
		d.escape(b)
	case stateCSI:
		d.csi(b)
	case stateSS3:
		d.ss3(b)
	case stateUTF8:
		d.utf8Cont(b)
	}
}

func (d *Decoder) ground(b byte) {
	// Fast path: printable ASCII
	if b >= 0x20 && b < 0x7f {
		d.emitRune(rune(b))
		return
	}

	if b == 0x1b {
		d.state = stateEscape
		return
	}

	// DEL acts as backspace on most keyboards
	if b == 0x7f {
		d.emitKey(KeyBackspace, ModNone)
		return
	}

	// Control characters
	if b < 0x20 {
		if k := controlKey(b); k != KeyNone {
			d.emitKey(k, ModNone)
		} else {
			d.emitUnknown([]byte{b})
		}
		return
	}

	// UTF-8 lead byte
	switch {
	case b&0xe0 == 0xc0:
		d.startRune(rune(b&0x1f), 0x80, 1)
	case b&0xf0 == 0xe0:
		d.startRune(rune(b&0x0f), 0x800, 2)
	case b&0xf8 == 0xf0:
		d.startRune(rune(b&0x07), 0x10000, 3)
	default:
		// Stray continuation byte, discard and resume
	}
}

func (d *Decoder) escape(b byte) {
	switch {
	case b == '[':
		d.state = stateCSI
		d.params = d.params[:0]
	case b == 'O':
		d.state = stateSS3
	case b == 0x1b:
		// ESC ESC: emit the first, stay armed for the second
		d.emitKey(KeyEscape, ModNone)
	default:
		// Unsupported two-byte escape
		d.emitUnknown([]byte{0x1b, b})
		d.reset()
	}
}

func (d *Decoder) csi(b byte) {
	// Parameter and intermediate bytes accumulate; this is the
	// ambiguous-prefix zone, nothing is emitted until the final byte.
	if b >= 0x20 && b < 0x40 {
		if len(d.params) >= maxCSIParams {
			d.abortCSI(b)
			return
		}
		d.params = append(d.params, b)
		return
	}

	// Final byte terminates the sequence
	if b >= 0x40 && b <= 0x7e {
		d.finishCSI(b)
		d.reset()
		return
	}

	// Byte outside CSI grammar: surface what we have, reprocess it
	d.abortCSI(b)
}

// abortCSI surfaces the malformed prefix and re-runs the offending byte
// through the ground state.
func (d *Decoder) abortCSI(b byte) {
	raw := make([]byte, 0, len(d.params)+2)
	raw = append(raw, 0x1b, '[')
	d.emitUnknown(append(raw, d.params...))
	d.reset()
	d.step(b)
}

func (d *Decoder) finishCSI(final byte) {
	// Device replies share the CSI grammar with keys; identify them here
	// so the session can consume them instead of delivering key events.
	switch final {
	case 'R':
		if row, col, ok := parseCursorReport(d.params); ok {
			d.events = append(d.events, Event{
				Type: eventCursorReport,
				Row:  row - 1,
				Col:  col - 1,
			})
			return
		}
	case 'n':
		if len(d.params) == 1 && (d.params[0] == '0' || d.params[0] == '3') {
			d.events = append(d.events, Event{
				Type: eventStatusReport,
				OK:   d.params[0] == '0',
			})
			return
		}
	}

	d.seq = append(d.seq[:0], d.params...)
	d.seq = append(d.seq, final)
	if key, mod, ok := lookupCSI(d.seq); ok {
		d.emitKey(key, mod)
		return
	}

	raw := make([]byte, 0, len(d.seq)+2)
	raw = append(raw, 0x1b, '[')
	d.emitUnknown(append(raw, d.seq...))
}

func (d *Decoder) ss3(b byte) {
	d.seq = append(d.seq[:0], b)
	if key, mod, ok := lookupSS3(d.seq); ok {
		d.emitKey(key, mod)
	} else {
		d.emitUnknown([]byte{0x1b, 'O', b})
	}
	d.reset()
}

func (d *Decoder) startRune(initial, min rune, need int) {
	d.state = stateUTF8
	d.rn = initial
	d.rnMin = min
	d.rnNeed = need
}

func (d *Decoder) utf8Cont(b byte) {
	if b&0xc0 != 0x80 {
		// Malformed continuation: drop the partial rune, resume at this
		// byte so no multi-byte state corruption survives
		d.reset()
		d.step(b)
		return
	}

	d.rn = d.rn<<6 | rune(b&0x3f)
	d.rnNeed--
	if d.rnNeed > 0 {
		return
	}

	r := d.rn
	min := d.rnMin
	d.reset()
	if r < min || r > 0x10ffff || (r >= 0xd800 && r <= 0xdfff) {
		// Overlong or invalid encoding, discard
		return
	}
	d.emitRune(r)
}

// parseCursorReport extracts 1-based row;col from CSI parameter bytes
func parseCursorReport(params []byte) (row, col int, ok bool) {
	field := 0
	val := 0
	digits := 0
	for _, b := range params {
		switch {
		case b >= '0' && b <= '9':
			val = val*10 + int(b-'0')
			digits++
			if val > 9999 { // Sanity limit
				return 0, 0, false
			}
		case b == ';' && field == 0:
			if digits == 0 {
				return 0, 0, false
			}
			row = val
			val = 0
			digits = 0
			field = 1
		default:
			return 0, 0, false
		}
	}
	if field != 1 || digits == 0 {
		return 0, 0, false
	}
	col = val
	if row < 1 || col < 1 {
		return 0, 0, false
	}
	return row, col, true
}

func (d *Decoder) emitKey(k Key, m Modifier) {
	d.events = append(d.events, Event{Type: EventKey, Key: k, Mod: m})
}

func (d *Decoder) emitRune(r rune) {
	d.events = append(d.events, Event{Type: EventRune, Rune: r})
}

func (d *Decoder) emitUnknown(raw []byte) {
	d.events = append(d.events, Event{Type: EventUnknown, Raw: raw})
}
