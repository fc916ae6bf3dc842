package vterm

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrUnderline Attr = 1 << 2
	AttrBlink     Attr = 1 << 3
	AttrReverse   Attr = 1 << 4
)

// appendAttrs appends the SGR codes for set attribute bits, each preceded
// by ';' (emitted after the leading reset parameter)
func appendAttrs(dst []byte, a Attr) []byte {
	if a&AttrBold != 0 {
		dst = append(dst, ';', '1')
	}
	if a&AttrDim != 0 {
		dst = append(dst, ';', '2')
	}
	if a&AttrUnderline != 0 {
		dst = append(dst, ';', '4')
	}
	if a&AttrBlink != 0 {
		dst = append(dst, ';', '5')
	}
	if a&AttrReverse != 0 {
		dst = append(dst, ';', '7')
	}
	return dst
}
