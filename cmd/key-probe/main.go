package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lixenwraith/vterm"
)

func main() {
	port := flag.String("port", "", "serial device (default: stdio)")
	baud := flag.Int("baud", 19200, "serial baud rate")
	flag.Parse()

	var t vterm.Transport
	var err error
	if *port != "" {
		t, err = vterm.OpenSerial(*port, *baud)
	} else {
		t, err = vterm.Stdio()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "transport failed: %v\n", err)
		os.Exit(1)
	}

	s, err := vterm.Open(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	defer func() {
		if r := recover(); r != nil {
			vterm.EmergencyReset(os.Stdout)
			panic(r)
		}
	}()

	if err := s.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "ping failed: %v\n", err)
		os.Exit(1)
	}
	g, err := s.QueryGeometry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "geometry query failed: %v\n", err)
		os.Exit(1)
	}

	s.Reset()
	s.SetAutoWrap(true)
	s.WriteText(fmt.Sprintf("Key probe on %dx%d - press keys, Ctrl+C quits\r\n\r\n", g.Rows, g.Cols))

	for {
		ev, ok, err := s.Poll(-1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			continue
		}

		switch ev.Type {
		case vterm.EventKey:
			if ev.Key == vterm.KeyCtrlC {
				return
			}
			s.WriteText(fmt.Sprintf("KEY: %s%s\r\n", modString(ev.Mod), keyString(ev.Key)))

		case vterm.EventRune:
			if ev.Rune >= 0x20 && ev.Rune < 0x7f {
				s.WriteText(fmt.Sprintf("RUNE: '%c'\r\n", ev.Rune))
			} else {
				s.WriteText(fmt.Sprintf("RUNE: U+%04X\r\n", ev.Rune))
			}

		case vterm.EventUnknown:
			s.WriteText(fmt.Sprintf("UNKNOWN: % x\r\n", ev.Raw))
		}
	}
}

func modString(m vterm.Modifier) string {
	var mods string
	if m&vterm.ModShift != 0 {
		mods += "Shift+"
	}
	if m&vterm.ModAlt != 0 {
		mods += "Alt+"
	}
	if m&vterm.ModCtrl != 0 {
		mods += "Ctrl+"
	}
	return mods
}

func keyString(k vterm.Key) string {
	switch k {
	case vterm.KeyNone:
		return "None"
	case vterm.KeyEscape:
		return "Escape"
	case vterm.KeyEnter:
		return "Enter"
	case vterm.KeyTab:
		return "Tab"
	case vterm.KeyBacktab:
		return "Backtab"
	case vterm.KeyBackspace:
		return "Backspace"
	case vterm.KeyDelete:
		return "Delete"
	case vterm.KeyUp:
		return "Up"
	case vterm.KeyDown:
		return "Down"
	case vterm.KeyLeft:
		return "Left"
	case vterm.KeyRight:
		return "Right"
	case vterm.KeyHome:
		return "Home"
	case vterm.KeyEnd:
		return "End"
	case vterm.KeyPageUp:
		return "PageUp"
	case vterm.KeyPageDown:
		return "PageDown"
	case vterm.KeyInsert:
		return "Insert"
	case vterm.KeyF1:
		return "F1"
	case vterm.KeyF2:
		return "F2"
	case vterm.KeyF3:
		return "F3"
	case vterm.KeyF4:
		return "F4"
	case vterm.KeyF5:
		return "F5"
	case vterm.KeyF6:
		return "F6"
	case vterm.KeyF7:
		return "F7"
	case vterm.KeyF8:
		return "F8"
	case vterm.KeyF9:
		return "F9"
	case vterm.KeyF10:
		return "F10"
	case vterm.KeyF11:
		return "F11"
	case vterm.KeyF12:
		return "F12"
	case vterm.KeyCtrlA:
		return "Ctrl+A"
	case vterm.KeyCtrlB:
		return "Ctrl+B"
	case vterm.KeyCtrlC:
		return "Ctrl+C"
	case vterm.KeyCtrlD:
		return "Ctrl+D"
	case vterm.KeyCtrlE:
		return "Ctrl+E"
	case vterm.KeyCtrlF:
		return "Ctrl+F"
	case vterm.KeyCtrlG:
		return "Ctrl+G"
	case vterm.KeyCtrlK:
		return "Ctrl+K"
	case vterm.KeyCtrlL:
		return "Ctrl+L"
	case vterm.KeyCtrlN:
		return "Ctrl+N"
	case vterm.KeyCtrlO:
		return "Ctrl+O"
	case vterm.KeyCtrlP:
		return "Ctrl+P"
	case vterm.KeyCtrlQ:
		return "Ctrl+Q"
	case vterm.KeyCtrlR:
		return "Ctrl+R"
	case vterm.KeyCtrlS:
		return "Ctrl+S"
	case vterm.KeyCtrlT:
		return "Ctrl+T"
	case vterm.KeyCtrlU:
		return "Ctrl+U"
	case vterm.KeyCtrlV:
		return "Ctrl+V"
	case vterm.KeyCtrlW:
		return "Ctrl+W"
	case vterm.KeyCtrlX:
		return "Ctrl+X"
	case vterm.KeyCtrlY:
		return "Ctrl+Y"
	case vterm.KeyCtrlZ:
		return "Ctrl+Z"
	case vterm.KeyCtrlSpace:
		return "Ctrl+Space"
	case vterm.KeyCtrlBackslash:
		return "Ctrl+\\"
	case vterm.KeyCtrlBracketRight:
		return "Ctrl+]"
	case vterm.KeyCtrlCaret:
		return "Ctrl+^"
	case vterm.KeyCtrlUnderscore:
		return "Ctrl+_"
	default:
		return fmt.Sprintf("Key(%d)", k)
	}
}
