package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lixenwraith/vterm"
)

// Output-path exerciser: draws a framed status panel with colors,
// attributes and a scroll region, then waits for a key. Useful for eyeballing
// real VT-100 hardware over a serial line.
func main() {
	port := flag.String("port", "", "serial device (default: stdio)")
	baud := flag.Int("baud", 19200, "serial baud rate")
	dec := flag.Bool("dec", false, "translate box drawing to DEC special graphics")
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

	opts := []vterm.Option{}
	if *dec {
		opts = append(opts, vterm.WithDECGraphics())
	}
	s, err := vterm.Open(t, opts...)
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

	g, err := s.QueryGeometry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "geometry query failed: %v\n", err)
		os.Exit(1)
	}

	s.Reset()
	s.ShowCursor(false)

	drawFrame(s, g)
	drawColorBars(s, g)

	// Scrolling log area inside the frame
	top, bottom := 8, g.Rows-3
	s.SetScrollRegion(top, bottom)
	s.MoveCursor(top, 2)
	for i := 1; i <= 20; i++ {
		s.WriteText(fmt.Sprintf("log line %d\r\n", i))
	}
	s.ClearScrollRegion()

	s.MoveCursor(g.Rows-2, 2)
	s.SetAttr(vterm.AttrReverse, true)
	s.WriteText(" press any key to exit ")
	s.SetAttr(vterm.AttrReverse, false)

	for {
		ev, ok, err := s.Poll(-1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
			os.Exit(1)
		}
		if ok && (ev.Type == vterm.EventKey || ev.Type == vterm.EventRune) {
			break
		}
	}

	s.ShowCursor(true)
	s.Reset()
}

func drawFrame(s *vterm.Session, g vterm.Geometry) {
	s.SetColor(vterm.ColorCyan, vterm.ColorDefault)

	s.MoveCursor(0, 0)
	s.WriteText("┌")
	for i := 0; i < g.Cols-2; i++ {
		s.WriteText("─")
	}
	s.WriteText("┐")

	for row := 1; row < g.Rows-1; row++ {
		s.MoveCursor(row, 0)
		s.WriteText("│")
		s.MoveCursor(row, g.Cols-1)
		s.WriteText("│")
	}

	s.MoveCursor(g.Rows-1, 0)
	s.WriteText("└")
	for i := 0; i < g.Cols-2; i++ {
		s.WriteText("─")
	}
	s.WriteText("┘")

	s.MoveCursor(0, 3)
	s.SetAttr(vterm.AttrBold, true)
	s.WriteText(fmt.Sprintf(" vt-demo %dx%d ", g.Rows, g.Cols))
	s.SetAttr(vterm.AttrBold, false)
	s.SetColor(vterm.ColorDefault, vterm.ColorDefault)
}

func drawColorBars(s *vterm.Session, g vterm.Geometry) {
	colors := []struct {
		c    vterm.Color
		name string
	}{
		{vterm.ColorBlack, "black"},
		{vterm.ColorRed, "red"},
		{vterm.ColorGreen, "green"},
		{vterm.ColorYellow, "yellow"},
		{vterm.ColorBlue, "blue"},
		{vterm.ColorMagenta, "magenta"},
		{vterm.ColorCyan, "cyan"},
		{vterm.ColorWhite, "white"},
	}

	s.MoveCursor(2, 2)
	for _, c := range colors {
		s.SetColor(vterm.ColorDefault, c.c)
		s.WriteText("  ")
	}
	s.SetColor(vterm.ColorDefault, vterm.ColorDefault)

	s.MoveCursor(4, 2)
	s.SetAttr(vterm.AttrBold, true)
	s.WriteText("bold")
	s.SetAttr(vterm.AttrBold, false)
	s.WriteText("  ")
	s.SetAttr(vterm.AttrUnderline, true)
	s.WriteText("underline")
	s.SetAttr(vterm.AttrUnderline, false)
	s.WriteText("  ")
	s.SetAttr(vterm.AttrReverse, true)
	s.WriteText("reverse")
	s.SetAttr(vterm.AttrReverse, false)
	s.WriteText("  ")
	s.SetAttr(vterm.AttrBlink, true)
	s.WriteText("blink")
	s.SetAttr(vterm.AttrBlink, false)

	s.MoveCursor(6, 2)
	s.WriteText("box drawing: ┌─┬─┐ ├─┼─┤ └─┴─┘")
}
