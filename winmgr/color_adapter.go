package winmgr

import (
	"errors"

	"github.com/cursewm/cursewm/color"
	"github.com/gdamore/tcell/v2"
)

// tcellTerminal adapts a tcell.Screen to color.Terminal. tcell addresses
// colors directly by RGB rather than through a curses-style mutable
// palette, so CanChangeColor is always false here — there is no slot to
// reprogram, so Bind's reprogramming loop never runs against this adapter.
// PairCapacity approximates ncurses' common COLOR_PAIRS
// sizing of colors*colors, since tcell exposes no pair-capacity concept of
// its own.
type tcellTerminal struct {
	screen    tcell.Screen
	maxColors int
}

func (t tcellTerminal) Colors() int {
	if n := t.screen.Colors(); n < t.maxColors {
		return n
	}
	return t.maxColors
}

func (t tcellTerminal) PairCapacity() int {
	n := t.Colors()
	return n * n
}

func (t tcellTerminal) CanChangeColor() bool {
	return false
}

func (t tcellTerminal) PaletteColor(i int) color.RGB {
	var r, g, b int32
	if i >= 0 && i < len(ansiBasePalette) {
		r, g, b = ansiBasePalette[i].RGB()
	} else {
		r, g, b = tcell.PaletteColor(i).RGB()
	}
	return color.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}

func (t tcellTerminal) SetPaletteColor(i int, c color.RGB) error {
	return errors.New("winmgr: tcell does not support palette reprogramming")
}

func (t tcellTerminal) ColorContent(i int) color.RGB {
	return t.PaletteColor(i)
}

// ansiBasePalette is tcell's first 16 palette colors, used as the captured
// default for indices 0-15 (the fixed ANSI colors curses never reprograms).
var ansiBasePalette = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
	tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
}
