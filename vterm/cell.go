// Package vterm is a small embedded terminal emulator: a cell grid plus a
// byte-stream parser that turns PTY output into cell writes, paired with
// damage/cursor/bell/property-change callbacks that a terminal adapter
// consumes to project the grid onto a window (see DESIGN.md for why no
// importable ecosystem emulator library exists in the retrieved corpus).
package vterm

import "github.com/cursewm/cursewm/color"

// Pos is a cell position, row-major like VTermPos in the original source.
type Pos struct {
	Row, Col int
}

// Cell is the content and attributes of a single terminal cell, mirroring
// VTermScreenCell in original_source/src/termwin.c.
type Cell struct {
	Rune      rune
	Bold      bool
	Underline bool
	Blink     bool
	Reverse   bool
	FG, BG    color.RGB
}

// blank is the cell used for untouched/erased positions.
var blank = Cell{Rune: ' '}
