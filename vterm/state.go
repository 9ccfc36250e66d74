package vterm

import (
	"strings"

	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/rivo/uniseg"
)

// maxTitleWidth bounds the window title set by an OSC 0/2 sequence, so a
// runaway or adversarial PTY program can't grow it without limit.
const maxTitleWidth = 256

// Prop identifies a terminal property change, mirroring VTermProp.
type Prop int

const (
	PropCursorVisible Prop = iota
	PropCursorBlink
	PropAltScreen
	PropTitle
	PropMouse
	PropReverse
	PropCursorShape
	PropIconName
)

// DamageFunc is invoked whenever cells change. rect uses cell coordinates:
// Left/Right are columns, Top/Bottom are rows (half-open), matching
// VTermRect's start_col/end_col/start_row/end_row.
type DamageFunc func(rect geometry.Rect)

// MoveCursorFunc is invoked when the emulator's cursor moves.
type MoveCursorFunc func(pos, oldPos Pos, visible bool)

// BellFunc is invoked on a bell (\a) control character.
type BellFunc func()

// SetTermPropFunc is invoked on a property change (cursor visibility,
// title, etc).
type SetTermPropFunc func(prop Prop, value any)

// VTerm is the emulator state: a cell grid, cursor, current attributes,
// and callback registrations. Rows and cols are fixed at construction and
// change only via Resize.
type VTerm struct {
	rows, cols int
	grid       [][]Cell
	cursor     Pos
	cursorVis  bool

	curBold, curUnderline, curBlink, curReverse bool
	curFG, curBG                                color.RGB
	title                                       string

	onDamage     DamageFunc
	onMoveCursor MoveCursorFunc
	onBell       BellFunc
	onSetProp    SetTermPropFunc
}

// New returns a VTerm with the given grid size and default (black)
// foreground/background, matching vterm_state_set_default_colors in
// original_source/src/termwin.c, which resets default colors to black
// after palette capture so default-colored cells resolve through the same
// nearest-match path as any other color.
func New(rows, cols int) *VTerm {
	v := &VTerm{rows: rows, cols: cols, cursorVis: true}
	v.grid = make([][]Cell, rows)
	for i := range v.grid {
		v.grid[i] = make([]Cell, cols)
		for j := range v.grid[i] {
			v.grid[i][j] = blank
		}
	}
	return v
}

// SetCallbacks registers the damage/cursor/bell/prop callbacks. Any of
// them may be nil.
func (v *VTerm) SetCallbacks(damage DamageFunc, moveCursor MoveCursorFunc, bell BellFunc, setProp SetTermPropFunc) {
	v.onDamage = damage
	v.onMoveCursor = moveCursor
	v.onBell = bell
	v.onSetProp = setProp
}

// Size returns the grid's (rows, cols).
func (v *VTerm) Size() (rows, cols int) {
	return v.rows, v.cols
}

// Cell returns the cell at (row, col), or a blank cell if out of range.
func (v *VTerm) Cell(row, col int) Cell {
	if row < 0 || row >= v.rows || col < 0 || col >= v.cols {
		return blank
	}
	return v.grid[row][col]
}

// Resize changes the grid dimensions, preserving existing content where it
// still fits, and then damages the whole new grid (see SPEC_FULL.md's "full
// resize damages the whole surface" note, grounded on termwin_resize).
func (v *VTerm) Resize(rows, cols int) {
	newGrid := make([][]Cell, rows)
	for i := range newGrid {
		newGrid[i] = make([]Cell, cols)
		for j := range newGrid[i] {
			if i < v.rows && j < v.cols {
				newGrid[i][j] = v.grid[i][j]
			} else {
				newGrid[i][j] = blank
			}
		}
	}
	v.grid = newGrid
	v.rows, v.cols = rows, cols
	if v.cursor.Row >= rows {
		v.cursor.Row = rows - 1
	}
	if v.cursor.Col >= cols {
		v.cursor.Col = cols - 1
	}
	v.damage(geometry.NewRect(0, 0, cols, rows))
}

func (v *VTerm) damage(rect geometry.Rect) {
	if v.onDamage != nil {
		v.onDamage(rect)
	}
}

func (v *VTerm) moveCursorTo(row, col int) {
	old := v.cursor
	v.cursor = Pos{Row: row, Col: col}
	if v.onMoveCursor != nil {
		v.onMoveCursor(v.cursor, old, v.cursorVis)
	}
}

// SetTitle records the window title (OSC 0/2) and notifies via the prop
// callback. The title is truncated to maxTitleWidth display cells on a
// grapheme-cluster boundary via uniseg, so truncation never splits a
// combining sequence or wide emoji cluster in half.
func (v *VTerm) SetTitle(title string) {
	v.title = truncateTitle(title)
	if v.onSetProp != nil {
		v.onSetProp(PropTitle, v.title)
	}
}

func truncateTitle(title string) string {
	if uniseg.StringWidth(title) <= maxTitleWidth {
		return title
	}
	var b strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(title)
	for gr.Next() {
		cluster := gr.Str()
		w := uniseg.StringWidth(cluster)
		if width+w > maxTitleWidth {
			break
		}
		b.WriteString(cluster)
		width += w
	}
	return b.String()
}

// Title returns the last title set via an OSC sequence.
func (v *VTerm) Title() string {
	return v.title
}

func (v *VTerm) setCursorVisible(visible bool) {
	if v.cursorVis == visible {
		return
	}
	v.cursorVis = visible
	if v.onSetProp != nil {
		v.onSetProp(PropCursorVisible, visible)
	}
}
