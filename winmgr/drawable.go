package winmgr

import (
	"fmt"

	"github.com/cursewm/cursewm/geometry"
	"github.com/gdamore/tcell/v2"
)

// Drawable is a cell buffer backed by a region of the shared tcell.Screen —
// the Go analogue of a curses WINDOW. tcell.Screen already double-buffers
// (SetContent writes to its internal "virtual" buffer, Show flushes it to
// the physical terminal), so unlike the original's termwin_refresh there is
// no separate "copy window to virtual screen" step: a Drawable writes
// straight into the shared screen's buffer at its own offset.
//
// Every non-root Drawable reserves a one-cell border on all sides (the
// "+1"/"-2" arithmetic grounded in texel/pane.go's renderBuffer); the root
// Drawable spans the whole screen and draws no border.
type Drawable struct {
	screen      tcell.Screen
	rect        geometry.Rect // screen-absolute; the *allocated* size, independent of the owning Window's (possibly clipped) rect
	isRoot      bool
	cursorRow   int
	cursorCol   int
	cursorShown bool
}

func newRootDrawable(screen tcell.Screen) *Drawable {
	cols, rows := screen.Size()
	return &Drawable{screen: screen, rect: geometry.NewRect(0, 0, cols, rows), isRoot: true}
}

func newDrawable(screen tcell.Screen, rect geometry.Rect) *Drawable {
	return &Drawable{screen: screen, rect: rect}
}

// Size returns the drawable's full allocated (row, col) extent.
func (d *Drawable) Size() (rows, cols int) {
	return d.rect.Height(), d.rect.Width()
}

// InteriorSize returns the drawable's content area, reserving a 1-cell
// border on every side unless this is the root.
func (d *Drawable) InteriorSize() (rows, cols int) {
	if d.isRoot {
		return d.rect.Height(), d.rect.Width()
	}
	rows, cols = d.rect.Height()-2, d.rect.Width()-2
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return rows, cols
}

// Resize changes the drawable's width/height in place, keeping its origin.
func (d *Drawable) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("winmgr: negative drawable size %dx%d", width, height)
	}
	d.rect.Right = d.rect.Left + width
	d.rect.Bottom = d.rect.Top + height
	return nil
}

// Move changes the drawable's origin, keeping its current width/height.
func (d *Drawable) Move(left, top int) error {
	w, h := d.rect.Width(), d.rect.Height()
	d.rect.Left, d.rect.Top = left, top
	d.rect.Right, d.rect.Bottom = left+w, top+h
	return nil
}

// SetInteriorCell writes ch/style at interior position (row, col), offset
// by the border reservation.
func (d *Drawable) SetInteriorCell(row, col int, ch rune, style tcell.Style) {
	x, y := d.rect.Left+col, d.rect.Top+row
	if !d.isRoot {
		x++
		y++
	}
	d.screen.SetContent(x, y, ch, nil, style)
}

// MoveCursor records the drawable's logical cursor position (interior
// coordinates) and, if the cursor is currently shown, repositions it.
func (d *Drawable) MoveCursor(row, col int) {
	d.cursorRow, d.cursorCol = row, col
	if d.cursorShown {
		d.showCursorAt(row, col)
	}
}

// ShowCursor reveals the drawable's logical cursor at its last position.
func (d *Drawable) ShowCursor() {
	d.cursorShown = true
	d.showCursorAt(d.cursorRow, d.cursorCol)
}

// HideCursor hides the terminal cursor.
func (d *Drawable) HideCursor() {
	d.cursorShown = false
	d.screen.HideCursor()
}

func (d *Drawable) showCursorAt(row, col int) {
	x, y := d.rect.Left+col, d.rect.Top+row
	if !d.isRoot {
		x++
		y++
	}
	d.screen.ShowCursor(x, y)
}

// RestoreCursor re-asserts the drawable's last cursor position, used after
// a damage-driven redraw moves the hardware cursor around to write cells.
func (d *Drawable) RestoreCursor() {
	if d.cursorShown {
		d.showCursorAt(d.cursorRow, d.cursorCol)
	}
}

// Bell triggers the terminal's audible beep.
func (d *Drawable) Bell() {
	_ = d.screen.Beep()
}

var borderStyle = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)

// DrawBorder redraws the one-cell decorative frame, the tcell analogue of
// draw_border's wborder call with ACS_* box-drawing characters.
func (d *Drawable) DrawBorder() {
	if d.isRoot {
		return
	}
	w, h := d.rect.Width(), d.rect.Height()
	if w < 2 || h < 2 {
		return
	}
	left, top := d.rect.Left, d.rect.Top
	d.screen.SetContent(left, top, tcell.RuneULCorner, nil, borderStyle)
	d.screen.SetContent(left+w-1, top, tcell.RuneURCorner, nil, borderStyle)
	d.screen.SetContent(left, top+h-1, tcell.RuneLLCorner, nil, borderStyle)
	d.screen.SetContent(left+w-1, top+h-1, tcell.RuneLRCorner, nil, borderStyle)
	for x := left + 1; x < left+w-1; x++ {
		d.screen.SetContent(x, top, tcell.RuneHLine, nil, borderStyle)
		d.screen.SetContent(x, top+h-1, tcell.RuneHLine, nil, borderStyle)
	}
	for y := top + 1; y < top+h-1; y++ {
		d.screen.SetContent(left, y, tcell.RuneVLine, nil, borderStyle)
		d.screen.SetContent(left+w-1, y, tcell.RuneVLine, nil, borderStyle)
	}
}

// Free releases any resources the drawable holds. tcell has no per-region
// handle to release (every Drawable just writes into the shared Screen), so
// this is a no-op kept for symmetry with window_destroy's delwin call.
func (d *Drawable) Free() {}
