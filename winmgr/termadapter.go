package winmgr

import (
	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/cursewm/cursewm/internal/config"
	"github.com/cursewm/cursewm/vterm"
	"github.com/gdamore/tcell/v2"
)

// TermAdapter bridges an embedded vterm.VTerm's damage/cursor/bell/property
// callbacks onto a Window's backing Drawable, running every cell's fg/bg
// through the manager's color.Table to intern a (fg,bg) pair before turning
// it back into a tcell.Style. This is §4.3's "terminal adapter": the
// component a leaf window's PAINT handler calls Draw from.
type TermAdapter struct {
	w          *Window
	vt         *vterm.VTerm
	table      *color.Table
	border     config.BorderStyle
	damage     geometry.Rect
	hasDamage  bool
	styleCache map[int]tcell.Style
}

// NewTermAdapter wires a new adapter between vt and w, registering the
// adapter's callbacks with vt. w must already have a backing Drawable.
func NewTermAdapter(w *Window, vt *vterm.VTerm) *TermAdapter {
	a := &TermAdapter{
		w:          w,
		vt:         vt,
		table:      w.mgr.colors,
		border:     w.mgr.cfg.BorderStyle,
		styleCache: make(map[int]tcell.Style),
	}
	vt.SetCallbacks(a.onDamage, a.onMoveCursor, a.onBell, a.onSetProp)
	return a
}

// onDamage accumulates vterm's damage rect and arms the owning window for a
// repaint. The window is invalidated in full rather than translating the
// cell-coordinate rect into screen-absolute terms, since Draw() re-reads
// a.damage directly and redraws only the accumulated region regardless of
// how much of the window the scheduler thinks is dirty.
func (a *TermAdapter) onDamage(rect geometry.Rect) {
	if a.hasDamage {
		a.damage = geometry.Union(a.damage, rect)
	} else {
		a.damage = rect
		a.hasDamage = true
	}
	a.w.Invalidate()
}

// Draw redraws every cell touched by the accumulated damage rect into the
// window's Drawable, redrawing the border first if the damage reaches any
// edge, then restores the prior cursor position and clears the
// accumulator. Call this from the window's MsgPaint handler.
func (a *TermAdapter) Draw() {
	if !a.hasDamage {
		return
	}
	d := a.w.drawable
	maxRows, maxCols := d.InteriorSize()

	endRow := min(maxRows, a.damage.Bottom)
	endCol := min(maxCols, a.damage.Right)

	if a.damage.Top == 0 || a.damage.Left == 0 || endRow >= maxRows || endCol >= maxCols {
		if a.border == config.BorderStyleLine {
			d.DrawBorder()
		}
	}

	for row := a.damage.Top; row < endRow; row++ {
		for col := a.damage.Left; col < endCol; col++ {
			a.drawCell(d, row, col)
		}
	}

	d.RestoreCursor()

	a.hasDamage = false
	a.damage = geometry.Rect{}
}

func (a *TermAdapter) drawCell(d *Drawable, row, col int) {
	cell := a.vt.Cell(row, col)

	ch := cell.Rune
	if ch == 0 {
		ch = ' '
	}

	d.SetInteriorCell(row, col, ch, a.styleFor(cell))
}

func (a *TermAdapter) styleFor(cell vterm.Cell) tcell.Style {
	style := tcell.StyleDefault
	if a.table.Usable() {
		fgIdx := a.table.Nearest(cell.FG)
		bgIdx := a.table.Nearest(cell.BG)
		pairID := a.table.PairID(fgIdx, bgIdx)

		cached, ok := a.styleCache[pairID]
		if !ok {
			fg, bg := a.table.PaletteRGB(fgIdx), a.table.PaletteRGB(bgIdx)
			cached = tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
				Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
			a.styleCache[pairID] = cached
		}
		style = cached
	}
	if cell.Bold {
		style = style.Bold(true)
	}
	if cell.Underline {
		style = style.Underline(true)
	}
	if cell.Blink {
		style = style.Blink(true)
	}
	if cell.Reverse {
		style = style.Reverse(true)
	}
	return style
}

func (a *TermAdapter) onMoveCursor(pos, _ vterm.Pos, visible bool) {
	maxRows, maxCols := a.w.drawable.InteriorSize()
	if pos.Row >= maxRows || pos.Col >= maxCols {
		Logger.Printf("termadapter: cursor move out of range: row=%d col=%d max=%dx%d", pos.Row, pos.Col, maxRows, maxCols)
		return
	}
	a.w.drawable.MoveCursor(pos.Row, pos.Col)
}

func (a *TermAdapter) onBell() {
	a.w.drawable.Bell()
}

func (a *TermAdapter) onSetProp(prop vterm.Prop, value any) {
	switch prop {
	case vterm.PropCursorVisible:
		visible, _ := value.(bool)
		if visible {
			a.w.drawable.ShowCursor()
		} else {
			a.w.drawable.HideCursor()
		}
	default:
		// Acknowledged, not implemented: title/mouse/altscreen/blink/
		// shape/icon-name, matching termwin_settermprop_callback's NYI
		// branches.
	}
}
