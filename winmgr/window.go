package winmgr

import (
	"fmt"

	"github.com/cursewm/cursewm/geometry"
	"github.com/gdamore/tcell/v2"
)

// Window is a node in the window manager's tree: geometry, visibility, an
// optional backing Drawable, a client handler, and a sibling-lookup id.
// Children are kept in insertion order in a slice rather than the original's
// singly-linked list — front-to-back paint order is preserved either way.
type Window struct {
	mgr      *Manager
	parent   *Window
	children []*Window
	drawable *Drawable
	rect     geometry.Rect // screen-absolute, clipped to the root (not to intermediate ancestors)
	visible  bool
	dirty    bool
	handler  Handler
	id       int
}

func newWindow(mgr *Manager, parent *Window, drawable *Drawable, rect geometry.Rect, h Handler, id int) *Window {
	w := &Window{mgr: mgr, parent: parent, drawable: drawable, rect: rect, visible: true, handler: h, id: id}
	if parent != nil {
		parent.children = append(parent.children, w)
		parent.dirty = false
	}
	callHandler(w, MsgCreate, CreateMsg{Window: w})
	w.Invalidate()
	return w
}

// Create allocates a child window under parent (the manager's root if parent
// is nil). rect is parent-relative on input. The stored Window.rect is
// clipped to the root, but the backing Drawable is sized to the original,
// unclipped rect at its screen-absolute origin — the two are allowed to
// diverge; see DESIGN.md.
func (mgr *Manager) Create(parent *Window, rect geometry.Rect, h Handler, id int) (*Window, error) {
	if parent == nil {
		parent = mgr.root
	}

	screenRect := rect.Offset(parent.rect.Left, parent.rect.Top)

	clipped, ok := geometry.Intersect(screenRect, mgr.root.rect)
	if !ok {
		clipped = geometry.Rect{}
	}

	drawable := newDrawable(mgr.screen, screenRect)

	return newWindow(mgr, parent, drawable, clipped, h, id), nil
}

// Destroy destroys w and, first, all of its children (post-order), matching
// window_destroy. No invalidation of the parent's now-uncovered area is
// performed; see DESIGN.md's Open Question decision #3.
func (w *Window) Destroy() {
	for _, child := range append([]*Window(nil), w.children...) {
		child.Destroy()
	}

	callHandler(w, MsgDestroy, nil)

	if w.parent != nil {
		w.parent.removeChild(w)
	}
	if w.drawable != nil && !w.drawable.isRoot {
		w.drawable.Free()
	}
}

func (w *Window) removeChild(c *Window) {
	for i, ch := range w.children {
		if ch == c {
			w.children = append(w.children[:i], w.children[i+1:]...)
			return
		}
	}
}

// SetHandler installs h as w's handler and returns the previous one.
func (w *Window) SetHandler(h Handler) Handler {
	old := w.handler
	w.handler = h
	return old
}

// FindChild searches w's immediate children for one with the given id. It
// does not recurse.
func (w *Window) FindChild(id int) *Window {
	for _, c := range w.children {
		if c.id == id {
			return c
		}
	}
	return nil
}

// FindWindow searches under w for an immediate child with the given id,
// defaulting to mgr's root when w is nil — the free-function convenience
// form of window_find_window's nil-defaults-to-root argument.
func (mgr *Manager) FindWindow(w *Window, id int) *Window {
	if w == nil {
		w = mgr.root
	}
	return w.FindChild(id)
}

// InteriorSize returns the content area available to w's own drawing code,
// i.e. its Drawable's size minus the one-cell border reservation.
func (w *Window) InteriorSize() (rows, cols int) {
	return w.drawable.InteriorSize()
}

// SetCell writes a styled rune at interior position (row, col), for a
// handler that draws its own content directly rather than through a
// TermAdapter.
func (w *Window) SetCell(row, col int, ch rune, style tcell.Style) {
	w.drawable.SetInteriorCell(row, col, ch, style)
}

// DrawBorder redraws w's one-cell decorative frame.
func (w *Window) DrawBorder() {
	w.drawable.DrawBorder()
}

// Rect returns w's rectangle in parent-relative coordinates.
func (w *Window) Rect() geometry.Rect {
	if w.parent != nil {
		return w.rect.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
	}
	return w.rect
}

// SetVisible toggles w's visibility. Showing an already-visible window, or
// hiding an already-hidden one, is a no-op (§8 round-trip law).
func (w *Window) SetVisible(visible bool) {
	if !visible {
		if w.visible {
			w.visible = false
			if w.parent != nil {
				w.parent.InvalidateRect(w.parent.rect)
			}
		}
		return
	}
	if !w.visible {
		w.visible = true
		w.Invalidate()
	}
}

// Invalidate clips w's rect through all ancestors and, if anything remains
// visible and unclipped, marks the affected leaves dirty.
func (w *Window) Invalidate() {
	if !w.visible {
		return
	}
	rect := w.rect
	for p := w.parent; p != nil; p = p.parent {
		if !p.visible {
			return
		}
		var ok bool
		rect, ok = geometry.Intersect(rect, p.rect)
		if !ok {
			return
		}
	}
	w.InvalidateRect(rect)
}

// InvalidateRect marks invalid any visible leaf descendants of w (including
// w itself) that intersect rect, which is in screen-absolute coordinates.
func (w *Window) InvalidateRect(rect geometry.Rect) {
	if !w.visible {
		return
	}
	clipped, ok := geometry.Intersect(w.rect, rect)
	if !ok {
		return
	}
	if len(w.children) > 0 {
		for _, c := range w.children {
			c.InvalidateRect(clipped)
		}
		return
	}
	w.dirty = true
	w.mgr.dirty = true
	w.mgr.signalReadable()
}

// SetPos moves/resizes w. rect is parent-relative. Equal-to-current is a
// no-op success (§8 round-trip law). Any drawable primitive failure returns
// an error without rolling back drawable resize/move steps already applied;
// w's stored rect is committed only after every drawable step succeeds, so
// it is unchanged on failure — see DESIGN.md's Open Question decision #2.
func (w *Window) SetPos(rect geometry.Rect) error {
	mgr := w.mgr

	newRect := rect
	if w.parent != nil {
		newRect = rect.Offset(w.parent.rect.Left, w.parent.rect.Top)
	}
	if w.rect.Equal(newRect) {
		return nil
	}

	if w != mgr.root {
		if clipped, ok := geometry.Intersect(newRect, mgr.root.rect); ok {
			newRect = clipped
		} else {
			newRect = geometry.Rect{}
		}
	}

	width, height := newRect.Width(), newRect.Height()

	if w.drawable != nil {
		if newRect.Left != w.rect.Left || newRect.Top != w.rect.Top {
			widthAdj := (w.rect.Left + width) - mgr.root.rect.Right
			if widthAdj < 0 {
				widthAdj = 0
			}
			heightAdj := (w.rect.Top + height) - mgr.root.rect.Bottom
			if heightAdj < 0 {
				heightAdj = 0
			}
			if widthAdj != 0 || heightAdj != 0 {
				if err := w.drawable.Resize(width-widthAdj, height-heightAdj); err != nil {
					return fmt.Errorf("winmgr: set pos: %w", err)
				}
			}
			if err := w.drawable.Move(newRect.Left, newRect.Top); err != nil {
				return fmt.Errorf("winmgr: set pos: %w", err)
			}
		}
		if err := w.drawable.Resize(width, height); err != nil {
			return fmt.Errorf("winmgr: set pos: %w", err)
		}
	}

	oldRect := w.rect
	w.rect = newRect

	invalidRect := geometry.Union(oldRect, newRect)
	if w.parent != nil {
		w.parent.InvalidateRect(invalidRect)
	} else {
		w.InvalidateRect(invalidRect)
	}

	msgOld, msgNew := oldRect, newRect
	if w.parent != nil {
		msgOld = msgOld.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
		msgNew = msgNew.Offset(-w.parent.rect.Left, -w.parent.rect.Top)
	}
	callHandler(w, MsgPosChanged, PosChangedMsg{OldRect: msgOld, NewRect: msgNew})
	return nil
}
