package winmgr

import "github.com/cursewm/cursewm/geometry"

// MsgID identifies a lifecycle or paint message delivered to a Window's
// Handler, mirroring the WM_* message ids in original_source's message.h.
type MsgID int

const (
	// MsgCreate is sent once, synchronously, right after a window is linked
	// into its parent's child list. Payload is CreateMsg.
	MsgCreate MsgID = iota
	// MsgDestroy is sent once, after all of a window's children have been
	// destroyed, just before it is unlinked. Payload is nil.
	MsgDestroy
	// MsgPaint is sent to a dirty leaf by the paint scheduler. The handler
	// is expected to draw into the window's backing Drawable synchronously
	// before returning. Payload is nil.
	MsgPaint
	// MsgPosChanged is sent after SetPos commits a new rect. Payload is
	// PosChangedMsg with parent-relative old/new rectangles.
	MsgPosChanged
)

// CreateMsg is the MsgCreate payload.
type CreateMsg struct {
	Window *Window
}

// PosChangedMsg is the MsgPosChanged payload. Both rects are parent-relative,
// matching the coordinate space Window.Rect returns.
type PosChangedMsg struct {
	OldRect geometry.Rect
	NewRect geometry.Rect
}

// Handler is the client callback contract: given the window the message
// concerns, the message id, and an id-specific payload, it returns a
// reserved (currently unused) result code.
type Handler func(w *Window, id MsgID, payload any) uint32

func callHandler(w *Window, id MsgID, payload any) uint32 {
	if w.handler == nil {
		return 0
	}
	return w.handler(w, id, payload)
}
