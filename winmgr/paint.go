package winmgr

// findInvalid performs the depth-first search for the first visible leaf
// descendant of w with dirty=true. A node with children is never itself
// returned — children are assumed to fully cover their parent, so a
// non-leaf is never painted.
func findInvalid(w *Window) *Window {
	if !w.visible {
		return nil
	}
	if len(w.children) > 0 {
		for _, c := range w.children {
			if found := findInvalid(c); found != nil {
				return found
			}
		}
		return nil
	}
	if w.dirty {
		return w
	}
	return nil
}

// Update runs the paint scheduler to quiescence: repeatedly find the next
// dirty leaf, clear its flag, and dispatch MsgPaint to it, until none
// remain, then flush the screen's virtual buffer to the physical terminal
// exactly once and clear the manager's dirty flag. This is the idle hook
// installed with internal/msgloop.SetIdleHook at Init.
func (mgr *Manager) Update() {
	for mgr.dirty {
		w := findInvalid(mgr.root)
		if w != nil {
			w.dirty = false
			callHandler(w, MsgPaint, nil)
			continue
		}
		mgr.screen.Show()
		mgr.dirty = false
	}
}
