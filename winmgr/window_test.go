package winmgr

import (
	"testing"

	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/cursewm/cursewm/internal/config"
	"github.com/gdamore/tcell/v2"
)

// newTestManager builds a Manager over a tcell.SimulationScreen, the
// library's own in-memory Screen implementation, so tree/paint tests don't
// need a real terminal.
func newTestManager(t *testing.T, cols, rows int) *Manager {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	screen.SetSize(cols, rows)

	cfg := config.Default()
	mgr := &Manager{screen: screen, colors: color.New(), cfg: cfg}
	mgr.colors.Bind(tcellTerminal{screen: screen, maxColors: cfg.MaxColors})
	mgr.root = newWindow(mgr, nil, newRootDrawable(screen), geometry.NewRect(0, 0, cols, rows), nil, 0)
	return mgr
}

func recordingHandler(log *[]MsgID) Handler {
	return func(w *Window, id MsgID, payload any) uint32 {
		*log = append(*log, id)
		return 0
	}
}

func TestCreateClipsRectButDrawableKeepsOriginal(t *testing.T) {
	mgr := newTestManager(t, 40, 20)

	w, err := mgr.Create(nil, geometry.NewRect(30, 10, 60, 30), nil, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, want := w.rect, geometry.NewRect(30, 10, 40, 20); !got.Equal(want) {
		t.Errorf("stored rect = %+v, want clipped %+v", got, want)
	}
	if got, want := w.drawable.rect, geometry.NewRect(30, 10, 60, 30); !got.Equal(want) {
		t.Errorf("drawable rect = %+v, want unclipped %+v", got, want)
	}
}

func TestCreateDestroyRoundTrip(t *testing.T) {
	mgr := newTestManager(t, 40, 20)

	var log []MsgID
	w, err := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), recordingHandler(&log), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := len(mgr.root.children)
	w.Destroy()

	if len(mgr.root.children) != before-1 {
		t.Errorf("parent still has %d children after destroy, want %d", len(mgr.root.children), before-1)
	}

	creates, destroys := 0, 0
	for _, id := range log {
		switch id {
		case MsgCreate:
			creates++
		case MsgDestroy:
			destroys++
		}
	}
	if creates != 1 || destroys != 1 {
		t.Errorf("got %d CREATE and %d DESTROY, want exactly one each", creates, destroys)
	}
}

func TestFindChild(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	a, _ := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), nil, 5)
	_, _ = mgr.Create(nil, geometry.NewRect(10, 0, 20, 10), nil, 6)

	if got := mgr.root.FindChild(5); got != a {
		t.Errorf("FindChild(5) = %v, want %v", got, a)
	}
	if got := mgr.root.FindChild(99); got != nil {
		t.Errorf("FindChild(99) = %v, want nil", got)
	}
	if got := mgr.FindWindow(nil, 6); got == nil || got.id != 6 {
		t.Errorf("FindWindow(nil, 6) = %v, want window with id 6", got)
	}
}

func TestSetVisibleIdempotent(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	w, _ := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), nil, 1)
	mgr.Update() // drain initial invalidation

	w.SetVisible(true)
	if mgr.dirty {
		t.Error("SetVisible(true) on an already-visible window armed the dirty flag")
	}

	w.SetVisible(false)
	mgr.Update()
	w.SetVisible(false)
	if mgr.dirty {
		t.Error("SetVisible(false) on an already-hidden window armed the dirty flag")
	}
}

func TestSetPosNoOpWhenEqual(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	var log []MsgID
	w, _ := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), recordingHandler(&log), 1)
	mgr.Update()
	log = nil

	if err := w.SetPos(w.Rect()); err != nil {
		t.Fatalf("SetPos: %v", err)
	}
	if len(log) != 0 {
		t.Errorf("SetPos(current rect) delivered %v, want no messages", log)
	}
}

func TestInvalidateRectOnlyMarksLeaves(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	container, _ := mgr.Create(nil, geometry.NewRect(0, 0, 20, 20), nil, 1)
	leaf, _ := mgr.Create(container, geometry.NewRect(0, 0, 20, 20), nil, 2)
	mgr.Update()

	container.Invalidate()

	if container.dirty {
		t.Error("non-leaf container has dirty=true")
	}
	if !leaf.dirty {
		t.Error("leaf was not marked dirty by its container's Invalidate")
	}
}

func TestPaintCoalescing(t *testing.T) {
	mgr := newTestManager(t, 40, 20)

	var logA, logB []MsgID
	a, _ := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), recordingHandler(&logA), 1)
	b, _ := mgr.Create(nil, geometry.NewRect(10, 0, 20, 10), recordingHandler(&logB), 2)
	mgr.Update()
	logA, logB = nil, nil

	a.Invalidate()
	b.Invalidate()
	a.Invalidate()

	mgr.Update()

	paints := func(log []MsgID) int {
		n := 0
		for _, id := range log {
			if id == MsgPaint {
				n++
			}
		}
		return n
	}
	if got := paints(logA); got != 1 {
		t.Errorf("leaf A received %d PAINT messages, want 1", got)
	}
	if got := paints(logB); got != 1 {
		t.Errorf("leaf B received %d PAINT messages, want 1", got)
	}
	if mgr.dirty {
		t.Error("manager still dirty after Update drained all leaves")
	}
}

func TestHideRevealsParentIsNoOpWithNoOtherLeaf(t *testing.T) {
	mgr := newTestManager(t, 40, 20)

	container, _ := mgr.Create(nil, geometry.NewRect(0, 0, 20, 20), nil, 1)
	var leafLog []MsgID
	leaf, _ := mgr.Create(container, geometry.NewRect(0, 0, 20, 20), recordingHandler(&leafLog), 2)
	mgr.Update()
	leafLog = nil

	leaf.SetVisible(false)
	mgr.Update()

	for _, id := range leafLog {
		if id == MsgPaint {
			t.Error("hidden leaf received a PAINT message")
		}
	}
	if mgr.dirty {
		t.Error("manager left dirty after hiding the only leaf under a container")
	}
}

func TestSetPosPropagatesPosChanged(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	var log []PosChangedMsg
	child, _ := mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), func(w *Window, id MsgID, payload any) uint32 {
		if id == MsgPosChanged {
			log = append(log, payload.(PosChangedMsg))
		}
		return 0
	}, 1)

	if err := child.SetPos(geometry.NewRect(5, 5, 15, 15)); err != nil {
		t.Fatalf("SetPos: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("got %d POS_CHANGED messages, want 1", len(log))
	}
	if got, want := log[0].OldRect, geometry.NewRect(0, 0, 10, 10); !got.Equal(want) {
		t.Errorf("OldRect = %+v, want %+v", got, want)
	}
	if got, want := log[0].NewRect, geometry.NewRect(5, 5, 15, 15); !got.Equal(want) {
		t.Errorf("NewRect = %+v, want %+v", got, want)
	}
}

func TestRootSetPosResizesRoot(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	var log []PosChangedMsg
	_, _ = mgr.Create(nil, geometry.NewRect(0, 0, 10, 10), func(w *Window, id MsgID, payload any) uint32 {
		if id == MsgPosChanged {
			log = append(log, payload.(PosChangedMsg))
		}
		return 0
	}, 1)

	if err := mgr.root.SetPos(geometry.NewRect(0, 0, 80, 24)); err != nil {
		t.Fatalf("SetPos: %v", err)
	}
	if got, want := mgr.root.rect, geometry.NewRect(0, 0, 80, 24); !got.Equal(want) {
		t.Errorf("root.rect = %+v, want %+v", got, want)
	}
}
