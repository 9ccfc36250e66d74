package winmgr

import (
	"testing"

	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/cursewm/cursewm/vterm"
)

func TestTermAdapterCoalescesDamageIntoBoundingRect(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	w, err := mgr.Create(nil, geometry.NewRect(0, 0, 12, 12), nil, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	vt := vterm.New(10, 10)
	a := NewTermAdapter(w, vt)

	a.onDamage(geometry.NewRect(0, 0, 5, 5))
	a.onDamage(geometry.NewRect(3, 3, 10, 10))

	if !a.hasDamage {
		t.Fatal("expected pending damage after two onDamage calls")
	}
	if got, want := a.damage, geometry.NewRect(0, 0, 10, 10); !got.Equal(want) {
		t.Errorf("coalesced damage = %+v, want %+v", got, want)
	}

	a.Draw()
	if a.hasDamage {
		t.Error("Draw left hasDamage set")
	}
}

func TestTermAdapterReusesStyleForSamePair(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	w, _ := mgr.Create(nil, geometry.NewRect(0, 0, 12, 12), nil, 1)

	vt := vterm.New(10, 10)
	a := NewTermAdapter(w, vt)

	cell := vterm.Cell{Rune: 'x', FG: color.RGB{R: 255, G: 0, B: 0}, BG: color.RGB{R: 0, G: 0, B: 0}}

	s1 := a.styleFor(cell)
	if len(a.styleCache) != 1 {
		t.Fatalf("styleCache has %d entries after first style, want 1", len(a.styleCache))
	}
	s2 := a.styleFor(cell)
	if len(a.styleCache) != 1 {
		t.Fatalf("styleCache has %d entries after repeated pair, want 1", len(a.styleCache))
	}
	if s1 != s2 {
		t.Error("styleFor returned different styles for an identical (fg,bg) pair")
	}
}

func TestTermAdapterCursorVisibilityProp(t *testing.T) {
	mgr := newTestManager(t, 40, 20)
	w, _ := mgr.Create(nil, geometry.NewRect(0, 0, 12, 12), nil, 1)

	vt := vterm.New(10, 10)
	a := NewTermAdapter(w, vt)

	a.onSetProp(vterm.PropCursorVisible, true)
	if !w.drawable.cursorShown {
		t.Error("PropCursorVisible(true) did not show the drawable cursor")
	}
	a.onSetProp(vterm.PropCursorVisible, false)
	if w.drawable.cursorShown {
		t.Error("PropCursorVisible(false) did not hide the drawable cursor")
	}
}
