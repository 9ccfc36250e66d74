package vterm

import (
	"testing"

	"github.com/cursewm/cursewm/geometry"
)

func TestPlaceCharAdvancesCursorAndDamages(t *testing.T) {
	v := New(5, 10)
	var damaged []geometry.Rect
	v.SetCallbacks(func(r geometry.Rect) { damaged = append(damaged, r) }, nil, nil, nil)

	p := NewParser(v)
	p.Parse([]byte("hi"))

	if got := v.Cell(0, 0).Rune; got != 'h' {
		t.Fatalf("Cell(0,0).Rune = %q, want 'h'", got)
	}
	if got := v.Cell(0, 1).Rune; got != 'i' {
		t.Fatalf("Cell(0,1).Rune = %q, want 'i'", got)
	}
	if len(damaged) != 2 {
		t.Fatalf("got %d damage callbacks, want 2", len(damaged))
	}
}

func TestCSICursorPosition(t *testing.T) {
	v := New(10, 10)
	p := NewParser(v)
	p.Parse([]byte("\x1b[3;5Hx"))

	if got := v.Cell(2, 4).Rune; got != 'x' {
		t.Fatalf("Cell(2,4).Rune = %q, want 'x' (CSI 3;5H is 1-indexed)", got)
	}
}

func TestSGRColorsAndAttributes(t *testing.T) {
	v := New(3, 10)
	p := NewParser(v)
	p.Parse([]byte("\x1b[1;31;44mZ"))

	cell := v.Cell(0, 0)
	if !cell.Bold {
		t.Error("expected bold set")
	}
	if cell.FG == (cell.BG) && cell.FG.R == 0 {
		t.Error("expected distinct fg/bg colors to be set")
	}
	if cell.Rune != 'Z' {
		t.Fatalf("Cell.Rune = %q, want 'Z'", cell.Rune)
	}
}

func TestLineFeedScrollsAtBottom(t *testing.T) {
	v := New(2, 5)
	p := NewParser(v)
	p.Parse([]byte("ab\r\ncd\r\nef"))

	if got := v.Cell(0, 0).Rune; got != 'c' {
		t.Fatalf("row 0 after scroll = %q, want 'c'", got)
	}
	if got := v.Cell(1, 0).Rune; got != 'e' {
		t.Fatalf("row 1 after scroll = %q, want 'e'", got)
	}
}

func TestEraseDisplay(t *testing.T) {
	v := New(3, 5)
	p := NewParser(v)
	p.Parse([]byte("abcde\x1b[H\x1b[2J"))

	for r := 0; r < 3; r++ {
		for c := 0; c < 5; c++ {
			if got := v.Cell(r, c).Rune; got != ' ' {
				t.Fatalf("Cell(%d,%d) = %q after erase-all, want blank", r, c, got)
			}
		}
	}
}

func TestOSCSetsTitle(t *testing.T) {
	v := New(3, 10)
	var gotProp Prop
	var gotVal any
	v.SetCallbacks(nil, nil, nil, func(prop Prop, val any) { gotProp, gotVal = prop, val })

	p := NewParser(v)
	p.Parse([]byte("\x1b]0;hello\x07"))

	if v.Title() != "hello" {
		t.Fatalf("Title() = %q, want hello", v.Title())
	}
	if gotProp != PropTitle || gotVal != "hello" {
		t.Fatalf("prop callback = (%v, %v), want (PropTitle, hello)", gotProp, gotVal)
	}
}

func TestBellInvokesCallback(t *testing.T) {
	v := New(3, 10)
	rang := false
	v.SetCallbacks(nil, nil, func() { rang = true }, nil)

	p := NewParser(v)
	p.Parse([]byte("\a"))

	if !rang {
		t.Fatal("bell callback not invoked")
	}
}

func TestCursorVisibilityToggle(t *testing.T) {
	v := New(3, 10)
	var lastVisible any
	v.SetCallbacks(nil, nil, nil, func(prop Prop, val any) {
		if prop == PropCursorVisible {
			lastVisible = val
		}
	})

	p := NewParser(v)
	p.Parse([]byte("\x1b[?25l"))
	if lastVisible != false {
		t.Fatalf("after hide, lastVisible = %v, want false", lastVisible)
	}
	p.Parse([]byte("\x1b[?25h"))
	if lastVisible != true {
		t.Fatalf("after show, lastVisible = %v, want true", lastVisible)
	}
}
