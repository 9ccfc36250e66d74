// Package color implements the window manager's color table: palette
// capture from a terminal, (fg,bg) color-pair interning bounded by the
// terminal's advertised capacity, and nearest-palette-index lookup for
// arbitrary RGB colors coming out of the embedded terminal emulator.
//
// This mirrors the design in original_source/src/termwin.c
// (termwin_setvterm, get_ncurses_colorid, get_ncurses_pairid): capture the
// palette, round-trip mutable slots through the terminal so later matches
// are measured against colors it can actually draw, then eagerly intern
// every (fg,bg) pair as a small integer id.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxColors bounds the captured palette and the (fg,bg) pair table, matching
// termwin.c's MAX_ANSI_COLORS.
const MaxColors = 256

// hashBits is the number of high bits kept per channel when building the
// 15-bit nearest-color cache key (rrrrr ggggg bbbbb).
const hashBits = 5

const hashSize = 1 << (3 * hashBits) // 32768

// RGB is an 8-bit-per-channel color, matching the component precision a
// terminal emulator's cell colors are stored in.
type RGB struct {
	R, G, B uint8
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Terminal is the capability surface the color table needs from whatever
// is acting as the curses layer: advertised color/pair counts, the default
// palette, and (optionally) the ability to reprogram a palette slot and
// read back what the terminal actually did with it.
type Terminal interface {
	// Colors returns the terminal's advertised color count (ncurses COLORS).
	Colors() int
	// PairCapacity returns the terminal's advertised color-pair count
	// (ncurses COLOR_PAIRS).
	PairCapacity() int
	// CanChangeColor reports whether palette slots can be reprogrammed
	// (ncurses can_change_color()).
	CanChangeColor() bool
	// PaletteColor returns the terminal's default color for palette index i
	// (vterm_state_get_palette_color).
	PaletteColor(i int) RGB
	// SetPaletteColor attempts to reprogram palette slot i to c (ncurses
	// init_color). Implementations that cannot support this must return a
	// non-nil error; Bind treats that as "stop trying, keep what we have".
	SetPaletteColor(i int, c RGB) error
	// ColorContent reads back what the terminal currently reports for
	// palette slot i (ncurses color_content), used as the round-trip check
	// after SetPaletteColor.
	ColorContent(i int) RGB
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(n)))
}

func hashID(c RGB) int {
	r := int(c.R) >> (8 - hashBits)
	g := int(c.G) >> (8 - hashBits)
	b := int(c.B) >> (8 - hashBits)
	return ((r << (2 * hashBits)) | (g << hashBits) | b) & (hashSize - 1)
}

// Table is a color table bound to a terminal's advertised capacity. The
// zero Table is usable but unbound (N==0); Bind must be called before
// PairID/Nearest return anything meaningful.
type Table struct {
	n          int
	palette    [MaxColors]RGB
	pairTable  [MaxColors * MaxColors]int32 // -1 == not interned
	nearestIdx [hashSize]int32              // -1 == not cached
	nextPairID int32
}

// New returns an unbound Table.
func New() *Table {
	t := &Table{}
	t.reset()
	return t
}

func (t *Table) reset() {
	for i := range t.pairTable {
		t.pairTable[i] = -1
	}
	for i := range t.nearestIdx {
		t.nearestIdx[i] = -1
	}
	t.n = 0
	t.nextPairID = 1
}

// N returns the number of captured palette entries, i.e. the table's bound
// color count.
func (t *Table) N() int {
	return t.n
}

// Usable reports whether the table was successfully bound to a terminal
// that supports at least one color.
func (t *Table) Usable() bool {
	return t.n > 0
}

// Bind captures the palette from term, reprograms mutable slots 16..N-1 if
// the terminal allows it, and eagerly interns every (fg,bg) pair up to
// N*N. Per spec: N = min(term.Colors(), floor(sqrt(term.PairCapacity())),
// MaxColors).
func (t *Table) Bind(term Terminal) {
	t.reset()

	n := term.Colors()
	if s := isqrt(term.PairCapacity()); s < n {
		n = s
	}
	if n > MaxColors {
		n = MaxColors
	}
	if n <= 0 {
		return
	}

	for i := 0; i < n; i++ {
		t.palette[i] = term.PaletteColor(i)
	}

	if term.CanChangeColor() {
		for i := 16; i < n; i++ {
			if err := term.SetPaletteColor(i, t.palette[i]); err != nil {
				break
			}
		}
	}

	for i := 16; i < n; i++ {
		t.palette[i] = term.ColorContent(i)
	}

	t.n = n
	for bg := 0; bg < n; bg++ {
		for fg := 0; fg < n; fg++ {
			t.internPair(fg, bg)
		}
	}
}

func (t *Table) internPair(fg, bg int) int32 {
	idx := fg*MaxColors + bg
	if id := t.pairTable[idx]; id != -1 {
		return id
	}
	id := t.nextPairID
	t.nextPairID++
	t.pairTable[idx] = id
	return id
}

// PaletteRGB returns the captured RGB for palette index i, or the zero
// value if i is out of range. Used by a terminal adapter to turn a
// Nearest()-resolved index back into a drawable color.
func (t *Table) PaletteRGB(i int) RGB {
	if i < 0 || i >= t.n {
		return RGB{}
	}
	return t.palette[i]
}

// PairID returns the interned pair id for (fg,bg), both palette indices in
// [0,N). Pair ids are stable and unique across queries for a given Bind.
// Returns 0 (the unset sentinel pair, matching ncurses pair 0) if either
// index is out of range or the table is unbound.
func (t *Table) PairID(fg, bg int) int {
	if t.n == 0 || fg < 0 || fg >= t.n || bg < 0 || bg >= t.n {
		return 0
	}
	id := t.pairTable[fg*MaxColors+bg]
	if id == -1 {
		// Not eagerly interned at Bind (shouldn't happen for fg,bg<N, but
		// stay defensive and intern lazily rather than panic).
		id = t.internPair(fg, bg)
	}
	return int(id)
}

// Nearest returns the captured palette index whose color is closest to c,
// using squared RGB distance. An exact match, if one exists, always wins.
// Results are cached by the high hashBits of each channel, so any two
// colors agreeing on those bits map to the same index.
func (t *Table) Nearest(c RGB) int {
	if t.n == 0 {
		return 0
	}
	h := hashID(c)
	if cached := t.nearestIdx[h]; cached != -1 {
		return int(cached)
	}

	best := 0
	bestDist := math.MaxFloat64
	cf := c.colorful()
	for i := 0; i < t.n; i++ {
		if t.palette[i] == c {
			best = i
			bestDist = 0
			break
		}
		d := cf.DistanceRgb(t.palette[i].colorful())
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	t.nearestIdx[h] = int32(best)
	return best
}
