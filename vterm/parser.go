package vterm

import (
	"bytes"
	"unicode/utf8"

	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/mattn/go-runewidth"
)

// state is the parser's position in the escape-sequence state machine,
// ported from texel/parser/parser.go's State/ground/escape/CSI/OSC shape.
type state int

const (
	stateGround state = iota
	stateEscape
	stateCSI
	stateOSC
)

// Parser turns a byte stream (PTY output) into VTerm mutations. One Parser
// is bound to one VTerm for its lifetime.
type Parser struct {
	vt           *VTerm
	state        state
	params       []int
	currentParam int
	private      bool
	oscBuffer    []byte
}

// NewParser returns a Parser feeding v.
func NewParser(v *VTerm) *Parser {
	return &Parser{
		vt:        v,
		state:     stateGround,
		params:    make([]int, 0, 16),
		oscBuffer: make([]byte, 0, 128),
	}
}

// Write feeds a chunk of PTY output through the parser. It implements
// io.Writer so a Parser can be handed directly to an io.Copy from a pty.
func (p *Parser) Write(data []byte) (int, error) {
	p.Parse(data)
	return len(data), nil
}

// Parse processes a slice of bytes, advancing the state machine and
// mutating the bound VTerm.
func (p *Parser) Parse(data []byte) {
	for i := 0; i < len(data); {
		b := data[i]
		size := 1

		switch p.state {
		case stateGround:
			switch {
			case b == 0x1b:
				p.state = stateEscape
			case b == '\n':
				p.vt.LineFeed()
			case b == '\r':
				p.vt.CarriageReturn()
			case b == '\b':
				p.vt.Backspace()
			case b == '\t':
				p.vt.Tab()
			case b == '\a':
				p.vt.Bell()
			case b < ' ':
				// ignore other control characters
			default:
				var r rune
				r, size = utf8.DecodeRune(data[i:])
				p.vt.placeChar(r)
			}
		case stateEscape:
			switch b {
			case '[':
				p.state = stateCSI
				p.params = p.params[:0]
				p.currentParam = 0
				p.private = false
			case ']':
				p.state = stateOSC
				p.oscBuffer = p.oscBuffer[:0]
			case '(', ')':
				p.state = stateGround // charset designation, not implemented
			case '=', '>':
				p.state = stateGround
			default:
				p.state = stateGround
			}
		case stateCSI:
			switch {
			case b >= '0' && b <= '9':
				p.currentParam = p.currentParam*10 + int(b-'0')
			case b == ';':
				p.params = append(p.params, p.currentParam)
				p.currentParam = 0
			case b == '?':
				p.private = true
			case b >= '@' && b <= '~':
				p.params = append(p.params, p.currentParam)
				p.vt.ProcessCSI(b, p.params, p.private)
				p.state = stateGround
			}
		case stateOSC:
			switch b {
			case 0x07:
				p.handleOSC()
				p.state = stateGround
			case 0x1b:
				// ST (ESC \) also terminates OSC; swallow the backslash.
				p.handleOSC()
				p.state = stateGround
				size = 2
			default:
				p.oscBuffer = append(p.oscBuffer, b)
			}
		}
		i += size
	}
}

func (p *Parser) handleOSC() {
	parts := bytes.SplitN(p.oscBuffer, []byte{';'}, 2)
	if len(parts) != 2 {
		return
	}
	switch string(parts[0]) {
	case "0", "2":
		p.vt.SetTitle(string(parts[1]))
	}
}

// LineFeed moves the cursor down one row, scrolling the grid up when it
// falls off the bottom.
func (v *VTerm) LineFeed() {
	if v.cursor.Row == v.rows-1 {
		v.scrollUp(1)
		v.moveCursorTo(v.cursor.Row, v.cursor.Col)
		return
	}
	v.moveCursorTo(v.cursor.Row+1, v.cursor.Col)
}

// CarriageReturn moves the cursor to column 0.
func (v *VTerm) CarriageReturn() {
	v.moveCursorTo(v.cursor.Row, 0)
}

// Backspace moves the cursor left one column, stopping at column 0.
func (v *VTerm) Backspace() {
	if v.cursor.Col > 0 {
		v.moveCursorTo(v.cursor.Row, v.cursor.Col-1)
	}
}

// Tab advances the cursor to the next multiple-of-8 column stop.
func (v *VTerm) Tab() {
	next := (v.cursor.Col/8 + 1) * 8
	if next >= v.cols {
		next = v.cols - 1
	}
	v.moveCursorTo(v.cursor.Row, next)
}

// Bell invokes the bell callback.
func (v *VTerm) Bell() {
	if v.onBell != nil {
		v.onBell()
	}
}

func (v *VTerm) scrollUp(n int) {
	for i := 0; i < v.rows-n; i++ {
		v.grid[i] = v.grid[i+n]
	}
	for i := v.rows - n; i < v.rows; i++ {
		row := make([]Cell, v.cols)
		for j := range row {
			row[j] = blank
		}
		v.grid[i] = row
	}
	v.damage(geometry.NewRect(0, 0, v.cols, v.rows))
}

// placeChar writes a rune at the cursor using the current pen attributes
// and advances the cursor, wrapping to the next line at the right edge.
// Column advance accounts for wide runes via go-runewidth, the same job
// mattn/go-runewidth does for every other cell-grid renderer in the pack.
func (v *VTerm) placeChar(r rune) {
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		w = 1
	}
	if v.cursor.Col+w > v.cols {
		v.CarriageReturn()
		v.LineFeed()
	}
	cell := Cell{
		Rune:      r,
		Bold:      v.curBold,
		Underline: v.curUnderline,
		Blink:     v.curBlink,
		Reverse:   v.curReverse,
		FG:        v.curFG,
		BG:        v.curBG,
	}
	row, col := v.cursor.Row, v.cursor.Col
	v.grid[row][col] = cell
	for k := 1; k < w && col+k < v.cols; k++ {
		v.grid[row][col+k] = Cell{Rune: 0}
	}
	v.damage(geometry.NewRect(col, row, col+w, row+1))

	next := col + w
	if next >= v.cols {
		v.CarriageReturn()
		v.LineFeed()
	} else {
		v.moveCursorTo(row, next)
	}
}

// ProcessCSI dispatches a completed CSI sequence (final byte, numeric
// params, and the '?' private-mode flag) to the appropriate state change.
func (v *VTerm) ProcessCSI(final byte, params []int, private bool) {
	p := func(i, def int) int {
		if i >= len(params) || params[i] == 0 {
			return def
		}
		return params[i]
	}

	switch final {
	case 'H', 'f':
		row, col := p(0, 1)-1, p(1, 1)-1
		v.clampMoveCursor(row, col)
	case 'A':
		v.clampMoveCursor(v.cursor.Row-p(0, 1), v.cursor.Col)
	case 'B':
		v.clampMoveCursor(v.cursor.Row+p(0, 1), v.cursor.Col)
	case 'C':
		v.clampMoveCursor(v.cursor.Row, v.cursor.Col+p(0, 1))
	case 'D':
		v.clampMoveCursor(v.cursor.Row, v.cursor.Col-p(0, 1))
	case 'J':
		v.eraseDisplay(p(0, 0))
	case 'K':
		v.eraseLine(p(0, 0))
	case 'm':
		v.selectGraphicRendition(params)
	case 'h':
		if private && len(params) > 0 && params[0] == 25 {
			v.setCursorVisible(true)
		}
	case 'l':
		if private && len(params) > 0 && params[0] == 25 {
			v.setCursorVisible(false)
		}
	}
}

func (v *VTerm) clampMoveCursor(row, col int) {
	if row < 0 {
		row = 0
	}
	if row >= v.rows {
		row = v.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= v.cols {
		col = v.cols - 1
	}
	v.moveCursorTo(row, col)
}

func (v *VTerm) eraseDisplay(mode int) {
	switch mode {
	case 0:
		v.eraseLine(0)
		for r := v.cursor.Row + 1; r < v.rows; r++ {
			v.eraseRow(r, 0, v.cols)
		}
	case 1:
		for r := 0; r < v.cursor.Row; r++ {
			v.eraseRow(r, 0, v.cols)
		}
		v.eraseLine(1)
	case 2, 3:
		for r := 0; r < v.rows; r++ {
			v.eraseRow(r, 0, v.cols)
		}
	}
	v.damage(geometry.NewRect(0, 0, v.cols, v.rows))
}

func (v *VTerm) eraseLine(mode int) {
	switch mode {
	case 0:
		v.eraseRow(v.cursor.Row, v.cursor.Col, v.cols)
	case 1:
		v.eraseRow(v.cursor.Row, 0, v.cursor.Col+1)
	case 2:
		v.eraseRow(v.cursor.Row, 0, v.cols)
	}
	v.damage(geometry.NewRect(0, v.cursor.Row, v.cols, v.cursor.Row+1))
}

func (v *VTerm) eraseRow(row, from, to int) {
	if row < 0 || row >= v.rows {
		return
	}
	for c := from; c < to && c < v.cols; c++ {
		v.grid[row][c] = blank
	}
}

// selectGraphicRendition applies an SGR (CSI ... m) sequence to the
// current pen: bold/underline/blink/reverse toggles and 8/16/256/truecolor
// foreground and background.
func (v *VTerm) selectGraphicRendition(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		switch p := params[i]; {
		case p == 0:
			v.curBold, v.curUnderline, v.curBlink, v.curReverse = false, false, false, false
			v.curFG, v.curBG = color.RGB{}, color.RGB{}
		case p == 1:
			v.curBold = true
		case p == 4:
			v.curUnderline = true
		case p == 5:
			v.curBlink = true
		case p == 7:
			v.curReverse = true
		case p == 22:
			v.curBold = false
		case p == 24:
			v.curUnderline = false
		case p == 25:
			v.curBlink = false
		case p == 27:
			v.curReverse = false
		case p >= 30 && p <= 37:
			v.curFG = ansiColor(p - 30)
		case p == 38:
			i = v.extendedColor(params, i, &v.curFG)
		case p == 39:
			v.curFG = color.RGB{}
		case p >= 40 && p <= 47:
			v.curBG = ansiColor(p - 40)
		case p == 48:
			i = v.extendedColor(params, i, &v.curBG)
		case p == 49:
			v.curBG = color.RGB{}
		case p >= 90 && p <= 97:
			v.curFG = ansiColor(p - 90 + 8)
		case p >= 100 && p <= 107:
			v.curBG = ansiColor(p - 100 + 8)
		}
	}
}

// extendedColor consumes a 38/48 ";5;n" or ";2;r;g;b" sub-sequence
// starting at index i (pointing at the 38/48 itself) and returns the new
// index to resume the outer loop from.
func (v *VTerm) extendedColor(params []int, i int, dst *color.RGB) int {
	if i+1 >= len(params) {
		return i
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			*dst = ansi256Color(params[i+2])
			return i + 2
		}
	case 2:
		if i+4 < len(params) {
			*dst = color.RGB{R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4])}
			return i + 4
		}
	}
	return i
}

var ansiBasePalette = [16]color.RGB{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

func ansiColor(idx int) color.RGB {
	if idx < 0 || idx >= len(ansiBasePalette) {
		return color.RGB{}
	}
	return ansiBasePalette[idx]
}

// ansi256Color expands an xterm 256-color index into RGB: 0-15 are the
// base ANSI colors, 16-231 are a 6x6x6 cube, 232-255 are a grayscale ramp.
func ansi256Color(idx int) color.RGB {
	switch {
	case idx < 16:
		return ansiColor(idx)
	case idx < 232:
		idx -= 16
		r := (idx / 36) % 6
		g := (idx / 6) % 6
		b := idx % 6
		scale := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return color.RGB{R: scale(r), G: scale(g), B: scale(b)}
	default:
		level := uint8(8 + (idx-232)*10)
		return color.RGB{R: level, G: level, B: level}
	}
}
