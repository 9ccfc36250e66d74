// Command cursewm is a minimal demo host: a shell pane backed by a PTY and
// the embedded terminal emulator, side by side with a syntax-highlighted
// file viewer, both living as leaf windows under the window manager's root.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"

	"github.com/cursewm/cursewm/geometry"
	"github.com/cursewm/cursewm/internal/config"
	"github.com/cursewm/cursewm/internal/msgloop"
	"github.com/cursewm/cursewm/vterm"
	"github.com/cursewm/cursewm/winmgr"
)

func main() {
	shellCmd := flag.String("shell", defaultShell(), "command to run in the left pane")
	viewPath := flag.String("file", "", "file to syntax-highlight in the right pane")
	flag.Parse()

	root, err := winmgr.Init(config.Default())
	if err != nil {
		log.Fatalf("cursewm: %v", err)
	}

	full := root.Rect()
	split := full.Width() * 3 / 5

	shell, err := newShellPane(root, geometry.NewRect(0, 0, split, full.Height()), 1, *shellCmd)
	if err != nil {
		winmgr.Shutdown()
		log.Fatalf("cursewm: shell pane: %v", err)
	}
	defer shell.stop()

	if _, err := newViewerPane(root, geometry.NewRect(split, 0, full.Width(), full.Height()), 2, *viewPath); err != nil {
		winmgr.Shutdown()
		log.Fatalf("cursewm: viewer pane: %v", err)
	}

	winmgr.Update()

	go func() {
		shell.wait()
		winmgr.Shutdown()
	}()
	go pollInput(shell)

	msgloop.Run()
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// shellPane is the left, interactive pane: a PTY running shellCmd, fed
// through the embedded vterm parser and drawn via a TermAdapter.
type shellPane struct {
	win *winmgr.Window
	vt  *vterm.VTerm
	pty *os.File
	cmd *exec.Cmd
	ad  *winmgr.TermAdapter
}

func newShellPane(parent *winmgr.Window, rect geometry.Rect, id int, command string) (*shellPane, error) {
	win, err := winmgr.Create(parent, rect, nil, id)
	if err != nil {
		return nil, err
	}

	rows, cols := win.InteriorSize()
	if rows == 0 || cols == 0 {
		rows, cols = 24, 80
	}

	cmd := exec.Command(command)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("start shell: %w", err)
	}

	vt := vterm.New(rows, cols)
	s := &shellPane{win: win, vt: vt, pty: ptmx, cmd: cmd}
	s.ad = winmgr.NewTermAdapter(win, vt)
	win.SetHandler(s.handle)

	go func() {
		io.Copy(vterm.NewParser(vt), ptmx)
	}()

	return s, nil
}

func (s *shellPane) handle(w *winmgr.Window, id winmgr.MsgID, payload any) uint32 {
	switch id {
	case winmgr.MsgPaint:
		s.ad.Draw()
	case winmgr.MsgPosChanged:
		rows, cols := w.InteriorSize()
		if rows > 0 && cols > 0 {
			s.vt.Resize(rows, cols)
			pty.Setsize(s.pty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
	}
	return 0
}

func (s *shellPane) wait() {
	if s.cmd != nil {
		s.cmd.Wait()
	}
}

func (s *shellPane) stop() {
	if s.pty != nil {
		s.pty.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}

// viewerPane is the right, read-only pane: a file's contents, tokenized line
// by line with Chroma and colored with its style's foreground entries. Each
// line is tokenized independently, so multi-line constructs (block comments,
// heredocs) won't carry highlighting context across lines — an acceptable
// simplification for a static viewer.
type viewerPane struct {
	win   *winmgr.Window
	lines []string
	style *chroma.Style
	lexer chroma.Lexer
}

func newViewerPane(parent *winmgr.Window, rect geometry.Rect, id int, path string) (*viewerPane, error) {
	win, err := winmgr.Create(parent, rect, nil, id)
	if err != nil {
		return nil, err
	}

	v := &viewerPane{win: win, style: styles.Get("monokai")}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		lexer := lexers.Get(enry.GetLanguage(path, content))
		if lexer == nil {
			lexer = lexers.Fallback
		}
		v.lexer = chroma.Coalesce(lexer)
		v.lines = strings.Split(string(content), "\n")
	} else {
		v.lines = []string{"(pass -file to view one)"}
	}

	win.SetHandler(v.handle)
	return v, nil
}

func (v *viewerPane) handle(w *winmgr.Window, id winmgr.MsgID, payload any) uint32 {
	switch id {
	case winmgr.MsgPaint, winmgr.MsgPosChanged:
		v.render()
	}
	return 0
}

func (v *viewerPane) render() {
	w := v.win
	w.DrawBorder()
	rows, cols := w.InteriorSize()

	for row := 0; row < rows; row++ {
		var line string
		if row < len(v.lines) {
			line = v.lines[row]
		}
		col := v.renderLine(row, line, cols)
		for ; col < cols; col++ {
			w.SetCell(row, col, ' ', tcell.StyleDefault)
		}
	}
}

func (v *viewerPane) renderLine(row int, line string, cols int) int {
	w := v.win
	col := 0
	if v.lexer == nil || line == "" {
		for _, r := range line {
			if col >= cols {
				return col
			}
			w.SetCell(row, col, r, tcell.StyleDefault)
			col++
		}
		return col
	}

	tokens, err := chroma.Tokenise(v.lexer, nil, line)
	if err != nil {
		return col
	}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		style := v.styleFor(tok.Type)
		for _, r := range tok.Value {
			if r == '\n' {
				continue
			}
			if col >= cols {
				return col
			}
			w.SetCell(row, col, r, style)
			col++
		}
	}
	return col
}

func (v *viewerPane) styleFor(tt chroma.TokenType) tcell.Style {
	style := tcell.StyleDefault
	entry := v.style.Get(tt)
	if !entry.Colour.IsSet() {
		return style
	}
	c := entry.Colour
	style = style.Foreground(tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue())))
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}
	return style
}

func pollInput(shell *shellPane) {
	screen := winmgr.Screen()
	if screen == nil {
		return
	}
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok {
			if b := keyBytes(key); b != nil {
				shell.pty.Write(b)
			}
		}
	}
}

func keyBytes(e *tcell.EventKey) []byte {
	switch e.Key() {
	case tcell.KeyEnter:
		return []byte("\r")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyTab:
		return []byte("\t")
	case tcell.KeyEsc:
		return []byte{0x1b}
	case tcell.KeyCtrlC:
		return []byte{0x03}
	case tcell.KeyCtrlD:
		return []byte{0x04}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyRune:
		return []byte(string(e.Rune()))
	default:
		return nil
	}
}
