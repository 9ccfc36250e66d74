// Package winmgr is the window manager: a process-wide singleton owning a
// tree of Windows over a shared terminal screen, a paint scheduler that
// coalesces invalidations between message-loop idle passes, a resize
// subsystem bridging SIGWINCH into the tree, and a terminal adapter that
// projects an embedded VT emulator onto the tree's leaves.
package winmgr

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cursewm/cursewm/color"
	"github.com/cursewm/cursewm/geometry"
	"github.com/cursewm/cursewm/internal/config"
	"github.com/cursewm/cursewm/internal/msgloop"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
)

// Logger is the package-level logger, defaulting to a standard library
// logger that writes to stderr with a "winmgr: " prefix. A host program may redirect it (e.g. to a file, since
// curses mode owns the terminal and stderr is not a safe place to print).
var Logger = log.New(os.Stderr, "winmgr: ", log.LstdFlags)

var active *Manager

// Manager is the window manager root: the singleton owning the tree, the
// shared screen, the color table, and the resize subsystem.
type Manager struct {
	root   *Window
	dirty  bool
	screen tcell.Screen
	colors *color.Table
	cfg    config.Config
	resize *resizeState
}

// Init brings up the window manager: enters curses (tcell) mode, binds the
// color table, constructs the root window over the full screen, and installs
// the resize subsystem. Calling Init when already initialized is a no-op
// that returns the existing root, matching winmgr_init's idempotence
// contract.
func Init(cfg config.Config) (*Window, error) {
	if active != nil {
		return active.root, nil
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return nil, errors.New("winmgr: init: stdout is not a terminal")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("winmgr: init: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("winmgr: init: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()

	mgr := &Manager{screen: screen, colors: color.New(), cfg: cfg}
	mgr.colors.Bind(tcellTerminal{screen: screen, maxColors: cfg.MaxColors})

	cols, rows := screen.Size()
	mgr.root = newWindow(mgr, nil, newRootDrawable(screen), geometry.NewRect(0, 0, cols, rows), nil, 0)

	rs, err := newResizeState()
	if err != nil {
		mgr.teardown()
		return nil, fmt.Errorf("winmgr: init: install resize handler: %w", err)
	}
	mgr.resize = rs

	loop := msgloop.Init()
	msgloop.SetIdleHook(mgr.Update)
	msgloop.SetPollInterval(cfg.IdlePollInterval)
	loop.Watch(mgr.resize.pipeR, func() {
		if err := mgr.Resize(); err != nil {
			Logger.Printf("resize: %v", err)
		}
	})

	active = mgr
	return mgr.root, nil
}

// Shutdown tears the window manager down: destroys the tree, uninstalls the
// resize subsystem, and leaves curses mode. Safe to call on an
// uninitialized manager, and safe to call twice.
func Shutdown() {
	if active == nil {
		return
	}
	mgr := active
	active = nil
	mgr.teardown()
}

func (mgr *Manager) teardown() {
	if mgr.root != nil {
		mgr.root.Destroy()
		mgr.root = nil
	}
	if mgr.resize != nil {
		mgr.resize.stop()
		mgr.resize = nil
	}
	msgloop.Shutdown()
	if mgr.screen != nil {
		mgr.screen.Fini()
	}
}

// Root returns the manager's root window.
func Root() *Window {
	if active == nil {
		return nil
	}
	return active.root
}

// Create allocates a child window under the manager singleton, the
// free-function form of (*Manager).Create matching window_create's global
// API shape.
func Create(parent *Window, rect geometry.Rect, h Handler, id int) (*Window, error) {
	if active == nil {
		return nil, errors.New("winmgr: create: not initialized")
	}
	return active.Create(parent, rect, h, id)
}

// FindWindow is the free-function form of (*Manager).FindWindow.
func FindWindow(w *Window, id int) *Window {
	if active == nil {
		return nil
	}
	return active.FindWindow(w, id)
}

// Screen returns the shared tcell.Screen, so a host program can poll for
// keyboard/mouse events itself — input dispatch belongs to the client
// handler contract, not this package.
func Screen() tcell.Screen {
	if active == nil {
		return nil
	}
	return active.screen
}

// Update runs the paint scheduler singleton to quiescence. Exposed so a host
// program can force a paint pass outside the idle hook, e.g. right after
// Init.
func Update() {
	if active != nil {
		active.Update()
	}
}

func (mgr *Manager) signalReadable() {
	msgloop.SignalReadable()
}
