package winmgr

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/cursewm/cursewm/geometry"
	"golang.org/x/term"
)

// resizeState is the Go form of the self-pipe trick: a SIGWINCH handler
// (here, a channel registered via signal.Notify, since Go has no
// async-signal-unsafe/safe distinction to worry about in a signal.Notify
// callback-free model) wakes a pump goroutine that writes one byte to a
// pipe exactly once per "batch" of signals, matching
// sigwinch_signal_handler's single-writer, at-most-one-byte-pending
// invariant.
type resizeState struct {
	sigCh        chan os.Signal
	pipeR, pipeW *os.File
	signaled     int32 // atomic; 1 while a byte is pending on the pipe
}

func newResizeState() (*resizeState, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("winmgr: resize self-pipe: %w", err)
	}

	rs := &resizeState{pipeR: r, pipeW: w, sigCh: make(chan os.Signal, 1)}
	signal.Notify(rs.sigCh, syscall.SIGWINCH)

	go rs.pump()
	return rs, nil
}

// pump plays the role of sigwinch_signal_handler: on each notification it
// writes a single byte to the pipe unless one is already pending. Go's
// signal.Notify delivers on an ordinary goroutine rather than inside the
// signal handler itself, so there is no async-signal-safety constraint to
// honor here the way the C original must; the at-most-one-pending-byte
// invariant is kept anyway, since it's what makes a flood of SIGWINCH
// collapse into a single pending wakeup downstream.
func (rs *resizeState) pump() {
	for range rs.sigCh {
		if atomic.CompareAndSwapInt32(&rs.signaled, 0, 1) {
			rs.pipeW.Write([]byte{0})
		}
	}
}

func (rs *resizeState) stop() {
	signal.Stop(rs.sigCh)
	close(rs.sigCh)
	rs.pipeR.Close()
	rs.pipeW.Close()
}

// ResizeFD exposes the read end of the resize self-pipe for a host message
// loop to select/poll on, matching winmgr_resize_fd.
func (mgr *Manager) ResizeFD() uintptr {
	return mgr.resize.pipeR.Fd()
}

// Resize reconciles the root window's size with the terminal's actual
// dimensions and forces an immediate paint cycle. It is meant to be called
// when ResizeFD is readable (internal/msgloop.Watch already drains the
// pending byte before invoking this), or explicitly by the application.
func (mgr *Manager) Resize() error {
	atomic.StoreInt32(&mgr.resize.signaled, 0)

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return fmt.Errorf("winmgr: resize: query terminal size: %w", err)
	}
	if rows == mgr.root.rect.Height() && cols == mgr.root.rect.Width() {
		return nil
	}

	mgr.screen.Sync()

	if err := mgr.root.SetPos(geometry.NewRect(0, 0, cols, rows)); err != nil {
		return fmt.Errorf("winmgr: resize: %w", err)
	}

	mgr.Update()
	return nil
}
