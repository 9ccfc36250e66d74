// Package msgloop is the message-loop collaborator winmgr consumes: an
// idle hook armed by SignalReadable and run to completion between blocking
// I/O waits, generalized from texel/screen.go's Run() (a signal channel, a
// polled event channel, and a ticker all funneled through one select) so
// the module is runnable end to end rather than needing a host-supplied
// event loop.
package msgloop

import (
	"os"
	"time"
)

// IdleHook is invoked when the loop has no other pending work.
type IdleHook func()

// Loop is a minimal message loop: a readable-armed idle hook, plus any
// number of watched files whose readability also arms the idle hook, plus a
// periodic poll fallback that re-arms the hook on a fixed tick regardless of
// SignalReadable — grounded on texel/screen.go's Run(), whose ticker catches
// any dirty state a missed signal would otherwise leave unpainted.
type Loop struct {
	idleHook     IdleHook
	readable     chan struct{}
	done         chan struct{}
	pollInterval time.Duration
}

var active *Loop

// Init brings up the message loop singleton. Idempotent, mirroring
// message_init's contract; the original's payload_size argument sized a
// fixed C message union and has no analogue here since Handler payloads are
// plain Go values.
func Init() *Loop {
	if active != nil {
		return active
	}
	active = &Loop{readable: make(chan struct{}, 1), done: make(chan struct{})}
	return active
}

// SetPollInterval installs a periodic fallback tick that re-arms the idle
// hook even without an explicit SignalReadable, same as texel/screen.go's
// ticker catching a draw that a missed event would otherwise leave
// pending. A zero interval disables the fallback (the default).
func SetPollInterval(d time.Duration) {
	if active != nil {
		active.pollInterval = d
	}
}

// Shutdown tears down the loop singleton. Safe to call when uninitialized,
// and safe to call twice.
func Shutdown() {
	if active == nil {
		return
	}
	close(active.done)
	active = nil
}

// SetIdleHook installs h as the loop's idle hook.
func SetIdleHook(h IdleHook) {
	if active != nil {
		active.idleHook = h
	}
}

// SignalReadable arms the idle hook to run at the loop's next opportunity.
func SignalReadable() {
	if active == nil {
		return
	}
	select {
	case active.readable <- struct{}{}:
	default:
	}
}

// Watch spawns a goroutine that blocks reading single bytes from f, calling
// onReadable and then SignalReadable each time one arrives. This folds an
// externally-signaled fd (winmgr's resize self-pipe) into the same
// idle-dispatch path as any other invalidation.
func (l *Loop) Watch(f *os.File, onReadable func()) {
	go func() {
		buf := make([]byte, 1)
		for {
			select {
			case <-l.done:
				return
			default:
			}
			n, err := f.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				if onReadable != nil {
					onReadable()
				}
				SignalReadable()
			}
		}
	}()
}

// Run blocks running the loop singleton until Shutdown closes it. A no-op
// if the loop was never initialized.
func Run() {
	if active != nil {
		active.Run()
	}
}

// Run blocks, dispatching the idle hook each time SignalReadable has armed
// it (or, if a poll interval is set, on every tick), until Shutdown closes
// the loop.
func (l *Loop) Run() {
	var tick <-chan time.Time
	if l.pollInterval > 0 {
		ticker := time.NewTicker(l.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-l.done:
			return
		case <-l.readable:
			if l.idleHook != nil {
				l.idleHook()
			}
		case <-tick:
			if l.idleHook != nil {
				l.idleHook()
			}
		}
	}
}
