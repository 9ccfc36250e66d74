package msgloop

import (
	"os"
	"testing"
	"time"
)

func TestIdleHookRunsOnSignal(t *testing.T) {
	l := Init()
	defer Shutdown()

	done := make(chan struct{})
	SetIdleHook(func() { close(done) })

	go l.Run()
	SignalReadable()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle hook did not run after SignalReadable")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	l1 := Init()
	l2 := Init()
	if l1 != l2 {
		t.Fatal("Init returned a different Loop on second call")
	}
	Shutdown()
}

func TestShutdownIsSafeWhenUninitialized(t *testing.T) {
	Shutdown()
	Shutdown()
}

func TestSignalReadableCoalesces(t *testing.T) {
	l := Init()
	defer Shutdown()

	SignalReadable()
	SignalReadable()
	SignalReadable()

	runs := 0
	done := make(chan struct{})
	SetIdleHook(func() {
		runs++
		close(done)
	})

	go l.Run()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle hook never ran")
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 (coalesced signals before a hook was installed)", runs)
	}
}

func TestPollIntervalRunsIdleHookWithoutSignal(t *testing.T) {
	l := Init()
	defer Shutdown()

	SetPollInterval(10 * time.Millisecond)
	defer SetPollInterval(0)

	done := make(chan struct{})
	SetIdleHook(func() {
		select {
		case <-done:
		default:
			close(done)
		}
	})

	go l.Run()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle hook never ran on the poll interval without SignalReadable")
	}
}

func TestWatchInvokesCallbackOnByte(t *testing.T) {
	l := Init()
	defer Shutdown()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	called := make(chan struct{}, 1)
	l.Watch(r, func() { called <- struct{}{} })

	if _, err := w.Write([]byte{0}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("Watch callback never invoked")
	}
}
