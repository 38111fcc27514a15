//go:build windows

// terminal_host_windows.go - switches/LED console without nonblocking stdin
//
// Windows has no nonblocking console reads, so the stdin goroutine blocks
// in os.Stdin.Read and is simply abandoned at Stop; the terminal state is
// still restored.

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// switchTarget is the slice of Machine the console needs: it goes through
// Machine rather than the bare Bus so switch toggles from the stdin
// goroutine serialize with the driver thread's Run calls.
type switchTarget interface {
	SetSwitches(bits uint32)
}

// TerminalHost reads raw stdin to drive the machine's switches register
// and implements LEDs to report writes back to the console.
type TerminalHost struct {
	machine switchTarget

	switches uint32
	leds     uint32
	ledsMu   sync.Mutex

	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter wired to the machine's
// switches/LED register. It does not start reading stdin until Start is
// called.
func NewTerminalHost(machine switchTarget) *TerminalHost {
	return &TerminalHost{
		machine: machine,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Write implements LEDs.
func (h *TerminalHost) Write(value uint32) {
	h.ledsMu.Lock()
	changed := value != h.leds
	h.leds = value
	h.ledsMu.Unlock()
	if changed {
		fmt.Fprintf(os.Stderr, "\rLEDs: %08b\n", value&0xFF)
	}
}

// Start puts stdin in raw mode and begins reading toggle keys in a
// goroutine. Call Stop to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if n > 0 {
				h.handleKey(buf[0])
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

func (h *TerminalHost) handleKey(b byte) {
	switch {
	case b >= '0' && b <= '7':
		h.switches ^= 1 << (b - '0')
		h.machine.SetSwitches(h.switches)
	case b == 'r':
		h.switches = 0
		h.machine.SetSwitches(0)
	}
}

// Stop signals the stdin goroutine and restores the terminal state. The
// goroutine itself may stay blocked in Read until one more key arrives.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
