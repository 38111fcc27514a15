// clipboard_device.go - clipboard capability backed by the host clipboard
//
// Ported from the reference sdl-clipboard.c length/data handshake:
// reading the control register snapshots the current host clipboard text
// and returns its length (Oberon's line endings are bare CR, so CRLF
// pairs count as one character); writing the control register allocates
// a write buffer of the given length. The data register then streams one
// byte per access in either direction, translating CR<->LF/CRLF as the
// reference does, and commits a PUT back to the host clipboard once the
// buffer fills.
//
// Backed by golang.design/x/clipboard, which requires native clipboard
// access; ClipboardDevice degrades to an always-empty device (matching
// the bus's "device absent" contract) if clipboard.Init fails, which is
// the common case in headless CI.

package main

import (
	"golang.design/x/clipboard"
)

type clipState int

const (
	clipIdle clipState = iota
	clipGet
	clipPut
)

// ClipboardDevice implements Clipboard.
type ClipboardDevice struct {
	available bool

	state clipState
	data  []byte
	ptr   int
}

// NewClipboardDevice initializes the host clipboard backend. The returned
// device is always usable; available is false (and it behaves as an
// absent device) if the host has no clipboard to attach to.
func NewClipboardDevice() *ClipboardDevice {
	d := &ClipboardDevice{}
	d.available = clipboard.Init() == nil
	return d
}

func (d *ClipboardDevice) reset() {
	d.state = clipIdle
	d.data = nil
	d.ptr = 0
}

// ReadControl snapshots the host clipboard and returns its length in
// Oberon's bare-CR line-ending convention.
func (d *ClipboardDevice) ReadControl() uint32 {
	d.reset()
	if !d.available {
		return 0
	}

	text := clipboard.Read(clipboard.FmtText)
	if len(text) == 0 {
		return 0
	}

	d.state = clipGet
	d.data = text
	n := len(text)
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\r' && text[i+1] == '\n' {
			n--
		}
	}
	return uint32(n)
}

// WriteControl allocates a length-byte receive buffer for a PUT.
func (d *ClipboardDevice) WriteControl(length uint32) {
	d.reset()
	if !d.available {
		return
	}
	d.data = make([]byte, 0, length)
	d.state = clipPut
}

// ReadData pops one byte of GET data, translating CRLF/LF to bare CR.
func (d *ClipboardDevice) ReadData() uint32 {
	if d.state != clipGet || d.ptr >= len(d.data) {
		return 0
	}
	result := d.data[d.ptr]
	d.ptr++
	switch {
	case result == '\r' && d.ptr < len(d.data) && d.data[d.ptr] == '\n':
		d.ptr++
	case result == '\n':
		result = '\r'
	}
	if d.ptr >= len(d.data) {
		d.reset()
	}
	return uint32(result)
}

// WriteData appends one byte of PUT data, translating bare CR to LF, and
// commits the buffer to the host clipboard once it is full.
func (d *ClipboardDevice) WriteData(value uint32) {
	if d.state != clipPut || len(d.data) >= cap(d.data) {
		return
	}
	c := byte(value)
	if c == '\r' {
		c = '\n'
	}
	d.data = append(d.data, c)
	if len(d.data) == cap(d.data) {
		clipboard.Write(clipboard.FmtText, d.data)
		d.reset()
	}
}
