// devices.go - capability interfaces for the I/O-bus attached devices
//
// The reference implementation represents each device as a struct of
// function pointers (RISC_Serial, RISC_SPI, RISC_Clipboard, RISC_LED) that
// the core stores by address and calls through, treating an unset pointer
// as "device absent". Re-expressed here as plain Go interfaces: a nil
// interface value is the absent case, handled explicitly at each dispatch
// site in bus.go.

package main

// Serial is the RS-232 port capability (offsets 8/12 in the I/O region).
// PCLink is the only implementation wired by this repository.
type Serial interface {
	ReadData() uint32
	ReadStatus() uint32
	WriteData(value uint32)
}

// SPI is the capability behind SPI slave select (offset 16/20). The disk
// controller is the only slave this repository wires, always at index 1.
type SPI interface {
	ReadData() uint32
	WriteData(value uint32)
}

// Clipboard is the capability behind the clipboard control/data offsets
// (40/44).
type Clipboard interface {
	ReadControl() uint32
	WriteControl(value uint32)
	ReadData() uint32
	WriteData(value uint32)
}

// LEDs is the capability behind the LED sink (offset 4, write only).
type LEDs interface {
	Write(value uint32)
}
