// risc_cpu.go - the RISC instruction interpreter
//
// One instruction executes per call to step(); Run loops step() up to a
// cycle budget or until the bus's busy-wait "progress" counter expires.
// This mirrors the reference risc_single_step/risc_run pair: no pipeline,
// no speculation, just fetch-decode-execute over owned state.

package main

import (
	"fmt"
	"os"
	"sync"
)

// Register-form opcodes, indexed by the 4-bit op field.
const (
	opMOV = iota
	opLSL
	opASR
	opROR
	opAND
	opANN
	opIOR
	opXOR
	opADD
	opSUB
	opMUL
	opDIV
	opFAD
	opFSB
	opFML
	opFDV
)

const (
	pBit uint32 = 0x80000000
	qBit uint32 = 0x40000000
	uBit uint32 = 0x20000000
	vBit uint32 = 0x10000000
)

// Machine is the complete emulated RISC machine: registers, flags, and the
// memory/IO bus. Exported methods take an internal mutex so a frontend
// goroutine (ebiten's Update/Draw) and a test goroutine never observe a
// torn register file, though in practice exactly one goroutine drives a
// Machine at a time (see SPEC_FULL.md §5).
type Machine struct {
	mu sync.Mutex

	pc         uint32
	r          [16]uint32
	h          uint32
	z, n, c, v bool

	bus *Bus
}

// NewMachine builds a machine with default memory/framebuffer geometry and
// resets PC into the boot ROM.
func NewMachine() *Machine {
	m := &Machine{bus: NewBus()}
	m.Reset()
	return m
}

func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pc = romStart / 4
}

func (m *Machine) ConfigureMemory(megabytesRAM, width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus.Configure(megabytesRAM, width, height)
	m.pc = romStart / 4
}

func (m *Machine) LoadROM(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus.LoadROM(data)
}

func (m *Machine) SetTime(ms uint32) { m.mu.Lock(); m.bus.SetTime(ms); m.mu.Unlock() }

func (m *Machine) SetSwitches(bits uint32) { m.mu.Lock(); m.bus.SetSwitches(bits); m.mu.Unlock() }

func (m *Machine) SetLEDs(l LEDs) { m.mu.Lock(); m.bus.SetLEDs(l); m.mu.Unlock() }

func (m *Machine) SetSerial(s Serial) { m.mu.Lock(); m.bus.SetSerial(s); m.mu.Unlock() }

func (m *Machine) SetClipboard(c Clipboard) { m.mu.Lock(); m.bus.SetClipboard(c); m.mu.Unlock() }

func (m *Machine) SetSPI(index int, s SPI) { m.mu.Lock(); m.bus.SetSPI(index, s); m.mu.Unlock() }

func (m *Machine) MouseMoved(x, y int) {
	m.mu.Lock()
	m.bus.MouseMoved(x, y)
	m.mu.Unlock()
}

func (m *Machine) MouseButton(button int, down bool) {
	m.mu.Lock()
	m.bus.MouseButton(button, down)
	m.mu.Unlock()
}

func (m *Machine) KeyboardInput(scancodes []byte) {
	m.mu.Lock()
	m.bus.KeyboardInput(scancodes)
	m.mu.Unlock()
}

func (m *Machine) FramebufferPtr() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.FramebufferPtr()
}

func (m *Machine) FramebufferDims() (words, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.FramebufferDims()
}

func (m *Machine) Damage() Damage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.Damage()
}

// Run executes up to cycles instructions, stopping early if the busy-wait
// heuristic trips. Returns the number of instructions actually executed.
func (m *Machine) Run(cycles int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus.beginRun()
	i := 0
	for ; i < cycles && m.bus.progress != 0; i++ {
		m.step()
	}
	return i
}

func (m *Machine) step() {
	ir, ok := m.bus.fetch(m.pc)
	if !ok {
		fmt.Fprintf(os.Stderr, "risc: branched into the void (PC=0x%08X), resetting\n", m.pc)
		m.pc = romStart / 4
		return
	}
	m.pc++

	switch {
	case ir&pBit == 0:
		m.execRegister(ir)
	case ir&qBit == 0:
		m.execMemory(ir)
	default:
		m.execBranch(ir)
	}
}

func (m *Machine) execRegister(ir uint32) {
	a := (ir & 0x0F000000) >> 24
	b := (ir & 0x00F00000) >> 20
	op := (ir & 0x000F0000) >> 16
	im := ir & 0x0000FFFF
	c := ir & 0x0000000F

	bVal := m.r[b]
	var cVal uint32
	switch {
	case ir&qBit == 0:
		cVal = m.r[c]
	case ir&vBit == 0:
		cVal = im
	default:
		cVal = 0xFFFF0000 | im
	}

	var aVal uint32
	switch op {
	case opMOV:
		switch {
		case ir&uBit == 0:
			aVal = cVal
		case ir&qBit != 0:
			aVal = cVal << 16
		case ir&vBit != 0:
			// The low byte 0xD0 is unexplained by the reference source;
			// preserved verbatim.
			aVal = 0xD0 |
				b32(m.n)<<31 | b32(m.z)<<30 | b32(m.c)<<29 | b32(m.v)<<28
		default:
			aVal = m.h
		}
	case opLSL:
		aVal = bVal << (cVal & 31)
	case opASR:
		aVal = uint32(int32(bVal) >> (cVal & 31))
	case opROR:
		aVal = (bVal >> (cVal & 31)) | (bVal << ((-cVal) & 31))
	case opAND:
		aVal = bVal & cVal
	case opANN:
		aVal = bVal &^ cVal
	case opIOR:
		aVal = bVal | cVal
	case opXOR:
		aVal = bVal ^ cVal
	case opADD:
		aVal = bVal + cVal
		if ir&uBit != 0 {
			aVal += b32(m.c)
		}
		m.c = aVal < bVal
		m.v = ((aVal^cVal)&(aVal^bVal))>>31 != 0
	case opSUB:
		aVal = bVal - cVal
		if ir&uBit != 0 {
			aVal -= b32(m.c)
		}
		m.c = aVal > bVal
		m.v = ((bVal^cVal)&(aVal^bVal))>>31 != 0
	case opMUL:
		var tmp uint64
		if ir&uBit == 0 {
			tmp = uint64(int64(int32(bVal)) * int64(int32(cVal)))
		} else {
			tmp = uint64(bVal) * uint64(cVal)
		}
		aVal = uint32(tmp)
		m.h = uint32(tmp >> 32)
	case opDIV:
		if int32(cVal) > 0 {
			if ir&uBit == 0 {
				aVal = uint32(int32(bVal) / int32(cVal))
				rem := int32(bVal) % int32(cVal)
				if rem < 0 {
					aVal--
					rem += int32(cVal)
				}
				m.h = uint32(rem)
			} else {
				aVal = bVal / cVal
				m.h = bVal % cVal
			}
		} else {
			q := idiv(bVal, cVal, ir&uBit != 0)
			aVal = q.quot
			m.h = q.rem
		}
	case opFAD:
		aVal = fpAdd(bVal, cVal, ir&uBit != 0, ir&vBit != 0)
	case opFSB:
		aVal = fpAdd(bVal, cVal^0x80000000, ir&uBit != 0, ir&vBit != 0)
	case opFML:
		aVal = fpMul(bVal, cVal)
	case opFDV:
		aVal = fpDiv(bVal, cVal)
	}
	m.setRegister(a, aVal)
}

func (m *Machine) execMemory(ir uint32) {
	a := (ir & 0x0F000000) >> 24
	b := (ir & 0x00F00000) >> 20
	off := int32(ir & 0x000FFFFF)
	off = (off ^ 0x00080000) - 0x00080000 // sign-extend 20 bits

	address := m.r[b] + uint32(off)
	if ir&uBit == 0 {
		var aVal uint32
		if ir&vBit == 0 {
			aVal = m.bus.loadWord(address)
		} else {
			aVal = uint32(m.bus.loadByte(address))
		}
		m.setRegister(a, aVal)
	} else {
		if ir&vBit == 0 {
			m.bus.storeWord(address, m.r[a])
		} else {
			m.bus.storeByte(address, uint8(m.r[a]))
		}
	}
}

func (m *Machine) execBranch(ir uint32) {
	t := (ir>>27)&1 != 0
	switch (ir >> 24) & 7 {
	case 0:
		t = t != m.n
	case 1:
		t = t != m.z
	case 2:
		t = t != m.c
	case 3:
		t = t != m.v
	case 4:
		t = t != (m.c || m.z)
	case 5:
		t = t != (m.n != m.v)
	case 6:
		t = t != ((m.n != m.v) || m.z)
	case 7:
		t = !t
	}
	if t {
		if ir&vBit != 0 {
			m.setRegister(15, m.pc*4)
		}
		if ir&uBit == 0 {
			c := ir & 0x0000000F
			m.pc = m.r[c] / 4
		} else {
			off := int32(ir & 0x00FFFFFF)
			off = (off ^ 0x00800000) - 0x00800000 // sign-extend 24 bits
			m.pc = m.pc + uint32(off)
		}
	}
}

func (m *Machine) setRegister(reg uint32, value uint32) {
	m.r[reg] = value
	m.z = value == 0
	m.n = int32(value) < 0
}
