// main.go - CLI entry point and frontend wiring for the Oberon RISC emulator
//
// Parses the flags enumerated in SPEC_FULL.md §6A into a Config, loads the
// boot ROM and disk image, wires every device capability to the Machine,
// and hands control to a VideoOutput backend (ebiten by default, headless
// under the "headless" build tag). The CLI itself follows the teacher's
// plain flag-parsing, fmt-to-stderr error reporting idiom (see DESIGN.md);
// only the device wiring is specific to this emulator.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cyclesPerFrame bounds how many instructions Run executes per drive tick
// before the progress-based busy-wait heuristic or this ceiling cuts it
// short; a frame tick is a convenient, arbitrary point to re-check input.
const cyclesPerFrame = 2_000_000

// Config is the frontend's configuration surface, populated from flags and
// not part of the emulated machine's own state (SPEC_FULL.md §3).
type Config struct {
	MemMB          int
	Width, Height  int
	Fullscreen     bool
	Zoom           float64
	BootPath       string
	DiskPath       string
	SerialIn       string
	SerialOut      string
	BootFromSerial bool
	LEDs           bool
}

func parseConfig() Config {
	var c Config
	flag.IntVar(&c.MemMB, "mem", 1, "RAM size in megabytes (clamped 1-32)")
	flag.IntVar(&c.Width, "w", 1024, "framebuffer width in pixels (rounded down to a multiple of 32)")
	flag.IntVar(&c.Height, "h", 768, "framebuffer height in pixels")
	flag.BoolVar(&c.Fullscreen, "fullscreen", false, "start in fullscreen")
	flag.Float64Var(&c.Zoom, "zoom", 1, "window scale factor (clamped >= 1)")
	flag.StringVar(&c.BootPath, "boot", "boot.rom", "path to the boot ROM image (512 little-endian words)")
	flag.StringVar(&c.DiskPath, "disk", "", "path to the SD card disk image (required)")
	flag.StringVar(&c.SerialIn, "serial-in", "", "file to read as the raw serial input stream (unused by PCLink)")
	flag.StringVar(&c.SerialOut, "serial-out", "", "file to write the raw serial output stream to (unused by PCLink)")
	flag.BoolVar(&c.BootFromSerial, "boot-from-serial", false, "boot from the serial line (also sets switches=1)")
	flag.BoolVar(&c.LEDs, "leds", false, "read switches from stdin and log LED writes to stderr")
	flag.Parse()
	return c.normalize()
}

func (c Config) normalize() Config {
	if c.MemMB < 1 {
		c.MemMB = 1
	}
	if c.MemMB > maxMemMB {
		c.MemMB = maxMemMB
	}
	c.Width -= c.Width % 32
	if c.Width <= 0 {
		c.Width = 32
	}
	if c.Width > framebufferMaxW {
		c.Width = framebufferMaxW
	}
	if c.Height <= 0 {
		c.Height = 1
	}
	if c.Height > framebufferMaxH {
		c.Height = framebufferMaxH
	}
	if c.Zoom < 1 {
		c.Zoom = 1
	}
	return c
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "oberon-risc-emu: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	cfg := parseConfig()

	if cfg.DiskPath == "" {
		fatalf("missing required -disk flag")
	}

	romData, err := os.ReadFile(cfg.BootPath)
	if err != nil {
		fatalf("cannot read boot ROM %q: %v", cfg.BootPath, err)
	}

	disk, err := NewDisk(cfg.DiskPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer disk.Close()

	machine := NewMachine()
	machine.ConfigureMemory(cfg.MemMB, cfg.Width, cfg.Height)
	machine.LoadROM(romData)
	machine.SetSPI(1, disk)

	pclink := NewPCLink(filepath.Dir(cfg.DiskPath))
	machine.SetSerial(pclink)
	machine.SetClipboard(NewClipboardDevice())

	term := NewTerminalHost(machine)
	machine.SetLEDs(term)
	if cfg.BootFromSerial {
		machine.SetSwitches(1)
	}
	if cfg.LEDs {
		term.Start()
		defer term.Stop()
	}

	video, err := NewEbitenOutput()
	if err != nil {
		fatalf("video init: %v", err)
	}
	if err := video.SetDisplayConfig(DisplayConfig{
		Width: cfg.Width, Height: cfg.Height, Scale: cfg.Zoom, Fullscreen: cfg.Fullscreen,
	}); err != nil {
		fatalf("video config: %v", err)
	}

	if kb, ok := video.(KeyboardInput); ok {
		kb.SetKeyHandler(machine.KeyboardInput)
	}
	if ms, ok := video.(MouseInput); ok {
		ms.SetMouseHandler(func(x, y int, buttons [3]bool) {
			machine.MouseMoved(x, y)
			machine.MouseButton(1, buttons[0]) // left
			machine.MouseButton(2, buttons[1]) // middle
			machine.MouseButton(3, buttons[2]) // right
		})
	}

	start := time.Now()
	drive := func() {
		machine.SetTime(uint32(time.Since(start).Milliseconds()))
		machine.Run(cyclesPerFrame)
		words, height := machine.FramebufferDims()
		if err := video.UpdateFrame(machine.FramebufferPtr(), words, height, machine.Damage()); err != nil {
			fmt.Fprintf(os.Stderr, "oberon-risc-emu: frame update: %v\n", err)
		}
	}

	type drivable interface{ SetDriveFunc(func()) }
	selfDriving := false
	if d, ok := video.(drivable); ok {
		d.SetDriveFunc(drive)
		selfDriving = true
	}

	if err := video.Start(); err != nil {
		fatalf("%v", err)
	}

	if selfDriving {
		for video.IsStarted() {
			time.Sleep(50 * time.Millisecond)
		}
		return
	}

	// Backends that don't call back into us (the headless backend) get
	// driven on a fixed tick here instead.
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for video.IsStarted() {
		<-ticker.C
		drive()
	}
}
