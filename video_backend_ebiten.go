//go:build !headless

// video_backend_ebiten.go - ebiten video backend for the RISC framebuffer

package main

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenKeymap maps ebiten key constants onto the host-neutral Key type
// the PS/2 encoder understands. Only keys Oberon actually reads are
// listed; anything else is silently dropped, matching the reference's
// "most of the keys below are not used by Oberon" comment on its own
// extended entries.
var ebitenKeymap = map[ebiten.Key]Key{
	ebiten.KeyA: KeyA, ebiten.KeyB: KeyB, ebiten.KeyC: KeyC, ebiten.KeyD: KeyD,
	ebiten.KeyE: KeyE, ebiten.KeyF: KeyF, ebiten.KeyG: KeyG, ebiten.KeyH: KeyH,
	ebiten.KeyI: KeyI, ebiten.KeyJ: KeyJ, ebiten.KeyK: KeyK, ebiten.KeyL: KeyL,
	ebiten.KeyM: KeyM, ebiten.KeyN: KeyN, ebiten.KeyO: KeyO, ebiten.KeyP: KeyP,
	ebiten.KeyQ: KeyQ, ebiten.KeyR: KeyR, ebiten.KeyS: KeyS, ebiten.KeyT: KeyT,
	ebiten.KeyU: KeyU, ebiten.KeyV: KeyV, ebiten.KeyW: KeyW, ebiten.KeyX: KeyX,
	ebiten.KeyY: KeyY, ebiten.KeyZ: KeyZ,
	ebiten.Key0: Key0, ebiten.Key1: Key1, ebiten.Key2: Key2, ebiten.Key3: Key3,
	ebiten.Key4: Key4, ebiten.Key5: Key5, ebiten.Key6: Key6, ebiten.Key7: Key7,
	ebiten.Key8: Key8, ebiten.Key9: Key9,
	ebiten.KeyEnter: KeyReturn, ebiten.KeyEscape: KeyEscape,
	ebiten.KeyBackspace: KeyBackspace, ebiten.KeyTab: KeyTab, ebiten.KeySpace: KeySpace,
	ebiten.KeyMinus: KeyMinus, ebiten.KeyEqual: KeyEquals,
	ebiten.KeyBracketLeft: KeyLeftBracket, ebiten.KeyBracketRight: KeyRightBracket,
	ebiten.KeyBackslash: KeyBackslash,
	ebiten.KeySemicolon:  KeySemicolon, ebiten.KeyApostrophe: KeyApostrophe,
	ebiten.KeyBackquote: KeyGrave, ebiten.KeyComma: KeyComma,
	ebiten.KeyPeriod: KeyPeriod, ebiten.KeySlash: KeySlash,
	ebiten.KeyF1: KeyF1, ebiten.KeyF2: KeyF2, ebiten.KeyF3: KeyF3, ebiten.KeyF4: KeyF4,
	ebiten.KeyF5: KeyF5, ebiten.KeyF6: KeyF6, ebiten.KeyF7: KeyF7, ebiten.KeyF8: KeyF8,
	ebiten.KeyF9: KeyF9, ebiten.KeyF10: KeyF10, ebiten.KeyF12: KeyF12,
	ebiten.KeyInsert: KeyInsert, ebiten.KeyHome: KeyHome, ebiten.KeyPageUp: KeyPageUp,
	ebiten.KeyDelete: KeyDelete, ebiten.KeyEnd: KeyEnd, ebiten.KeyPageDown: KeyPageDown,
	ebiten.KeyArrowRight: KeyRight, ebiten.KeyArrowLeft: KeyLeft,
	ebiten.KeyArrowDown: KeyDown, ebiten.KeyArrowUp: KeyUp,
	ebiten.KeyKPDivide: KeyKPDivide, ebiten.KeyKPMultiply: KeyKPMultiply,
	ebiten.KeyKPSubtract: KeyKPMinus, ebiten.KeyKPAdd: KeyKPPlus,
	ebiten.KeyKPEnter: KeyKPEnter,
	ebiten.KeyKP1: KeyKP1, ebiten.KeyKP2: KeyKP2, ebiten.KeyKP3: KeyKP3,
	ebiten.KeyKP4: KeyKP4, ebiten.KeyKP5: KeyKP5, ebiten.KeyKP6: KeyKP6,
	ebiten.KeyKP7: KeyKP7, ebiten.KeyKP8: KeyKP8, ebiten.KeyKP9: KeyKP9,
	ebiten.KeyKP0: KeyKP0, ebiten.KeyKPDecimal: KeyKPPeriod,
	ebiten.KeyControlLeft: KeyLCtrl, ebiten.KeyShiftLeft: KeyLShift,
	ebiten.KeyAltLeft: KeyLAlt, ebiten.KeyMetaLeft: KeyLGui,
	ebiten.KeyControlRight: KeyRCtrl, ebiten.KeyShiftRight: KeyRShift,
	ebiten.KeyAltRight: KeyRAlt, ebiten.KeyMetaRight: KeyRGui,
}

type EbitenOutput struct {
	running    bool
	window     *ebiten.Image
	width      int
	height     int
	scale      float64
	fullscreen bool
	frameCount uint64

	rgba        []byte
	bufferMutex sync.RWMutex

	encoder      *PS2Encoder
	keyHandler   func([]byte)
	mouseHandler func(x, y int, buttons [3]bool)

	driveFn func()
}

// SetDriveFunc installs the callback invoked once per ebiten Update tick
// to advance the emulated machine and push a fresh frame via UpdateFrame.
// main.go wires this to a closure that sets wall-clock time, calls
// Machine.Run, and drains the damage rectangle.
func (eo *EbitenOutput) SetDriveFunc(fn func()) { eo.driveFn = fn }

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:   1024,
		height:  768,
		scale:   1,
		encoder: NewPS2Encoder(),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.running = true
	ebiten.SetWindowSize(int(float64(eo.width)*eo.scale), int(float64(eo.height)*eo.scale))
	ebiten.SetWindowTitle("Oberon RISC emulator")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}
	go func() {
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("ebiten error: %v\n", err)
		}
	}()
	return nil
}

func (eo *EbitenOutput) Stop() error { eo.running = false; return nil }

func (eo *EbitenOutput) Close() error { return eo.Stop() }

func (eo *EbitenOutput) IsStarted() bool { return eo.running }

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()
	eo.width = config.Width
	eo.height = config.Height
	eo.scale = ClampScale(config.Scale)
	eo.fullscreen = config.Fullscreen
	eo.rgba = make([]byte, eo.width*eo.height*4)
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(int(float64(eo.width)*eo.scale), int(float64(eo.height)*eo.scale))
	}
	if eo.window != nil {
		eo.window.Deallocate()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	return DisplayConfig{Width: eo.width, Height: eo.height, Scale: eo.scale, Fullscreen: eo.fullscreen}
}

func (eo *EbitenOutput) GetFrameCount() uint64 { return eo.frameCount }

// UpdateFrame unpacks the 1bpp framebuffer into RGBA, restricted to the
// damaged words (the first drain after creation or reconfiguration covers
// the whole screen). Row 0 is the bottom row of the display, matching the
// machine's framebuffer layout.
func (eo *EbitenOutput) UpdateFrame(fb []byte, fbWords, fbHeight int, damage Damage) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	if damage.Empty() {
		return nil
	}
	for row := damage.Y1; row <= damage.Y2 && row < fbHeight; row++ {
		screenY := fbHeight - 1 - row
		for wx := damage.X1; wx <= damage.X2 && wx < fbWords; wx++ {
			word := leWord(fb[(row*fbWords+wx)*4:])
			for bit := 0; bit < 32; bit++ {
				x := wx*32 + bit
				if x >= eo.width {
					break
				}
				var c byte = 0xFF
				if word&(1<<uint(bit)) == 0 {
					c = 0x00
				}
				off := (screenY*eo.width + x) * 4
				eo.rgba[off], eo.rgba[off+1], eo.rgba[off+2], eo.rgba[off+3] = c, c, c, 0xFF
			}
		}
	}
	return nil
}

func (eo *EbitenOutput) SetKeyHandler(fn func([]byte)) { eo.keyHandler = fn }

func (eo *EbitenOutput) SetMouseHandler(fn func(x, y int, buttons [3]bool)) { eo.mouseHandler = fn }

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
	}
	eo.handleKeyboard()
	eo.handleMouse()
	if eo.driveFn != nil {
		eo.driveFn()
	}
	return nil
}

func (eo *EbitenOutput) handleKeyboard() {
	if eo.keyHandler == nil {
		return
	}
	shift := ShiftState{
		Left:  ebiten.IsKeyPressed(ebiten.KeyShiftLeft),
		Right: ebiten.IsKeyPressed(ebiten.KeyShiftRight),
	}

	for ek, k := range ebitenKeymap {
		if inpututil.IsKeyJustPressed(ek) {
			eo.keyHandler(eo.encoder.Encode(k, true, shift))
		}
		if inpututil.IsKeyJustReleased(ek) {
			eo.keyHandler(eo.encoder.Encode(k, false, shift))
		}
	}
}

// handleMouse forwards the cursor position with y flipped: the machine's
// mouse word has y growing upward from the bottom of the screen.
func (eo *EbitenOutput) handleMouse() {
	if eo.mouseHandler == nil {
		return
	}
	x, y := ebiten.CursorPosition()
	y = eo.height - y - 1
	if x < 0 || x >= eo.width || y < 0 || y >= eo.height {
		return
	}
	buttons := [3]bool{
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
	}
	eo.mouseHandler(x, y, buttons)
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	eo.bufferMutex.RLock()
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.window.WritePixels(eo.rgba)
	eo.bufferMutex.RUnlock()
	screen.DrawImage(eo.window, nil)
	eo.frameCount++
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}
