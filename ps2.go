// ps2.go - PS/2 code-set-2 scancode encoder
//
// Ported from the reference sdl-ps2.c keymap and ps2_encode switch, rekeyed
// from SDL scancodes to ebiten.Key so the frontend in video_backend_ebiten.go
// can drive it directly from key events.

package main

// keyClass classifies how a key's make/break PS/2 byte sequence is built.
type keyClass int

const (
	keyUnknown keyClass = iota
	keyNormal
	keyExtended
	keyNumLockHack
	keyShiftHack
)

type keyInfo struct {
	code  byte
	class keyClass
}

// ShiftState tracks which host shift keys are currently held, needed only
// by the keypad-divide shift-hack encoding.
type ShiftState struct {
	Left, Right bool
}

// PS2Encoder turns an abstract key identifier plus press/release into a
// PS/2 code-set-2 byte sequence. It is stateless except for the caller-
// supplied ShiftState for the shift-hack case.
type PS2Encoder struct {
	keymap map[Key]keyInfo
}

// Key is a host-neutral key identifier; video_backend_ebiten.go maps
// ebiten.Key values onto this type.
type Key int

const (
	KeyA Key = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyReturn
	KeyEscape
	KeyBackspace
	KeyTab
	KeySpace
	KeyMinus
	KeyEquals
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
	KeySemicolon
	KeyApostrophe
	KeyGrave
	KeyComma
	KeyPeriod
	KeySlash
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyInsert
	KeyHome
	KeyPageUp
	KeyDelete
	KeyEnd
	KeyPageDown
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyKPDivide
	KeyKPMultiply
	KeyKPMinus
	KeyKPPlus
	KeyKPEnter
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKP0
	KeyKPPeriod
	KeyLCtrl
	KeyLShift
	KeyLAlt
	KeyLGui
	KeyRCtrl
	KeyRShift
	KeyRAlt
	KeyRGui
)

// NewPS2Encoder builds the full keymap, ported verbatim from the reference
// SDL-scancode table (values unchanged; only the index type differs).
func NewPS2Encoder() *PS2Encoder {
	m := map[Key]keyInfo{
		KeyA: {0x1C, keyNormal}, KeyB: {0x32, keyNormal}, KeyC: {0x21, keyNormal},
		KeyD: {0x23, keyNormal}, KeyE: {0x24, keyNormal}, KeyF: {0x2B, keyNormal},
		KeyG: {0x34, keyNormal}, KeyH: {0x33, keyNormal}, KeyI: {0x43, keyNormal},
		KeyJ: {0x3B, keyNormal}, KeyK: {0x42, keyNormal}, KeyL: {0x4B, keyNormal},
		KeyM: {0x3A, keyNormal}, KeyN: {0x31, keyNormal}, KeyO: {0x44, keyNormal},
		KeyP: {0x4D, keyNormal}, KeyQ: {0x15, keyNormal}, KeyR: {0x2D, keyNormal},
		KeyS: {0x1B, keyNormal}, KeyT: {0x2C, keyNormal}, KeyU: {0x3C, keyNormal},
		KeyV: {0x2A, keyNormal}, KeyW: {0x1D, keyNormal}, KeyX: {0x22, keyNormal},
		KeyY: {0x35, keyNormal}, KeyZ: {0x1A, keyNormal},

		Key1: {0x16, keyNormal}, Key2: {0x1E, keyNormal}, Key3: {0x26, keyNormal},
		Key4: {0x25, keyNormal}, Key5: {0x2E, keyNormal}, Key6: {0x36, keyNormal},
		Key7: {0x3D, keyNormal}, Key8: {0x3E, keyNormal}, Key9: {0x46, keyNormal},
		Key0: {0x45, keyNormal},

		KeyReturn: {0x5A, keyNormal}, KeyEscape: {0x76, keyNormal},
		KeyBackspace: {0x66, keyNormal}, KeyTab: {0x0D, keyNormal}, KeySpace: {0x29, keyNormal},

		KeyMinus: {0x4E, keyNormal}, KeyEquals: {0x55, keyNormal},
		KeyLeftBracket: {0x54, keyNormal}, KeyRightBracket: {0x5B, keyNormal},
		KeyBackslash: {0x5D, keyNormal},

		KeySemicolon: {0x4C, keyNormal}, KeyApostrophe: {0x52, keyNormal},
		KeyGrave: {0x0E, keyNormal}, KeyComma: {0x41, keyNormal},
		KeyPeriod: {0x49, keyNormal}, KeySlash: {0x4A, keyNormal},

		KeyF1: {0x05, keyNormal}, KeyF2: {0x06, keyNormal}, KeyF3: {0x04, keyNormal},
		KeyF4: {0x0C, keyNormal}, KeyF5: {0x03, keyNormal}, KeyF6: {0x0B, keyNormal},
		KeyF7: {0x83, keyNormal}, KeyF8: {0x0A, keyNormal}, KeyF9: {0x01, keyNormal},
		KeyF10: {0x09, keyNormal}, KeyF11: {0x78, keyNormal}, KeyF12: {0x07, keyNormal},

		KeyInsert: {0x70, keyNumLockHack}, KeyHome: {0x6C, keyNumLockHack},
		KeyPageUp: {0x7D, keyNumLockHack}, KeyDelete: {0x71, keyNumLockHack},
		KeyEnd: {0x69, keyNumLockHack}, KeyPageDown: {0x7A, keyNumLockHack},
		KeyRight: {0x74, keyNumLockHack}, KeyLeft: {0x6B, keyNumLockHack},
		KeyDown: {0x72, keyNumLockHack}, KeyUp: {0x75, keyNumLockHack},

		KeyKPDivide: {0x4A, keyShiftHack}, KeyKPMultiply: {0x7C, keyNormal},
		KeyKPMinus: {0x7B, keyNormal}, KeyKPPlus: {0x79, keyNormal},
		KeyKPEnter: {0x5A, keyExtended},
		KeyKP1:     {0x69, keyNormal}, KeyKP2: {0x72, keyNormal}, KeyKP3: {0x7A, keyNormal},
		KeyKP4: {0x6B, keyNormal}, KeyKP5: {0x73, keyNormal}, KeyKP6: {0x74, keyNormal},
		KeyKP7: {0x6C, keyNormal}, KeyKP8: {0x75, keyNormal}, KeyKP9: {0x7D, keyNormal},
		KeyKP0: {0x70, keyNormal}, KeyKPPeriod: {0x71, keyNormal},

		KeyLCtrl: {0x14, keyNormal}, KeyLShift: {0x12, keyNormal}, KeyLAlt: {0x11, keyNormal},
		KeyLGui: {0x1F, keyExtended}, KeyRCtrl: {0x14, keyExtended}, KeyRShift: {0x59, keyNormal},
		KeyRAlt: {0x11, keyExtended}, KeyRGui: {0x27, keyExtended},
	}
	return &PS2Encoder{keymap: m}
}

// Encode returns the PS/2 byte sequence for key on press (make=true) or
// release (make=false). shift is only consulted for the shift-hack class.
func (e *PS2Encoder) Encode(key Key, make_ bool, shift ShiftState) []byte {
	info, ok := e.keymap[key]
	if !ok || info.class == keyUnknown {
		return nil
	}

	var out []byte
	switch info.class {
	case keyNormal:
		if !make_ {
			out = append(out, 0xF0)
		}
		out = append(out, info.code)

	case keyExtended:
		out = append(out, 0xE0)
		if !make_ {
			out = append(out, 0xF0)
		}
		out = append(out, info.code)

	case keyNumLockHack:
		if make_ {
			out = append(out, 0xE0, 0x12, 0xE0, info.code)
		} else {
			out = append(out, 0xE0, 0xF0, info.code, 0xE0, 0xF0, 0x12)
		}

	case keyShiftHack:
		if make_ {
			if shift.Left {
				out = append(out, 0xE0, 0xF0, 0x12)
			}
			if shift.Right {
				out = append(out, 0xE0, 0xF0, 0x59)
			}
			out = append(out, 0xE0, info.code)
		} else {
			out = append(out, 0xE0, 0xF0, info.code)
			if shift.Right {
				out = append(out, 0xE0, 0x59)
			}
			if shift.Left {
				out = append(out, 0xE0, 0x12)
			}
		}
	}
	return out
}
