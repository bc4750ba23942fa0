package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAccelerator is returned for shortcut strings that cannot be
// parsed.
var ErrInvalidAccelerator = errors.New("invalid accelerator")

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// Accelerator is a parsed shortcut such as "Ctrl+Shift+W".
type Accelerator struct {
	Mods Modifier
	Key  string // upper case letter or digit, "Space", "Return", "F1".."F12"
}

func (a Accelerator) String() string {
	var parts []string
	if a.Mods&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if a.Mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if a.Mods&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if a.Mods&ModSuper != 0 {
		parts = append(parts, "Super")
	}
	return strings.Join(append(parts, a.Key), "+")
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
}

var namedKeys = map[string]string{
	"space":  "Space",
	"return": "Return",
	"enter":  "Return",
	"tab":    "Tab",
	"esc":    "Escape",
	"escape": "Escape",
}

// ParseAccelerator parses strings like "Ctrl+Shift+W" or "Alt+Space".
// Modifier names are case-insensitive and exactly one non-modifier key is
// required.
func ParseAccelerator(s string) (Accelerator, error) {
	var acc Accelerator
	if strings.TrimSpace(s) == "" {
		return acc, fmt.Errorf("%w: empty", ErrInvalidAccelerator)
	}

	for _, part := range strings.Split(s, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			return acc, fmt.Errorf("%w: %q", ErrInvalidAccelerator, s)
		}
		if m, ok := modifierNames[name]; ok {
			acc.Mods |= m
			continue
		}
		if acc.Key != "" {
			return acc, fmt.Errorf("%w: %q has more than one key", ErrInvalidAccelerator, s)
		}
		key, ok := normalizeKey(name)
		if !ok {
			return acc, fmt.Errorf("%w: unknown key %q", ErrInvalidAccelerator, part)
		}
		acc.Key = key
	}

	if acc.Key == "" {
		return acc, fmt.Errorf("%w: %q has no key", ErrInvalidAccelerator, s)
	}
	return acc, nil
}

func normalizeKey(name string) (string, bool) {
	if k, ok := namedKeys[name]; ok {
		return k, true
	}
	r := []rune(name)
	if len(r) == 1 && r[0] < unicode.MaxASCII && (unicode.IsLetter(r[0]) || unicode.IsDigit(r[0])) {
		return strings.ToUpper(name), true
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(name, "f")); err == nil && name == "f"+strconv.Itoa(n) && n >= 1 && n <= 12 {
		return "F" + strconv.Itoa(n), true
	}
	return "", false
}

// X11 modifier masks.
const (
	x11ShiftMask   = 1
	x11LockMask    = 2
	x11ControlMask = 4
	x11Mod1Mask    = 8
	x11Mod2Mask    = 16
	x11Mod4Mask    = 64
)

func (a Accelerator) x11Modifiers() int {
	var m int
	if a.Mods&ModShift != 0 {
		m |= x11ShiftMask
	}
	if a.Mods&ModCtrl != 0 {
		m |= x11ControlMask
	}
	if a.Mods&ModAlt != 0 {
		m |= x11Mod1Mask
	}
	if a.Mods&ModSuper != 0 {
		m |= x11Mod4Mask
	}
	return m
}

// x11Keysym returns the keysym name understood by XStringToKeysym.
func (a Accelerator) x11Keysym() string {
	if len(a.Key) == 1 {
		return strings.ToLower(a.Key)
	}
	if a.Key == "Space" {
		return "space"
	}
	return a.Key
}

// Carbon modifier flags.
const (
	carbonCmdKey     = 0x100
	carbonShiftKey   = 0x200
	carbonOptionKey  = 0x800
	carbonControlKey = 0x1000
)

func (a Accelerator) carbonModifiers() uint32 {
	var m uint32
	if a.Mods&ModSuper != 0 {
		m |= carbonCmdKey
	}
	if a.Mods&ModShift != 0 {
		m |= carbonShiftKey
	}
	if a.Mods&ModAlt != 0 {
		m |= carbonOptionKey
	}
	if a.Mods&ModCtrl != 0 {
		m |= carbonControlKey
	}
	return m
}

// ANSI virtual key codes.
var carbonKeyCodes = map[string]uint32{
	"A": 0, "S": 1, "D": 2, "F": 3, "H": 4, "G": 5, "Z": 6, "X": 7,
	"C": 8, "V": 9, "B": 11, "Q": 12, "W": 13, "E": 14, "R": 15, "Y": 16,
	"T": 17, "1": 18, "2": 19, "3": 20, "4": 21, "6": 22, "5": 23, "9": 25,
	"7": 26, "8": 28, "0": 29, "O": 31, "U": 32, "I": 34, "P": 35, "L": 37,
	"J": 38, "K": 40, "N": 45, "M": 46,
	"Return": 36, "Tab": 48, "Space": 49, "Escape": 53,
	"F1": 122, "F2": 120, "F3": 99, "F4": 118, "F5": 96, "F6": 97,
	"F7": 98, "F8": 100, "F9": 101, "F10": 109, "F11": 103, "F12": 111,
}

func (a Accelerator) carbonKeyCode() (uint32, bool) {
	c, ok := carbonKeyCodes[a.Key]
	return c, ok
}
