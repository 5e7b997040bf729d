package hotkey

import (
	"fmt"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// keyNames maps the names accepted in the configuration file to evdev
// codes. Plain "ctrl"/"alt"/"shift"/"super" mean the left-hand key, as
// the defaults always did.
var keyNames = map[string]Key{
	"ctrl": evdev.KEY_LEFTCTRL, "leftctrl": evdev.KEY_LEFTCTRL, "rightctrl": evdev.KEY_RIGHTCTRL,
	"alt": evdev.KEY_LEFTALT, "leftalt": evdev.KEY_LEFTALT, "rightalt": evdev.KEY_RIGHTALT,
	"shift": evdev.KEY_LEFTSHIFT, "leftshift": evdev.KEY_LEFTSHIFT, "rightshift": evdev.KEY_RIGHTSHIFT,
	"super": evdev.KEY_LEFTMETA, "meta": evdev.KEY_LEFTMETA, "rightmeta": evdev.KEY_RIGHTMETA,

	"space": evdev.KEY_SPACE, "enter": evdev.KEY_ENTER, "tab": evdev.KEY_TAB,
	"esc": evdev.KEY_ESC, "escape": evdev.KEY_ESC, "backspace": evdev.KEY_BACKSPACE,

	"a": evdev.KEY_A, "b": evdev.KEY_B, "c": evdev.KEY_C, "d": evdev.KEY_D,
	"e": evdev.KEY_E, "f": evdev.KEY_F, "g": evdev.KEY_G, "h": evdev.KEY_H,
	"i": evdev.KEY_I, "j": evdev.KEY_J, "k": evdev.KEY_K, "l": evdev.KEY_L,
	"m": evdev.KEY_M, "n": evdev.KEY_N, "o": evdev.KEY_O, "p": evdev.KEY_P,
	"q": evdev.KEY_Q, "r": evdev.KEY_R, "s": evdev.KEY_S, "t": evdev.KEY_T,
	"u": evdev.KEY_U, "v": evdev.KEY_V, "w": evdev.KEY_W, "x": evdev.KEY_X,
	"y": evdev.KEY_Y, "z": evdev.KEY_Z,

	"0": evdev.KEY_0, "1": evdev.KEY_1, "2": evdev.KEY_2, "3": evdev.KEY_3,
	"4": evdev.KEY_4, "5": evdev.KEY_5, "6": evdev.KEY_6, "7": evdev.KEY_7,
	"8": evdev.KEY_8, "9": evdev.KEY_9,
}

// ParseKey resolves a configuration key name to its evdev code.
func ParseKey(name string) (Key, error) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key name %q", name)
	}
	return k, nil
}

// ParseBinding resolves a configured modifier list and trigger key.
func ParseBinding(modifiers []string, trigger string) ([]Key, Key, error) {
	mods := make([]Key, 0, len(modifiers))
	for _, name := range modifiers {
		k, err := ParseKey(name)
		if err != nil {
			return nil, 0, fmt.Errorf("modifier: %w", err)
		}
		mods = append(mods, k)
	}
	trig, err := ParseKey(trigger)
	if err != nil {
		return nil, 0, fmt.Errorf("trigger: %w", err)
	}
	return mods, trig, nil
}
