package hotkey

import (
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"
)

// Lookup resolves a key name ("f8", "space", "a") to the hook keycode and a
// display label. Names are case-insensitive.
func Lookup(name string) (uint16, string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return 0, "", fmt.Errorf("hotkey must not be empty")
	}

	// Common aliases.
	switch key {
	case "return":
		key = "enter"
	case "escape":
		key = "esc"
	}

	code, ok := hook.Keycode[key]
	if !ok {
		return 0, "", fmt.Errorf("unsupported hotkey %q", name)
	}
	return code, strings.ToUpper(key), nil
}
