package inject

import (
	"fmt"
	"runtime"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
	"github.com/rs/zerolog"
)

// systemClipboard backs the Clipboard interface with atotto/clipboard.
type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// systemKeyboard backs the Keyboard interface with keybd_event.
type systemKeyboard struct {
	log zerolog.Logger
}

func newSystemKeyboard(log zerolog.Logger) *systemKeyboard {
	return &systemKeyboard{log: log}
}

// Paste sends the platform paste chord (cmd+V on darwin, ctrl+V elsewhere).
func (k *systemKeyboard) Paste() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("keyboard binding: %w", err)
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("send paste chord: %w", err)
	}
	return nil
}

// Type emits text one keystroke at a time. Characters without a mapped
// keycode are skipped with a warning; this path is the fallback of a fallback
// and is best-effort for the transcripts the providers produce.
func (k *systemKeyboard) Type(text string) error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("keyboard binding: %w", err)
	}

	for _, r := range text {
		code, shift, ok := lookupKey(r)
		if !ok {
			k.log.Warn().Str("char", string(r)).Msg("no keycode for character, dropped from typed output")
			continue
		}
		kb.Clear()
		kb.SetKeys(code)
		kb.HasSHIFT(shift)
		if err := kb.Launching(); err != nil {
			return fmt.Errorf("send keystroke %q: %w", r, err)
		}
	}
	return nil
}

// lookupKey resolves a character to a keycode and shift flag, assuming a US
// layout for the shifted pairs.
func lookupKey(r rune) (code int, shift bool, ok bool) {
	if code, ok := keyCodes[unicode.ToLower(r)]; ok {
		return code, unicode.IsUpper(r), true
	}
	if code, ok := shiftedCodes[r]; ok {
		return code, true, true
	}
	return 0, false, false
}

// keyCodes maps the characters keybd_event exposes portable codes for. The
// VK_SP names follow the library's US-layout punctuation table.
var keyCodes = map[rune]int{
	'a': keybd_event.VK_A, 'b': keybd_event.VK_B, 'c': keybd_event.VK_C,
	'd': keybd_event.VK_D, 'e': keybd_event.VK_E, 'f': keybd_event.VK_F,
	'g': keybd_event.VK_G, 'h': keybd_event.VK_H, 'i': keybd_event.VK_I,
	'j': keybd_event.VK_J, 'k': keybd_event.VK_K, 'l': keybd_event.VK_L,
	'm': keybd_event.VK_M, 'n': keybd_event.VK_N, 'o': keybd_event.VK_O,
	'p': keybd_event.VK_P, 'q': keybd_event.VK_Q, 'r': keybd_event.VK_R,
	's': keybd_event.VK_S, 't': keybd_event.VK_T, 'u': keybd_event.VK_U,
	'v': keybd_event.VK_V, 'w': keybd_event.VK_W, 'x': keybd_event.VK_X,
	'y': keybd_event.VK_Y, 'z': keybd_event.VK_Z,
	'0': keybd_event.VK_0, '1': keybd_event.VK_1, '2': keybd_event.VK_2,
	'3': keybd_event.VK_3, '4': keybd_event.VK_4, '5': keybd_event.VK_5,
	'6': keybd_event.VK_6, '7': keybd_event.VK_7, '8': keybd_event.VK_8,
	'9': keybd_event.VK_9,
	' ':  keybd_event.VK_SPACE,
	'\n': keybd_event.VK_ENTER,
	'\t': keybd_event.VK_TAB,
	'`':  keybd_event.VK_SP1,
	'-':  keybd_event.VK_SP2,
	'=':  keybd_event.VK_SP3,
	'[':  keybd_event.VK_SP4,
	']':  keybd_event.VK_SP5,
	';':  keybd_event.VK_SP6,
	'\'': keybd_event.VK_SP7,
	',':  keybd_event.VK_SP8,
	'.':  keybd_event.VK_SP9,
	'/':  keybd_event.VK_SP10,
	'\\': keybd_event.VK_SP11,
}

// shiftedCodes maps the characters that need SHIFT held over a base key.
var shiftedCodes = map[rune]int{
	'!': keybd_event.VK_1, '@': keybd_event.VK_2, '#': keybd_event.VK_3,
	'$': keybd_event.VK_4, '%': keybd_event.VK_5, '^': keybd_event.VK_6,
	'&': keybd_event.VK_7, '*': keybd_event.VK_8, '(': keybd_event.VK_9,
	')': keybd_event.VK_0,
	'~': keybd_event.VK_SP1,
	'_': keybd_event.VK_SP2,
	'+': keybd_event.VK_SP3,
	'{': keybd_event.VK_SP4,
	'}': keybd_event.VK_SP5,
	':': keybd_event.VK_SP6,
	'"': keybd_event.VK_SP7,
	'<': keybd_event.VK_SP8,
	'>': keybd_event.VK_SP9,
	'?': keybd_event.VK_SP10,
	'|': keybd_event.VK_SP11,
}
