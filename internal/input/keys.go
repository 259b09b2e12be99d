package input

import "unicode/utf8"

const (
	keyCtrlC     = 0x03
	keyEnter     = 0x0d
	keyEscape    = 0x1b
	keyBackspace = 0x7f
)

var arrows = map[byte]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
}

// parseKeys splits one read of raw terminal input into key names using the
// same vocabulary as the keymap ("space", "left", "ctrl+c", "q", ...).
// Unrecognised control bytes and escape sequences are dropped.
func parseKeys(buf []byte) []string {
	var keys []string
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == keyEscape:
			name, n := parseEscape(buf[i:])
			if name != "" {
				keys = append(keys, name)
			}
			i += n
			continue
		case b == ' ':
			keys = append(keys, "space")
		case b == keyCtrlC:
			keys = append(keys, "ctrl+c")
		case b == keyEnter:
			keys = append(keys, "enter")
		case b == keyBackspace:
			keys = append(keys, "backspace")
		case b < 0x20:
			// other control characters
		case b < utf8.RuneSelf:
			keys = append(keys, string(rune(b)))
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError {
				keys = append(keys, string(r))
			}
			i += size
			continue
		}
		i++
	}
	return keys
}

// parseEscape decodes an escape sequence at the start of buf and returns the
// key name ("" if unknown) and the number of bytes consumed.
func parseEscape(buf []byte) (string, int) {
	if len(buf) == 1 {
		return "esc", 1
	}
	// CSI (ESC [) and SS3 (ESC O) cursor keys.
	if buf[1] != '[' && buf[1] != 'O' {
		return "esc", 1
	}
	// Skip parameter bytes up to the final byte.
	for j := 2; j < len(buf); j++ {
		c := buf[j]
		if c >= 0x40 && c <= 0x7e {
			return arrows[c], j + 1
		}
	}
	return "", len(buf)
}
