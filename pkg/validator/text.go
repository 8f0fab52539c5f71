package validator

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// LineCount counts lines the way the interpreter's str.splitlines does:
// every line boundary ends a line, "\r\n" counts once, and a trailing
// boundary does not start an extra empty line.
func LineCount(s string) int {
	n := 0
	pending := false
	for i, r := range s {
		switch r {
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			n++
			pending = false
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			n++
			pending = false
		default:
			pending = true
		}
	}
	if pending {
		n++
	}
	return n
}

// Fingerprint returns a short, stable digest of s for audit trails.
func Fingerprint(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
