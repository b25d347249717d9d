// Package sanitizer cleans free text typed into the reservation dialog.
package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizePassphrase drops control characters from a new passphrase. It is
// applied when a reservation is created, never to the passphrase offered on
// cancel, which must equal the stored one byte for byte.
func NormalizePassphrase(passphrase string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, passphrase)
}
