package otp

import (
	"encoding/base32"
	"strings"
	"unicode"
)

// Decode converts a Base32 secret into raw key bytes.
//
// Letters are upper-cased first. Characters outside A-Z and 2-7 (whitespace,
// '=' padding, dashes, anything else) are skipped. Bits left over after the
// last full byte are dropped. Decode never fails; an input without any valid
// character yields an empty slice.
func Decode(input string) []byte {
	out := make([]byte, 0, len(input)*5/8)

	var buf uint32
	var bits uint
	for _, r := range strings.ToUpper(input) {
		v, ok := symbolValue(r)
		if !ok {
			continue
		}

		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
			buf &= 1<<bits - 1
		}
	}

	return out
}

// Normalize returns the secret reduced to its Base32 alphabet characters,
// upper-cased, and the number of characters that were skipped for being
// neither alphabet, whitespace, nor padding.
func Normalize(input string) (string, int) {
	var sb strings.Builder
	sb.Grow(len(input))

	skipped := 0
	for _, r := range strings.ToUpper(input) {
		if _, ok := symbolValue(r); ok {
			sb.WriteRune(r)
			continue
		}
		if r != '=' && !unicode.IsSpace(r) {
			skipped++
		}
	}

	return sb.String(), skipped
}

// EncodeSecret returns the canonical unpadded Base32 form of key.
func EncodeSecret(key []byte) string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key)
}

// symbolValue maps an upper-case RFC 4648 symbol to its 5-bit value.
func symbolValue(r rune) (byte, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return byte(r - 'A'), true
	case r >= '2' && r <= '7':
		return byte(r-'2') + 26, true
	default:
		return 0, false
	}
}
