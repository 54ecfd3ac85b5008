package buffer

import (
	"strings"
	"unicode/utf8"
)

// runeUnits returns the number of UTF-16 code units needed to encode r.
func runeUnits(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// CodeUnits returns the UTF-16 length of s.
func CodeUnits(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// CleanText drops NUL and replaces invalid UTF-8 with U+FFFD, so text
// serializes to markup that parses back to the same characters.
func CleanText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.ReplaceAll(s, "\x00", "")
}

// byteIndex returns the byte index in s of the code unit offset cu.
// An offset inside a surrogate pair resolves to the start of its code point.
func byteIndex(s string, cu int) int {
	if cu <= 0 {
		return 0
	}
	acc := 0
	for i, r := range s {
		w := runeUnits(r)
		if acc+w > cu {
			return i
		}
		acc += w
		if acc == cu {
			return i + utf8.RuneLen(r)
		}
	}
	return len(s)
}

// snapUnits rounds cu down to a code point boundary of s.
func snapUnits(s string, cu int) int {
	return CodeUnits(s[:byteIndex(s, cu)])
}
