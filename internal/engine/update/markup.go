package update

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

// Markup is serialized document markup as UTF-16 code units.
type Markup []uint16

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// NewMarkup encodes s as UTF-16 code units.
func NewMarkup(s string) Markup {
	return Markup(utf16.Encode([]rune(s)))
}

// String decodes the markup back to a Go string.
func (m Markup) String() string {
	return string(utf16.Decode(m))
}

// Len returns the number of code units.
func (m Markup) Len() int {
	return len(m)
}

// Bytes returns the markup as UTF-16LE bytes.
func (m Markup) Bytes() ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(m.String()))
}

// DecodeMarkup parses UTF-16LE bytes into markup.
func DecodeMarkup(b []byte) (Markup, error) {
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return nil, err
	}
	return NewMarkup(string(s)), nil
}
