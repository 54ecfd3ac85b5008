package buffer

import "strings"

// Format is an inline format that can be toggled on a range.
type Format uint8

// Inline formats. Each is a single bit so formats combine into a FormatSet.
const (
	Bold Format = 1 << iota
	Italic
	Underline
	StrikeThrough
	InlineCode
)

// AllFormats lists the formats in nesting order, outermost first.
var AllFormats = []Format{Bold, Italic, Underline, StrikeThrough, InlineCode}

var formatNames = map[Format]string{
	Bold:          "bold",
	Italic:        "italic",
	Underline:     "underline",
	StrikeThrough: "strikethrough",
	InlineCode:    "inline_code",
}

// defaultTags are the tags emitted when a format is newly applied.
var defaultTags = [...]string{"b", "i", "u", "del", "code"}

var tagFormats = map[string]Format{
	"b":      Bold,
	"strong": Bold,
	"i":      Italic,
	"em":     Italic,
	"u":      Underline,
	"del":    StrikeThrough,
	"s":      StrikeThrough,
	"strike": StrikeThrough,
	"code":   InlineCode,
}

// String returns the format name.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

func (f Format) index() int {
	for i, g := range AllFormats {
		if g == f {
			return i
		}
	}
	return 0
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, bool) {
	name = strings.ToLower(name)
	for f, n := range formatNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// FormatForTag returns the format a tag represents, or 0 if it is not a format tag.
func FormatForTag(tag string) Format {
	return tagFormats[strings.ToLower(tag)]
}

// FormatSet is a set of inline formats.
type FormatSet uint8

// NewFormatSet creates a set containing the given formats.
func NewFormatSet(formats ...Format) FormatSet {
	var s FormatSet
	for _, f := range formats {
		s = s.With(f)
	}
	return s
}

// Has reports whether f is in the set.
func (s FormatSet) Has(f Format) bool {
	return s&FormatSet(f) != 0
}

// With returns the set with f added.
func (s FormatSet) With(f Format) FormatSet {
	return s | FormatSet(f)
}

// Without returns the set with f removed.
func (s FormatSet) Without(f Format) FormatSet {
	return s &^ FormatSet(f)
}

// Toggle returns the set with f flipped.
func (s FormatSet) Toggle(f Format) FormatSet {
	return s ^ FormatSet(f)
}

// IsEmpty returns true if no format is set.
func (s FormatSet) IsEmpty() bool {
	return s == 0
}

// Formats returns the members of the set in nesting order.
func (s FormatSet) Formats() []Format {
	var out []Format
	for _, f := range AllFormats {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the format names of the set in nesting order.
func (s FormatSet) Names() []string {
	fs := s.Formats()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return names
}

// String returns a human-readable representation of the set.
func (s FormatSet) String() string {
	return "{" + strings.Join(s.Names(), ",") + "}"
}
