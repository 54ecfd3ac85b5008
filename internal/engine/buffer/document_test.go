package buffer

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	d, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", markup, err)
	}
	return d
}

func TestNewEmpty(t *testing.T) {
	d := New()
	if d.Len() != 0 {
		t.Errorf("expected empty document, got len %d", d.Len())
	}
	if d.Markup() != "" {
		t.Errorf("expected empty markup, got %q", d.Markup())
	}
	if d.IsBlockMode() {
		t.Error("expected inline mode")
	}
}

func TestCodeUnits(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"ΩΩ", 2},
		{"\U0001F4A9", 2},
		{"\U0001F469\U0001F3FF\u200d\U0001F680", 7},
	}
	for _, tt := range tests {
		if got := CodeUnits(tt.text); got != tt.want {
			t.Errorf("CodeUnits(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
		plain  string
	}{
		{"plain", "hello", "hello", "hello"},
		{"bold prefix", "<b>hi</b>there", "<b>hi</b>there", "hithere"},
		{"strong alias kept", "<strong>a</strong>", "<strong>a</strong>", "a"},
		{"paragraphs", "<p>ab</p><p>cd</p>", "<p>ab</p><p>cd</p>", "ab\ncd"},
		{"line break", "a<br>b", "<p>a</p><p>b</p>", "a\nb"},
		{"unclosed paragraph", "<p>a<p>b</p>", "<p>a</p><p>b</p>", "a\nb"},
		{"empty container pruned", "<b></b>x", "x", "x"},
		{"adjacent merged", "<b>a</b><b>b</b>", "<b>ab</b>", "ab"},
		{"entities", "a &amp; b", "a &amp; b", "a & b"},
		{"link", `<a href="https://x.org">x</a>`, `<a href="https://x.org">x</a>`, "x"},
		{"whitespace between blocks", "<p>a</p>\n<p>b</p>", "<p>a</p><p>b</p>", "a\nb"},
		{"nested block flattened", "<blockquote>a<p>b</p>c</blockquote>", "<blockquote>a</blockquote><p>b</p><blockquote>c</blockquote>", "a\nb\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, tt.markup)
			if got := d.Markup(); got != tt.want {
				t.Errorf("expected markup %q, got %q", tt.want, got)
			}
			if got := d.PlainText(); got != tt.plain {
				t.Errorf("expected plain text %q, got %q", tt.plain, got)
			}
			if d.Len() != CodeUnits(tt.plain) {
				t.Errorf("expected len %d, got %d", CodeUnits(tt.plain), d.Len())
			}
		})
	}
}

func TestMarkupRoundTrip(t *testing.T) {
	docs := []string{
		"",
		"hello",
		"<b>hi</b>there",
		"<p>ab</p><p></p><p>cd</p>",
		"a<i>b<b>c</b></i>d",
		"\U0001F4A9<u>x</u>",
	}
	for _, markup := range docs {
		d := mustParse(t, markup)
		again := mustParse(t, d.Markup())
		if again.Markup() != d.Markup() {
			t.Errorf("round trip of %q: expected %q, got %q", markup, d.Markup(), again.Markup())
		}
		if again.Len() != d.Len() {
			t.Errorf("round trip of %q: expected len %d, got %d", markup, d.Len(), again.Len())
		}
	}
}

func TestFormatsAt(t *testing.T) {
	d := mustParse(t, "<b>hi</b>there")

	tests := []struct {
		offset int
		want   FormatSet
	}{
		{0, NewFormatSet(Bold)},
		{1, NewFormatSet(Bold)},
		{2, NewFormatSet(Bold)},
		{3, 0},
		{7, 0},
	}
	for _, tt := range tests {
		if got := d.FormatsAt(tt.offset); got != tt.want {
			t.Errorf("FormatsAt(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestFormatsIn(t *testing.T) {
	d := mustParse(t, "<b>hi<i>x</i></b>there")

	if got := d.FormatsIn(0, 3); got != NewFormatSet(Bold) {
		t.Errorf("expected {bold}, got %v", got)
	}
	if got := d.FormatsIn(2, 3); got != NewFormatSet(Bold, Italic) {
		t.Errorf("expected {bold,italic}, got %v", got)
	}
	if got := d.FormatsIn(0, 4); got != 0 {
		t.Errorf("expected no common formats, got %v", got)
	}
}

func TestFormatsAtBlockStart(t *testing.T) {
	d := mustParse(t, "<p><b>ab</b></p><p><i>cd</i></p>")

	if got := d.FormatsAt(3); got != NewFormatSet(Italic) {
		t.Errorf("expected italic at start of second block, got %v", got)
	}
	if got := d.FormatsAt(2); got != NewFormatSet(Bold) {
		t.Errorf("expected bold at end of first block, got %v", got)
	}
}

func TestTextIn(t *testing.T) {
	d := mustParse(t, "<p>a\U0001F4A9b</p><p>cd</p>")

	got, err := d.TextIn(1, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "\U0001F4A9b\nc" {
		t.Errorf("expected %q, got %q", "\U0001F4A9b\nc", got)
	}

	if _, err := d.TextIn(3, 2); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestSnap(t *testing.T) {
	d := mustParse(t, "a\U0001F4A9b")

	tests := []struct{ in, want int }{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 3},
		{4, 4},
	}
	for _, tt := range tests {
		if got := d.Snap(tt.in); got != tt.want {
			t.Errorf("Snap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCharBefore(t *testing.T) {
	d := mustParse(t, "<p>a b</p><p>c</p>")

	tests := []struct {
		offset int
		want   rune
		ok     bool
	}{
		{0, 0, false},
		{1, 'a', true},
		{2, ' ', true},
		{4, '\n', true},
		{5, 'c', true},
		{6, 0, false},
	}
	for _, tt := range tests {
		r, ok := d.CharBefore(tt.offset)
		if r != tt.want || ok != tt.ok {
			t.Errorf("CharBefore(%d) = %q, %v; want %q, %v", tt.offset, r, ok, tt.want, tt.ok)
		}
	}
}

func TestGraphemes(t *testing.T) {
	astronaut := "\U0001F469\U0001F3FF\u200d\U0001F680"
	d := mustParse(t, "a"+astronaut+"b")

	if got := d.PrevGrapheme(8); got != 1 {
		t.Errorf("PrevGrapheme(8) = %d, want 1", got)
	}
	if got := d.NextGrapheme(1); got != 8 {
		t.Errorf("NextGrapheme(1) = %d, want 8", got)
	}
	if got := d.PrevGrapheme(0); got != 0 {
		t.Errorf("PrevGrapheme(0) = %d, want 0", got)
	}
	if got := d.NextGrapheme(9); got != 9 {
		t.Errorf("NextGrapheme(9) = %d, want 9", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		children []*Node
	}{
		{"mixed root", []*Node{NewContainer("p"), NewText("x")}},
		{"empty text", []*Node{NewText("")}},
		{"empty container", []*Node{NewContainer("b")}},
		{"block in inline", []*Node{NewContainer("b", NewContainer("p", NewText("x")))}},
		{"nested link", []*Node{NewContainer("a", NewContainer("a", NewText("x")))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.root.Children = tt.children
			err := d.Validate()
			if !errors.Is(err, ErrStructural) {
				t.Errorf("expected ErrStructural, got %v", err)
			}
		})
	}

	if err := mustParse(t, "<p><b>a</b></p>").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := mustParse(t, "<b>hi</b>")
	c := d.Clone()
	if err := c.InsertText(2, "!", NewFormatSet(Bold)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Markup() != "<b>hi</b>" {
		t.Errorf("original changed: %q", d.Markup())
	}
	if c.Markup() != "<b>hi!</b>" {
		t.Errorf("expected %q, got %q", "<b>hi!</b>", c.Markup())
	}
}
