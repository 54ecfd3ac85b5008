package buffer

import "github.com/rivo/uniseg"

// graphemeBoundaries returns the code unit offsets of every grapheme cluster
// boundary in the projection, including 0 and Len().
func (d *Document) graphemeBoundaries() []int {
	plain := d.PlainText()
	bounds := []int{0}
	pos := 0
	g := uniseg.NewGraphemes(plain)
	for g.Next() {
		pos += CodeUnits(g.Str())
		bounds = append(bounds, pos)
	}
	return bounds
}

// PrevGrapheme returns the start of the grapheme cluster that ends at or
// spans offset. It returns 0 at the start of the document.
func (d *Document) PrevGrapheme(offset int) int {
	prev := 0
	for _, b := range d.graphemeBoundaries() {
		if b >= offset {
			break
		}
		prev = b
	}
	return prev
}

// NextGrapheme returns the end of the grapheme cluster that starts at or
// spans offset. It returns Len() at the end of the document.
func (d *Document) NextGrapheme(offset int) int {
	bounds := d.graphemeBoundaries()
	for _, b := range bounds {
		if b > offset {
			return b
		}
	}
	return bounds[len(bounds)-1]
}
