package buffer

// DefaultBlockTag is the tag used when plain inline content is promoted to a block.
const DefaultBlockTag = "p"

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithFormatTag sets the tag used when a format is newly applied.
// Parsing still accepts every alias of the format.
func WithFormatTag(f Format, tag string) Option {
	return func(d *Document) {
		if tag == "" {
			return
		}
		if FormatForTag(tag) != f {
			return
		}
		d.tags[f.index()] = tag
	}
}

// WithBlockTag sets the tag used when Enter promotes inline content to blocks.
func WithBlockTag(tag string) Option {
	return func(d *Document) {
		if IsBlockTag(tag) {
			d.blockTag = tag
		}
	}
}
