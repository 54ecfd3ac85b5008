package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
)

// DefaultMentionTrigger starts a mention when typed at a word start.
const DefaultMentionTrigger = "@"

// Option configures a Composer during creation.
type Option func(*Composer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFormatTag sets the tag written when a format is applied, e.g. "strong"
// for Bold. Tags that do not denote the format are ignored.
func WithFormatTag(f buffer.Format, tag string) Option {
	return func(c *Composer) {
		c.docOpts = append(c.docOpts, buffer.WithFormatTag(f, tag))
	}
}

// WithBlockTag sets the tag of blocks created by Enter.
func WithBlockTag(tag string) Option {
	return func(c *Composer) {
		c.docOpts = append(c.docOpts, buffer.WithBlockTag(tag))
	}
}

// WithMentionTriggers sets the strings that start a mention.
// Calling it with no triggers disables mentions.
func WithMentionTriggers(triggers ...string) Option {
	return func(c *Composer) {
		c.triggers = nil
		for _, t := range triggers {
			if t != "" {
				c.triggers = append(c.triggers, t)
			}
		}
	}
}

// WithIDGenerator sets the generator for action identifiers.
func WithIDGenerator(g action.IDGenerator) Option {
	return func(c *Composer) {
		if g != nil {
			c.ids = g
		}
	}
}
