package action

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces action identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator generates "<prefix>-N" identifiers with N increasing
// from 1.
type CounterGenerator struct {
	prefix string
	next   uint64
}

// NewCounterGenerator creates a counter generator. An empty prefix
// defaults to "action".
func NewCounterGenerator(prefix string) *CounterGenerator {
	if prefix == "" {
		prefix = "action"
	}
	return &CounterGenerator{prefix: prefix}
}

// NewID returns the next identifier.
func (g *CounterGenerator) NewID() string {
	g.next++
	return g.prefix + "-" + strconv.FormatUint(g.next, 10)
}
