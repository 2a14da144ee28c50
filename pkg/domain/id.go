package domain

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces opaque unique identifiers for nodes and connections.
// The graph core never inspects ids, it only compares them.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 ids. Sorting ids by value
// roughly sorts them by creation time, which helps when eyeballing exported
// rulesets. Stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a new hyphenated UUIDv7 string.
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "<prefix>-1", "<prefix>-2", ... for deterministic
// tests and golden files.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceGenerator creates a SequenceGenerator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix, next: 1}
}

// NewID returns the next id in the sequence.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, g.next)
	g.next++
	return id
}
