package dsl

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
)

// Handle refers to a node under construction. Handles are only valid for the
// builder that produced them.
type Handle struct {
	id string
}

// ID returns the node id the handle refers to.
func (h Handle) ID() string { return h.id }

type pendingConn struct {
	from   Handle
	output string // empty = source's first output
	to     Handle
	input  string // empty = next unclaimed input on the target
}

// Builder accumulates nodes and connections, then assembles a graph.Store.
type Builder struct {
	factory *domain.Factory
	nodes   []*domain.Node
	conns   []pendingConn
}

// New creates a Builder with UUID ids.
func New() *Builder {
	return NewWithGenerator(nil)
}

// NewWithGenerator creates a Builder using the given id generator, letting
// tests pin deterministic ids.
func NewWithGenerator(gen domain.IDGenerator) *Builder {
	return &Builder{factory: domain.NewFactory(gen)}
}

// Source adds a Source node.
func (b *Builder) Source(label, sourceFile string) Handle {
	return b.add(b.factory.Source(label, sourceFile))
}

// Rule adds a Rule node with one input. Build grows the arity if more
// connections land on it.
func (b *Builder) Rule(label, variableType, codeLine string, opts ...domain.RuleOption) Handle {
	return b.add(b.factory.Rule(label, variableType, codeLine, 1, opts...))
}

// Gate adds a LogicGate with the floor arity of two.
func (b *Builder) Gate(op domain.GateOp) Handle {
	return b.add(b.factory.LogicGate(op, 2))
}

// Action adds a terminal Action node.
func (b *Builder) Action(label string) Handle {
	return b.add(b.factory.Action(label))
}

// Connect wires from's first output to to's next unclaimed input.
func (b *Builder) Connect(from, to Handle) *Builder {
	b.conns = append(b.conns, pendingConn{from: from, to: to})
	return b
}

// ConnectKeys wires an explicit socket pair.
func (b *Builder) ConnectKeys(from Handle, output string, to Handle, input string) *Builder {
	b.conns = append(b.conns, pendingConn{from: from, output: output, to: to, input: input})
	return b
}

func (b *Builder) add(n *domain.Node) Handle {
	b.nodes = append(b.nodes, n)
	return Handle{id: n.ID}
}

// Build assembles the store. Auto-keyed connections claim input0, input1, ...
// on their target in declaration order; when the claims outgrow a
// variable-arity target, its arity is reconciled up first.
func (b *Builder) Build() (*graph.Store, error) {
	store := graph.NewStore()
	rec := graph.NewReconciler(store)

	byID := make(map[string]*domain.Node, len(b.nodes))
	for _, n := range b.nodes {
		if err := store.AddNode(n); err != nil {
			return nil, err
		}
		byID[n.ID] = n
	}

	// Count the inputs each target needs before placing any connection.
	claimed := make(map[string]int)
	needed := make(map[string]int)
	for _, pc := range b.conns {
		if pc.input == "" {
			needed[pc.to.id]++
		}
	}
	for id, n := range needed {
		node, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("connect target %q: %w", id, domain.ErrNodeNotFound)
		}
		if _, variable := node.InputFloor(); variable && n > node.NumInputs() {
			if _, err := rec.Reconcile(id, n); err != nil {
				return nil, err
			}
		}
	}

	for _, pc := range b.conns {
		src, ok := byID[pc.from.id]
		if !ok {
			return nil, fmt.Errorf("connect source %q: %w", pc.from.id, domain.ErrNodeNotFound)
		}
		output := pc.output
		if output == "" {
			if src.NumOutputs() == 0 {
				return nil, fmt.Errorf("node %q has no outputs: %w", src.Label, domain.ErrInvalidEndpoint)
			}
			output = src.Outputs[0].Key
		}
		input := pc.input
		if input == "" {
			input = domain.InputKey(claimed[pc.to.id])
			claimed[pc.to.id]++
		}
		conn := b.factory.Connection(pc.from.id, output, pc.to.id, input)
		if err := store.AddConnection(conn); err != nil {
			return nil, err
		}
	}
	return store, nil
}
