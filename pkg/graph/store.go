package graph

import (
	"fmt"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store holds the nodes and connections of one workflow graph and enforces
// its structural invariants. All reads hand out deep copies; the only way to
// change the graph is through the mutation methods.
//
// Insertion order of nodes and connections is preserved. Snapshots and the
// compiler rely on that order, which makes compilation deterministic.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*domain.Node
	nodeOrder []string
	conns     map[string]*domain.Connection
	connOrder []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*domain.Node),
		conns: make(map[string]*domain.Connection),
	}
}

// AddNode inserts a fully constructed node. The node's sockets must already
// be materialized (use a domain.Factory). Returns domain.ErrDuplicateID if
// the id is taken.
func (s *Store) AddNode(n *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("node %q: %w", n.ID, domain.ErrDuplicateID)
	}
	clone := n.Clone()
	s.nodes[n.ID] = &clone
	s.nodeOrder = append(s.nodeOrder, n.ID)
	return nil
}

// RemoveNode deletes a node and every connection touching it. The cascade
// and the node removal happen under one lock, so no observer ever sees a
// dangling connection. Removing an absent id is a no-op.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; !exists {
		return
	}
	s.removeConnectionsWhere(func(c *domain.Connection) bool {
		return c.Touches(id)
	})
	delete(s.nodes, id)
	s.nodeOrder = removeString(s.nodeOrder, id)
}

// AddConnection inserts a connection after checking both endpoints resolve
// to live sockets of the correct direction. The store is unchanged on
// failure.
func (s *Store) AddConnection(c domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conns[c.ID]; exists {
		return fmt.Errorf("connection %q: %w", c.ID, domain.ErrDuplicateID)
	}
	if err := s.resolveEndpoint(c.SourceNodeID, domain.DirectionOutput, c.SourceOutputKey); err != nil {
		return err
	}
	if err := s.resolveEndpoint(c.TargetNodeID, domain.DirectionInput, c.TargetInputKey); err != nil {
		return err
	}

	clone := c
	s.conns[c.ID] = &clone
	s.connOrder = append(s.connOrder, c.ID)
	return nil
}

// RemoveConnection deletes a connection by id. Absent ids are a no-op.
func (s *Store) RemoveConnection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conns[id]; !exists {
		return
	}
	delete(s.conns, id)
	s.connOrder = removeString(s.connOrder, id)
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns a snapshot of all nodes in insertion order.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Connections returns a snapshot of all connections in insertion order,
// consistent with the snapshot Nodes would return at the same moment.
func (s *Store) Connections() []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Connection, 0, len(s.connOrder))
	for _, id := range s.connOrder {
		out = append(out, *s.conns[id])
	}
	return out
}

// Len returns the node and connection counts.
func (s *Store) Len() (nodes, connections int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.conns)
}

// SetLabel updates a node's display label. No structural effect.
func (s *Store) SetLabel(id, label string) error {
	return s.updateNode(id, func(n *domain.Node) error {
		n.Label = label
		return nil
	})
}

// SetSourceFile updates the data source filename of a Source node.
func (s *Store) SetSourceFile(id, file string) error {
	return s.updateNode(id, func(n *domain.Node) error {
		if n.Kind != domain.KindSource {
			return fmt.Errorf("node %q is %s: %w", id, n.Kind, domain.ErrKindMismatch)
		}
		n.SourceFile = file
		return nil
	})
}

// SetCodeLine updates the opaque condition text of a Rule node.
func (s *Store) SetCodeLine(id, codeLine string) error {
	return s.updateNode(id, func(n *domain.Node) error {
		if n.Kind != domain.KindRule {
			return fmt.Errorf("node %q is %s: %w", id, n.Kind, domain.ErrKindMismatch)
		}
		n.CodeLine = codeLine
		return nil
	})
}

// SetVariableType updates the variable type of a Rule node.
func (s *Store) SetVariableType(id, variableType string) error {
	return s.updateNode(id, func(n *domain.Node) error {
		if n.Kind != domain.KindRule {
			return fmt.Errorf("node %q is %s: %w", id, n.Kind, domain.ErrKindMismatch)
		}
		n.VariableType = variableType
		return nil
	})
}

func (s *Store) updateNode(id string, fn func(*domain.Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("node %q: %w", id, domain.ErrNodeNotFound)
	}
	return fn(n)
}

// resolveEndpoint checks that nodeID has a live socket (dir, key).
// Caller holds the lock.
func (s *Store) resolveEndpoint(nodeID string, dir domain.Direction, key string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %q: %w", nodeID, domain.ErrInvalidEndpoint)
	}
	if _, ok := n.FindSocket(dir, key); !ok {
		return fmt.Errorf("socket %s/%s on node %q: %w", dir, key, nodeID, domain.ErrInvalidEndpoint)
	}
	return nil
}

// removeConnectionsWhere deletes every connection matching the predicate.
// Caller holds the lock.
func (s *Store) removeConnectionsWhere(match func(*domain.Connection) bool) {
	kept := s.connOrder[:0]
	for _, id := range s.connOrder {
		if match(s.conns[id]) {
			delete(s.conns, id)
			continue
		}
		kept = append(kept, id)
	}
	s.connOrder = kept
}

// reconcileInputs resizes a variable-arity node's input sockets to desired
// (already clamped by the caller), cascading connection removal for sockets
// that disappear. Runs entirely under the store lock, so invariant 2 holds
// at every observable moment.
func (s *Store) reconcileInputs(nodeID string, desired int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return 0, fmt.Errorf("node %q: %w", nodeID, domain.ErrNodeNotFound)
	}

	current := len(n.Inputs)
	switch {
	case desired > current:
		for i := current; i < desired; i++ {
			n.Inputs = append(n.Inputs, domain.Socket{
				NodeID:    nodeID,
				Direction: domain.DirectionInput,
				Key:       domain.InputKey(i),
			})
		}
	case desired < current:
		// Highest index first. Connections targeting a socket go before
		// the socket itself.
		for i := current - 1; i >= desired; i-- {
			key := n.Inputs[i].Key
			s.removeConnectionsWhere(func(c *domain.Connection) bool {
				return c.TargetNodeID == nodeID && c.TargetInputKey == key
			})
			n.Inputs = n.Inputs[:i]
		}
	}
	return len(n.Inputs), nil
}

func removeString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
