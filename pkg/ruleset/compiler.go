package ruleset

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Compile projects a graph snapshot into a Ruleset.
//
// Records appear in the snapshot's order, which a graph.Store keeps as
// insertion order. Source provenance is propagated breadth-first along
// connection direction, one traversal per Source node. The tie-break when a
// node is reachable from several Sources is deliberate and documented:
// Sources are processed in snapshot order, the BFS queue is FIFO, and a tag
// once attached is never overwritten. A node with no path from any Source
// carries no source field at all.
//
// An unrecognized node kind aborts compilation with domain.ErrUnknownKind,
// and a connection referencing a node outside the snapshot aborts with
// domain.ErrNodeNotFound; a best-guess record would corrupt the ruleset
// downstream.
func Compile(nodes []domain.Node, connections []domain.Connection) (*Ruleset, error) {
	// Capacity is exact so the index pointers below survive the appends.
	records := make([]NodeRecord, 0, len(nodes))
	index := make(map[string]*NodeRecord, len(nodes))
	kinds := make(map[string]domain.Kind, len(nodes))

	for i := range nodes {
		rec, err := project(&nodes[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		index[rec.ID] = &records[len(records)-1]
		kinds[rec.ID] = nodes[i].Kind
	}

	// Forward adjacency, preserving connection order for a stable BFS.
	// Endpoints are checked against the node set first: the inputs are
	// caller-supplied slices, not necessarily a store snapshot.
	from := make(map[string][]domain.Connection)
	for _, c := range connections {
		if _, ok := index[c.SourceNodeID]; !ok {
			return nil, fmt.Errorf("connection %q references source node %q: %w", c.ID, c.SourceNodeID, domain.ErrNodeNotFound)
		}
		if _, ok := index[c.TargetNodeID]; !ok {
			return nil, fmt.Errorf("connection %q references target node %q: %w", c.ID, c.TargetNodeID, domain.ErrNodeNotFound)
		}
		from[c.SourceNodeID] = append(from[c.SourceNodeID], c)
	}

	tagged := make(map[string]bool)
	for i := range nodes {
		if nodes[i].Kind != domain.KindSource {
			continue
		}
		propagate(&nodes[i], from, index, kinds, tagged)
	}

	conns := make([]ConnectionRecord, 0, len(connections))
	for _, c := range connections {
		conns = append(conns, ConnectionRecord{
			ID:              c.ID,
			SourceNodeID:    c.SourceNodeID,
			SourceOutputKey: c.SourceOutputKey,
			TargetNodeID:    c.TargetNodeID,
			TargetInputKey:  c.TargetInputKey,
		})
	}

	return &Ruleset{Nodes: records, Connections: conns}, nil
}

// project builds the variant-specific record. The switch is exhaustive over
// domain.Kind; a new kind without a projection is caught here, not guessed.
func project(n *domain.Node) (NodeRecord, error) {
	rec := NodeRecord{ID: n.ID, Label: n.Label}

	switch n.Kind {
	case domain.KindSource:
		rec.Type = string(domain.KindSource)
		rec.Source = strp(n.SourceFile)
		rec.NumOutputs = intp(n.NumOutputs())
	case domain.KindRule:
		rec.Type = string(domain.KindRule)
		rec.VariableType = strp(n.VariableType)
		rec.CodeLine = strp(n.CodeLine)
		rec.NumInputs = intp(n.NumInputs())
		rec.NumOutputs = intp(n.NumOutputs())
	case domain.KindLogicGate:
		// Gates export as their op so the backend need not know about
		// the LogicGate wrapper kind.
		rec.Type = string(n.Gate)
		rec.NumInputs = intp(n.NumInputs())
	case domain.KindAction:
		rec.Type = string(domain.KindAction)
		rec.NumInputs = intp(n.NumInputs())
	default:
		return NodeRecord{}, fmt.Errorf("node %q has kind %q: %w", n.ID, n.Kind, domain.ErrUnknownKind)
	}
	return rec, nil
}

// propagate runs one Source's breadth-first traversal, tagging every newly
// reached non-Source record that does not already carry a tag.
func propagate(src *domain.Node, from map[string][]domain.Connection, index map[string]*NodeRecord, kinds map[string]domain.Kind, tagged map[string]bool) {
	visited := map[string]bool{src.ID: true}
	queue := []string{src.ID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, c := range from[current] {
			next := c.TargetNodeID
			if visited[next] {
				continue
			}
			visited[next] = true

			if kinds[next] != domain.KindSource && !tagged[next] {
				index[next].Source = strp(src.SourceFile)
				tagged[next] = true
			}
			queue = append(queue, next)
		}
	}
}
