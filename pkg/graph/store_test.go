package graph

import (
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
)

func newFixture(t *testing.T) (*Store, *domain.Factory) {
	t.Helper()
	return NewStore(), domain.NewFactory(domain.NewSequenceGenerator("id"))
}

// checkIntegrity asserts that every connection resolves to two live sockets.
func checkIntegrity(t *testing.T, s *Store) {
	t.Helper()
	nodes := make(map[string]domain.Node)
	for _, n := range s.Nodes() {
		nodes[n.ID] = n
	}
	for _, c := range s.Connections() {
		src, ok := nodes[c.SourceNodeID]
		if !ok {
			t.Fatalf("connection %s references missing source node %s", c.ID, c.SourceNodeID)
		}
		if _, ok := src.FindSocket(domain.DirectionOutput, c.SourceOutputKey); !ok {
			t.Fatalf("connection %s references missing output socket %s", c.ID, c.SourceOutputKey)
		}
		dst, ok := nodes[c.TargetNodeID]
		if !ok {
			t.Fatalf("connection %s references missing target node %s", c.ID, c.TargetNodeID)
		}
		if _, ok := dst.FindSocket(domain.DirectionInput, c.TargetInputKey); !ok {
			t.Fatalf("connection %s references missing input socket %s", c.ID, c.TargetInputKey)
		}
	}
}

func TestStore_AddNode_DuplicateID(t *testing.T) {
	s, f := newFixture(t)
	n := f.Source("s", "a.csv")

	if err := s.AddNode(n); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	err := s.AddNode(n)
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Errorf("AddNode() error = %v, want ErrDuplicateID", err)
	}
}

func TestStore_AddNode_StoresCopy(t *testing.T) {
	s, f := newFixture(t)
	n := f.Source("s", "a.csv")
	if err := s.AddNode(n); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's node must not leak into the store.
	n.Label = "mutated"
	got, _ := s.Node(n.ID)
	if got.Label != "s" {
		t.Errorf("store label = %q, caller mutation leaked in", got.Label)
	}
}

func TestStore_AddConnection_Valid(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	rule := f.Rule("r", "float", "x > 1", 1)
	mustAdd(t, s, src, rule)

	conn := f.Connection(src.ID, "output0", rule.ID, "input0")
	if err := s.AddConnection(conn); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	checkIntegrity(t, s)
}

func TestStore_AddConnection_InvalidEndpoints(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	rule := f.Rule("r", "float", "x > 1", 1)
	mustAdd(t, s, src, rule)

	cases := []struct {
		name string
		conn domain.Connection
	}{
		{"missing source node", f.Connection("ghost", "output0", rule.ID, "input0")},
		{"missing target node", f.Connection(src.ID, "output0", "ghost", "input0")},
		{"missing output key", f.Connection(src.ID, "output7", rule.ID, "input0")},
		{"missing input key", f.Connection(src.ID, "output0", rule.ID, "input7")},
		// A direction mismatch: input key offered as an output.
		{"wrong direction", f.Connection(rule.ID, "input0", rule.ID, "input0")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.AddConnection(tc.conn)
			if !errors.Is(err, domain.ErrInvalidEndpoint) {
				t.Errorf("AddConnection() error = %v, want ErrInvalidEndpoint", err)
			}
			if _, conns := s.Len(); conns != 0 {
				t.Errorf("store mutated on rejected connection: %d connections", conns)
			}
		})
	}
}

func TestStore_RemoveNode_CascadesConnections(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	gate := f.LogicGate(domain.GateOr, 2)
	act := f.Action("DISCARD")
	mustAdd(t, s, src, gate, act)

	mustConnect(t, s, f.Connection(src.ID, "output0", gate.ID, "input0"))
	mustConnect(t, s, f.Connection(src.ID, "output0", gate.ID, "input1"))
	mustConnect(t, s, f.Connection(gate.ID, "output", act.ID, "input0"))

	// Removing the gate must take all 3 incident connections with it.
	s.RemoveNode(gate.ID)

	nodes, conns := s.Len()
	if nodes != 2 {
		t.Errorf("nodes = %d, want 2", nodes)
	}
	if conns != 0 {
		t.Errorf("connections = %d, want 0 after cascade", conns)
	}
	checkIntegrity(t, s)
}

func TestStore_RemoveNode_LeavesUnrelatedConnections(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	r1 := f.Rule("r1", "float", "x > 1", 1)
	r2 := f.Rule("r2", "float", "x > 2", 1)
	mustAdd(t, s, src, r1, r2)

	keep := f.Connection(src.ID, "output0", r1.ID, "input0")
	mustConnect(t, s, keep)
	mustConnect(t, s, f.Connection(src.ID, "output0", r2.ID, "input0"))

	s.RemoveNode(r2.ID)

	conns := s.Connections()
	if len(conns) != 1 || conns[0].ID != keep.ID {
		t.Errorf("surviving connections = %v, want only %s", conns, keep.ID)
	}
	checkIntegrity(t, s)
}

func TestStore_RemoveNode_Idempotent(t *testing.T) {
	s, _ := newFixture(t)
	s.RemoveNode("ghost") // must not panic
	s.RemoveNode("ghost")
}

func TestStore_RemoveConnection_Idempotent(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	act := f.Action("a")
	mustAdd(t, s, src, act)
	conn := f.Connection(src.ID, "output0", act.ID, "input0")
	mustConnect(t, s, conn)

	s.RemoveConnection(conn.ID)
	s.RemoveConnection(conn.ID)

	if _, conns := s.Len(); conns != 0 {
		t.Errorf("connections = %d, want 0", conns)
	}
}

func TestStore_Snapshots_InsertionOrder(t *testing.T) {
	s, f := newFixture(t)
	a := f.Source("a", "a.csv")
	b := f.Source("b", "b.csv")
	c := f.Source("c", "c.csv")
	mustAdd(t, s, a, b, c)
	s.RemoveNode(b.ID)
	d := f.Source("d", "d.csv")
	mustAdd(t, s, d)

	var got []string
	for _, n := range s.Nodes() {
		got = append(got, n.Label)
	}
	want := []string{"a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Nodes() order = %v, want %v", got, want)
		}
	}
}

func TestStore_AttributeEdits(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	rule := f.Rule("r", "float", "x > 1", 1)
	mustAdd(t, s, src, rule)

	if err := s.SetLabel(rule.ID, "renamed"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCodeLine(rule.ID, "x > 2"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVariableType(rule.ID, "int"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSourceFile(src.ID, "b.csv"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Node(rule.ID)
	if got.Label != "renamed" || got.CodeLine != "x > 2" || got.VariableType != "int" {
		t.Errorf("rule after edits = %+v", got)
	}

	// Kind mismatch is rejected.
	if err := s.SetSourceFile(rule.ID, "b.csv"); !errors.Is(err, domain.ErrKindMismatch) {
		t.Errorf("SetSourceFile on rule: error = %v, want ErrKindMismatch", err)
	}
	if err := s.SetCodeLine(src.ID, "x"); !errors.Is(err, domain.ErrKindMismatch) {
		t.Errorf("SetCodeLine on source: error = %v, want ErrKindMismatch", err)
	}
	if err := s.SetLabel("ghost", "x"); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("SetLabel on ghost: error = %v, want ErrNodeNotFound", err)
	}
}

func mustAdd(t *testing.T, s *Store, nodes ...*domain.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := s.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.Label, err)
		}
	}
}

func mustConnect(t *testing.T, s *Store, c domain.Connection) {
	t.Helper()
	if err := s.AddConnection(c); err != nil {
		t.Fatalf("AddConnection(%s): %v", c.ID, err)
	}
}
