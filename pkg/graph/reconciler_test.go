package graph

import (
	"sync"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_ClampsToFloor(t *testing.T) {
	s, f := newFixture(t)
	gate := f.LogicGate(domain.GateAnd, 2)
	mustAdd(t, s, gate)
	r := NewReconciler(s)

	for _, desired := range []int{1, 0, -5} {
		count, err := r.Reconcile(gate.ID, desired)
		require.NoError(t, err)
		assert.Equal(t, 2, count, "desired %d must clamp to the gate floor", desired)
	}

	got, _ := s.Node(gate.ID)
	assert.Equal(t, 2, got.NumInputs())
}

func TestReconciler_GrowAppendsKeys(t *testing.T) {
	s, f := newFixture(t)
	gate := f.LogicGate(domain.GateOr, 2)
	src := f.Source("s", "a.csv")
	mustAdd(t, s, gate, src)
	conn := f.Connection(src.ID, "output0", gate.ID, "input1")
	mustConnect(t, s, conn)
	r := NewReconciler(s)

	count, err := r.Reconcile(gate.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	got, _ := s.Node(gate.ID)
	require.Equal(t, 5, got.NumInputs())
	for i, sock := range got.Inputs {
		assert.Equal(t, domain.InputKey(i), sock.Key)
	}
	// Pre-existing sockets and their connections survive a grow untouched.
	conns := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, conn.ID, conns[0].ID)
}

func TestReconciler_ShrinkRemovesHighestAndCascades(t *testing.T) {
	s, f := newFixture(t)
	gate := f.LogicGate(domain.GateOr, 4)
	src := f.Source("s", "a.csv")
	mustAdd(t, s, gate, src)

	byInput := make(map[string]string)
	for _, key := range []string{"input0", "input1", "input2", "input3"} {
		c := f.Connection(src.ID, "output0", gate.ID, key)
		mustConnect(t, s, c)
		byInput[key] = c.ID
	}
	r := NewReconciler(s)

	count, err := r.Reconcile(gate.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, _ := s.Node(gate.ID)
	require.Equal(t, 2, got.NumInputs())
	assert.Equal(t, "input0", got.Inputs[0].Key)
	assert.Equal(t, "input1", got.Inputs[1].Key)

	// Exactly the two highest-indexed targets lost their connections.
	survivors := make(map[string]bool)
	for _, c := range s.Connections() {
		survivors[c.ID] = true
	}
	assert.True(t, survivors[byInput["input0"]])
	assert.True(t, survivors[byInput["input1"]])
	assert.False(t, survivors[byInput["input2"]])
	assert.False(t, survivors[byInput["input3"]])
	checkIntegrity(t, s)
}

func TestReconciler_NoChangeIsNoOp(t *testing.T) {
	s, f := newFixture(t)
	rule := f.Rule("r", "float", "x > 1", 3)
	mustAdd(t, s, rule)
	r := NewReconciler(s)

	count, err := r.Reconcile(rule.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestReconciler_FixedArityKinds(t *testing.T) {
	s, f := newFixture(t)
	src := f.Source("s", "a.csv")
	act := f.Action("a")
	mustAdd(t, s, src, act)
	r := NewReconciler(s)

	_, err := r.Reconcile(src.ID, 3)
	assert.ErrorIs(t, err, domain.ErrFixedArity)
	_, err = r.Reconcile(act.ID, 3)
	assert.ErrorIs(t, err, domain.ErrFixedArity)
	_, err = r.Reconcile("ghost", 3)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestReconciler_ReconcileValue_Truncates(t *testing.T) {
	s, f := newFixture(t)
	gate := f.LogicGate(domain.GateAnd, 2)
	mustAdd(t, s, gate)
	r := NewReconciler(s)

	count, err := r.ReconcileValue(gate.ID, 4.9)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "4.9 truncates toward zero")

	count, err = r.ReconcileValue(gate.ID, -1.5)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "negative values clamp to the floor")
}

func TestReconciler_ConcurrentSameNode(t *testing.T) {
	s, f := newFixture(t)
	gate := f.LogicGate(domain.GateOr, 2)
	mustAdd(t, s, gate)
	r := NewReconciler(s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := r.Reconcile(gate.ID, 2+n%5)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Whatever interleaving happened, the socket run must be dense.
	got, _ := s.Node(gate.ID)
	for i, sock := range got.Inputs {
		require.Equal(t, domain.InputKey(i), sock.Key)
	}
	checkIntegrity(t, s)
}
