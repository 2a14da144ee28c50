package graph

import (
	"fmt"
	"math"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Reconciler synchronizes a variable-arity node's input sockets with a
// user-supplied desired count. Out-of-range values are clamped, never
// rejected: the count comes from a user-facing control.
type Reconciler struct {
	store *Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler creates a Reconciler bound to a store.
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Reconcile resizes the node's input arity to desired, clamped to the
// kind's floor, and returns the resulting count. Growing appends
// input{current}..input{desired-1}; shrinking removes from the highest index
// down, deleting every connection that targeted a removed socket first.
//
// Errors only signal programming misuse: an unknown node, or a kind with
// fixed arity. A count below the floor is not an error.
func (r *Reconciler) Reconcile(nodeID string, desired int) (int, error) {
	lock := r.nodeLock(nodeID)
	lock.Lock()
	defer lock.Unlock()

	n, ok := r.store.Node(nodeID)
	if !ok {
		return 0, fmt.Errorf("node %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	floor, variable := n.InputFloor()
	if !variable {
		return n.NumInputs(), fmt.Errorf("node %q (%s): %w", nodeID, n.Kind, domain.ErrFixedArity)
	}
	if desired < floor {
		desired = floor
	}
	return r.store.reconcileInputs(nodeID, desired)
}

// ReconcileValue is Reconcile for raw control values: the float is truncated
// toward zero before clamping, so "2.9" means 2 and "-1.5" clamps to the
// floor.
func (r *Reconciler) ReconcileValue(nodeID string, value float64) (int, error) {
	return r.Reconcile(nodeID, int(math.Trunc(value)))
}

// nodeLock returns the per-node critical section. Reconciliations of
// distinct nodes may interleave; two for the same node never do.
func (r *Reconciler) nodeLock(nodeID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[nodeID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[nodeID] = lock
	}
	return lock
}
