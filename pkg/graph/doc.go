/*
Package graph owns workflow graph structure. The Store is the single
authority for nodes and connections: every structural mutation goes through
it, and it maintains referential integrity at every step (no connection ever
references a missing node or socket, removal cascades atomically).

The Reconciler sits on top of the Store and translates the desired input
count of a variable-arity node into concrete socket additions and removals,
deleting connections that targeted removed sockets. Reconciliation for a
single node is serialized, so a re-entrant arity control callback cannot
corrupt socket enumeration.
*/
package graph
