package domain

import "errors"

// ErrDuplicateID is returned when a node or connection id collides with one
// already in the graph. With a correct id generator this indicates a
// programming error, not a user mistake.
var ErrDuplicateID = errors.New("duplicate id")

// ErrInvalidEndpoint is returned when a connection references a socket that
// does not resolve to a live node socket of the right direction.
var ErrInvalidEndpoint = errors.New("invalid connection endpoint")

// ErrUnknownKind is returned when a node carries a kind the code does not
// recognize. The compiler surfaces it instead of emitting a corrupt record.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrNodeNotFound is returned when an operation targets a node id that is not
// in the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrFixedArity is returned when a reconcile call targets a kind whose socket
// count is not user-configurable (Source, Action).
var ErrFixedArity = errors.New("node kind has fixed arity")

// ErrKindMismatch is returned when an attribute edit targets a node of the
// wrong kind (e.g. setting a source file on a Rule).
var ErrKindMismatch = errors.New("attribute does not apply to node kind")

// ErrDraftNotFound is returned by draft stores when the named workflow draft
// does not exist.
var ErrDraftNotFound = errors.New("draft not found")
