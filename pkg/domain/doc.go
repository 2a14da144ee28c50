/*
Package domain defines the building blocks of a decision workflow graph:
typed nodes, their directional sockets, and the connections binding them.

Nodes are polymorphic over four kinds (Source, Rule, LogicGate, Action).
Each kind dictates the socket shape of its instances; variable-arity kinds
(Rule inputs, LogicGate inputs) are resized later by the graph reconciler,
never by mutating sockets directly.

Node and connection identifiers are opaque strings produced by an injected
IDGenerator, so hosts can swap the production UUID generator for a
deterministic sequence in tests.
*/
package domain
