package domain

// Kind tags the node variant. Every switch over Kind must be exhaustive and
// route unexpected values through ErrUnknownKind.
type Kind string

const (
	// KindSource feeds data into the workflow; one fixed output, no inputs.
	KindSource Kind = "Source"
	// KindRule evaluates an opaque condition; configurable inputs (floor 1).
	KindRule Kind = "Rule"
	// KindLogicGate combines branches; configurable inputs (floor 2), one
	// fixed output. AND/OR semantics are a label only, nothing is evaluated
	// here.
	KindLogicGate Kind = "LogicGate"
	// KindAction terminates a branch; one fixed input, no outputs.
	KindAction Kind = "Action"
)

// GateOp names the boolean combinator a LogicGate represents.
type GateOp string

const (
	GateAnd GateOp = "AND"
	GateOr  GateOp = "OR"
)

// RuleOutputPolicy resolves the output shape of Rule nodes, which differs
// between deployments: either a numeric run of outputs (output0..n-1) or a
// fixed true/false pair.
type RuleOutputPolicy string

const (
	// RuleOutputsNumeric gives a Rule output0..output{n-1}. The default.
	RuleOutputsNumeric RuleOutputPolicy = "numeric"
	// RuleOutputsBranching gives a Rule the fixed pair outputTrue/outputFalse.
	RuleOutputsBranching RuleOutputPolicy = "branching"
)

// Node is a typed unit in the workflow graph. The socket slices are ordered;
// position is meaning (input0 is Inputs[0]). Kind-specific attributes are
// plain fields, only read for the matching kind.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`

	Inputs  []Socket `json:"inputs" yaml:"inputs"`
	Outputs []Socket `json:"outputs" yaml:"outputs"`

	// SourceFile is the data source filename (Source only).
	SourceFile string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`

	// VariableType and CodeLine configure a Rule. CodeLine is opaque
	// condition text; it is never parsed here.
	VariableType string `json:"variableType,omitempty" yaml:"variableType,omitempty"`
	CodeLine     string `json:"codeLine,omitempty" yaml:"codeLine,omitempty"`
	// RulePolicy records which output shape this Rule was built with.
	RulePolicy RuleOutputPolicy `json:"rulePolicy,omitempty" yaml:"rulePolicy,omitempty"`

	// Gate is the combinator op (LogicGate only).
	Gate GateOp `json:"gate,omitempty" yaml:"gate,omitempty"`
}

// NumInputs returns the current input arity.
func (n *Node) NumInputs() int { return len(n.Inputs) }

// NumOutputs returns the current output arity.
func (n *Node) NumOutputs() int { return len(n.Outputs) }

// InputFloor returns the minimum input count for the node's kind and whether
// the input arity is user-configurable at all.
func (n *Node) InputFloor() (floor int, variable bool) {
	switch n.Kind {
	case KindSource:
		return 0, false
	case KindRule:
		return 1, true
	case KindLogicGate:
		return 2, true
	case KindAction:
		return 1, false
	default:
		return 0, false
	}
}

// FindSocket looks up a socket by direction and key.
func (n *Node) FindSocket(dir Direction, key string) (Socket, bool) {
	set := n.Inputs
	if dir == DirectionOutput {
		set = n.Outputs
	}
	for _, s := range set {
		if s.Key == key {
			return s, true
		}
	}
	return Socket{}, false
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// alias internal state.
func (n *Node) Clone() Node {
	c := *n
	c.Inputs = append([]Socket(nil), n.Inputs...)
	c.Outputs = append([]Socket(nil), n.Outputs...)
	return c
}

// Connection is a directed edge from one node's output socket to another
// node's input socket.
type Connection struct {
	ID              string `json:"id" yaml:"id"`
	SourceNodeID    string `json:"sourceNodeId" yaml:"sourceNodeId"`
	SourceOutputKey string `json:"sourceOutputKey" yaml:"sourceOutputKey"`
	TargetNodeID    string `json:"targetNodeId" yaml:"targetNodeId"`
	TargetInputKey  string `json:"targetInputKey" yaml:"targetInputKey"`
}

// Touches reports whether the connection references the given node on either
// end.
func (c *Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
