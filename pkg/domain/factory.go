package domain

// Factory constructs nodes with their initial sockets fully materialized, so
// a node entering the graph already satisfies its kind's socket invariants.
type Factory struct {
	gen IDGenerator
}

// NewFactory creates a Factory. A nil generator falls back to UUIDs.
func NewFactory(gen IDGenerator) *Factory {
	if gen == nil {
		gen = UUIDGenerator{}
	}
	return &Factory{gen: gen}
}

// RuleOption configures Rule construction.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	policy     RuleOutputPolicy
	numOutputs int
}

// WithBranchingOutputs builds the Rule with the fixed outputTrue/outputFalse
// pair instead of a numeric output run.
func WithBranchingOutputs() RuleOption {
	return func(c *ruleConfig) { c.policy = RuleOutputsBranching }
}

// WithNumOutputs sets the output count for a numeric-output Rule (floor 1).
// Ignored under branching outputs.
func WithNumOutputs(n int) RuleOption {
	return func(c *ruleConfig) { c.numOutputs = n }
}

// Source creates a Source node: no inputs, one fixed output ("output0").
func (f *Factory) Source(label, sourceFile string) *Node {
	n := &Node{
		ID:         f.gen.NewID(),
		Kind:       KindSource,
		Label:      label,
		SourceFile: sourceFile,
	}
	n.Outputs = []Socket{{NodeID: n.ID, Direction: DirectionOutput, Key: OutputKey(0)}}
	return n
}

// Rule creates a Rule node with numInputs inputs (clamped to the floor of 1)
// and outputs per policy. CodeLine is stored verbatim.
func (f *Factory) Rule(label, variableType, codeLine string, numInputs int, opts ...RuleOption) *Node {
	cfg := ruleConfig{policy: RuleOutputsNumeric, numOutputs: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.numOutputs < 1 {
		cfg.numOutputs = 1
	}
	if numInputs < 1 {
		numInputs = 1
	}

	n := &Node{
		ID:           f.gen.NewID(),
		Kind:         KindRule,
		Label:        label,
		VariableType: variableType,
		CodeLine:     codeLine,
		RulePolicy:   cfg.policy,
	}
	for i := 0; i < numInputs; i++ {
		n.Inputs = append(n.Inputs, Socket{NodeID: n.ID, Direction: DirectionInput, Key: InputKey(i)})
	}
	switch cfg.policy {
	case RuleOutputsBranching:
		n.Outputs = []Socket{
			{NodeID: n.ID, Direction: DirectionOutput, Key: OutputTrueKey},
			{NodeID: n.ID, Direction: DirectionOutput, Key: OutputFalseKey},
		}
	default:
		for i := 0; i < cfg.numOutputs; i++ {
			n.Outputs = append(n.Outputs, Socket{NodeID: n.ID, Direction: DirectionOutput, Key: OutputKey(i)})
		}
	}
	return n
}

// LogicGate creates an AND/OR node with numInputs inputs (clamped to the
// floor of 2) and the single fixed output ("output"). The label is the op
// name.
func (f *Factory) LogicGate(op GateOp, numInputs int) *Node {
	if numInputs < 2 {
		numInputs = 2
	}
	n := &Node{
		ID:    f.gen.NewID(),
		Kind:  KindLogicGate,
		Label: string(op),
		Gate:  op,
	}
	for i := 0; i < numInputs; i++ {
		n.Inputs = append(n.Inputs, Socket{NodeID: n.ID, Direction: DirectionInput, Key: InputKey(i)})
	}
	n.Outputs = []Socket{{NodeID: n.ID, Direction: DirectionOutput, Key: GateOutputKey}}
	return n
}

// Action creates a terminal node: one fixed input ("input0"), no outputs.
// The label names the action (e.g. "DISCARD").
func (f *Factory) Action(label string) *Node {
	n := &Node{
		ID:    f.gen.NewID(),
		Kind:  KindAction,
		Label: label,
	}
	n.Inputs = []Socket{{NodeID: n.ID, Direction: DirectionInput, Key: InputKey(0)}}
	return n
}

// Connection builds a connection record with a fresh id. Endpoint validation
// happens when the connection is added to a store, not here.
func (f *Factory) Connection(sourceNodeID, sourceOutputKey, targetNodeID, targetInputKey string) Connection {
	return Connection{
		ID:              f.gen.NewID(),
		SourceNodeID:    sourceNodeID,
		SourceOutputKey: sourceOutputKey,
		TargetNodeID:    targetNodeID,
		TargetInputKey:  targetInputKey,
	}
}
