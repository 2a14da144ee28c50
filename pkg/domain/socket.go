package domain

import "fmt"

// Direction distinguishes input sockets from output sockets.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Well-known socket keys that fall outside the numeric input{i}/output{i}
// scheme.
const (
	// GateOutputKey is the single output of a LogicGate.
	GateOutputKey = "output"
	// OutputTrueKey and OutputFalseKey are the fixed outputs of a Rule
	// configured with branching outputs.
	OutputTrueKey  = "outputTrue"
	OutputFalseKey = "outputFalse"
)

// Socket is a directional attachment point on a node. Sockets carry no
// identity beyond (node, direction, key); the key is unique among the node's
// sockets of the same direction.
type Socket struct {
	NodeID    string    `json:"nodeId" yaml:"nodeId"`
	Direction Direction `json:"direction" yaml:"direction"`
	Key       string    `json:"key" yaml:"key"`
}

// InputKey returns the positional input socket key ("input0", "input1", ...).
func InputKey(i int) string {
	return fmt.Sprintf("input%d", i)
}

// OutputKey returns the positional output socket key ("output0", ...).
func OutputKey(i int) string {
	return fmt.Sprintf("output%d", i)
}
