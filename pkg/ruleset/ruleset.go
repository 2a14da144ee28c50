/*
Package ruleset lowers a workflow graph into the flat, serializable ruleset
the execution backend consumes. Compilation is a pure, read-only projection:
it never mutates the graph, and the same graph always compiles to the same
bytes.
*/
package ruleset

import (
	"bytes"
	"encoding/json"
)

// Ruleset is the wire contract handed to the execution engine.
type Ruleset struct {
	Nodes       []NodeRecord       `json:"nodes"`
	Connections []ConnectionRecord `json:"connections"`
}

// NodeRecord is the exported projection of one node, tagged by Type.
// Pointer fields are emitted only for the variants that define them:
//
//	Source: id, label, type="Source", source, numOutputs=1
//	Rule:   id, label, type="Rule", variableType, codeLine, numInputs,
//	        numOutputs, source (when reached from a Source)
//	AND/OR: id, label, type="AND"|"OR", numInputs, source?
//	Action: id, label, type="Action", numInputs=1, source?
type NodeRecord struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	Type         string  `json:"type"`
	Source       *string `json:"source,omitempty"`
	VariableType *string `json:"variableType,omitempty"`
	CodeLine     *string `json:"codeLine,omitempty"`
	NumInputs    *int    `json:"numInputs,omitempty"`
	NumOutputs   *int    `json:"numOutputs,omitempty"`
}

// ConnectionRecord mirrors a graph connection verbatim.
type ConnectionRecord struct {
	ID              string `json:"id"`
	SourceNodeID    string `json:"sourceNodeId"`
	SourceOutputKey string `json:"sourceOutputKey"`
	TargetNodeID    string `json:"targetNodeId"`
	TargetInputKey  string `json:"targetInputKey"`
}

// MarshalPretty renders the ruleset as indented JSON, the form submitted to
// the backend and written by the CLI. HTML escaping is off so condition text
// like "potency > 0.8" survives readable.
func (r *Ruleset) MarshalPretty() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
