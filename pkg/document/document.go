/*
Package document defines the editor-side draft format for workflow graphs:
a YAML (or JSON, being a YAML subset) description of nodes and connections
that can be persisted, reloaded, and materialized back into a live graph
store. It is distinct from the compiled ruleset, which is the backend-facing
projection and never read back.
*/
package document

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
)

// Document is one workflow draft.
type Document struct {
	Name        string          `yaml:"name" json:"name"`
	Nodes       []NodeDoc       `yaml:"nodes" json:"nodes"`
	Connections []ConnectionDoc `yaml:"connections,omitempty" json:"connections,omitempty"`
}

// NodeDoc describes one node. Kind-specific configuration lives in the Attrs
// map and is decoded per kind (mapstructure), so documents stay flat and
// hand-editable:
//
//	- kind: Rule
//	  id: potency-check
//	  inputs: 1
//	  attrs: {variableType: float, codeLine: "potency > 0.8"}
type NodeDoc struct {
	// ID may be omitted; materialization generates one. Documents with
	// connections must pin ids so the connections can refer to them.
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Kind  string `yaml:"kind" json:"kind"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	// Inputs is the desired input arity. A float on purpose: the value
	// arrives from a user-facing numeric control and is truncated toward
	// zero, then clamped to the kind's floor.
	Inputs *float64       `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Attrs  map[string]any `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// ConnectionDoc describes one edge by node id. Socket keys default to the
// obvious ones (the node's first output, "input0") when omitted.
type ConnectionDoc struct {
	From   string `yaml:"from" json:"from"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
	To     string `yaml:"to" json:"to"`
	Input  string `yaml:"input,omitempty" json:"input,omitempty"`
}

type sourceAttrs struct {
	File string `mapstructure:"file"`
}

type ruleAttrs struct {
	VariableType string `mapstructure:"variableType"`
	CodeLine     string `mapstructure:"codeLine"`
	Branching    bool   `mapstructure:"branching"`
	NumOutputs   int    `mapstructure:"numOutputs"`
}

type gateAttrs struct {
	Op string `mapstructure:"op"`
}

// Load decodes a document from YAML or JSON.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}
	return &doc, nil
}

// LoadFile reads a document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes the document as YAML.
func (d *Document) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode workflow document: %w", err)
	}
	return nil
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := &Document{Name: d.Name}
	for _, n := range d.Nodes {
		nc := n
		if n.Inputs != nil {
			v := *n.Inputs
			nc.Inputs = &v
		}
		if n.Attrs != nil {
			nc.Attrs = make(map[string]any, len(n.Attrs))
			for k, v := range n.Attrs {
				nc.Attrs[k] = v
			}
		}
		c.Nodes = append(c.Nodes, nc)
	}
	c.Connections = append([]ConnectionDoc(nil), d.Connections...)
	return c
}

// Materialize builds a live graph store from the document. Node ids present
// in the document are kept verbatim; missing ids are generated. Arity values
// go through the reconciler, so they obey the same truncate-then-clamp
// policy as the editor control.
func (d *Document) Materialize(gen domain.IDGenerator) (*graph.Store, error) {
	factory := domain.NewFactory(gen)
	store := graph.NewStore()
	rec := graph.NewReconciler(store)

	for i := range d.Nodes {
		nd := &d.Nodes[i]
		node, err := buildNode(factory, nd)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, nd.Kind, err)
		}
		if nd.ID != "" {
			node.ID = nd.ID
			for j := range node.Inputs {
				node.Inputs[j].NodeID = nd.ID
			}
			for j := range node.Outputs {
				node.Outputs[j].NodeID = nd.ID
			}
		} else {
			nd.ID = node.ID
		}
		if err := store.AddNode(node); err != nil {
			return nil, err
		}
		if nd.Inputs != nil {
			if _, variable := node.InputFloor(); variable {
				if _, err := rec.ReconcileValue(node.ID, *nd.Inputs); err != nil {
					return nil, err
				}
			}
		}
	}

	for i, cd := range d.Connections {
		conn, err := resolveConnection(factory, store, cd)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		if err := store.AddConnection(conn); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}
	return store, nil
}

func buildNode(factory *domain.Factory, nd *NodeDoc) (*domain.Node, error) {
	inputs := 1
	if nd.Inputs != nil {
		inputs = int(*nd.Inputs)
	}

	switch domain.Kind(nd.Kind) {
	case domain.KindSource:
		var attrs sourceAttrs
		if err := decodeAttrs(nd.Attrs, &attrs); err != nil {
			return nil, err
		}
		return factory.Source(nd.Label, attrs.File), nil

	case domain.KindRule:
		var attrs ruleAttrs
		if err := decodeAttrs(nd.Attrs, &attrs); err != nil {
			return nil, err
		}
		var opts []domain.RuleOption
		if attrs.Branching {
			opts = append(opts, domain.WithBranchingOutputs())
		}
		if attrs.NumOutputs > 0 {
			opts = append(opts, domain.WithNumOutputs(attrs.NumOutputs))
		}
		return factory.Rule(nd.Label, attrs.VariableType, attrs.CodeLine, inputs, opts...), nil

	case domain.KindLogicGate:
		var attrs gateAttrs
		if err := decodeAttrs(nd.Attrs, &attrs); err != nil {
			return nil, err
		}
		op := domain.GateOp(attrs.Op)
		if op != domain.GateAnd && op != domain.GateOr {
			return nil, fmt.Errorf("gate op %q is not AND or OR", attrs.Op)
		}
		return factory.LogicGate(op, inputs), nil

	case domain.KindAction:
		return factory.Action(nd.Label), nil

	default:
		return nil, fmt.Errorf("kind %q: %w", nd.Kind, domain.ErrUnknownKind)
	}
}

func decodeAttrs(raw map[string]any, out any) error {
	if raw == nil {
		return nil
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("invalid attrs: %w", err)
	}
	return nil
}

func resolveConnection(factory *domain.Factory, store *graph.Store, cd ConnectionDoc) (domain.Connection, error) {
	src, ok := store.Node(cd.From)
	if !ok {
		return domain.Connection{}, fmt.Errorf("from node %q: %w", cd.From, domain.ErrNodeNotFound)
	}
	output := cd.Output
	if output == "" {
		if src.NumOutputs() == 0 {
			return domain.Connection{}, fmt.Errorf("node %q has no outputs: %w", cd.From, domain.ErrInvalidEndpoint)
		}
		output = src.Outputs[0].Key
	}
	input := cd.Input
	if input == "" {
		input = domain.InputKey(0)
	}
	return factory.Connection(cd.From, output, cd.To, input), nil
}

// FromStore projects a live graph back into a document, the inverse of
// Materialize up to attribute defaults.
func FromStore(name string, store *graph.Store) *Document {
	doc := &Document{Name: name}

	for _, n := range store.Nodes() {
		nd := NodeDoc{ID: n.ID, Kind: string(n.Kind), Label: n.Label}
		switch n.Kind {
		case domain.KindSource:
			nd.Attrs = map[string]any{"file": n.SourceFile}
		case domain.KindRule:
			inputs := float64(n.NumInputs())
			nd.Inputs = &inputs
			nd.Attrs = map[string]any{
				"variableType": n.VariableType,
				"codeLine":     n.CodeLine,
			}
			if n.RulePolicy == domain.RuleOutputsBranching {
				nd.Attrs["branching"] = true
			} else if n.NumOutputs() != 1 {
				nd.Attrs["numOutputs"] = n.NumOutputs()
			}
		case domain.KindLogicGate:
			inputs := float64(n.NumInputs())
			nd.Inputs = &inputs
			nd.Attrs = map[string]any{"op": string(n.Gate)}
		case domain.KindAction:
			// Label only.
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, c := range store.Connections() {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			From:   c.SourceNodeID,
			Output: c.SourceOutputKey,
			To:     c.TargetNodeID,
			Input:  c.TargetInputKey,
		})
	}
	return doc
}
