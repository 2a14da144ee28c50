package espalier

import (
	"io"
	"log/slog"

	presentation "github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
	"github.com/aretw0/espalier/pkg/ruleset"
)

// Version is the library version, also reported by the CLI.
const Version = "0.3.0"

// Session is the high-level entry point for the espalier library. It bundles
// a node factory, a graph store and the input reconciler behind one editing
// API, so a host application can build, adjust and export a decision
// workflow without touching the lower-level packages.
type Session struct {
	factory    *domain.Factory
	store      *graph.Store
	reconciler *graph.Reconciler
	gen        domain.IDGenerator
	logger     *slog.Logger
	Name       string
}

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithIDGenerator injects a custom id generator, e.g. a sequence generator
// for reproducible exports. Defaults to UUIDv7.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *Session) {
		s.gen = gen
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New initializes an empty editing session.
func New(name string, opts ...Option) *Session {
	s := &Session{Name: name}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = domain.UUIDGenerator{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("workflow", s.Name)
	}

	s.factory = domain.NewFactory(s.gen)
	s.store = graph.NewStore()
	s.reconciler = graph.NewReconciler(s.store)
	return s
}

// Open initializes a session pre-populated from a workflow document.
func Open(doc *document.Document, opts ...Option) (*Session, error) {
	s := New(doc.Name, opts...)
	store, err := doc.Materialize(s.gen)
	if err != nil {
		return nil, err
	}
	s.store = store
	s.reconciler = graph.NewReconciler(store)
	return s, nil
}

// AddSource adds a data source node and returns its id.
func (s *Session) AddSource(label, sourceFile string) string {
	return s.addNode(s.factory.Source(label, sourceFile))
}

// AddRule adds a rule node and returns its id.
func (s *Session) AddRule(label, variableType, codeLine string, numInputs int, opts ...domain.RuleOption) string {
	return s.addNode(s.factory.Rule(label, variableType, codeLine, numInputs, opts...))
}

// AddLogicGate adds an AND/OR gate node and returns its id.
func (s *Session) AddLogicGate(op domain.GateOp, numInputs int) string {
	return s.addNode(s.factory.LogicGate(op, numInputs))
}

// AddAction adds a terminal action node and returns its id.
func (s *Session) AddAction(label string) string {
	return s.addNode(s.factory.Action(label))
}

// addNode places a freshly built node in the store. The default UUID
// generator never collides, but an injected one can; a rejected node is
// logged rather than silently lost.
func (s *Session) addNode(n *domain.Node) string {
	if err := s.store.AddNode(n); err != nil {
		s.logger.Warn("node rejected", "kind", n.Kind, "id", n.ID, "err", err)
		return n.ID
	}
	s.logger.Debug("node added", "kind", n.Kind, "id", n.ID)
	return n.ID
}

// Connect wires an output socket to an input socket and returns the
// connection id. Both endpoints must exist with the given keys.
func (s *Session) Connect(sourceNodeID, outputKey, targetNodeID, inputKey string) (string, error) {
	c := s.factory.Connection(sourceNodeID, outputKey, targetNodeID, inputKey)
	if err := s.store.AddConnection(c); err != nil {
		return "", err
	}
	s.logger.Debug("connection added", "id", c.ID, "from", sourceNodeID, "to", targetNodeID)
	return c.ID, nil
}

// RemoveNode deletes a node and every connection touching it.
func (s *Session) RemoveNode(id string) {
	s.store.RemoveNode(id)
}

// RemoveConnection deletes a connection. Unknown ids are ignored.
func (s *Session) RemoveConnection(id string) {
	s.store.RemoveConnection(id)
}

// Reconcile resizes a variable-arity node's input count from a raw control
// value and returns the resulting count. The value is truncated toward zero
// and clamped to the kind's minimum.
func (s *Session) Reconcile(nodeID string, value float64) (int, error) {
	return s.reconciler.ReconcileValue(nodeID, value)
}

// Graph exposes the underlying store for direct edits.
func (s *Session) Graph() *graph.Store {
	return s.store
}

// Validate returns the validator findings for the current graph.
func (s *Session) Validate() []validator.Finding {
	return validator.Check(s.store.Nodes(), s.store.Connections())
}

// Compile exports the current graph as an execution-ready ruleset.
func (s *Session) Compile() (*ruleset.Ruleset, error) {
	nodes, conns := s.store.Nodes(), s.store.Connections()
	rs, err := ruleset.Compile(nodes, conns)
	if err != nil {
		return nil, err
	}
	s.logger.Info("graph compiled", "nodes", len(nodes), "connections", len(conns))
	return rs, nil
}

// Mermaid renders the current graph as a Mermaid flowchart.
func (s *Session) Mermaid() string {
	return presentation.GenerateMermaid(s.store.Nodes(), s.store.Connections())
}

// Document snapshots the current graph as a savable workflow document.
func (s *Session) Document() *document.Document {
	return document.FromStore(s.Name, s.store)
}
