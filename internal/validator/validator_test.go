package validator

import (
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_CleanGraph(t *testing.T) {
	f := domain.NewFactory(domain.NewSequenceGenerator("id"))
	s := graph.NewStore()
	src := f.Source("pills", "pill_data.csv")
	rule := f.Rule("potency", "float", "potency > 0.8", 1)
	act := f.Action("DISCARD")
	for _, n := range []*domain.Node{src, rule, act} {
		require.NoError(t, s.AddNode(n))
	}
	require.NoError(t, s.AddConnection(f.Connection(src.ID, "output0", rule.ID, "input0")))
	require.NoError(t, s.AddConnection(f.Connection(rule.ID, "output0", act.ID, "input0")))

	findings := Check(s.Nodes(), s.Connections())
	assert.Empty(t, findings)
	assert.NoError(t, Error(findings))
}

func TestCheck_DetectsCycle(t *testing.T) {
	f := domain.NewFactory(domain.NewSequenceGenerator("id"))
	s := graph.NewStore()
	r1 := f.Rule("r1", "bool", "a", 1)
	r2 := f.Rule("r2", "bool", "b", 1)
	require.NoError(t, s.AddNode(r1))
	require.NoError(t, s.AddNode(r2))
	require.NoError(t, s.AddConnection(f.Connection(r1.ID, "output0", r2.ID, "input0")))
	require.NoError(t, s.AddConnection(f.Connection(r2.ID, "output0", r1.ID, "input0")))

	findings := Check(s.Nodes(), s.Connections())
	require.True(t, HasErrors(findings))
	assert.Error(t, Error(findings))

	var cycleNodes int
	for _, f := range findings {
		if f.Severity == SeverityError {
			cycleNodes++
		}
	}
	assert.Equal(t, 2, cycleNodes, "both nodes of the 2-cycle are reported")
}

func TestCheck_UnreachableAction(t *testing.T) {
	f := domain.NewFactory(domain.NewSequenceGenerator("id"))
	s := graph.NewStore()
	src := f.Source("pills", "a.csv")
	act := f.Action("HALT")
	require.NoError(t, s.AddNode(src))
	require.NoError(t, s.AddNode(act))

	findings := Check(s.Nodes(), s.Connections())
	require.NotEmpty(t, findings)
	assert.False(t, HasErrors(findings), "warnings only")

	var sawUnreachable bool
	for _, fd := range findings {
		if fd.NodeID == act.ID && fd.Severity == SeverityWarning {
			sawUnreachable = true
		}
	}
	assert.True(t, sawUnreachable)
}

func TestCheck_SingleNodeGraphIsQuiet(t *testing.T) {
	f := domain.NewFactory(domain.NewSequenceGenerator("id"))
	s := graph.NewStore()
	require.NoError(t, s.AddNode(f.Source("pills", "a.csv")))

	findings := Check(s.Nodes(), s.Connections())
	assert.Empty(t, findings, "a lone node is a graph under construction, not a mistake")
}
