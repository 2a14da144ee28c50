// Package validator checks a workflow graph for problems the compiler
// tolerates but the execution backend rejects or silently mishandles: cycles
// (the backend's topological sort fails hard on them), actions no data can
// ever reach, and nodes left entirely unconnected.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Severity ranks a finding.
type Severity string

const (
	// SeverityError findings make the graph unsubmittable.
	SeverityError Severity = "error"
	// SeverityWarning findings compile fine but are probably mistakes.
	SeverityWarning Severity = "warning"
)

// Finding is one problem located in the graph.
type Finding struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"nodeId,omitempty"`
	Message  string   `json:"message"`
}

// Check inspects a graph snapshot and returns its findings, errors first.
func Check(nodes []domain.Node, connections []domain.Connection) []Finding {
	var errs, warns []Finding

	incident := make(map[string]int)
	targets := make(map[string][]string)
	for _, c := range connections {
		incident[c.SourceNodeID]++
		incident[c.TargetNodeID]++
		targets[c.SourceNodeID] = append(targets[c.SourceNodeID], c.TargetNodeID)
	}

	// Kahn's sort. Whatever it cannot order sits on a cycle.
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = 0
	}
	for _, c := range connections {
		inDegree[c.TargetNodeID]++
	}
	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	ordered := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ordered++
		for _, next := range targets[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if ordered != len(nodes) {
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				errs = append(errs, Finding{
					Severity: SeverityError,
					NodeID:   n.ID,
					Message:  fmt.Sprintf("node %q (%s) sits on a cycle", n.Label, n.Kind),
				})
			}
		}
	}

	// Forward reachability from every Source.
	reachable := make(map[string]bool)
	for _, n := range nodes {
		if n.Kind != domain.KindSource {
			continue
		}
		bfs := []string{n.ID}
		for len(bfs) > 0 {
			id := bfs[0]
			bfs = bfs[1:]
			for _, next := range targets[id] {
				if !reachable[next] {
					reachable[next] = true
					bfs = append(bfs, next)
				}
			}
		}
	}

	for _, n := range nodes {
		if n.Kind == domain.KindAction && !reachable[n.ID] {
			warns = append(warns, Finding{
				Severity: SeverityWarning,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("action %q is unreachable from any source", n.Label),
			})
		}
		if incident[n.ID] == 0 && len(nodes) > 1 {
			warns = append(warns, Finding{
				Severity: SeverityWarning,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("node %q (%s) has no connections", n.Label, n.Kind),
			})
		}
	}

	return append(errs, warns...)
}

// HasErrors reports whether any finding is severity error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Error folds findings into a single error, or nil when there are none.
func Error(findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Severity, f.Message))
	}
	return fmt.Errorf("found %d issues:\n- %s", len(findings), strings.Join(lines, "\n- "))
}
