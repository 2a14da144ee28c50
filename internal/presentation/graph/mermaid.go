// Package graph renders workflow graph snapshots as Mermaid flowcharts for
// the CLI and the HTTP adapter.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// GenerateMermaid produces Mermaid flowchart syntax (graph TD) from a graph
// snapshot. It applies semantic shapes per kind:
// - Source: ((Circle))
// - LogicGate: [[Subroutine]]
// - Action: [/Parallelogram/]
// - Rule: [Rectangle]
// Edges are labeled with their socket pair so multi-input wiring stays
// readable.
func GenerateMermaid(nodes []domain.Node, connections []domain.Connection) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindSource:
			opener, closer = "((", "))"
		case domain.KindLogicGate:
			opener, closer = "[[", "]]"
		case domain.KindAction:
			opener, closer = "[/", "/]"
		}

		label := node.Label
		if node.Kind == domain.KindSource && node.SourceFile != "" {
			label = fmt.Sprintf("%s <br/> %s", node.Label, node.SourceFile)
		}
		if node.Kind == domain.KindRule && node.CodeLine != "" {
			// Escape double quotes for the Mermaid label.
			safeCode := strings.ReplaceAll(node.CodeLine, "\"", "'")
			label = fmt.Sprintf("%s <br/> %s", node.Label, safeCode)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, c := range connections {
		safeFrom := sanitizeMermaidID(c.SourceNodeID)
		safeTo := sanitizeMermaidID(c.TargetNodeID)
		arrow := fmt.Sprintf("-- \"%s → %s\" -->", c.SourceOutputKey, c.TargetInputKey)
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
