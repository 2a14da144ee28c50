package main

import (
	"fmt"

	"github.com/spf13/cobra"

	presentation "github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow.yaml>",
	Short: "Export the workflow graph visualization",
	Long:  `Materializes the workflow document and outputs a Mermaid diagram (graph TD).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := document.LoadFile(args[0])
		if err != nil {
			return err
		}
		store, err := doc.Materialize(domain.UUIDGenerator{})
		if err != nil {
			return err
		}
		fmt.Print(presentation.GenerateMermaid(store.Nodes(), store.Connections()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
