package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.yaml>",
	Short: "Check a workflow graph for consistency",
	Long: `Materializes the workflow document and reports cycles, unreachable actions
and unconnected nodes. Exits non-zero when errors are found.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		findings, err := runValidate(args[0])
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		for _, f := range findings {
			fmt.Printf("%s: %s\n", f.Severity, f.Message)
		}
		if validator.HasErrors(findings) {
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) ([]validator.Finding, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}
	store, err := doc.Materialize(domain.UUIDGenerator{})
	if err != nil {
		return nil, err
	}
	return validator.Check(store.Nodes(), store.Connections()), nil
}
