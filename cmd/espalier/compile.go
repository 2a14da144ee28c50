package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ruleset"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile <workflow.yaml>",
	Short: "Compile a workflow document into a ruleset",
	Long: `Reads a workflow document (YAML or JSON), builds the graph and writes the
compiled ruleset as JSON to stdout or the --output file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		strict, _ := cmd.Flags().GetBool("strict")
		output, _ := cmd.Flags().GetString("output")
		report, _ := cmd.Flags().GetBool("report")

		doc, err := document.LoadFile(args[0])
		if err != nil {
			return err
		}

		store, err := doc.Materialize(domain.UUIDGenerator{})
		if err != nil {
			return err
		}

		nodes, conns := store.Nodes(), store.Connections()
		findings := validator.Check(nodes, conns)
		for _, f := range findings {
			logger.Warn("validation finding", "severity", f.Severity, "node", f.NodeID, "msg", f.Message)
		}
		if strict && validator.HasErrors(findings) {
			return validator.Error(findings)
		}

		rs, err := ruleset.Compile(nodes, conns)
		if err != nil {
			return err
		}
		data, err := rs.MarshalPretty()
		if err != nil {
			return err
		}

		if output != "" {
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write ruleset: %w", err)
			}
			logger.Info("ruleset written", "path", output, "bytes", len(data))
		} else {
			fmt.Print(string(data))
		}

		if report && term.IsTerminal(int(os.Stdout.Fd())) {
			printCompileReport(doc.Name, len(rs.Nodes), len(rs.Connections), findings)
		}
		return nil
	},
}

// printCompileReport renders a Markdown summary for interactive terminals.
func printCompileReport(name string, nodes, conns int, findings []validator.Finding) {
	md := fmt.Sprintf("# Compiled %q\n\n- **Nodes:** %d\n- **Connections:** %d\n", name, nodes, conns)
	if len(findings) > 0 {
		md += fmt.Sprintf("- **Findings:** %d\n", len(findings))
		for _, f := range findings {
			md += fmt.Sprintf("  - `%s` %s\n", f.Severity, f.Message)
		}
	}

	render := tui.NewRenderer()
	if out, err := render(md); err == nil {
		fmt.Fprint(os.Stderr, out)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolP("strict", "s", false, "Fail on validation errors")
	compileCmd.Flags().StringP("output", "o", "", "Write the ruleset to a file instead of stdout")
	compileCmd.Flags().Bool("report", false, "Print a compile summary to stderr on interactive terminals")
}
