package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a decision-workflow graph compiler",
	Long: `Espalier edits decision workflows as graphs of sources, rules, logic gates
and actions, and compiles them into rulesets for the execution backend.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelWarn)
}
