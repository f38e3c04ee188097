package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Patterns - inventory the building blocks of a TypeScript/React codebase",
	Long: `Patterns scans a TypeScript/React project and extracts an inventory of its
components, hooks, utility functions, interfaces and type definitions, with
resolved types, architectural purpose, export information and a quality report.

Configuration is read from .patterns/config.yml in the project root and can be
overridden with PATTERNS_* environment variables and command-line flags.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
