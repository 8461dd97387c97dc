package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath   string
	settlementID int
	verbose      bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "marssim",
		Short: "Mars settlement simulator",
		Long: `marssim runs Mars settlements built from a building catalog and
records what their buildings do: beds, garages, computing, research and
workshop processes.

Examples:
  marssim run --sols 3 --pulse 10
  marssim run --settlement "Schiaparelli Point" --archive
  marssim catalog list --processes
  marssim reports list --settlement 1 --limit 5
  marssim reports records --settlement 1 --aborted
  marssim config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: ./config.yaml, ./configs, /etc/marssim)")
	rootCmd.PersistentFlags().IntVar(&settlementID, "settlement-id", 0,
		"Settlement ID (defaults to the one set with 'config set-settlement')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewReportsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
