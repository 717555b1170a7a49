package commands

import (
	"github.com/spf13/cobra"

	"github.com/querybind/querybind/cli/internal/ui"
	"github.com/querybind/querybind/internal/debug"
)

var rootDebug bool

var rootCmd = &cobra.Command{
	Use:   "querybind",
	Short: "Build-time typed SQL bindings for Go",
	Long: `querybind turns declared SQL queries into statically typed Go bindings.

Queries are described against the database named by DATABASE_URL, or
replayed from an offline snapshot when no database is reachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.Init(rootDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
