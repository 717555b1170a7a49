package commands

import (
	"github.com/spf13/cobra"

	"github.com/querybind/querybind/cli/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate bindings when the manifest or query files change",
	Long: `Watch the manifest and every file-based query source it names, and
regenerate bindings on change. Equivalent to 'generate --watch'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runGenerateWatch(cfg)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
