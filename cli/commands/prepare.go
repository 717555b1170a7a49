package commands

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/querybind/querybind/cli/internal/config"
	"github.com/querybind/querybind/cli/internal/ui"
	"github.com/querybind/querybind/offline"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Merge cached query data into the offline snapshot",
	Long: `Merge the per-query cache files written during live builds into
querybind-data.json, the snapshot that offline builds read. Run this after a
build with DATABASE_URL set, and commit the snapshot.`,
	Args: cobra.NoArgs,
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := offline.NewStore(config.AppFs, cfg.BuildRoot)
	if err != nil {
		return err
	}

	spinner, err := ui.Spinner("Merging cached query data")
	if err != nil {
		return err
	}
	snap, err := store.Merge()
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Stop()

	rows := make([][]string, 0, len(snap.Queries))
	for _, entry := range snap.Queries {
		rows = append(rows, []string{entry.SourceHash[:12], entry.BackendTag})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	ui.PrintTable([]string{"QUERY", "BACKEND"}, rows)

	ui.PrintSuccess("Merged %d queries into %s", len(snap.Queries), offline.SnapshotFile)
	return nil
}
