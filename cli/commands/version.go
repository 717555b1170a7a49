package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querybind/querybind/cli/internal/ui"
	"github.com/querybind/querybind/cli/internal/version"
	"github.com/querybind/querybind/describe"
)

var versionFull bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		if versionFull {
			fmt.Println(info.FullString())
		} else {
			fmt.Println(info.String())
		}
		fmt.Print("Backends: ")
		ui.Printers()["info"].Println(strings.Join(describe.Backends(), ", "))
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "Print detailed build information")
	rootCmd.AddCommand(versionCmd)
}
