package main

import (
	"os"

	// Database backends compiled into this build. Removing an import drops
	// that backend; its URLs and cached entries then fail with a "not
	// included in this build" error instead of a misleading one.
	_ "github.com/querybind/querybind/describe/mssql"
	_ "github.com/querybind/querybind/describe/mysql"
	_ "github.com/querybind/querybind/describe/postgres"
	_ "github.com/querybind/querybind/describe/sqlite"

	"github.com/querybind/querybind/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
