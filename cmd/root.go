package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble/cmd/drop"
	"github.com/alexmaris/gribble/cmd/dump"
	"github.com/alexmaris/gribble/cmd/inspect"
	"github.com/alexmaris/gribble/cmd/script"
	"github.com/alexmaris/gribble/cmd/sync"
	"github.com/alexmaris/gribble/internal/logger"
	"github.com/alexmaris/gribble/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "gribble",
	Short: "SQL Server table inspection and additive schema sync",
	Long: fmt.Sprintf(`gribble inspects SQL Server tables and adds the columns and indexes they lack.

Version: %s

Commands:
  inspect  Show the columns and indexes of a table
  sync     Add missing columns and indexes to a table
  exec     Run a script of GO separated batches
  dump     Script the creation of existing tables
  drop     Drop a table if it exists

Use "gribble [command] --help" for more information about a command.`, version.String()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(sync.SyncCmd)
	RootCmd.AddCommand(script.ExecCmd)
	RootCmd.AddCommand(dump.DumpCmd)
	RootCmd.AddCommand(drop.DropCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	logger.SetGlobal(logger.New(os.Stderr, Debug), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
