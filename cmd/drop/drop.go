package drop

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/cmd/util"
)

var (
	dropConn  util.ConnectionFlags
	dropTable string
)

var DropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop a table if it exists",
	Long:  "Drop a table. A table that does not exist is not an error.",
	RunE:  runDrop,
}

func init() {
	util.AddConnectionFlags(DropCmd, &dropConn)
	DropCmd.Flags().StringVar(&dropTable, "table", "", "Table to drop (required)")
	DropCmd.MarkFlagRequired("table")
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	table := util.TableName(dropTable)
	conn, err := util.Connect(ctx, &dropConn.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	db := gribble.New(conn)
	existed, err := db.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if err := db.DeleteTable(ctx, table); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(cmd.OutOrStdout(), "Dropped table %s.\n", table)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Table %s does not exist.\n", table)
	}
	return nil
}
