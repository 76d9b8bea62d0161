package dump

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/cmd/util"
	"github.com/alexmaris/gribble/internal/dump"
	"github.com/alexmaris/gribble/internal/logger"
)

const serverVersionQuery = "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))"

var (
	dumpConn      util.ConnectionFlags
	dumpTables    []string
	dumpMultiFile bool
	dumpFile      string
)

var DumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Script the creation of existing tables",
	Long: "Read tables from the SQL Server catalog and print the statements that recreate their columns, " +
		"primary key and non-clustered indexes, one GO separated batch per statement. The output can be run " +
		"back with gribble exec.",
	RunE: runDump,
}

func init() {
	util.AddConnectionFlags(DumpCmd, &dumpConn)
	DumpCmd.Flags().StringSliceVar(&dumpTables, "table", nil, "Table to dump; repeat or separate with commas (required)")
	DumpCmd.Flags().BoolVar(&dumpMultiFile, "multi-file", false, "Write one file per table and a main file of :r includes")
	DumpCmd.Flags().StringVar(&dumpFile, "file", "", "Output file path (required when --multi-file is used)")
	DumpCmd.MarkFlagRequired("table")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpMultiFile && dumpFile == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: --multi-file flag requires --file to be specified. Fallback to single-file mode.\n")
		dumpMultiFile = false
	}

	ctx := context.Background()
	conn, err := util.Connect(ctx, &dumpConn.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	db := gribble.New(conn)

	var serverVersion string
	if err := db.ScriptScalar(ctx, serverVersionQuery, &serverVersion); err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}

	tables, err := CollectTables(ctx, db, dumpTables)
	if err != nil {
		return err
	}

	formatter := dump.NewDumpFormatter(serverVersion)
	if dumpMultiFile {
		if err := formatter.FormatMultiFile(tables, dumpFile); err != nil {
			return err
		}
		logger.Get().Debug("Wrote multi-file dump", "file", dumpFile, "tables", len(tables))
		return nil
	}

	output := formatter.FormatSingleFile(tables)
	if dumpFile == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), output)
		return err
	}
	if err := os.WriteFile(dumpFile, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dumpFile, err)
	}
	return nil
}

// CollectTables scripts each table in the order given.
func CollectTables(ctx context.Context, db *gribble.Database, tables []string) ([]dump.TableDump, error) {
	dumps := make([]dump.TableDump, 0, len(tables))
	for _, flag := range tables {
		table := util.TableName(flag)
		p, err := db.ScriptTable(ctx, table)
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, dump.TableDump{Table: table, Steps: p.Steps})
	}
	return dumps, nil
}
