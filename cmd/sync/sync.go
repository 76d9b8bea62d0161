package sync

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/cmd/util"
	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/ignore"
	"github.com/alexmaris/gribble/internal/logger"
	"github.com/alexmaris/gribble/ir"
)

var (
	syncConn        util.ConnectionFlags
	syncTable       string
	syncModel       string
	syncFile        string
	syncDryRun      bool
	syncAutoApprove bool
	syncNoColor     bool
	syncFormat      string
	syncIgnoreFile  string
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add missing columns and indexes to a table",
	Long: "Compare a table with a model (another table given by --model, or a YAML file given by --file) and add " +
		"the columns and non-clustered indexes it lacks. The table is created when it does not exist. " +
		"Nothing is ever altered or dropped.",
	RunE: runSync,
}

func init() {
	util.AddConnectionFlags(SyncCmd, &syncConn)
	SyncCmd.Flags().StringVar(&syncTable, "table", "", "Table to synchronize (required)")
	SyncCmd.Flags().StringVar(&syncModel, "model", "", "Table whose columns and non-clustered indexes are the desired state")
	SyncCmd.Flags().StringVar(&syncFile, "file", "", "YAML file describing the desired columns and indexes")
	SyncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show plan without applying changes")
	SyncCmd.Flags().BoolVar(&syncAutoApprove, "auto-approve", false, "Apply changes without prompting for approval")
	SyncCmd.Flags().BoolVar(&syncNoColor, "no-color", false, "Disable colored output")
	SyncCmd.Flags().StringVar(&syncFormat, "format", "human", "Plan output format: human, json or sql")
	SyncCmd.Flags().StringVar(&syncIgnoreFile, "ignore-file", ignore.IgnoreFileName, "TOML file of column and index patterns never to add")
	SyncCmd.MarkFlagRequired("table")
	SyncCmd.MarkFlagsMutuallyExclusive("model", "file")
	SyncCmd.MarkFlagsOneRequired("model", "file")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()
	table := util.TableName(syncTable)

	conn, err := util.Connect(ctx, &syncConn.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	db := gribble.New(conn)

	columns, indexSets, err := desiredState(ctx, db)
	if err != nil {
		return err
	}
	ignoreConfig, err := ignore.LoadIgnoreFileFromPath(syncIgnoreFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", syncIgnoreFile, err)
	}
	if ignoreConfig != nil {
		columns, indexSets = ignoreConfig.Filter(table, columns, indexSets)
		logger.Get().Debug("Applied ignore file", "path", syncIgnoreFile, "columns", len(columns), "indexes", len(indexSets))
	}

	p, err := db.PlanTableSync(ctx, table, columns, indexSets)
	if err != nil {
		return err
	}
	logger.Get().Debug("Computed plan", "table", table, "steps", len(p.Steps), "source", p.SourceFingerprint.String())

	if err := WritePlan(out, p, syncFormat, !syncNoColor); err != nil {
		return err
	}
	if !p.HasChanges() || syncDryRun {
		return nil
	}

	if !syncAutoApprove {
		approved, err := confirm(out, os.Stdin)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Fprintln(out, "Sync cancelled.")
			return nil
		}
	}

	if err := db.VerifyPlan(ctx, p); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nApplying changes...")
	if err := db.ApplyPlan(ctx, p); err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d change(s) to %s.\n", len(p.Steps), table)
	return nil
}

// desiredState reads the target columns and index sets from the model table
// or the model file.
func desiredState(ctx context.Context, db *gribble.Database) ([]ir.Column, [][]string, error) {
	if syncFile != "" {
		m, err := LoadModel(syncFile)
		if err != nil {
			return nil, nil, err
		}
		return m.ColumnList(), m.Indexes, nil
	}

	model := util.TableName(syncModel)
	columns, err := db.GetColumns(ctx, model)
	if err != nil {
		return nil, nil, err
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model table %s does not exist", model)
	}
	indexes, err := db.GetIndexes(ctx, model)
	if err != nil {
		return nil, nil, err
	}
	return columns, diff.IndexSets(diff.ReplicableIndexes(indexes)), nil
}

// WritePlan prints a plan in the requested format.
func WritePlan(w io.Writer, p *gribble.Plan, format string, color bool) error {
	switch format {
	case "human":
		_, err := io.WriteString(w, p.HumanColored(color))
		return err
	case "json":
		data, err := p.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, data)
		return err
	case "sql":
		_, err := io.WriteString(w, p.ToSQL())
		return err
	default:
		return fmt.Errorf("unsupported format %q: use human, json or sql", format)
	}
}

func confirm(w io.Writer, r io.Reader) (bool, error) {
	fmt.Fprint(w, "\nDo you want to apply these changes? (yes/no): ")
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}
