package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexmaris/gribble"
	"github.com/alexmaris/gribble/cmd/util"
	"github.com/alexmaris/gribble/ir"
)

var (
	inspectConn   util.ConnectionFlags
	inspectTable  string
	inspectFormat string
)

var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the columns and indexes of a table",
	Long:  "Read the columns and keyed indexes of a table from the SQL Server catalog and print them as text, JSON or YAML.",
	RunE:  runInspect,
}

func init() {
	util.AddConnectionFlags(InspectCmd, &inspectConn)
	InspectCmd.Flags().StringVar(&inspectTable, "table", "", "Table to inspect (required)")
	InspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format: text, json or yaml")
	InspectCmd.MarkFlagRequired("table")
}

// Report is the inspected shape of one table.
type Report struct {
	Table   string      `json:"table" yaml:"table"`
	Columns []ir.Column `json:"columns" yaml:"columns"`
	Indexes []ir.Index  `json:"indexes" yaml:"indexes"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	table := util.TableName(inspectTable)

	conn, err := util.Connect(ctx, &inspectConn.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	db := gribble.New(conn)
	exists, err := db.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s does not exist", table)
	}

	report := &Report{Table: table}
	if report.Columns, err = db.GetColumns(ctx, table); err != nil {
		return err
	}
	if report.Indexes, err = db.GetIndexes(ctx, table); err != nil {
		return err
	}
	return Write(cmd.OutOrStdout(), report, inspectFormat)
}

// Write prints report in the given format.
func Write(w io.Writer, report *Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		return enc.Close()
	case "text":
		_, err := io.WriteString(w, formatText(report))
		return err
	default:
		return fmt.Errorf("unsupported format %q: use text, json or yaml", format)
	}
}

func formatText(report *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n\n", report.Table)

	b.WriteString("Columns:\n")
	for _, c := range report.Columns {
		fmt.Fprintf(&b, "  %s %s%s\n", c.Name, describeType(c), describeFlags(c))
	}

	if len(report.Indexes) > 0 {
		b.WriteString("\nIndexes:\n")
		for _, idx := range report.Indexes {
			var kinds []string
			if idx.IsPrimaryKey {
				kinds = append(kinds, "primary key")
			}
			if idx.IsClustered {
				kinds = append(kinds, "clustered")
			}
			if idx.IsUnique {
				kinds = append(kinds, "unique")
			}
			cols := make([]string, len(idx.Columns))
			for i, c := range idx.Columns {
				cols[i] = c.Name
				if c.IsDescending {
					cols[i] += " DESC"
				}
			}
			fmt.Fprintf(&b, "  %s (%s)", idx.Name, strings.Join(cols, ", "))
			if len(kinds) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(kinds, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func describeType(c ir.Column) string {
	native := c.NativeTypeName
	if native == "" {
		native = c.Type.String()
	}
	switch c.Type {
	case ir.ScalarString, ir.ScalarBytes:
		if c.Length > 0 {
			return fmt.Sprintf("%s(%d)", native, c.Length)
		}
		return native + "(max)"
	case ir.ScalarDecimal:
		if c.Precision > 0 {
			return fmt.Sprintf("%s(%d,%d)", native, c.Precision, c.Scale)
		}
	}
	return native
}

func describeFlags(c ir.Column) string {
	var flags []string
	if c.IsNullable {
		flags = append(flags, "null")
	} else {
		flags = append(flags, "not null")
	}
	if c.IsIdentity {
		flags = append(flags, "identity")
	} else if c.IsAutoGenerated {
		flags = append(flags, "generated")
	}
	if c.Key.IsPrimary() {
		flags = append(flags, c.Key.String())
	}
	if c.DefaultValue != nil {
		flags = append(flags, "default "+c.DefaultValue.String())
	}
	if c.Computation != nil {
		flags = append(flags, "as "+c.Computation.Expression)
	}
	return " (" + strings.Join(flags, ", ") + ")"
}
