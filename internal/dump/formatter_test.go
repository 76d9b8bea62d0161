package dump

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/exec"
	"github.com/alexmaris/gribble/internal/include"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

func tableDump(t *testing.T, table string, columns []ir.Column, indexSets [][]string) TableDump {
	t.Helper()
	steps, err := diff.GenerateSteps(diff.NewTable(table, columns, indexSets), schema.NewWriter(tsql.SQLServer))
	if err != nil {
		t.Fatalf("GenerateSteps failed: %v", err)
	}
	return TableDump{Table: table, Steps: steps}
}

func sampleTables(t *testing.T) []TableDump {
	return []TableDump{
		tableDump(t, "Users", []ir.Column{
			ir.NewColumn("Id", ir.ScalarInt32, ir.Identity(), ir.WithKey(ir.KeyPrimary)),
			ir.NewColumn("Name", ir.ScalarString, ir.WithLength(200)),
		}, [][]string{{"Name"}}),
		tableDump(t, "Order Lines", []ir.Column{
			ir.NewColumn("Id", ir.ScalarInt64),
		}, nil),
	}
}

func TestFormatSingleFile(t *testing.T) {
	tables := sampleTables(t)
	output := NewDumpFormatter("16.0.1000.6").FormatSingleFile(tables)

	expectedParts := []string{
		"--\r\n-- gribble table dump\r\n--\r\n",
		"-- Dumped from SQL Server version 16.0.1000.6\r\n",
		"-- Name: Users; Type: TABLE; Table: Users\r\n",
		"-- Name: IX_Users_Name; Type: INDEX; Table: Users\r\n",
		"-- Name: Order Lines; Type: TABLE; Table: Order Lines\r\n",
		tables[0].Steps[0].SQL + "\r\nGO\r\n",
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("FormatSingleFile() output missing %q:\n%s", part, output)
		}
	}

	if batches := exec.SplitBatches(output); len(batches) != 3 {
		t.Errorf("SplitBatches() = %d batches; want 3", len(batches))
	}
	if !strings.HasSuffix(output, "\r\nGO\r\n\r\n") {
		t.Errorf("FormatSingleFile() should end with a separator and a blank line: %q", output[len(output)-20:])
	}
}

func TestFormatMultiFile(t *testing.T) {
	tables := sampleTables(t)
	formatter := NewDumpFormatter("16.0.1000.6")
	outputPath := filepath.Join(t.TempDir(), "schema.sql")

	if err := formatter.FormatMultiFile(tables, outputPath); err != nil {
		t.Fatalf("FormatMultiFile failed: %v", err)
	}

	main, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read main file: %v", err)
	}
	if !strings.Contains(string(main), ":r tables/users.sql\r\n:r tables/order_lines.sql\r\n") {
		t.Errorf("Main file should include one file per table:\n%s", main)
	}

	usersFile, err := os.ReadFile(filepath.Join(filepath.Dir(outputPath), "tables", "users.sql"))
	if err != nil {
		t.Fatalf("Failed to read table file: %v", err)
	}
	if !strings.Contains(string(usersFile), "IX_Users_Name") {
		t.Errorf("users.sql should hold the index of Users:\n%s", usersFile)
	}

	resolved, err := include.NewProcessor(filepath.Dir(outputPath)).ProcessFile(outputPath)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if single := formatter.FormatSingleFile(tables); resolved != single {
		t.Errorf("Resolved multi-file dump differs from single-file dump:\n%q\n%q", resolved, single)
	}
}

func TestSanitizeFileName(t *testing.T) {
	f := NewDumpFormatter("")
	tests := map[string]string{
		"Users":         "users",
		"Order Lines":   "order_lines",
		"_Temp$Data_":   "temp_data",
		"Customer-Data": "customer-data",
		"$$$":           "table",
	}
	for input, expected := range tests {
		if got := f.sanitizeFileName(input); got != expected {
			t.Errorf("sanitizeFileName(%q) = %q; want %q", input, got, expected)
		}
	}
}

func TestFormatMultiFile_FileNameCollision(t *testing.T) {
	tables := []TableDump{
		tableDump(t, "Order Lines", []ir.Column{ir.NewColumn("Id", ir.ScalarInt64)}, nil),
		tableDump(t, "Order_Lines", []ir.Column{ir.NewColumn("Id", ir.ScalarInt32)}, nil),
		tableDump(t, "order_lines_2", []ir.Column{ir.NewColumn("Id", ir.ScalarInt16)}, nil),
	}
	outputPath := filepath.Join(t.TempDir(), "schema.sql")
	if err := NewDumpFormatter("16.0").FormatMultiFile(tables, outputPath); err != nil {
		t.Fatalf("FormatMultiFile failed: %v", err)
	}

	main, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read main file: %v", err)
	}
	expected := ":r tables/order_lines.sql\r\n:r tables/order_lines_2.sql\r\n:r tables/order_lines_2_2.sql\r\n"
	if !strings.Contains(string(main), expected) {
		t.Errorf("Main file should give each table its own file:\n%s", main)
	}

	for i, name := range []string{"order_lines.sql", "order_lines_2.sql", "order_lines_2_2.sql"} {
		content, err := os.ReadFile(filepath.Join(filepath.Dir(outputPath), "tables", name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if want := "Table: " + tables[i].Table + "\r\n"; !strings.Contains(string(content), want) {
			t.Errorf("%s should hold %s:\n%s", name, tables[i].Table, content)
		}
	}
}

func TestSplitObjectPath(t *testing.T) {
	table, name := splitObjectPath("Users.IX_Users_Name")
	if table != "Users" || name != "IX_Users_Name" {
		t.Errorf("splitObjectPath() = %q, %q", table, name)
	}
	table, name = splitObjectPath("Users")
	if table != "Users" || name != "Users" {
		t.Errorf("splitObjectPath() = %q, %q", table, name)
	}
}
