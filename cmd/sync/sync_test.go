package sync

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/plan"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

const usersModel = `
columns:
  - name: Id
    type: int32
    identity: true
    key: clustered_primary
  - name: Email
    type: string
    length: 320
    nullable: true
  - name: Created
    type: datetime
    auto_generated: true
  - name: Status
    type: int16
    default: "0"
  - name: Total
    type: decimal
    precision: 18
    scale: 2
indexes:
  - [Email]
  - [Created, Status]
`

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte(usersModel))
	if err != nil {
		t.Fatalf("ParseModel failed: %v", err)
	}

	expected := []ir.Column{
		ir.NewColumn("Id", ir.ScalarInt32, ir.Identity(), ir.WithKey(ir.KeyClusteredPrimary)),
		ir.NewColumn("Email", ir.ScalarString, ir.WithLength(320), ir.Nullable()),
		ir.NewColumn("Created", ir.ScalarDateTime, ir.AutoGenerated()),
		ir.NewColumn("Status", ir.ScalarInt16, ir.WithDefault(ir.Expression("0"))),
		ir.NewColumn("Total", ir.ScalarDecimal, ir.WithPrecision(18, 2)),
	}
	if d := cmp.Diff(expected, m.ColumnList()); d != "" {
		t.Errorf("ColumnList() mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([][]string{{"Email"}, {"Created", "Status"}}, m.Indexes); d != "" {
		t.Errorf("Indexes mismatch (-want +got):\n%s", d)
	}
}

func TestParseModel_SQLType(t *testing.T) {
	input := `
columns:
  - name: Code
    sql_type: varchar(12)
  - name: Notes
    sql_type: NVARCHAR(MAX)
    nullable: true
  - name: Label
    sql_type: nvarchar(40)
    length: 80
  - name: Ticks
    sql_type: bigint
`
	m, err := ParseModel([]byte(input))
	if err != nil {
		t.Fatalf("ParseModel failed: %v", err)
	}

	expected := []ir.Column{
		ir.NewColumn("Code", ir.ScalarString, ir.WithLength(12)),
		ir.NewColumn("Notes", ir.ScalarString, ir.Nullable()),
		ir.NewColumn("Label", ir.ScalarString, ir.WithLength(80)),
		ir.NewColumn("Ticks", ir.ScalarInt64),
	}
	if d := cmp.Diff(expected, m.ColumnList()); d != "" {
		t.Errorf("ColumnList() mismatch (-want +got):\n%s", d)
	}

	_, err = ParseModel([]byte("columns:\n  - name: Shape\n    sql_type: geography\n"))
	if err == nil || !strings.Contains(err.Error(), "model column Shape") {
		t.Errorf("ParseModel(geography) error = %v; want an unmapped type error", err)
	}
}

func TestParseModel_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"no columns", "indexes:\n  - [A]\n", "no columns"},
		{"unnamed column", "columns:\n  - type: int32\n", "has no name"},
		{"untyped column", "columns:\n  - name: A\n", "has no type"},
		{"unknown type", "columns:\n  - name: A\n    type: char\n", "unknown scalar type"},
		{"unknown key", "columns:\n  - name: A\n    type: int32\n    key: foreign\n", "unknown key"},
		{"empty index", "columns:\n  - name: A\n    type: int32\nindexes:\n  - []\n", "has no columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Errorf("ParseModel() error = %v; want it to contain %q", err, tt.err)
			}
		})
	}
}

func TestWritePlan(t *testing.T) {
	m, err := ParseModel([]byte(usersModel))
	if err != nil {
		t.Fatal(err)
	}
	d := diff.NewTable("Users", m.ColumnList(), m.Indexes)
	steps, err := diff.GenerateSteps(d, schema.NewWriter(tsql.SQLServer))
	if err != nil {
		t.Fatal(err)
	}
	p := plan.NewPlan(d, steps)

	tests := []struct {
		format   string
		contains string
	}{
		{"human", "Plan: 3 to add."},
		{"json", `"table": "Users"`},
		{"sql", "CREATE NONCLUSTERED INDEX [IX_Users_Created_Status] ON [Users] ([Created] ASC, [Status] ASC)"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePlan(&buf, p, tt.format, false); err != nil {
				t.Fatalf("WritePlan failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("WritePlan(%s) missing %q in:\n%s", tt.format, tt.contains, buf.String())
			}
		})
	}

	if err := WritePlan(&bytes.Buffer{}, p, "xml", false); err == nil {
		t.Error("WritePlan(xml) succeeded; want an error")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"yes\n", true},
		{"Y\n", true},
		{"no\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(&out, strings.NewReader(tt.input))
		if err != nil {
			t.Fatalf("confirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("confirm(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}
