package tsql

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alexmaris/gribble/ir"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name:     "qualified identifier",
			node:     Ident("dbo", "Users"),
			expected: "[dbo].[Users]",
		},
		{
			name:     "seq skips nil",
			node:     Seq(Keyword("SELECT"), nil, Int(1)),
			expected: "SELECT 1",
		},
		{
			name:     "function with list",
			node:     Func("COALESCE", Name("c.name"), Null()),
			expected: "COALESCE(c.name, NULL)",
		},
		{
			name:     "in",
			node:     In(Name("type"), String("U"), String("V")),
			expected: "type IN (N'U', N'V')",
		},
		{
			name:     "cast",
			node:     Cast(Param("Flag"), ir.ScalarBool),
			expected: "CAST(@Flag AS BIT)",
		},
		{
			name:     "alias",
			node:     As(Name("c.name"), "Name"),
			expected: "c.name AS [Name]",
		},
		{
			name: "searched case",
			node: Case{
				Whens: []When{{Cond: Eq(Name("c.is_nullable"), Int(1)), Then: Bool(true)}},
				Else:  Bool(false),
			},
			expected: "CASE WHEN c.is_nullable = 1 THEN 1 ELSE 0 END",
		},
		{
			name: "guarded drop",
			node: IfExists(
				Select{Columns: []Node{Raw("*")}, From: Name("sys.tables"), Where: Eq(Name("name"), String("Users"))},
				Drop{Object: "TABLE", Name: "Users"},
			),
			expected: "IF EXISTS (SELECT * FROM sys.tables WHERE name = N'Users') BEGIN DROP TABLE [Users] END",
		},
		{
			name: "negated guard",
			node: IfNotExists(
				Select{Columns: []Node{Raw("*")}, From: Name("sys.tables")},
				Raw("PRINT 1"),
			),
			expected: "IF NOT EXISTS (SELECT * FROM sys.tables) BEGIN PRINT 1 END",
		},
		{
			name: "select with join, order and top",
			node: Select{
				Top:     1,
				Columns: []Node{Name("c.name"), Name("t.name")},
				From:    Table{Source: Name("sys.columns"), Alias: "c"},
				Joins: []Join{
					{Source: Table{Source: Name("sys.types"), Alias: "t"}, On: Eq(Name("t.user_type_id"), Name("c.user_type_id"))},
					{Left: true, Source: Name("sys.default_constraints d"), On: Eq(Name("d.object_id"), Name("c.default_object_id"))},
				},
				Where:   And(Eq(Name("c.object_id"), Func("OBJECT_ID", Param("Table"))), Eq(Name("c.is_hidden"), Int(0))),
				OrderBy: []Order{{Expr: Name("c.column_id")}, {Expr: Name("c.name"), Desc: true}},
			},
			expected: "SELECT TOP 1 c.name, t.name FROM sys.columns c JOIN sys.types t ON t.user_type_id = c.user_type_id " +
				"LEFT JOIN sys.default_constraints d ON d.object_id = c.default_object_id " +
				"WHERE c.object_id = OBJECT_ID(@Table) AND c.is_hidden = 0 ORDER BY c.column_id, c.name DESC",
		},
		{
			name: "set operations",
			node: Intersect(
				Select{Columns: []Node{Name("name")}, From: Name("a")},
				Select{Columns: []Node{Name("name")}, From: Name("b")},
			),
			expected: "SELECT name FROM a INTERSECT SELECT name FROM b",
		},
		{
			name:     "sub query",
			node:     Select{Columns: []Node{Raw("*")}, From: SubQuery(Select{Columns: []Node{Int(1)}}, "q")},
			expected: "SELECT * FROM (SELECT 1) AS q",
		},
		{
			name:     "create table",
			node:     CreateTable{Name: "Users", Definitions: []Node{Raw("[Id] INT NOT NULL"), Raw("[Name] NVARCHAR(MAX) NULL")}},
			expected: "CREATE TABLE [Users] ([Id] INT NOT NULL, [Name] NVARCHAR(MAX) NULL)",
		},
		{
			name:     "alter table",
			node:     AlterTable{Name: "Users", Action: Seq(Keyword("DROP COLUMN"), Ident("Name"))},
			expected: "ALTER TABLE [Users] DROP COLUMN [Name]",
		},
		{
			name:     "drop index",
			node:     Drop{Object: "INDEX", Name: "IX_Users_Name", On: "Users"},
			expected: "DROP INDEX [IX_Users_Name] ON [Users]",
		},
		{
			name: "create index",
			node: CreateIndex{
				Name:    "IX_Users_Name_Age",
				Table:   "Users",
				Columns: []ir.IndexColumn{{Name: "Name"}, {Name: "Age", IsDescending: true}},
			},
			expected: "CREATE NONCLUSTERED INDEX [IX_Users_Name_Age] ON [Users] ([Name] ASC, [Age] DESC)",
		},
		{
			name:     "exec",
			node:     Exec{Procedure: "GetUser", Params: []string{"Id", "Name"}},
			expected: "EXEC [GetUser] @Id = @Id, @Name = @Name",
		},
		{
			name:     "exec without parameters",
			node:     Exec{Procedure: "Cleanup"},
			expected: "EXEC [Cleanup]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.node)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestRender_UnmappedCast(t *testing.T) {
	_, err := Render(Select{Columns: []Node{Cast(Int(1), ir.ScalarInvalid)}})
	var unmapped *UnmappedTypeError
	if !errors.As(err, &unmapped) {
		t.Fatalf("Render error = %v; want *UnmappedTypeError", err)
	}
}

func TestFormatLiteral(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	tests := []struct {
		name     string
		value    ir.Value
		expected string
	}{
		{"null", ir.Null(), "NULL"},
		{"true", ir.Bool(true), "1"},
		{"false", ir.Bool(false), "0"},
		{"int", ir.Int(-42), "-42"},
		{"float", ir.Float(1.5), "1.5"},
		{"string", ir.String("it's"), "N'it''s'"},
		{"bytes", ir.Bytes([]byte{0xde, 0xad}), "0xDEAD"},
		{"time", ir.Time(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)), "'2024-03-01T12:30:00.000'"},
		{"time with offset", ir.Time(time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*60*60))), "'2024-03-01T12:30:00.000+02:00'"},
		{"time west of utc", ir.Time(time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("", -(5*60+30)*60))), "'2024-03-01T12:30:00.000-05:30'"},
		{"uuid", ir.UUID(id), "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{"expression", ir.Expression("GETDATE()"), "GETDATE()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLiteral(tt.value); got != tt.expected {
				t.Errorf("FormatLiteral() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestToStatement(t *testing.T) {
	stmt, err := ToStatement(
		Select{Columns: []Node{Raw("*")}, From: Ident("Users"), Where: Eq(Ident("Id"), Param("Id"))},
		ir.ShapeSingleOrNone,
		ir.Param{Name: "Id", Value: ir.Int(7)},
	)
	if err != nil {
		t.Fatalf("ToStatement failed: %v", err)
	}
	if stmt.Text != "SELECT * FROM [Users] WHERE [Id] = @Id" {
		t.Errorf("stmt.Text = %q", stmt.Text)
	}
	if stmt.Kind != ir.KindText || stmt.Shape != ir.ShapeSingleOrNone {
		t.Errorf("stmt kind/shape = %v/%v", stmt.Kind, stmt.Shape)
	}
	if len(stmt.Params) != 1 || stmt.Params[0].Name != "Id" {
		t.Errorf("stmt.Params = %v", stmt.Params)
	}
}

func TestProcedure(t *testing.T) {
	stmt, err := Procedure("Archive", ir.ShapeScalar,
		ir.Param{Name: "Before", Value: ir.String("2024-01-01")},
		ir.Param{Name: "Batch", Value: ir.Int(500)},
	)
	if err != nil {
		t.Fatalf("Procedure failed: %v", err)
	}
	if stmt.Text != "EXEC [Archive] @Before = @Before, @Batch = @Batch" {
		t.Errorf("stmt.Text = %q", stmt.Text)
	}
	if stmt.Kind != ir.KindStoredProcedure || stmt.Shape != ir.ShapeScalar {
		t.Errorf("stmt kind/shape = %v/%v", stmt.Kind, stmt.Shape)
	}
	if len(stmt.Params) != 2 {
		t.Errorf("len(stmt.Params) = %d; want 2", len(stmt.Params))
	}
}
