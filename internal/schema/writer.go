package schema

import (
	"fmt"
	"strings"

	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// Writer produces DDL and catalog statements. The dialect supplies the
// generator defaults written for auto-generated columns and recognized when
// reading them back.
type Writer struct {
	dialect tsql.Dialect
}

// NewWriter creates a statement writer for the given dialect.
func NewWriter(dialect tsql.Dialect) *Writer {
	return &Writer{dialect: dialect}
}

// Dialect returns the dialect the writer was built with.
func (w *Writer) Dialect() tsql.Dialect {
	return w.dialect
}

// IndexName synthesizes the name of an index created by AddNonClusteredIndex.
func IndexName(table string, columns ...string) string {
	return fmt.Sprintf("IX_%s_%s", table, strings.Join(columns, "_"))
}

// PrimaryKeyName is the name of the constraint CreateTable emits.
func PrimaryKeyName(table string) string {
	return "PK_" + table
}

// CreateTable renders CREATE TABLE with one definition per column in input
// order. A primary key constraint is appended only when exactly one column
// claims key status.
func (w *Writer) CreateTable(name string, columns ...ir.Column) (ir.Statement, error) {
	if len(columns) == 0 {
		return ir.Statement{}, fmt.Errorf("create table %s: no columns", name)
	}
	defs := make([]tsql.Node, 0, len(columns)+1)
	for _, c := range columns {
		def, err := w.columnDefinition(c)
		if err != nil {
			return ir.Statement{}, fmt.Errorf("create table %s: column %s: %w", name, c.Name, err)
		}
		defs = append(defs, def)
	}
	if pk, ok := ir.PrimaryKeyColumn(columns); ok {
		kind := "PRIMARY KEY NONCLUSTERED"
		if pk.Key == ir.KeyClusteredPrimary {
			kind = "PRIMARY KEY CLUSTERED"
		}
		defs = append(defs, tsql.Seq(
			tsql.Keyword("CONSTRAINT"), tsql.Ident(PrimaryKeyName(name)),
			tsql.Keyword(kind), tsql.Paren(tsql.Seq(tsql.Ident(pk.Name), tsql.Keyword("ASC"))),
		))
	}
	return tsql.ToStatement(tsql.CreateTable{Name: name, Definitions: defs}, ir.ShapeNone)
}

// DeleteTable drops the table when it exists.
func (w *Writer) DeleteTable(name string) (ir.Statement, error) {
	return tsql.ToStatement(tsql.IfExists(tableCondition(name), tsql.Drop{Object: "TABLE", Name: name}), ir.ShapeNone)
}

// TableExists returns a scalar statement yielding a BIT.
func (w *Writer) TableExists(name string) (ir.Statement, error) {
	return existsStatement(tableCondition(name))
}

// ColumnExists returns a scalar statement yielding a BIT.
func (w *Writer) ColumnExists(table, column string) (ir.Statement, error) {
	return existsStatement(columnCondition(table, column))
}

// IndexExists returns a scalar statement yielding a BIT.
func (w *Writer) IndexExists(table, index string) (ir.Statement, error) {
	return existsStatement(indexCondition(table, index))
}

// AddColumn renders ALTER TABLE ... ADD with the full column definition.
func (w *Writer) AddColumn(table string, column ir.Column) (ir.Statement, error) {
	def, err := w.columnDefinition(column)
	if err != nil {
		return ir.Statement{}, fmt.Errorf("add column %s to %s: %w", column.Name, table, err)
	}
	return tsql.ToStatement(tsql.AlterTable{Name: table, Action: tsql.Seq(tsql.Keyword("ADD"), def)}, ir.ShapeNone)
}

// RemoveColumn drops the column when it exists.
func (w *Writer) RemoveColumn(table, column string) (ir.Statement, error) {
	drop := tsql.AlterTable{Name: table, Action: tsql.Seq(tsql.Keyword("DROP COLUMN"), tsql.Ident(column))}
	return tsql.ToStatement(tsql.IfExists(columnCondition(table, column), drop), ir.ShapeNone)
}

// AddNonClusteredIndex creates an ascending index over columns in the given
// order, named by IndexName.
func (w *Writer) AddNonClusteredIndex(table string, columns ...string) (ir.Statement, error) {
	if len(columns) == 0 {
		return ir.Statement{}, fmt.Errorf("add index to %s: no columns", table)
	}
	keys := make([]ir.IndexColumn, len(columns))
	for i, c := range columns {
		keys[i] = ir.IndexColumn{Name: c}
	}
	return tsql.ToStatement(tsql.CreateIndex{Name: IndexName(table, columns...), Table: table, Columns: keys}, ir.ShapeNone)
}

// RemoveNonClusteredIndex drops the index when it exists.
func (w *Writer) RemoveNonClusteredIndex(table, index string) (ir.Statement, error) {
	drop := tsql.Drop{Object: "INDEX", Name: index, On: table}
	return tsql.ToStatement(tsql.IfExists(indexCondition(table, index), drop), ir.ShapeNone)
}

// columnDefinition renders
//
//	[name] TYPE [IDENTITY(1,1)] [NOT] NULL [DEFAULT expr]
//
// or, for computed columns, [name] AS (expr) [PERSISTED].
func (w *Writer) columnDefinition(c ir.Column) (tsql.Node, error) {
	if c.Computation != nil {
		var persisted tsql.Node
		if c.Computation.IsPersisted {
			persisted = tsql.Keyword("PERSISTED")
		}
		return tsql.Seq(tsql.Ident(c.Name), tsql.Keyword("AS"), tsql.Paren(tsql.Raw(c.Computation.Expression)), persisted), nil
	}

	typeName, err := columnTypeName(c)
	if err != nil {
		return nil, err
	}
	parts := []tsql.Node{tsql.Ident(c.Name), tsql.Keyword(typeName)}
	if c.IsIdentity {
		parts = append(parts, tsql.Keyword("IDENTITY(1,1)"))
	}
	if c.IsNullable {
		parts = append(parts, tsql.Keyword("NULL"))
	} else {
		parts = append(parts, tsql.Keyword("NOT NULL"))
	}
	if def := w.defaultFor(c); def != nil {
		parts = append(parts, tsql.Keyword("DEFAULT"), def)
	}
	return tsql.Seq(parts...), nil
}

func (w *Writer) defaultFor(c ir.Column) tsql.Node {
	if c.IsIdentity {
		return nil
	}
	if c.IsAutoGenerated {
		if gen, ok := w.dialect.GeneratorFor(c.Type, c.Key.IsPrimary()); ok {
			return tsql.Raw(gen)
		}
	}
	if c.DefaultValue != nil {
		return tsql.Literal(*c.DefaultValue)
	}
	return nil
}

func columnTypeName(c ir.Column) (string, error) {
	if c.Type == ir.ScalarDecimal && c.Precision > 0 {
		return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale), nil
	}
	return tsql.NativeName(c.Type, c.Length)
}

func objectID(table string) tsql.Node {
	return tsql.Func("OBJECT_ID", tsql.String(tsql.QuoteIdentifier(table)))
}

func tableCondition(table string) tsql.Node {
	return tsql.Select{
		Columns: []tsql.Node{tsql.Raw("*")},
		From:    tsql.Name("sys.tables"),
		Where:   tsql.Eq(tsql.Name("object_id"), objectID(table)),
	}
}

func columnCondition(table, column string) tsql.Node {
	return tsql.Select{
		Columns: []tsql.Node{tsql.Raw("*")},
		From:    tsql.Name("sys.columns"),
		Where:   tsql.And(tsql.Eq(tsql.Name("object_id"), objectID(table)), tsql.Eq(tsql.Name("name"), tsql.String(column))),
	}
}

func indexCondition(table, index string) tsql.Node {
	return tsql.Select{
		Columns: []tsql.Node{tsql.Raw("*")},
		From:    tsql.Name("sys.indexes"),
		Where:   tsql.And(tsql.Eq(tsql.Name("object_id"), objectID(table)), tsql.Eq(tsql.Name("name"), tsql.String(index))),
	}
}

func existsStatement(cond tsql.Node) (ir.Statement, error) {
	flag := tsql.Case{
		Whens: []tsql.When{{Cond: tsql.Exists(cond), Then: tsql.Int(1)}},
		Else:  tsql.Int(0),
	}
	return tsql.ToStatement(tsql.Select{Columns: []tsql.Node{tsql.Cast(flag, ir.ScalarBool)}}, ir.ShapeScalar)
}
