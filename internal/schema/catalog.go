package schema

import (
	"fmt"

	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// TableParam is the parameter the introspection queries take the quoted
// table name through.
const TableParam = "Table"

// stringTypeIDs are the character types considered when comparing widths
// across tables.
var stringTypeIDs = []tsql.TypeID{
	tsql.TypeChar, tsql.TypeVarChar, tsql.TypeText,
	tsql.TypeNChar, tsql.TypeNVarChar, tsql.TypeNText,
}

// GetColumns introspects one table. Each row scans into a ColumnRow, in
// column_id order.
func (w *Writer) GetColumns(table string) (ir.Statement, error) {
	q := tsql.Select{
		Columns: columnProjection(),
		From:    tsql.Table{Source: tsql.Name("sys.columns"), Alias: "c"},
		Joins:   columnJoins(),
		Where:   tsql.Eq(tsql.Name("c.object_id"), tsql.Func("OBJECT_ID", tsql.Param(TableParam))),
		OrderBy: []tsql.Order{{Expr: tsql.Name("c.column_id")}},
	}
	return tsql.ToStatement(q, ir.ShapeMultiple, tableParam(table))
}

// GetIndexes introspects the keyed indexes of one table. Rows scan into
// IndexRow and arrive grouped by index name in key order.
func (w *Writer) GetIndexes(table string) (ir.Statement, error) {
	clustered := tsql.Case{
		Whens: []tsql.When{{Cond: tsql.Eq(tsql.Name("i.type"), tsql.Int(1)), Then: tsql.Int(1)}},
		Else:  tsql.Int(0),
	}
	q := tsql.Select{
		Columns: []tsql.Node{
			tsql.As(tsql.Name("i.name"), "IndexName"),
			tsql.As(tsql.Cast(clustered, ir.ScalarBool), "IsClustered"),
			tsql.As(tsql.Name("i.is_unique"), "IsUnique"),
			tsql.As(tsql.Name("i.is_primary_key"), "IsPrimaryKey"),
			tsql.As(tsql.Name("c.name"), "ColumnName"),
			tsql.As(tsql.Name("ic.is_descending_key"), "IsDescending"),
		},
		From: tsql.Table{Source: tsql.Name("sys.indexes"), Alias: "i"},
		Joins: []tsql.Join{
			{
				Source: tsql.Table{Source: tsql.Name("sys.index_columns"), Alias: "ic"},
				On:     tsql.And(tsql.Eq(tsql.Name("ic.object_id"), tsql.Name("i.object_id")), tsql.Eq(tsql.Name("ic.index_id"), tsql.Name("i.index_id"))),
			},
			{
				Source: tsql.Table{Source: tsql.Name("sys.columns"), Alias: "c"},
				On:     tsql.And(tsql.Eq(tsql.Name("c.object_id"), tsql.Name("ic.object_id")), tsql.Eq(tsql.Name("c.column_id"), tsql.Name("ic.column_id"))),
			},
		},
		Where: tsql.And(
			tsql.Eq(tsql.Name("i.object_id"), tsql.Func("OBJECT_ID", tsql.Param(TableParam))),
			tsql.Eq(tsql.Name("ic.is_included_column"), tsql.Int(0)),
		),
		OrderBy: []tsql.Order{{Expr: tsql.Name("i.name")}, {Expr: tsql.Name("ic.key_ordinal")}},
	}
	return tsql.ToStatement(q, ir.ShapeMultiple, tableParam(table))
}

// CommonColumns intersects the columns of every table by name and type,
// treating the narrow character types as their Unicode counterparts. Rows
// scan into CommonColumnRow.
func (w *Writer) CommonColumns(tables ...string) (ir.Statement, error) {
	q, err := commonColumns(tables)
	if err != nil {
		return ir.Statement{}, err
	}
	return tsql.ToStatement(q, ir.ShapeMultiple)
}

// UnionColumns is CommonColumns over the tables a union query reads.
func (w *Writer) UnionColumns(sel *ir.Select) (ir.Statement, error) {
	return w.CommonColumns(ir.UnionTables(sel)...)
}

// CreateTableColumns describes the columns shared by every source table of
// sel as they are declared on the first one. Rows scan into ColumnRow.
func (w *Writer) CreateTableColumns(sel *ir.Select) (ir.Statement, error) {
	sources := ir.UnionTables(sel)
	common, err := commonColumns(sources)
	if err != nil {
		return ir.Statement{}, err
	}
	joins := append([]tsql.Join{{
		Source: tsql.Table{Source: tsql.Name("sys.columns"), Alias: "c"},
		On:     tsql.And(tsql.Eq(tsql.Name("q.name"), tsql.Name("c.name")), tsql.Eq(tsql.Name("c.object_id"), objectID(sources[0]))),
	}}, columnJoins()...)
	q := tsql.Select{
		Columns: columnProjection(),
		From:    tsql.SubQuery(common, "q"),
		Joins:   joins,
		OrderBy: []tsql.Order{{Expr: tsql.Name("c.column_id")}},
	}
	return tsql.ToStatement(q, ir.ShapeMultiple)
}

// SelectIntoColumns lists the columns shared by the sources of sel and its
// target, flagging those whose target type is narrower than the widest
// source type or whose target declaration is shorter than the longest source
// declaration. Rows scan into SelectIntoColumn.
func (w *Writer) SelectIntoColumns(sel *ir.Select) (ir.Statement, error) {
	if sel == nil || sel.Target == "" {
		return ir.Statement{}, fmt.Errorf("select into: no target table")
	}
	sources := ir.UnionTables(sel)
	common, err := commonColumns(append(append([]string{}, sources...), sel.Target))
	if err != nil {
		return ir.Statement{}, err
	}

	sourceIDs := make([]tsql.Node, len(sources))
	for i, s := range sources {
		sourceIDs[i] = objectID(s)
	}
	typeIDs := make([]tsql.Node, len(stringTypeIDs))
	for i, id := range stringTypeIDs {
		typeIDs[i] = tsql.Int(int64(id))
	}
	sourceMax := func(expr tsql.Node) tsql.Node {
		return tsql.Paren(tsql.Select{
			Columns: []tsql.Node{tsql.Func("MAX", expr)},
			From:    tsql.Table{Source: tsql.Name("sys.columns"), Alias: "s"},
			Where: tsql.And(
				tsql.Eq(tsql.Name("s.name"), tsql.Name("q.name")),
				tsql.In(tsql.Name("s.system_type_id"), typeIDs...),
				tsql.In(tsql.Name("s.object_id"), sourceIDs...),
			),
		})
	}
	// An ANSI target fed by a Unicode source has a lower type id than the
	// source, even when the lengths match.
	narrowing := tsql.Case{
		Whens: []tsql.When{{
			Cond: tsql.Or(
				tsql.Binary(tsql.Name("c.system_type_id"), "<", sourceMax(tsql.Name("s.system_type_id"))),
				tsql.Binary(characterLength("c"), "<", sourceMax(characterLength("s"))),
			),
			Then: tsql.Int(1),
		}},
		Else: tsql.Int(0),
	}
	q := tsql.Select{
		Columns: []tsql.Node{
			tsql.As(tsql.Name("q.name"), "Name"),
			tsql.As(tsql.Cast(narrowing, ir.ScalarBool), "NarrowingConversion"),
		},
		From: tsql.SubQuery(common, "q"),
		Joins: []tsql.Join{{
			Source: tsql.Table{Source: tsql.Name("sys.columns"), Alias: "c"},
			On:     tsql.And(tsql.Eq(tsql.Name("q.name"), tsql.Name("c.name")), tsql.Eq(tsql.Name("c.object_id"), objectID(sel.Target))),
		}},
	}
	return tsql.ToStatement(q, ir.ShapeMultiple)
}

func tableParam(table string) ir.Param {
	return ir.Param{Name: TableParam, Value: ir.String(tsql.QuoteIdentifier(table))}
}

func commonColumns(tables []string) (tsql.Node, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("common columns: no tables")
	}
	queries := make([]tsql.Node, len(tables))
	for i, t := range tables {
		queries[i] = tsql.Select{
			Columns: []tsql.Node{
				tsql.Name("name"),
				tsql.As(unicodeTypeID("system_type_id"), "system_type_id"),
				tsql.As(unicodeTypeID("user_type_id"), "user_type_id"),
			},
			From:  tsql.Name("sys.columns"),
			Where: tsql.Eq(tsql.Name("object_id"), objectID(t)),
		}
	}
	return tsql.Intersect(queries...), nil
}

// unicodeTypeID maps varchar, char and text ids to nvarchar, nchar and ntext
// so that the two families compare equal.
func unicodeTypeID(column string) tsql.Node {
	return tsql.Case{
		Subject: tsql.Name(column),
		Whens: []tsql.When{
			{Cond: tsql.Int(int64(tsql.TypeVarChar)), Then: tsql.Int(int64(tsql.TypeNVarChar))},
			{Cond: tsql.Int(int64(tsql.TypeChar)), Then: tsql.Int(int64(tsql.TypeNChar))},
			{Cond: tsql.Int(int64(tsql.TypeText)), Then: tsql.Int(int64(tsql.TypeNText))},
		},
		Else: tsql.Name(column),
	}
}

// characterLength converts max_length of the aliased sys.columns row to
// characters. MAX and the legacy text types count as unbounded.
func characterLength(alias string) tsql.Node {
	col := func(n string) tsql.Node { return tsql.Name(alias + "." + n) }
	return tsql.Case{
		Whens: []tsql.When{
			{
				Cond: tsql.Or(
					tsql.Eq(col("max_length"), tsql.Int(-1)),
					tsql.In(col("system_type_id"), tsql.Int(int64(tsql.TypeText)), tsql.Int(int64(tsql.TypeNText))),
				),
				Then: tsql.Int(2147483647),
			},
			{
				Cond: tsql.In(col("system_type_id"), tsql.Int(int64(tsql.TypeNChar)), tsql.Int(int64(tsql.TypeNVarChar))),
				Then: tsql.Binary(col("max_length"), "/", tsql.Int(2)),
			},
		},
		Else: col("max_length"),
	}
}

// columnProjection selects the ColumnRow fields from sys.columns aliased c
// and the joins of columnJoins.
func columnProjection() []tsql.Node {
	flag := func(cond tsql.Node) tsql.Node {
		return tsql.Cast(tsql.Case{Whens: []tsql.When{{Cond: cond, Then: tsql.Int(1)}}, Else: tsql.Int(0)}, ir.ScalarBool)
	}
	return []tsql.Node{
		tsql.As(tsql.Name("c.name"), "Name"),
		tsql.As(tsql.Name("c.system_type_id"), "SystemTypeId"),
		tsql.As(tsql.Name("t.name"), "TypeName"),
		tsql.As(tsql.Name("c.max_length"), "MaxLength"),
		tsql.As(tsql.Name("c.precision"), "Precision"),
		tsql.As(tsql.Name("c.scale"), "Scale"),
		tsql.As(tsql.Name("c.is_nullable"), "IsNullable"),
		tsql.As(tsql.Name("c.is_identity"), "IsIdentity"),
		tsql.As(flag(tsql.Binary(tsql.Name("pk.column_id"), "IS NOT", tsql.Null())), "IsPrimaryKey"),
		tsql.As(flag(tsql.Eq(tsql.Name("pk.type"), tsql.Int(1))), "IsClustered"),
		tsql.As(tsql.Name("d.definition"), "DefaultDefinition"),
		tsql.As(tsql.Name("cc.definition"), "ComputedDefinition"),
		tsql.As(flag(tsql.Eq(tsql.Name("cc.is_persisted"), tsql.Int(1))), "IsPersisted"),
	}
}

func columnJoins() []tsql.Join {
	primaryKeys := tsql.Select{
		Columns: []tsql.Node{tsql.Name("ic.object_id"), tsql.Name("ic.column_id"), tsql.Name("i.type")},
		From:    tsql.Table{Source: tsql.Name("sys.index_columns"), Alias: "ic"},
		Joins: []tsql.Join{{
			Source: tsql.Table{Source: tsql.Name("sys.indexes"), Alias: "i"},
			On:     tsql.And(tsql.Eq(tsql.Name("i.object_id"), tsql.Name("ic.object_id")), tsql.Eq(tsql.Name("i.index_id"), tsql.Name("ic.index_id"))),
		}},
		Where: tsql.Eq(tsql.Name("i.is_primary_key"), tsql.Int(1)),
	}
	return []tsql.Join{
		{
			Source: tsql.Table{Source: tsql.Name("sys.types"), Alias: "t"},
			On:     tsql.Eq(tsql.Name("t.user_type_id"), tsql.Name("c.user_type_id")),
		},
		{
			Left:   true,
			Source: tsql.SubQuery(primaryKeys, "pk"),
			On:     tsql.And(tsql.Eq(tsql.Name("pk.object_id"), tsql.Name("c.object_id")), tsql.Eq(tsql.Name("pk.column_id"), tsql.Name("c.column_id"))),
		},
		{
			Left:   true,
			Source: tsql.Table{Source: tsql.Name("sys.default_constraints"), Alias: "d"},
			On:     tsql.Eq(tsql.Name("d.object_id"), tsql.Name("c.default_object_id")),
		},
		{
			Left:   true,
			Source: tsql.Table{Source: tsql.Name("sys.computed_columns"), Alias: "cc"},
			On:     tsql.And(tsql.Eq(tsql.Name("cc.object_id"), tsql.Name("c.object_id")), tsql.Eq(tsql.Name("cc.column_id"), tsql.Name("c.column_id"))),
		},
	}
}
