package tsql

import (
	"github.com/alexmaris/gribble/ir"
)

// Node is an element of a statement tree. The set of node types is closed;
// every node knows how to write itself during Render.
type Node interface {
	render(r *renderer) error
}

type (
	keyword  string
	ident    []string
	name     string
	raw      string
	param    string
	literal  ir.Value
	seq      []Node
	list     []Node
	paren    struct{ inner Node }
	function struct {
		name string
		args []Node
	}
	binary struct {
		left  Node
		op    string
		right Node
	}
	conjunction struct {
		op    string
		terms []Node
	}
	cast struct {
		expr Node
		typ  ir.ScalarType
	}
	alias struct {
		expr Node
		as   string
	}
	subQuery struct {
		stmt Node
		as   string
	}
	guard struct {
		negate bool
		cond   Node
		body   Node
	}
	setOp struct {
		op      string
		queries []Node
	}
)

// Keyword emits reserved words verbatim.
func Keyword(kw string) Node { return keyword(kw) }

// Ident is a bracket-quoted identifier; several parts form a qualified name.
func Ident(parts ...string) Node { return ident(parts) }

// Name emits a trusted catalog name or alias such as sys.columns or c.name
// without quoting.
func Name(n string) Node { return name(n) }

// Raw emits SQL text verbatim.
func Raw(sql string) Node { return raw(sql) }

// Param references a statement parameter as @name.
func Param(n string) Node { return param(n) }

// Literal renders a scalar value as a T-SQL literal.
func Literal(v ir.Value) Node { return literal(v) }

// String is a Unicode string literal.
func String(s string) Node { return literal(ir.String(s)) }

// Int is an integer literal.
func Int(i int64) Node { return literal(ir.Int(i)) }

// Bool renders as the bit literal 1 or 0.
func Bool(b bool) Node { return literal(ir.Bool(b)) }

// Null is the NULL literal.
func Null() Node { return literal(ir.Null()) }

// Seq joins nodes with single spaces. Nil nodes are skipped, so optional
// clauses can be passed inline.
func Seq(nodes ...Node) Node { return seq(nodes) }

// List joins nodes with commas.
func List(nodes ...Node) Node { return list(nodes) }

// Paren wraps a node in parentheses.
func Paren(n Node) Node { return paren{inner: n} }

// Func renders a function call.
func Func(n string, args ...Node) Node { return function{name: n, args: args} }

// Binary renders left op right.
func Binary(left Node, op string, right Node) Node {
	return binary{left: left, op: op, right: right}
}

// Eq renders left = right.
func Eq(left, right Node) Node { return Binary(left, "=", right) }

// And joins predicates with AND.
func And(terms ...Node) Node { return conjunction{op: "AND", terms: terms} }

// Or joins predicates with OR.
func Or(terms ...Node) Node { return conjunction{op: "OR", terms: terms} }

// In renders expr IN (values...).
func In(expr Node, values ...Node) Node {
	return Binary(expr, "IN", Paren(List(values...)))
}

// Cast renders CAST(expr AS <native type>) using the type catalog.
func Cast(expr Node, t ir.ScalarType) Node { return cast{expr: expr, typ: t} }

// As renders expr AS [alias].
func As(expr Node, a string) Node { return alias{expr: expr, as: a} }

// SubQuery parenthesizes a statement and names it.
func SubQuery(stmt Node, as string) Node { return subQuery{stmt: stmt, as: as} }

// Exists renders EXISTS (query).
func Exists(query Node) Node { return Seq(Keyword("EXISTS"), Paren(query)) }

// IfExists runs body only when cond returns a row.
func IfExists(cond, body Node) Node { return guard{cond: cond, body: body} }

// IfNotExists runs body only when cond returns no row.
func IfNotExists(cond, body Node) Node { return guard{negate: true, cond: cond, body: body} }

// Intersect combines queries with INTERSECT.
func Intersect(queries ...Node) Node { return setOp{op: "INTERSECT", queries: queries} }

// When is one arm of a CASE expression.
type When struct {
	Cond Node
	Then Node
}

// Case is a simple CASE when Subject is set, a searched CASE otherwise.
type Case struct {
	Subject Node
	Whens   []When
	Else    Node
}

// Join is one JOIN clause of a Select.
type Join struct {
	Left   bool
	Source Node
	On     Node
}

// Order is one ORDER BY term.
type Order struct {
	Expr Node
	Desc bool
}

// Select is a structured SELECT statement.
type Select struct {
	Top     int
	Columns []Node
	From    Node
	Joins   []Join
	Where   Node
	OrderBy []Order
}

// Table is a catalog or user table reference with an optional alias.
type Table struct {
	Source Node
	Alias  string
}

// CreateTable renders CREATE TABLE name (definitions...).
type CreateTable struct {
	Name        string
	Definitions []Node
}

// AlterTable renders ALTER TABLE name action.
type AlterTable struct {
	Name   string
	Action Node
}

// Drop renders DROP <object> name [ON table].
type Drop struct {
	Object string
	Name   string
	On     string
}

// CreateIndex renders CREATE NONCLUSTERED INDEX.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []ir.IndexColumn
}

// Exec renders a stored procedure call passing every parameter by name.
type Exec struct {
	Procedure string
	Params    []string
}
