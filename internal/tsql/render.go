package tsql

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/alexmaris/gribble/ir"
)

// UTC times render without a zone, others with their offset.
const (
	timeLayout       = "2006-01-02T15:04:05.000"
	timeOffsetLayout = timeLayout + "-07:00"
)

type renderer struct {
	b strings.Builder
}

func (r *renderer) write(s string) { r.b.WriteString(s) }

func (r *renderer) join(nodes []Node, sep string) error {
	first := true
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !first {
			r.write(sep)
		}
		if err := n.render(r); err != nil {
			return err
		}
		first = false
	}
	return nil
}

// Render writes a statement tree as SQL text. The only failure is a type the
// catalog cannot map.
func Render(n Node) (string, error) {
	r := &renderer{}
	if err := n.render(r); err != nil {
		return "", err
	}
	return r.b.String(), nil
}

// ToStatement renders n into a text statement with the given contract.
func ToStatement(n Node, shape ir.ResultShape, params ...ir.Param) (ir.Statement, error) {
	text, err := Render(n)
	if err != nil {
		return ir.Statement{}, err
	}
	return ir.NewStatement(text, shape, params...), nil
}

func (k keyword) render(r *renderer) error {
	r.write(string(k))
	return nil
}

func (n name) render(r *renderer) error {
	r.write(string(n))
	return nil
}

func (s raw) render(r *renderer) error {
	r.write(string(s))
	return nil
}

func (p param) render(r *renderer) error {
	r.write("@" + string(p))
	return nil
}

func (i ident) render(r *renderer) error {
	r.write(QuoteQualified(i...))
	return nil
}

func (l literal) render(r *renderer) error {
	r.write(FormatLiteral(ir.Value(l)))
	return nil
}

// FormatLiteral renders v as a T-SQL literal. Expressions pass through.
func FormatLiteral(v ir.Value) string {
	switch v.Kind() {
	case ir.ValueBool:
		if v.AsBool() {
			return "1"
		}
		return "0"
	case ir.ValueInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case ir.ValueFloat:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case ir.ValueString:
		return QuoteString(v.AsString())
	case ir.ValueBytes:
		return "0x" + strings.ToUpper(hex.EncodeToString(v.AsBytes()))
	case ir.ValueTime:
		t := v.AsTime()
		if t.Location() == time.UTC {
			return "'" + t.Format(timeLayout) + "'"
		}
		return "'" + t.Format(timeOffsetLayout) + "'"
	case ir.ValueUUID:
		return "'" + v.AsUUID().String() + "'"
	case ir.ValueExpression:
		return v.AsString()
	default:
		return "NULL"
	}
}

func (s seq) render(r *renderer) error { return r.join(s, " ") }

func (l list) render(r *renderer) error { return r.join(l, ", ") }

func (p paren) render(r *renderer) error {
	r.write("(")
	if err := p.inner.render(r); err != nil {
		return err
	}
	r.write(")")
	return nil
}

func (f function) render(r *renderer) error {
	r.write(f.name + "(")
	if err := r.join(f.args, ", "); err != nil {
		return err
	}
	r.write(")")
	return nil
}

func (b binary) render(r *renderer) error {
	return seq{b.left, keyword(b.op), b.right}.render(r)
}

func (c conjunction) render(r *renderer) error {
	return r.join(c.terms, " "+c.op+" ")
}

func (c cast) render(r *renderer) error {
	native, err := NativeName(c.typ, 0)
	if err != nil {
		return err
	}
	r.write("CAST(")
	if err := c.expr.render(r); err != nil {
		return err
	}
	r.write(" AS " + native + ")")
	return nil
}

func (a alias) render(r *renderer) error {
	return seq{a.expr, keyword("AS"), ident{a.as}}.render(r)
}

func (s subQuery) render(r *renderer) error {
	return seq{paren{s.stmt}, keyword("AS"), name(s.as)}.render(r)
}

func (g guard) render(r *renderer) error {
	kw := "IF EXISTS"
	if g.negate {
		kw = "IF NOT EXISTS"
	}
	return seq{keyword(kw), paren{g.cond}, keyword("BEGIN"), g.body, keyword("END")}.render(r)
}

func (s setOp) render(r *renderer) error {
	return r.join(s.queries, " "+s.op+" ")
}

func (c Case) render(r *renderer) error {
	parts := seq{keyword("CASE"), c.Subject}
	for _, w := range c.Whens {
		parts = append(parts, keyword("WHEN"), w.Cond, keyword("THEN"), w.Then)
	}
	if c.Else != nil {
		parts = append(parts, keyword("ELSE"), c.Else)
	}
	parts = append(parts, keyword("END"))
	return parts.render(r)
}

func (t Table) render(r *renderer) error {
	if t.Alias == "" {
		return t.Source.render(r)
	}
	return seq{t.Source, name(t.Alias)}.render(r)
}

func (s Select) render(r *renderer) error {
	parts := seq{keyword("SELECT")}
	if s.Top > 0 {
		parts = append(parts, keyword("TOP "+strconv.Itoa(s.Top)))
	}
	parts = append(parts, list(s.Columns))
	if s.From != nil {
		parts = append(parts, keyword("FROM"), s.From)
	}
	for _, j := range s.Joins {
		kw := "JOIN"
		if j.Left {
			kw = "LEFT JOIN"
		}
		parts = append(parts, keyword(kw), j.Source, keyword("ON"), j.On)
	}
	if s.Where != nil {
		parts = append(parts, keyword("WHERE"), s.Where)
	}
	if len(s.OrderBy) > 0 {
		terms := make(list, len(s.OrderBy))
		for i, o := range s.OrderBy {
			if o.Desc {
				terms[i] = seq{o.Expr, keyword("DESC")}
			} else {
				terms[i] = o.Expr
			}
		}
		parts = append(parts, keyword("ORDER BY"), terms)
	}
	return parts.render(r)
}

func (c CreateTable) render(r *renderer) error {
	return seq{keyword("CREATE TABLE"), ident{c.Name}, paren{list(c.Definitions)}}.render(r)
}

func (a AlterTable) render(r *renderer) error {
	return seq{keyword("ALTER TABLE"), ident{a.Name}, a.Action}.render(r)
}

func (d Drop) render(r *renderer) error {
	parts := seq{keyword("DROP " + d.Object), ident{d.Name}}
	if d.On != "" {
		parts = append(parts, keyword("ON"), ident{d.On})
	}
	return parts.render(r)
}

func (c CreateIndex) render(r *renderer) error {
	cols := make(list, len(c.Columns))
	for i, col := range c.Columns {
		dir := "ASC"
		if col.IsDescending {
			dir = "DESC"
		}
		cols[i] = seq{ident{col.Name}, keyword(dir)}
	}
	return seq{keyword("CREATE NONCLUSTERED INDEX"), ident{c.Name}, keyword("ON"), ident{c.Table}, paren{cols}}.render(r)
}

func (e Exec) render(r *renderer) error {
	parts := seq{keyword("EXEC"), ident{e.Procedure}}
	args := make(list, len(e.Params))
	for i, p := range e.Params {
		args[i] = binary{param(p), "=", param(p)}
	}
	if len(args) > 0 {
		parts = append(parts, args)
	}
	return parts.render(r)
}

// Procedure renders a stored procedure call passing params by name.
func Procedure(procedure string, shape ir.ResultShape, params ...ir.Param) (ir.Statement, error) {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	stmt, err := ToStatement(Exec{Procedure: procedure, Params: names}, shape, params...)
	if err != nil {
		return ir.Statement{}, err
	}
	stmt.Kind = ir.KindStoredProcedure
	return stmt, nil
}
