package ir

import "fmt"

// StatementKind tells the execution boundary how to submit the text.
type StatementKind int

const (
	KindText StatementKind = iota
	KindStoredProcedure
)

func (k StatementKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStoredProcedure:
		return "stored_procedure"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// ResultShape is the row cardinality contract a statement declares to the
// loader.
type ResultShape int

const (
	// ShapeNone produces no rows.
	ShapeNone ResultShape = iota
	// ShapeScalar yields the first column of the first row.
	ShapeScalar
	// ShapeSingle requires exactly one row.
	ShapeSingle
	// ShapeSingleOrNone requires zero or one row.
	ShapeSingleOrNone
	// ShapeMultiple places no constraint on the row count.
	ShapeMultiple
)

func (s ResultShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeScalar:
		return "scalar"
	case ShapeSingle:
		return "single"
	case ShapeSingleOrNone:
		return "single_or_none"
	case ShapeMultiple:
		return "multiple"
	default:
		return fmt.Sprintf("ResultShape(%d)", int(s))
	}
}

// Param is a named statement parameter, referenced in the text as @Name.
type Param struct {
	Name  string
	Value Value
}

// Statement is rendered statement text plus the contract under which it is
// executed. Statements are values; factories never share them.
type Statement struct {
	Text   string
	Kind   StatementKind
	Shape  ResultShape
	Params []Param
}

// NewStatement creates a text statement.
func NewStatement(text string, shape ResultShape, params ...Param) Statement {
	return Statement{Text: text, Kind: KindText, Shape: shape, Params: params}
}

// WithShape returns a copy of s expecting a different result shape.
func (s Statement) WithShape(shape ResultShape) Statement {
	s.Shape = shape
	s.Params = append([]Param(nil), s.Params...)
	return s
}
