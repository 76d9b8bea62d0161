package diff

import (
	"strings"

	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/ir"
)

// Object types and operations recorded on plan steps.
const (
	ObjectTable  = "table"
	ObjectColumn = "column"
	ObjectIndex  = "index"

	OperationCreate = "create"
)

// SQLContext provides context about the statement being generated
type SQLContext struct {
	ObjectType string // table, column or index
	Operation  string // only create; sync is additive
	ObjectPath string // "table", "table.column" or "table.index"
}

// PlanStep represents a single statement with the object it creates
type PlanStep struct {
	SQL        string       `json:"sql"`
	ObjectType string       `json:"object_type"`
	Operation  string       `json:"operation"`
	ObjectPath string       `json:"object_path"`
	Statement  ir.Statement `json:"-"`
}

// SQLCollector collects statements with their context information
type SQLCollector struct {
	steps []PlanStep
}

// NewSQLCollector creates a new SQLCollector
func NewSQLCollector() *SQLCollector {
	return &SQLCollector{
		steps: []PlanStep{},
	}
}

// Collect collects a statement with its context information
func (c *SQLCollector) Collect(context *SQLContext, stmt ir.Statement) {
	if context != nil {
		c.steps = append(c.steps, PlanStep{
			SQL:        strings.TrimSpace(stmt.Text),
			ObjectType: context.ObjectType,
			Operation:  context.Operation,
			ObjectPath: context.ObjectPath,
			Statement:  stmt,
		})
	}
}

// GetSteps returns all collected plan steps
func (c *SQLCollector) GetSteps() []PlanStep {
	return c.steps
}

// GenerateSteps renders the statements applying d in execution order: the
// table or its missing columns first, then the missing indexes.
func GenerateSteps(d *TableDiff, w *schema.Writer) ([]PlanStep, error) {
	c := NewSQLCollector()

	if d.CreateTable {
		stmt, err := w.CreateTable(d.Table, d.Columns...)
		if err != nil {
			return nil, err
		}
		c.Collect(&SQLContext{ObjectType: ObjectTable, Operation: OperationCreate, ObjectPath: d.Table}, stmt)
	}

	for _, col := range d.AddedColumns {
		stmt, err := w.AddColumn(d.Table, col)
		if err != nil {
			return nil, err
		}
		c.Collect(&SQLContext{
			ObjectType: ObjectColumn,
			Operation:  OperationCreate,
			ObjectPath: d.Table + "." + col.Name,
		}, stmt)
	}

	for _, cols := range d.AddedIndexes {
		stmt, err := w.AddNonClusteredIndex(d.Table, cols...)
		if err != nil {
			return nil, err
		}
		c.Collect(&SQLContext{
			ObjectType: ObjectIndex,
			Operation:  OperationCreate,
			ObjectPath: d.Table + "." + schema.IndexName(d.Table, cols...),
		}, stmt)
	}

	return c.GetSteps(), nil
}
