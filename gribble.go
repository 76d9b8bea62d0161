package gribble

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/exec"
	"github.com/alexmaris/gribble/internal/fingerprint"
	"github.com/alexmaris/gribble/internal/logger"
	"github.com/alexmaris/gribble/internal/plan"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// Database runs schema statements against one connection, transaction or
// pool. It does not own the connection and never begins a transaction.
type Database struct {
	runner *exec.Runner
	writer *schema.Writer
	logger *slog.Logger
}

// Option configures a Database.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	dialect tsql.Dialect
}

// WithLogger sets the logger executed statements are written to at debug
// level. The global logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDialect replaces the generator-default table used when reading and
// writing column defaults.
func WithDialect(d tsql.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// New creates a Database over db, which is usually a *sql.DB or *sql.Tx.
func New(db ExecQuerier, opts ...Option) *Database {
	o := options{dialect: tsql.SQLServer}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	return &Database{
		runner: exec.NewRunner(db, o.logger),
		writer: schema.NewWriter(o.dialect),
		logger: o.logger,
	}
}

// ========== TABLES ==========

// CreateTable creates a table with the given columns.
func (d *Database) CreateTable(ctx context.Context, table string, columns ...ir.Column) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.CreateTable(table, columns...) })
}

// DeleteTable drops the table if it exists.
func (d *Database) DeleteTable(ctx context.Context, table string) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.DeleteTable(table) })
}

// TableExists reports whether the table exists.
func (d *Database) TableExists(ctx context.Context, table string) (bool, error) {
	return d.exists(ctx, func() (ir.Statement, error) { return d.writer.TableExists(table) })
}

// ========== COLUMNS ==========

// GetColumns returns the columns of a table in declaration order. A missing
// table has no columns.
func (d *Database) GetColumns(ctx context.Context, table string) ([]ir.Column, error) {
	stmt, err := d.writer.GetColumns(table)
	if err != nil {
		return nil, err
	}
	columns, err := d.queryColumns(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", table, err)
	}
	return columns, nil
}

// AddColumn adds one column to an existing table.
func (d *Database) AddColumn(ctx context.Context, table string, column ir.Column) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.AddColumn(table, column) })
}

// RemoveColumn drops the column if it exists.
func (d *Database) RemoveColumn(ctx context.Context, table, column string) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.RemoveColumn(table, column) })
}

// ColumnExists reports whether the table has the column.
func (d *Database) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return d.exists(ctx, func() (ir.Statement, error) { return d.writer.ColumnExists(table, column) })
}

// ========== INDEXES ==========

// GetIndexes returns the keyed indexes of a table ordered by name.
func (d *Database) GetIndexes(ctx context.Context, table string) ([]ir.Index, error) {
	stmt, err := d.writer.GetIndexes(table)
	if err != nil {
		return nil, err
	}
	var rows []schema.IndexRow
	err = d.runner.Query(ctx, stmt, func(r *sql.Rows) error {
		row, err := schema.ScanIndexRow(r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes of %s: %w", table, err)
	}
	return schema.FoldIndexes(rows), nil
}

// AddNonClusteredIndex creates an ascending non-clustered index named
// IX_<table>_<columns>.
func (d *Database) AddNonClusteredIndex(ctx context.Context, table string, columns ...string) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.AddNonClusteredIndex(table, columns...) })
}

// RemoveNonClusteredIndex drops the index if it exists.
func (d *Database) RemoveNonClusteredIndex(ctx context.Context, table, index string) error {
	return d.execute(ctx, func() (ir.Statement, error) { return d.writer.RemoveNonClusteredIndex(table, index) })
}

// IndexExists reports whether the table has an index with this name.
func (d *Database) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return d.exists(ctx, func() (ir.Statement, error) { return d.writer.IndexExists(table, index) })
}

// ========== MULTI-TABLE COLUMNS ==========

// CommonColumns returns the columns every table declares with the same name
// and compatible type.
func (d *Database) CommonColumns(ctx context.Context, tables ...string) ([]CommonColumn, error) {
	stmt, err := d.writer.CommonColumns(tables...)
	if err != nil {
		return nil, err
	}
	return d.queryCommonColumns(ctx, stmt)
}

// UnionColumns returns the columns common to every table a union reads.
func (d *Database) UnionColumns(ctx context.Context, sel *ir.Select) ([]CommonColumn, error) {
	stmt, err := d.writer.UnionColumns(sel)
	if err != nil {
		return nil, err
	}
	return d.queryCommonColumns(ctx, stmt)
}

// CreateTableColumns describes the columns a table built from sel would
// need, as declared on its first source table.
func (d *Database) CreateTableColumns(ctx context.Context, sel *ir.Select) ([]ir.Column, error) {
	stmt, err := d.writer.CreateTableColumns(sel)
	if err != nil {
		return nil, err
	}
	return d.queryColumns(ctx, stmt)
}

// SelectIntoColumns lists the columns copied from the sources of sel into
// its target and whether each copy could truncate.
func (d *Database) SelectIntoColumns(ctx context.Context, sel *ir.Select) ([]SelectIntoColumn, error) {
	stmt, err := d.writer.SelectIntoColumns(sel)
	if err != nil {
		return nil, err
	}
	var columns []SelectIntoColumn
	err = d.runner.Query(ctx, stmt, func(r *sql.Rows) error {
		c, err := schema.ScanSelectIntoColumn(r)
		if err != nil {
			return err
		}
		columns = append(columns, c)
		return nil
	})
	return columns, err
}

// ========== SCRIPTS & PROCEDURES ==========

// ExecuteScript runs each GO separated batch of script in order.
func (d *Database) ExecuteScript(ctx context.Context, script string, params ...ir.Param) (sql.Result, error) {
	return d.runner.ExecuteScript(ctx, script, params...)
}

// ScriptScalar runs the leading batches of script and scans the scalar
// result of the last one into dest.
func (d *Database) ScriptScalar(ctx context.Context, script string, dest any, params ...ir.Param) error {
	return d.runner.ScriptScalar(ctx, script, dest, params...)
}

// ScriptQuery runs the leading batches of script and passes each row of the
// last one to fn.
func (d *Database) ScriptQuery(ctx context.Context, script string, shape ir.ResultShape, fn RowFunc, params ...ir.Param) error {
	return d.runner.ScriptQuery(ctx, script, shape, fn, params...)
}

// CallProcedure executes a stored procedure, ignoring any rows it returns.
func (d *Database) CallProcedure(ctx context.Context, procedure string, params ...ir.Param) (sql.Result, error) {
	stmt, err := tsql.Procedure(procedure, ir.ShapeNone, params...)
	if err != nil {
		return nil, err
	}
	return d.runner.Exec(ctx, stmt)
}

// CallProcedureScalar executes a stored procedure and scans the first column
// of its first row into dest.
func (d *Database) CallProcedureScalar(ctx context.Context, procedure string, dest any, params ...ir.Param) error {
	stmt, err := tsql.Procedure(procedure, ir.ShapeScalar, params...)
	if err != nil {
		return err
	}
	return d.runner.Scalar(ctx, stmt, dest)
}

// CallProcedureQuery executes a stored procedure and passes each row to fn,
// enforcing shape.
func (d *Database) CallProcedureQuery(ctx context.Context, procedure string, shape ir.ResultShape, fn RowFunc, params ...ir.Param) error {
	stmt, err := tsql.Procedure(procedure, shape, params...)
	if err != nil {
		return err
	}
	return d.runner.Query(ctx, stmt, fn)
}

// ========== SYNCHRONIZATION ==========

// EnsureTableMatches creates target with the full column list of model and
// then recreates each non-clustered index of model on it. Clustered and
// primary-key indexes follow from the column definitions.
func (d *Database) EnsureTableMatches(ctx context.Context, target, model string) error {
	columns, err := d.GetColumns(ctx, model)
	if err != nil {
		return err
	}
	indexes, err := d.GetIndexes(ctx, model)
	if err != nil {
		return err
	}
	d.logger.Debug("Replicating table", "model", model, "target", target, "columns", len(columns), "indexes", len(indexes))

	tableDiff := diff.NewTable(target, columns, diff.IndexSets(diff.ReplicableIndexes(indexes)))
	return d.apply(ctx, tableDiff)
}

// AddMissingColumns adds, in the order given, every desired column whose
// name matches no existing column regardless of case. Existing columns are
// never altered.
func (d *Database) AddMissingColumns(ctx context.Context, table string, desired ...ir.Column) error {
	existing, err := d.GetColumns(ctx, table)
	if err != nil {
		return err
	}
	return d.apply(ctx, &diff.TableDiff{
		Table:        table,
		AddedColumns: diff.MissingColumns(existing, desired),
	})
}

// AddMissingIndexes creates a non-clustered index for each desired column
// set that no existing index covers. Sets are compared ignoring column order
// and sort direction.
func (d *Database) AddMissingIndexes(ctx context.Context, table string, desired ...[]string) error {
	existing, err := d.GetIndexes(ctx, table)
	if err != nil {
		return err
	}
	return d.apply(ctx, &diff.TableDiff{
		Table:        table,
		AddedIndexes: diff.MissingIndexes(existing, desired),
	})
}

// PlanTableSync computes, without executing anything, what AddMissingColumns
// and AddMissingIndexes would do, or the full creation when the table does
// not exist.
func (d *Database) PlanTableSync(ctx context.Context, table string, columns []ir.Column, indexSets [][]string) (*Plan, error) {
	exists, err := d.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}

	var (
		tableDiff       *diff.TableDiff
		existingColumns []ir.Column
		existingIndexes []ir.Index
	)
	if !exists {
		tableDiff = diff.NewTable(table, columns, indexSets)
	} else {
		existingColumns, err = d.GetColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		existingIndexes, err = d.GetIndexes(ctx, table)
		if err != nil {
			return nil, err
		}
		tableDiff = diff.Diff(table, existingColumns, existingIndexes, columns, indexSets)
	}

	steps, err := diff.GenerateSteps(tableDiff, d.writer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan for %s: %w", table, err)
	}
	source, err := fingerprint.ComputeFingerprint(existingColumns, existingIndexes)
	if err != nil {
		return nil, err
	}

	p := plan.NewPlan(tableDiff, steps)
	p.SourceFingerprint = source
	return p, nil
}

// VerifyPlan reads the table again and fails when its columns or indexes
// changed since p was computed. Plans without a fingerprint always pass.
func (d *Database) VerifyPlan(ctx context.Context, p *Plan) error {
	if p.SourceFingerprint == nil {
		return nil
	}
	table := p.Diff.Table
	columns, err := d.GetColumns(ctx, table)
	if err != nil {
		return err
	}
	indexes, err := d.GetIndexes(ctx, table)
	if err != nil {
		return err
	}
	current, err := fingerprint.ComputeFingerprint(columns, indexes)
	if err != nil {
		return err
	}
	if err := fingerprint.Compare(p.SourceFingerprint, current); err != nil {
		return fmt.Errorf("table %s changed since the plan was computed: %w", table, err)
	}
	return nil
}

// ApplyPlan executes the steps of p in order and stops at the first
// failure. Steps already executed stay applied.
func (d *Database) ApplyPlan(ctx context.Context, p *Plan) error {
	for i, step := range p.Steps {
		d.logger.Debug("Applying step", "step", i+1, "total", len(p.Steps), "object", step.ObjectPath)
		if _, err := d.runner.Exec(ctx, step.Statement); err != nil {
			return fmt.Errorf("failed to %s %s %s: %w", step.Operation, step.ObjectType, step.ObjectPath, err)
		}
	}
	return nil
}

// ScriptTable returns the plan that would recreate an existing table with
// its columns, primary key and non-clustered indexes.
func (d *Database) ScriptTable(ctx context.Context, table string) (*Plan, error) {
	columns, err := d.GetColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	indexes, err := d.GetIndexes(ctx, table)
	if err != nil {
		return nil, err
	}

	tableDiff := diff.NewTable(table, columns, diff.IndexSets(diff.ReplicableIndexes(indexes)))
	steps, err := diff.GenerateSteps(tableDiff, d.writer)
	if err != nil {
		return nil, fmt.Errorf("failed to script %s: %w", table, err)
	}
	return plan.NewPlan(tableDiff, steps), nil
}

// ========== PRIVATE METHODS ==========

func (d *Database) apply(ctx context.Context, tableDiff *diff.TableDiff) error {
	if tableDiff.IsEmpty() {
		d.logger.Debug("Table already matches", "table", tableDiff.Table)
		return nil
	}
	steps, err := diff.GenerateSteps(tableDiff, d.writer)
	if err != nil {
		return err
	}
	return d.ApplyPlan(ctx, plan.NewPlan(tableDiff, steps))
}

func (d *Database) execute(ctx context.Context, build func() (ir.Statement, error)) error {
	stmt, err := build()
	if err != nil {
		return err
	}
	_, err = d.runner.Exec(ctx, stmt)
	return err
}

func (d *Database) exists(ctx context.Context, build func() (ir.Statement, error)) (bool, error) {
	stmt, err := build()
	if err != nil {
		return false, err
	}
	var found bool
	if err := d.runner.Scalar(ctx, stmt, &found); err != nil {
		return false, err
	}
	return found, nil
}

func (d *Database) queryColumns(ctx context.Context, stmt ir.Statement) ([]ir.Column, error) {
	var columns []ir.Column
	err := d.runner.Query(ctx, stmt, func(r *sql.Rows) error {
		row, err := schema.ScanColumnRow(r)
		if err != nil {
			return err
		}
		c, err := d.writer.BuildColumn(row)
		if err != nil {
			return err
		}
		columns = append(columns, c)
		return nil
	})
	return columns, err
}

func (d *Database) queryCommonColumns(ctx context.Context, stmt ir.Statement) ([]CommonColumn, error) {
	var columns []CommonColumn
	err := d.runner.Query(ctx, stmt, func(r *sql.Rows) error {
		c, err := schema.ScanCommonColumnRow(r)
		if err != nil {
			return err
		}
		columns = append(columns, c)
		return nil
	})
	return columns, err
}
