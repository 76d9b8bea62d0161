// Package exec runs rendered statements against a database/sql connection
// and enforces their declared result shape.
package exec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexmaris/gribble/internal/logger"
	"github.com/alexmaris/gribble/ir"
)

var (
	// ErrNoResult is returned when a Single or Scalar statement yields no row.
	ErrNoResult = errors.New("statement returned no rows")
	// ErrMultipleResults is returned when a Single or SingleOrNone statement
	// yields more than one row.
	ErrMultipleResults = errors.New("statement returned more than one row")
)

// ExecQuerier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RowFunc is called once per returned row. It must scan the row and must
// not call Next.
type RowFunc func(rows *sql.Rows) error

// Runner executes statements. It does not own the connection and never
// begins transactions; pass a *sql.Tx to run inside one.
type Runner struct {
	db     ExecQuerier
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger falls back to the global one.
func NewRunner(db ExecQuerier, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.Get()
	}
	return &Runner{db: db, logger: log}
}

// Args converts statement parameters to named database/sql arguments.
func Args(params []ir.Param) []any {
	if len(params) == 0 {
		return nil
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name, p.Value.Any())
	}
	return args
}

// Exec runs a statement that returns no rows.
func (r *Runner) Exec(ctx context.Context, stmt ir.Statement) (sql.Result, error) {
	return r.exec(ctx, stmt.Text, stmt.Params)
}

// Scalar runs a statement and scans the first column of its first row into
// dest. Further rows are ignored.
func (r *Runner) Scalar(ctx context.Context, stmt ir.Statement, dest any) error {
	found := false
	err := r.query(ctx, stmt.Text, stmt.Params, ir.ShapeScalar, func(rows *sql.Rows) error {
		if found {
			return nil
		}
		found = true
		return scanFirst(rows, dest)
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNoResult
	}
	return nil
}

func scanFirst(rows *sql.Rows, dest any) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) <= 1 {
		return rows.Scan(dest)
	}
	targets := make([]any, len(cols))
	targets[0] = dest
	for i := 1; i < len(targets); i++ {
		targets[i] = new(any)
	}
	return rows.Scan(targets...)
}

// Query runs a statement and calls fn for each row, failing with
// ErrNoResult or ErrMultipleResults when the row count violates the
// statement's shape.
func (r *Runner) Query(ctx context.Context, stmt ir.Statement, fn RowFunc) error {
	return r.query(ctx, stmt.Text, stmt.Params, stmt.Shape, fn)
}

// ExecuteScript runs every batch of script in order without reading
// results. Params are passed to each batch.
func (r *Runner) ExecuteScript(ctx context.Context, script string, params ...ir.Param) (sql.Result, error) {
	batches := SplitBatches(script)
	if err := r.leading(ctx, batches, params); err != nil {
		return nil, err
	}
	return r.exec(ctx, batches[len(batches)-1], params)
}

// ScriptScalar runs all batches but the last as non-queries, then scans the
// scalar result of the last one into dest.
func (r *Runner) ScriptScalar(ctx context.Context, script string, dest any, params ...ir.Param) error {
	batches := SplitBatches(script)
	if err := r.leading(ctx, batches, params); err != nil {
		return err
	}
	return r.Scalar(ctx, ir.NewStatement(batches[len(batches)-1], ir.ShapeScalar, params...), dest)
}

// ScriptQuery runs all batches but the last as non-queries, then reads the
// rows of the last one with the given shape.
func (r *Runner) ScriptQuery(ctx context.Context, script string, shape ir.ResultShape, fn RowFunc, params ...ir.Param) error {
	batches := SplitBatches(script)
	if err := r.leading(ctx, batches, params); err != nil {
		return err
	}
	return r.query(ctx, batches[len(batches)-1], params, shape, fn)
}

func (r *Runner) leading(ctx context.Context, batches []string, params []ir.Param) error {
	for i, batch := range batches[:len(batches)-1] {
		if _, err := r.exec(ctx, batch, params); err != nil {
			return fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}
	}
	return nil
}

func (r *Runner) exec(ctx context.Context, text string, params []ir.Param) (sql.Result, error) {
	r.logger.Debug("Executing SQL", "sql", text, "params", len(params))
	result, err := r.db.ExecContext(ctx, text, Args(params)...)
	if err != nil {
		r.logger.Debug("SQL execution failed", "sql", text, "error", err)
		return nil, err
	}
	r.logger.Debug("SQL execution succeeded")
	return result, nil
}

func (r *Runner) query(ctx context.Context, text string, params []ir.Param, shape ir.ResultShape, fn RowFunc) error {
	r.logger.Debug("Executing query", "sql", text, "shape", shape, "params", len(params))
	rows, err := r.db.QueryContext(ctx, text, Args(params)...)
	if err != nil {
		r.logger.Debug("SQL query failed", "sql", text, "error", err)
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		if n > 1 && (shape == ir.ShapeSingle || shape == ir.ShapeSingleOrNone) {
			return ErrMultipleResults
		}
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if n == 0 && shape == ir.ShapeSingle {
		return ErrNoResult
	}
	r.logger.Debug("SQL query succeeded", "rows", n)
	return nil
}
