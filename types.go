package gribble

import (
	"github.com/alexmaris/gribble/internal/exec"
	"github.com/alexmaris/gribble/internal/plan"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// Re-export important types for external consumption

// ExecQuerier is the connection a Database runs on: *sql.DB, *sql.Tx or *sql.Conn.
type ExecQuerier = exec.ExecQuerier

// RowFunc scans one row of a query result.
type RowFunc = exec.RowFunc

// Plan is the set of statements that brings a table in line with a model.
type Plan = plan.Plan

// Dialect holds the generator-default table used for column defaults.
type Dialect = tsql.Dialect

// UnmappedTypeError is returned for a type the catalog cannot translate.
type UnmappedTypeError = tsql.UnmappedTypeError

// CommonColumn is a column shared by several tables.
type CommonColumn = schema.CommonColumnRow

// SelectIntoColumn is a column copied by a SELECT INTO, flagged when the
// copy could truncate.
type SelectIntoColumn = schema.SelectIntoColumn

// Column represents a table column.
type Column = ir.Column

// Index represents a table index.
type Index = ir.Index

// Param is a named statement parameter.
type Param = ir.Param

var (
	// ErrNoResult is returned when a statement that must yield a row does not.
	ErrNoResult = exec.ErrNoResult
	// ErrMultipleResults is returned when a statement yields more rows than
	// its shape allows.
	ErrMultipleResults = exec.ErrMultipleResults
)

// SQLServer is the default dialect.
var SQLServer = tsql.SQLServer

// BatchSeparator delimits the batches of a script.
const BatchSeparator = tsql.BatchSeparator
