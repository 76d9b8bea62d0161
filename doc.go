// Package gribble generates and runs SQL Server schema statements: table,
// column and index DDL, catalog introspection, and an additive synchronizer
// that brings a table in line with a desired set of columns and indexes.
//
// A Database wraps any *sql.DB, *sql.Tx or *sql.Conn opened with the
// sqlserver driver:
//
//	db := gribble.New(conn)
//	err := db.AddMissingColumns(ctx, "Users",
//	    ir.NewColumn("Created", ir.ScalarDateTime, ir.AutoGenerated()),
//	)
//
// Nothing runs inside an implicit transaction. Pass a *sql.Tx to New when
// several operations must succeed or fail together.
package gribble
