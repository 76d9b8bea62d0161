// Package tsql is the SQL Server vocabulary of gribble: the bidirectional
// type catalog, identifier and literal quoting, the generator-default pattern
// table and a statement tree that renders to T-SQL text.
//
// Statements are built as trees and rendered in a separate pass:
//
//	stmt := tsql.IfExists(
//	    tsql.Select{Columns: []tsql.Node{tsql.Raw("*")}, From: tsql.Name("sys.tables"),
//	        Where: tsql.Eq(tsql.Name("object_id"), tsql.Func("OBJECT_ID", tsql.String("[Users]")))},
//	    tsql.Drop{Object: "TABLE", Name: "Users"},
//	)
//	text, err := tsql.Render(stmt)
package tsql
