package util

import (
	"strings"

	"github.com/alexmaris/gribble/internal/tsql"
)

// TableName accepts a table flag as typed, so that "[Order Details]" and
// "Order Details" name the same table.
func TableName(flag string) string {
	return tsql.UnquoteIdentifier(strings.TrimSpace(flag))
}
