package tsql

import (
	"strings"

	"github.com/alexmaris/gribble/ir"
)

// BatchSeparator delimits independently executed batches in a script.
const BatchSeparator = "\r\nGO\r\n"

// Dialect holds the backend-specific vocabulary that is not part of the
// type catalog: which default expressions are backend generators.
type Dialect struct {
	// Generators maps a lower-case function name to whether a default
	// calling it is considered auto-generated.
	Generators map[string]bool
}

// SQLServer is the default dialect.
var SQLServer = Dialect{
	Generators: map[string]bool{
		"getdate":           true,
		"getutcdate":        true,
		"sysdatetime":       true,
		"sysutcdatetime":    true,
		"sysdatetimeoffset": true,
		"current_timestamp": true,
		"newid":             true,
		"newsequentialid":   true,
	},
}

// IsGenerator reports whether a catalog default definition such as
// "(getdate())" calls a recognized generator function and nothing else.
func (d Dialect) IsGenerator(definition string) bool {
	expr := strings.TrimSpace(definition)
	for {
		inner, ok := stripParens(expr)
		if !ok {
			break
		}
		expr = strings.TrimSpace(inner)
	}
	fn := strings.ToLower(expr)
	if open := strings.IndexByte(fn, '('); open >= 0 {
		if strings.TrimSpace(fn[open:]) != "()" {
			return false
		}
		fn = strings.TrimSpace(fn[:open])
	}
	return d.Generators[fn]
}

// GeneratorFor picks the generator default used when a column is declared
// auto-generated without being an identity.
func (d Dialect) GeneratorFor(t ir.ScalarType, primaryKey bool) (string, bool) {
	switch t {
	case ir.ScalarUUID:
		if primaryKey {
			return "NEWSEQUENTIALID()", true
		}
		return "NEWID()", true
	case ir.ScalarDateTime:
		return "GETDATE()", true
	case ir.ScalarDateTimeOffset:
		return "SYSDATETIMEOFFSET()", true
	default:
		return "", false
	}
}

// StripDefault removes the single layer of parentheses the catalog wraps
// around a stored default definition.
func StripDefault(definition string) string {
	expr := strings.TrimSpace(definition)
	if inner, ok := stripParens(expr); ok {
		return inner
	}
	return expr
}

// stripParens removes one pair of parentheses when the opening one matches
// the closing one at the end of s.
func stripParens(s string) (string, bool) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s, false
	}
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s, false
			}
		}
	}
	return s[1 : len(s)-1], true
}
