package tsql

import "strings"

// QuoteIdentifier wraps an identifier in brackets. A closing bracket inside
// the name is doubled, which is the only escape T-SQL delimited identifiers
// have.
func QuoteIdentifier(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

// QuoteQualified quotes each part and joins them with dots.
func QuoteQualified(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, QuoteIdentifier(p))
	}
	return strings.Join(quoted, ".")
}

// QuoteString renders a Unicode string literal.
func QuoteString(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// UnquoteIdentifier removes one level of bracket or double-quote delimiters.
func UnquoteIdentifier(identifier string) string {
	n := len(identifier)
	if n >= 2 {
		switch {
		case identifier[0] == '[' && identifier[n-1] == ']':
			return strings.ReplaceAll(identifier[1:n-1], "]]", "]")
		case identifier[0] == '"' && identifier[n-1] == '"':
			return strings.ReplaceAll(identifier[1:n-1], `""`, `"`)
		}
	}
	return identifier
}
