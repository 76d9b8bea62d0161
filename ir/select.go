package ir

// Select is the subset of a translated query that the schema factories need:
// where rows come from and where they go. It is produced by the query
// translation layer and treated as opaque otherwise.
type Select struct {
	Source Source
	Target string
}

// Source is either a single table or a union of sub-queries.
type Source struct {
	Table   string
	Queries []*Select
}

// UnionTables flattens a union tree into the table names it reads from, in
// depth-first order.
func UnionTables(sel *Select) []string {
	if sel == nil {
		return nil
	}
	if sel.Source.Table != "" {
		return []string{sel.Source.Table}
	}
	var tables []string
	for _, q := range sel.Source.Queries {
		tables = append(tables, UnionTables(q)...)
	}
	return tables
}
