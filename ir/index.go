package ir

// Index represents a table index as read back from the catalog.
type Index struct {
	Name         string        `json:"name" yaml:"name"`
	IsClustered  bool          `json:"is_clustered" yaml:"is_clustered"`
	IsUnique     bool          `json:"is_unique" yaml:"is_unique"`
	IsPrimaryKey bool          `json:"is_primary_key" yaml:"is_primary_key"`
	Columns      []IndexColumn `json:"columns" yaml:"columns"`
}

// IndexColumn is one key column of an index, in key order.
type IndexColumn struct {
	Name         string `json:"name" yaml:"name"`
	IsDescending bool   `json:"is_descending,omitempty" yaml:"is_descending,omitempty"`
}

// ColumnNames returns the key column names in key order.
func (i Index) ColumnNames() []string {
	names := make([]string, len(i.Columns))
	for n, c := range i.Columns {
		names[n] = c.Name
	}
	return names
}
