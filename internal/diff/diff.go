// Package diff computes the additive difference between a table's live
// schema and a desired one. It never proposes altering or dropping
// anything that already exists.
package diff

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/alexmaris/gribble/ir"
)

// TableDiff is what has to be created for a table to match the desired
// columns and index column sets.
type TableDiff struct {
	Table string `json:"table"`
	// CreateTable is set when the table does not exist; Columns then holds
	// its full definition and AddedColumns is empty.
	CreateTable  bool        `json:"create_table,omitempty"`
	Columns      []ir.Column `json:"columns,omitempty"`
	AddedColumns []ir.Column `json:"added_columns,omitempty"`
	AddedIndexes [][]string  `json:"added_indexes,omitempty"`
}

// IsEmpty reports whether the table already matches.
func (d *TableDiff) IsEmpty() bool {
	return !d.CreateTable && len(d.AddedColumns) == 0 && len(d.AddedIndexes) == 0
}

// NewTable is the diff for a table that does not exist yet.
func NewTable(table string, columns []ir.Column, indexes [][]string) *TableDiff {
	return &TableDiff{
		Table:        table,
		CreateTable:  true,
		Columns:      columns,
		AddedIndexes: MissingIndexes(nil, indexes),
	}
}

// Diff compares an existing table with the desired columns and indexes.
func Diff(table string, existingColumns []ir.Column, existingIndexes []ir.Index, desiredColumns []ir.Column, desiredIndexes [][]string) *TableDiff {
	return &TableDiff{
		Table:        table,
		AddedColumns: MissingColumns(existingColumns, desiredColumns),
		AddedIndexes: MissingIndexes(existingIndexes, desiredIndexes),
	}
}

// MissingColumns returns the desired columns whose name matches no existing
// column, compared with Unicode case folding, in desired order. A name
// repeated in desired is returned once.
func MissingColumns(existing, desired []ir.Column) []ir.Column {
	fold := cases.Fold()
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[fold.String(c.Name)] = true
	}
	var missing []ir.Column
	for _, c := range desired {
		key := fold.String(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, c)
	}
	return missing
}

// MissingIndexes returns the desired column sets no existing index covers.
// Two sets match when they hold the same column names regardless of order
// and sort direction, so an index on (B, A DESC) satisfies {A, B}.
func MissingIndexes(existing []ir.Index, desired [][]string) [][]string {
	fold := cases.Fold()
	seen := make(map[string]bool, len(existing))
	for _, idx := range existing {
		seen[setKey(fold, idx.ColumnNames())] = true
	}
	var missing [][]string
	for _, cols := range desired {
		if len(cols) == 0 {
			continue
		}
		key := setKey(fold, cols)
		if seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, cols)
	}
	return missing
}

// ReplicableIndexes filters out clustered and primary key indexes, which
// come into being with the table's column definitions.
func ReplicableIndexes(indexes []ir.Index) []ir.Index {
	var out []ir.Index
	for _, idx := range indexes {
		if idx.IsClustered || idx.IsPrimaryKey {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// IndexSets returns the key column names of each index.
func IndexSets(indexes []ir.Index) [][]string {
	sets := make([][]string, len(indexes))
	for i, idx := range indexes {
		sets[i] = idx.ColumnNames()
	}
	return sets
}

func setKey(fold cases.Caser, names []string) string {
	folded := make([]string, 0, len(names))
	dedup := make(map[string]bool, len(names))
	for _, n := range names {
		f := fold.String(n)
		if dedup[f] {
			continue
		}
		dedup[f] = true
		folded = append(folded, f)
	}
	sort.Strings(folded)
	return strings.Join(folded, "\x00")
}
