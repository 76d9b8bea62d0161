package schema

import (
	"database/sql"
	"fmt"

	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// Scanner is satisfied by *sql.Rows and *sql.Row.
type Scanner interface {
	Scan(dest ...any) error
}

// ColumnRow is one row of GetColumns or CreateTableColumns.
type ColumnRow struct {
	Name               string
	SystemTypeID       int
	TypeName           string
	MaxLength          int
	Precision          int
	Scale              int
	IsNullable         bool
	IsIdentity         bool
	IsPrimaryKey       bool
	IsClustered        bool
	DefaultDefinition  sql.NullString
	ComputedDefinition sql.NullString
	IsPersisted        bool
}

// ScanColumnRow reads the current row in projection order.
func ScanColumnRow(s Scanner) (ColumnRow, error) {
	var r ColumnRow
	err := s.Scan(
		&r.Name, &r.SystemTypeID, &r.TypeName, &r.MaxLength, &r.Precision, &r.Scale,
		&r.IsNullable, &r.IsIdentity, &r.IsPrimaryKey, &r.IsClustered,
		&r.DefaultDefinition, &r.ComputedDefinition, &r.IsPersisted,
	)
	return r, err
}

// BuildColumn turns a catalog row into a column. Identity columns and
// columns whose default calls a generator known to the dialect are reported
// as auto-generated without a default; any other default is kept as an
// expression with the catalog's outer parentheses removed.
func (w *Writer) BuildColumn(r ColumnRow) (ir.Column, error) {
	id := tsql.TypeID(r.SystemTypeID)
	typ, err := tsql.TypeFromID(id, r.IsNullable)
	if err != nil {
		return ir.Column{}, fmt.Errorf("column %s: %w", r.Name, err)
	}

	c := ir.Column{
		Name:           r.Name,
		Type:           typ.Scalar,
		NativeTypeName: r.TypeName,
		IsNullable:     r.IsNullable,
		IsIdentity:     r.IsIdentity,
	}
	switch typ.Scalar {
	case ir.ScalarString, ir.ScalarBytes:
		c.Length = tsql.CharacterLength(id, r.MaxLength)
	case ir.ScalarDecimal:
		c.Precision = r.Precision
		c.Scale = r.Scale
	}
	if r.IsPrimaryKey {
		c.Key = ir.KeyPrimary
		if r.IsClustered {
			c.Key = ir.KeyClusteredPrimary
		}
	}

	switch {
	case r.IsIdentity:
		c.IsAutoGenerated = true
	case r.DefaultDefinition.Valid && w.dialect.IsGenerator(r.DefaultDefinition.String):
		c.IsAutoGenerated = true
	case r.DefaultDefinition.Valid:
		c.DefaultValue = ir.Expression(tsql.StripDefault(r.DefaultDefinition.String)).Ptr()
	}

	if r.ComputedDefinition.Valid {
		c.Computation = &ir.Computation{
			Expression:  tsql.StripDefault(r.ComputedDefinition.String),
			IsPersisted: r.IsPersisted,
		}
	}
	return c, nil
}

// IndexRow is one (index, key column) row of GetIndexes.
type IndexRow struct {
	IndexName    string
	IsClustered  bool
	IsUnique     bool
	IsPrimaryKey bool
	ColumnName   string
	IsDescending bool
}

// ScanIndexRow reads the current row in projection order.
func ScanIndexRow(s Scanner) (IndexRow, error) {
	var r IndexRow
	err := s.Scan(&r.IndexName, &r.IsClustered, &r.IsUnique, &r.IsPrimaryKey, &r.ColumnName, &r.IsDescending)
	return r, err
}

// FoldIndexes groups consecutive rows sharing an index name into one index,
// keeping row order for both indexes and their columns.
func FoldIndexes(rows []IndexRow) []ir.Index {
	var indexes []ir.Index
	for _, r := range rows {
		if n := len(indexes); n == 0 || indexes[n-1].Name != r.IndexName {
			indexes = append(indexes, ir.Index{
				Name:         r.IndexName,
				IsClustered:  r.IsClustered,
				IsUnique:     r.IsUnique,
				IsPrimaryKey: r.IsPrimaryKey,
			})
		}
		last := &indexes[len(indexes)-1]
		last.Columns = append(last.Columns, ir.IndexColumn{Name: r.ColumnName, IsDescending: r.IsDescending})
	}
	return indexes
}

// CommonColumnRow is one row of CommonColumns.
type CommonColumnRow struct {
	Name         string
	SystemTypeID int
	UserTypeID   int
}

// ScanCommonColumnRow reads the current row in projection order.
func ScanCommonColumnRow(s Scanner) (CommonColumnRow, error) {
	var r CommonColumnRow
	err := s.Scan(&r.Name, &r.SystemTypeID, &r.UserTypeID)
	return r, err
}

// SelectIntoColumn is one row of SelectIntoColumns.
type SelectIntoColumn struct {
	Name                string `json:"name" yaml:"name"`
	NarrowingConversion bool   `json:"narrowing_conversion" yaml:"narrowing_conversion"`
}

// ScanSelectIntoColumn reads the current row in projection order.
func ScanSelectIntoColumn(s Scanner) (SelectIntoColumn, error) {
	var r SelectIntoColumn
	err := s.Scan(&r.Name, &r.NarrowingConversion)
	return r, err
}
