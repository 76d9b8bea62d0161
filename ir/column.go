package ir

import (
	"fmt"
	"strings"
)

// Key describes the primary-key role of a column.
type Key int

const (
	KeyNone Key = iota
	KeyPrimary
	KeyClusteredPrimary
)

func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyPrimary:
		return "primary"
	case KeyClusteredPrimary:
		return "clustered_primary"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// MarshalText encodes the key by name for JSON and YAML output.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a key name written by MarshalText.
func (k *Key) UnmarshalText(text []byte) error {
	for _, candidate := range []Key{KeyNone, KeyPrimary, KeyClusteredPrimary} {
		if strings.EqualFold(candidate.String(), string(text)) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown key %q", text)
}

// IsPrimary reports whether the column is part of the primary key, clustered
// or not.
func (k Key) IsPrimary() bool {
	return k == KeyPrimary || k == KeyClusteredPrimary
}

// Computation describes a computed column.
type Computation struct {
	Expression  string `json:"expression" yaml:"expression"`
	IsPersisted bool   `json:"is_persisted" yaml:"is_persisted"`
}

// Column represents a table column, either desired by the caller or read
// back from the catalog.
type Column struct {
	Name            string       `json:"name" yaml:"name"`
	Type            ScalarType   `json:"type" yaml:"type"`
	NativeTypeName  string       `json:"native_type_name,omitempty" yaml:"native_type_name,omitempty"`
	Length          int          `json:"length,omitempty" yaml:"length,omitempty"` // characters for strings, bytes otherwise; <= 0 means MAX
	IsNullable      bool         `json:"is_nullable" yaml:"is_nullable"`
	IsIdentity      bool         `json:"is_identity,omitempty" yaml:"is_identity,omitempty"`
	IsAutoGenerated bool         `json:"is_auto_generated,omitempty" yaml:"is_auto_generated,omitempty"`
	Key             Key          `json:"key" yaml:"key"`
	DefaultValue    *Value       `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Precision       int          `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale           int          `json:"scale,omitempty" yaml:"scale,omitempty"`
	Computation     *Computation `json:"computation,omitempty" yaml:"computation,omitempty"`
}

// ColumnOption configures a Column built by NewColumn.
type ColumnOption func(*Column)

// NewColumn creates a column of the given type. Options apply in order.
func NewColumn(name string, typ ScalarType, opts ...ColumnOption) Column {
	c := Column{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLength sets the declared length.
func WithLength(n int) ColumnOption {
	return func(c *Column) { c.Length = n }
}

// Nullable marks the column as admitting NULL.
func Nullable() ColumnOption {
	return func(c *Column) { c.IsNullable = true }
}

// Identity marks the column as a backend generated identity.
func Identity() ColumnOption {
	return func(c *Column) {
		c.IsIdentity = true
		c.IsAutoGenerated = true
	}
}

// AutoGenerated marks the column as populated by a backend generator default.
func AutoGenerated() ColumnOption {
	return func(c *Column) { c.IsAutoGenerated = true }
}

// WithKey sets the primary-key role.
func WithKey(k Key) ColumnOption {
	return func(c *Column) { c.Key = k }
}

// WithDefault sets an explicit default value.
func WithDefault(v Value) ColumnOption {
	return func(c *Column) { c.DefaultValue = v.Ptr() }
}

// WithPrecision sets numeric precision and scale.
func WithPrecision(precision, scale int) ColumnOption {
	return func(c *Column) {
		c.Precision = precision
		c.Scale = scale
	}
}

// Computed makes the column a computed column.
func Computed(expression string, persisted bool) ColumnOption {
	return func(c *Column) {
		c.Computation = &Computation{Expression: expression, IsPersisted: persisted}
	}
}

// PrimaryKeyColumn returns the single column claiming key status, or false
// when zero or several columns do.
func PrimaryKeyColumn(columns []Column) (Column, bool) {
	var found Column
	n := 0
	for _, c := range columns {
		if c.Key.IsPrimary() {
			found = c
			n++
		}
	}
	return found, n == 1
}
