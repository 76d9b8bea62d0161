package sync

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

// Model is a desired table shape read from a YAML file:
//
//	columns:
//	  - name: Id
//	    type: int32
//	    identity: true
//	    key: clustered_primary
//	  - name: Email
//	    type: string
//	    length: 320
//	    nullable: true
//	  - name: Code
//	    sql_type: varchar(12)
//	indexes:
//	  - [Email]
type Model struct {
	Columns []ModelColumn `yaml:"columns"`
	Indexes [][]string    `yaml:"indexes"`
}

// ModelColumn is one column of a Model. Default and Computed are T-SQL
// expressions. SQLType is a native type name that sets Type, and Length when
// Length is not given.
type ModelColumn struct {
	Name          string        `yaml:"name"`
	Type          ir.ScalarType `yaml:"type"`
	SQLType       string        `yaml:"sql_type"`
	Length        int           `yaml:"length"`
	Nullable      bool          `yaml:"nullable"`
	Identity      bool          `yaml:"identity"`
	AutoGenerated bool          `yaml:"auto_generated"`
	Key           ir.Key        `yaml:"key"`
	Default       string        `yaml:"default"`
	Precision     int           `yaml:"precision"`
	Scale         int           `yaml:"scale"`
	Computed      string        `yaml:"computed"`
	Persisted     bool          `yaml:"persisted"`
}

// LoadModel reads and validates a model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a model document.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("model declares no columns")
	}
	for i, c := range m.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("model column %d has no name", i+1)
		}
		if c.SQLType != "" {
			t, err := tsql.TypeFromName(c.SQLType, c.Nullable)
			if err != nil {
				return nil, fmt.Errorf("model column %s: %w", c.Name, err)
			}
			c.Type = t.Scalar
			if c.Length == 0 {
				c.Length = tsql.ParseLength(c.SQLType)
			}
			m.Columns[i] = c
		}
		if c.Type == ir.ScalarInvalid && c.Computed == "" {
			return nil, fmt.Errorf("model column %s has no type", c.Name)
		}
	}
	for i, set := range m.Indexes {
		if len(set) == 0 {
			return nil, fmt.Errorf("model index %d has no columns", i+1)
		}
	}
	return &m, nil
}

// ColumnList converts the model columns in declaration order.
func (m *Model) ColumnList() []ir.Column {
	columns := make([]ir.Column, len(m.Columns))
	for i, c := range m.Columns {
		columns[i] = c.Column()
	}
	return columns
}

// Column converts a model column.
func (c ModelColumn) Column() ir.Column {
	opts := []ir.ColumnOption{ir.WithLength(c.Length), ir.WithKey(c.Key), ir.WithPrecision(c.Precision, c.Scale)}
	if c.Nullable {
		opts = append(opts, ir.Nullable())
	}
	if c.Identity {
		opts = append(opts, ir.Identity())
	}
	if c.AutoGenerated {
		opts = append(opts, ir.AutoGenerated())
	}
	if c.Default != "" {
		opts = append(opts, ir.WithDefault(ir.Expression(c.Default)))
	}
	if c.Computed != "" {
		opts = append(opts, ir.Computed(c.Computed, c.Persisted))
	}
	return ir.NewColumn(c.Name, c.Type, opts...)
}
