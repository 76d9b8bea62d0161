// Package ignore loads .gribbleignore, the list of column and index names a
// sync must never add.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/ir"
)

const (
	// IgnoreFileName is the default name of the ignore file
	IgnoreFileName = ".gribbleignore"
)

// Config holds glob patterns per object kind. Patterns support * and ?
// wildcards and negation with a leading !. Matching ignores case like the
// default SQL Server collation.
type Config struct {
	Columns []string
	Indexes []string
}

// tomlConfig represents the TOML structure of the ignore file
type tomlConfig struct {
	Columns patternConfig `toml:"columns,omitempty"`
	Indexes patternConfig `toml:"indexes,omitempty"`
}

type patternConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// LoadIgnoreFile loads the ignore file from the current directory.
// Returns nil if the file doesn't exist.
func LoadIgnoreFile() (*Config, error) {
	return LoadIgnoreFileFromPath(IgnoreFileName)
}

// LoadIgnoreFileFromPath loads an ignore file from the specified path.
// Returns nil if the file doesn't exist.
func LoadIgnoreFileFromPath(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var raw tomlConfig
	if _, err := toml.DecodeFile(filePath, &raw); err != nil {
		return nil, err
	}

	return &Config{
		Columns: raw.Columns.Patterns,
		Indexes: raw.Indexes.Patterns,
	}, nil
}

// ShouldIgnoreColumn checks if a column should be ignored based on the patterns
func (c *Config) ShouldIgnoreColumn(name string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(name, c.Columns)
}

// ShouldIgnoreIndex checks if the index sync would create for columns on
// table should be ignored. Patterns match the generated IX_ name.
func (c *Config) ShouldIgnoreIndex(table string, columns []string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(schema.IndexName(table, columns...), c.Indexes)
}

// Filter drops ignored columns and ignored index sets from a desired state.
// An index set that needs an ignored column is dropped with it.
func (c *Config) Filter(table string, columns []ir.Column, indexSets [][]string) ([]ir.Column, [][]string) {
	if c == nil {
		return columns, indexSets
	}

	var keptColumns []ir.Column
	for _, col := range columns {
		if !c.ShouldIgnoreColumn(col.Name) {
			keptColumns = append(keptColumns, col)
		}
	}

	var keptSets [][]string
	for _, set := range indexSets {
		if c.ShouldIgnoreIndex(table, set) || c.ignoresAnyColumn(set) {
			continue
		}
		keptSets = append(keptSets, set)
	}
	return keptColumns, keptSets
}

func (c *Config) ignoresAnyColumn(names []string) bool {
	for _, name := range names {
		if c.ShouldIgnoreColumn(name) {
			return true
		}
	}
	return false
}

// shouldIgnore reports whether name matches a pattern and no negation.
// Negation patterns take precedence over inclusion patterns.
func shouldIgnore(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern, name) {
			matched = true
			break
		}
	}

	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern[1:], name) {
			return false
		}
	}

	return matched
}

// matchPattern matches a glob-style pattern against a name, case-insensitively
func matchPattern(pattern, name string) bool {
	pattern, name = strings.ToLower(pattern), strings.ToLower(name)
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// an invalid pattern is a literal name
		return pattern == name
	}
	return matched
}
