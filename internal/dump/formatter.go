// Package dump formats the creation statements of existing tables as a
// script that gribble exec can run back.
package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/internal/version"
)

const newline = "\r\n"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// TableDump is the ordered creation steps of one table
type TableDump struct {
	Table string
	Steps []diff.PlanStep
}

// DumpFormatter handles formatting SQL output for table dumps
type DumpFormatter struct {
	serverVersion string
}

// NewDumpFormatter creates a new DumpFormatter
func NewDumpFormatter(serverVersion string) *DumpFormatter {
	return &DumpFormatter{
		serverVersion: serverVersion,
	}
}

// FormatSingleFile formats every table into one script. Each statement is
// its own batch.
func (f *DumpFormatter) FormatSingleFile(tables []TableDump) string {
	var output strings.Builder
	output.WriteString(f.generateDumpHeader())

	var steps []diff.PlanStep
	for _, t := range tables {
		steps = append(steps, t.Steps...)
	}
	f.writeSteps(&output, steps)
	return output.String()
}

// FormatMultiFile writes one file per table under tables/ next to
// outputPath, and outputPath itself as a header plus :r includes.
func (f *DumpFormatter) FormatMultiFile(tables []TableDump, outputPath string) error {
	baseDir := filepath.Dir(outputPath)
	tablesDir := filepath.Join(baseDir, "tables")
	if err := os.MkdirAll(tablesDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", tablesDir, err)
	}

	var includes []string
	used := make(map[string]bool)
	for _, t := range tables {
		fileName := uniqueFileName(f.sanitizeFileName(t.Table), used) + ".sql"
		filePath := filepath.Join(tablesDir, fileName)

		var content strings.Builder
		f.writeSteps(&content, t.Steps)
		if err := os.WriteFile(filePath, []byte(content.String()), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", filePath, err)
		}

		// forward slashes keep the script portable
		includes = append(includes, ":r tables/"+fileName)
	}

	var main strings.Builder
	main.WriteString(f.generateDumpHeader())
	for _, include := range includes {
		main.WriteString(include + newline)
	}
	if err := os.WriteFile(outputPath, []byte(main.String()), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", outputPath, err)
	}
	return nil
}

// generateDumpHeader generates the header for table dumps with metadata
func (f *DumpFormatter) generateDumpHeader() string {
	var header strings.Builder

	header.WriteString("--" + newline)
	header.WriteString("-- gribble table dump" + newline)
	header.WriteString("--" + newline)
	header.WriteString(newline)

	fmt.Fprintf(&header, "-- Dumped from SQL Server version %s%s", f.serverVersion, newline)
	fmt.Fprintf(&header, "-- Dumped by gribble version %s%s", version.App(), newline)
	header.WriteString(newline)
	header.WriteString(newline)
	return header.String()
}

// writeSteps ends every batch with a blank line, so a multi-file dump read
// back through its includes equals the single-file dump.
func (f *DumpFormatter) writeSteps(output *strings.Builder, steps []diff.PlanStep) {
	for _, step := range steps {
		output.WriteString(f.formatObjectCommentHeader(step))
		output.WriteString(step.SQL)
		output.WriteString(tsql.BatchSeparator)
		output.WriteString(newline)
	}
}

// formatObjectCommentHeader generates the comment header for an object
func (f *DumpFormatter) formatObjectCommentHeader(step diff.PlanStep) string {
	table, name := splitObjectPath(step.ObjectPath)

	var output strings.Builder
	output.WriteString("--" + newline)
	fmt.Fprintf(&output, "-- Name: %s; Type: %s; Table: %s%s", name, strings.ToUpper(step.ObjectType), table, newline)
	output.WriteString("--" + newline)
	output.WriteString(newline)
	return output.String()
}

// splitObjectPath splits "table" or "table.object" into its table and the
// object's own name.
func splitObjectPath(path string) (table, name string) {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, path
}

// sanitizeFileName converts a table name to a valid filename
func (f *DumpFormatter) sanitizeFileName(name string) string {
	sanitized := unsafeFileChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "table"
	}
	return strings.ToLower(sanitized)
}

// uniqueFileName appends _2, _3, ... to base until it is not in used, and
// marks the result used. Distinct tables such as "Order Lines" and
// "Order_Lines" sanitize to the same base.
func uniqueFileName(base string, used map[string]bool) string {
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	used[name] = true
	return name
}
