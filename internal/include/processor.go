// Package include resolves sqlcmd :r directives so a script can be split
// across files.
package include

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// includeRegex matches ":r file" and ":r "file with spaces"" on a line of
// their own. The trailing \s* also swallows the CR of a CR LF line.
var includeRegex = regexp.MustCompile(`(?i)^\s*:r\s+(?:"([^"]+)"|(\S+))\s*$`)

// Processor handles processing script files with :r include directives
type Processor struct {
	baseDir string
	visited map[string]bool
}

// NewProcessor creates a new include processor for the given base directory
func NewProcessor(baseDir string) *Processor {
	return &Processor{
		baseDir: baseDir,
		visited: make(map[string]bool),
	}
}

// ProcessFile reads a script file and resolves all :r directives. Includes
// may not leave the directory of the top-level file.
func (p *Processor) ProcessFile(filename string) (string, error) {
	p.visited = make(map[string]bool)

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}
	p.baseDir = filepath.Dir(absPath)

	return p.processFileRecursive(absPath)
}

// ProcessContent resolves :r directives in a script that was not read from
// a file, such as standard input, relative to the base directory.
func (p *Processor) ProcessContent(content string) (string, error) {
	p.visited = make(map[string]bool)

	baseAbs, err := filepath.Abs(p.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute base path: %w", err)
	}
	p.baseDir = baseAbs

	return p.processIncludes(content, baseAbs)
}

func (p *Processor) processFileRecursive(filename string) (string, error) {
	if p.visited[filename] {
		return "", fmt.Errorf("circular include detected: %s", filename)
	}
	p.visited[filename] = true
	// the same file may still be included from a sibling branch
	defer delete(p.visited, filename)

	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	processed, err := p.processIncludes(string(content), filepath.Dir(filename))
	if err != nil {
		return "", fmt.Errorf("failed to process includes in %s: %w", filename, err)
	}
	return processed, nil
}

// processIncludes splits on LF only, so CR LF endings survive untouched.
func (p *Processor) processIncludes(content string, currentDir string) (string, error) {
	lines := strings.Split(content, "\n")
	var result strings.Builder

	for i, line := range lines {
		matches := includeRegex.FindStringSubmatch(line)
		if matches == nil {
			result.WriteString(line)
			if i < len(lines)-1 {
				result.WriteString("\n")
			}
			continue
		}

		includePath := matches[1]
		if includePath == "" {
			includePath = matches[2]
		}

		resolvedPath, err := p.resolveIncludePath(includePath, currentDir)
		if err != nil {
			return "", fmt.Errorf("line %d: failed to resolve include path %s: %w", i+1, includePath, err)
		}

		included, err := p.processFileRecursive(resolvedPath)
		if err != nil {
			return "", fmt.Errorf("line %d: failed to process included file %s: %w", i+1, resolvedPath, err)
		}

		result.WriteString(included)
		if !strings.HasSuffix(included, "\n") {
			if strings.HasSuffix(line, "\r") {
				result.WriteString("\r\n")
			} else {
				result.WriteString("\n")
			}
		}
	}

	return result.String(), nil
}

// resolveIncludePath resolves an include path relative to the current
// directory and keeps it inside the base directory.
func (p *Processor) resolveIncludePath(includePath string, currentDir string) (string, error) {
	cleanPath := filepath.Clean(includePath)
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("directory traversal not allowed: %s", includePath)
	}

	absPath := cleanPath
	if !filepath.IsAbs(cleanPath) {
		var err error
		absPath, err = filepath.Abs(filepath.Join(currentDir, cleanPath))
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	relPath, err := filepath.Rel(p.baseDir, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("include path %s is outside the base directory %s", includePath, p.baseDir)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("included file does not exist: %s", absPath)
	}

	return absPath, nil
}
