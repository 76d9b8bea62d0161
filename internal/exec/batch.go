package exec

import (
	"strings"

	"github.com/alexmaris/gribble/internal/tsql"
)

// SplitBatches splits a script on the exact CR LF GO CR LF separator.
// Blank fragments are dropped. A script with no non-blank fragment is
// returned whole as a single batch rather than rejected.
func SplitBatches(script string) []string {
	var batches []string
	for _, fragment := range strings.Split(script, tsql.BatchSeparator) {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		batches = append(batches, fragment)
	}
	if len(batches) == 0 {
		return []string{script}
	}
	return batches
}
