package color

import (
	"fmt"
	"os"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Bold   = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor honours NO_COLOR (https://no-color.org/) and dumb
// terminals.
func shouldEnableColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// Enabled reports whether output is colored.
func (c *Color) Enabled() bool {
	return c.enabled
}

func (c *Color) wrap(code, text string) string {
	if !c.enabled {
		return text
	}
	return code + text + Reset
}

// Add colors a string to indicate additions (green, like Terraform)
func (c *Color) Add(text string) string { return c.wrap(Green, text) }

// Destroy colors a string to indicate deletions (red, like Terraform)
func (c *Color) Destroy(text string) string { return c.wrap(Red, text) }

// Warn colors prompts and warnings yellow.
func (c *Color) Warn(text string) string { return c.wrap(Yellow, text) }

// Bold makes text bold
func (c *Color) Bold(text string) string { return c.wrap(Bold, text) }

// Cyan colors text cyan (for headers and labels)
func (c *Color) Cyan(text string) string { return c.wrap(Cyan, text) }

// PlanSymbol returns the appropriate symbol for plan operations
func (c *Color) PlanSymbol(operation string) string {
	switch operation {
	case "add", "create":
		return c.Add("+")
	case "destroy", "drop", "delete":
		return c.Destroy("-")
	default:
		return " "
	}
}

// FormatSummaryLine formats the count for one object type
func (c *Color) FormatSummaryLine(objectType string, added int) string {
	return fmt.Sprintf("  %s: %s", objectType, c.Add(fmt.Sprintf("%d to add", added)))
}

// FormatPlanHeader formats the main plan header
func (c *Color) FormatPlanHeader(added int) string {
	return fmt.Sprintf("Plan: %s.", c.Add(fmt.Sprintf("%d to add", added)))
}
