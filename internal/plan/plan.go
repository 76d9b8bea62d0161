package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexmaris/gribble/internal/color"
	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/fingerprint"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/internal/version"
)

// Plan represents the statements that bring one table in line with a model
type Plan struct {
	// The underlying diff data
	Diff *diff.TableDiff `json:"diff"`

	// Steps in execution order
	Steps []diff.PlanStep `json:"steps"`

	// Plan metadata
	CreatedAt time.Time `json:"created_at"`

	// State of the table the plan was computed against
	SourceFingerprint *fingerprint.TableFingerprint `json:"source_fingerprint,omitempty"`
}

// PlanJSON represents the structured JSON output format
type PlanJSON struct {
	Version        string                        `json:"version"`
	GribbleVersion string                        `json:"gribble_version"`
	CreatedAt      time.Time                     `json:"created_at"`
	Table          string                        `json:"table"`
	Source         *fingerprint.TableFingerprint `json:"source_fingerprint,omitempty"`
	Summary        PlanSummary                   `json:"summary"`
	Steps          []diff.PlanStep               `json:"steps"`
}

// PlanSummary provides counts of changes by type
type PlanSummary struct {
	Add    int            `json:"add"`
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
}

// getObjectOrder returns the order object types are listed and applied in
func getObjectOrder() []string {
	return []string{diff.ObjectTable, diff.ObjectColumn, diff.ObjectIndex}
}

// ========== PUBLIC METHODS ==========

// NewPlan creates a new plan from a TableDiff and its rendered steps
func NewPlan(tableDiff *diff.TableDiff, steps []diff.PlanStep) *Plan {
	return &Plan{
		Diff:      tableDiff,
		Steps:     steps,
		CreatedAt: time.Now(),
	}
}

// HasChanges reports whether applying the plan would execute anything
func (p *Plan) HasChanges() bool {
	return len(p.Steps) > 0
}

// HumanColored returns a human-readable summary of the plan with color support
func (p *Plan) HumanColored(enableColor bool) string {
	c := color.New(enableColor)
	var summary strings.Builder

	planJSON := p.convertToStructuredJSON()

	if planJSON.Summary.Total == 0 {
		fmt.Fprintf(&summary, "No changes detected for table %s.\n", p.Diff.Table)
		return summary.String()
	}

	summary.WriteString(c.FormatPlanHeader(planJSON.Summary.Add) + "\n\n")

	summary.WriteString(c.Bold("Summary by type:") + "\n")
	for _, objType := range getObjectOrder() {
		if n := planJSON.Summary.ByType[objType]; n > 0 {
			summary.WriteString(c.FormatSummaryLine(pluralize(objType), n) + "\n")
		}
	}
	summary.WriteString("\n")

	for _, objType := range getObjectOrder() {
		if planJSON.Summary.ByType[objType] > 0 {
			p.writeDetailedChanges(&summary, objType, c)
		}
	}

	summary.WriteString(c.Bold("DDL to be executed:") + "\n")
	summary.WriteString(strings.Repeat("-", 50) + "\n\n")
	for _, step := range p.Steps {
		summary.WriteString(step.SQL + "\n")
	}

	return summary.String()
}

// ToJSON returns the plan as structured JSON
func (p *Plan) ToJSON() (string, error) {
	planJSON := p.convertToStructuredJSON()

	data, err := json.MarshalIndent(planJSON, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}

// ToSQL returns the statements as one script, separated so that it can be
// run batch by batch.
func (p *Plan) ToSQL() string {
	if !p.HasChanges() {
		return ""
	}
	stmts := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		stmts[i] = step.SQL
	}
	return strings.Join(stmts, tsql.BatchSeparator) + "\r\n"
}

// ========== PRIVATE METHODS ==========

// writeDetailedChanges lists the steps of one object type with symbols
func (p *Plan) writeDetailedChanges(summary *strings.Builder, objType string, c *color.Color) {
	displayName := pluralize(objType)
	displayName = strings.ToUpper(displayName[:1]) + displayName[1:]
	fmt.Fprintf(summary, "%s:\n", c.Bold(displayName))

	for _, step := range p.Steps {
		if step.ObjectType != objType {
			continue
		}
		fmt.Fprintf(summary, "  %s %s\n", c.PlanSymbol(step.Operation), step.ObjectPath)
	}

	summary.WriteString("\n")
}

// convertToStructuredJSON converts the plan to a structured JSON format
func (p *Plan) convertToStructuredJSON() *PlanJSON {
	planJSON := &PlanJSON{
		Version:        version.PlanFormat(),
		GribbleVersion: version.App(),
		CreatedAt:      p.CreatedAt.Truncate(time.Second),
		Table:          p.Diff.Table,
		Source:         p.SourceFingerprint,
		Summary: PlanSummary{
			ByType: make(map[string]int),
		},
		Steps: p.Steps,
	}
	if planJSON.Steps == nil {
		planJSON.Steps = []diff.PlanStep{}
	}

	for _, step := range p.Steps {
		if step.Operation == diff.OperationCreate {
			planJSON.Summary.Add++
		}
		planJSON.Summary.ByType[step.ObjectType]++
		planJSON.Summary.Total++
	}

	return planJSON
}

func pluralize(objType string) string {
	if strings.HasSuffix(objType, "x") {
		return strings.TrimSuffix(objType, "x") + "xes"
	}
	return objType + "s"
}
