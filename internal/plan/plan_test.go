package plan

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/alexmaris/gribble/internal/diff"
	"github.com/alexmaris/gribble/internal/fingerprint"
	"github.com/alexmaris/gribble/internal/schema"
	"github.com/alexmaris/gribble/internal/tsql"
	"github.com/alexmaris/gribble/ir"
)

func buildPlan(t *testing.T, d *diff.TableDiff) *Plan {
	t.Helper()
	steps, err := diff.GenerateSteps(d, schema.NewWriter(tsql.SQLServer))
	if err != nil {
		t.Fatalf("GenerateSteps failed: %v", err)
	}
	return NewPlan(d, steps)
}

func additivePlan(t *testing.T) *Plan {
	existing := []ir.Column{
		ir.NewColumn("Id", ir.ScalarInt32, ir.Identity(), ir.WithKey(ir.KeyPrimary)),
		ir.NewColumn("Name", ir.ScalarString, ir.WithLength(500)),
	}
	desired := append(existing, ir.NewColumn("Created", ir.ScalarDateTime))
	d := diff.Diff("Users", existing, nil, desired, [][]string{{"Name"}})
	return buildPlan(t, d)
}

func TestPlan_NoChanges(t *testing.T) {
	p := buildPlan(t, &diff.TableDiff{Table: "Users"})

	if p.HasChanges() {
		t.Error("HasChanges() = true for an empty diff")
	}
	if got := p.HumanColored(false); got != "No changes detected for table Users.\n" {
		t.Errorf("HumanColored() = %q", got)
	}
	if got := p.ToSQL(); got != "" {
		t.Errorf("ToSQL() = %q; want empty", got)
	}

	out, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(out, `"steps": []`) {
		t.Errorf("ToJSON() should render empty steps as an array:\n%s", out)
	}
}

func TestPlan_HumanColored(t *testing.T) {
	got := additivePlan(t).HumanColored(false)

	expected := []string{
		"Plan: 2 to add.",
		"Summary by type:",
		"  columns: 1 to add",
		"  indexes: 1 to add",
		"Columns:\n  + Users.Created",
		"Indexes:\n  + Users.IX_Users_Name",
		"DDL to be executed:",
		"ALTER TABLE [Users] ADD [Created] DATETIME NOT NULL",
		"CREATE NONCLUSTERED INDEX [IX_Users_Name] ON [Users] ([Name] ASC)",
	}
	for _, want := range expected {
		if !strings.Contains(got, want) {
			t.Errorf("HumanColored() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Tables:") {
		t.Errorf("HumanColored() lists tables for an existing table:\n%s", got)
	}
	if strings.Contains(got, "\033[") {
		t.Errorf("HumanColored(false) contains escape codes:\n%s", got)
	}
}

func TestPlan_HumanColored_Enabled(t *testing.T) {
	got := additivePlan(t).HumanColored(true)
	if !strings.Contains(got, "\033[32m+\033[0m") {
		t.Errorf("HumanColored(true) should color the add symbol:\n%s", got)
	}
}

func TestPlan_NewTable(t *testing.T) {
	d := diff.NewTable("Orders", []ir.Column{
		ir.NewColumn("Id", ir.ScalarUUID, ir.AutoGenerated(), ir.WithKey(ir.KeyPrimary)),
		ir.NewColumn("Total", ir.ScalarDecimal),
	}, [][]string{{"Total"}})
	p := buildPlan(t, d)

	if len(p.Steps) != 2 {
		t.Fatalf("len(Steps) = %d; want 2", len(p.Steps))
	}
	if p.Steps[0].ObjectType != diff.ObjectTable || p.Steps[0].ObjectPath != "Orders" {
		t.Errorf("first step = %+v; want the table", p.Steps[0])
	}
	if !strings.Contains(p.HumanColored(false), "Tables:\n  + Orders") {
		t.Errorf("HumanColored() should list the new table:\n%s", p.HumanColored(false))
	}
}

func TestPlan_ToJSON(t *testing.T) {
	out, err := additivePlan(t).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded PlanJSON
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("ToJSON produced invalid JSON: %v", err)
	}
	if decoded.Version != "1.0.0" {
		t.Errorf("Version = %q; want 1.0.0", decoded.Version)
	}
	if decoded.GribbleVersion == "" {
		t.Error("GribbleVersion is empty")
	}
	if decoded.Table != "Users" {
		t.Errorf("Table = %q; want Users", decoded.Table)
	}
	if decoded.Summary.Add != 2 || decoded.Summary.Total != 2 {
		t.Errorf("Summary = %+v; want 2 to add of 2", decoded.Summary)
	}
	if decoded.Summary.ByType["column"] != 1 || decoded.Summary.ByType["index"] != 1 {
		t.Errorf("Summary.ByType = %v", decoded.Summary.ByType)
	}
	if len(decoded.Steps) != 2 || decoded.Steps[0].ObjectPath != "Users.Created" {
		t.Errorf("Steps = %+v", decoded.Steps)
	}
}

func TestPlan_ToJSON_SourceFingerprint(t *testing.T) {
	p := additivePlan(t)
	out, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if strings.Contains(out, "source_fingerprint") {
		t.Errorf("ToJSON() without a fingerprint should omit it:\n%s", out)
	}

	p.SourceFingerprint = &fingerprint.TableFingerprint{Hash: "abc123"}
	out, err = p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var decoded PlanJSON
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("ToJSON produced invalid JSON: %v", err)
	}
	if decoded.Source == nil || decoded.Source.Hash != "abc123" {
		t.Errorf("Source = %+v; want hash abc123", decoded.Source)
	}
}

func TestPlan_ToSQL(t *testing.T) {
	got := additivePlan(t).ToSQL()
	expected := "ALTER TABLE [Users] ADD [Created] DATETIME NOT NULL" +
		"\r\nGO\r\n" +
		"CREATE NONCLUSTERED INDEX [IX_Users_Name] ON [Users] ([Name] ASC)\r\n"
	if got != expected {
		t.Errorf("ToSQL() = %q; want %q", got, expected)
	}
}
