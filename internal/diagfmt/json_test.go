package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/source"
)

const sample = "my $x = 1;\nprint \"@{[ $x ]}\";\n"

func sampleBag(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/tmp/project/bin/tool.pl", []byte(sample))
	fs.SetBaseDir("/tmp/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevPartial, diag.PrtNestedInterpolation,
		source.Span{File: id, Start: 11, End: 16}, "nested interpolation").
		WithKind(construct.FunctionCall, 2).
		WithNote(source.Span{File: id, Start: 17, End: 26}, "kept as a comment"))
	bag.Add(diag.New(diag.SevConverted, diag.NrmImport,
		source.Span{File: id, Start: 0, End: 10}, "missing-import: added import re").
		WithKind(construct.Variable, 1))
	bag.Sort()
	return fs, bag
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || len(output.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", output.Count)
	}

	d := output.Diagnostics[1]
	if d.Severity != "PARTIAL" || d.Code != "PRT2002" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Kind != "FunctionCall" || d.Line != 2 {
		t.Fatalf("kind/line = %s/%d", d.Kind, d.Line)
	}
	if d.Location.File != "tool.pl" {
		t.Fatalf("file = %s", d.Location.File)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 1 {
		t.Fatalf("position = %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "kept as a comment" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs, bag := sampleBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeRelative, Max: 1})
	if out.Count != 1 {
		t.Fatalf("Max not applied: %d", out.Count)
	}
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Fatalf("positions leaked: %+v", loc)
	}
	if loc.File != "bin/tool.pl" {
		t.Fatalf("relative path = %s", loc.File)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatalf("notes included without IncludeNotes")
	}
}

func TestSarif(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "perl2py", ToolVersion: "0.1.0", InvocationArgs: []string{"check", "bin"}}); err != nil {
		t.Fatalf("Sarif() error: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 || run.Tool.Driver.Rules[0].ID != "PRT2002" {
		t.Fatalf("rules = %+v", run.Tool.Driver.Rules)
	}
	levels := map[string]string{}
	for _, r := range run.Results {
		levels[r.RuleID] = r.Level
	}
	if levels["PRT2002"] != "warning" || levels["NRM5006"] != "note" {
		t.Fatalf("levels = %v", levels)
	}
}
