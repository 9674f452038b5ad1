package diag

import (
	"testing"

	"perl2py/internal/construct"
	"perl2py/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.pl", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevUnrecognized,
			Code:     UnrConstruct,
			Kind:     construct.Unrecognized,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevPartial,
			Code:     PrtFallback,
			Kind:     construct.Variable,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "unrecognized UNR3001 testdata/golden/sample.pl:1:1 (Unrecognized) first line second\n" +
		"note UNR3001 testdata/golden/sample.pl:2:1 note line\n" +
		"partial PRT2001 testdata/golden/sample.pl:2:1 (Variable) another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
