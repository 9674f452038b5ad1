package diagfmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrettyExcerpt(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 0, PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"tool.pl:2:1: PARTIAL PRT2002: nested interpolation [FunctionCall]",
		" 2 | print \"@{[ $x ]}\";",
		"  | ^~~~~",
		"note: tool.pl:2:7: kept as a comment",
		"tool.pl:1:1: CONVERTED NRM5006: missing-import: added import re [Variable]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour codes with Color off:\n%s", out)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	if !strings.Contains(buf.String(), " 1 | my $x = 1;") {
		t.Fatalf("context line missing:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true, Context: -1, PathMode: PathModeBasename})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("no colour codes with Color on:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), " | ") {
		t.Fatalf("excerpt printed with negative context:\n%s", buf.String())
	}
}

func TestPathModes(t *testing.T) {
	fs, bag := sampleBag(t)
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/tmp/project/bin/tool.pl:2:1"},
		{PathModeRelative, "bin/tool.pl:2:1"},
		{PathModeBasename, "tool.pl:2:1"},
		{PathModeAuto, "/tmp/project/bin/tool.pl:2:1"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, Context: -1})
		if !strings.Contains(buf.String(), tt.want) {
			t.Fatalf("mode %d: want %q in:\n%s", tt.mode, tt.want, buf.String())
		}
	}
}

func TestShort(t *testing.T) {
	fs, bag := sampleBag(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs); err != nil {
		t.Fatalf("Short: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "partial PRT2002 bin/tool.pl:2:1 (FunctionCall)") {
		t.Fatalf("short output:\n%s", buf.String())
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdef", 4); got != "a..." {
		t.Fatalf("clip = %q", got)
	}
	if got := clip("abcdef", 0); got != "abcdef" {
		t.Fatalf("clip without width = %q", got)
	}
}
