package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestInfoOptionalFields(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := Info(false); got != "perl2py 1.2.3\n" {
		t.Fatalf("Info = %q", got)
	}

	GitCommit, BuildDate = "abc123", "2024-01-15T10:30:00Z"
	got := Info(false)
	if !strings.Contains(got, "commit: abc123\n") || !strings.Contains(got, "built:  2024-01-15T10:30:00Z\n") {
		t.Fatalf("Info = %q", got)
	}
}

func TestColoredKeepsText(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	Version = "2.0.1-rc1"
	color.NoColor = true
	if got := Colored(); got != "2.0.1-rc1" {
		t.Fatalf("Colored without colour = %q", got)
	}
	color.NoColor = false
	if got := Colored(); !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("Colored = %q", got)
	}
}
