package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("match")
	tm.End(idx, "12 constructs")
	tm.End(7, "ignored")
	rep := tm.Report()
	if len(rep.Phases) != 1 || rep.Phases[0].Note != "12 constructs" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if !strings.Contains(tm.Summary(), "// 12 constructs") {
		t.Fatalf("summary lacks note:\n%s", tm.Summary())
	}
}

func TestReportAdd(t *testing.T) {
	var total Report
	total.Add(Report{TotalMS: 3, Phases: []PhaseReport{{Name: "match", DurationMS: 1}, {Name: "translate", DurationMS: 2}}})
	total.Add(Report{TotalMS: 4, Phases: []PhaseReport{{Name: "translate", DurationMS: 3}, {Name: "verify", DurationMS: 1, Note: "x"}}})
	if total.TotalMS != 7 {
		t.Fatalf("total = %v", total.TotalMS)
	}
	want := []PhaseReport{{Name: "match", DurationMS: 1}, {Name: "translate", DurationMS: 5}, {Name: "verify", DurationMS: 1}}
	if len(total.Phases) != len(want) {
		t.Fatalf("phases = %+v", total.Phases)
	}
	for i := range want {
		if total.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, total.Phases[i], want[i])
		}
	}
}
