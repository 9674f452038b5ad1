// Package testkit holds invariant checks shared by tests and fuzzers.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"perl2py/internal/matcher"
	"perl2py/internal/source"
)

// CheckMatchInvariants runs the structural checks on a matcher result:
// 1) matches tile the whole content in order
// 2) every match line lies inside the unit (or just past its last newline)
// 3) pair links stay in range and never point at the match itself
// 4) problem spans lie inside the content
func CheckMatchInvariants(res *matcher.Result, sf *source.File) error {
	if res == nil || sf == nil {
		return fmt.Errorf("nil result or file")
	}
	if err := matcher.Verify(res.Matches, len(sf.Content)); err != nil {
		return err
	}
	lines, err := safecast.Conv[uint32](sf.LineCount())
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}
	for i, m := range res.Matches {
		if m.Span.File != sf.ID {
			return fmt.Errorf("match %d points to different file id: got=%d want=%d", i, m.Span.File, sf.ID)
		}
		// хвостовые trivia после последнего \n живут на строке lines+1
		if m.Line < 1 || m.Line > lines+1 {
			return fmt.Errorf("match %d line %d outside 1..%d", i, m.Line, lines+1)
		}
		if m.Pair == i || m.Pair >= len(res.Matches) || m.Pair < -1 {
			return fmt.Errorf("match %d has bad pair %d", i, m.Pair)
		}
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	for i, p := range res.Problems {
		if p.Primary.End < p.Primary.Start || p.Primary.End > size {
			return fmt.Errorf("problem %d span %s beyond content (%d bytes)", i, p.Primary, size)
		}
	}
	return nil
}
