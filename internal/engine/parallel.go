package engine

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"perl2py/internal/rules"
	"perl2py/internal/source"
	"perl2py/internal/trace"
)

// Outcome pairs a unit with its conversion. Err is set only for a unit that
// failed structurally; Result is nil then.
type Outcome struct {
	Unit   *source.File
	Result *Result
	Err    error
}

// TranslateAll converts independent units concurrently, at most jobs at a
// time (GOMAXPROCS when jobs <= 0). Outcomes are in input order and equal
// what sequential Translate calls produce. A structural failure fails only
// its own unit; the returned error is the context's.
func TranslateAll(ctx context.Context, units []*source.File, table *rules.Table, jobs int) ([]Outcome, error) {
	out := make([]Outcome, len(units))
	if len(units) == 0 {
		return out, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "translate-all", trace.ParentID(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, unit := range units {
		g.Go(func() error {
			res, err := Translate(gctx, unit, table)
			if err != nil && !errors.Is(err, ErrStructural) {
				return err
			}
			// индекс i уникален, мьютекс не нужен
			out[i] = Outcome{Unit: unit, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
