package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"perl2py/internal/cache"
	"perl2py/internal/diag"
	"perl2py/internal/engine"
	"perl2py/internal/observ"
	"perl2py/internal/rules"
	"perl2py/internal/source"
	"perl2py/internal/trace"
	"perl2py/internal/verify"
)

// Options configure a batch run.
type Options struct {
	// Jobs caps concurrent units; GOMAXPROCS when <= 0.
	Jobs int
	// OutDir receives the .py files; empty writes next to the inputs.
	OutDir string
	// DryRun converts and reports without writing anything.
	DryRun bool
	// Verify parses every output as Python.
	Verify bool
	// Cache, when set, is consulted before converting a unit.
	Cache *cache.Cache
	// Version keys cache entries together with the rule table.
	Version        string
	MaxDiagnostics int
	Observer       Observer
}

// UnitResult is the outcome of one input.
type UnitResult struct {
	Input   Input
	OutPath string
	FileID  source.FileID
	// Result is nil when the unit failed to load or failed structurally.
	Result *engine.Result
	// Bag holds every diagnostic of the unit, I/O problems included.
	Bag     *diag.Bag
	Cached  bool
	Written bool
	// Failed marks a unit with no usable conversion.
	Failed bool
	Timing observ.Report
}

// Status is the worst severity of the unit.
func (u *UnitResult) Status() diag.Severity {
	if u.Bag == nil {
		return diag.SevConverted
	}
	return u.Bag.MaxSeverity()
}

// Batch is the outcome of Run, units in input order.
type Batch struct {
	FileSet *source.FileSet
	Units   []UnitResult
	// Timing sums the phases of every unit.
	Timing observ.Report
}

// Failed counts units without a usable conversion.
func (b *Batch) Failed() int {
	n := 0
	for i := range b.Units {
		if b.Units[i].Failed {
			n++
		}
	}
	return n
}

// Diagnostics merges the bags of all units.
func (b *Batch) Diagnostics() *diag.Bag {
	out := diag.NewBag(0)
	for i := range b.Units {
		if b.Units[i].Bag != nil {
			out.Merge(b.Units[i].Bag)
		}
	}
	return out
}

// Run converts inputs with table. Per-unit problems (load failures,
// structural corruption, write errors) land in that unit's bag; the returned
// error is reserved for cancellation.
func Run(ctx context.Context, inputs []Input, table *rules.Table, opts Options) (*Batch, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	fileSet := source.NewFileSetWithBase(wd)
	batch := &Batch{FileSet: fileSet, Units: make([]UnitResult, len(inputs))}
	if len(inputs) == 0 {
		return batch, nil
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "convert", trace.ParentID(ctx))
	span.WithExtra("units", fmt.Sprint(len(inputs)))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	// Загружаем файлы последовательно: FileSet не потокобезопасен
	loadErrors := make(map[int]error)
	for i, in := range inputs {
		u := &batch.Units[i]
		u.Input = in
		u.OutPath = OutputPath(in, opts.OutDir)
		u.Bag = diag.NewBag(opts.MaxDiagnostics)
		id, err := fileSet.Load(in.Path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		u.FileID = id
		opts.Observer.emit(Event{Kind: UnitQueued, Index: i, Total: len(inputs), Path: in.Path})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fingerprint := table.Fingerprint()
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i := range inputs {
		g.Go(func() error {
			// индекс i уникален, мьютекс не нужен
			u := &batch.Units[i]
			if loadErr, failed := loadErrors[i]; failed {
				u.Failed = true
				diag.ReportError(diag.BagReporter{Bag: u.Bag}, diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()).Emit()
				done.Add(1)
				opts.Observer.emit(Event{Kind: UnitDone, Index: i, Total: len(inputs), Path: u.Input.Path, Status: diag.SevError, Failed: true})
				return nil
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			opts.Observer.emit(Event{Kind: UnitStarted, Index: i, Total: len(inputs), Path: u.Input.Path})
			if err := convertUnit(gctx, fileSet.Get(u.FileID), table, fingerprint, opts, u); err != nil {
				return err
			}
			done.Add(1)
			opts.Observer.emit(Event{
				Kind: UnitDone, Index: i, Total: len(inputs), Path: u.Input.Path,
				Status: u.Status(), Cached: u.Cached, Failed: u.Failed, Elapsed: time.Since(start),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batch, err
	}
	for i := range batch.Units {
		batch.Timing.Add(batch.Units[i].Timing)
	}
	span.WithExtra("done", fmt.Sprint(done.Load()))
	return batch, nil
}

// convertUnit fills u for one loaded unit.
func convertUnit(ctx context.Context, file *source.File, table *rules.Table, fingerprint string, opts Options, u *UnitResult) error {
	key := cache.Key(opts.Version, fingerprint, file.Hash)
	if opts.Cache != nil {
		var entry cache.Entry
		ok, err := opts.Cache.Get(key, &entry)
		if err != nil {
			// битая или устаревшая запись: просто конвертируем заново
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-miss", err.Error(), trace.ParentID(ctx))
		}
		if ok {
			u.Result = entry.Result(file)
			u.Cached = true
		}
	}
	if u.Result == nil {
		res, err := engine.Translate(ctx, file, table)
		switch {
		case errors.Is(err, engine.ErrStructural):
			u.Failed = true
			diag.ReportError(diag.BagReporter{Bag: u.Bag}, diag.IOStructural, source.Span{File: file.ID}, err.Error()).Emit()
			return nil
		case err != nil:
			return err
		}
		u.Result = res
		u.Timing = res.Timing
		if err := opts.Cache.Put(key, cache.FromResult(res)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-put", err.Error(), trace.ParentID(ctx))
		}
	}

	timer := observ.NewTimer()
	if opts.Verify {
		idx := timer.Begin("verify")
		n, err := verify.Check(ctx, u.Result, file)
		if err != nil {
			return err
		}
		timer.End(idx, fmt.Sprintf("%d problems", n))
	}
	u.Bag.Merge(u.Result.Diagnostics)

	if !opts.DryRun {
		idx := timer.Begin("write")
		if err := writeOutput(u.OutPath, u.Result.Output); err != nil {
			diag.ReportError(diag.BagReporter{Bag: u.Bag}, diag.IOWriteError, source.Span{File: file.ID}, "failed to write "+u.OutPath+": "+err.Error()).Emit()
		} else {
			u.Written = true
		}
		timer.End(idx, "")
	}
	u.Timing.Add(timer.Report())
	return nil
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
