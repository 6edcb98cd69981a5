// Package compiler runs the semantic passes over compilation units: parent
// linking, type inference, then instanceof narrowing.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/infer"
	"github.com/vito/oneinfer/pkg/ioctx"
	"github.com/vito/oneinfer/pkg/narrow"
	"golang.org/x/sync/errgroup"
)

// ErrWarningsAsErrors fails a unit that completed with warnings when the
// configuration asks for it.
var ErrWarningsAsErrors = errors.New("warnings treated as errors")

// Result is everything one unit produced. It is returned even when the
// unit failed, so its diagnostics can still be reported.
type Result struct {
	File        *ast.SourceFile
	Parents     *ast.Parents
	Diagnostics *diag.Bag

	// Narrowing is nil when the pass is disabled or inference failed.
	Narrowing *narrow.Result

	// Err is the error Compile returned for this unit, if any.
	Err error
}

// Failed reports whether the unit did not complete cleanly.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Compile analyzes a single unit in place. The AST is annotated with types
// and rewritten with narrowing casts.
func Compile(ctx context.Context, file *ast.SourceFile, cfg *Config) (*Result, error) {
	res := &Result{File: file, Diagnostics: diag.NewBag()}
	res.Err = compile(ctx, file, cfg, res)
	return res, res.Err
}

func compile(ctx context.Context, file *ast.SourceFile, cfg *Config, res *Result) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chain, err := cfg.Chain()
	if err != nil {
		return err
	}

	ctx = ioctx.WithAttrs(ctx, "unit", file.Path)
	logger := ioctx.LoggerFromContext(ctx)

	res.Parents = ast.LinkParents(file)
	logger.DebugContext(ctx, "linked parents", "nodes", res.Parents.Len())

	narrowing := func() error {
		nr, err := narrow.New(res.Parents).TransformFile(ctx, file)
		if err != nil {
			return errors.Wrapf(err, "narrowing %s", file.Path)
		}
		res.Narrowing = nr
		logger.DebugContext(ctx, "narrowed", "facts", len(nr.Facts), "casts", nr.Casts())
		return nil
	}

	if cfg.NarrowingEnabled() && cfg.Narrowing.BeforeInference {
		if err := narrowing(); err != nil {
			return err
		}
	}

	if err := infer.New(chain).InferFile(ctx, file, res.Parents, res.Diagnostics); err != nil {
		// a unit that failed inference is not handed to later passes
		res.Narrowing = nil
		return err
	}

	if cfg.NarrowingEnabled() && !cfg.Narrowing.BeforeInference {
		if err := narrowing(); err != nil {
			return err
		}
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.DebugContext(ctx, "diagnostics", "dump", pretty.Sprint(res.Diagnostics.Diagnostics()))
	}

	if n := res.Diagnostics.WarningCount(); n > 0 && cfg.Inference.WarningsAsErrors {
		return errors.Wrapf(ErrWarningsAsErrors, "%s: %d warning(s)", file.Path, n)
	}
	return nil
}

// CompileAll analyzes independent units concurrently, at most cfg.Jobs at
// a time. A failing unit does not stop the others; every unit gets a
// result, and the first error is returned.
func CompileAll(ctx context.Context, files []*ast.SourceFile, cfg *Config) ([]*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	results := make([]*Result, len(files))

	var eg errgroup.Group
	eg.SetLimit(cfg.jobs())
	for i, file := range files {
		eg.Go(func() error {
			res, err := Compile(ctx, file, cfg)
			results[i] = res
			return err
		})
	}
	return results, eg.Wait()
}

// Summary describes the outcome of a unit in one line.
func (r *Result) Summary() string {
	status := "ok"
	if r.Failed() {
		status = "failed"
	}
	casts := 0
	if r.Narrowing != nil {
		casts = r.Narrowing.Casts()
	}
	return fmt.Sprintf("%s: %s, %s, %d cast(s)", r.File.Path, status, diag.Summary(r.Diagnostics), casts)
}
