// Package narrow rewrites uses of a value guarded by an instanceof test into
// explicit casts to the tested type.
//
// Given `x instanceof Foo && x.bar`, the right operand becomes
// `(<Foo>x).bar`. The same applies inside the then-block of an if, the body
// of a while, and the true branch of a conditional whose condition performs
// the test. Property chains work too: `o.p instanceof Foo && o.p.q`.
package narrow

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/ioctx"
	"github.com/vito/oneinfer/pkg/types"
)

// ErrUnbalancedScopes means a scope was left more often than it was
// entered. It indicates a bug in the transformer, not in the program.
var ErrUnbalancedScopes = errors.New("unbalanced narrowing scopes")

// Fact records that Expr is known to be a CheckType while the scope that
// introduced it is open.
type Fact struct {
	Test      *ast.InstanceOf
	Expr      ast.Expression
	CheckType types.Type
	Casts     []*ast.Cast
}

// scope owns the facts introduced while it was the innermost scope. Leaving
// the scope retires exactly those facts.
type scope struct {
	facts []*Fact
}

// Result summarizes one transformer run.
type Result struct {
	Facts []*Fact
}

// Casts returns the number of casts inserted.
func (r *Result) Casts() int {
	n := 0
	for _, f := range r.Facts {
		n += len(f.Casts)
	}
	return n
}

// Transformer is single-use: create one per unit and run it once.
type Transformer struct {
	parents *ast.Parents
	scopes  []*scope
	facts   []*Fact
	err     error
}

// New creates a transformer. The parent table is used to recognize
// assignment targets and is kept current as casts are inserted; pass nil to
// have it built on demand.
func New(parents *ast.Parents) *Transformer {
	return &Transformer{parents: parents}
}

// TransformFile rewrites every function body and the main block of file.
func (t *Transformer) TransformFile(ctx context.Context, file *ast.SourceFile) (*Result, error) {
	if t.parents == nil {
		t.parents = ast.LinkParents(file)
	}
	ctx = ioctx.WithAttrs(ctx, "file", file.Path, "pass", "narrow")

	for _, fn := range file.Functions {
		t.block(ctx, fn.Body)
	}
	t.block(ctx, file.Main)

	return t.finish()
}

// TransformExpression rewrites a single expression and returns its
// replacement. No scope is open around it, so an instanceof test at its top
// level narrows nothing.
func (t *Transformer) TransformExpression(ctx context.Context, expr ast.Expression) (ast.Expression, *Result, error) {
	if t.parents == nil {
		t.parents = ast.LinkParents(expr)
	}
	out := t.expr(ctx, expr)
	res, err := t.finish()
	return out, res, err
}

func (t *Transformer) finish() (*Result, error) {
	if t.err != nil {
		return nil, t.err
	}
	if len(t.scopes) != 0 {
		return nil, errors.Wrapf(ErrUnbalancedScopes, "%d scope(s) left open", len(t.scopes))
	}
	return &Result{Facts: t.facts}, nil
}

func (t *Transformer) enter() {
	t.scopes = append(t.scopes, &scope{})
}

func (t *Transformer) exit() {
	if len(t.scopes) == 0 {
		if t.err == nil {
			t.err = errors.Wrap(ErrUnbalancedScopes, "exit without enter")
		}
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Transformer) addFact(ctx context.Context, test *ast.InstanceOf) {
	if len(t.scopes) == 0 {
		// nothing conditionally gates a bare test
		return
	}
	fact := &Fact{Test: test, Expr: test.Expr, CheckType: test.CheckType}
	top := t.scopes[len(t.scopes)-1]
	top.facts = append(top.facts, fact)
	t.facts = append(t.facts, fact)

	logger := ioctx.LoggerFromContext(ctx)
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.DebugContext(ctx, "narrowing",
			"expr", ast.FormatExpr(test.Expr),
			"to", test.CheckType,
			"depth", len(t.scopes))
	}
}

// match returns the first registered active fact about expr.
func (t *Transformer) match(expr ast.Expression) *Fact {
	for _, s := range t.scopes {
		for _, f := range s.facts {
			if SameValue(expr, f.Expr) {
				return f
			}
		}
	}
	return nil
}

func (t *Transformer) rewriter(ctx context.Context) ast.Rewriter {
	return ast.Rewriter{
		Expr:  func(e ast.Expression) ast.Expression { return t.expr(ctx, e) },
		Block: func(b *ast.Block) { t.block(ctx, b) },
	}
}

func (t *Transformer) block(ctx context.Context, b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		t.statement(ctx, s)
	}
}

func (t *Transformer) statement(ctx context.Context, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.If:
		t.enter()
		s.Condition = t.expr(ctx, s.Condition)
		t.block(ctx, s.Then)
		t.exit()

		// a positive test says nothing about the else branch
		t.block(ctx, s.Else)

	case *ast.While:
		t.enter()
		s.Condition = t.expr(ctx, s.Condition)
		t.block(ctx, s.Body)
		t.exit()

	default:
		t.enter()
		t.rewriter(ctx).Statement(stmt)
		t.exit()
	}
}

func (t *Transformer) expr(ctx context.Context, expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.InstanceOf:
		e.Expr = t.expr(ctx, e.Expr)
		t.addFact(ctx, e)
		return e

	case *ast.Binary:
		if e.Op == "&&" {
			// the right operand only runs when the left one held
			e.Left = t.expr(ctx, e.Left)
			e.Right = t.expr(ctx, e.Right)
			return e
		}
		// other operators share one scope across both operands, so a test
		// on the left of || still narrows the right

	case *ast.Conditional:
		t.enter()
		e.Condition = t.expr(ctx, e.Condition)
		e.WhenTrue = t.expr(ctx, e.WhenTrue)
		t.exit()

		e.WhenFalse = t.expr(ctx, e.WhenFalse)
		return e
	}

	t.enter()
	t.rewriter(ctx).Children(expr)
	t.exit()

	if t.parents.IsAssignmentTarget(expr) {
		// targets keep their declared type
		return expr
	}

	fact := t.match(expr)
	if fact == nil {
		return expr
	}

	cast := ast.NewImplicitCast(fact.Test, expr)
	if expr.ActualType() != nil {
		// already inferred; otherwise inference types the cast later
		if err := cast.SetActualType(fact.CheckType); err != nil && t.err == nil {
			t.err = err
		}
	}
	fact.Casts = append(fact.Casts, cast)
	fact.Test.ImplicitCasts = append(fact.Test.ImplicitCasts, cast)
	t.parents.Wrap(expr, cast)
	return cast
}
