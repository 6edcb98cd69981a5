package infer

import (
	"context"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/types"
)

type InferSuite struct{}

func TestInfer(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(InferSuite{})
}

func (InferSuite) TestEmptyArray(ctx context.Context, t *testctx.T) {
	t.Run("no expected type", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		v, decl := let("a", nil, array())

		bag, err := f.run(ctx, decl)
		require.NoError(t, err)
		requireType(t, f.ArrayOf(types.Any), v.Initializer)
		require.Equal(t, []string{
			"Could not determine the type of an empty ArrayLiteral, using AnyType instead",
		}, warnings(bag))
	})

	t.Run("expected from declaration", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		v, decl := let("a", f.ArrayOf(f.Str()), array())

		bag, err := f.run(ctx, decl)
		require.NoError(t, err)
		requireType(t, f.ArrayOf(f.Str()), v.Initializer)
		require.Empty(t, warnings(bag))
	})

	t.Run("expected from cast", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := array()
		cast := &ast.Cast{Expr: lit, NewType: f.ArrayOf(f.Str())}

		bag, err := f.run(ctx, do(cast))
		require.NoError(t, err)
		requireType(t, f.ArrayOf(f.Str()), lit)
		requireType(t, f.ArrayOf(f.Str()), cast)
		require.Empty(t, warnings(bag))
	})

	t.Run("expected is another class", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := array()

		bag, err := f.run(ctx, do(&ast.Cast{Expr: lit, NewType: f.Animal()}))
		require.NoError(t, err)
		requireType(t, f.ArrayOf(types.Any), lit)
		require.Empty(t, warnings(bag))
	})

	t.Run("expected from conditional sibling", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		xs, xsDecl := let("xs", f.ArrayOf(f.Num()), nil)
		empty := array()
		cond := &ast.Conditional{
			Condition: &ast.BooleanLiteral{Value: true},
			WhenTrue:  empty,
			WhenFalse: ref(xs),
		}

		bag, err := f.run(ctx, xsDecl, do(cond))
		require.NoError(t, err)
		requireType(t, f.ArrayOf(f.Num()), empty)
		requireType(t, f.ArrayOf(f.Num()), cond)
		require.Empty(t, warnings(bag))
	})
}

func (InferSuite) TestEmptyMapFromAssignment(ctx context.Context, t *testctx.T) {
	f := newFixture()
	m, decl := let("m", f.MapOf(f.Num()), nil)
	lit := &ast.MapLiteral{}
	assign := &ast.Binary{Op: "=", Left: ref(m), Right: lit}

	bag, err := f.run(ctx, decl, do(assign))
	require.NoError(t, err)
	requireType(t, f.MapOf(f.Num()), lit)
	requireType(t, f.MapOf(f.Num()), assign)
	require.Empty(t, warnings(bag))
}

func (InferSuite) TestUniformItems(ctx context.Context, t *testctx.T) {
	f := newFixture()

	// the expectation is irrelevant once the items agree
	v, decl := let("a", f.ArrayOf(f.Str()), array(num("1"), num("2"), num("3")))

	bag, err := f.run(ctx, decl)
	require.NoError(t, err)
	requireType(t, f.ArrayOf(f.Num()), v.Initializer)
	require.Empty(t, warnings(bag))
}

func (InferSuite) TestMixedItems(ctx context.Context, t *testctx.T) {
	t.Run("array", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := array(num("1"), str("a"))

		bag, err := f.run(ctx, do(lit))
		require.NoError(t, err)
		requireType(t, f.ArrayOf(types.Any), lit)
		require.Equal(t, []string{
			"Could not determine the type of an ArrayLiteral! Multiple types were found: TsNumber, TsString, using AnyType instead",
		}, warnings(bag))
	})

	t.Run("map values", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := &ast.MapLiteral{Items: []ast.MapLiteralItem{
			{Key: "a", Value: num("1")},
			{Key: "b", Value: str("x")},
		}}

		bag, err := f.run(ctx, do(lit))
		require.NoError(t, err)
		requireType(t, f.MapOf(types.Any), lit)
		require.Equal(t, []string{
			"Could not determine the type of a MapLiteral! Multiple types were found: TsNumber, TsString, using AnyType instead",
		}, warnings(bag))
	})

	t.Run("repeated types are listed once", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := array(num("1"), str("a"), num("2"), str("b"), num("3"))

		bag, err := f.run(ctx, do(lit))
		require.NoError(t, err)
		require.Equal(t, []string{
			"Could not determine the type of an ArrayLiteral! Multiple types were found: TsNumber, TsString, using AnyType instead",
		}, warnings(bag))
	})

	t.Run("expected any is silent", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		lit := array(num("1"), str("a"))

		bag, err := f.run(ctx, do(&ast.Cast{Expr: lit, NewType: types.Any}))
		require.NoError(t, err)
		requireType(t, f.ArrayOf(types.Any), lit)
		require.Empty(t, warnings(bag))
	})
}

func (InferSuite) TestDistinctTypesAreStructural(ctx context.Context, t *testctx.T) {
	f := newFixture()

	// each inner literal gets its own TsArray<TsNumber> value
	lit := array(array(num("1")), array(num("2"), num("3")))

	bag, err := f.run(ctx, do(lit))
	require.NoError(t, err)
	requireType(t, f.ArrayOf(f.ArrayOf(f.Num())), lit)
	require.Empty(t, warnings(bag))
	require.Len(t, DistinctTypes(lit.Items), 1)
}

func (InferSuite) TestLambdaArityMismatch(ctx context.Context, t *testctx.T) {
	f := newFixture()
	params := []*ast.Parameter{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	lambda := &ast.Lambda{Parameters: params, Body: &ast.Block{}}
	_, decl := let("fn", types.NewLambdaType(types.Void, f.Num(), f.Num()), lambda)

	bag, err := f.run(ctx, decl)

	var fatal *diag.FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, "Expected 3 parameters for lambda, but got 2!", fatal.Diagnostic.Message)
	require.Equal(t, 1, bag.ErrorCount())
	for _, p := range params {
		require.Nil(t, p.Type, "parameter %s was assigned", p.Name)
	}
}

func (InferSuite) TestLambdaExpectedNotLambda(ctx context.Context, t *testctx.T) {
	f := newFixture()
	param := &ast.Parameter{Name: "a"}
	lambda := &ast.Lambda{Parameters: []*ast.Parameter{param}, Body: &ast.Block{}}
	_, decl := let("fn", f.Str(), lambda)

	_, err := f.run(ctx, decl)

	var fatal *diag.FatalError
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, "Expected LambdaType as Lambda's type, got TsString!", fatal.Diagnostic.Message)
	require.Nil(t, param.Type)
	require.Nil(t, lambda.ActualType())
}

func (InferSuite) TestLambdaParameters(ctx context.Context, t *testctx.T) {
	t.Run("untyped parameters adopt the expected types", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		x := &ast.Parameter{Name: "x"}
		lambda := &ast.Lambda{
			Parameters: []*ast.Parameter{x},
			Body:       ret(&ast.ParameterRef{Decl: x}),
		}
		_, decl := let("fn", types.NewLambdaType(f.Num(), f.Num()), lambda)

		bag, err := f.run(ctx, decl)
		require.NoError(t, err)
		require.True(t, f.Num().Eq(x.Type))
		requireType(t, types.NewLambdaType(f.Num(), f.Num()), lambda)
		require.Empty(t, warnings(bag))
	})

	t.Run("declared parameter narrower than expected", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		d := &ast.Parameter{Name: "d", Type: f.Dog()}
		lambda := &ast.Lambda{Parameters: []*ast.Parameter{d}, Body: &ast.Block{}}
		_, decl := let("fn", types.NewLambdaType(types.Void, f.Animal()), lambda)

		_, err := f.run(ctx, decl)
		require.NoError(t, err)
		require.True(t, f.Dog().Eq(d.Type))
	})

	t.Run("declared parameter not assignable", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		a := &ast.Parameter{Name: "a", Type: f.Animal()}
		lambda := &ast.Lambda{Parameters: []*ast.Parameter{a}, Body: &ast.Block{}}
		_, decl := let("fn", types.NewLambdaType(types.Void, f.Dog()), lambda)

		_, err := f.run(ctx, decl)

		var fatal *diag.FatalError
		require.ErrorAs(t, err, &fatal)
		require.Equal(t, "Parameter type Animal cannot be assigned to Dog.", fatal.Diagnostic.Message)
	})

	t.Run("no expectation", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		x := &ast.Parameter{Name: "x"}
		lambda := &ast.Lambda{Parameters: []*ast.Parameter{x}, Body: &ast.Block{}}
		_, decl := let("fn", nil, lambda)

		bag, err := f.run(ctx, decl)
		require.NoError(t, err)
		require.Equal(t, types.Any, x.Type)
		requireType(t, types.NewLambdaType(types.Void, types.Any), lambda)
		require.Equal(t, []string{
			"Could not determine the type of lambda parameter x, using AnyType instead",
		}, warnings(bag))
	})

	t.Run("expected from call argument", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		each, eachDecl := let("each", types.NewLambdaType(types.Void, types.NewLambdaType(types.Void, f.Num())), nil)
		x := &ast.Parameter{Name: "x"}
		lambda := &ast.Lambda{Parameters: []*ast.Parameter{x}, Body: &ast.Block{}}
		call := &ast.Call{Callee: ref(each), Args: []ast.Expression{lambda}}

		bag, err := f.run(ctx, eachDecl, do(call))
		require.NoError(t, err)
		require.True(t, f.Num().Eq(x.Type))
		requireType(t, types.Void, call)
		require.Empty(t, warnings(bag))
	})

	t.Run("return type seeds returned literals", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		empty := array()
		lambda := &ast.Lambda{Body: ret(empty)}
		_, decl := let("fn", types.NewLambdaType(f.ArrayOf(f.Str())), lambda)

		bag, err := f.run(ctx, decl)
		require.NoError(t, err)
		requireType(t, f.ArrayOf(f.Str()), empty)
		require.Empty(t, warnings(bag))
	})
}

func (InferSuite) TestReferencesAndMembers(ctx context.Context, t *testctx.T) {
	f := newFixture()
	d, decl := let("d", f.Dog(), nil)
	owner := &ast.PropertyAccess{Object: ref(d), Name: "owner"}
	name := &ast.PropertyAccess{Object: owner, Name: "name"}
	inherited := &ast.PropertyAccess{Object: ref(d), Name: "name"}

	_, err := f.run(ctx, decl, do(name), do(inherited))
	require.NoError(t, err)
	requireType(t, f.Animal(), owner)
	requireType(t, f.Str(), name)
	requireType(t, f.Str(), inherited)

	t.Run("unknown member", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		d, decl := let("d", f.Dog(), nil)

		_, err := f.run(ctx, decl, do(&ast.PropertyAccess{Object: ref(d), Name: "tail"}))
		var fatal *diag.FatalError
		require.ErrorAs(t, err, &fatal)
		require.Equal(t, "property tail does not exist on type Dog", fatal.Diagnostic.Message)
	})
}

func (InferSuite) TestOperators(ctx context.Context, t *testctx.T) {
	f := newFixture()
	concat := &ast.Binary{Op: "+", Left: num("1"), Right: str("a")}
	sum := &ast.Binary{Op: "*", Left: num("1"), Right: num("2")}
	cmp := &ast.Binary{Op: "<", Left: num("1"), Right: num("2")}
	not := &ast.Unary{Op: "!", Operand: cmp}
	test := &ast.InstanceOf{Expr: &ast.NullLiteral{}, CheckType: f.Dog()}
	mixed := &ast.Conditional{Condition: test, WhenTrue: num("1"), WhenFalse: str("a")}

	bag, err := f.run(ctx, do(concat), do(sum), do(not), do(mixed))
	require.NoError(t, err)
	requireType(t, f.Str(), concat)
	requireType(t, f.Num(), sum)
	requireType(t, f.Bool(), not)
	requireType(t, f.Bool(), test)
	requireType(t, types.Any, mixed)
	require.Equal(t, []string{
		"Could not determine a common type for TsNumber and TsString, using AnyType instead",
	}, warnings(bag))
}

func (InferSuite) TestEveryExpressionTyped(ctx context.Context, t *testctx.T) {
	f := newFixture()
	d, dDecl := let("d", f.Dog(), nil)
	item := &ast.ForeachVariable{Name: "item"}
	loop := &ast.Foreach{
		Var:   item,
		Items: array(ref(d), ref(d)),
		Body: &ast.Block{Statements: []ast.Statement{
			do(&ast.PropertyAccess{Object: &ast.ForeachVariableRef{Decl: item}, Name: "owner"}),
		}},
	}
	_, mDecl := let("m", nil, &ast.MapLiteral{Items: []ast.MapLiteralItem{
		{Key: "k", Value: &ast.Lambda{Body: ret(array(num("1")))}},
	}})

	_, err := f.run(ctx, dDecl, loop, mDecl)
	require.NoError(t, err)
	require.True(t, f.Dog().Eq(item.Type))
	requireAllTyped(t, f.file)
}

func (InferSuite) TestLiteralAndOperatorTypes(ctx context.Context, t *testctx.T) {
	f := newFixture()
	lit := num("1")
	cmp := &ast.Binary{Op: "==", Left: str("a"), Right: str("b")}
	neg := &ast.Unary{Op: "-", Operand: num("2")}

	_, err := f.run(ctx, do(lit), do(cmp), do(neg))
	require.NoError(t, err)
	requireType(t, f.Num(), lit)
	requireType(t, f.Bool(), cmp)
	requireType(t, f.Num(), neg)

	t.Run("unregistered class", func(ctx context.Context, t *testctx.T) {
		f := newFixture()
		f.file.LiteralTypes.Numeric = nil

		_, err := f.run(ctx, do(num("1")))
		var fatal *diag.FatalError
		require.ErrorAs(t, err, &fatal)
		require.Equal(t, "no numeric literal type is registered for test.ts", fatal.Diagnostic.Message)
	})
}

func (InferSuite) TestMissingLiteralTypes(ctx context.Context, t *testctx.T) {
	f := newFixture()
	f.file.LiteralTypes.Map = nil

	_, err := f.run(ctx, do(num("1")))
	var fatal *diag.FatalError
	require.ErrorAs(t, err, &fatal)
}
