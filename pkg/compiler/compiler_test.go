package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/unitjson"
	"gotest.tools/v3/golden"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type CompilerSuite struct{}

func TestCompiler(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(CompilerSuite{})
}

// TestGolden compiles every unit under testdata/ and compares the
// rewritten program and its diagnostics against <name>.golden. A sibling
// <name>.toml configures the unit.
func (CompilerSuite) TestGolden(ctx context.Context, t *testctx.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		t.Run(name, func(ctx context.Context, t *testctx.T) {
			cfg := DefaultConfig()
			if _, err := os.Stat(filepath.Join("testdata", name+".toml")); err == nil {
				cfg, err = LoadConfig(filepath.Join("testdata", name+".toml"))
				require.NoError(t, err)
			}

			file, err := unitjson.LoadFile(path)
			require.NoError(t, err)

			res, err := Compile(ctx, file, cfg)

			var out strings.Builder
			if err != nil {
				fmt.Fprintf(&out, "--- error\n%s\n", err)
			} else {
				out.WriteString(ast.Format(res.File))
			}
			out.WriteString("--- diagnostics\n")
			require.NoError(t, diag.Render(&out, res.Diagnostics.Diagnostics(), false))

			golden.Assert(t, out.String(), name+".golden")
		})
	}
}

func load(t *testctx.T, name string) *ast.SourceFile {
	file, err := unitjson.LoadFile(filepath.Join("testdata", name+".json"))
	require.NoError(t, err)
	return file
}

func (CompilerSuite) TestSummary(ctx context.Context, t *testctx.T) {
	res, err := Compile(ctx, load(t, "narrowing"), nil)
	require.NoError(t, err)
	require.False(t, res.Failed())
	require.NotNil(t, res.Narrowing)
	require.Equal(t, "narrowing.ts: ok, 1 warning(s), 0 error(s), 4 cast(s)", res.Summary())
}

func (CompilerSuite) TestWarningsAsErrors(ctx context.Context, t *testctx.T) {
	cfg := DefaultConfig()
	cfg.Inference.WarningsAsErrors = true

	res, err := Compile(ctx, load(t, "lambdas"), cfg)
	require.ErrorIs(t, err, ErrWarningsAsErrors)
	require.True(t, res.Failed())
	require.Equal(t, 1, res.Diagnostics.WarningCount())

	// a clean unit is unaffected
	_, err = Compile(ctx, load(t, "narrowed_members"), &Config{
		Inference: InferenceConfig{WarningsAsErrors: true},
		Narrowing: NarrowingConfig{BeforeInference: true},
	})
	require.NoError(t, err)
}

func (CompilerSuite) TestFailedInferenceSkipsNarrowing(ctx context.Context, t *testctx.T) {
	res, err := Compile(ctx, load(t, "fatal"), nil)

	var fatal *diag.FatalError
	require.ErrorAs(t, err, &fatal)
	require.Nil(t, res.Narrowing)
	require.Equal(t, "fatal.ts: failed, 0 warning(s), 1 error(s), 0 cast(s)", res.Summary())
}

func (CompilerSuite) TestNarrowingDisabled(ctx context.Context, t *testctx.T) {
	off := false
	cfg := DefaultConfig()
	cfg.Narrowing.Enabled = &off

	res, err := Compile(ctx, load(t, "narrowing"), cfg)
	require.NoError(t, err)
	require.Nil(t, res.Narrowing)
	require.NotContains(t, ast.Format(res.File), "<Dog>")
}

func (CompilerSuite) TestNarrowedMembersNeedEarlyNarrowing(ctx context.Context, t *testctx.T) {
	// inferring first sees a.owner on Animal, which has no such field
	_, err := Compile(ctx, load(t, "narrowed_members"), nil)
	require.ErrorContains(t, err, "property owner does not exist on type Animal")
}

func (CompilerSuite) TestUnknownPlugin(ctx context.Context, t *testctx.T) {
	cfg := DefaultConfig()
	cfg.Inference.Plugins = []string{"guesswork"}

	res, err := Compile(ctx, load(t, "narrowing"), cfg)
	require.ErrorContains(t, err, `unknown inference plugin "guesswork"`)
	require.Nil(t, res.Parents)
}

func (CompilerSuite) TestCanceled(ctx context.Context, t *testctx.T) {
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := Compile(ctx, load(t, "narrowing"), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func (CompilerSuite) TestCompileAll(ctx context.Context, t *testctx.T) {
	files := []*ast.SourceFile{
		load(t, "narrowing"),
		load(t, "fatal"),
		load(t, "lambdas"),
	}

	results, err := CompileAll(ctx, files, &Config{Jobs: 2})

	var fatal *diag.FatalError
	require.ErrorAs(t, err, &fatal)
	require.Len(t, results, 3)
	for i, res := range results {
		require.Same(t, files[i], res.File)
	}
	require.False(t, results[0].Failed())
	require.True(t, results[1].Failed())
	require.False(t, results[2].Failed())
}
