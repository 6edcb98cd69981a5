package diag

import (
	"bytes"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/oneinfer/pkg/ast"
)

func TestBag(t *testing.T) {
	bag := NewBag()
	node := &ast.NullLiteral{Loc: ast.Loc{Location: &ast.SourceLocation{Filename: "a.ts", Line: 3, Column: 7}}}

	bag.Warn(node, "could not determine %s", "things")
	err := bag.Throw(node, "broken %d", 42)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "a.ts:3:7: error: broken 42", err.Error())
	assert.Same(t, node, fatal.Node)

	assert.Equal(t, 1, bag.WarningCount())
	assert.Equal(t, 1, bag.ErrorCount())
	assert.True(t, bag.HasErrors())
	assert.Len(t, bag.Diagnostics(), 2)
	require.Len(t, bag.Warnings(), 1)
	assert.Equal(t, "a.ts:3:7: warning: could not determine things", bag.Warnings()[0].String())
	assert.Equal(t, "1 warning(s), 1 error(s)", Summary(bag))
}

func TestBagWithoutLocation(t *testing.T) {
	bag := NewBag()
	bag.Warn(&ast.NullLiteral{}, "no location")
	bag.Warn(nil, "no node")

	assert.Equal(t, "warning: no location", bag.Diagnostics()[0].String())
	assert.Equal(t, "warning: no node", bag.Diagnostics()[1].String())
}

func TestBagConcurrentWarn(t *testing.T) {
	bag := NewBag()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bag.Warn(nil, "w")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, bag.WarningCount())
	assert.Len(t, bag.Diagnostics(), 50)
}

func TestRenderPlain(t *testing.T) {
	bag := NewBag()
	bag.Warn(&ast.NullLiteral{Loc: ast.Loc{Location: &ast.SourceLocation{Line: 1, Column: 2}}}, "first")
	_ = bag.Throw(nil, "second")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, bag.Diagnostics(), false))
	assert.Equal(t, "1:2: warning: first\nerror: second\n", buf.String())
}

func TestRenderColor(t *testing.T) {
	bag := NewBag()
	bag.Warn(&ast.NullLiteral{Loc: ast.Loc{Location: &ast.SourceLocation{Filename: "a.ts", Line: 1, Column: 2}}}, "styled")
	_ = bag.Throw(nil, "broken")

	var plain, styled bytes.Buffer
	require.NoError(t, Render(&plain, bag.Diagnostics(), false))
	require.NoError(t, Render(&styled, bag.Diagnostics(), true))

	// styling only adds escape sequences
	assert.Equal(t, plain.String(), ansi.Strip(styled.String()))
}
