package infer

import (
	"context"
	"log/slog"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/ioctx"
)

var (
	// ErrUnclaimed is returned when no plugin can infer an expression.
	ErrUnclaimed = errors.New("no inference plugin claimed expression")

	// ErrPluginFailed is returned when a plugin claimed an expression but
	// did not produce a type for it.
	ErrPluginFailed = errors.New("inference plugin failed")
)

// Chain is an ordered registry of plugins. It owns no inference state.
type Chain struct {
	plugins []Plugin
}

func NewChain(plugins ...Plugin) *Chain {
	return &Chain{plugins: plugins}
}

// DefaultChain returns the standard plugins in their standard order.
func DefaultChain() *Chain {
	return NewChain(
		Literals{},
		ContainerLiterals{},
		LambdaParams{},
		References{},
		Members{},
		Casts{},
		Operators{},
		Calls{},
	)
}

// Register appends a plugin; it is tried after every plugin registered
// before it.
func (c *Chain) Register(p Plugin) {
	c.plugins = append(c.plugins, p)
}

func (c *Chain) Plugins() []Plugin {
	return c.plugins
}

// PluginName is the configuration name of a plugin, e.g.
// "container_literals".
func PluginName(p Plugin) string {
	return strcase.ToSnake(p.Name())
}

// Only returns a chain holding the named plugins, in the order given.
func (c *Chain) Only(names ...string) (*Chain, error) {
	byName := map[string]Plugin{}
	for _, p := range c.plugins {
		byName[PluginName(p)] = p
	}
	sub := NewChain()
	for _, name := range names {
		p, ok := byName[strcase.ToSnake(name)]
		if !ok {
			return nil, errors.Errorf("unknown inference plugin %q", name)
		}
		sub.Register(p)
	}
	return sub, nil
}

// Lookup returns the first plugin that claims expr.
func (c *Chain) Lookup(expr ast.Expression) (Plugin, bool) {
	for _, p := range c.plugins {
		if p.CanInfer(expr) {
			return p, true
		}
	}
	return nil, false
}

// Infer dispatches expr to the first plugin that claims it.
func (c *Chain) Infer(ctx context.Context, ic *Context, expr ast.Expression) error {
	p, ok := c.Lookup(expr)
	if !ok {
		return errors.Wrapf(ErrUnclaimed, "%T at %s", expr, expr.GetSourceLocation())
	}

	inferred, err := p.Infer(ctx, ic, expr)
	if err != nil {
		return err
	}
	if !inferred {
		return errors.Wrapf(ErrPluginFailed, "%s on %T at %s", p.Name(), expr, expr.GetSourceLocation())
	}

	logger := ioctx.LoggerFromContext(ctx)
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.DebugContext(ctx, "inferred",
			"plugin", p.Name(),
			"expr", ast.FormatExpr(expr),
			"type", expr.ActualType())
	}
	return nil
}
