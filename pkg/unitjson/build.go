package unitjson

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

type builder struct {
	path       string
	classes    map[string]*types.Class
	interfaces map[string]*types.Interface
	enums      map[string]*types.Enum
	scope      *scope
}

// scope binds names to *ast.Variable, *ast.Parameter or
// *ast.ForeachVariable.
type scope struct {
	names  map[string]any
	parent *scope
}

func (s *scope) lookup(name string) (any, bool) {
	for ; s != nil; s = s.parent {
		if d, ok := s.names[name]; ok {
			return d, true
		}
	}
	return nil, false
}

func (b *builder) push() {
	b.scope = &scope{names: map[string]any{}, parent: b.scope}
}

func (b *builder) pop() {
	b.scope = b.scope.parent
}

func (b *builder) declare(name string, decl any) {
	b.scope.names[name] = decl
}

// Build turns a decoded unit into a resolved source file.
func Build(unit *Unit) (*ast.SourceFile, error) {
	b := &builder{
		path:       unit.Path,
		classes:    map[string]*types.Class{},
		interfaces: map[string]*types.Interface{},
		enums:      map[string]*types.Enum{},
	}
	file := &ast.SourceFile{Path: unit.Path}

	// declare every name first so declarations can refer to each other
	for _, c := range unit.Classes {
		decl := &types.Class{Name: c.Name, TypeParams: c.TypeParams}
		b.classes[c.Name] = decl
		file.Classes = append(file.Classes, decl)
	}
	for _, i := range unit.Interfaces {
		decl := &types.Interface{Name: i.Name, TypeParams: i.TypeParams}
		b.interfaces[i.Name] = decl
		file.Interfaces = append(file.Interfaces, decl)
	}
	for _, e := range unit.Enums {
		decl := &types.Enum{Name: e.Name, Values: e.Values}
		b.enums[e.Name] = decl
		file.Enums = append(file.Enums, decl)
	}

	for _, c := range unit.Classes {
		if err := b.class(b.classes[c.Name], c); err != nil {
			return nil, errors.Wrapf(err, "class %s", c.Name)
		}
	}
	for _, i := range unit.Interfaces {
		if err := b.iface(b.interfaces[i.Name], i); err != nil {
			return nil, errors.Wrapf(err, "interface %s", i.Name)
		}
	}

	if err := checkCycles(file); err != nil {
		return nil, err
	}

	var err error
	if file.LiteralTypes, err = b.literals(unit.Literals); err != nil {
		return nil, err
	}

	b.push()
	defer b.pop()

	for _, fj := range unit.Functions {
		fn, err := b.function(fj)
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", fj.Name)
		}
		file.Functions = append(file.Functions, fn)
	}

	if file.Main, err = b.block(unit.Main, 0, 0); err != nil {
		return nil, errors.Wrap(err, "main")
	}
	return file, nil
}

// checkCycles rejects declarations that inherit from themselves, directly
// or through other declarations.
func checkCycles(file *ast.SourceFile) error {
	for _, c := range file.Classes {
		seen := map[*types.Class]bool{}
		for d := c; d.Base != nil; d = d.Base.Decl {
			if seen[d] {
				return errors.Errorf("class %s: inheritance cycle", c.Name)
			}
			seen[d] = true
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := map[*types.Interface]int{}
	var cyclic func(*types.Interface) bool
	cyclic = func(i *types.Interface) bool {
		switch state[i] {
		case visiting:
			return true
		case done:
			return false
		}
		state[i] = visiting
		for _, base := range i.Bases {
			if cyclic(base.Decl) {
				return true
			}
		}
		state[i] = done
		return false
	}
	for _, i := range file.Interfaces {
		if cyclic(i) {
			return errors.Errorf("interface %s: inheritance cycle", i.Name)
		}
	}
	return nil
}

func (b *builder) literals(names LiteralNames) (ast.LiteralTypes, error) {
	var lt ast.LiteralTypes
	for _, slot := range []struct {
		name string
		dst  **types.Class
	}{
		{names.Array, &lt.Array},
		{names.Map, &lt.Map},
		{names.String, &lt.String},
		{names.Numeric, &lt.Numeric},
		{names.Boolean, &lt.Boolean},
	} {
		if slot.name == "" {
			continue
		}
		c, ok := b.classes[slot.name]
		if !ok {
			return lt, errors.Errorf("literal class %s is not declared", slot.name)
		}
		*slot.dst = c
	}
	return lt, nil
}

func (b *builder) resolver(generics []string) types.Resolver {
	return func(name string, args []types.Type) (types.Type, error) {
		if slices.Contains(generics, name) {
			if len(args) > 0 {
				return nil, errors.Errorf("type parameter %s takes no arguments", name)
			}
			return types.GenericType{Name: name}, nil
		}
		if c, ok := b.classes[name]; ok {
			if len(args) > 0 && len(args) != len(c.TypeParams) {
				return nil, errors.Errorf("%s expects %d type arguments, got %d", name, len(c.TypeParams), len(args))
			}
			return types.NewClassType(c, args...), nil
		}
		if i, ok := b.interfaces[name]; ok {
			if len(args) > 0 && len(args) != len(i.TypeParams) {
				return nil, errors.Errorf("%s expects %d type arguments, got %d", name, len(i.TypeParams), len(args))
			}
			return types.NewInterfaceType(i, args...), nil
		}
		if e, ok := b.enums[name]; ok {
			return &types.EnumType{Decl: e}, nil
		}
		return nil, errors.Errorf("unknown type %s", name)
	}
}

// typ parses an optional type string; the empty string means no type.
func (b *builder) typ(src string, generics ...string) (types.Type, error) {
	if src == "" {
		return nil, nil
	}
	return types.Parse(src, b.resolver(generics))
}

func (b *builder) fields(src []FieldJSON, generics []string) ([]*types.Field, error) {
	var out []*types.Field
	for _, f := range src {
		t, err := b.typ(f.Type, generics...)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.Name)
		}
		if t == nil {
			return nil, errors.Errorf("field %s has no type", f.Name)
		}
		out = append(out, &types.Field{Name: f.Name, Type: t})
	}
	return out, nil
}

func (b *builder) class(decl *types.Class, src ClassJSON) error {
	if src.Base != "" {
		t, err := b.typ(src.Base, src.TypeParams...)
		if err != nil {
			return err
		}
		base, ok := t.(*types.ClassType)
		if !ok {
			return errors.Errorf("base %s is not a class", t)
		}
		decl.Base = base
	}
	for _, name := range src.Interfaces {
		t, err := b.typ(name, src.TypeParams...)
		if err != nil {
			return err
		}
		it, ok := t.(*types.InterfaceType)
		if !ok {
			return errors.Errorf("%s is not an interface", t)
		}
		decl.Interfaces = append(decl.Interfaces, it)
	}
	var err error
	decl.Fields, err = b.fields(src.Fields, src.TypeParams)
	return err
}

func (b *builder) iface(decl *types.Interface, src InterfaceJSON) error {
	for _, name := range src.Bases {
		t, err := b.typ(name, src.TypeParams...)
		if err != nil {
			return err
		}
		it, ok := t.(*types.InterfaceType)
		if !ok {
			return errors.Errorf("base %s is not an interface", t)
		}
		decl.Bases = append(decl.Bases, it)
	}
	var err error
	decl.Fields, err = b.fields(src.Fields, src.TypeParams)
	return err
}

func (b *builder) loc(line, col int) ast.Loc {
	if line == 0 {
		return ast.Loc{}
	}
	return ast.Loc{Location: &ast.SourceLocation{Filename: b.path, Line: line, Column: col}}
}

func (b *builder) params(src []ParamJSON) ([]*ast.Parameter, error) {
	var out []*ast.Parameter
	for _, pj := range src {
		t, err := b.typ(pj.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", pj.Name)
		}
		p := &ast.Parameter{Name: pj.Name, Type: t}
		b.declare(pj.Name, p)
		out = append(out, p)
	}
	return out, nil
}

func (b *builder) function(src FunctionJSON) (*ast.Function, error) {
	b.push()
	defer b.pop()

	params, err := b.params(src.Params)
	if err != nil {
		return nil, err
	}
	ret, err := b.typ(src.Returns)
	if err != nil {
		return nil, err
	}
	body, err := b.block(src.Body, src.Line, src.Col)
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Loc:        b.loc(src.Line, src.Col),
		Name:       src.Name,
		Parameters: params,
		Returns:    ret,
		Body:       body,
	}, nil
}

func (b *builder) block(src []StmtJSON, line, col int) (*ast.Block, error) {
	b.push()
	defer b.pop()

	blk := &ast.Block{Loc: b.loc(line, col)}
	for i, sj := range src {
		s, err := b.statement(sj)
		if err != nil {
			return nil, errors.Wrapf(err, "statement %d", i)
		}
		blk.Statements = append(blk.Statements, s)
	}
	return blk, nil
}

// optBlock is block for optional branches: a missing branch stays nil.
func (b *builder) optBlock(src []StmtJSON) (*ast.Block, error) {
	if src == nil {
		return nil, nil
	}
	return b.block(src, 0, 0)
}

func (b *builder) statement(src StmtJSON) (ast.Statement, error) {
	loc := b.loc(src.Line, src.Col)

	switch src.Kind {
	case "expr":
		e, err := b.expr(src.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Loc: loc, Expr: e}, nil

	case "var":
		t, err := b.typ(src.Type)
		if err != nil {
			return nil, err
		}
		var init ast.Expression
		if src.Expr != nil {
			// the initializer cannot see the variable it initializes
			if init, err = b.expr(src.Expr); err != nil {
				return nil, err
			}
		}
		v := &ast.Variable{Name: src.Name, Type: t, Initializer: init}
		b.declare(src.Name, v)
		return &ast.VariableDeclaration{Loc: loc, Var: v}, nil

	case "return":
		var e ast.Expression
		if src.Expr != nil {
			var err error
			if e, err = b.expr(src.Expr); err != nil {
				return nil, err
			}
		}
		return &ast.Return{Loc: loc, Expr: e}, nil

	case "if":
		cond, err := b.expr(src.Cond)
		if err != nil {
			return nil, err
		}
		then, err := b.block(src.Then, 0, 0)
		if err != nil {
			return nil, err
		}
		els, err := b.optBlock(src.Else)
		if err != nil {
			return nil, err
		}
		return &ast.If{Loc: loc, Condition: cond, Then: then, Else: els}, nil

	case "while":
		cond, err := b.expr(src.Cond)
		if err != nil {
			return nil, err
		}
		body, err := b.block(src.Body, 0, 0)
		if err != nil {
			return nil, err
		}
		return &ast.While{Loc: loc, Condition: cond, Body: body}, nil

	case "foreach":
		items, err := b.expr(src.Items)
		if err != nil {
			return nil, err
		}
		t, err := b.typ(src.Type)
		if err != nil {
			return nil, err
		}
		v := &ast.ForeachVariable{Name: src.Name, Type: t}

		b.push()
		defer b.pop()
		b.declare(src.Name, v)
		body, err := b.block(src.Body, 0, 0)
		if err != nil {
			return nil, err
		}
		return &ast.Foreach{Loc: loc, Var: v, Items: items, Body: body}, nil
	}

	return nil, errors.Errorf("unknown statement kind %q", src.Kind)
}

func (b *builder) exprs(src []*ExprJSON) ([]ast.Expression, error) {
	var out []ast.Expression
	for _, ej := range src {
		e, err := b.expr(ej)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *builder) expr(src *ExprJSON) (ast.Expression, error) {
	if src == nil {
		return nil, errors.New("missing expression")
	}
	loc := b.loc(src.Line, src.Col)

	switch src.Kind {
	case "string":
		s, ok := src.Value.(string)
		if !ok {
			return nil, errors.Errorf("string literal value %v is not a string", src.Value)
		}
		return &ast.StringLiteral{Loc: loc, Value: s}, nil

	case "number":
		switch v := src.Value.(type) {
		case json.Number:
			return &ast.NumericLiteral{Loc: loc, Value: v.String()}, nil
		case string:
			return &ast.NumericLiteral{Loc: loc, Value: v}, nil
		}
		return nil, errors.Errorf("numeric literal value %v is not a number", src.Value)

	case "bool":
		v, ok := src.Value.(bool)
		if !ok {
			return nil, errors.Errorf("boolean literal value %v is not a bool", src.Value)
		}
		return &ast.BooleanLiteral{Loc: loc, Value: v}, nil

	case "null":
		return &ast.NullLiteral{Loc: loc}, nil

	case "array":
		items, err := b.exprs(src.Items)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Loc: loc, Items: items}, nil

	case "map":
		m := &ast.MapLiteral{Loc: loc}
		for _, entry := range src.Entries {
			v, err := b.expr(entry.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "entry %s", entry.Key)
			}
			m.Items = append(m.Items, ast.MapLiteralItem{Key: entry.Key, Value: v})
		}
		return m, nil

	case "lambda":
		return b.lambda(src, loc)

	case "instanceof":
		e, err := b.expr(src.Expr)
		if err != nil {
			return nil, err
		}
		t, err := b.typ(src.Type)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errors.New("instanceof without a type")
		}
		return &ast.InstanceOf{Loc: loc, Expr: e, CheckType: t}, nil

	case "cast":
		e, err := b.expr(src.Expr)
		if err != nil {
			return nil, err
		}
		t, err := b.typ(src.Type)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errors.New("cast without a type")
		}
		return &ast.Cast{Loc: loc, Expr: e, NewType: t}, nil

	case "binary":
		left, err := b.expr(src.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.expr(src.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Loc: loc, Op: src.Op, Left: left, Right: right}, nil

	case "unary":
		operand, err := b.expr(src.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Loc: loc, Op: src.Op, Operand: operand}, nil

	case "conditional":
		cond, err := b.expr(src.Cond)
		if err != nil {
			return nil, err
		}
		whenTrue, err := b.expr(src.Then)
		if err != nil {
			return nil, err
		}
		whenFalse, err := b.expr(src.Else)
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Loc: loc, Condition: cond, WhenTrue: whenTrue, WhenFalse: whenFalse}, nil

	case "prop":
		obj, err := b.expr(src.Object)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyAccess{Loc: loc, Object: obj, Name: src.Name}, nil

	case "call":
		callee, err := b.expr(src.Callee)
		if err != nil {
			return nil, err
		}
		args, err := b.exprs(src.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Loc: loc, Callee: callee, Args: args}, nil

	case "ref":
		return b.ref(src.Name, loc)

	case "field":
		c, err := b.classNamed(src.Class)
		if err != nil {
			return nil, err
		}
		f, ok := c.Field(src.Name)
		if !ok {
			return nil, errors.Errorf("class %s has no field %s", c.Name, src.Name)
		}
		ref := &ast.InstanceFieldRef{Loc: loc, Field: f}
		if src.Object != nil {
			if ref.Object, err = b.expr(src.Object); err != nil {
				return nil, err
			}
		}
		return ref, nil

	case "this":
		c, err := b.classNamed(src.Class)
		if err != nil {
			return nil, err
		}
		return &ast.ThisRef{Loc: loc, Class: c}, nil

	case "static":
		c, err := b.classNamed(src.Class)
		if err != nil {
			return nil, err
		}
		return &ast.StaticThisRef{Loc: loc, Class: c}, nil
	}

	return nil, errors.Errorf("unknown expression kind %q", src.Kind)
}

func (b *builder) classNamed(name string) (*types.Class, error) {
	c, ok := b.classes[name]
	if !ok {
		return nil, errors.Errorf("unknown class %q", name)
	}
	return c, nil
}

func (b *builder) ref(name string, loc ast.Loc) (ast.Expression, error) {
	decl, ok := b.scope.lookup(name)
	if !ok {
		return nil, errors.Errorf("undefined: %s", name)
	}
	switch d := decl.(type) {
	case *ast.Variable:
		return &ast.VariableRef{Loc: loc, Decl: d}, nil
	case *ast.Parameter:
		return &ast.ParameterRef{Loc: loc, Decl: d}, nil
	case *ast.ForeachVariable:
		return &ast.ForeachVariableRef{Loc: loc, Decl: d}, nil
	}
	panic(fmt.Sprintf("unexpected declaration %T", decl))
}

func (b *builder) lambda(src *ExprJSON, loc ast.Loc) (ast.Expression, error) {
	b.push()
	defer b.pop()

	params, err := b.params(src.Params)
	if err != nil {
		return nil, err
	}
	ret, err := b.typ(src.Returns)
	if err != nil {
		return nil, err
	}

	var body *ast.Block
	if src.Expr != nil && src.Body == nil {
		// expression-bodied shorthand
		e, err := b.expr(src.Expr)
		if err != nil {
			return nil, err
		}
		body = &ast.Block{Loc: loc, Statements: []ast.Statement{&ast.Return{Loc: loc, Expr: e}}}
	} else if body, err = b.block(src.Body, src.Line, src.Col); err != nil {
		return nil, err
	}

	return &ast.Lambda{Loc: loc, Parameters: params, Returns: ret, Body: body}, nil
}
