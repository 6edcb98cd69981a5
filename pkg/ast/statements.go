package ast

import "github.com/vito/oneinfer/pkg/types"

// Block is a sequence of statements with its own lexical scope.
type Block struct {
	Loc
	Statements []Statement
}

type ExpressionStatement struct {
	Loc
	Expr Expression
}

type VariableDeclaration struct {
	Loc
	Var *Variable
}

type Return struct {
	Loc
	Expr Expression // nil for a bare return
}

type If struct {
	Loc
	Condition Expression
	Then      *Block
	Else      *Block // may be nil
}

type While struct {
	Loc
	Condition Expression
	Body      *Block
}

type Foreach struct {
	Loc
	Var   *ForeachVariable
	Items Expression
	Body  *Block
}

func (*ExpressionStatement) stmt() {}
func (*VariableDeclaration) stmt() {}
func (*Return) stmt()              {}
func (*If) stmt()                  {}
func (*While) stmt()               {}
func (*Foreach) stmt()             {}

var (
	_ Statement = (*ExpressionStatement)(nil)
	_ Statement = (*VariableDeclaration)(nil)
	_ Statement = (*Return)(nil)
	_ Statement = (*If)(nil)
	_ Statement = (*While)(nil)
	_ Statement = (*Foreach)(nil)
)

// Function is a named top-level function.
type Function struct {
	Loc
	Name       string
	Parameters []*Parameter
	Returns    types.Type
	Body       *Block
}

// LiteralTypes holds the canonical class declarations that literal
// expressions of a compilation unit are typed with.
type LiteralTypes struct {
	Array   *types.Class
	Map     *types.Class
	String  *types.Class
	Numeric *types.Class
	Boolean *types.Class
}

// SourceFile is one compilation unit.
type SourceFile struct {
	Loc
	Path         string
	Classes      []*types.Class
	Interfaces   []*types.Interface
	Enums        []*types.Enum
	Functions    []*Function
	Main         *Block
	LiteralTypes LiteralTypes
}
