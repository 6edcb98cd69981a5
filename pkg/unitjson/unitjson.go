// Package unitjson loads pre-resolved compilation units from JSON.
//
// A unit lists its declarations, functions and main block. Expressions and
// statements are objects discriminated by "kind". Names used by "ref"
// expressions are bound to the innermost enclosing declaration; type
// strings use the syntax accepted by types.Parse.
package unitjson

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
)

// Unit is the top-level document.
type Unit struct {
	Path       string          `json:"path"`
	Literals   LiteralNames    `json:"literals"`
	Classes    []ClassJSON     `json:"classes"`
	Interfaces []InterfaceJSON `json:"interfaces"`
	Enums      []EnumJSON      `json:"enums"`
	Functions  []FunctionJSON  `json:"functions"`
	Main       []StmtJSON      `json:"main"`
}

// LiteralNames names the classes literal expressions are typed with.
type LiteralNames struct {
	Array   string `json:"array"`
	Map     string `json:"map"`
	String  string `json:"string"`
	Numeric string `json:"numeric"`
	Boolean string `json:"boolean"`
}

type FieldJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ClassJSON struct {
	Name       string      `json:"name"`
	TypeParams []string    `json:"typeParams,omitempty"`
	Base       string      `json:"base,omitempty"`
	Interfaces []string    `json:"interfaces,omitempty"`
	Fields     []FieldJSON `json:"fields,omitempty"`
}

type InterfaceJSON struct {
	Name       string      `json:"name"`
	TypeParams []string    `json:"typeParams,omitempty"`
	Bases      []string    `json:"bases,omitempty"`
	Fields     []FieldJSON `json:"fields,omitempty"`
}

type EnumJSON struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type ParamJSON struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type FunctionJSON struct {
	Name    string      `json:"name"`
	Params  []ParamJSON `json:"params,omitempty"`
	Returns string      `json:"returns,omitempty"`
	Body    []StmtJSON  `json:"body"`
	Line    int         `json:"line,omitempty"`
	Col     int         `json:"col,omitempty"`
}

// StmtJSON is any statement. Kinds: expr, var, return, if, while, foreach.
type StmtJSON struct {
	Kind  string     `json:"kind"`
	Name  string     `json:"name,omitempty"`
	Type  string     `json:"type,omitempty"`
	Expr  *ExprJSON  `json:"expr,omitempty"`
	Cond  *ExprJSON  `json:"cond,omitempty"`
	Items *ExprJSON  `json:"items,omitempty"`
	Then  []StmtJSON `json:"then,omitempty"`
	Else  []StmtJSON `json:"else,omitempty"`
	Body  []StmtJSON `json:"body,omitempty"`
	Line  int        `json:"line,omitempty"`
	Col   int        `json:"col,omitempty"`
}

// ExprJSON is any expression. Kinds: string, number, bool, null, array,
// map, lambda, instanceof, cast, binary, unary, conditional, prop, call,
// ref, field, this, static.
type ExprJSON struct {
	Kind    string      `json:"kind"`
	Value   any         `json:"value,omitempty"`
	Name    string      `json:"name,omitempty"`
	Type    string      `json:"type,omitempty"`
	Class   string      `json:"class,omitempty"`
	Op      string      `json:"op,omitempty"`
	Expr    *ExprJSON   `json:"expr,omitempty"`
	Left    *ExprJSON   `json:"left,omitempty"`
	Right   *ExprJSON   `json:"right,omitempty"`
	Operand *ExprJSON   `json:"operand,omitempty"`
	Object  *ExprJSON   `json:"object,omitempty"`
	Callee  *ExprJSON   `json:"callee,omitempty"`
	Cond    *ExprJSON   `json:"cond,omitempty"`
	Then    *ExprJSON   `json:"then,omitempty"`
	Else    *ExprJSON   `json:"else,omitempty"`
	Items   []*ExprJSON `json:"items,omitempty"`
	Entries []EntryJSON `json:"entries,omitempty"`
	Args    []*ExprJSON `json:"args,omitempty"`
	Params  []ParamJSON `json:"params,omitempty"`
	Returns string      `json:"returns,omitempty"`
	Body    []StmtJSON  `json:"body,omitempty"`
	Line    int         `json:"line,omitempty"`
	Col     int         `json:"col,omitempty"`
}

type EntryJSON struct {
	Key   string    `json:"key"`
	Value *ExprJSON `json:"value"`
}

// LoadFile reads and builds the unit stored at path.
func LoadFile(path string) (*ast.SourceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode builds a unit from JSON. path is used when the document does not
// name itself.
func Decode(r io.Reader, path string) (*ast.SourceFile, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var unit Unit
	if err := dec.Decode(&unit); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if unit.Path == "" {
		unit.Path = path
	}
	file, err := Build(&unit)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", unit.Path)
	}
	return file, nil
}
