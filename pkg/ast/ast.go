package ast

import (
	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/types"
)

// ErrActualTypeSet is returned when an expression's actual type is assigned
// a second time.
var ErrActualTypeSet = errors.New("expression already has an actual type")

type Node interface {
	SourceLocatable
	node()
}

type Expression interface {
	Node

	// ExpectedType is the type the surrounding context wants this expression
	// to have, or nil if there is no contextual expectation.
	ExpectedType() types.Type
	SetExpectedType(types.Type)

	// ActualType is the type computed from the expression's structure. It is
	// nil until inference visits the expression and is set at most once.
	ActualType() types.Type
	SetActualType(types.Type) error
}

type Statement interface {
	Node
	stmt()
}

// TypeInfo is embedded in expression nodes to store their inferred types.
type TypeInfo struct {
	expectedType types.Type
	actualType   types.Type
}

func (i *TypeInfo) ExpectedType() types.Type { return i.expectedType }

func (i *TypeInfo) SetExpectedType(t types.Type) { i.expectedType = t }

func (i *TypeInfo) ActualType() types.Type { return i.actualType }

func (i *TypeInfo) SetActualType(t types.Type) error {
	if i.actualType != nil {
		return errors.Wrapf(ErrActualTypeSet, "current %s, new %s", i.actualType, t)
	}
	i.actualType = t
	return nil
}

// Loc is embedded in nodes to carry their source location.
type Loc struct {
	Location *SourceLocation
}

func (l Loc) GetSourceLocation() *SourceLocation { return l.Location }

func (Loc) node() {}
