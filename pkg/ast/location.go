package ast

import "fmt"

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return "<unknown>"
	}
	if loc.Filename == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

// SourceLocatable is anything that can point back at the source it came
// from. Nodes built programmatically may return nil.
type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}
