// Package diag collects the warnings and fatal errors raised while a
// compilation unit is analyzed.
package diag

import (
	"fmt"
	"sync"

	"github.com/vito/oneinfer/pkg/ast"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location *ast.SourceLocation
}

func (d Diagnostic) String() string {
	if d.Location == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// FatalError aborts the pass that raised it. It is also recorded in the
// bag as an Error diagnostic.
type FatalError struct {
	Diagnostic Diagnostic
	Node       ast.Node
}

func (e *FatalError) Error() string {
	return e.Diagnostic.String()
}

// Bag collects diagnostics for one compilation unit. Warnings are batched
// for later reporting and never interrupt a pass.
type Bag struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	warnCount   int
	errorCount  int
}

func NewBag() *Bag {
	return &Bag{}
}

func locationOf(node ast.SourceLocatable) *ast.SourceLocation {
	if node == nil {
		return nil
	}
	return node.GetSourceLocation()
}

func (b *Bag) add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diagnostics = append(b.diagnostics, d)
	switch d.Severity {
	case Warning:
		b.warnCount++
	case Error:
		b.errorCount++
	}
}

// Warn records a recoverable problem; execution continues.
func (b *Bag) Warn(node ast.SourceLocatable, format string, args ...any) {
	b.add(Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Location: locationOf(node),
	})
}

// Throw records a fatal problem and returns the error the caller must
// propagate to abort the current pass.
func (b *Bag) Throw(node ast.Node, format string, args ...any) error {
	d := Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Location: locationOf(node),
	}
	b.add(d)
	return &FatalError{Diagnostic: d, Node: node}
}

// Diagnostics returns a copy of everything reported so far.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	return out
}

// Warnings returns only the warning diagnostics.
func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.Diagnostics() {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

func (b *Bag) HasErrors() bool {
	return b.ErrorCount() > 0
}
