package diag

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Render writes diagnostics one per line. When color is false the output is
// plain text, suitable for golden files and pipes.
func Render(w io.Writer, diags []Diagnostic, color bool) error {
	for _, d := range diags {
		if _, err := fmt.Fprintln(w, renderOne(d, color)); err != nil {
			return err
		}
	}
	return nil
}

func renderOne(d Diagnostic, color bool) string {
	if !color {
		return d.String()
	}
	var sb strings.Builder
	if d.Location != nil {
		sb.WriteString(locationStyle.Render(d.Location.String()))
		sb.WriteString(": ")
	}
	switch d.Severity {
	case Error:
		sb.WriteString(errorStyle.Render("error:"))
	default:
		sb.WriteString(warningStyle.Render("warning:"))
	}
	sb.WriteString(" ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Summary describes the totals of a bag, e.g. "2 warning(s), 1 error(s)".
func Summary(b *Bag) string {
	return fmt.Sprintf("%d warning(s), %d error(s)", b.WarningCount(), b.ErrorCount())
}
