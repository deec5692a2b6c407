// Package observability provides formatted terminal output for the interactive CLI.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jonathan/resume-chat/internal/chips"
	"github.com/jonathan/resume-chat/internal/session"
	"github.com/jonathan/resume-chat/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the number of cells in the progress bar
	barWidth = 30
)

// Printer handles formatted output for the terminal session
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEntry writes one transcript entry. Typing placeholders print as an ellipsis.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEntry(e types.TranscriptEntry) {
	switch {
	case e.Typing:
		fmt.Fprintln(p.out, "bot> ...")
	case e.Role == types.RoleUser:
		fmt.Fprintf(p.out, "you> %s\n", e.Content)
	case e.Role == types.RoleError:
		fmt.Fprintln(p.out, e.Content)
	default:
		fmt.Fprintf(p.out, "bot> %s\n", e.Content)
	}
}

// PrintChips lists the suggestion chips with the 1-based numbers the chat command uses.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintChips(row []chips.Chip) {
	if len(row) == 0 {
		return
	}
	parts := make([]string, 0, len(row))
	for i, c := range row {
		mark := ""
		if c.Selected {
			mark = "*"
		}
		parts = append(parts, fmt.Sprintf("[%d] %s%s", i+1, c.Display, mark))
	}
	fmt.Fprintf(p.out, "     %s\n", strings.Join(parts, "  "))
}

// PrintProgress writes the progress bar for a step index.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step int, pct float64) {
	filled := int(pct / 100 * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	field := types.StepField(step)
	fmt.Fprintf(p.out, "%s %3.0f%%  (%s)\n", bar, pct, types.FieldLabel(field))
}

// PrintForm outputs the live form. Recently updated fields are marked with an asterisk.
func (p *Printer) PrintForm(values map[string]string, flashing []string) {
	var sb strings.Builder
	for _, field := range types.FormFields {
		mark := " "
		if slices.Contains(flashing, field) {
			mark = "*"
		}
		value := values[field]
		if value == "" {
			value = "-"
		}
		sb.WriteString(fmt.Sprintf("%s %-17s %s\n", mark, types.FieldLabel(field)+":", value))
	}
	p.printBox("RÉSUMÉ FORM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatus outputs a summary of the session state.
func (p *Printer) PrintStatus(s session.State) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Session:  %s\n", orNone(s.SessionID)))
	sb.WriteString(fmt.Sprintf("Upload:   %s\n", orNone(s.UploadID)))
	sb.WriteString(fmt.Sprintf("Step:     %d (%s)\n", s.Step, types.FieldLabel(types.StepField(s.Step))))
	sb.WriteString(fmt.Sprintf("Progress: %.0f%%\n", s.Progress))

	filled := 0
	for _, field := range types.FormFields {
		if strings.TrimSpace(s.Data[field]) != "" {
			filled++
		}
	}
	sb.WriteString(fmt.Sprintf("Fields:   %d/%d filled\n", filled, len(types.FormFields)))

	if missing := types.NewResumeExport(s.Form).MissingFields(); len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("Missing:  %s\n", strings.Join(missing, ", ")))
	}
	if s.Finished {
		sb.WriteString("\n✅ Interview complete")
	}

	p.printBox("SESSION STATUS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAlert outputs a blocking notification.
func (p *Printer) PrintAlert(msg string) {
	p.printBox("⚠ ALERT", msg)
}

// PrintModal outputs the completion notice shown after a successful submission.
func (p *Printer) PrintModal() {
	p.printBox("✅ PROFILE SAVED", "Your résumé profile was submitted.\nClose this notice to start a new session.")
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return *s
}
