// Package observability provides formatted output utilities for verbose CLI
// mode and in-process generation metrics.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSections outputs a summary of the parsed template sections.
func (p *Printer) PrintSections(sections []types.Section) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total sections: %d\n\n", len(sections)))

	count := min(len(sections), maxItemsToShow)
	for i := 0; i < count; i++ {
		sec := sections[i]
		sb.WriteString(fmt.Sprintf("#%d  %s <%s>\n", sec.OrderIndex, sec.Kind, sec.Metadata.TagName))
		sb.WriteString(fmt.Sprintf("    Words: %d  Complexity: %.2f\n", sec.Metadata.WordCount, sec.Metadata.ComplexityScore))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(sections) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more sections", len(sections)-maxItemsToShow))
	}

	p.printBox("PARSED SECTIONS", sb.String())
}

// PrintMetrics outputs the calculated project metrics.
func (p *Printer) PrintMetrics(metrics analysis.ProjectMetrics) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Complexity:  %.2f\n", metrics.ComplexityScore))
	sb.WriteString(fmt.Sprintf("Total hours: %d\n", metrics.EstimatedHours["total"]))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", metrics.Timeline["duration"]))

	if len(metrics.Resources) > 0 {
		sb.WriteString("\nResources:\n")
		count := min(len(metrics.Resources), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", metrics.Resources[i]))
		}
		if len(metrics.Resources) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(metrics.Resources)-maxItemsToShow))
		}
	}

	p.printBox("PROJECT METRICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the outcome of a generation run.
func (p *Printer) PrintResult(result types.GenerationResult) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Status:    %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("Sections:  %d processed, %d failed\n", result.SectionsProcessed, result.SectionsFailed))
	sb.WriteString(fmt.Sprintf("Elapsed:   %dms\n", result.GenerationTimeMs))

	if len(result.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		count := min(len(result.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Errors[i]))
		}
		if len(result.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Errors)-maxItemsToShow))
		}
	}

	p.printBox("GENERATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
