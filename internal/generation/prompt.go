package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/types"
)

// buildPrompt assembles the rewrite instruction for one section: the
// original fragment, the project context, calculated metrics the model
// should draw numbers from, and a strict HTML-only output directive.
func buildPrompt(section types.Section, ctx types.ProjectContext, metrics analysis.ProjectMetrics) string {
	var sb strings.Builder

	sb.WriteString("Rewrite the following document section using the new project context.\n\n")
	sb.WriteString("Original:\n")
	sb.WriteString(section.HTMLContent)
	sb.WriteString("\n\n")

	sb.WriteString("Context:\n")
	fmt.Fprintf(&sb, "Project name: %s\n", ctx.ProjectName)
	fmt.Fprintf(&sb, "Project description: %s\n", ctx.ProjectDescription)
	fmt.Fprintf(&sb, "User prompt:\n%s\n", ctx.PromptText)

	sb.WriteString("\nProject metrics:\n")
	fmt.Fprintf(&sb, "- Complexity score: %.2f\n", metrics.ComplexityScore)
	fmt.Fprintf(&sb, "- Total estimated hours: %d\n", metrics.EstimatedHours["total"])
	fmt.Fprintf(&sb, "- Duration: %s\n", metrics.Timeline["duration"])
	fmt.Fprintf(&sb, "- Resources: %s\n", strings.Join(metrics.Resources, ", "))

	if strings.Contains(section.HTMLContent, "<table") {
		sb.WriteString("\nThis section contains a table. Fill the table with new, ")
		sb.WriteString("project-specific values derived from the project context and ")
		sb.WriteString("metrics above. Do not copy the original cell values. ")
		sb.WriteString("Suggested source data:\n")
		fmt.Fprintf(&sb, "Timeline: %s\n", renderMap(metrics.Timeline))
		fmt.Fprintf(&sb, "Estimated hours: %s\n", renderHours(metrics.EstimatedHours))
	}

	if len(ctx.JSONOverrides) > 0 {
		fmt.Fprintf(&sb, "\nOverrides:\n%s\n", renderJSON(ctx.JSONOverrides))
	}

	sb.WriteString("\nReturn the result as valid HTML only. Do not use Markdown, ")
	sb.WriteString("do not use triple backticks, do not prefix with 'html'. ")
	sb.WriteString("If you need headings, use <h1>, <h2>, etc. If you need lists, ")
	sb.WriteString("use <ul>/<ol> and <li>. Do not include any code block markers ")
	sb.WriteString("or Markdown syntax.")

	return sb.String()
}

func renderJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func renderMap(m map[string]string) string {
	return renderJSON(m)
}

func renderHours(m map[string]int) string {
	return renderJSON(m)
}
