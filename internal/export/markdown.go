// internal/export/markdown.go
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"mcp-meal-plan/internal/models"
)

// MarkdownExporter writes one heading per slot followed by its group lines.
type MarkdownExporter struct{}

func (MarkdownExporter) Export(plan *models.Plan) ([]byte, error) {
	if err := checkPlan(plan); err != nil {
		return nil, err
	}
	return []byte(renderMarkdown(plan)), nil
}

func (MarkdownExporter) FileExtension() string { return ".md" }

func (MarkdownExporter) MimeType() string { return "text/markdown" }

func renderMarkdown(plan *models.Plan) string {
	var b strings.Builder
	b.WriteString("# Plan alimenticio\n")
	if !plan.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "\n_%s_\n", plan.CreatedAt.Format("2006-01-02 15:04"))
	}

	for _, slot := range plan.Slots {
		fmt.Fprintf(&b, "\n## %s\n\n", escapeMarkdown(slot.Name))
		for _, group := range slot.Groups {
			// Lines already start with a bullet glyph; the list marker keeps
			// them as separate items when rendered.
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(group.Line))
		}
	}

	if len(plan.Issues) > 0 {
		b.WriteString("\n## Avisos\n\n")
		for _, issue := range plan.Issues {
			fmt.Fprintf(&b, "- %s / grupo %d: %s\n", escapeMarkdown(issue.Slot), issue.GroupID, escapeMarkdown(issue.Error))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `#`, `\#`, `<`, `&lt;`, `[`, `\[`, `]`, `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// HTMLExporter renders the Markdown form to HTML.
type HTMLExporter struct{}

func (HTMLExporter) Export(plan *models.Plan) ([]byte, error) {
	if err := checkPlan(plan); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(renderMarkdown(plan)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func (HTMLExporter) FileExtension() string { return ".html" }

func (HTMLExporter) MimeType() string { return "text/html" }
