// internal/export/export.go
package export

import (
	"fmt"
	"strings"

	"mcp-meal-plan/internal/models"
)

// Exporter re-serialises an assembled plan. Exporters only read the
// structured plan; they never re-parse rendered text.
type Exporter interface {
	Export(plan *models.Plan) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"json", "csv", "markdown", "html"}

func ForFormat(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSONExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	case "markdown", "md":
		return MarkdownExporter{}, nil
	case "html":
		return HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

func checkPlan(plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}
	return nil
}
