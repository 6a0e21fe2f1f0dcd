// internal/export/json.go
package export

import (
	"encoding/json"

	"mcp-meal-plan/internal/models"
)

// JSONExporter writes the complete plan structure.
type JSONExporter struct{}

func (JSONExporter) Export(plan *models.Plan) ([]byte, error) {
	if err := checkPlan(plan); err != nil {
		return nil, err
	}
	return json.MarshalIndent(plan, "", "  ")
}

func (JSONExporter) FileExtension() string { return ".json" }

func (JSONExporter) MimeType() string { return "application/json" }
