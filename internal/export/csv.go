// internal/export/csv.go
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"mcp-meal-plan/internal/models"
)

var csvHeader = []string{"slot", "group_id", "group", "scalar", "quantity", "display", "description", "text"}

// CSVExporter writes one record per food item. The quantity column holds the
// single-token form ("3/2") so spreadsheets and re-imports can read it;
// display holds the mixed form ("1 ½").
type CSVExporter struct{}

func (CSVExporter) Export(plan *models.Plan) ([]byte, error) {
	if err := checkPlan(plan); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, slot := range plan.Slots {
		for _, group := range slot.Groups {
			for _, item := range group.Items {
				record := []string{
					slot.Name,
					strconv.Itoa(group.GroupID),
					group.Name,
					group.Scalar,
					item.Quantity,
					item.Display,
					item.Description,
					item.Text,
				}
				if err := w.Write(record); err != nil {
					return nil, err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (CSVExporter) FileExtension() string { return ".csv" }

func (CSVExporter) MimeType() string { return "text/csv" }
