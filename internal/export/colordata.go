package export

import (
	"time"

	"qcs/models"
)

// ColorDataTable lays color data rows out with their field labels as headers.
func ColorDataTable(rows []models.ColorData) Table {
	meta := models.ColorDataMeta
	headers := []string{"ID", meta.Label("batch_id"), meta.Label("timestamp"), meta.Label("category")}
	numeric := []bool{true, false, false, false}
	for _, name := range models.MeasurementFields {
		headers = append(headers, meta.Label(name))
		numeric = append(numeric, true)
	}
	headers = append(headers, meta.Label("comment"))
	numeric = append(numeric, false)

	t := Table{Sheet: "Color data", Headers: headers, Numeric: numeric, Rows: make([][]string, 0, len(rows))}
	for _, c := range rows {
		batch := ""
		if c.Batch != nil {
			batch = c.Batch.String()
		}
		values := c.Measurements()
		row := []string{
			uintString(c.ID),
			batch,
			c.Timestamp.UTC().Format(time.RFC3339),
			c.Category.Label(),
		}
		for _, name := range models.MeasurementFields {
			row = append(row, values[name].StringFixed(models.MeasurementDecimalPlaces))
		}
		row = append(row, c.Comment)
		t.Rows = append(t.Rows, row)
	}
	return t
}
