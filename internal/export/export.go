// Package export renders tabular record listings as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Table is a header row plus data rows. Numeric marks columns written as
// numbers in spreadsheets.
type Table struct {
	Sheet   string
	Headers []string
	Numeric []bool
	Rows    [][]string
}

// ParseFormat maps a query value to a supported format, defaulting to CSV.
func ParseFormat(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("export: unsupported format %q", value)
	}
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// Write renders t in the given format.
func Write(w io.Writer, format string, t Table) error {
	if format == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t Table) error {
	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("export: name sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	for i, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("export: header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("export: style %s: %w", cell, err)
		}
	}

	for r, row := range t.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if c < len(t.Numeric) && t.Numeric[c] {
				if n, perr := strconv.ParseFloat(value, 64); perr == nil {
					if err := f.SetCellFloat(sheet, cell, n, -1, 64); err != nil {
						return fmt.Errorf("export: cell %s: %w", cell, err)
					}
					continue
				}
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("export: cell %s: %w", cell, err)
			}
		}
	}

	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 15); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
