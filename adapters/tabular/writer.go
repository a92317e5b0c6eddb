package tabular

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes a table back out, cells ordered by the header row.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(rowValues(t.Headers, row)); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteXLSX writes a table to Sheet1 of a new workbook.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	if err := f.SetSheetRow(sheet, "A1", cellsOf(t.Headers)); err != nil {
		return err
	}
	for r, row := range t.Rows {
		start, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, start, cellsOf(rowValues(t.Headers, row))); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func rowValues(headers []string, row RowData) []string {
	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = row[h]
	}
	return values
}

func cellsOf(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
