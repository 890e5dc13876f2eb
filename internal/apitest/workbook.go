package apitest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// workbook renders rows into a single-sheet xlsx file.
func workbook(sheet string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Workbook builds an xlsx file for tests that need one on disk.
func Workbook(sheet string, rows [][]interface{}) ([]byte, error) {
	return workbook(sheet, rows)
}
