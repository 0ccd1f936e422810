// pkg/frame/xlsx.go
package frame

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one sheet of an Excel workbook into a frame. An empty sheet
// name selects the first sheet. The first populated row is the header.
func ReadXLSX(path, sheet string) (*Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer wb.Close()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
	}

	// Skip fully empty leading rows (title banners above the real header)
	start := 0
	for start < len(rows) && isEmptyRow(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, fmt.Errorf("sheet %s of %s is empty", sheet, path)
	}

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return New(name, rows[start], rows[start+1:])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
