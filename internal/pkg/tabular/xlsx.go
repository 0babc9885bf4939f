// internal/pkg/tabular/xlsx.go
package tabular

import (
	"io"
	"strconv"

	"leaddist-service/internal/domain/record"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of an Office Open XML workbook.
// Numeric cells become numbers, everything else strings.
type XLSXParser struct{}

func (XLSXParser) Parse(r io.Reader) ([]record.FieldMap, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, malformed("xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, malformed("xlsx", err)
	}
	if len(grid) == 0 {
		return nil, nil
	}
	headers := headerNames(grid[0])

	rows := make([]record.FieldMap, 0, len(grid)-1)
	for r := 1; r < len(grid); r++ {
		cells := grid[r]
		rowNum := r + 1
		row := buildRow(headers, len(cells), func(i int) record.Value {
			return xlsxValue(f, sheet, i+1, rowNum, cells[i])
		})
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func xlsxValue(f *excelize.File, sheet string, col, row int, raw string) record.Value {
	if raw == "" {
		return record.String("")
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return record.String(raw)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return record.String(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return record.Number(n)
		}
	}
	return record.String(raw)
}
