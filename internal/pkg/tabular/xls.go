// internal/pkg/tabular/xls.go
package tabular

import (
	"bytes"
	"io"

	"leaddist-service/internal/domain/record"

	"github.com/extrame/xls"
)

// XLSParser reads the first sheet of a legacy BIFF workbook. All cells are strings.
type XLSParser struct{}

func (XLSParser) Parse(r io.Reader) (rows []record.FieldMap, err error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, malformed("xls", err)
		}
		rs = bytes.NewReader(data)
	}

	// the decoder panics on some truncated files
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, malformed("xls", io.ErrUnexpectedEOF)
		}
	}()

	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, malformed("xls", err)
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	header := sheet.Row(0)
	if header == nil {
		return nil, nil
	}
	headers := headerNames(xlsCells(header))

	for i := 1; i <= int(sheet.MaxRow); i++ {
		src := sheet.Row(i)
		if src == nil {
			continue
		}
		cells := xlsCells(src)
		row := buildRow(headers, len(cells), func(c int) record.Value {
			return record.String(cells[c])
		})
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func xlsCells(row *xls.Row) []string {
	last := row.LastCol()
	cells := make([]string, 0, last)
	for c := 0; c < last; c++ {
		cells = append(cells, row.Col(c))
	}
	return cells
}
