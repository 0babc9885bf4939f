// internal/pkg/tabular/csv.go
package tabular

import (
	"encoding/csv"
	"errors"
	"io"

	"leaddist-service/internal/domain/record"
)

// CSVParser reads comma-separated files with a header row. All cells are strings.
type CSVParser struct{}

func (CSVParser) Parse(r io.Reader) ([]record.FieldMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	raw, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, malformed("csv", err)
	}
	headers := headerNames(raw)

	var rows []record.FieldMap
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("csv", err)
		}

		row := buildRow(headers, len(cells), func(i int) record.Value {
			return record.String(cells[i])
		})
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
