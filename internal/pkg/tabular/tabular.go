// internal/pkg/tabular/tabular.go
package tabular

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
)

// Parser turns an uploaded file into ordered rows keyed by the header row.
// Every header column is present in every row; blank rows are dropped.
type Parser interface {
	Parse(r io.Reader) ([]record.FieldMap, error)
}

const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

// SupportedExtensions lists the accepted upload formats.
var SupportedExtensions = []string{ExtCSV, ExtXLSX, ExtXLS}

// Extension returns the lower-cased extension of filename.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsSupported reports whether filename has an accepted extension.
func IsSupported(filename string) bool {
	_, err := ForFile(filename)
	return err == nil
}

// ForFile picks the parser for filename by extension.
func ForFile(filename string) (Parser, error) {
	switch Extension(filename) {
	case ExtCSV:
		return CSVParser{}, nil
	case ExtXLSX:
		return XLSXParser{}, nil
	case ExtXLS:
		return XLSParser{}, nil
	default:
		return nil, xerrors.ErrUnsupportedFileType
	}
}

func malformed(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", xerrors.ErrMalformedFile, format, err)
}

// headerNames cleans the header row; unnamed columns become _<index> and repeats get a _<n> suffix.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = "_" + strconv.Itoa(i)
		}
		names[i] = uniqueName(h, func(k string) bool { return taken[k] })
		taken[names[i]] = true
	}
	return names
}

// uniqueName returns key, or key_2, key_3 ... when key is already in use.
func uniqueName(key string, taken func(string) bool) string {
	if !taken(key) {
		return key
	}
	for n := 2; ; n++ {
		candidate := key + "_" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// buildRow assembles one FieldMap from header names and cell values.
// Cells past the header get synthetic _<index> names, suffixed if a header already uses one.
func buildRow(headers []string, width int, cell func(i int) record.Value) record.FieldMap {
	n := len(headers)
	if width > n {
		n = width
	}
	row := record.NewFieldMap(n)
	for i := 0; i < n; i++ {
		key := "_" + strconv.Itoa(i)
		if i < len(headers) {
			key = headers[i]
		} else {
			key = uniqueName(key, row.Has)
		}
		if i < width {
			row.Set(key, cell(i))
		} else {
			row.Set(key, record.String(""))
		}
	}
	return row
}
