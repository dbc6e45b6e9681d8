package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingUsernameColumn indicates the input has no username header.
var ErrMissingUsernameColumn = errors.New("input has no username column")

// ProfileRow is one username-keyed row of a backfill file.
type ProfileRow struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column key.
func (r ProfileRow) Get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

// ReadProfileRows loads the rows of a CSV file, or of the first sheet of an
// .xlsx workbook, keyed by the lower-cased header row.
func ReadProfileRows(path string) ([]ProfileRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbookRows(path)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return ReadProfileCSV(file)
	}
}

// ReadProfileCSV parses CSV rows from r.
func ReadProfileCSV(r io.Reader) ([]ProfileRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rowsFromTable(table)
}

func readWorkbookRows(path string) ([]ProfileRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rowsFromTable(table)
}

func rowsFromTable(table [][]string) ([]ProfileRow, error) {
	if len(table) == 0 {
		return nil, ErrMissingUsernameColumn
	}

	header := make([]string, len(table[0]))
	hasUsername := false
	for i, name := range table[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if header[i] == "username" {
			hasUsername = true
		}
	}
	if !hasUsername {
		return nil, ErrMissingUsernameColumn
	}

	rows := make([]ProfileRow, 0, len(table)-1)
	for i, record := range table[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := ProfileRow{Line: i + 2, Values: make(map[string]string, len(header))}
		for col, name := range header {
			if name == "" || col >= len(record) {
				continue
			}
			row.Values[name] = record[col]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
