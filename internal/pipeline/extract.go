package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"cascs/internal"
)

// Column names expected in the published spreadsheets. The address columns
// are matched by prefix (Address 1, Address 2, ...); everything else in the
// header row is ignored.
const (
	nameColumn          = "Organisation Name"
	postcodeColumn      = "Postcode"
	addressColumnPrefix = "Address"
)

// Rows narrower than this are preamble (titles, notes) rather than the
// header row.
const minHeaderCells = 6

// ParseRows turns a downloaded attachment into raw cell rows, picking the
// parser from the filename extension. XLSX reads the first sheet only, like
// the published workbooks carry their data.
func ParseRows(filename string, blob []byte) ([][]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return parseXLSXRows(blob)
	case strings.HasSuffix(lower, ".csv"):
		return parseCSVRows(blob)
	default:
		return nil, fmt.Errorf("unsupported attachment type: %s", filename)
	}
}

func parseXLSXRows(blob []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func parseCSVRows(blob []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(blob))
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ExtractRecords maps raw rows onto Records using the first sufficiently
// wide row as the header. Data rows shorter than the header are padded with
// empty cells, blank rows are skipped, and rows with no usable organisation
// name are dropped silently — ragged source data is expected, not an error.
// Ids are not assigned here; that is the reconciler's job.
func ExtractRecords(rows [][]string) []internal.Record {
	var header []string
	out := []internal.Record{}

	for _, row := range rows {
		if header == nil {
			if len(row) >= minHeaderCells {
				header = trimCells(row)
			}
			continue
		}
		if len(row) == 0 {
			continue
		}

		cells := padCells(trimCells(row), len(header))
		rec := recordFromRow(header, cells)
		if rec.Name == "" {
			continue
		}
		out = append(out, rec)
	}

	return out
}

func recordFromRow(header, cells []string) internal.Record {
	var name, postcode string
	addressLines := []string{}

	for i, col := range header {
		value := cells[i]
		if col == "" || value == "" {
			continue
		}
		switch {
		case col == nameColumn:
			name = value
		case col == postcodeColumn:
			postcode = value
		case strings.HasPrefix(col, addressColumnPrefix):
			addressLines = append(addressLines, value)
		}
	}

	return internal.Record{
		Name:     Titlecase(name),
		Address:  strings.Join(addressLines, ", "),
		Postcode: postcode,
	}
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func padCells(cells []string, width int) []string {
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}
