package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cascs/internal"
)

var registryHeader = []string{"id", "name", "address", "postcode", "active"}

// registryDoc is the JSON container: {"cascs": [...]}.
type registryDoc struct {
	Cascs []recordJSON `json:"cascs"`
}

// recordJSON is the on-disk JSON shape. Postcode is a pointer so a club
// without one serializes as null, not "".
type recordJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Postcode *string `json:"postcode"`
	Active   bool    `json:"active"`
}

func toRecordJSON(rec internal.Record) recordJSON {
	out := recordJSON{ID: rec.ID, Name: rec.Name, Address: rec.Address, Active: rec.Active}
	if rec.Postcode != "" {
		pc := rec.Postcode
		out.Postcode = &pc
	}
	return out
}

func (r recordJSON) record() internal.Record {
	rec := internal.Record{ID: r.ID, Name: r.Name, Address: r.Address, Active: r.Active}
	if r.Postcode != nil {
		rec.Postcode = *r.Postcode
	}
	return rec
}

// LoadRegistry reads a previously persisted registry, keyed by id. The
// format follows the filename extension; anything but .csv/.json is a
// configuration error. An empty path means no prior registry.
func LoadRegistry(path string) (map[string]internal.Record, error) {
	if path == "" {
		return map[string]internal.Record{}, nil
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []internal.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readRegistryCSV(blob)
	case ".json":
		var doc registryDoc
		err = json.Unmarshal(blob, &doc)
		for _, r := range doc.Cascs {
			records = append(records, r.record())
		}
	default:
		return nil, fmt.Errorf("unsupported registry format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}

	out := make(map[string]internal.Record, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		out[rec.ID] = rec
	}
	return out, nil
}

func readRegistryCSV(blob []byte) ([]internal.Record, error) {
	reader := csv.NewReader(strings.NewReader(string(blob)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []internal.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, internal.Record{
			ID:       cell(row, "id"),
			Name:     cell(row, "name"),
			Address:  cell(row, "address"),
			Postcode: cell(row, "postcode"),
			Active:   strings.EqualFold(cell(row, "active"), "true"),
		})
	}
	return out, nil
}

// ValidateOutputPaths rejects unknown output extensions up front, before
// the fetch starts: a bad destination must never cost a half-written run.
func ValidateOutputPaths(paths []string) error {
	for _, path := range paths {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json", ".xlsx":
		default:
			return fmt.Errorf("unsupported output format: %s", path)
		}
	}
	return nil
}

// WriteRegistry serializes the merged registry to path, format by
// extension. Field order and line endings are fixed so successive runs
// diff cleanly.
func WriteRegistry(path string, records []internal.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeRegistryCSV(path, records)
	case ".json":
		return writeRegistryJSON(path, records)
	case ".xlsx":
		return writeRegistryXLSX(path, records)
	default:
		return fmt.Errorf("unsupported output format: %s", path)
	}
}

func writeRegistryCSV(path string, records []internal.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(registryHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.ID, rec.Name, rec.Address, rec.Postcode, strconv.FormatBool(rec.Active)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeRegistryJSON(path string, records []internal.Record) error {
	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordJSON(rec))
	}
	blob, err := json.MarshalIndent(registryDoc{Cascs: out}, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}

func writeRegistryXLSX(path string, records []internal.Record) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, col := range registryHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for i, rec := range records {
		row := i + 2
		values := []any{rec.ID, rec.Name, rec.Address, rec.Postcode, rec.Active}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	return f.SaveAs(path)
}

// WriteMatchReport writes the reporter's candidate pairs as CSV with the
// id1,id2,name header the curation tooling expects.
func WriteMatchReport(path string, pairs []internal.MatchPair) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id1", "id2", "name"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := w.Write([]string{p.ID1, p.ID2, p.Key}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
