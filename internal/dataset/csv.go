package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seenimoa/bizreport/pkg/models"
	"github.com/seenimoa/bizreport/pkg/utils"
)

// LoadCSV reads a CSV file into a typed table. See ReadCSV.
func LoadCSV(path string, types map[string]models.ColumnType) (models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("%w: open %s: %w", ErrCSV, path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, types)
	if err != nil {
		return models.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads a header row followed by data rows. Column types are
// inferred from the data unless named in types. Empty fields become nil cells.
func ReadCSV(r io.Reader, types map[string]models.ColumnType) (models.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Table{}, fmt.Errorf("%w: missing header row", ErrCSV)
		}
		return models.Table{}, fmt.Errorf("%w: read header: %w", ErrCSV, err)
	}
	// Strip a UTF-8 BOM left by spreadsheet exports.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return models.Table{}, fmt.Errorf("%w: column %d has no name", ErrCSV, i+1)
		}
		if seen[h] {
			return models.Table{}, fmt.Errorf("%w: duplicate column %q", ErrCSV, h)
		}
		seen[h] = true
		header[i] = h
	}
	for name := range types {
		if !seen[name] {
			return models.Table{}, fmt.Errorf("%w: type override for unknown column %q", ErrCSV, name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return models.Table{}, fmt.Errorf("%w: %w", ErrCSV, err)
	}

	columns := make([]models.Column, len(header))
	for i, name := range header {
		ct, ok := types[name]
		if !ok {
			raw := make([]string, len(records))
			for r, rec := range records {
				raw[r] = rec[i]
			}
			ct = utils.InferColumnType(raw)
		}
		columns[i] = models.Column{Name: name, Type: ct}
	}

	t := models.NewTable(columns...)
	for r, rec := range records {
		row := make([]any, len(rec))
		for c, raw := range rec {
			cell, err := utils.ParseCell(raw, columns[c].Type)
			if err != nil {
				// header is line 1
				return models.Table{}, fmt.Errorf("%w: line %d column %q: %w", ErrCSV, r+2, columns[c].Name, err)
			}
			row[c] = cell
		}
		t.AddRow(row...)
	}
	return t, nil
}
