package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bizreport/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExampleManifest(t *testing.T) {
	ds, err := Load(filepath.Join("..", "..", "examples", "report.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Business Performance Report", ds.Title)
	require.Len(t, ds.Sections, 2)

	sales := ds.Sections[0]
	assert.Equal(t, "Sales Performance", sales.Name)
	assert.Equal(t, models.ChartLine, sales.Chart)
	assert.True(t, sales.HasChart())
	assert.Equal(t, 6, sales.Table.Len())
	assert.Equal(t, []models.Column{
		{Name: "Date", Type: models.ColumnTime},
		{Name: "Revenue", Type: models.ColumnInt},
		{Name: "Units", Type: models.ColumnInt},
	}, sales.Table.Columns)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), sales.Table.Rows[0][0])
	assert.Equal(t, int64(45000), sales.Table.Rows[0][1])

	inv := ds.Sections[1]
	assert.Equal(t, "Inventory Status", inv.Name)
	assert.Equal(t, models.ChartBar, inv.Chart)
	assert.Equal(t, "Product", inv.XColumn)
	assert.Equal(t, "Stock", inv.YColumn)
	assert.Equal(t, []string{"Product", "Stock", "Reorder_Point"}, inv.Table.ColumnNames())
	require.NoError(t, inv.Table.Validate())
}

func TestLoadResolvesDataRelativeToManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o755))
	writeFile(t, filepath.Join(dir, "data"), "q.csv", "Quarter,Margin\nQ1,0.25\nQ2,\n")
	path := writeFile(t, dir, "m.yaml", "sections:\n  - name: Margins\n    data: data/q.csv\n")

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, ds.Title)

	sec := ds.Sections[0]
	assert.Equal(t, models.ChartLine, sec.Chart, "graph type defaults to line")
	assert.False(t, sec.HasChart())
	assert.Equal(t, models.ColumnFloat, sec.Table.Columns[1].Type)
	assert.Equal(t, 0.25, sec.Table.Rows[0][1])
	assert.Nil(t, sec.Table.Rows[1][1], "empty field is a missing value")
}

func TestLoadPreservesSectionOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"Zeta", "Alpha", "Mid"}
	var sb strings.Builder
	sb.WriteString("sections:\n")
	for _, n := range names {
		writeFile(t, dir, n+".csv", "A,B\n1,2\n")
		sb.WriteString("  - name: " + n + "\n    data: " + n + ".csv\n")
	}
	ds, err := Load(writeFile(t, dir, "m.yaml", sb.String()))
	require.NoError(t, err)

	var got []string
	for _, s := range ds.Sections {
		got = append(got, s.Name)
	}
	assert.Equal(t, names, got)
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"empty", "", ErrManifest},
		{"no sections", "title: x\n", ErrManifest},
		{"unknown key", "sections:\n  - name: A\n    data: a.csv\n    graphtype: bar\n", ErrManifest},
		{"missing name", "sections:\n  - data: a.csv\n", ErrManifest},
		{"missing data", "sections:\n  - name: A\n", ErrManifest},
		{"unsupported kind", "sections:\n  - name: A\n    data: a.csv\n    graph_type: pie\n", models.ErrUnsupportedChartKind},
		{"duplicate", "sections:\n  - {name: A, data: a.csv}\n  - {name: A, data: b.csv}\n", models.ErrDuplicateSection},
		{"bad type", "sections:\n  - name: A\n    data: a.csv\n    types: {X: decimal}\n", ErrManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrManifest)
		})
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrManifest)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMissingCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.yaml", "sections:\n  - name: Sales\n    data: gone.csv\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCSV)
	assert.Contains(t, err.Error(), `section "Sales"`)
}

func TestReadCSVInference(t *testing.T) {
	in := "\ufeffName, Count ,Price,When,Note\n" +
		"a,1,2.5,2024-03-01,x\n" +
		"b,\"1,200\",3,2024-03-02 10:30:00,\n"
	tbl, err := ReadCSV(strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, []models.Column{
		{Name: "Name", Type: models.ColumnString},
		{Name: "Count", Type: models.ColumnInt},
		{Name: "Price", Type: models.ColumnFloat},
		{Name: "When", Type: models.ColumnTime},
		{Name: "Note", Type: models.ColumnString},
	}, tbl.Columns)
	assert.Equal(t, int64(1200), tbl.Rows[1][1])
	assert.Equal(t, 3.0, tbl.Rows[1][2])
	assert.Nil(t, tbl.Rows[1][4])
	assert.NoError(t, tbl.Validate())
}

func TestReadCSVTypeOverride(t *testing.T) {
	in := "Code,Amount\n001,10\n002,20\n"
	tbl, err := ReadCSV(strings.NewReader(in), map[string]models.ColumnType{
		"Code":   models.ColumnString,
		"Amount": models.ColumnFloat,
	})
	require.NoError(t, err)
	assert.Equal(t, "001", tbl.Rows[0][0])
	assert.Equal(t, 10.0, tbl.Rows[0][1])
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		types map[string]models.ColumnType
	}{
		{"empty input", "", nil},
		{"blank header", "A,,C\n1,2,3\n", nil},
		{"duplicate header", "A,A\n1,2\n", nil},
		{"ragged row", "A,B\n1,2\n3\n", nil},
		{"override unknown column", "A\n1\n", map[string]models.ColumnType{"B": models.ColumnInt}},
		{"override does not parse", "A\nhello\n", map[string]models.ColumnType{"A": models.ColumnInt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), tt.types)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCSV), "got %v", err)
		})
	}
}

func TestReadCSVDecimalCommaStaysText(t *testing.T) {
	in := "Region,Score,Total\nNorth,\"1,5\",\"12,345.5\"\nSouth,\"2,25\",\"1,000\"\n"
	tbl, err := ReadCSV(strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, models.ColumnString, tbl.Columns[1].Type)
	assert.Equal(t, "1,5", tbl.Rows[0][1])
	assert.Equal(t, "2,25", tbl.Rows[1][1])

	assert.Equal(t, models.ColumnFloat, tbl.Columns[2].Type, "well-formed grouping is still numeric")
	assert.Equal(t, 12345.5, tbl.Rows[0][2])
	assert.Equal(t, 1000.0, tbl.Rows[1][2])
}

func TestReadCSVNaNIsMissing(t *testing.T) {
	in := "Region,Score\nNorth,NaN\nSouth,5\nEast,inf\n"
	tbl, err := ReadCSV(strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, models.ColumnFloat, tbl.Columns[1].Type)
	assert.Nil(t, tbl.Rows[0][1])
	assert.Equal(t, 5.0, tbl.Rows[1][1])
	assert.Nil(t, tbl.Rows[2][1])
}
