package models

import (
	"errors"
	"testing"
	"time"
)

func salesTable() Table {
	t := NewTable(
		Column{Name: "Date", Type: ColumnTime},
		Column{Name: "Revenue", Type: ColumnInt},
	)
	t.AddRow(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), int64(45000))
	t.AddRow(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), nil)
	return t
}

// --- Table ---

func TestTableLookup(t *testing.T) {
	tbl := salesTable()

	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
	if i, ok := tbl.ColumnIndex("Revenue"); !ok || i != 1 {
		t.Errorf("ColumnIndex(Revenue) = %d, %v", i, ok)
	}
	if tbl.HasColumn("Units") {
		t.Error("HasColumn(Units) should be false")
	}
	if c, ok := tbl.Column("Date"); !ok || c.Type != ColumnTime {
		t.Errorf("Column(Date) = %+v, %v", c, ok)
	}
	vals, ok := tbl.Values("Revenue")
	if !ok || len(vals) != 2 || vals[0] != int64(45000) || vals[1] != nil {
		t.Errorf("Values(Revenue) = %v, %v", vals, ok)
	}
	if _, ok := tbl.Values("Units"); ok {
		t.Error("Values(Units) should fail")
	}
}

func TestTableValidate(t *testing.T) {
	if err := salesTable().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	ragged := salesTable()
	ragged.AddRow(time.Now())
	if err := ragged.Validate(); !errors.Is(err, ErrRaggedRow) {
		t.Errorf("ragged: got %v, want ErrRaggedRow", err)
	}

	wrongType := salesTable()
	wrongType.AddRow("January", int64(1))
	if err := wrongType.Validate(); err == nil {
		t.Error("expected type mismatch error")
	}

	floats := NewTable(Column{Name: "Margin", Type: ColumnFloat})
	floats.AddRow(0.25)
	floats.AddRow(int64(1))
	if err := floats.Validate(); err != nil {
		t.Errorf("float column should accept int64: %v", err)
	}
}

func TestColumnTypeIsNumeric(t *testing.T) {
	for ct, want := range map[ColumnType]bool{
		ColumnInt: true, ColumnFloat: true, ColumnString: false, ColumnTime: false,
	} {
		if got := ct.IsNumeric(); got != want {
			t.Errorf("%s.IsNumeric() = %v, want %v", ct, got, want)
		}
	}
}

// --- Section ---

func TestParseChartKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ChartKind
		wantErr bool
	}{
		{"", ChartLine, false},
		{"line", ChartLine, false},
		{" BAR ", ChartBar, false},
		{"pie", "", true},
		{"scatter", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChartKind(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedChartKind) {
				t.Errorf("ParseChartKind(%q) error = %v, want ErrUnsupportedChartKind", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseChartKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSectionChart(t *testing.T) {
	s := Section{Name: "Sales", XColumn: "Date", YColumn: "Revenue"}
	if !s.HasChart() {
		t.Error("HasChart should be true with both axes")
	}
	if s.Kind() != ChartLine {
		t.Errorf("Kind() = %q, want line", s.Kind())
	}

	s.YColumn = ""
	if s.HasChart() {
		t.Error("HasChart should be false with one axis")
	}

	s.Chart = ChartBar
	if s.Kind() != ChartBar || !s.Kind().Valid() {
		t.Errorf("Kind() = %q", s.Kind())
	}
	if ChartKind("pie").Valid() {
		t.Error("pie should not be valid")
	}
}

func TestCheckUniqueNames(t *testing.T) {
	ok := []Section{{Name: "Sales"}, {Name: "Inventory"}}
	if err := CheckUniqueNames(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	dup := append(ok, Section{Name: "Sales"})
	if err := CheckUniqueNames(dup); !errors.Is(err, ErrDuplicateSection) {
		t.Errorf("got %v, want ErrDuplicateSection", err)
	}
}
