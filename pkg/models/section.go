package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedChartKind = errors.New("models: unsupported chart kind")
	ErrDuplicateSection     = errors.New("models: duplicate section name")
)

// ChartKind is the visual form of a section chart.
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// ParseChartKind converts a user-supplied graph type into a ChartKind.
// An empty string selects the default line chart.
func ParseChartKind(s string) (ChartKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ChartLine):
		return ChartLine, nil
	case string(ChartBar):
		return ChartBar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChartKind, s)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k ChartKind) Valid() bool {
	return k == ChartLine || k == ChartBar
}

// Section is one named block of a report: a table and an optional chart.
type Section struct {
	Name    string    `json:"name"`
	Table   Table     `json:"table"`
	Chart   ChartKind `json:"graph_type,omitempty"` // empty means line
	XColumn string    `json:"x_col,omitempty"`
	YColumn string    `json:"y_col,omitempty"`
}

// HasChart reports whether the section declares both chart axes.
func (s Section) HasChart() bool {
	return s.XColumn != "" && s.YColumn != ""
}

// Kind returns the section chart kind, defaulting to line.
func (s Section) Kind() ChartKind {
	if s.Chart == "" {
		return ChartLine
	}
	return s.Chart
}

// CheckUniqueNames fails with ErrDuplicateSection on the first repeated name.
func CheckUniqueNames(sections []Section) error {
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
