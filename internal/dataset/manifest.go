// Package dataset loads report sections from a YAML manifest and CSV files.
//
// A manifest lists sections in display order:
//
//	title: Business Performance Report
//	sections:
//	  - name: Sales Performance
//	    data: sales.csv
//	    graph_type: line
//	    x_col: Date
//	    y_col: Revenue
//	    types: {Date: time}
//
// Data paths are resolved relative to the manifest file.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/bizreport/pkg/models"
)

var (
	ErrManifest = errors.New("dataset: invalid manifest")
	ErrCSV      = errors.New("dataset: invalid csv")
)

// Manifest is the on-disk description of a report.
type Manifest struct {
	Title    string        `yaml:"title"`
	Sections []SectionSpec `yaml:"sections"`

	dir string
}

// SectionSpec describes one section of the manifest.
type SectionSpec struct {
	Name      string            `yaml:"name"`
	Data      string            `yaml:"data"`
	GraphType string            `yaml:"graph_type"`
	XCol      string            `yaml:"x_col"`
	YCol      string            `yaml:"y_col"`
	Types     map[string]string `yaml:"types"`
}

// Dataset is a fully loaded manifest.
type Dataset struct {
	Title    string
	Sections []models.Section
}

// Load reads the manifest at path and every CSV it references.
func Load(path string) (*Dataset, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return m.Load()
}

// LoadManifest reads and validates a manifest without touching its data files.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrManifest, path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest YAML. Unknown keys are rejected so that
// typos like "graphtype" do not silently drop a chart.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrManifest)
		}
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	m.Title = strings.TrimSpace(m.Title)
	if len(m.Sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrManifest)
	}

	seen := make(map[string]bool, len(m.Sections))
	for i := range m.Sections {
		s := &m.Sections[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Data = strings.TrimSpace(s.Data)
		if s.Name == "" {
			return nil, fmt.Errorf("%w: section %d has no name", ErrManifest, i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: %w: %q", ErrManifest, models.ErrDuplicateSection, s.Name)
		}
		seen[s.Name] = true
		if s.Data == "" {
			return nil, fmt.Errorf("%w: section %q has no data file", ErrManifest, s.Name)
		}
		if _, err := models.ParseChartKind(s.GraphType); err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrManifest, s.Name, err)
		}
		if _, err := s.columnTypes(); err != nil {
			return nil, fmt.Errorf("%w: section %q: %w", ErrManifest, s.Name, err)
		}
	}
	return &m, nil
}

// Load reads every section's CSV, in manifest order.
func (m *Manifest) Load() (*Dataset, error) {
	ds := &Dataset{Title: m.Title, Sections: make([]models.Section, 0, len(m.Sections))}
	for _, spec := range m.Sections {
		sec, err := spec.load(m.dir)
		if err != nil {
			return nil, err
		}
		ds.Sections = append(ds.Sections, sec)
	}
	return ds, nil
}

func (s SectionSpec) load(dir string) (models.Section, error) {
	kind, err := models.ParseChartKind(s.GraphType)
	if err != nil {
		return models.Section{}, fmt.Errorf("%w: section %q: %w", ErrManifest, s.Name, err)
	}
	types, err := s.columnTypes()
	if err != nil {
		return models.Section{}, fmt.Errorf("%w: section %q: %w", ErrManifest, s.Name, err)
	}

	path := s.Data
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	table, err := LoadCSV(path, types)
	if err != nil {
		return models.Section{}, fmt.Errorf("section %q: %w", s.Name, err)
	}

	return models.Section{
		Name:    s.Name,
		Table:   table,
		Chart:   kind,
		XColumn: strings.TrimSpace(s.XCol),
		YColumn: strings.TrimSpace(s.YCol),
	}, nil
}

func (s SectionSpec) columnTypes() (map[string]models.ColumnType, error) {
	if len(s.Types) == 0 {
		return nil, nil
	}
	out := make(map[string]models.ColumnType, len(s.Types))
	for col, raw := range s.Types {
		ct := models.ColumnType(strings.ToLower(strings.TrimSpace(raw)))
		switch ct {
		case models.ColumnString, models.ColumnInt, models.ColumnFloat, models.ColumnTime:
			out[col] = ct
		default:
			return nil, fmt.Errorf("column %q: unknown type %q", col, raw)
		}
	}
	return out, nil
}
