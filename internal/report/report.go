package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bizreport/internal/infra"
	"github.com/seenimoa/bizreport/pkg/models"
	"github.com/seenimoa/bizreport/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Builder — Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

const (
	// DefaultTitle is the heading of every generated report.
	DefaultTitle = "Business Performance Report"
	// DefaultOutputPath is where Generate writes when no path is given.
	DefaultOutputPath = "report.html"
)

var (
	ErrMissingColumn    = errors.New("report: column not found in section table")
	ErrNonNumericColumn = errors.New("report: chart value column is not numeric")
	ErrChartRender      = errors.New("report: chart rendering failed")
	ErrFileWrite        = errors.New("report: cannot write report file")
)

// ColumnError reports a chart column problem in a named section.
type ColumnError struct {
	Section string
	Column  string
	Err     error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: section %q, column %q", e.Err, e.Section, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// RenderedReport is a finished HTML document and the file it was written to.
type RenderedReport struct {
	HTML        string
	Path        string
	GeneratedAt time.Time
}

// Builder assembles sections into an HTML report.
type Builder struct {
	title  string
	clock  infra.Clock
	charts *ChartRenderer
	log    zerolog.Logger
	tmpl   *template.Template
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the source of the "Generated on" timestamp.
func WithClock(c infra.Clock) Option {
	return func(b *Builder) { b.clock = c }
}

// WithTitle overrides the report heading.
func WithTitle(title string) Option {
	return func(b *Builder) {
		if title != "" {
			b.title = title
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithChartConfig overrides the chart layout.
func WithChartConfig(cfg ChartConfig) Option {
	return func(b *Builder) { b.charts = NewChartRenderer(cfg) }
}

// New creates a Builder with the default title, system clock and chart layout.
func New(opts ...Option) *Builder {
	b := &Builder{
		title:  DefaultTitle,
		clock:  infra.SystemClock,
		charts: NewChartRenderer(DefaultChartConfig()),
		log:    zerolog.Nop(),
		tmpl:   template.Must(template.New("report").Parse(ReportTemplate)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// pageData is the template model for ReportTemplate.
type pageData struct {
	Title       string
	GeneratedAt string
	Sections    []sectionData
}

type sectionData struct {
	Name     string
	HasChart bool
	Chart    template.HTML
	Headers  []string
	Rows     [][]string
}

// Build renders sections, in order, into one HTML document.
func (b *Builder) Build(sections []models.Section) (string, error) {
	html, _, err := b.build(sections)
	return html, err
}

func (b *Builder) build(sections []models.Section) (string, time.Time, error) {
	if err := models.CheckUniqueNames(sections); err != nil {
		return "", time.Time{}, err
	}

	now := b.clock.Now()
	data := pageData{
		Title:       b.title,
		GeneratedAt: utils.ReportTimestamp(now),
		Sections:    make([]sectionData, 0, len(sections)),
	}

	for _, s := range sections {
		sd, err := b.buildSection(s)
		if err != nil {
			return "", time.Time{}, err
		}
		data.Sections = append(data.Sections, sd)
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", time.Time{}, fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), now, nil
}

func (b *Builder) buildSection(s models.Section) (sectionData, error) {
	if err := s.Table.Validate(); err != nil {
		return sectionData{}, fmt.Errorf("section %q: %w", s.Name, err)
	}
	// A single declared axis draws nothing but must still name a real column.
	for _, col := range []string{s.XColumn, s.YColumn} {
		if col != "" && !s.Table.HasColumn(col) {
			return sectionData{}, &ColumnError{Section: s.Name, Column: col, Err: ErrMissingColumn}
		}
	}
	if s.Chart != "" && !s.Chart.Valid() {
		return sectionData{}, fmt.Errorf("section %q: %w: %q", s.Name, models.ErrUnsupportedChartKind, s.Chart)
	}

	sd := sectionData{
		Name:    s.Name,
		Headers: s.Table.ColumnNames(),
		Rows:    make([][]string, len(s.Table.Rows)),
	}
	for i, row := range s.Table.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = utils.FormatCell(cell)
		}
		sd.Rows[i] = cells
	}

	if s.HasChart() {
		markup, err := b.charts.Render(s.Table, s.XColumn, s.YColumn, s.Name, s.Kind())
		if err != nil {
			return sectionData{}, err
		}
		sd.HasChart = true
		sd.Chart = markup
	}

	b.log.Debug().
		Str("section", s.Name).
		Int("rows", s.Table.Len()).
		Bool("chart", sd.HasChart).
		Msg("section rendered")
	return sd, nil
}

// Write persists html to path atomically, replacing any existing file.
func (b *Builder) Write(html, path string) error {
	if path == "" {
		path = DefaultOutputPath
	}
	if err := infra.WriteFileAtomic(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileWrite, path, err)
	}
	return nil
}

// Generate builds the report and writes it to path. On any failure no
// file is created or modified.
func (b *Builder) Generate(sections []models.Section, path string) (*RenderedReport, error) {
	if path == "" {
		path = DefaultOutputPath
	}
	start := time.Now()

	html, at, err := b.build(sections)
	if err != nil {
		return nil, err
	}
	if err := b.Write(html, path); err != nil {
		return nil, err
	}

	b.log.Info().
		Str("path", path).
		Int("sections", len(sections)).
		Int("bytes", len(html)).
		Str("took", utils.FormatDuration(time.Since(start))).
		Msg("report generated")

	return &RenderedReport{HTML: html, Path: path, GeneratedAt: at}, nil
}
