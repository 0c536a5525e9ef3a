// Package report assembles business data sections into a single
// self-contained HTML report with inline SVG charts.
package report

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/seenimoa/bizreport/pkg/models"
	"github.com/seenimoa/bizreport/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Chart Renderer — go-chart SVG output, inlined into the report
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for section charts.
type ChartConfig struct {
	Width        int // SVG width in pixels (default: 900)
	Height       int // SVG height in pixels (default: 400)
	MarginTop    int // padding above the plot, room for the title
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BarWidth     int // bar width in pixels (default: 40)
	BarSpacing   int // gap between bars (default: 20)
}

// DefaultChartConfig returns the chart layout used by every report.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        900,
		Height:       400,
		MarginTop:    50,
		MarginRight:  20,
		MarginBottom: 20,
		MarginLeft:   20,
		BarWidth:     40,
		BarSpacing:   20,
	}
}

func (c ChartConfig) padding() chart.Box {
	return chart.Box{Top: c.MarginTop, Left: c.MarginLeft, Right: c.MarginRight, Bottom: c.MarginBottom}
}

// ChartRenderer turns a table column pair into embeddable chart markup.
// It holds no mutable state and is safe for concurrent use.
type ChartRenderer struct {
	cfg ChartConfig
}

// NewChartRenderer creates a renderer. A zero config selects the defaults.
func NewChartRenderer(cfg ChartConfig) *ChartRenderer {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	return &ChartRenderer{cfg: cfg}
}

// Render plots yColumn against xColumn as a chart of the given kind and
// returns an inline SVG fragment.
func (r *ChartRenderer) Render(t models.Table, xColumn, yColumn, title string, kind models.ChartKind) (template.HTML, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedChartKind, kind)
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("section %q: %w", title, err)
	}
	xCol, ok := t.Column(xColumn)
	if !ok {
		return "", &ColumnError{Section: title, Column: xColumn, Err: ErrMissingColumn}
	}
	yCol, ok := t.Column(yColumn)
	if !ok {
		return "", &ColumnError{Section: title, Column: yColumn, Err: ErrMissingColumn}
	}
	if !yCol.Type.IsNumeric() {
		return "", &ColumnError{Section: title, Column: yColumn, Err: ErrNonNumericColumn}
	}

	if t.Len() == 0 {
		return template.HTML(emptySVG(r.cfg, title, "No data available")), nil
	}

	xs, _ := t.Values(xColumn)
	ys, _ := t.Values(yColumn)

	var (
		buf bytes.Buffer
		err error
	)
	switch kind {
	case models.ChartBar:
		err = r.barChart(title, xs, ys, yColumn).Render(chart.SVG, &buf)
	case models.ChartLine:
		var c chart.Chart
		c, err = r.lineChart(title, xCol, xs, ys, yColumn)
		if err == nil {
			err = c.Render(chart.SVG, &buf)
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: section %q: %v", ErrChartRender, title, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *ChartRenderer) background() chart.Style {
	return chart.Style{
		Padding:   r.cfg.padding(),
		FillColor: drawing.ColorTransparent,
	}
}

func canvas() chart.Style {
	return chart.Style{FillColor: drawing.ColorTransparent}
}

func seriesStyle() chart.Style {
	return chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 2,
	}
}

// lineChart picks the series type from the x column: time, numeric, or
// categorical (plotted by row position with labelled ticks).
func (r *ChartRenderer) lineChart(title string, xCol models.Column, xs, ys []any, yName string) (chart.Chart, error) {
	c := chart.Chart{
		Title:      title,
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		Background: r.background(),
		Canvas:     canvas(),
		XAxis:      chart.XAxis{Name: xCol.Name},
		YAxis:      chart.YAxis{Name: yName},
	}

	switch {
	case xCol.Type == models.ColumnTime:
		var tx []time.Time
		var vy []float64
		for i := range xs {
			ts, ok := xs[i].(time.Time)
			y, yok := utils.ToFloat(ys[i])
			if !ok || !yok {
				continue
			}
			tx = append(tx, ts)
			vy = append(vy, y)
		}
		if len(tx) == 0 {
			return c, fmt.Errorf("no plottable points")
		}
		c.XAxis.ValueFormatter = chart.TimeDateValueFormatter
		if minTime(tx).Equal(maxTime(tx)) {
			mid := float64(tx[0].UnixNano())
			day := float64(24 * time.Hour)
			c.XAxis.Range = &chart.ContinuousRange{Min: mid - day, Max: mid + day}
		}
		c.YAxis.Range = paddedRange(vy)
		c.Series = []chart.Series{chart.TimeSeries{Name: yName, XValues: tx, YValues: vy, Style: seriesStyle()}}

	case xCol.Type.IsNumeric():
		var vx, vy []float64
		for i := range xs {
			x, xok := utils.ToFloat(xs[i])
			y, yok := utils.ToFloat(ys[i])
			if !xok || !yok {
				continue
			}
			vx = append(vx, x)
			vy = append(vy, y)
		}
		if len(vx) == 0 {
			return c, fmt.Errorf("no plottable points")
		}
		c.XAxis.Range = paddedRange(vx)
		c.YAxis.Range = paddedRange(vy)
		c.Series = []chart.Series{chart.ContinuousSeries{Name: yName, XValues: vx, YValues: vy, Style: seriesStyle()}}

	default:
		var vx, vy []float64
		ticks := make([]chart.Tick, 0, len(xs))
		for i := range xs {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: utils.FormatCell(xs[i])})
			y, ok := utils.ToFloat(ys[i])
			if !ok {
				continue
			}
			vx = append(vx, float64(i))
			vy = append(vy, y)
		}
		if len(vx) == 0 {
			return c, fmt.Errorf("no plottable points")
		}
		c.XAxis.Ticks = ticks
		c.XAxis.Range = &chart.ContinuousRange{Min: -0.5, Max: float64(len(xs)) - 0.5}
		c.YAxis.Range = paddedRange(vy)
		c.Series = []chart.Series{chart.ContinuousSeries{Name: yName, XValues: vx, YValues: vy, Style: seriesStyle()}}
	}
	return c, nil
}

func (r *ChartRenderer) barChart(title string, xs, ys []any, yName string) chart.BarChart {
	bars := make([]chart.Value, len(xs))
	vals := make([]float64, 0, len(xs)+1)
	for i := range xs {
		y, _ := utils.ToFloat(ys[i]) // missing values plot as zero-height bars
		bars[i] = chart.Value{Label: utils.FormatCell(xs[i]), Value: y}
		vals = append(vals, y)
	}
	// Bars grow from zero, so the axis must include it.
	vals = append(vals, 0)

	width := r.cfg.Width
	if need := len(bars)*(r.cfg.BarWidth+r.cfg.BarSpacing) + r.cfg.MarginLeft + r.cfg.MarginRight + 100; need > width {
		width = need
	}

	return chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     r.cfg.Height,
		BarWidth:   r.cfg.BarWidth,
		BarSpacing: r.cfg.BarSpacing,
		Background: r.background(),
		Canvas:     canvas(),
		YAxis:      chart.YAxis{Name: yName, Range: paddedRange(vals)},
		Bars:       bars,
	}
}

// paddedRange returns an axis range covering vals with 5% headroom.
// go-chart rejects zero-width ranges, so a constant series gets ±1.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func minTime(ts []time.Time) time.Time {
	m := ts[0]
	for _, t := range ts[1:] {
		if t.Before(m) {
			m = t
		}
	}
	return m
}

func maxTime(ts []time.Time) time.Time {
	m := ts[0]
	for _, t := range ts[1:] {
		if t.After(m) {
			m = t
		}
	}
	return m
}

// emptySVG renders a placeholder with a centred message.
func emptySVG(cfg ChartConfig, title, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<text x="%d" y="30" font-size="15" text-anchor="middle" fill="#333">%s</text>`+
		`<text x="%d" y="%d" font-size="13" text-anchor="middle" fill="#999">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height,
		cfg.Width/2, html.EscapeString(title),
		cfg.Width/2, cfg.Height/2, html.EscapeString(msg))
}
