/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"k8s.io/klog/v2"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/charts"
	"ivy-charts/internal/config"
	"ivy-charts/internal/dataset"
	"ivy-charts/internal/ivy"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export static chart images",
	Long: `export writes static images of the data without any interaction state:

  admission-rates.<format>  acceptance rate per school over time
  yield.<format>            yield per school for --year
  financial-aid.<format>    average aid package per school for --year`,
	RunE: runExport,
}

var exportArgs struct {
	out    string
	format string
	year   string
	width  int
	height int
}

func init() {
	flags := exportCmd.Flags()
	flags.StringVar(
		&exportArgs.out,
		"out",
		".",
		"Directory the images are written to",
	)
	flags.StringVar(
		&exportArgs.format,
		"format",
		"svg",
		"Image format, 'svg' or 'png'",
	)
	flags.StringVar(
		&exportArgs.year,
		"year",
		"",
		"Academic year for the bar charts, defaults to the latest",
	)
	flags.IntVar(
		&exportArgs.width,
		"width",
		1024,
		"Image width in pixels",
	)
	flags.IntVar(
		&exportArgs.height,
		"height",
		512,
		"Image height in pixels",
	)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func rendererFor(format string) (chart.RendererProvider, error) {
	switch format {
	case "svg":
		return chart.SVG, nil
	case "png":
		return chart.PNG, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func schoolColor(table *ivy.Table, key ivy.SchoolKey) drawing.Color {
	if s, ok := table.Get(key); ok && s.Color != "" {
		return drawing.ColorFromHex(s.Color)
	}
	return drawing.ColorFromHex("888888")
}

func shortName(table *ivy.Table, key ivy.SchoolKey) string {
	if s, ok := table.Get(key); ok && s.Short != "" {
		return s.Short
	}
	return key
}

// rateMetric is the metric of the first configured line chart.
func rateMetric(cfg *config.Config) aggregate.Metric {
	opts, err := cfg.ChartOptions()
	if err == nil {
		for _, o := range opts {
			if o.Kind == charts.KindLine && len(o.Metric.Fields) > 0 {
				return o.Metric
			}
		}
	}
	return aggregate.Metric{Fields: []string{dataset.ColAcceptanceRate}, Factor: 100}
}

// segments splits a series at undefined points. go-chart joins every point of
// a series, so a gap has to become two series.
func segments(points []aggregate.SeriesPoint) [][]aggregate.SeriesPoint {
	out := [][]aggregate.SeriesPoint{}
	current := []aggregate.SeriesPoint{}
	for _, p := range points {
		if !p.Defined {
			if len(current) > 0 {
				out = append(out, current)
				current = []aggregate.SeriesPoint{}
			}
			continue
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

func ratesGraph(data *charts.Data, m aggregate.Metric) (chart.Chart, error) {
	grid := data.Grid(m)
	first, last, ok := grid.StartRange()
	if !ok {
		return chart.Chart{}, fmt.Errorf("no admission rates in the dataset")
	}

	series := []chart.Series{}
	labels := chart.AnnotationSeries{}
	for _, school := range grid.Schools {
		colour := schoolColor(data.Table, school)
		var end *aggregate.SeriesPoint
		for _, seg := range segments(grid.Series(school, last)) {
			xs := make([]float64, len(seg))
			ys := make([]float64, len(seg))
			for i, p := range seg {
				xs[i] = float64(p.Year)
				ys[i] = p.Value
			}
			series = append(series, chart.ContinuousSeries{
				Name:    school,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: colour,
					StrokeWidth: 2,
					DotColor:    colour,
					DotWidth:    3,
				},
			})
			end = &seg[len(seg)-1]
		}
		if end != nil {
			labels.Annotations = append(labels.Annotations, chart.Value2{
				XValue: float64(end.Year),
				YValue: end.Value,
				Label:  shortName(data.Table, school),
				Style:  chart.Style{StrokeColor: colour},
			})
		}
	}
	if len(series) == 0 {
		return chart.Chart{}, fmt.Errorf("no admission rates in the dataset")
	}
	series = append(series, labels)

	ticks := []chart.Tick{}
	for _, y := range grid.Years {
		ticks = append(ticks, chart.Tick{Value: float64(y.Start), Label: fmt.Sprint(y.Start)})
	}
	if first == last {
		ticks = append(ticks, chart.Tick{Value: float64(last + 1), Label: fmt.Sprint(last + 1)})
	}

	return chart.Chart{
		Title:  "Admission rates",
		Width:  exportArgs.width,
		Height: exportArgs.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 40},
		},
		XAxis: chart.XAxis{
			Name:  "Year",
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: "Rate (%)",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Series: series,
	}, nil
}

// barRange is a zero based y range with a little headroom.
func barRange(values []chart.Value) *chart.ContinuousRange {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v.Value)
	}
	if top == 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

func bar(table *ivy.Table, school ivy.SchoolKey, value float64) chart.Value {
	colour := schoolColor(table, school)
	return chart.Value{
		Label: shortName(table, school),
		Value: value,
		Style: chart.Style{FillColor: colour, StrokeColor: colour},
	}
}

func barGraph(title string, bars []chart.Value, format string) chart.BarChart {
	return chart.BarChart{
		Title:    title,
		Width:    exportArgs.width,
		Height:   exportArgs.height,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		YAxis: chart.YAxis{
			Range: barRange(bars),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf(format, f)
				}
				return ""
			},
		},
		Bars: bars,
	}
}

func yieldGraph(data *charts.Data, year string) (chart.BarChart, error) {
	rows := aggregate.Enrollment(data.Snapshot(year), data.Table)
	if len(rows) == 0 {
		return chart.BarChart{}, fmt.Errorf("no yield data for %s", year)
	}
	bars := []chart.Value{}
	for _, r := range rows {
		bars = append(bars, bar(data.Table, r.School, r.YieldPct))
	}
	return barGraph("Yield "+year, bars, "%.0f%%"), nil
}

func aidGraph(data *charts.Data, year string) (chart.BarChart, error) {
	rows := aggregate.Aid(data.Snapshot(year))
	if len(rows) == 0 {
		return chart.BarChart{}, fmt.Errorf("no financial aid data for %s", year)
	}
	bars := []chart.Value{}
	for _, r := range rows {
		bars = append(bars, bar(data.Table, r.School, r.Aid/1000))
	}
	return barGraph("Average aid package "+year, bars, "$%.0fK"), nil
}

func writeGraph(g renderable, rp chart.RendererProvider, path string) error {
	var buf bytes.Buffer
	if err := g.Render(rp, &buf); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return spit(buf.Bytes(), path)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := klog.FromContext(ctx)

	rp, err := rendererFor(exportArgs.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := loadData(ctx, cfg)
	if err != nil {
		return err
	}

	year := exportArgs.year
	if year == "" {
		years := data.Years()
		if len(years) == 0 {
			return fmt.Errorf("dataset has no canonical years")
		}
		year = years[len(years)-1].Label
	}

	graphs := map[string]func() (renderable, error){
		"admission-rates": func() (renderable, error) { return ratesGraph(data, rateMetric(cfg)) },
		"yield":           func() (renderable, error) { return yieldGraph(data, year) },
		"financial-aid":   func() (renderable, error) { return aidGraph(data, year) },
	}
	for _, name := range []string{"admission-rates", "yield", "financial-aid"} {
		g, err := graphs[name]()
		if err != nil {
			log.Info("skipping graph", "graph", name, "reason", err.Error())
			continue
		}
		path := filepath.Join(exportArgs.out, name+"."+exportArgs.format)
		if err := writeGraph(g, rp, path); err != nil {
			return err
		}
		log.Info("wrote graph", "graph", name, "path", path)
	}
	return nil
}
