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

// Package aggregate groups normalized CDS rows into the shapes the charts draw.
package aggregate

import (
	"sort"

	"ivy-charts/internal/dataset"
	"ivy-charts/internal/ivy"
	"ivy-charts/internal/normalize"
)

// Metric extracts one number from a row: the first parseable field, times Factor.
type Metric struct {
	Fields []string `yaml:"fields" json:"fields"`
	Factor float64  `yaml:"factor" json:"factor"`
}

func (m Metric) Extract(rec normalize.Fielder) (float64, bool) {
	v, ok := normalize.FirstNumber(rec, m.Fields...)
	if !ok {
		return 0, false
	}
	if m.Factor != 0 {
		v *= m.Factor
	}
	return v, true
}

// Year is a canonical academic year, "2020-2021" starting in 2020.
type Year struct {
	Start int    `json:"start"`
	Label string `json:"label"`
}

// canonicalYear resolves a raw CDS_Year cell; non-canonical labels do not match.
func canonicalYear(raw string) (Year, bool) {
	label := normalize.Year(raw)
	if !normalize.IsCanonicalYear(label) {
		return Year{}, false
	}
	start, ok := normalize.StartYear(label)
	if !ok {
		return Year{}, false
	}
	return Year{Start: start, Label: label}, true
}

// SeriesPoint is one (school, year) cell. Defined is false when the source had no
// usable value; the point still occupies its year slot.
type SeriesPoint struct {
	School  ivy.SchoolKey `json:"school"`
	Year    int           `json:"year"`
	Label   string        `json:"label"`
	Value   float64       `json:"value"`
	Defined bool          `json:"defined"`
}

// Grid is a sparse year x school matrix.
type Grid struct {
	Years   []Year                               `json:"years"`
	Schools []ivy.SchoolKey                      `json:"schools"`
	Cells   map[string]map[ivy.SchoolKey]float64 `json:"cells"`
}

// TimeSeries groups rows by start year, then by school. Rows with an
// unparseable year, an unmapped institution or a missing value are skipped. The
// first label seen for a start year names its column, so "2021-2022" and
// "2021-23" share one. When a (school, start year) appears more than once the
// first row wins, matching Snapshot.
func TimeSeries(rows []dataset.RawRecord, table *ivy.Table, m Metric) *Grid {
	g := &Grid{
		Schools: table.Keys(),
		Cells:   map[string]map[ivy.SchoolKey]float64{},
	}
	labels := map[int]string{}
	for _, row := range rows {
		school, ok := table.Resolve(row.Field(dataset.ColInstitution))
		if !ok {
			continue
		}
		year, ok := canonicalYear(row.Field(dataset.ColCDSYear))
		if !ok {
			continue
		}
		value, ok := m.Extract(row)
		if !ok {
			continue
		}
		label, present := labels[year.Start]
		if !present {
			label = year.Label
			labels[year.Start] = label
			g.Years = append(g.Years, year)
			g.Cells[label] = map[ivy.SchoolKey]float64{}
		}
		if _, present := g.Cells[label][school]; present {
			continue
		}
		g.Cells[label][school] = value
	}
	sort.Slice(g.Years, func(i, j int) bool {
		return g.Years[i].Start < g.Years[j].Start
	})
	return g
}

// Value returns the cell for (label, school).
func (g *Grid) Value(label string, school ivy.SchoolKey) (float64, bool) {
	col, ok := g.Cells[label]
	if !ok {
		return 0, false
	}
	v, ok := col[school]
	return v, ok
}

// Series returns one point per grid year with Start <= maxYear (inclusive).
func (g *Grid) Series(school ivy.SchoolKey, maxYear int) []SeriesPoint {
	points := []SeriesPoint{}
	for _, y := range g.Years {
		if y.Start > maxYear {
			continue
		}
		v, ok := g.Value(y.Label, school)
		points = append(points, SeriesPoint{School: school, Year: y.Start, Label: y.Label, Value: v, Defined: ok})
	}
	return points
}

// Column returns one point per school, in table order, for the year `label`.
// A start year the grid has never seen yields nil.
func (g *Grid) Column(label string) []SeriesPoint {
	year, ok := g.Year(label)
	if !ok {
		return nil
	}
	points := make([]SeriesPoint, 0, len(g.Schools))
	for _, school := range g.Schools {
		v, ok := g.Value(year.Label, school)
		points = append(points, SeriesPoint{School: school, Year: year.Start, Label: year.Label, Value: v, Defined: ok})
	}
	return points
}

// Year finds the grid year for `label`, falling back to the column that shares
// its start year.
func (g *Grid) Year(label string) (Year, bool) {
	for _, y := range g.Years {
		if y.Label == label {
			return y, true
		}
	}
	start, ok := normalize.StartYear(label)
	if !ok {
		return Year{}, false
	}
	for _, y := range g.Years {
		if y.Start == start {
			return y, true
		}
	}
	return Year{}, false
}

func (g *Grid) Labels() []string {
	labels := make([]string, len(g.Years))
	for i, y := range g.Years {
		labels[i] = y.Label
	}
	return labels
}

// StartRange returns the first and last start year in the grid.
func (g *Grid) StartRange() (int, int, bool) {
	if len(g.Years) == 0 {
		return 0, 0, false
	}
	return g.Years[0].Start, g.Years[len(g.Years)-1].Start, true
}

// Years lists every canonical year that has at least one row for a mapped
// school, whatever metrics the row carries.
func Years(rows []dataset.RawRecord, table *ivy.Table) []Year {
	seen := map[string]bool{}
	years := []Year{}
	for _, row := range rows {
		if _, ok := table.Resolve(row.Field(dataset.ColInstitution)); !ok {
			continue
		}
		year, ok := canonicalYear(row.Field(dataset.ColCDSYear))
		if !ok || seen[year.Label] {
			continue
		}
		seen[year.Label] = true
		years = append(years, year)
	}
	sort.SliceStable(years, func(i, j int) bool {
		return years[i].Start < years[j].Start
	})
	return years
}

// Costs is the per-school value of a cost grid for one year. Schools without a
// cost keep their slot with Defined false.
func Costs(g *Grid, label string) []SeriesPoint {
	return g.Column(label)
}
