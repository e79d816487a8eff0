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

package aggregate

import (
	"math"
	"sort"

	"ivy-charts/internal/dataset"
	"ivy-charts/internal/ivy"
	"ivy-charts/internal/normalize"
)

// Row is the record picked for one school in a snapshot.
type Row struct {
	School ivy.SchoolKey
	Year   string
	Record dataset.RawRecord
}

// Snapshot selects, for each school in table order, the first row whose
// normalized CDS_Year equals `label`. Schools without a row are left out.
//
// "first row wins" is only deterministic when (institution, year) is unique in the
// source; see Duplicates.
func Snapshot(rows []dataset.RawRecord, table *ivy.Table, label string) []Row {
	first := map[ivy.SchoolKey]dataset.RawRecord{}
	for _, row := range rows {
		if normalize.Year(row.Field(dataset.ColCDSYear)) != label {
			continue
		}
		school, ok := table.Resolve(row.Field(dataset.ColInstitution))
		if !ok {
			continue
		}
		if _, present := first[school]; !present {
			first[school] = row
		}
	}
	out := []Row{}
	for _, key := range table.Keys() {
		if rec, ok := first[key]; ok {
			out = append(out, Row{School: key, Year: label, Record: rec})
		}
	}
	return out
}

// Duplicate is a (school, year) pair backed by more than one source row.
type Duplicate struct {
	School ivy.SchoolKey `json:"school"`
	Year   string        `json:"year"`
	Count  int           `json:"count"`
}

// Duplicates lists every (school, canonical year) that appears in more than one row.
func Duplicates(rows []dataset.RawRecord, table *ivy.Table) []Duplicate {
	type key struct {
		school ivy.SchoolKey
		year   string
	}
	counts := map[key]int{}
	for _, row := range rows {
		school, ok := table.Resolve(row.Field(dataset.ColInstitution))
		if !ok {
			continue
		}
		counts[key{school, normalize.Year(row.Field(dataset.ColCDSYear))}]++
	}

	order := map[ivy.SchoolKey]int{}
	for i, k := range table.Keys() {
		order[k] = i
	}
	dups := []Duplicate{}
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, Duplicate{School: k.school, Year: k.year, Count: n})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].School != dups[j].School {
			return order[dups[i].School] < order[dups[j].School]
		}
		return dups[i].Year < dups[j].Year
	})
	return dups
}

// EnrollmentRow is the admitted/enrolled pair drawn by the mirrored bar chart.
//
// Enrolled is the configured class-size estimate and Admitted is back-computed
// from it and the yield rate. Both are approximations, Estimated is always set.
type EnrollmentRow struct {
	School    ivy.SchoolKey `json:"school"`
	Admitted  int           `json:"admitted"`
	Enrolled  int           `json:"enrolled"`
	YieldPct  float64       `json:"yield"`
	Estimated bool          `json:"estimated"`
}

// Enrollment derives admitted counts from yield for each snapshot row that has a
// positive acceptance rate and a positive yield.
func Enrollment(snap []Row, table *ivy.Table) []EnrollmentRow {
	out := []EnrollmentRow{}
	for _, r := range snap {
		acceptance, ok := normalize.Number(r.Record.Field(dataset.ColAcceptanceRate))
		if !ok || acceptance <= 0 {
			continue
		}
		yield, ok := normalize.Number(r.Record.Field(dataset.ColYield))
		if !ok || yield <= 0 {
			continue
		}
		enrolled := table.Enrolled(r.School)
		out = append(out, EnrollmentRow{
			School:    r.School,
			Admitted:  int(math.Round(float64(enrolled) / yield)),
			Enrolled:  enrolled,
			YieldPct:  round1(yield * 100),
			Estimated: ivy.EnrolledIsEstimate,
		})
	}
	return out
}

// AidFields is the fallback chain for the average aid amount.
var AidFields = []string{dataset.ColAvgAidPackage, dataset.ColAvgPackage, dataset.ColAvgNeedGrant}

// AidRow is one school on the financial aid chart. PctNeedMet is a 0..1 fraction.
type AidRow struct {
	School     ivy.SchoolKey `json:"school"`
	Aid        float64       `json:"aid"`
	PctNeedMet float64       `json:"pctNeedMet"`
	HasPct     bool          `json:"hasPct"`
}

// Aid extracts aid amount and percent of need met. Rows with no aid amount are dropped.
func Aid(snap []Row) []AidRow {
	out := []AidRow{}
	for _, r := range snap {
		aid, ok := normalize.FirstNumber(r.Record, AidFields...)
		if !ok {
			continue
		}
		pct, hasPct := normalize.Number(r.Record.Field(dataset.ColPctNeedMet))
		out = append(out, AidRow{School: r.School, Aid: aid, PctNeedMet: pct, HasPct: hasPct})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
