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
	"strings"
	"testing"

	"ivy-charts/internal/dataset"
	"ivy-charts/internal/ivy"
)

var rates = Metric{Fields: []string{dataset.ColAcceptanceRate}, Factor: 100}

func parse(t *testing.T, csv string) []dataset.RawRecord {
	t.Helper()
	rows, err := dataset.Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTimeSeriesEndToEnd(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Harvard,2021-2022,0.04\n")
	g := TimeSeries(rows, ivy.Default(), rates)

	series := g.Series("Harvard", math.MaxInt)
	if len(series) != 2 {
		t.Fatalf("got %d points, want 2", len(series))
	}
	want := []struct {
		year  int
		value float64
	}{{2020, 5.0}, {2021, 4.0}}
	for i, w := range want {
		p := series[i]
		if !p.Defined || p.Year != w.year || !near(p.Value, w.value) {
			t.Errorf("point %d = %+v, want {%d, %v}", i, p, w.year, w.value)
		}
	}
}

func TestTimeSeriesNoUnmappedLeakage(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Stanford,2020-2021,0.04\n"+
		"Penn,2020-2021,0.09\n"+
		"Upenn,2020-2021,0.07\n"+
		"Stanford,2019-2020,0.04\n")
	table := ivy.Default()
	g := TimeSeries(rows, table, rates)

	if len(g.Years) != 1 {
		t.Errorf("years from unmapped rows leaked: %+v", g.Years)
	}
	for label, col := range g.Cells {
		for school := range col {
			if !table.Has(school) {
				t.Errorf("unmapped school %q in year %s", school, label)
			}
		}
	}
	if v, ok := g.Value("2020-2021", "Penn"); !ok || !near(v, 7) {
		t.Errorf("Penn = %v, %v; want the Upenn row", v, ok)
	}
}

func TestTimeSeriesSkipsBadRows(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Yale,2020-21,0.06\n"+
		"Yale,2021,0.05\n"+
		"Yale,2022-2023,\n"+
		"Yale,2023-2024, 0.045 \n")
	g := TimeSeries(rows, ivy.Default(), rates)
	if got := g.Labels(); strings.Join(got, ",") != "2020-2021,2023-2024" {
		t.Errorf("labels = %v", got)
	}
}

func TestSeriesReservesMissingSlots(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Yale,2021-2022,0.06\n"+
		"Harvard,2022-2023,0.04\n")
	g := TimeSeries(rows, ivy.Default(), rates)
	series := g.Series("Harvard", 3000)
	if len(series) != 3 {
		t.Fatalf("got %d points", len(series))
	}
	if series[1].Defined || series[1].Year != 2021 {
		t.Errorf("middle point = %+v, want undefined 2021 slot", series[1])
	}
	if series[1].Value != 0 {
		t.Errorf("undefined point carries value %v", series[1].Value)
	}
}

func TestSeriesMaxYearInclusive(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Harvard,2021-2022,0.04\n"+
		"Harvard,2022-2023,0.035\n"+
		"Harvard,2023-2024,0.034\n")
	g := TimeSeries(rows, ivy.Default(), rates)
	for maxYear, want := range map[int]int{2019: 0, 2020: 1, 2022: 3, 2023: 4, 2030: 4} {
		got := g.Series("Harvard", maxYear)
		if len(got) != want {
			t.Errorf("maxYear %d: %d points, want %d", maxYear, len(got), want)
		}
		for _, p := range got {
			if p.Year > maxYear {
				t.Errorf("maxYear %d: point %d past the boundary", maxYear, p.Year)
			}
		}
	}
}

func TestTimeSeriesFirstRowWins(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Harvard,2020-21,0.09\n")
	g := TimeSeries(rows, ivy.Default(), rates)
	if v, _ := g.Value("2020-2021", "Harvard"); !near(v, 5) {
		t.Errorf("value = %v, want first row", v)
	}
}

func TestTimeSeriesSharedStartYear(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,AcceptanceRate_FTFY\n"+
		"Harvard,2020-2021,0.05\n"+
		"Harvard,2021-2022,0.04\n"+
		"Yale,2021-23,0.06\n"+
		"Harvard,2021-23,0.09\n"+
		"Yale,1999-2000,0.2\n"+
		"Yale,1999-00,0.3\n")
	g := TimeSeries(rows, ivy.Default(), rates)

	if got := g.Labels(); strings.Join(got, ",") != "1999-2000,2020-2021,2021-2022" {
		t.Errorf("labels = %v", got)
	}
	if v, ok := g.Value("2021-2022", "Yale"); !ok || !near(v, 6) {
		t.Errorf("Yale 2021 = %v, %v", v, ok)
	}
	if v, _ := g.Value("2021-2022", "Harvard"); !near(v, 4) {
		t.Errorf("Harvard 2021 = %v, want the first row", v)
	}
	if v, _ := g.Value("1999-2000", "Yale"); !near(v, 20) {
		t.Errorf("Yale 1999 = %v, want the first row", v)
	}

	col := g.Column("2021-2023")
	if len(col) != 8 || col[1].Label != "2021-2022" || !col[1].Defined {
		t.Errorf("column by start year = %+v", col)
	}
}

func TestColumn(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,StickerCOA\n"+
		"Harvard,2024-25,\"82,866\"\n"+
		"Brown,2024-2025,\" 91 676\"\n"+
		"Yale,2024-2025,\n")
	g := TimeSeries(rows, ivy.Default(), Metric{Fields: []string{dataset.ColStickerCOA}})
	col := g.Column("2024-2025")
	if len(col) != 8 {
		t.Fatalf("got %d points", len(col))
	}
	if col[0].School != "Harvard" || !col[0].Defined || col[0].Value != 82866 {
		t.Errorf("Harvard = %+v", col[0])
	}
	if col[1].School != "Yale" || col[1].Defined {
		t.Errorf("Yale = %+v, want undefined", col[1])
	}
	if col[4].School != "Brown" || col[4].Value != 91676 {
		t.Errorf("Brown = %+v", col[4])
	}
	if g.Column("2019-2020") != nil {
		t.Error("unknown year should yield nil")
	}
}

const snapshotCSV = "Institution,CDS_Year,AcceptanceRate_FTFY,Yield_FTFY,AvgAidPackage_Freshmen,AvgPackage_Freshmen,AvgNeedGrant_Freshmen,PctNeedMet_Freshmen\n" +
	"Yale,2024-2025,0.045,0.69,\"70,000\",,,1\n" +
	"Harvard,2024-25,0.036,0.83,,\"68,500\",,\n" +
	"Harvard,2024-2025,0.05,0.5,1,,,\n" +
	"Brown,2024-2025,0.05,0,,,\"61,000\",0.98\n" +
	"MIT,2024-2025,0.04,0.86,80000,,,1\n" +
	"Penn,2023-2024,0.058,0.7,,,,\n"

func TestSnapshot(t *testing.T) {
	rows := parse(t, snapshotCSV)
	snap := Snapshot(rows, ivy.Default(), "2024-2025")
	var got []string
	for _, r := range snap {
		got = append(got, r.School)
	}
	if strings.Join(got, ",") != "Harvard,Yale,Brown" {
		t.Errorf("schools = %v, want table order", got)
	}
	if snap[0].Record.Field(dataset.ColYield) != "0.83" {
		t.Error("expected the first Harvard row to win")
	}
}

func TestSnapshotEmptyYear(t *testing.T) {
	rows := parse(t, snapshotCSV)
	table := ivy.Default()
	snap := Snapshot(rows, table, "1990-1991")
	if len(snap) != 0 {
		t.Fatalf("got %d rows", len(snap))
	}
	if len(Enrollment(snap, table)) != 0 || len(Aid(snap)) != 0 {
		t.Error("derived sets of an empty snapshot must be empty")
	}
}

func TestDuplicates(t *testing.T) {
	dups := Duplicates(parse(t, snapshotCSV), ivy.Default())
	if len(dups) != 1 {
		t.Fatalf("got %+v", dups)
	}
	if dups[0] != (Duplicate{School: "Harvard", Year: "2024-2025", Count: 2}) {
		t.Errorf("got %+v", dups[0])
	}
}

func TestEnrollment(t *testing.T) {
	table := ivy.Default()
	rows := Enrollment(Snapshot(parse(t, snapshotCSV), table, "2024-2025"), table)
	if len(rows) != 2 {
		t.Fatalf("got %+v (Brown has zero yield and must be dropped)", rows)
	}
	h := rows[0]
	if h.School != "Harvard" || h.Enrolled != 1650 || h.Admitted != 1988 || h.YieldPct != 83 || !h.Estimated {
		t.Errorf("Harvard = %+v", h)
	}
	y := rows[1]
	if y.School != "Yale" || y.Admitted != 2246 || y.YieldPct != 69 {
		t.Errorf("Yale = %+v", y)
	}
}

func TestAid(t *testing.T) {
	rows := Aid(Snapshot(parse(t, snapshotCSV), ivy.Default(), "2024-2025"))
	if len(rows) != 3 {
		t.Fatalf("got %+v", rows)
	}
	want := []AidRow{
		{School: "Harvard", Aid: 68500},
		{School: "Yale", Aid: 70000, PctNeedMet: 1, HasPct: true},
		{School: "Brown", Aid: 61000, PctNeedMet: 0.98, HasPct: true},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestYears(t *testing.T) {
	rows := parse(t, "Institution,CDS_Year,StickerCOA\n"+
		"Yale,2022-23,\n"+
		"Harvard,2020-2021,\"84,000\"\n"+
		"Stanford,2019-2020,80000\n"+
		"Yale,latest,1\n")
	years := Years(rows, ivy.Default())
	if len(years) != 2 || years[0].Label != "2020-2021" || years[1].Label != "2022-2023" {
		t.Errorf("years = %+v", years)
	}

	costs := Costs(TimeSeries(rows, ivy.Default(), Metric{Fields: []string{dataset.ColStickerCOA}}), "2020-2021")
	if len(costs) != 8 || !costs[0].Defined || costs[0].Value != 84000 || costs[1].Defined {
		t.Errorf("costs = %+v", costs)
	}
}
