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

package normalize

import "testing"

func TestYear(t *testing.T) {
	cases := map[string]string{
		"2024-2025":   "2024-2025",
		" 2024-2025 ": "2024-2025",
		"2024-25":     "2024-2025",
		"2020-21\n":   "2020-2021",
		// century is copied from the first year; kept as-is and flagged in DESIGN.md
		"1999-00": "1999-1900",
		"2024":    "2024",
		"24-25":   "24-25",
		"2024/25": "2024/25",
		"":        "",
	}
	for in, want := range cases {
		if got := Year(in); got != want {
			t.Errorf("Year(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestYearShortFormKeepsCentury(t *testing.T) {
	for _, in := range []string{"1980-81", "2001-02", "2099-00", "2150-51"} {
		got := Year(in)
		if !IsCanonicalYear(got) {
			t.Fatalf("Year(%q) = %q is not canonical", in, got)
		}
		if got[5:7] != in[0:2] {
			t.Errorf("Year(%q) = %q, second year century differs from first", in, got)
		}
	}
}

func TestStartYear(t *testing.T) {
	if y, ok := StartYear("2020-2021"); !ok || y != 2020 {
		t.Errorf("StartYear = %d, %v", y, ok)
	}
	if y, ok := StartYear(" 2022-23"); !ok || y != 2022 {
		t.Errorf("StartYear = %d, %v", y, ok)
	}
	if _, ok := StartYear("FY2020"); ok {
		t.Error("expected no match")
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234", 1234, true},
		{" 56 ", 56, true},
		{"84,\n 412", 84412, true},
		{"0", 0, true},
		{"0.05", 0.05, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"   ", 0, false},
		{"\n", 0, false},
		{"N/A", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"5%", 0, false},
	}
	for _, c := range cases {
		got, ok := Number(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("Number(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNumberZeroIsNotMissing(t *testing.T) {
	zero, zeroOK := Number("0")
	_, blankOK := Number("")
	if !zeroOK || zero != 0 {
		t.Fatal("zero must parse as a present value")
	}
	if blankOK {
		t.Fatal("blank must be missing")
	}
}

type record map[string]string

func (r record) Field(name string) string { return r[name] }

func TestFirstNumber(t *testing.T) {
	rec := record{"A": "", "B": " n/a ", "C": "61,000", "D": "7"}
	got, ok := FirstNumber(rec, "A", "B", "C", "D")
	if !ok || got != 61000 {
		t.Errorf("FirstNumber = %v, %v", got, ok)
	}
	if _, ok := FirstNumber(rec, "A", "Z"); ok {
		t.Error("expected missing")
	}
}
