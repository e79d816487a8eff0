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

// Package normalize canonicalises the loosely formatted fields of the CDS dataset.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	longYear  = regexp.MustCompile(`^\d{4}-\d{4}$`)
	shortYear = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	leadYear  = regexp.MustCompile(`^(\d{4})`)
)

// Year canonicalises a CDS_Year label.
//
//	"2024-2025" => "2024-2025"
//	"2024-25"   => "2024-2025"
//	"1999-00"   => "1999-1900" (the century is copied from the first year, not rolled over)
//
// anything else is returned trimmed and will not match a canonical label downstream.
func Year(s string) string {
	t := strings.TrimSpace(s)
	if longYear.MatchString(t) {
		return t
	}
	if m := shortYear.FindStringSubmatch(t); m != nil {
		return m[1] + "-" + m[1][:2] + m[2]
	}
	return t
}

// IsCanonicalYear reports whether `s` is a "YYYY-YYYY" label.
func IsCanonicalYear(s string) bool {
	return longYear.MatchString(s)
}

// StartYear returns the leading four-digit year of a CDS_Year label ("2020-2021" => 2020).
func StartYear(s string) (int, bool) {
	m := leadYear.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

// Number parses a numeric cell after stripping whitespace and thousands separators.
// A blank or non-finite cell is reported as missing (ok == false), never as zero.
func Number(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Fielder is anything that can look up a cell by column name.
type Fielder interface {
	Field(name string) string
}

// FirstNumber returns the first of `fields` that parses as a number.
func FirstNumber(rec Fielder, fields ...string) (float64, bool) {
	for _, f := range fields {
		if n, ok := Number(rec.Field(f)); ok {
			return n, true
		}
	}
	return 0, false
}
