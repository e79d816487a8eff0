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

// Package dataset loads the CDS admissions table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// column names used by the charts.
const (
	ColInstitution    = "Institution"
	ColCDSYear        = "CDS_Year"
	ColAcceptanceRate = "AcceptanceRate_FTFY"
	ColYield          = "Yield_FTFY"
	ColStickerCOA     = "StickerCOA"
	ColAvgAidPackage  = "AvgAidPackage_Freshmen"
	ColAvgPackage     = "AvgPackage_Freshmen"
	ColAvgNeedGrant   = "AvgNeedGrant_Freshmen"
	ColPctNeedMet     = "PctNeedMet_Freshmen"
)

// RawRecord is one CSV row keyed by header name. Cells are kept verbatim;
// trimming and parsing is the normalizer's job.
type RawRecord map[string]string

// Field returns the raw cell for `name`, or "" when the column is missing.
func (r RawRecord) Field(name string) string {
	return r[name]
}

// Parse reads a comma separated table with a header row.
// Short rows are padded with empty cells, surplus cells are ignored.
func Parse(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []RawRecord
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(rows)+2, err)
		}
		rec := make(RawRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				rec[name] = cells[i]
			} else {
				rec[name] = ""
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
