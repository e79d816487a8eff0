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

package charts

import (
	"fmt"
	"strings"
	"sync"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/dataset"
	"ivy-charts/internal/ivy"
)

// Data is the loaded CSV plus the school table. It is shared by every chart of
// every session and never changes after construction; grids are computed on
// first use.
type Data struct {
	Rows  []dataset.RawRecord
	Table *ivy.Table

	mu    sync.Mutex
	grids map[string]*aggregate.Grid
	years []aggregate.Year
}

func NewData(rows []dataset.RawRecord, table *ivy.Table) *Data {
	return &Data{Rows: rows, Table: table, grids: map[string]*aggregate.Grid{}}
}

// Grid returns the time-series grid for `m`.
func (d *Data) Grid(m aggregate.Metric) *aggregate.Grid {
	key := fmt.Sprintf("%s*%g", strings.Join(m.Fields, "|"), m.Factor)
	d.mu.Lock()
	defer d.mu.Unlock()
	if g, ok := d.grids[key]; ok {
		return g
	}
	g := aggregate.TimeSeries(d.Rows, d.Table, m)
	d.grids[key] = g
	return g
}

// Years lists the canonical years any school has a row for.
func (d *Data) Years() []aggregate.Year {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.years == nil {
		d.years = aggregate.Years(d.Rows, d.Table)
	}
	return d.years
}

func (d *Data) Snapshot(label string) []aggregate.Row {
	return aggregate.Snapshot(d.Rows, d.Table, label)
}

func (d *Data) Duplicates() []aggregate.Duplicate {
	return aggregate.Duplicates(d.Rows, d.Table)
}
