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
	"fmt"

	"github.com/spf13/cobra"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/charts"
	"ivy-charts/internal/dataset"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [grid|years|snapshot|enrollment|aid|duplicates]",
	Short: "Print the aggregated data as JSON",
	Long: `inspect prints one of the intermediate tables the charts are drawn from:

  grid        time series of --metric (scaled by --factor) per school and year
  years       every canonical year with data for a mapped school
  snapshot    the row picked per school for --year
  enrollment  admitted/enrolled estimates for --year
  aid         aid amount and percent of need met for --year
  duplicates  (school, year) pairs backed by more than one row`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"grid", "years", "snapshot", "enrollment", "aid", "duplicates"},
	RunE:      runInspect,
}

var inspectArgs struct {
	metric []string
	factor float64
	year   string
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringSliceVar(
		&inspectArgs.metric,
		"metric",
		[]string{dataset.ColAcceptanceRate},
		"Columns read for the grid, first usable value wins",
	)
	flags.Float64Var(
		&inspectArgs.factor,
		"factor",
		100,
		"Multiplier applied to grid values",
	)
	flags.StringVar(
		&inspectArgs.year,
		"year",
		"",
		"Academic year for the snapshot tables, defaults to the latest",
	)
}

func snapshotYear(data *charts.Data) (string, error) {
	if inspectArgs.year != "" {
		return inspectArgs.year, nil
	}
	years := data.Years()
	if len(years) == 0 {
		return "", fmt.Errorf("dataset has no canonical years")
	}
	return years[len(years)-1].Label, nil
}

func runInspect(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := loadData(ctx, cfg)
	if err != nil {
		return err
	}

	var out interface{}
	switch argv[0] {
	case "grid":
		out = data.Grid(aggregate.Metric{Fields: inspectArgs.metric, Factor: inspectArgs.factor})
	case "years":
		out = data.Years()
	case "duplicates":
		out = data.Duplicates()
	case "snapshot", "enrollment", "aid":
		year, err := snapshotYear(data)
		if err != nil {
			return err
		}
		snap := data.Snapshot(year)
		switch argv[0] {
		case "snapshot":
			out = snap
		case "enrollment":
			out = aggregate.Enrollment(snap, data.Table)
		default:
			out = aggregate.Aid(snap)
		}
	default:
		return fmt.Errorf("unknown table %q", argv[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), as_json(out))
	return nil
}
