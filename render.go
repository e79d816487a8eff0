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
	"path/filepath"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"ivy-charts/internal/charts"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write charts as SVG",
	Long: `render draws each selected chart to <out>/<name>.svg.

The view flags are applied in order (hide, highlight, pin, max-year, year) the
same way the interactive controls would. The file animates every element in
from its entry state unless --static is given.`,
	RunE: runRender,
}

var renderArgs struct {
	chart     string
	out       string
	width     float64
	hide      []string
	highlight string
	pin       string
	maxYear   int
	year      string
	static    bool
}

func init() {
	flags := renderCmd.Flags()
	flags.StringVar(
		&renderArgs.chart,
		"chart",
		"all",
		"Chart to draw, or 'all'",
	)
	flags.StringVar(
		&renderArgs.out,
		"out",
		".",
		"Directory the SVG files are written to",
	)
	flags.Float64Var(
		&renderArgs.width,
		"width",
		0,
		"Container width, defaults to the configured width",
	)
	flags.StringSliceVar(
		&renderArgs.hide,
		"hide",
		nil,
		"Schools to hide, may be repeated",
	)
	flags.StringVar(
		&renderArgs.highlight,
		"highlight",
		"",
		"School to highlight",
	)
	flags.StringVar(
		&renderArgs.pin,
		"pin",
		"",
		"School to pin a value label to",
	)
	flags.IntVar(
		&renderArgs.maxYear,
		"max-year",
		0,
		"Last start year drawn on the line chart",
	)
	flags.StringVar(
		&renderArgs.year,
		"year",
		"",
		"Academic year for the snapshot charts, e.g. 2023-2024",
	)
	flags.BoolVar(
		&renderArgs.static,
		"static",
		false,
		"Omit the entry animation",
	)
}

// applyView drives `ctl` through the view flags and returns the final frame.
func applyView(ctl *view.Controller) (view.Frame, error) {
	for _, school := range renderArgs.hide {
		if _, err := ctl.Toggle(school); err != nil {
			return view.Frame{}, err
		}
	}
	if renderArgs.highlight != "" {
		if _, err := ctl.Highlight(renderArgs.highlight); err != nil {
			return view.Frame{}, err
		}
	}
	if renderArgs.pin != "" {
		if _, err := ctl.Pin(renderArgs.pin); err != nil {
			return view.Frame{}, err
		}
	}
	if renderArgs.maxYear != 0 {
		if _, err := ctl.SetMaxYear(renderArgs.maxYear); err != nil {
			return view.Frame{}, err
		}
	}
	if renderArgs.year != "" {
		if _, err := ctl.SelectYear(renderArgs.year); err != nil {
			return view.Frame{}, err
		}
	}
	return ctl.Frame()
}

func renderChart(ch *charts.Chart, width float64) ([]byte, error) {
	f, err := applyView(view.NewController(ch, width))
	if err != nil {
		return nil, err
	}
	plan := scene.Diff(nil, f.Scene)
	if renderArgs.static {
		plan = scene.Plan{}
	}
	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf, f.Scene, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := klog.FromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := loadData(ctx, cfg)
	if err != nil {
		return err
	}
	all, err := buildCharts(cfg, data)
	if err != nil {
		return err
	}
	selected, err := selectCharts(all, renderArgs.chart)
	if err != nil {
		return err
	}

	width := renderArgs.width
	if width <= 0 {
		width = cfg.Width
	}
	for _, ch := range selected {
		body, err := renderChart(ch, width)
		if err != nil {
			return err
		}
		path := filepath.Join(renderArgs.out, ch.Name()+".svg")
		if err := spit(body, path); err != nil {
			return err
		}
		log.Info("wrote chart", "chart", ch.Name(), "path", path)
	}
	return nil
}
