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
	"math"
	"strconv"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/ivy"
	"ivy-charts/internal/scale"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// yFallback is the rate domain drawn when nothing is visible.
var yFallback = [2]float64{0, 12}

// line draws one monotone path per visible school over year slots. The x domain
// covers every year in the grid so hidden or filtered years keep their place;
// the y domain only looks at what is on screen.
func (c *Chart) line(s view.State, box Box) *scene.Scene {
	out := c.canvas(box)
	grid := c.data.Grid(c.opts.Metric)

	series := map[ivy.SchoolKey][]aggregate.SeriesPoint{}
	values := []float64{}
	schools := visible(s, c.data.Table.Keys())
	for _, school := range schools {
		points := grid.Series(school, s.MaxYear)
		series[school] = points
		for _, p := range points {
			if p.Defined {
				values = append(values, p.Value)
			}
		}
	}

	first, last, ok := grid.StartRange()
	if !ok {
		first, last = s.MaxYear, s.MaxYear
	}
	x := scale.NewLinear(float64(first), float64(last), box.Left(), box.Right())
	dom := scale.Domain(c.opts.Domain, values, yFallback)
	y := scale.NewLinear(dom[0], dom[1], box.Bottom(), box.Top())

	ticks := c.opts.Ticks
	if ticks <= 0 {
		ticks = 12
	}
	font := px(box.FontSize)
	for _, t := range y.Ticks(ticks) {
		ty := y.Map(t)
		key := strconv.FormatFloat(t, 'g', -1, 64)
		out.Add(scene.Element{
			Key:   "grid/" + key,
			Kind:  scene.Line,
			Attrs: scene.Attrs{"x1": box.Left(), "y1": ty, "x2": box.Right(), "y2": ty},
			Style: map[string]string{"stroke": "#e2e8f0", "stroke-width": "1", "stroke-dasharray": "4", "class": "admission-grid-line"},
		})
		out.Add(label("ytick/"+key, box.Left()-8, ty+4, tickLabel(t)+"%", map[string]string{
			"text-anchor": "end", "font-size": font, "class": "admission-axis",
		}))
	}
	for _, yr := range grid.Years {
		out.Add(label(fmt.Sprintf("xtick/%d", yr.Start), x.Map(float64(yr.Start)), box.Bottom()+18, strconv.Itoa(yr.Start), map[string]string{
			"text-anchor": "middle", "font-size": font, "class": "admission-axis",
		}))
	}
	axis := map[string]string{"stroke": "#94a3b8", "class": "admission-axis"}
	out.Add(scene.Element{Key: "axis/x", Kind: scene.Line, Attrs: scene.Attrs{"x1": box.Left(), "y1": box.Bottom(), "x2": box.Right(), "y2": box.Bottom()}, Style: axis})
	out.Add(scene.Element{Key: "axis/y", Kind: scene.Line, Attrs: scene.Attrs{"x1": box.Left(), "y1": box.Top(), "x2": box.Left(), "y2": box.Bottom()}, Style: axis})

	offset := 45.0
	if box.Small {
		offset = 35
	}
	if c.opts.XLabel != "" {
		out.Add(label("label/x", box.Left()+box.PlotWidth()/2, box.Bottom()+offset, c.opts.XLabel, map[string]string{
			"text-anchor": "middle", "font-size": font, "font-weight": "600", "class": "admission-x-label",
		}))
	}
	if c.opts.YLabel != "" {
		// rotated -90 degrees about the origin, so x runs along the plot height.
		out.Add(label("label/y", -(box.Top() + box.PlotHeight()/2), box.Left()-offset, c.opts.YLabel, map[string]string{
			"text-anchor": "middle", "font-size": font, "font-weight": "600", "transform": "rotate(-90)", "class": "admission-y-label",
		}))
	}

	for _, school := range schools {
		points := series[school]
		color := c.color(school)
		alpha := opacity(s, school)

		vertices := make([]scene.Pt, len(points))
		for i, p := range points {
			vertices[i] = scene.Pt{X: x.Map(float64(p.Year)), Y: y.Map(p.Value), Defined: p.Defined}
		}
		out.Add(scene.Element{
			Key:   "line/" + school,
			Kind:  scene.Path,
			Attrs: scene.Attrs{"opacity": alpha},
			Enter: scene.Attrs{"opacity": 0},
			Path:  scene.MonotoneX(vertices),
			Style: map[string]string{"stroke": color, "fill": "none", "stroke-width": "3", "class": classes(s, "admission-line-path", school)},
		})

		var lastDefined *scene.Pt
		var lastPoint aggregate.SeriesPoint
		for i, p := range points {
			if !p.Defined {
				continue
			}
			v := vertices[i]
			lastDefined, lastPoint = &v, p
			r := 5.0
			if s.Highlighted == school {
				r = 7
			}
			out.Add(scene.Element{
				Key:   fmt.Sprintf("point/%s/%d", school, p.Year),
				Kind:  scene.Circle,
				Attrs: scene.Attrs{"cx": v.X, "cy": v.Y, "r": r, "opacity": alpha},
				Enter: scene.Attrs{"r": 0},
				Style: map[string]string{"fill": color, "stroke": "white", "stroke-width": "2", "class": classes(s, "admission-point", school)},
				Title: execute(c.tip, c.pointTip(school, p)),
			})
		}
		if s.Pinned == school && lastDefined != nil && c.pin != nil {
			out.Add(label("pin/"+school, lastDefined.X+8, lastDefined.Y-8, execute(c.pin, c.pointTip(school, lastPoint)), map[string]string{
				"fill": color, "font-size": font, "font-weight": "600", "class": "pin-label",
			}))
		}
	}
	return out
}

func (c *Chart) pointTip(school ivy.SchoolKey, p aggregate.SeriesPoint) Tip {
	return Tip{
		School:  school,
		Short:   c.short(school),
		Year:    strconv.Itoa(p.Year),
		Value:   roundTo(p.Value, 4),
		Defined: p.Defined,
	}
}

func roundTo(v float64, digits int) float64 {
	f := math.Pow(10, float64(digits))
	return math.Round(v*f) / f
}
