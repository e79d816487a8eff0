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
	"strconv"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/ivy"
	"ivy-charts/internal/scale"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// needMetRadius sizes aid dots by the share of need met.
var needMetRadius = scale.NewSqrt(0, 1, 4, 22)

const missingNeedRadius = 6

// aid draws a lollipop per school: a line from the domain start to the average
// aid amount, capped with a dot sized by percent of need met.
func (c *Chart) aid(s view.State, box Box) *scene.Scene {
	rows := []aggregate.AidRow{}
	for _, r := range aggregate.Aid(c.data.Snapshot(s.Year)) {
		if s.IsVisible(r.School) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return c.noData(box, s.Year)
	}

	out := c.canvas(box)
	amounts := make([]float64, len(rows))
	schools := make([]ivy.SchoolKey, len(rows))
	for i, r := range rows {
		amounts[i] = r.Aid
		schools[i] = r.School
	}
	dom := scale.Domain(c.opts.Domain, amounts, [2]float64{0, 1})
	x := scale.NewLinear(dom[0], dom[1], box.Left(), box.Right())
	padding := c.opts.Padding
	if padding == 0 {
		padding = 0.4
	}
	y := scale.Band{Domain: schools, Range: [2]float64{box.Top(), box.Bottom()}, Padding: padding}
	startX := x.Map(dom[0])
	font := px(box.FontSize)

	ticks := c.opts.Ticks
	if ticks <= 0 {
		ticks = 5
	}
	axis := map[string]string{"stroke": "#999", "class": "aid-x-axis"}
	out.Add(scene.Element{Key: "axis/x", Kind: scene.Line, Attrs: scene.Attrs{"x1": box.Left(), "y1": box.Bottom(), "x2": box.Right(), "y2": box.Bottom()}, Style: axis})
	for _, t := range x.Ticks(ticks) {
		key := "xtick/" + strconv.FormatFloat(t, 'f', -1, 64)
		out.Add(scene.Element{
			Key:   key,
			Kind:  scene.Text,
			Attrs: scene.Attrs{"x": x.Map(t), "y": box.Bottom() + 16},
			Enter: scene.Attrs{"x": startX},
			Text:  dollarsK(t),
			Style: map[string]string{"text-anchor": "middle", "font-size": font, "class": "aid-x-axis"},
		})
	}

	for _, r := range rows {
		cy, _ := y.Center(r.School)
		color := c.color(r.School)
		ax := x.Map(r.Aid)
		radius := float64(missingNeedRadius)
		if r.HasPct {
			radius = needMetRadius.Map(r.PctNeedMet)
		}
		tip := Tip{
			School:     r.School,
			Short:      c.short(r.School),
			Year:       s.Year,
			Value:      r.Aid,
			Defined:    true,
			Aid:        r.Aid,
			PctNeedMet: r.PctNeedMet,
			HasPct:     r.HasPct,
		}

		out.Add(label("school/"+r.School, box.Left()-10, cy+4, r.School, map[string]string{
			"text-anchor": "end", "font-weight": "600", "font-size": font, "class": classes(s, "aid-y-axis", r.School),
		}))
		out.Add(scene.Element{
			Key:   "line/" + r.School,
			Kind:  scene.Line,
			Attrs: scene.Attrs{"x1": startX, "y1": cy, "x2": ax, "y2": cy, "stroke-opacity": 0.85 * opacity(s, r.School)},
			Enter: scene.Attrs{"x2": startX, "stroke-opacity": 0.3},
			Style: map[string]string{"stroke": color, "stroke-width": "3", "stroke-linecap": "round", "class": classes(s, "aid-line", r.School)},
		})
		out.Add(scene.Element{
			Key:   "dot/" + r.School,
			Kind:  scene.Circle,
			Attrs: scene.Attrs{"cx": ax, "cy": cy, "r": radius, "fill-opacity": 0.9 * opacity(s, r.School)},
			Enter: scene.Attrs{"cx": startX},
			Style: map[string]string{"fill": color, "stroke": "#fff", "stroke-width": "1.5", "class": classes(s, "aid-circle", r.School)},
			Title: execute(c.tip, tip),
		})
		if s.Pinned == r.School && c.pin != nil {
			out.Add(label("pin/"+r.School, ax+radius+6, cy+4, execute(c.pin, tip), map[string]string{
				"fill": color, "font-size": font, "font-weight": "600", "class": "pin-label",
			}))
		}
	}

	muted := map[string]string{"fill": "#555", "font-size": font}
	out.Add(label("min", box.Left(), box.Bottom()+35, dollarsK(dom[0]), with(muted, "text-anchor", "start", "class", "aid-min-label")))
	out.Add(label("max", box.Right(), box.Bottom()+35, dollarsK(dom[1]), with(muted, "text-anchor", "end", "class", "aid-max-label")))
	if c.opts.Caption != "" {
		out.Add(label("caption", box.Left()+box.PlotWidth()/2, box.Bottom()+50, c.opts.Caption, with(muted, "text-anchor", "middle")))
	}
	return out
}

// with copies `style` and sets the key/value pairs in kv.
func with(style map[string]string, kv ...string) map[string]string {
	out := make(map[string]string, len(style)+len(kv)/2)
	for k, v := range style {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}
