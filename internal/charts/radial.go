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
	"math"

	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/scale"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// radial puts schools on spokes and years on rings. Only the selected year's
// ring is drawn; its dots are coloured and sized by cost.
func (c *Chart) radial(s view.State, box Box) *scene.Scene {
	costs := aggregate.Costs(c.data.Grid(c.opts.Metric), s.Year)
	if costs == nil {
		return c.noData(box, s.Year)
	}
	defined := []float64{}
	for _, p := range costs {
		if p.Defined && s.IsVisible(p.School) {
			defined = append(defined, p.Value)
		}
	}

	out := c.canvas(box)
	cx, cy := box.Width/2, box.Height/2
	labels := []string{}
	for _, y := range c.data.Years() {
		labels = append(labels, y.Label)
	}
	rings := scale.Point{Domain: labels, Range: [2]float64{box.InnerRadius, box.OuterRadius}}
	keys := c.data.Table.Keys()
	angle := scale.Point{Domain: keys, Range: [2]float64{0, scale.AngleArc(len(keys))}}

	mode := c.opts.Domain
	if mode == "" {
		mode = scale.Extent
	}
	// [0, 1] when no dot is on screen.
	dom := scale.Domain(mode, defined, [2]float64{0, 1})
	color := scale.Sequential{Domain: dom}
	size := scale.NewSqrt(dom[0], dom[1], 3, 9)
	font := px(box.FontSize)

	for _, k := range keys {
		a, _ := angle.Map(k)
		cos, sin := math.Cos(a), math.Sin(a)
		out.Add(scene.Element{
			Key:   "spoke/" + k,
			Kind:  scene.Line,
			Attrs: scene.Attrs{"x1": cx + cos*box.InnerRadius, "y1": cy + sin*box.InnerRadius, "x2": cx + cos*box.OuterRadius, "y2": cy + sin*box.OuterRadius},
			Style: map[string]string{"stroke": "#e1e1e1", "class": "grid-spoke"},
		})
		anchor := "middle"
		switch {
		case cos > 0.3:
			anchor = "start"
		case cos < -0.3:
			anchor = "end"
		}
		out.Add(label("college/"+k, cx+cos*(box.OuterRadius+14), cy+sin*(box.OuterRadius+14), c.short(k), map[string]string{
			"text-anchor": anchor, "font-size": font, "class": classes(s, "college-label", k),
		}))
	}
	out.Add(label("center", cx, cy+6, "IVY", map[string]string{"text-anchor": "middle", "font-weight": "600", "class": "center-text"}))

	radius, ok := rings.Map(s.Year)
	if !ok {
		radius = (box.InnerRadius + box.OuterRadius) / 2
	}
	out.Add(scene.Element{
		Key:   "ring",
		Kind:  scene.Circle,
		Attrs: scene.Attrs{"cx": cx, "cy": cy, "r": radius},
		Enter: scene.Attrs{"r": 0},
		Style: map[string]string{"fill": "none", "stroke": "#e1e1e1", "class": "grid-circle"},
	})
	out.Add(scene.Element{
		Key:   "ring-label",
		Kind:  scene.Text,
		Attrs: scene.Attrs{"x": cx, "y": cy - radius - 6, "opacity": 1},
		Enter: scene.Attrs{"opacity": 0},
		Text:  s.Year,
		Style: map[string]string{"text-anchor": "middle", "font-size": font, "class": "axis-label"},
	})

	for _, p := range costs {
		if !p.Defined || !s.IsVisible(p.School) {
			continue
		}
		a, _ := angle.Map(p.School)
		x, y := cx+math.Cos(a)*radius, cy+math.Sin(a)*radius
		tip := Tip{School: p.School, Short: c.short(p.School), Year: s.Year, Value: p.Value, Defined: true}
		out.Add(scene.Element{
			Key:   "dot/" + p.School,
			Kind:  scene.Circle,
			Attrs: scene.Attrs{"cx": x, "cy": y, "r": size.Map(p.Value), "opacity": opacity(s, p.School)},
			Enter: scene.Attrs{"r": 0, "opacity": 0},
			Style: map[string]string{"fill": color.Map(p.Value), "stroke": "#222", "stroke-width": "1.5", "class": classes(s, "dot", p.School)},
			Title: execute(c.tip, tip),
		})
		if s.Pinned == p.School && c.pin != nil {
			out.Add(label("pin/"+p.School, x+10, y-10, execute(c.pin, tip), map[string]string{
				"font-size": font, "font-weight": "600", "class": "pin-label",
			}))
		}
	}
	return out
}
