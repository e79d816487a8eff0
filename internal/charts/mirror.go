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
	"ivy-charts/internal/aggregate"
	"ivy-charts/internal/ivy"
	"ivy-charts/internal/scale"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// estimateFootnote is drawn when the chart declares no footnote of its own.
const estimateFootnote = "Enrolled counts are estimated class sizes."

// mirror draws admitted counts growing left and enrolled counts growing right
// from a shared centre line, one band per school.
func (c *Chart) mirror(s view.State, box Box) *scene.Scene {
	rows := []aggregate.EnrollmentRow{}
	for _, r := range aggregate.Enrollment(c.data.Snapshot(s.Year), c.data.Table) {
		if s.IsVisible(r.School) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return c.noData(box, s.Year)
	}

	out := c.canvas(box)
	values := []float64{}
	schools := []ivy.SchoolKey{}
	for _, r := range rows {
		values = append(values, float64(r.Admitted), float64(r.Enrolled))
		schools = append(schools, r.School)
	}
	dom := scale.Domain(scale.Zero, values, [2]float64{0, 1})
	mid := box.Left() + box.PlotWidth()/2
	left := scale.NewLinear(dom[0], dom[1], mid, box.Left())
	right := scale.NewLinear(dom[0], dom[1], mid, box.Right())
	padding := c.opts.Padding
	if padding == 0 {
		padding = 0.35
	}
	band := scale.Band{Domain: schools, Range: [2]float64{box.Top(), box.Bottom()}, Padding: padding}
	bw := band.Bandwidth()

	admittedColor := c.paletteColor("admitted", "#808080")
	enrolledColor := c.paletteColor("enrolled", "#00ff41")
	font := px(box.FontSize)
	valueFont := px(box.FontSize - 1)
	gap := 10.0
	if box.Small {
		gap = 5
	}

	out.Add(scene.Element{
		Key:   "divider",
		Kind:  scene.Line,
		Attrs: scene.Attrs{"x1": mid, "y1": box.Top(), "x2": mid, "y2": box.Bottom()},
		Style: map[string]string{"stroke": enrolledColor, "stroke-width": "2", "stroke-dasharray": "4", "class": "enroll-divider-line"},
	})

	for _, r := range rows {
		by, _ := band.Map(r.School)
		textY := by + bw/1.6
		alpha := opacity(s, r.School)
		tip := execute(c.tip, Tip{
			School:   r.School,
			Short:    c.short(r.School),
			Year:     s.Year,
			Admitted: r.Admitted,
			Enrolled: r.Enrolled,
			Yield:    r.YieldPct,
		})

		ax := left.Map(float64(r.Admitted))
		out.Add(scene.Element{
			Key:   "admitted/" + r.School,
			Kind:  scene.Rect,
			Attrs: scene.Attrs{"x": ax, "y": by, "width": mid - ax, "height": bw, "opacity": alpha},
			Enter: scene.Attrs{"x": mid, "width": 0},
			Style: map[string]string{"fill": admittedColor, "stroke": "#1a1a1a", "stroke-width": "1", "class": classes(s, "enroll-bar enroll-bar-left", r.School)},
			Title: tip,
		})
		ex := right.Map(float64(r.Enrolled))
		out.Add(scene.Element{
			Key:   "enrolled/" + r.School,
			Kind:  scene.Rect,
			Attrs: scene.Attrs{"x": mid, "y": by, "width": ex - mid, "height": bw, "opacity": alpha},
			Enter: scene.Attrs{"width": 0},
			Style: map[string]string{"fill": enrolledColor, "stroke": "#00cc33", "stroke-width": "1", "class": classes(s, "enroll-bar enroll-bar-right", r.School)},
			Title: tip,
		})

		out.Add(label("school/"+r.School, mid, textY, r.School, map[string]string{
			"text-anchor": "middle", "fill": enrolledColor, "font-weight": "600", "font-size": font, "class": classes(s, "enroll-school-label", r.School),
		}))
		admitted, enrolled := comma(r.Admitted), comma(r.Enrolled)
		if box.Small {
			admitted, enrolled = thousandsK(r.Admitted), thousandsK(r.Enrolled)
		}
		out.Add(scene.Element{
			Key:   "admitted-value/" + r.School,
			Kind:  scene.Text,
			Attrs: scene.Attrs{"x": ax - gap, "y": textY, "opacity": alpha},
			Enter: scene.Attrs{"x": mid - gap},
			Text:  admitted,
			Style: map[string]string{"text-anchor": "end", "fill": "#000000", "font-weight": "600", "font-size": valueFont, "class": "enroll-value-label"},
		})
		out.Add(scene.Element{
			Key:   "enrolled-value/" + r.School,
			Kind:  scene.Text,
			Attrs: scene.Attrs{"x": ex + gap, "y": textY, "opacity": alpha},
			Enter: scene.Attrs{"x": mid + gap},
			Text:  enrolled,
			Style: map[string]string{"text-anchor": "start", "fill": "#000000", "font-weight": "600", "font-size": valueFont, "class": "enroll-value-label"},
		})
	}

	heading := map[string]string{"text-anchor": "middle", "font-weight": "600", "fill": enrolledColor, "font-size": font}
	out.Add(label("heading/admitted", box.Left()+box.PlotWidth()/4, box.Top()-15, "Admitted", heading))
	out.Add(label("heading/enrolled", box.Left()+box.PlotWidth()*3/4, box.Top()-15, "Enrolled", heading))
	footnote := c.opts.Footnote
	if footnote == "" {
		footnote = estimateFootnote
	}
	out.Add(label("footnote", mid, box.Height-6, footnote, map[string]string{
		"text-anchor": "middle", "fill": "#555", "font-size": valueFont, "class": "enroll-footnote",
	}))
	return out
}

func (c *Chart) paletteColor(name, fallback string) string {
	if col, ok := c.opts.Colors[name]; ok {
		return col
	}
	return fallback
}
