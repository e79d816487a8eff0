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
	"text/template"

	"ivy-charts/internal/ivy"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// Chart is one declared chart bound to the loaded data. It implements
// view.Renderer.
type Chart struct {
	opts Options
	data *Data
	tip  *template.Template
	pin  *template.Template
}

func New(opts Options, data *Data) (*Chart, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tip, err := parseTemplate(opts.Name+"-tooltip", opts.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("chart %s: tooltip: %w", opts.Name, err)
	}
	pin, err := parseTemplate(opts.Name+"-pin", opts.PinLabel)
	if err != nil {
		return nil, fmt.Errorf("chart %s: pin label: %w", opts.Name, err)
	}
	return &Chart{opts: opts, data: data, tip: tip, pin: pin}, nil
}

func (c *Chart) Name() string { return c.opts.Name }

func (c *Chart) Options() Options { return c.opts }

// Initial shows every school, slides MaxYear to the last year with data and
// selects the configured year, or the latest one when the data lacks it.
func (c *Chart) Initial() view.State {
	years := c.data.Years()
	if c.opts.Kind == KindLine {
		years = c.data.Grid(c.opts.Metric).Years
	}
	maxYear := 0
	year := c.opts.Year
	if n := len(years); n > 0 {
		maxYear = years[n-1].Start
		found := false
		for _, y := range years {
			found = found || y.Label == year
		}
		if !found {
			year = years[n-1].Label
		}
	}
	return view.NewState(c.data.Table.Keys(), maxYear, year)
}

// Render draws state `s` for a container `width` pixels wide.
func (c *Chart) Render(s view.State, width float64) (*scene.Scene, error) {
	box := Layout(c.opts, width)
	var out *scene.Scene
	switch c.opts.Kind {
	case KindLine:
		out = c.line(s, box)
	case KindMirror:
		out = c.mirror(s, box)
	case KindAid:
		out = c.aid(s, box)
	case KindRadial:
		out = c.radial(s, box)
	default:
		return nil, fmt.Errorf("chart %s: unknown kind %q", c.opts.Name, c.opts.Kind)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Chart) canvas(box Box) *scene.Scene {
	return &scene.Scene{
		Name:     c.opts.Name,
		Width:    box.Width,
		Height:   box.Height,
		Duration: c.opts.Duration,
	}
}

// noData replaces the whole chart with one centred message.
func (c *Chart) noData(box Box, year string) *scene.Scene {
	out := c.canvas(box)
	out.Add(scene.Element{
		Key:   "no-data",
		Kind:  scene.Text,
		Attrs: scene.Attrs{"x": box.Width / 2, "y": box.Height / 2, "opacity": 1},
		Enter: scene.Attrs{"opacity": 0},
		Text:  "No data for " + year,
		Style: map[string]string{"text-anchor": "middle", "fill": "#900", "class": "no-data"},
	})
	return out
}

func (c *Chart) color(school ivy.SchoolKey) string {
	if col, ok := c.opts.Colors[school]; ok {
		return col
	}
	if s, ok := c.data.Table.Get(school); ok && s.Color != "" {
		return s.Color
	}
	return "#888888"
}

func (c *Chart) short(school ivy.SchoolKey) string {
	if s, ok := c.data.Table.Get(school); ok && s.Short != "" {
		return s.Short
	}
	return school
}

// visible keeps the schools of `keys` that are toggled on, in table order.
func visible(s view.State, keys []ivy.SchoolKey) []ivy.SchoolKey {
	out := []ivy.SchoolKey{}
	for _, k := range keys {
		if s.IsVisible(k) {
			out = append(out, k)
		}
	}
	return out
}

func classes(s view.State, base string, school ivy.SchoolKey) string {
	return strings.TrimSpace(base + " " + strings.Join(s.Classes(school), " "))
}

// opacity dims everything but the highlighted school.
func opacity(s view.State, school ivy.SchoolKey) float64 {
	if s.Dimmed(school) {
		return 0.15
	}
	return 1
}

func px(v float64) string {
	return fmt.Sprintf("%gpx", v)
}

func label(key string, x, y float64, text string, style map[string]string) scene.Element {
	return scene.Element{
		Key:   key,
		Kind:  scene.Text,
		Attrs: scene.Attrs{"x": x, "y": y},
		Text:  text,
		Style: style,
	}
}
