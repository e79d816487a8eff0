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

package scene

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"

	svg "github.com/ajstarks/svgo/float"
)

// geometry attributes consumed by the svgo shape calls; everything else in Attrs
// is written as a plain attribute.
var geometry = map[Kind][]string{
	Circle: {"cx", "cy", "r"},
	Line:   {"x1", "y1", "x2", "y2"},
	Rect:   {"x", "y", "width", "height"},
	Text:   {"x", "y"},
	Path:   {},
}

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ID turns an element key into an XML id.
func ID(key string) string {
	return "e-" + unsafeID.ReplaceAllString(key, "_")
}

// WriteSVG draws `s`. Elements listed in `plan` as entering or updating start
// from their previous/neutral state and animate to their final state over
// s.Duration; exited elements are simply not drawn.
func WriteSVG(w io.Writer, s *Scene, plan Plan) error {
	if err := s.Validate(); err != nil {
		return err
	}
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height,
		fmt.Sprintf(`viewBox="0 0 %.2f %.2f"`, s.Width, s.Height),
		`preserveAspectRatio="xMidYMid meet"`)
	if s.Name != "" {
		canvas.Title(s.Name)
	}

	seconds := s.Duration.Seconds()
	for _, e := range s.Elements {
		change := plan.Changes[e.Key]
		id := ID(e.Key)

		first := e.Attrs.clone()
		for name, v := range change.From {
			first[name] = v
		}
		path := e.Path
		style := e.Style
		if change.FromText != nil {
			if d, ok := change.FromText["d"]; ok {
				path = d
			}
			style = map[string]string{}
			for k, v := range e.Style {
				style[k] = v
			}
			for k, v := range change.FromText {
				if k != "d" {
					style[k] = v
				}
			}
		}

		if e.Title != "" {
			canvas.Group(`class="tip"`)
			canvas.Title(e.Title)
		}
		extra := attributes(id, e.Kind, first, style)
		g := func(name string) float64 { return first[name] }
		switch e.Kind {
		case Circle:
			canvas.Circle(g("cx"), g("cy"), g("r"), extra...)
		case Line:
			canvas.Line(g("x1"), g("y1"), g("x2"), g("y2"), extra...)
		case Rect:
			canvas.Rect(g("x"), g("y"), g("width"), g("height"), extra...)
		case Text:
			canvas.Text(g("x"), g("y"), e.Text, extra...)
		case Path:
			if path == "" {
				// nothing defined to draw, but keep the id so the key stays addressable.
				path = "M0,0"
				extra = append(extra, `visibility="hidden"`)
			}
			canvas.Path(path, extra...)
		default:
			return fmt.Errorf("element %s: unknown kind %q", e.Key, e.Kind)
		}
		if e.Title != "" {
			canvas.Gend()
		}

		if seconds <= 0 {
			continue
		}
		for _, name := range change.To.names() {
			canvas.Animate("#"+id, name, change.From[name], change.To[name], seconds, 1, `fill="freeze"`)
		}
		for _, name := range sortedKeys(change.ToText) {
			fmt.Fprintf(canvas.Writer, `<animate xlink:href="#%s" attributeName="%s" from="%s" to="%s" dur="%gs" repeatCount="1" fill="freeze"/>`+"\n",
				id, name, html.EscapeString(change.FromText[name]), html.EscapeString(change.ToText[name]), seconds)
		}
	}
	canvas.End()
	return nil
}

func attributes(id string, kind Kind, attrs Attrs, style map[string]string) []string {
	out := []string{fmt.Sprintf(`id="%s"`, id)}
	skip := map[string]bool{}
	for _, name := range geometry[kind] {
		skip[name] = true
	}
	for _, name := range attrs.names() {
		if skip[name] {
			continue
		}
		out = append(out, fmt.Sprintf(`%s="%g"`, name, attrs[name]))
	}
	for _, name := range sortedKeys(style) {
		out = append(out, fmt.Sprintf(`%s="%s"`, name, html.EscapeString(style[name])))
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
