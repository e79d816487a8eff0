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

// Package scene describes a chart as a flat list of keyed SVG primitives and
// reconciles one description against the next.
package scene

import (
	"fmt"
	"sort"
	"time"
)

type Kind string

const (
	Circle Kind = "circle"
	Line   Kind = "line"
	Rect   Kind = "rect"
	Path   Kind = "path"
	Text   Kind = "text"
)

// Attrs holds the numeric attributes of an element (geometry, opacity, widths).
type Attrs map[string]float64

func (a Attrs) Get(name string) float64 {
	return a[name]
}

func (a Attrs) clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (a Attrs) names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Element is one drawn primitive. Key is its identity across renders (a school,
// a school/year pair); two elements in one scene never share a key.
type Element struct {
	Key  string `json:"key"`
	Kind Kind   `json:"kind"`

	Attrs Attrs `json:"attrs"`
	// Enter overrides Attrs for the first frame of an element that was not on
	// screen before, e.g. r=0 or a bar of zero width.
	Enter Attrs `json:"enter,omitempty"`

	Path string `json:"path,omitempty"`
	Text string `json:"text,omitempty"`

	// Style holds string attributes: fill, stroke, class, text-anchor, ...
	Style map[string]string `json:"style,omitempty"`
	Title string            `json:"title,omitempty"`
}

// Scene is everything drawn for one chart at one moment.
type Scene struct {
	Name     string        `json:"name"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Duration time.Duration `json:"duration"`
	Elements []Element     `json:"elements"`
}

func (s *Scene) Add(e Element) {
	s.Elements = append(s.Elements, e)
}

// Find returns the element with `key`.
func (s *Scene) Find(key string) (Element, bool) {
	if s == nil {
		return Element{}, false
	}
	for _, e := range s.Elements {
		if e.Key == key {
			return e, true
		}
	}
	return Element{}, false
}

// Validate checks that keys are unique and non-empty.
func (s *Scene) Validate() error {
	seen := map[string]bool{}
	for _, e := range s.Elements {
		if e.Key == "" {
			return fmt.Errorf("scene %s: element without key", s.Name)
		}
		if seen[e.Key] {
			return fmt.Errorf("scene %s: duplicate key %q", s.Name, e.Key)
		}
		seen[e.Key] = true
	}
	return nil
}
