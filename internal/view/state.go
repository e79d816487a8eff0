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

// Package view holds the interaction state of a chart and the controller that
// turns user events into new frames.
package view

import (
	"sort"

	"ivy-charts/internal/ivy"
)

// State is everything a user can change about one chart. It is a plain value:
// the controller hands out copies and renderers never mutate it.
type State struct {
	Visible     map[ivy.SchoolKey]bool `json:"visible"`
	Highlighted ivy.SchoolKey          `json:"highlighted,omitempty"`
	Pinned      ivy.SchoolKey          `json:"pinned,omitempty"`
	// MaxYear is the last start year drawn by time-series charts, inclusive.
	MaxYear int `json:"maxYear"`
	// Year is the canonical "YYYY-YYYY" label snapshot charts draw.
	Year string `json:"year"`
}

// NewState makes every school in `schools` visible.
func NewState(schools []ivy.SchoolKey, maxYear int, year string) State {
	s := State{Visible: map[ivy.SchoolKey]bool{}, MaxYear: maxYear, Year: year}
	for _, k := range schools {
		s.Visible[k] = true
	}
	return s
}

func (s State) Clone() State {
	out := s
	out.Visible = make(map[ivy.SchoolKey]bool, len(s.Visible))
	for k, v := range s.Visible {
		out.Visible[k] = v
	}
	return out
}

// Known reports whether `school` is one of the schools the state tracks.
func (s State) Known(school ivy.SchoolKey) bool {
	_, ok := s.Visible[school]
	return ok
}

func (s State) IsVisible(school ivy.SchoolKey) bool {
	return s.Visible[school]
}

// Dimmed is true for every school but the highlighted one, while a highlight is set.
func (s State) Dimmed(school ivy.SchoolKey) bool {
	return s.Highlighted != "" && s.Highlighted != school
}

// Classes projects the state onto the CSS classes of a school's elements.
func (s State) Classes(school ivy.SchoolKey) []string {
	classes := []string{}
	if s.IsVisible(school) {
		classes = append(classes, "active")
	}
	if s.Dimmed(school) {
		classes = append(classes, "dimmed")
	}
	if s.Pinned == school && school != "" {
		classes = append(classes, "pinned")
	}
	return classes
}

// Hidden lists the schools toggled off, sorted.
func (s State) Hidden() []ivy.SchoolKey {
	out := []ivy.SchoolKey{}
	for k, v := range s.Visible {
		if !v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
