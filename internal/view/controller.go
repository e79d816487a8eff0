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

package view

import (
	"errors"
	"fmt"
	"sync"

	"ivy-charts/internal/ivy"
	"ivy-charts/internal/normalize"
	"ivy-charts/internal/scene"
)

var ErrUnknownSchool = errors.New("unknown school")

// Renderer draws one chart for a state at a given container width.
type Renderer interface {
	Name() string
	// Initial is the state a fresh viewer starts from.
	Initial() State
	Render(s State, width float64) (*scene.Scene, error)
}

// Frame is the result of one interaction: the scene to show and how to get
// there from the one shown before.
type Frame struct {
	State State        `json:"state"`
	Scene *scene.Scene `json:"scene"`
	Plan  scene.Plan   `json:"plan"`
}

// Controller serialises the interactions of one chart instance. It owns the
// chart's State and the previously rendered scene.
type Controller struct {
	mu       sync.Mutex
	renderer Renderer
	width    float64
	state    State
	last     *Frame
}

func NewController(r Renderer, width float64) *Controller {
	return &Controller{renderer: r, width: width, state: r.Initial()}
}

func (c *Controller) Name() string {
	return c.renderer.Name()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Frame returns the last frame, rendering the entry frame on first use.
func (c *Controller) Frame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil {
		return *c.last, nil
	}
	return c.render(c.state.Clone(), c.width)
}

// render draws `s` at `width` and diffs it against the previous scene. State
// and width are only committed when the render succeeds. Callers hold mu.
func (c *Controller) render(s State, width float64) (Frame, error) {
	next, err := c.renderer.Render(s.Clone(), width)
	if err != nil {
		return Frame{}, fmt.Errorf("rendering %s: %w", c.renderer.Name(), err)
	}
	var prev *scene.Scene
	if c.last != nil {
		prev = c.last.Scene
	}
	c.state = s
	c.width = width
	f := Frame{State: s.Clone(), Scene: next, Plan: scene.Diff(prev, next)}
	c.last = &f
	return f, nil
}

// update applies `fn` to a copy of the state and renders the result.
func (c *Controller) update(fn func(s *State) error) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.state.Clone()
	if err := fn(&next); err != nil {
		return Frame{}, err
	}
	return c.render(next, c.width)
}

func known(s *State, school ivy.SchoolKey) error {
	if !s.Known(school) {
		return fmt.Errorf("%w: %q", ErrUnknownSchool, school)
	}
	return nil
}

// Toggle flips the visibility of `school`.
func (c *Controller) Toggle(school ivy.SchoolKey) (Frame, error) {
	return c.update(func(s *State) error {
		if err := known(s, school); err != nil {
			return err
		}
		s.Visible[school] = !s.Visible[school]
		return nil
	})
}

// Reset makes every school visible again. Highlight, pin and years are kept.
func (c *Controller) Reset() (Frame, error) {
	return c.update(func(s *State) error {
		for k := range s.Visible {
			s.Visible[k] = true
		}
		return nil
	})
}

// Highlight focuses `school`; highlighting the same school again clears it.
func (c *Controller) Highlight(school ivy.SchoolKey) (Frame, error) {
	return c.update(func(s *State) error {
		if err := known(s, school); err != nil {
			return err
		}
		if s.Highlighted == school {
			s.Highlighted = ""
		} else {
			s.Highlighted = school
		}
		return nil
	})
}

// Pin keeps the label of `school` on screen; pinning it again unpins.
func (c *Controller) Pin(school ivy.SchoolKey) (Frame, error) {
	return c.update(func(s *State) error {
		if err := known(s, school); err != nil {
			return err
		}
		if s.Pinned == school {
			s.Pinned = ""
		} else {
			s.Pinned = school
		}
		return nil
	})
}

// SetMaxYear moves the slider. Every call re-renders, including repeats of the
// same value.
func (c *Controller) SetMaxYear(year int) (Frame, error) {
	return c.update(func(s *State) error {
		s.MaxYear = year
		return nil
	})
}

// SelectYear switches snapshot charts to another academic year. Short labels
// such as "2023-24" are accepted.
func (c *Controller) SelectYear(label string) (Frame, error) {
	return c.update(func(s *State) error {
		label = normalize.Year(label)
		if label == "" {
			return errors.New("empty year")
		}
		s.Year = label
		return nil
	})
}

// Resize re-lays the chart out for a new container width.
func (c *Controller) Resize(width float64) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(c.state.Clone(), width)
}

func (c *Controller) Width() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}
