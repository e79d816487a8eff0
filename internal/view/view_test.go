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
	"reflect"
	"testing"

	"ivy-charts/internal/scene"
)

// stub draws one circle per visible school, offset by the highlight.
type stub struct {
	renders int
	fail    error
}

func (s *stub) Name() string { return "stub" }

func (s *stub) Initial() State {
	return NewState([]string{"Harvard", "Yale", "Penn"}, 2024, "2024-2025")
}

func (s *stub) Render(st State, width float64) (*scene.Scene, error) {
	s.renders++
	if s.fail != nil {
		return nil, s.fail
	}
	out := &scene.Scene{Name: "stub", Width: width, Height: 100}
	for i, k := range []string{"Harvard", "Yale", "Penn"} {
		if !st.IsVisible(k) {
			continue
		}
		r := 5.0
		if st.Highlighted == k {
			r = 8
		}
		out.Add(scene.Element{Key: k, Kind: scene.Circle, Attrs: scene.Attrs{"cx": float64(10 * i), "cy": 10, "r": r}})
	}
	return out, nil
}

func TestToggleIsAnInvolution(t *testing.T) {
	c := NewController(&stub{}, 800)
	before := c.State()
	if _, err := c.Toggle("Yale"); err != nil {
		t.Fatal(err)
	}
	if c.State().IsVisible("Yale") {
		t.Error("Yale should be hidden")
	}
	if _, err := c.Toggle("Yale"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, c.State()) {
		t.Errorf("toggle twice: got %+v, want %+v", c.State(), before)
	}
}

func TestToggleProducesExitAndEnter(t *testing.T) {
	c := NewController(&stub{}, 800)
	if _, err := c.Frame(); err != nil {
		t.Fatal(err)
	}
	f, err := c.Toggle("Penn")
	if err != nil {
		t.Fatal(err)
	}
	if f.Plan.Op("Penn") != scene.Exit {
		t.Errorf("Penn: %v", f.Plan.Op("Penn"))
	}
	f, err = c.Toggle("Penn")
	if err != nil {
		t.Fatal(err)
	}
	if f.Plan.Op("Penn") != scene.Enter {
		t.Errorf("Penn: %v", f.Plan.Op("Penn"))
	}
}

func TestResetRestoresAll(t *testing.T) {
	c := NewController(&stub{}, 800)
	c.Toggle("Harvard")
	c.Toggle("Yale")
	if _, err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"Harvard", "Yale", "Penn"} {
		if !c.State().IsVisible(k) {
			t.Errorf("%s still hidden", k)
		}
	}
}

func TestHighlightIsExclusive(t *testing.T) {
	c := NewController(&stub{}, 800)
	c.Highlight("Harvard")
	f, err := c.Highlight("Yale")
	if err != nil {
		t.Fatal(err)
	}
	if f.State.Highlighted != "Yale" {
		t.Errorf("highlighted = %q", f.State.Highlighted)
	}
	if got := f.Plan.Changes["Harvard"]; got.Op != scene.Update || got.To["r"] != 5 {
		t.Errorf("Harvard should shrink back: %+v", got)
	}
	f, _ = c.Highlight("Yale")
	if f.State.Highlighted != "" {
		t.Error("highlighting the same school again should clear it")
	}
}

func TestPinToggles(t *testing.T) {
	c := NewController(&stub{}, 800)
	c.Pin("Penn")
	if c.State().Pinned != "Penn" {
		t.Fatal("not pinned")
	}
	c.Pin("Penn")
	if c.State().Pinned != "" {
		t.Error("second pin should clear")
	}
}

func TestUnknownSchool(t *testing.T) {
	c := NewController(&stub{}, 800)
	for name, op := range map[string]func(string) (Frame, error){
		"toggle":    c.Toggle,
		"highlight": c.Highlight,
		"pin":       c.Pin,
	} {
		if _, err := op("MIT"); !errors.Is(err, ErrUnknownSchool) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestSetMaxYearRendersEveryTime(t *testing.T) {
	r := &stub{}
	c := NewController(r, 800)
	for i := 0; i < 3; i++ {
		if _, err := c.SetMaxYear(2022); err != nil {
			t.Fatal(err)
		}
	}
	if r.renders != 3 {
		t.Errorf("renders = %d, want 3", r.renders)
	}
	if c.State().MaxYear != 2022 {
		t.Errorf("max year = %d", c.State().MaxYear)
	}
}

func TestSelectYearNormalizes(t *testing.T) {
	c := NewController(&stub{}, 800)
	f, err := c.SelectYear("2023-24")
	if err != nil {
		t.Fatal(err)
	}
	if f.State.Year != "2023-2024" {
		t.Errorf("year = %q", f.State.Year)
	}
	if _, err := c.SelectYear("  "); err == nil {
		t.Error("expected error for empty year")
	}
}

func TestStateIsCopiedOnRead(t *testing.T) {
	c := NewController(&stub{}, 800)
	s := c.State()
	s.Visible["Harvard"] = false
	if !c.State().IsVisible("Harvard") {
		t.Error("mutating a copy leaked into the controller")
	}
}

func TestClasses(t *testing.T) {
	s := NewState([]string{"Harvard", "Yale"}, 2024, "2024-2025")
	s.Highlighted = "Harvard"
	s.Pinned = "Yale"
	s.Visible["Yale"] = false
	cases := map[string][]string{
		"Harvard": {"active"},
		"Yale":    {"dimmed", "pinned"},
	}
	for school, want := range cases {
		if got := s.Classes(school); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %v, want %v", school, got, want)
		}
	}
	if got := fmt.Sprint(s.Hidden()); got != "[Yale]" {
		t.Errorf("hidden = %s", got)
	}
}

func TestConcurrentInteractions(t *testing.T) {
	c := NewController(&stub{}, 800)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			c.Toggle("Harvard")
			c.Frame()
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	// an even number of toggles leaves Harvard visible.
	if !c.State().IsVisible("Harvard") {
		t.Error("Harvard hidden after an even number of toggles")
	}
}

func TestFailedRenderKeepsState(t *testing.T) {
	r := &stub{}
	c := NewController(r, 800)
	before, err := c.Frame()
	if err != nil {
		t.Fatal(err)
	}

	r.fail = errors.New("bad scene")
	if _, err := c.Toggle("Yale"); err == nil {
		t.Fatal("expected render error")
	}
	if _, err := c.Resize(300); err == nil {
		t.Fatal("expected render error")
	}
	if !c.State().IsVisible("Yale") {
		t.Error("failed toggle changed the state")
	}
	if c.Width() != 800 {
		t.Errorf("failed resize changed the width to %v", c.Width())
	}
	f, err := c.Frame()
	if err != nil || !reflect.DeepEqual(f.Scene, before.Scene) {
		t.Errorf("last frame changed: %v", err)
	}

	r.fail = nil
	f, err = c.Toggle("Yale")
	if err != nil {
		t.Fatal(err)
	}
	if f.Plan.Op("Yale") != scene.Exit {
		t.Errorf("Yale op = %v, want exit", f.Plan.Op("Yale"))
	}
}
