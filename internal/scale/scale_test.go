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

package scale

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLinear(t *testing.T) {
	l := NewLinear(2020, 2025, 0, 500)
	if got := l.Map(2020); !near(got, 0) {
		t.Errorf("Map(2020) = %v", got)
	}
	if got := l.Map(2022.5); !near(got, 250) {
		t.Errorf("Map(2022.5) = %v", got)
	}
	inverted := NewLinear(0, 12, 420, 0)
	if got := inverted.Map(12); !near(got, 0) {
		t.Errorf("inverted Map(12) = %v", got)
	}
	if got := inverted.Map(3); !near(got, 315) {
		t.Errorf("inverted Map(3) = %v", got)
	}
}

func TestLinearDegenerateDomain(t *testing.T) {
	l := NewLinear(5, 5, 0, 100)
	if got := l.Map(5); !near(got, 50) {
		t.Errorf("Map on an empty domain = %v, want the midpoint", got)
	}
}

func TestLinearTicks(t *testing.T) {
	l := NewLinear(0, 12, 400, 0)
	ticks := l.Ticks(7)
	if len(ticks) == 0 || len(ticks) > 7 {
		t.Fatalf("got %v", ticks)
	}
	for i, tick := range ticks {
		if tick < 0 || tick > 12 {
			t.Errorf("tick %v outside domain", tick)
		}
		if i > 0 && tick <= ticks[i-1] {
			t.Errorf("ticks not increasing: %v", ticks)
		}
	}
}

func TestSqrt(t *testing.T) {
	s := NewSqrt(0, 1, 4, 22)
	if got := s.Map(0); !near(got, 4) {
		t.Errorf("Map(0) = %v", got)
	}
	if got := s.Map(1); !near(got, 22) {
		t.Errorf("Map(1) = %v", got)
	}
	if got := s.Map(0.25); !near(got, 13) {
		t.Errorf("Map(0.25) = %v, want 13", got)
	}
}

func TestPoint(t *testing.T) {
	p := Point{Domain: []string{"a", "b", "c"}, Range: [2]float64{40, 240}}
	for key, want := range map[string]float64{"a": 40, "b": 140, "c": 240} {
		if got, ok := p.Map(key); !ok || !near(got, want) {
			t.Errorf("Map(%s) = %v, %v", key, got, ok)
		}
	}
	if _, ok := p.Map("z"); ok {
		t.Error("unknown key should not map")
	}
	single := Point{Domain: []string{"only"}, Range: [2]float64{40, 240}}
	if got, _ := single.Map("only"); !near(got, 140) {
		t.Errorf("single-element Map = %v", got)
	}
}

func TestBand(t *testing.T) {
	b := Band{Domain: []string{"a", "b"}, Range: [2]float64{0, 100}, Padding: 0.5}
	if got := b.Bandwidth(); !near(got, 20) {
		t.Errorf("Bandwidth = %v", got)
	}
	if got, _ := b.Map("a"); !near(got, 20) {
		t.Errorf("Map(a) = %v", got)
	}
	if got, _ := b.Map("b"); !near(got, 60) {
		t.Errorf("Map(b) = %v", got)
	}
	if got, _ := b.Center("b"); !near(got, 70) {
		t.Errorf("Center(b) = %v", got)
	}

	flush := Band{Domain: []string{"a", "b", "c"}, Range: [2]float64{0, 90}}
	if got, _ := flush.Map("c"); !near(got, 60) || !near(flush.Bandwidth(), 30) {
		t.Errorf("unpadded band: Map(c) = %v, bandwidth %v", got, flush.Bandwidth())
	}
}

func TestAngleArc(t *testing.T) {
	if got := AngleArc(8); !near(got, 2*math.Pi*7/8) {
		t.Errorf("AngleArc(8) = %v", got)
	}
	p := Point{Domain: []string{"a", "b", "c", "d"}, Range: [2]float64{0, AngleArc(4)}}
	first, _ := p.Map("a")
	last, _ := p.Map("d")
	if near(math.Mod(last, 2*math.Pi), first) {
		t.Error("last spoke overlaps the first")
	}
	if got := last - first; !near(got, 3*math.Pi/2) {
		t.Errorf("spokes span %v", got)
	}
}

func TestDomain(t *testing.T) {
	values := []float64{60000, math.NaN(), 80000}
	fallback := [2]float64{0, 1}
	if got := Domain(Padded, values, fallback); !near(got[0], 57000) || !near(got[1], 84000) {
		t.Errorf("padded = %v", got)
	}
	if got := Domain(Extent, values, fallback); got != [2]float64{60000, 80000} {
		t.Errorf("extent = %v", got)
	}
	if got := Domain(Zero, values, fallback); got != [2]float64{0, 80000} {
		t.Errorf("zero = %v", got)
	}
	if got := Domain(Padded, nil, fallback); got != fallback {
		t.Errorf("empty = %v", got)
	}
}

func TestDomainFollowsVisibleSubset(t *testing.T) {
	all := Domain(Padded, []float64{4, 10}, [2]float64{})
	subset := Domain(Padded, []float64{4, 6}, [2]float64{})
	a := NewLinear(all[0], all[1], 400, 0).Map(5)
	b := NewLinear(subset[0], subset[1], 400, 0).Map(5)
	if near(a, b) {
		t.Error("same value should move when the visible subset changes")
	}
}

func TestTurbo(t *testing.T) {
	if got := Turbo(0); got != "#23171b" {
		t.Errorf("Turbo(0) = %s", got)
	}
	if got := Turbo(1); got != "#900c00" {
		t.Errorf("Turbo(1) = %s", got)
	}
	if Turbo(-3) != Turbo(0) || Turbo(7) != Turbo(1) {
		t.Error("Turbo should clamp")
	}
	seq := Sequential{Domain: [2]float64{10, 20}}
	if seq.Map(10) != Turbo(0) || seq.Map(20) != Turbo(1) {
		t.Error("Sequential endpoints")
	}
}

func TestDomainModeValidate(t *testing.T) {
	for _, m := range []DomainMode{Padded, Extent, Zero, ""} {
		if err := m.Validate(); err != nil {
			t.Errorf("%q: %v", m, err)
		}
	}
	if DomainMode("log").Validate() == nil {
		t.Error("expected an error")
	}
}
