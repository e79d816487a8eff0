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
	"math"
	"strings"
)

// Pt is a path vertex. Points with Defined == false break the line.
type Pt struct {
	X, Y    float64
	Defined bool
}

// MonotoneX builds SVG path data through `points` using a monotone cubic
// interpolation in x (Steffen's method, as d3.curveMonotoneX). Undefined points
// split the path into separate subpaths.
func MonotoneX(points []Pt) string {
	var b strings.Builder
	var run []Pt
	flush := func() {
		if len(run) > 0 {
			writeMonotone(&b, run)
		}
		run = run[:0]
	}
	for _, p := range points {
		if !p.Defined || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			flush()
			continue
		}
		if n := len(run); n > 0 && run[n-1].X == p.X && run[n-1].Y == p.Y {
			continue
		}
		run = append(run, p)
	}
	flush()
	return b.String()
}

func writeMonotone(b *strings.Builder, pts []Pt) {
	fmt.Fprintf(b, "M%s", xy(pts[0].X, pts[0].Y))
	switch len(pts) {
	case 1:
		b.WriteString("Z")
		return
	case 2:
		fmt.Fprintf(b, "L%s", xy(pts[1].X, pts[1].Y))
		return
	}

	tangents := make([]float64, len(pts))
	for i := 1; i < len(pts)-1; i++ {
		tangents[i] = slope3(pts[i-1], pts[i], pts[i+1])
	}
	tangents[0] = slope2(pts[0], pts[1], tangents[1])
	last := len(pts) - 1
	tangents[last] = slope2(pts[last-1], pts[last], tangents[last-1])

	for i := 1; i < len(pts); i++ {
		p0, p1 := pts[i-1], pts[i]
		dx := (p1.X - p0.X) / 3
		fmt.Fprintf(b, "C%s,%s,%s",
			xy(p0.X+dx, p0.Y+dx*tangents[i-1]),
			xy(p1.X-dx, p1.Y-dx*tangents[i]),
			xy(p1.X, p1.Y))
	}
}

// slope3 is the tangent at p1 given its neighbours.
func slope3(p0, p1, p2 Pt) float64 {
	h0 := p1.X - p0.X
	h1 := p2.X - p1.X
	if h0 == 0 || h1 == 0 || h0+h1 == 0 {
		return 0
	}
	s0 := (p1.Y - p0.Y) / h0
	s1 := (p2.Y - p1.Y) / h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// slope2 is the one-sided tangent at an end point, given the neighbour's tangent t.
func slope2(p0, p1 Pt, t float64) float64 {
	h := p1.X - p0.X
	if h == 0 {
		return t
	}
	return (3*(p1.Y-p0.Y)/h - t) / 2
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func xy(x, y float64) string {
	return trim(x) + "," + trim(y)
}

func trim(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
