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

// Package scale maps data domains onto pixel ranges.
//
// Domains are always derived from whatever subset is currently on screen; callers
// rebuild their scales on every render rather than caching them.
package scale

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"
)

// Linear maps [Domain[0], Domain[1]] onto [Range[0], Range[1]].
type Linear struct {
	Domain [2]float64
	Range  [2]float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

func (l Linear) unit() scale.Linear {
	return scale.Linear{Min: l.Domain[0], Max: l.Domain[1]}
}

func (l Linear) Map(x float64) float64 {
	return l.Range[0] + l.unit().Map(x)*(l.Range[1]-l.Range[0])
}

// Ticks returns at most `n` nicely spaced values inside the domain.
func (l Linear) Ticks(n int) []float64 {
	lo, hi := l.Domain[0], l.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	major, _ := l.unit().Ticks(scale.TickOptions{Max: n})
	ticks := []float64{}
	for _, t := range major {
		if t >= lo-1e-9 && t <= hi+1e-9 {
			ticks = append(ticks, t)
		}
	}
	return ticks
}

// Sqrt is d3's scaleSqrt: a linear scale applied to sqrt(x).
type Sqrt struct {
	Domain [2]float64
	Range  [2]float64
}

func NewSqrt(d0, d1, r0, r1 float64) Sqrt {
	return Sqrt{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

func (s Sqrt) Map(x float64) float64 {
	l := NewLinear(signedSqrt(s.Domain[0]), signedSqrt(s.Domain[1]), s.Range[0], s.Range[1])
	return l.Map(signedSqrt(x))
}

func signedSqrt(x float64) float64 {
	if x < 0 {
		return -math.Sqrt(-x)
	}
	return math.Sqrt(x)
}

// Point spaces a discrete domain evenly across the range, ends included.
// A single-element domain sits in the middle.
type Point struct {
	Domain []string
	Range  [2]float64
}

func (p Point) Map(key string) (float64, bool) {
	i := indexOf(p.Domain, key)
	if i < 0 {
		return 0, false
	}
	n := len(p.Domain)
	if n == 1 {
		return (p.Range[0] + p.Range[1]) / 2, true
	}
	step := (p.Range[1] - p.Range[0]) / float64(n-1)
	return p.Range[0] + step*float64(i), true
}

// Band splits the range into equal bands with d3's padding semantics (inner and
// outer padding equal, centred).
type Band struct {
	Domain  []string
	Range   [2]float64
	Padding float64
}

func (b Band) step() (start, step float64) {
	n := float64(len(b.Domain))
	r0, r1 := b.Range[0], b.Range[1]
	step = (r1 - r0) / math.Max(1, n-b.Padding+2*b.Padding)
	start = r0 + (r1-r0-step*(n-b.Padding))*0.5
	return start, step
}

func (b Band) Map(key string) (float64, bool) {
	i := indexOf(b.Domain, key)
	if i < 0 {
		return 0, false
	}
	start, step := b.step()
	return start + step*float64(i), true
}

func (b Band) Bandwidth() float64 {
	_, step := b.step()
	return step * (1 - b.Padding)
}

// Center maps `key` to the middle of its band.
func (b Band) Center(key string) (float64, bool) {
	y, ok := b.Map(key)
	return y + b.Bandwidth()/2, ok
}

func indexOf(domain []string, key string) int {
	for i, d := range domain {
		if d == key {
			return i
		}
	}
	return -1
}

// AngleArc leaves one step free so the last of `n` spokes does not land on 0 = 2π.
func AngleArc(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 2 * math.Pi * float64(n-1) / float64(n)
}

// DomainMode selects how a continuous domain is derived from visible values.
type DomainMode string

const (
	// Padded is [min*0.95, max*1.05].
	Padded DomainMode = "padded"
	// Extent is [min, max].
	Extent DomainMode = "extent"
	// Zero is [0, max].
	Zero DomainMode = "zero"
)

func (m DomainMode) Validate() error {
	switch m {
	case Padded, Extent, Zero, "":
		return nil
	}
	return fmt.Errorf("unknown domain mode %q", string(m))
}

// MinMax returns the smallest and largest finite values.
func MinMax(values []float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return lo, hi, true
}

// Domain derives a domain from the visible values. `fallback` is used when there
// is nothing finite to look at.
func Domain(mode DomainMode, values []float64, fallback [2]float64) [2]float64 {
	lo, hi, ok := MinMax(values)
	if !ok {
		return fallback
	}
	switch mode {
	case Extent:
		return [2]float64{lo, hi}
	case Zero:
		return [2]float64{0, hi}
	default:
		return [2]float64{lo * 0.95, hi * 1.05}
	}
}
