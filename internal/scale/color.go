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

	"github.com/mazznoer/colorgrad"
)

var turbo = colorgrad.Turbo()

// Turbo returns the colour at t in [0, 1] on Google's Turbo colormap as a hex
// string. t is clamped.
func Turbo(t float64) string {
	return turbo.At(math.Max(0, math.Min(1, t))).Hex()
}

// Sequential maps a continuous domain onto Turbo.
type Sequential struct {
	Domain [2]float64
}

func (s Sequential) Map(x float64) string {
	if s.Domain[0] == s.Domain[1] {
		return Turbo(0.5)
	}
	return Turbo((x - s.Domain[0]) / (s.Domain[1] - s.Domain[0]))
}
