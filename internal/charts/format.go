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
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// comma rounds `v` and groups thousands: 1988 -> "1,988".
func comma(v any) string {
	switch x := v.(type) {
	case int:
		return humanize.Comma(int64(x))
	case int64:
		return humanize.Comma(x)
	case float64:
		return humanize.Comma(int64(math.Round(x)))
	}
	return fmt.Sprint(v)
}

// dollarsK renders 63500 as "$64K".
func dollarsK(v float64) string {
	return fmt.Sprintf("$%dK", int(math.Round(v/1000)))
}

// thousandsK renders a count as "2K" on small screens.
func thousandsK(v int) string {
	return fmt.Sprintf("%dK", int(math.Round(float64(v)/1000)))
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
