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

import "math"

const (
	smallBreakpoint  = 480
	mobileBreakpoint = 768
)

// Box is the resolved geometry of a chart for one container width. Width and
// Height are the outer size; the plot area is the box minus Margin.
type Box struct {
	Width, Height float64
	Margin        Margin
	Mobile, Small bool
	FontSize      float64

	InnerRadius, OuterRadius float64
}

func (b Box) PlotWidth() float64 {
	return b.Width - b.Margin.Left - b.Margin.Right
}

func (b Box) PlotHeight() float64 {
	return b.Height - b.Margin.Top - b.Margin.Bottom
}

func (b Box) Left() float64   { return b.Margin.Left }
func (b Box) Right() float64  { return b.Width - b.Margin.Right }
func (b Box) Top() float64    { return b.Margin.Top }
func (b Box) Bottom() float64 { return b.Height - b.Margin.Bottom }

// Layout picks the breakpoint for `containerWidth` and resolves the box. A
// non-positive width falls back to the chart's default width.
func Layout(o Options, containerWidth float64) Box {
	if containerWidth <= 0 {
		containerWidth = o.Width
	}
	bp := o.Desktop
	b := Box{}
	switch {
	case containerWidth < smallBreakpoint:
		bp, b.Mobile, b.Small = o.Small, true, true
	case containerWidth < mobileBreakpoint:
		bp, b.Mobile = o.Mobile, true
	}

	width := containerWidth - bp.Gutter
	if bp.MaxWidth > 0 {
		width = math.Min(width, bp.MaxWidth)
	}
	// never let the plot area collapse below nothing.
	width = math.Max(width, bp.Margin.Left+bp.Margin.Right+1)

	b.Width = width
	b.Height = bp.Height
	b.Margin = bp.Margin
	b.FontSize = bp.FontSize
	if b.FontSize == 0 {
		b.FontSize = 12
	}
	b.InnerRadius = bp.InnerRadius
	b.OuterRadius = math.Max(bp.InnerRadius, math.Min(b.Width, b.Height)/2-bp.RadiusInset)
	return b
}
