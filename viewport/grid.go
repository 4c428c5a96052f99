// seehuhn.de/go/optics - image formation by mirrors and lenses
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package viewport

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/optics/surface"
)

// targetCellPixels is the desired screen size of one major grid cell.
const targetCellPixels = 80

// minorDivisions is the number of minor cells per major cell.
const minorDivisions = 5

// maxTicks bounds the number of grid lines in one direction.
const maxTicks = 10000

// labelOffset separates tick labels from the axes, in pixels.
const labelOffset = 6

// labelMargin is how far outside the surface a label anchor may lie
// before the label is skipped.
const labelMargin = 50

// Grid colours.
var (
	MinorColor = color.NRGBA{R: 0x2a, G: 0x2a, B: 0x2a, A: 102}
	MajorColor = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	AxisColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	LabelColor = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

// GridOptions selects the parts of the grid to draw.
type GridOptions struct {
	HideGrid   bool
	HideAxes   bool
	HideLabels bool
}

// NiceSpacing returns the major grid spacing, in world units, for the
// given scale: the smallest value of the form {1, 2, 5, 10}·10^k which is
// at least 80 pixels wide on screen.
func NiceSpacing(scale float64) float64 {
	raw := targetCellPixels / scale
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 1
	}
	exponent := math.Floor(math.Log10(raw))
	pow := math.Pow(10, exponent)
	mantissa := raw / pow
	for _, p := range []float64{1, 2, 5, 10} {
		if mantissa <= p*(1+1e-12) {
			return p * pow
		}
	}
	return 10 * pow
}

// Lines lists the world coordinates of visible grid lines.
type Lines struct {
	Spacing float64

	MinorX, MinorY []float64
	MajorX, MajorY []float64
}

// GridLines computes the grid lines which intersect a w×h surface.
func GridLines(v View, w, h int) Lines {
	spacing := NiceSpacing(v.Scale)
	minor := spacing / minorDivisions
	b := v.VisibleBounds(w, h)

	res := Lines{Spacing: spacing}
	res.MinorX = ticks(b.LLx, b.URx, minor)
	res.MinorY = ticks(b.LLy, b.URy, minor)
	res.MajorX = ticks(b.LLx, b.URx, spacing)
	res.MajorY = ticks(b.LLy, b.URy, spacing)
	return res
}

// ticks returns the multiples of step in [lo, hi].  Values are computed
// from integer indices, so that no rounding error accumulates.  Ranges
// with more than maxTicks lines, or non-finite bounds, give no lines.
func ticks(lo, hi, step float64) []float64 {
	first := math.Ceil(lo/step - 1e-9)
	last := math.Floor(hi/step + 1e-9)
	if math.IsNaN(first) || math.IsInf(first, 0) || math.IsNaN(last) || math.IsInf(last, 0) {
		return nil
	}
	if last < first || last-first > maxTicks {
		return nil
	}
	n := int(last - first)
	res := make([]float64, 0, n+1)
	for k := 0; k <= n; k++ {
		res = append(res, (first+float64(k))*step)
	}
	return res
}

// DrawGrid draws the grid lines, the axes and the tick labels.
func DrawGrid(s surface.Surface, v View, opt GridOptions) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)
	lines := GridLines(v, w, h)

	verticals := func(xs []float64) *path.Data {
		p := &path.Data{}
		for _, x := range xs {
			sx, _ := v.WorldToScreen(x, 0, w, h)
			p.MoveTo(vec.Vec2{X: sx, Y: 0}).LineTo(vec.Vec2{X: sx, Y: fh})
		}
		return p
	}
	horizontals := func(ys []float64) *path.Data {
		p := &path.Data{}
		for _, y := range ys {
			_, sy := v.WorldToScreen(0, y, w, h)
			p.MoveTo(vec.Vec2{X: 0, Y: sy}).LineTo(vec.Vec2{X: fw, Y: sy})
		}
		return p
	}

	if !opt.HideGrid {
		minor := surface.Stroke{Color: MinorColor, Width: 1}
		s.Stroke(verticals(lines.MinorX), minor)
		s.Stroke(horizontals(lines.MinorY), minor)

		major := surface.Stroke{Color: MajorColor, Width: 1.2}
		s.Stroke(verticals(lines.MajorX), major)
		s.Stroke(horizontals(lines.MajorY), major)
	}

	ox, oy := v.WorldToScreen(0, 0, w, h)
	if !opt.HideAxes {
		axis := surface.Stroke{Color: AxisColor, Width: 2}
		s.Stroke(surface.Line(ox, 0, ox, fh), axis)
		s.Stroke(surface.Line(0, oy, fw, oy), axis)
	}

	if opt.HideLabels {
		return
	}
	style := surface.TextStyle{
		Color:    LabelColor,
		Size:     12,
		Align:    surface.AlignCenter,
		Baseline: surface.BaselineTop,
	}
	for _, x := range lines.MajorX {
		sx, _ := v.WorldToScreen(x, 0, w, h)
		if sx < -labelMargin || sx > fw+labelMargin {
			continue
		}
		s.Text(FormatNumber(x), sx, oy+labelOffset, style)
	}
	style.Align = surface.AlignRight
	style.Baseline = surface.BaselineMiddle
	for _, y := range lines.MajorY {
		_, sy := v.WorldToScreen(0, y, w, h)
		if sy < -labelMargin || sy > fh+labelMargin {
			continue
		}
		s.Text(FormatNumber(y), ox-labelOffset, sy, style)
	}
}

// FormatNumber formats a tick label.  Values below 1e-6 in magnitude are
// shown as "0"; larger values get at most two decimals, fewer as the
// magnitude grows, and values below one get three significant digits.
// Trailing zeros are removed.
func FormatNumber(v float64) string {
	a := math.Abs(v)
	if a < 1e-6 {
		return "0"
	}

	var digits int
	switch {
	case a >= 100:
		digits = 0
	case a >= 10:
		digits = 1
	case a >= 1:
		digits = 2
	default:
		digits = 2 - int(math.Floor(math.Log10(a)))
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
