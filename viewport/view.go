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

// Package viewport maps between world coordinates and surface pixels,
// handles pan and zoom, and draws the coordinate grid.
//
// World coordinates have y pointing up; surface coordinates have y
// pointing down with the origin in the top-left corner.
package viewport

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Scale limits, in pixels per world unit.
const (
	MinScale = 10
	MaxScale = 5000
)

// ZoomSpeed converts wheel deltas into a zoom factor exp(-delta·ZoomSpeed).
const ZoomSpeed = 0.0015

// View is the visible part of the world: the world point at the centre
// of the surface and the number of pixels per world unit.
type View struct {
	CX, CY float64
	Scale  float64
}

// Default is the initial view.
var Default = View{CX: 0, CY: 0, Scale: 100}

// WorldToScreen maps world coordinates to surface coordinates for a
// surface of w×h pixels.
func (v View) WorldToScreen(x, y float64, w, h int) (float64, float64) {
	sx := float64(w)/2 + (x-v.CX)*v.Scale
	sy := float64(h)/2 - (y-v.CY)*v.Scale
	return sx, sy
}

// ScreenToWorld is the inverse of [View.WorldToScreen].
func (v View) ScreenToWorld(sx, sy float64, w, h int) (float64, float64) {
	x := v.CX + (sx-float64(w)/2)/v.Scale
	y := v.CY - (sy-float64(h)/2)/v.Scale
	return x, y
}

// Matrix returns the world-to-screen transformation as a matrix, for use
// as a current transformation matrix.
func (v View) Matrix(w, h int) matrix.Matrix {
	return matrix.Matrix{
		v.Scale, 0,
		0, -v.Scale,
		float64(w)/2 - v.CX*v.Scale, float64(h)/2 + v.CY*v.Scale,
	}
}

// Pan moves the view by a drag of (dx, dy) surface pixels.  The world
// follows the pointer.
func (v View) Pan(dx, dy float64) View {
	v.CX -= dx / v.Scale
	v.CY += dy / v.Scale
	return v
}

// Zoom applies a wheel step of the given delta, anchored at the surface
// point (sx, sy): the world point under the anchor stays in place.
// Positive deltas zoom out.
func (v View) Zoom(delta, sx, sy float64, w, h int) View {
	wx, wy := v.ScreenToWorld(sx, sy, w, h)
	v.Scale = ClampScale(v.Scale * math.Exp(-delta*ZoomSpeed))
	v.CX = wx - (sx-float64(w)/2)/v.Scale
	v.CY = wy + (sy-float64(h)/2)/v.Scale
	return v
}

// ClampScale limits s to [MinScale, MaxScale].  NaN maps to the default
// scale.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return Default.Scale
	}
	return min(max(s, MinScale), MaxScale)
}

// VisibleBounds returns the world rectangle covered by a w×h surface.
func (v View) VisibleBounds(w, h int) rect.Rect {
	x0, y1 := v.ScreenToWorld(0, 0, w, h)
	x1, y0 := v.ScreenToWorld(float64(w), float64(h), w, h)
	return rect.Rect{LLx: x0, LLy: y0, URx: x1, URy: y1}
}
