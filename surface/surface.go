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

// Package surface defines the 2D drawing surface used by the viewport and
// the scenes, together with a software implementation.
//
// All coordinates passed to a Surface are logical pixels with the origin
// in the top-left corner and y pointing down.  Implementations map these
// to device pixels, for example to honour a device pixel ratio.
package surface

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"
)

// Surface is a 2D drawing target.
type Surface interface {
	// Size returns the surface size in logical pixels.
	Size() (w, h int)

	// Clear fills the whole surface with c.
	Clear(c color.Color)

	// Fill fills p with c, using the nonzero winding rule.
	Fill(p *path.Data, c color.Color)

	// Stroke strokes the outline of p.
	Stroke(p *path.Data, st Stroke)

	// Text draws s anchored at (x, y).
	Text(s string, x, y float64, st TextStyle)

	// DrawImage copies the src rectangle of img into dst, scaling with
	// nearest-neighbour sampling.  dst.LLx and dst.LLy give the top-left
	// corner.
	DrawImage(img image.Image, src image.Rectangle, dst rect.Rect)
}

// Stroke describes how lines are painted.
type Stroke struct {
	Color color.Color
	Width float64

	// Dash lists alternating on/off lengths.  Nil means a solid line.
	Dash []float64

	Cap  graphics.LineCapStyle
	Join graphics.LineJoinStyle
}

// Align is the horizontal text anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline is the vertical text anchor.
type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
	BaselineMiddle
	BaselineBottom
)

// TextStyle describes how text is drawn.
type TextStyle struct {
	Color    color.Color
	Size     float64
	Align    Align
	Baseline Baseline
}

// NRGBA converts c to non-premultiplied 8-bit RGBA.
// A nil colour is treated as transparent.
func NRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
