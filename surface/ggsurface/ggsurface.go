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

// Package ggsurface implements the drawing surface on top of a
// github.com/gogpu/gg context.
package ggsurface

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
)

// Surface paints onto a gg context.  Logical coordinates are multiplied by
// the pixel ratio before they reach gg, so that line widths, dashes and
// font sizes scale together with the geometry.
type Surface struct {
	dc    *gg.Context
	w, h  int
	ratio float64

	src   *text.FontSource
	faces map[float64]text.Face
}

var _ surface.Surface = (*Surface)(nil)

// New allocates a context of w×h logical pixels at the given pixel ratio.
func New(w, h int, ratio float64) (*Surface, error) {
	if ratio <= 0 {
		ratio = 1
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	s := &Surface{ratio: ratio, src: src}
	s.Resize(w, h, ratio)
	return s, nil
}

// Resize replaces the context by a new one of w×h logical pixels.  A
// ratio of zero or less keeps the current pixel ratio.
func (s *Surface) Resize(w, h int, ratio float64) {
	if ratio > 0 {
		s.ratio = ratio
	}
	s.w, s.h = max(w, 1), max(h, 1)
	if s.dc != nil {
		s.dc.Close()
	}
	dw := max(int(float64(s.w)*s.ratio+0.5), 1)
	dh := max(int(float64(s.h)*s.ratio+0.5), 1)
	s.dc = gg.NewContext(dw, dh)
	s.faces = make(map[float64]text.Face)
}

// Close releases the context.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// Image returns the rendered pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// Size implements [surface.Surface].
func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

// Clear implements [surface.Surface].
func (s *Surface) Clear(c color.Color) {
	s.dc.ClearWithColor(gg.FromColor(c))
}

// Fill implements [surface.Surface].
func (s *Surface) Fill(p *path.Data, c color.Color) {
	s.dc.SetFillRule(gg.FillRuleNonZero)
	s.dc.SetColor(c)
	s.setPath(p)
	if err := s.dc.Fill(); err != nil {
		optics.Logger().Debug("gg fill failed", "error", err)
	}
}

// Stroke implements [surface.Surface].
func (s *Surface) Stroke(p *path.Data, st surface.Stroke) {
	if st.Width <= 0 {
		return
	}
	s.dc.SetColor(st.Color)
	s.dc.SetLineWidth(st.Width * s.ratio)
	s.dc.SetLineCap(lineCap(st.Cap))
	s.dc.SetLineJoin(lineJoin(st.Join))
	if len(st.Dash) > 0 {
		dash := make([]float64, len(st.Dash))
		for i, d := range st.Dash {
			dash[i] = d * s.ratio
		}
		s.dc.SetDash(dash...)
	} else {
		s.dc.SetDash()
	}
	s.setPath(p)
	if err := s.dc.Stroke(); err != nil {
		optics.Logger().Debug("gg stroke failed", "error", err)
	}
}

// Text implements [surface.Surface].
func (s *Surface) Text(str string, x, y float64, st surface.TextStyle) {
	size := st.Size * s.ratio
	face, ok := s.faces[size]
	if !ok {
		face = s.src.Face(size)
		s.faces[size] = face
	}
	s.dc.SetFont(face)
	s.dc.SetColor(st.Color)

	x, y = x*s.ratio, y*s.ratio
	w, _ := s.dc.MeasureString(str)
	switch st.Align {
	case surface.AlignCenter:
		x -= w / 2
	case surface.AlignRight:
		x -= w
	}
	switch st.Baseline {
	case surface.BaselineTop:
		y += 0.8 * size
	case surface.BaselineMiddle:
		y += 0.35 * size
	case surface.BaselineBottom:
		y -= 0.2 * size
	}
	s.dc.DrawString(str, x, y)
}

// DrawImage implements [surface.Surface].
func (s *Surface) DrawImage(img image.Image, src image.Rectangle, dst rect.Rect) {
	if src.Empty() || dst.URx <= dst.LLx || dst.URy <= dst.LLy {
		return
	}
	sr := src
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             dst.LLx * s.ratio,
		Y:             dst.LLy * s.ratio,
		DstWidth:      (dst.URx - dst.LLx) * s.ratio,
		DstHeight:     (dst.URy - dst.LLy) * s.ratio,
		SrcRect:       &sr,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
	})
}

func (s *Surface) setPath(p *path.Data) {
	s.dc.ClearPath()
	r := s.ratio
	for cmd, pts := range p.Iter() {
		switch cmd {
		case path.CmdMoveTo:
			s.dc.MoveTo(pts[0].X*r, pts[0].Y*r)
		case path.CmdLineTo:
			s.dc.LineTo(pts[0].X*r, pts[0].Y*r)
		case path.CmdQuadTo:
			s.dc.QuadraticTo(pts[0].X*r, pts[0].Y*r, pts[1].X*r, pts[1].Y*r)
		case path.CmdCubeTo:
			s.dc.CubicTo(pts[0].X*r, pts[0].Y*r, pts[1].X*r, pts[1].Y*r, pts[2].X*r, pts[2].Y*r)
		case path.CmdClose:
			s.dc.ClosePath()
		}
	}
}

func lineCap(c graphics.LineCapStyle) gg.LineCap {
	switch c {
	case graphics.LineCapRound:
		return gg.LineCapRound
	case graphics.LineCapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

func lineJoin(j graphics.LineJoinStyle) gg.LineJoin {
	switch j {
	case graphics.LineJoinRound:
		return gg.LineJoinRound
	case graphics.LineJoinBevel:
		return gg.LineJoinBevel
	default:
		return gg.LineJoinMiter
	}
}
