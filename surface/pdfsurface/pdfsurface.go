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

// Package pdfsurface implements the drawing surface as a single-page PDF
// file.  One logical pixel becomes one PDF point.
//
// PDF output has no transparency: translucent colours are mixed with the
// most recent [Surface.Clear] colour instead.  Text is written as glyph
// outlines, so no fonts are embedded.
package pdfsurface

import (
	"image"
	"image/color"

	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
)

// Surface writes drawing operations into a PDF page.
type Surface struct {
	page *document.Page
	w, h int
	bg   color.NRGBA
	font *sfnt.Font
}

var _ surface.Surface = (*Surface)(nil)

// Create starts a new PDF file of w×h points.  The caller must call
// [Surface.Close] to finish the file.
func Create(fname string, w, h int) (*Surface, error) {
	w, h = max(w, 1), max(h, 1)
	paper := &pdf.Rectangle{
		URx: float64(w),
		URy: float64(h),
	}
	page, err := document.CreateSinglePage(fname, paper, pdf.V1_7, nil)
	if err != nil {
		return nil, err
	}

	// PDF origin is bottom-left; surface coordinates are top-left.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(h)})

	return &Surface{
		page: page,
		w:    w,
		h:    h,
		bg:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}, nil
}

// Close writes the page and closes the file.
func (s *Surface) Close() error {
	return s.page.Close()
}

// Size implements [surface.Surface].
func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

// Clear implements [surface.Surface].
func (s *Surface) Clear(c color.Color) {
	s.bg = s.flatten(c)
	s.page.SetFillColor(s.pdfColor(s.bg))
	s.page.Rectangle(0, 0, float64(s.w), float64(s.h))
	s.page.Fill()
}

// Fill implements [surface.Surface].
func (s *Surface) Fill(p *path.Data, c color.Color) {
	if surface.NRGBA(c).A == 0 {
		return
	}
	s.page.SetFillColor(s.pdfColor(c))
	if s.setPath(p) {
		s.page.Fill()
	}
}

// Stroke implements [surface.Surface].
func (s *Surface) Stroke(p *path.Data, st surface.Stroke) {
	if st.Width <= 0 || surface.NRGBA(st.Color).A == 0 {
		return
	}
	s.page.SetStrokeColor(s.pdfColor(st.Color))
	s.page.SetLineWidth(st.Width)
	s.page.SetLineCap(st.Cap)
	s.page.SetLineJoin(st.Join)
	s.page.SetLineDash(st.Dash, 0)
	if s.setPath(p) {
		s.page.Stroke()
	}
}

// Text implements [surface.Surface].
func (s *Surface) Text(str string, x, y float64, st surface.TextStyle) {
	if s.font == nil {
		f, err := surface.DefaultFont()
		if err != nil {
			optics.Logger().Warn("no font for text", "error", err)
			return
		}
		s.font = f
	}
	p, err := surface.TextPath(s.font, str, x, y, st)
	if err != nil {
		optics.Logger().Warn("cannot lay out text", "text", str, "error", err)
		return
	}
	s.Fill(p, st.Color)
}

// DrawImage implements [surface.Surface].  Each source pixel becomes a
// rectangle; horizontal runs of equal colour are merged.
func (s *Surface) DrawImage(img image.Image, src image.Rectangle, dst rect.Rect) {
	src = src.Intersect(img.Bounds())
	if src.Empty() {
		return
	}
	sx := (dst.URx - dst.LLx) / float64(src.Dx())
	sy := (dst.URy - dst.LLy) / float64(src.Dy())
	if sx <= 0 || sy <= 0 {
		return
	}

	for j := src.Min.Y; j < src.Max.Y; j++ {
		y := dst.LLy + float64(j-src.Min.Y)*sy
		start := src.Min.X
		cur := surface.NRGBA(img.At(start, j))
		for i := src.Min.X + 1; i <= src.Max.X; i++ {
			var next color.NRGBA
			if i < src.Max.X {
				next = surface.NRGBA(img.At(i, j))
				if next == cur {
					continue
				}
			}
			if cur.A != 0 {
				x := dst.LLx + float64(start-src.Min.X)*sx
				s.page.SetFillColor(s.pdfColor(cur))
				s.page.Rectangle(x, y, float64(i-start)*sx, sy)
				s.page.Fill()
			}
			start, cur = i, next
		}
	}
}

// setPath emits p into the content stream and reports whether anything
// was written.
func (s *Surface) setPath(p *path.Data) bool {
	drawn := false
	for cmd, pts := range p.Iter().ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			s.page.MoveTo(pts[0].X, pts[0].Y)
			drawn = true
		case path.CmdLineTo:
			s.page.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			s.page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			s.page.ClosePath()
		}
	}
	return drawn
}

// flatten mixes c with the background according to its alpha.
func (s *Surface) flatten(c color.Color) color.NRGBA {
	n := surface.NRGBA(c)
	if n.A == 255 {
		return n
	}
	a := float64(n.A) / 255
	mix := func(f, b uint8) uint8 {
		return uint8(a*float64(f) + (1-a)*float64(b) + 0.5)
	}
	return color.NRGBA{
		R: mix(n.R, s.bg.R),
		G: mix(n.G, s.bg.G),
		B: mix(n.B, s.bg.B),
		A: 255,
	}
}

func (s *Surface) pdfColor(c color.Color) pdfcolor.Color {
	n := s.flatten(c)
	return pdfcolor.DeviceRGB{float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255}
}
