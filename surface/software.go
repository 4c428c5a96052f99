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

package surface

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/raster"
)

// Software is a [Surface] which paints into an *image.RGBA using the
// anti-aliased rasteriser from package raster.
//
// A Software surface is not safe for concurrent use.
type Software struct {
	img   *image.RGBA
	w, h  int
	ratio float64
	font  *sfnt.Font

	r   *raster.Rasterizer
	src color.NRGBA
}

// Option configures a [Software] surface.
type Option func(*Software)

// WithPixelRatio sets the number of device pixels per logical pixel.
func WithPixelRatio(ratio float64) Option {
	return func(s *Software) {
		if ratio > 0 && !math.IsInf(ratio, 0) {
			s.ratio = ratio
		}
	}
}

// WithFont sets the font used by [Software.Text].
func WithFont(f *sfnt.Font) Option {
	return func(s *Software) {
		s.font = f
	}
}

// NewSoftware allocates a surface of w×h logical pixels.  Sizes below one
// pixel are raised to one.
func NewSoftware(w, h int, opts ...Option) *Software {
	s := &Software{ratio: 1}
	for _, opt := range opts {
		opt(s)
	}
	s.r = raster.NewRasterizer(rect.Rect{})
	s.Resize(w, h, s.ratio)
	return s
}

// Resize changes the logical size and the device pixel ratio, and
// reallocates the pixel buffer if needed.  The contents are cleared.
// A ratio of zero or less keeps the current ratio.
func (s *Software) Resize(w, h int, ratio float64) {
	WithPixelRatio(ratio)(s)
	s.w, s.h = max(w, 1), max(h, 1)
	dw := max(int(math.Round(float64(s.w)*s.ratio)), 1)
	dh := max(int(math.Round(float64(s.h)*s.ratio)), 1)
	if s.img == nil || s.img.Rect.Dx() != dw || s.img.Rect.Dy() != dh {
		s.img = image.NewRGBA(image.Rect(0, 0, dw, dh))
	} else {
		clear(s.img.Pix)
	}
}

// Image returns the backing image, in device pixels.
func (s *Software) Image() *image.RGBA {
	return s.img
}

// Size implements [Surface].
func (s *Software) Size() (int, int) {
	return s.w, s.h
}

// Clear implements [Surface].
func (s *Software) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Fill implements [Surface].
func (s *Software) Fill(p *path.Data, c color.Color) {
	s.prepare(c)
	s.r.FillNonZero(p, s.blend)
}

// Stroke implements [Surface].
func (s *Software) Stroke(p *path.Data, st Stroke) {
	if st.Width <= 0 {
		return
	}
	s.prepare(st.Color)
	s.r.Width = st.Width
	s.r.Cap = st.Cap
	s.r.Join = st.Join
	s.r.Dash = st.Dash
	s.r.Stroke(p.Iter(), s.blend)
}

// Text implements [Surface].  Glyphs are rendered as filled outlines.
func (s *Software) Text(str string, x, y float64, st TextStyle) {
	f := s.font
	if f == nil {
		var err error
		f, err = DefaultFont()
		if err != nil {
			optics.Logger().Warn("no font for text", "error", err)
			return
		}
		s.font = f
	}
	p, err := TextPath(f, str, x, y, st)
	if err != nil {
		optics.Logger().Warn("cannot lay out text", "text", str, "error", err)
		return
	}
	s.Fill(p, st.Color)
}

// DrawImage implements [Surface].
func (s *Software) DrawImage(img image.Image, src image.Rectangle, dst rect.Rect) {
	dr := image.Rect(
		int(math.Round(dst.LLx*s.ratio)), int(math.Round(dst.LLy*s.ratio)),
		int(math.Round(dst.URx*s.ratio)), int(math.Round(dst.URy*s.ratio)),
	)
	if dr.Empty() || src.Empty() {
		return
	}
	draw.NearestNeighbor.Scale(s.img, dr, img, src, draw.Over, nil)
}

// prepare resets the rasteriser for painting in colour c.
func (s *Software) prepare(c color.Color) {
	b := s.img.Rect
	s.r.Reset(rect.Rect{
		URx: float64(b.Dx()),
		URy: float64(b.Dy()),
	})
	s.r.CTM = matrix.Matrix{s.ratio, 0, 0, s.ratio, 0, 0}
	s.src = NRGBA(c)
}

// blend composites the current colour onto the image, source over.
func (s *Software) blend(y, xMin int, coverage []float32) {
	if s.src.A == 0 {
		return
	}
	sa := float32(s.src.A) / 255
	sr := float32(s.src.R) * sa
	sg := float32(s.src.G) * sa
	sb := float32(s.src.B) * sa

	off := s.img.PixOffset(xMin, y)
	pix := s.img.Pix[off : off+4*len(coverage)]
	for i, cov := range coverage {
		if cov <= 0 {
			continue
		}
		cov = min(cov, 1)
		a := sa * cov
		k := 1 - a
		q := pix[4*i : 4*i+4 : 4*i+4]
		q[0] = uint8(sr*cov + float32(q[0])*k + 0.5)
		q[1] = uint8(sg*cov + float32(q[1])*k + 0.5)
		q[2] = uint8(sb*cov + float32(q[2])*k + 0.5)
		q[3] = uint8(255*a + float32(q[3])*k + 0.5)
	}
}
