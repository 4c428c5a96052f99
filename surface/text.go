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
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// DefaultFont returns the Go Regular font used for labels.
var DefaultFont = sync.OnceValues(func() (*sfnt.Font, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse Go Regular: %w", err)
	}
	return f, nil
})

// TextPath returns the glyph outlines of s, positioned according to the
// anchor point (x, y) and the alignment in st.  The outlines are in
// surface coordinates and should be filled with the nonzero rule.
func TextPath(f *sfnt.Font, s string, x, y float64, st TextStyle) (*path.Data, error) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(st.Size * 64)

	width, err := measure(f, &buf, s, ppem)
	if err != nil {
		return nil, err
	}
	switch st.Align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}

	m, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, err
	}
	ascent, descent := fromFixed(m.Ascent), fromFixed(m.Descent)
	switch st.Baseline {
	case BaselineTop:
		y += ascent
	case BaselineMiddle:
		y += (ascent - descent) / 2
	case BaselineBottom:
		y -= descent
	}

	p := &path.Data{}
	prev := sfnt.GlyphIndex(0)
	for i, r := range s {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				x += fromFixed(k)
			}
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return nil, err
		}
		appendGlyph(p, segs, x, y)

		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		x += fromFixed(adv)
		prev = idx
	}
	return p, nil
}

// MeasureText returns the advance width of s at the given size.
func MeasureText(f *sfnt.Font, s string, size float64) (float64, error) {
	var buf sfnt.Buffer
	return measure(f, &buf, s, fixed.Int26_6(size*64))
}

func measure(f *sfnt.Font, buf *sfnt.Buffer, s string, ppem fixed.Int26_6) (float64, error) {
	var w float64
	prev := sfnt.GlyphIndex(0)
	for i, r := range s {
		idx, err := f.GlyphIndex(buf, r)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			if k, err := f.Kern(buf, prev, idx, ppem, font.HintingNone); err == nil {
				w += fromFixed(k)
			}
		}
		adv, err := f.GlyphAdvance(buf, idx, ppem, font.HintingNone)
		if err != nil {
			return 0, err
		}
		w += fromFixed(adv)
		prev = idx
	}
	return w, nil
}

// appendGlyph copies glyph segments into p.  sfnt outlines already use a
// y-down coordinate system.
func appendGlyph(p *path.Data, segs sfnt.Segments, x, y float64) {
	pt := func(q fixed.Point26_6) vec.Vec2 {
		return vec.Vec2{X: x + fromFixed(q.X), Y: y + fromFixed(q.Y)}
	}
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			p.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			p.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			QuadTo(p, pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			CubeTo(p, pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	if open {
		p.Close()
	}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
