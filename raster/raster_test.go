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

package raster

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// grid collects coverage into a w×h buffer.
type grid struct {
	w, h int
	pix  []float32
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, pix: make([]float32, w*h)}
}

func (g *grid) emit(y, xMin int, coverage []float32) {
	copy(g.pix[y*g.w+xMin:], coverage)
}

func (g *grid) at(x, y int) float32 { return g.pix[y*g.w+x] }

func (g *grid) sum() float64 {
	var s float64
	for _, c := range g.pix {
		s += float64(c)
	}
	return s
}

func clipRect(w, h int) rect.Rect {
	return rect.Rect{URx: float64(w), URy: float64(h)}
}

// TestTriangleCoverage checks exact coverage for the triangle
// (0,0)→(10,0)→(10,1).  Pixel x is covered by (2x+1)/20.
func TestTriangleCoverage(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()

	g := newGrid(10, 1)
	r := NewRasterizer(clipRect(10, 1))
	r.FillNonZero(p, g.emit)

	const epsilon = 1e-6
	for x := range 10 {
		expected := float32(2*x+1) / 20
		if got := g.at(x, 0); math.Abs(float64(got-expected)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, expected, got)
		}
	}
}

func TestFillRules(t *testing.T) {
	// two nested squares with the same orientation
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: 1, Y: 1}).LineTo(vec.Vec2{X: 9, Y: 1}).
		LineTo(vec.Vec2{X: 9, Y: 9}).LineTo(vec.Vec2{X: 1, Y: 9}).Close()
	p.MoveTo(vec.Vec2{X: 3, Y: 3}).LineTo(vec.Vec2{X: 7, Y: 3}).
		LineTo(vec.Vec2{X: 7, Y: 7}).LineTo(vec.Vec2{X: 3, Y: 7}).Close()

	r := NewRasterizer(clipRect(10, 10))

	nz := newGrid(10, 10)
	r.FillNonZero(p, nz.emit)
	if c := nz.at(5, 5); c < 0.999 {
		t.Errorf("nonzero: centre coverage %.3f, want 1", c)
	}

	eo := newGrid(10, 10)
	r.FillEvenOdd(p, eo.emit)
	if c := eo.at(5, 5); c > 0.001 {
		t.Errorf("even-odd: centre coverage %.3f, want 0", c)
	}
	if c := eo.at(2, 2); c < 0.999 {
		t.Errorf("even-odd: ring coverage %.3f, want 1", c)
	}
	if math.Abs(eo.sum()-48) > 1e-3 {
		t.Errorf("even-odd: total coverage %.3f, want 48", eo.sum())
	}
}

func TestCTMAndClip(t *testing.T) {
	unit := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 1, Y: 0}).
		LineTo(vec.Vec2{X: 1, Y: 1}).
		LineTo(vec.Vec2{X: 0, Y: 1}).
		Close()

	r := NewRasterizer(clipRect(8, 8))
	r.CTM = matrix.Matrix{4, 0, 0, 4, 6, 2} // partly outside the clip
	g := newGrid(8, 8)
	r.FillNonZero(unit, g.emit)

	if math.Abs(g.sum()-8) > 1e-3 {
		t.Errorf("clipped area %.3f, want 8", g.sum())
	}
	if g.at(0, 0) > 0.001 || g.at(7, 5) < 0.999 {
		t.Errorf("unexpected coverage layout")
	}
}

func TestStrokeCaps(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 5, Y: 10}).
		LineTo(vec.Vec2{X: 15, Y: 10})

	cases := []struct {
		cap  graphics.LineCapStyle
		area float64
	}{
		{graphics.LineCapButt, 10 * 4},
		{graphics.LineCapSquare, 14 * 4},
		{graphics.LineCapRound, 10*4 + math.Pi*4},
	}
	for _, tc := range cases {
		t.Run(tc.cap.String(), func(t *testing.T) {
			r := NewRasterizer(clipRect(20, 20))
			r.Width = 4
			r.Cap = tc.cap
			r.Flatness = 0.01
			g := newGrid(20, 20)
			r.Stroke(line.Iter(), g.emit)
			if got := g.sum(); math.Abs(got-tc.area) > 0.25 {
				t.Errorf("stroked area %.3f, want %.3f", got, tc.area)
			}
		})
	}
}

func TestStrokeJoinsPaintOnce(t *testing.T) {
	// a closed square stroke must not leave holes where pieces overlap
	sq := (&path.Data{}).
		MoveTo(vec.Vec2{X: 4, Y: 4}).
		LineTo(vec.Vec2{X: 16, Y: 4}).
		LineTo(vec.Vec2{X: 16, Y: 16}).
		LineTo(vec.Vec2{X: 4, Y: 16}).
		Close()

	for _, join := range []graphics.LineJoinStyle{graphics.LineJoinMiter, graphics.LineJoinRound, graphics.LineJoinBevel} {
		t.Run(join.String(), func(t *testing.T) {
			r := NewRasterizer(clipRect(20, 20))
			r.Width = 2
			r.Join = join
			g := newGrid(20, 20)
			r.Stroke(sq.Iter(), g.emit)

			for _, p := range [][2]int{{10, 3}, {10, 4}, {3, 10}, {16, 10}, {10, 16}} {
				if c := g.at(p[0], p[1]); c < 0.999 {
					t.Errorf("pixel %v: coverage %.3f, want 1", p, c)
				}
			}
			if c := g.at(10, 10); c > 0.001 {
				t.Errorf("interior painted: %.3f", c)
			}
			if join == graphics.LineJoinMiter {
				if c := g.at(3, 3); c < 0.999 {
					t.Errorf("miter corner: coverage %.3f, want 1", c)
				}
			}
		})
	}
}

func TestDash(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 2}).
		LineTo(vec.Vec2{X: 40, Y: 2})

	r := NewRasterizer(clipRect(40, 4))
	r.Width = 2
	r.Dash = []float64{8, 4}
	g := newGrid(40, 4)
	r.Stroke(line.Iter(), g.emit)

	// dashes cover [0,8), [12,20), [24,32), [36,40)
	on := []int{0, 4, 7, 12, 19, 24, 31, 36, 39}
	off := []int{8, 10, 11, 20, 23, 32, 35}
	for _, x := range on {
		if c := g.at(x, 2); c < 0.999 {
			t.Errorf("x=%d: coverage %.3f, want 1", x, c)
		}
	}
	for _, x := range off {
		if c := g.at(x, 2); c > 0.001 {
			t.Errorf("x=%d: coverage %.3f, want 0", x, c)
		}
	}
	if got := g.sum(); math.Abs(got-2*28) > 1e-3 {
		t.Errorf("dashed area %.3f, want 56", got)
	}
}

func TestDashPhase(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 2}).
		LineTo(vec.Vec2{X: 20, Y: 2})

	r := NewRasterizer(clipRect(20, 4))
	r.Width = 2
	r.Dash = []float64{5}
	r.DashPhase = 5
	g := newGrid(20, 4)
	r.Stroke(line.Iter(), g.emit)

	// the pattern starts in a gap
	if c := g.at(2, 2); c > 0.001 {
		t.Errorf("x=2: coverage %.3f, want 0", c)
	}
	if c := g.at(7, 2); c < 0.999 {
		t.Errorf("x=7: coverage %.3f, want 1", c)
	}
}

// TestDashLongLine strokes a dashed line which extends far outside the
// clip rectangle.  Only the visible dashes are generated and the pattern
// stays aligned with the start of the line.
func TestDashLongLine(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: -120, Y: 2}).
		LineTo(vec.Vec2{X: 1e22, Y: 2})

	r := NewRasterizer(clipRect(40, 4))
	r.Width = 2
	r.Dash = []float64{8, 4}
	g := newGrid(40, 4)
	r.Stroke(line.Iter(), g.emit)

	// -120 is a multiple of the period, so the dashes are the same as
	// in TestDash
	on := []int{0, 4, 7, 12, 19, 24, 31, 36, 39}
	off := []int{8, 10, 11, 20, 23, 32, 35}
	for _, x := range on {
		if c := g.at(x, 2); c < 0.999 {
			t.Errorf("x=%d: coverage %.3f, want 1", x, c)
		}
	}
	for _, x := range off {
		if c := g.at(x, 2); c > 0.001 {
			t.Errorf("x=%d: coverage %.3f, want 0", x, c)
		}
	}
	if n := len(r.dashRuns); n > 5 {
		t.Errorf("%d dashes generated, want at most 5", n)
	}
}

func TestDashInvisible(t *testing.T) {
	paths := []*path.Data{
		(&path.Data{}).
			MoveTo(vec.Vec2{X: -1e300, Y: 100}).
			LineTo(vec.Vec2{X: 1e300, Y: 100}),
		(&path.Data{}).
			MoveTo(vec.Vec2{X: 0, Y: 2}).
			LineTo(vec.Vec2{X: math.NaN(), Y: 2}).
			LineTo(vec.Vec2{X: math.Inf(1), Y: 2}),
	}
	for i, p := range paths {
		r := NewRasterizer(clipRect(40, 4))
		r.Width = 2
		r.Dash = []float64{1, 1}
		g := newGrid(40, 4)
		r.Stroke(p.Iter(), g.emit)
		if got := g.sum(); got != 0 {
			t.Errorf("%d: coverage %.3f, want 0", i, got)
		}
	}
}

func TestRoundDot(t *testing.T) {
	dot := (&path.Data{}).
		MoveTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 10, Y: 10})

	r := NewRasterizer(clipRect(20, 20))
	r.Width = 6
	r.Cap = graphics.LineCapRound
	r.Flatness = 0.01
	g := newGrid(20, 20)
	r.Stroke(dot.Iter(), g.emit)
	if got, want := g.sum(), math.Pi*9; math.Abs(got-want) > 0.2 {
		t.Errorf("dot area %.3f, want %.3f", got, want)
	}

	r.Cap = graphics.LineCapButt
	g = newGrid(20, 20)
	r.Stroke(dot.Iter(), g.emit)
	if g.sum() > 1e-3 {
		t.Errorf("butt cap dot painted %.3f", g.sum())
	}
}
