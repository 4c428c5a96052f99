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

// Package raster turns vector paths into anti-aliased pixel coverage.
//
// The rasteriser is used by the software drawing surface to paint mirror
// outlines, rays, markers and glyph-free decorations of an optics scene.
// Coverage is reported one scanline at a time through a callback, so
// that the caller decides how to composite it.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives the coverage of one scanline.  Coverage values lie in
// [0, 1] and start at pixel xMin.  The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
	dir    float32 // +1 if the edge runs downwards, -1 otherwise
}

func (e *edge) top() float64    { return min(e.y0, e.y1) }
func (e *edge) bottom() float64 { return max(e.y0, e.y1) }

func (e *edge) xAt(y float64) float64 {
	return e.x0 + e.dxdy*(y-e.y0)
}

// Rasterizer converts vector paths to pixel coverage.  A Rasterizer keeps
// its buffers between calls, so one instance should be reused for all
// paths painted onto the same surface.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space.  Must be non-singular.
	CTM matrix.Matrix

	// Clip limits the output, in device coordinates.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the curve approximation tolerance in device pixels.
	Flatness float64

	// Width is the stroke width in user space.
	Width float64

	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64

	// Dash lists alternating on/off lengths in user space.
	// Nil means a solid line.
	Dash      []float64
	DashPhase float64

	cover     []float32
	area      []float32
	edges     []edge
	active    []int
	crossings []float64

	devMin, devMax vec.Vec2
	haveBBox       bool

	// stroke state, see stroke.go
	polys      []vec.Vec2
	polyStarts []int
	segs       []segment
	runs       []run
	dots       []vec.Vec2
	dashSegs   []segment
	dashRuns   []run
}

// NewRasterizer returns a Rasterizer for the given clip rectangle, with
// the PDF default graphics parameters.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	r := &Rasterizer{}
	r.Reset(clip)
	return r
}

// Reset restores the default parameters and sets a new clip rectangle.
// Buffer capacity is kept.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
	r.Dash = nil
	r.DashPhase = 0
}

// FillNonZero fills the path using the nonzero winding rule.
func (r *Rasterizer) FillNonZero(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walk(p.Iter(), r.addEdge, true)
	r.scan(false, emit)
}

// FillEvenOdd fills the path using the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walk(p.Iter(), r.addEdge, true)
	r.scan(true, emit)
}

// walk flattens a path into line segments in user space.  If closeAll is
// set, open subpaths are closed implicitly, as required for filling.
func (r *Rasterizer) walk(p path.Path, line func(a, b vec.Vec2), closeAll bool) {
	var cur, start vec.Vec2
	open := false
	finish := func() {
		if open && closeAll && cur != start {
			line(cur, start)
		}
		open = false
	}
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			finish()
			cur, start = pts[0], pts[0]
			open = true
		case path.CmdLineTo:
			line(cur, pts[0])
			cur = pts[0]
		case path.CmdQuadTo:
			r.flattenQuad(cur, pts[0], pts[1], line)
			cur = pts[1]
		case path.CmdCubeTo:
			r.flattenCubic(cur, pts[0], pts[1], pts[2], line)
			cur = pts[2]
		case path.CmdClose:
			if cur != start {
				line(cur, start)
			}
			cur = start
			open = false
		}
	}
	finish()
}

// linear applies the linear part of the CTM, for device-space tolerances.
func (r *Rasterizer) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

func (r *Rasterizer) apply(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y + r.CTM[4],
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y + r.CTM[5],
	}
}

func (r *Rasterizer) flattenQuad(p0, p1, p2 vec.Vec2, line func(a, b vec.Vec2)) {
	dev := r.linear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		line(prev, pt)
		prev = pt
	}
}

// flattenCubic uses Wang's formula for the number of line segments.
func (r *Rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2, line func(a, b vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if nf := math.Sqrt(3 * m / (4 * r.Flatness)); nf > 1 {
			n = int(math.Ceil(nf))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		line(prev, pt)
		prev = pt
	}
}

func (r *Rasterizer) beginEdges() {
	r.edges = r.edges[:0]
	r.haveBBox = false
}

// addEdge transforms a user space segment to device space and records it.
func (r *Rasterizer) addEdge(a, b vec.Vec2) {
	r.addDeviceEdge(r.apply(a), r.apply(b))
}

func (r *Rasterizer) addDeviceEdge(a, b vec.Vec2) {
	dy := b.Y - a.Y
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	dir := float32(1)
	if dy < 0 {
		dir = -1
	}
	r.edges = append(r.edges, edge{
		x0: a.X, y0: a.Y,
		x1: b.X, y1: b.Y,
		dxdy: (b.X - a.X) / dy,
		dir:  dir,
	})

	lo := vec.Vec2{X: min(a.X, b.X), Y: min(a.Y, b.Y)}
	hi := vec.Vec2{X: max(a.X, b.X), Y: max(a.Y, b.Y)}
	if !r.haveBBox {
		r.devMin, r.devMax = lo, hi
		r.haveBBox = true
		return
	}
	r.devMin = vec.Vec2{X: min(r.devMin.X, lo.X), Y: min(r.devMin.Y, lo.Y)}
	r.devMax = vec.Vec2{X: max(r.devMax.X, hi.X), Y: max(r.devMax.Y, hi.Y)}
}

// bounds returns the integer device rectangle touched by the current
// edges, clipped to r.Clip.
func (r *Rasterizer) bounds() (xMin, xMax, yMin, yMax int, ok bool) {
	if len(r.edges) == 0 || !r.haveBBox {
		return 0, 0, 0, 0, false
	}
	xMin = max(int(math.Floor(r.devMin.X)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.devMax.X))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.devMin.Y)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.devMax.Y))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// scan rasterises the collected edges with an active edge list.
//
// Each pixel accumulates two quantities: cover, the signed height of the
// edge pieces inside the pixel column, and area, the same height weighted
// by the fraction of the pixel to the right of the crossing.  A running
// sum of cover along the row, plus the area of the current pixel, gives
// the signed coverage.
func (r *Rasterizer) scan(evenOdd bool, emit EmitFunc) {
	xMin, xMax, yMin, yMax, ok := r.bounds()
	if !ok {
		return
	}
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.top(), b.top())
	})
	r.active = r.active[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		yTop, yBot := float64(y), float64(y+1)
		for next < len(r.edges) && r.edges[next].top() < yBot {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			if next == len(r.edges) {
				return
			}
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.bottom() <= yTop {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			if r.accumulate(e, yTop, yBot, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		if evenOdd {
			integrateEvenOdd(r.cover, r.area)
		} else {
			integrateNonZero(r.cover, r.area)
		}
		if row, offs := trimZeros(r.cover); row != nil {
			emit(y, xMin+offs, row)
		}
	}
}

// accumulate adds the part of e inside the scanline [yTop, yBot) to the
// cover and area buffers.  Edges left of the buffer contribute full cover
// to its first pixel.
func (r *Rasterizer) accumulate(e *edge, yTop, yBot float64, xMin, xMax int) bool {
	y0 := max(yTop, e.top())
	y1 := min(yBot, e.bottom())
	if y1 <= y0 {
		return false
	}

	xa, xb := e.xAt(y0), e.xAt(y1)
	left, right := min(xa, xb), max(xa, xb)
	pixLeft := int(math.Floor(left))
	pixRight := int(math.Floor(right))

	if pixLeft >= xMax {
		return false
	}
	if pixRight < xMin {
		c := e.dir * float32(y1-y0)
		r.cover[0] += c
		r.area[0] += c
		return true
	}
	if pixLeft == pixRight {
		r.deposit(e, y0, y1, pixLeft, xMin, xMax)
		return true
	}

	// split where the edge crosses vertical pixel boundaries
	r.crossings = append(r.crossings[:0], y0, y1)
	dydx := 1 / e.dxdy
	for x := pixLeft + 1; x <= pixRight; x++ {
		yx := e.y0 + dydx*(float64(x)-e.x0)
		if yx > y0 && yx < y1 {
			r.crossings = append(r.crossings, yx)
		}
	}
	slices.Sort(r.crossings)
	for i := 1; i < len(r.crossings); i++ {
		a, b := r.crossings[i-1], r.crossings[i]
		if b <= a {
			continue
		}
		pix := int(math.Floor(e.xAt((a + b) / 2)))
		r.deposit(e, a, b, pix, xMin, xMax)
	}
	return true
}

// deposit records a piece of an edge which lies in a single pixel column.
func (r *Rasterizer) deposit(e *edge, y0, y1 float64, pix, xMin, xMax int) {
	c := e.dir * float32(y1-y0)
	switch {
	case pix < xMin:
		r.cover[0] += c
		r.area[0] += c
	case pix < xMax:
		frac := e.xAt((y0+y1)/2) - float64(pix)
		i := pix - xMin
		r.cover[i] += c
		r.area[i] += c * float32(1-frac)
	}
}

// integrateNonZero turns cover/area into coverage in place.
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

// integrateEvenOdd turns cover/area into coverage in place, folding the
// winding number modulo 2.
func integrateEvenOdd(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		m := v - 2*float32(int(v/2))
		d := 1 - m
		if d < 0 {
			d = -d
		}
		cover[i] = 1 - d
	}
}

// trimZeros strips zero coverage at both ends of a row.
func trimZeros(row []float32) ([]float32, int) {
	lo, hi := 0, len(row)
	for lo < hi && row[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for row[hi-1] == 0 {
		hi--
	}
	return row[lo:hi], lo
}

const (
	// defaultFlatness is below the threshold of visual perception.
	defaultFlatness = 0.25

	// defaultMiterLimit matches PDF and PostScript.
	defaultMiterLimit = 10.0

	horizontalEdgeThreshold = 1e-10
	zeroLengthThreshold     = 1e-10
	collinearityThreshold   = 1e-6

	// cuspCosineThreshold is cos(179.43°).
	cuspCosineThreshold = -0.9999
)
