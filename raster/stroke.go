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

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// segment is a flattened piece of a stroked path, in user space.
type segment struct {
	A, B vec.Vec2
	T    vec.Vec2 // unit tangent from A to B
	N    vec.Vec2 // T rotated by 90° counter-clockwise
}

// run is a maximal sequence of connected segments.
type run struct {
	start, end int // range in the segment buffer
	closed     bool
}

// Stroke paints the outline of p using Width, Cap, Join, MiterLimit, Dash
// and DashPhase.
//
// The outline is assembled from simple convex pieces: one quadrilateral per
// segment plus the cap and join geometry.  All pieces are given the same
// orientation and filled together with the nonzero rule, so that overlaps
// are painted once.
func (r *Rasterizer) Stroke(p path.Path, emit EmitFunc) {
	r.flatten(p)
	r.polys = r.polys[:0]
	r.polyStarts = r.polyStarts[:0]
	d := r.Width / 2
	if d <= 0 {
		return
	}

	if r.Cap == graphics.LineCapRound {
		for _, pt := range r.dots {
			r.beginPoly()
			r.arc(pt, d, vec.Vec2{X: 1}, 2*math.Pi)
		}
	}

	segs, runs := r.segs, r.runs
	if len(r.Dash) > 0 {
		r.applyDash()
		segs, runs = r.dashSegs, r.dashRuns
	}
	for _, rn := range runs {
		r.strokeRun(segs[rn.start:rn.end], rn.closed, d)
	}

	r.beginEdges()
	for i, start := range r.polyStarts {
		end := len(r.polys)
		if i+1 < len(r.polyStarts) {
			end = r.polyStarts[i+1]
		}
		poly := r.polys[start:end]
		if len(poly) < 3 {
			continue
		}
		if signedArea(poly) < 0 {
			for j := len(poly) - 1; j >= 0; j-- {
				k := (j + 1) % len(poly)
				r.addEdge(poly[k], poly[j])
			}
		} else {
			for j := range poly {
				r.addEdge(poly[j], poly[(j+1)%len(poly)])
			}
		}
	}
	r.scan(false, emit)
}

// flatten converts p into runs of line segments.  Subpaths which contain
// drawing operators but no segment of positive length are recorded in
// r.dots.
func (r *Rasterizer) flatten(p path.Path) {
	r.segs = r.segs[:0]
	r.runs = r.runs[:0]
	r.dots = r.dots[:0]

	var cur, start vec.Vec2
	first := 0
	inPath, drew := false, false
	end := func(closed bool) {
		if !inPath {
			return
		}
		switch {
		case len(r.segs) > first:
			r.runs = append(r.runs, run{start: first, end: len(r.segs), closed: closed})
		case drew:
			r.dots = append(r.dots, start)
		}
		first = len(r.segs)
		inPath, drew = false, false
	}
	add := func(a, b vec.Vec2) {
		if s, ok := makeSegment(a, b); ok {
			r.segs = append(r.segs, s)
		}
	}

	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			end(false)
			cur, start = pts[0], pts[0]
			inPath = true
		case path.CmdLineTo:
			if inPath {
				add(cur, pts[0])
				cur, drew = pts[0], true
			}
		case path.CmdQuadTo:
			if inPath {
				r.flattenQuad(cur, pts[0], pts[1], add)
				cur, drew = pts[1], true
			}
		case path.CmdCubeTo:
			if inPath {
				r.flattenCubic(cur, pts[0], pts[1], pts[2], add)
				cur, drew = pts[2], true
			}
		case path.CmdClose:
			if inPath {
				add(cur, start)
				drew = true
				end(true)
				cur = start
			}
		}
	}
	end(false)
}

func makeSegment(a, b vec.Vec2) (segment, bool) {
	d := b.Sub(a)
	l := d.Length()
	if !(l >= zeroLengthThreshold) || math.IsInf(l, 0) {
		return segment{}, false
	}
	t := d.Mul(1 / l)
	return segment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}}, true
}

// strokeRun adds the outline pieces for one run of segments.
func (r *Rasterizer) strokeRun(segs []segment, closed bool, d float64) {
	if len(segs) == 0 {
		return
	}
	if len(segs) == 1 && segs[0].A == segs[0].B {
		// zero-length dash, oriented by the underlying path
		s := segs[0]
		switch r.Cap {
		case graphics.LineCapRound:
			r.beginPoly()
			r.arc(s.A, d, vec.Vec2{X: 1}, 2*math.Pi)
		case graphics.LineCapSquare:
			r.beginPoly()
			r.square(s.A, s.T, d)
		}
		return
	}

	for _, s := range segs {
		r.beginPoly()
		r.polys = append(r.polys,
			s.A.Add(s.N.Mul(d)), s.B.Add(s.N.Mul(d)),
			s.B.Sub(s.N.Mul(d)), s.A.Sub(s.N.Mul(d)))
	}
	for i := 1; i < len(segs); i++ {
		r.join(segs[i].A, segs[i-1].T, segs[i].T, d)
	}
	if closed {
		r.join(segs[0].A, segs[len(segs)-1].T, segs[0].T, d)
		return
	}
	r.cap(segs[0].A, segs[0].T.Mul(-1), d)
	r.cap(segs[len(segs)-1].B, segs[len(segs)-1].T, d)
}

// cap adds the end cap at P.  T points away from the line.
func (r *Rasterizer) cap(P, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}
	switch r.Cap {
	case graphics.LineCapRound:
		r.beginPoly()
		r.arc(P, d, N, -math.Pi)
	case graphics.LineCapSquare:
		r.beginPoly()
		ext := P.Add(T.Mul(d))
		r.polys = append(r.polys,
			P.Add(N.Mul(d)), ext.Add(N.Mul(d)),
			ext.Sub(N.Mul(d)), P.Sub(N.Mul(d)))
	}
}

// join fills the wedge on the outer side of the corner at P, where the
// tangent turns from T1 to T2.
func (r *Rasterizer) join(P, T1, T2 vec.Vec2, d float64) {
	cos := T1.Dot(T2)
	sin := T1.X*T2.Y - T1.Y*T2.X
	if math.Abs(sin) < collinearityThreshold && cos > 0 {
		return
	}
	if cos < cuspCosineThreshold {
		r.cap(P, T1, d)
		r.cap(P, T2.Mul(-1), d)
		return
	}

	// the outer side is to the right of a left turn
	side := 1.0
	if sin > 0 {
		side = -1
	}
	N1 := vec.Vec2{X: -T1.Y, Y: T1.X}.Mul(side)
	N2 := vec.Vec2{X: -T2.Y, Y: T2.X}.Mul(side)

	switch r.Join {
	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cos)))
		r.beginPoly()
		r.polys = append(r.polys, P)
		r.arc(P, d, N1, -side*angle)
	case graphics.LineJoinMiter:
		sinHalf := math.Sqrt((1 + cos) / 2)
		if sinHalf > 0 && 1/sinHalf <= r.MiterLimit+1e-10 {
			bis := N1.Add(N2)
			if l := bis.Length(); l > zeroLengthThreshold {
				r.beginPoly()
				r.polys = append(r.polys,
					P, P.Add(N1.Mul(d)),
					P.Add(bis.Mul(d/(l*sinHalf))),
					P.Add(N2.Mul(d)))
				return
			}
		}
		fallthrough
	case graphics.LineJoinBevel:
		r.beginPoly()
		r.polys = append(r.polys, P, P.Add(N1.Mul(d)), P.Add(N2.Mul(d)))
	}
}

// arc appends points on a circular arc around center, starting in
// direction dir and sweeping the given angle (positive is
// counter-clockwise).  The number of points is chosen so that the chord
// error stays below the flatness in device space.
func (r *Rasterizer) arc(center vec.Vec2, radius float64, dir vec.Vec2, sweep float64) {
	devR := max(r.linear(vec.Vec2{X: radius}).Length(), r.linear(vec.Vec2{Y: radius}).Length())
	n := 1
	if devR > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devR)
		if step > 0 && !math.IsNaN(step) {
			n = max(1, int(math.Ceil(math.Abs(sweep)/step)))
		} else {
			n = max(1, int(math.Ceil(math.Abs(sweep)/(math.Pi/4))))
		}
	}
	for i := 0; i <= n; i++ {
		a := sweep * float64(i) / float64(n)
		c, s := math.Cos(a), math.Sin(a)
		v := vec.Vec2{X: dir.X*c - dir.Y*s, Y: dir.X*s + dir.Y*c}
		r.polys = append(r.polys, center.Add(v.Mul(radius)))
	}
}

// square appends a square of side 2d centred at c and aligned with T.
func (r *Rasterizer) square(c, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}
	r.polys = append(r.polys,
		c.Add(T.Mul(d)).Add(N.Mul(d)),
		c.Add(T.Mul(d)).Sub(N.Mul(d)),
		c.Sub(T.Mul(d)).Sub(N.Mul(d)),
		c.Sub(T.Mul(d)).Add(N.Mul(d)))
}

func (r *Rasterizer) beginPoly() {
	r.polyStarts = append(r.polyStarts, len(r.polys))
}

// signedArea is positive for counter-clockwise polygons.
func signedArea(poly []vec.Vec2) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// applyDash cuts the flattened runs into dashes.  Dashes which run over
// the start of a closed subpath are joined into one.  Parts of segments
// outside the clip rectangle are skipped without generating dashes; the
// pattern position is carried across them.
func (r *Rasterizer) applyDash() {
	r.dashSegs = r.dashSegs[:0]
	r.dashRuns = r.dashRuns[:0]

	pattern := r.Dash
	n := len(pattern)
	total := 0.0
	for _, v := range pattern {
		total += v
	}
	if n%2 == 1 {
		total *= 2
	}
	if total <= 0 {
		return
	}
	scale := max(r.linear(vec.Vec2{X: 1}).Length(), r.linear(vec.Vec2{Y: 1}).Length())
	margin := r.Width/2*scale + 2

	phase := math.Mod(r.DashPhase, total)
	if phase < 0 {
		phase += total
	}

	for _, rn := range r.runs {
		segs := r.segs[rn.start:rn.end]

		idx := 0
		dist := phase
		for dist > 0 && dist >= pattern[idx%n] {
			dist -= pattern[idx%n]
			idx++
		}
		left := pattern[idx%n] - dist
		on := idx%2 == 0

		firstRun := len(r.dashRuns)
		startsOn := on
		dashStart := len(r.dashSegs)
		flush := func() {
			if len(r.dashSegs) > dashStart {
				r.dashRuns = append(r.dashRuns, run{start: dashStart, end: len(r.dashSegs)})
			}
			dashStart = len(r.dashSegs)
		}

		// advance moves the pattern position forward by l without
		// emitting dashes.
		advance := func(l float64) {
			if l < left {
				left -= l
				return
			}
			l = math.Mod(l-left, total)
			idx++
			left = pattern[idx%n]
			for l >= left {
				l -= left
				idx++
				left = pattern[idx%n]
			}
			left -= l
			on = idx%2 == 0
		}

		for i, s := range segs {
			fullLen := s.B.Sub(s.A).Length()
			t0, t1, ok := r.visible(s, margin)
			if i == 0 && (!ok || t0 > 0) {
				startsOn = false
			}
			if !ok {
				flush()
				advance(fullLen)
				continue
			}
			if t0 > 0 {
				flush()
				advance(t0 * fullLen)
			}
			if t0 > 0 || t1 < 1 {
				s = partial(s, t0, t1)
			}
			segLen := (t1 - t0) * fullLen
			pos := 0.0
			for {
				if left >= segLen-pos {
					if on {
						r.dashSegs = append(r.dashSegs, partial(s, pos/segLen, 1))
					}
					left -= segLen - pos
					break
				}
				endPos := pos + left
				if on {
					piece := partial(s, pos/segLen, endPos/segLen)
					if len(r.dashSegs) == dashStart || piece.A != piece.B {
						r.dashSegs = append(r.dashSegs, piece)
					}
					flush()
				}
				pos = endPos
				idx++
				left = pattern[idx%n]
				on = idx%2 == 0
			}
			if t1 < 1 {
				flush()
				advance((1 - t1) * fullLen)
			}
		}

		if rn.closed && startsOn && on && len(r.dashRuns) > firstRun && len(r.dashSegs) > dashStart {
			// merge the last dash with the first one
			head := r.dashRuns[firstRun]
			for i := head.start; i < head.end; i++ {
				r.dashSegs = append(r.dashSegs, r.dashSegs[i])
			}
			r.dashRuns = append(r.dashRuns[:firstRun], r.dashRuns[firstRun+1:]...)
		}
		flush()
	}
}

// visible returns the parameter range of s which lies inside the clip
// rectangle, enlarged by margin device pixels on every side.
func (r *Rasterizer) visible(s segment, margin float64) (t0, t1 float64, ok bool) {
	a, b := r.apply(s.A), r.apply(s.B)
	d := b.Sub(a)
	t0, t1 = 0, 1

	// clip keeps the part of the segment where p·t ≤ q
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		return true
	}
	box := r.Clip
	ok = clip(-d.X, a.X-(box.LLx-margin)) &&
		clip(d.X, box.URx+margin-a.X) &&
		clip(-d.Y, a.Y-(box.LLy-margin)) &&
		clip(d.Y, box.URy+margin-a.Y)
	return t0, t1, ok && t0 < t1
}

// partial returns the piece of s between the parameters t0 and t1.
func partial(s segment, t0, t1 float64) segment {
	d := s.B.Sub(s.A)
	return segment{
		A: s.A.Add(d.Mul(t0)),
		B: s.A.Add(d.Mul(t1)),
		T: s.T,
		N: s.N,
	}
}
