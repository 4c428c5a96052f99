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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Line returns the segment from (x0, y0) to (x1, y1).
func Line(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1})
}

// Polyline returns the open path through pts.
func Polyline(pts ...vec.Vec2) *path.Data {
	p := &path.Data{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	return p
}

// Rectangle returns the closed axis-aligned rectangle with top-left corner
// (x, y).
func Rectangle(x, y, w, h float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x, Y: y}).
		LineTo(vec.Vec2{X: x + w, Y: y}).
		LineTo(vec.Vec2{X: x + w, Y: y + h}).
		LineTo(vec.Vec2{X: x, Y: y + h}).
		Close()
}

// Circle returns a closed circle.
func Circle(cx, cy, r float64) *path.Data {
	p := Arc(cx, cy, r, 0, 2*math.Pi)
	return p.Close()
}

// Arc returns the circular arc from angle a0 to angle a1, in radians.
// Angles are measured from the positive x axis towards the positive y
// axis, i.e. clockwise on screen.  The arc runs in the direction of
// a1 - a0.
func Arc(cx, cy, r, a0, a1 float64) *path.Data {
	p := &path.Data{}
	at := func(a float64) vec.Vec2 {
		return vec.Vec2{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	p.MoveTo(at(a0))
	AppendArc(p, cx, cy, r, a0, a1)
	return p
}

// AppendArc continues p with a circular arc, see [Arc].  The current point
// of p is assumed to be the start of the arc.
func AppendArc(p *path.Data, cx, cy, r, a0, a1 float64) {
	sweep := a1 - a0
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	delta := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(delta/4) * r
	for i := range n {
		s := a0 + float64(i)*delta
		e := s + delta
		cs, ss := math.Cos(s), math.Sin(s)
		ce, se := math.Cos(e), math.Sin(e)
		CubeTo(p,
			vec.Vec2{X: cx + r*cs - k*ss, Y: cy + r*ss + k*cs},
			vec.Vec2{X: cx + r*ce + k*se, Y: cy + r*se - k*ce},
			vec.Vec2{X: cx + r*ce, Y: cy + r*se})
	}
}

// QuadTo appends a quadratic Bézier segment to p.
func QuadTo(p *path.Data, c, e vec.Vec2) {
	p.Cmds = append(p.Cmds, path.CmdQuadTo)
	p.Coords = append(p.Coords, c, e)
}

// CubeTo appends a cubic Bézier segment to p.
func CubeTo(p *path.Data, c1, c2, e vec.Vec2) {
	p.Cmds = append(p.Cmds, path.CmdCubeTo)
	p.Coords = append(p.Coords, c1, c2, e)
}
