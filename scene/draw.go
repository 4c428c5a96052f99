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

package scene

import (
	"fmt"
	"image/color"
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/viewport"
)

// Colours of the scene decorations.
var (
	MirrorColor  = color.NRGBA{R: 0x00, G: 0x66, B: 0xcc, A: 0xff}
	MirrorFill   = color.NRGBA{R: 0x00, G: 0x66, B: 0xcc, A: 51}
	PlaneColor   = color.NRGBA{R: 0xff, A: 0xff}
	FocusColor   = color.NRGBA{R: 0xff, G: 0x66, A: 0xff}
	LensColor    = color.NRGBA{R: 0x00, G: 0xaa, B: 0xff, A: 0xff}
	LensFill     = color.NRGBA{R: 0x00, G: 0xaa, B: 0xff, A: 51}
	RangeColor   = color.NRGBA{R: 0xff, G: 0xff, A: 77}
	RangeLabel   = color.NRGBA{R: 0xff, G: 0xff, A: 0xff}
	RayColor     = color.NRGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	VirtualColor = color.NRGBA{R: 0xff, G: 0x88, B: 0x88, A: 0xff}
	GuideColor   = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	TextColor    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Lens silhouette, in world units.
const (
	lensHeight = 2.0
	lensWidth  = 0.3
	lensBulge  = 0.2
)

var (
	dashAxis   = []float64{2, 2}
	dashGuide  = []float64{8, 4}
	dashRange  = []float64{5, 5}
	dashExtend = []float64{4, 4}
)

// pen converts world coordinates for one surface and view.
type pen struct {
	s    surface.Surface
	v    viewport.View
	w, h int
}

func (p *pen) pt(x, y float64) vec.Vec2 {
	sx, sy := p.v.WorldToScreen(x, y, p.w, p.h)
	return vec.Vec2{X: sx, Y: sy}
}

// poly returns the polyline through the given world points, given as
// x, y pairs.
func (p *pen) poly(xy ...float64) *path.Data {
	pts := make([]vec.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		pts = append(pts, p.pt(xy[i], xy[i+1]))
	}
	return surface.Polyline(pts...)
}

func (p *pen) stroke(d *path.Data, c color.Color, width float64, dash []float64) {
	p.s.Stroke(d, surface.Stroke{Color: c, Width: width, Dash: dash})
}

// marker draws a labelled dot at a world point.
func (p *pen) marker(x, y float64, c color.Color, label string) {
	q := p.pt(x, y)
	dot := surface.Circle(q.X, q.Y, 5)
	p.s.Fill(dot, c)
	p.stroke(dot, TextColor, 1, nil)
	p.s.Text(label, q.X, q.Y-10, surface.TextStyle{
		Color: TextColor,
		Size:  12,
		Align: surface.AlignCenter,
	})
}

// circle returns a world circle.
func (p *pen) circle(cx, cy, r float64) *path.Data {
	c := p.pt(cx, cy)
	return surface.Circle(c.X, c.Y, r*p.v.Scale)
}

// arc returns a world arc.  The angles are screen angles, see
// [surface.Arc].
func (p *pen) arc(cx, cy, r, a0, a1 float64) *path.Data {
	c := p.pt(cx, cy)
	return surface.Arc(c.X, c.Y, r*p.v.Scale, a0, a1)
}

// Draw paints the scene: the element, the construction rays, the object
// raster, its warped image and the labels.
func (s *Scene) Draw(sf surface.Surface, v viewport.View) {
	w, h := sf.Size()
	p := &pen{s: sf, v: v, w: w, h: h}

	img, hasImage := s.Image()
	switch e := s.Element.(type) {
	case optics.PlaneMirror:
		drawPlane(p, s.Placement, img, hasImage)
	case optics.ConcaveMirror:
		drawConcave(p, e, s.Placement, img, hasImage)
	case optics.ConvexMirror:
		drawConvex(p, e, s.Placement, img, hasImage)
	case optics.ThinLens:
		drawLens(p, e, s.Placement, img, hasImage)
	case optics.AnamorphicProjector:
		drawProjector(p, e)
	case optics.CylinderMirror:
		drawCylinder(p, e)
	}

	fp := s.Footprint()
	tl := p.pt(fp.LLx, fp.URy)
	br := p.pt(fp.URx, fp.LLy)
	sf.DrawImage(s.Source.Image(), s.Source.Image().Rect, rect.Rect{
		LLx: tl.X, LLy: tl.Y, URx: br.X, URy: br.Y,
	})

	s.last = s.Renderer.Render(sf, v, s.Source, fp, s.Element)

	if s.Fixed {
		return
	}
	style := surface.TextStyle{Color: TextColor, Size: 14, Align: surface.AlignCenter}
	q := p.pt(s.Placement.X, s.Placement.Y+0.8)
	sf.Text(fmt.Sprintf("(%s, %s)", viewport.FormatNumber(s.Placement.X), viewport.FormatNumber(s.Placement.Y)), q.X, q.Y, style)
	if hasImage {
		q := p.pt(img.X, img.Y-0.8)
		sf.Text(fmt.Sprintf("(%.2f, %.2f)", img.X, img.Y), q.X, q.Y, style)
		sf.Text(img.Kind.String(), q.X, q.Y-20, style)
	}
}

func drawPlane(p *pen, obj Placement, img optics.ImagePoint, ok bool) {
	top := p.pt(0, 0)
	p.stroke(surface.Line(top.X, 0, top.X, float64(p.h)), PlaneColor, 2, nil)
	if !ok {
		return
	}
	// sight line from the image through the mirror to the object
	p.stroke(p.poly(obj.X, obj.Y, 0, (obj.Y+img.Y)/2), RayColor, 3, nil)
	p.stroke(p.poly(0, (obj.Y+img.Y)/2, img.X, img.Y), VirtualColor, 2, dashExtend)
}

func drawConcave(p *pen, m optics.ConcaveMirror, obj Placement, img optics.ImagePoint, ok bool) {
	R := m.R
	p.stroke(p.arc(0, 0, R, math.Pi/2, 3*math.Pi/2), MirrorColor, 2, nil)
	p.stroke(p.poly(-R, 0, R, 0), MirrorColor, 1, dashAxis)
	fx, fy := m.Focus()
	p.marker(0, 0, MirrorColor, "C")
	p.marker(fx, fy, FocusColor, "F")
	if !ok {
		return
	}

	hx, hy, hit := m.Hit(obj.Y)
	if !hit {
		return
	}
	p.stroke(p.poly(obj.X, obj.Y, hx, hy), RayColor, 3, nil)
	p.stroke(p.poly(hx, hy, img.X, img.Y), RayColor, 3, nil)
	p.stroke(p.poly(img.X, img.Y, 0, 0, hx, hy), GuideColor, 2, dashGuide)
	p.stroke(p.poly(obj.X, obj.Y, img.X, img.Y), GuideColor, 2, dashGuide)
}

func drawConvex(p *pen, m optics.ConvexMirror, obj Placement, img optics.ImagePoint, ok bool) {
	R := m.R
	p.stroke(p.arc(0, 0, R, -math.Pi/2, math.Pi/2), MirrorColor, 2, nil)
	p.stroke(p.poly(0, 0, 2*R, 0), MirrorColor, 1, dashAxis)
	fx, fy := m.Focus()
	p.marker(0, 0, MirrorColor, "C")
	p.marker(fx, fy, FocusColor, "F")
	if !ok || math.Abs(obj.Y) > R {
		return
	}

	// the axis-parallel ray and the ray aimed at the centre, with their
	// virtual extensions behind the mirror
	hx := math.Sqrt(R*R - obj.Y*obj.Y)
	p.stroke(p.poly(obj.X, obj.Y, hx, obj.Y), RayColor, 3, nil)
	p.stroke(p.poly(hx, obj.Y, img.X, img.Y, fx, fy), VirtualColor, 2, dashExtend)

	d := math.Hypot(obj.X, obj.Y)
	cx, cy := R*obj.X/d, R*obj.Y/d
	p.stroke(p.poly(obj.X, obj.Y, cx, cy), RayColor, 3, nil)
	p.stroke(p.poly(cx, cy, img.X, img.Y), VirtualColor, 2, dashExtend)
}

func drawLens(p *pen, l optics.ThinLens, obj Placement, img optics.ImagePoint, ok bool) {
	const hh, hw = lensHeight / 2, lensWidth / 2
	shape := &path.Data{}
	if l.Kind() == optics.LensConvex {
		shape.MoveTo(p.pt(0, hh))
		surface.QuadTo(shape, p.pt(-hw-lensBulge, 0), p.pt(0, -hh))
		surface.QuadTo(shape, p.pt(hw+lensBulge, 0), p.pt(0, hh))
	} else {
		inset := hw - lensBulge/2
		shape.MoveTo(p.pt(-hw, hh))
		surface.QuadTo(shape, p.pt(-hw+inset, 0), p.pt(-hw, -hh))
		shape.LineTo(p.pt(hw, -hh))
		surface.QuadTo(shape, p.pt(hw-inset, 0), p.pt(hw, hh))
	}
	shape.Close()
	p.s.Fill(shape, LensFill)
	p.stroke(shape, LensColor, 2, nil)

	f := math.Abs(l.F)
	p.stroke(p.poly(-5, 0, 5, 0), LensColor, 1, dashAxis)
	f1, f2 := l.FocalPoints()
	p.marker(f1, 0, LensColor, "F")
	p.marker(f2, 0, LensColor, "F")

	p.stroke(p.poly(f, -hh, f, hh), RangeColor, 2, dashRange)
	label := "Focal Range"
	if l.Kind() == optics.LensConcave {
		label = "Virtual Focus"
	}
	q := p.pt(f, hh+0.3)
	p.s.Text(label, q.X, q.Y, surface.TextStyle{Color: RangeLabel, Size: 12, Align: surface.AlignCenter})

	if !ok {
		return
	}
	rays, virtual := lensRays(l, obj, img)
	for _, r := range rays {
		p.stroke(p.poly(r[:]...), RayColor, 3, nil)
	}
	for _, r := range virtual {
		p.stroke(p.poly(r[:]...), VirtualColor, 3, dashExtend)
	}
}

// lensRays returns the construction rays of a thin lens as world segments
// x0, y0, x1, y1.  The axis-parallel ray is refracted along the line
// through the focal point (−f, 0); the ray through the lens centre is
// not deviated.  For virtual images the second list holds the backward
// extensions of both rays, which meet at the image.  The extension of the
// refracted ray reaches the focal point if that lies beyond the image.
func lensRays(l optics.ThinLens, obj Placement, img optics.ImagePoint) (rays, virtual [][4]float64) {
	f := l.F
	refracted := func(x float64) float64 { return obj.Y * (1 + x/f) }
	central := func(x float64) float64 { return obj.Y / obj.X * x }

	// the rays leave the lens towards negative x
	end := -2 * math.Abs(f)
	if img.Kind == optics.Real {
		end = math.Min(end, img.X)
	}
	rays = [][4]float64{
		{obj.X, obj.Y, 0, obj.Y},
		{0, obj.Y, end, refracted(end)},
		{obj.X, obj.Y, end, central(end)},
	}
	if img.Kind == optics.Real {
		return rays, nil
	}

	back := max(img.X, -f)
	virtual = [][4]float64{
		{0, obj.Y, back, refracted(back)},
		{0, 0, img.X, img.Y},
	}
	return rays, virtual
}

func drawProjector(p *pen, a optics.AnamorphicProjector) {
	p.stroke(p.circle(0, 0, 1), MirrorColor, 2, nil)
	p.marker(0, 0, MirrorColor, "C")

	bx, by := a.Base()
	t0 := a.StartAngle() * math.Pi / 180
	t1 := (a.StartAngle() + a.SectorDegrees) * math.Pi / 180
	p.stroke(p.arc(bx, by, a.InnerRadius, t0, t1), LensColor, 1.5, nil)
	p.stroke(p.arc(bx, by, a.OuterRadius, t0, t1), LensColor, 1.5, nil)
	if a.SectorDegrees >= 360 {
		return
	}
	for _, t := range []float64{t0, t1} {
		// screen angles: the y axis points down
		c, s := math.Cos(t), -math.Sin(t)
		p.stroke(p.poly(
			bx+a.InnerRadius*c, by+a.InnerRadius*s,
			bx+a.OuterRadius*c, by+a.OuterRadius*s,
		), LensColor, 1.5, nil)
	}
}

func drawCylinder(p *pen, m optics.CylinderMirror) {
	c := p.circle(0, 0, m.R)
	p.s.Fill(c, MirrorFill)
	p.stroke(c, MirrorColor, 2, nil)
	p.marker(0, 0, MirrorColor, "C")
}
