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
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// circleK places cubic control points for a quarter circle.
const circleK = 0.5522847498

// addCircle appends a closed circle made of four cubic arcs.
func addCircle(p *path.Data, cx, cy, r float64, clockwise bool) {
	kr := circleK * r
	s := 1.0
	if clockwise {
		s = -1
	}
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: cx + x, Y: cy + s*y} }
	p.MoveTo(pt(r, 0))
	quarters := [4][3]vec.Vec2{
		{pt(r, kr), pt(kr, r), pt(0, r)},
		{pt(-kr, r), pt(-r, kr), pt(-r, 0)},
		{pt(-r, -kr), pt(-kr, -r), pt(0, -r)},
		{pt(kr, -r), pt(r, -kr), pt(r, 0)},
	}
	for _, q := range quarters {
		p.Cmds = append(p.Cmds, path.CmdCubeTo)
		p.Coords = append(p.Coords, q[0], q[1], q[2])
	}
	p.Close()
}

func TestCircleArea(t *testing.T) {
	p := &path.Data{}
	addCircle(p, 50, 50, 40, false)
	addCircle(p, 50, 50, 20, true)

	g := newGrid(100, 100)
	r := NewRasterizer(clipRect(100, 100))
	r.FillNonZero(p, g.emit)

	want := 3.14159265 * (40*40 - 20*20)
	if got := g.sum(); got < want*0.995 || got > want*1.005 {
		t.Errorf("ring area %.1f, want %.1f", got, want)
	}
}

// BenchmarkRasterizerRing fills a lens-sized ring, the typical marker shape.
func BenchmarkRasterizerRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			r := NewRasterizer(clipRect(size, size))
			c := float64(size) / 2
			p := &path.Data{}
			addCircle(p, c, c, float64(size)*0.45, false)
			addCircle(p, c, c, float64(size)*0.30, true)

			b.ReportAllocs()
			for b.Loop() {
				r.FillNonZero(p, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, v := range coverage {
						row[i] = uint8(v * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorRing draws the same ring with golang.org/x/image/vector.
func BenchmarkVectorRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{A: 255})
			v := vector.NewRasterizer(size, size)
			c := float32(size) / 2

			b.ReportAllocs()
			for b.Loop() {
				v.Reset(size, size)
				vectorCircle(v, c, c, float32(size)*0.45, false)
				vectorCircle(v, c, c, float32(size)*0.30, true)
				v.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

func vectorCircle(v *vector.Rasterizer, cx, cy, r float32, clockwise bool) {
	kr := float32(circleK) * r
	s := float32(1)
	if clockwise {
		s = -1
	}
	v.MoveTo(cx+r, cy)
	v.CubeTo(cx+r, cy+s*kr, cx+kr, cy+s*r, cx, cy+s*r)
	v.CubeTo(cx-kr, cy+s*r, cx-r, cy+s*kr, cx-r, cy)
	v.CubeTo(cx-r, cy-s*kr, cx-kr, cy-s*r, cx, cy-s*r)
	v.CubeTo(cx+kr, cy-s*r, cx+r, cy-s*kr, cx+r, cy)
	v.ClosePath()
}

// BenchmarkDashedRay strokes a long dashed construction ray.
func BenchmarkDashedRay(b *testing.B) {
	ray := (&path.Data{}).
		MoveTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 990, Y: 590})
	r := NewRasterizer(clipRect(1000, 600))
	r.Width = 2
	r.Dash = []float64{8, 4}

	b.ReportAllocs()
	for b.Loop() {
		r.Stroke(ray.Iter(), func(y, xMin int, coverage []float32) {})
	}
}
