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

// Package warp renders the optical image of a raster by mapping its pixels
// through a solver.
//
// Two strategies are available.  Forward mapping evaluates the solver on
// an N×N grid over the object and paints a small square for every image
// point; it works for every solver but can leave gaps where the mapping
// stretches.  Inverse mapping visits every destination pixel and looks up
// its object point through the closed-form inverse; it is gap-free and
// used whenever the element provides an inverse.
package warp

import (
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/viewport"
)

// Default parameters of a [Renderer].
const (
	DefaultResolution = 300
	DefaultBlock      = 4
)

// boundsSamples is the grid size used to estimate the image region
// before inverse mapping.
const boundsSamples = 64

// Mode selects the mapping strategy.
type Mode int

const (
	// Auto uses inverse mapping when the solver implements
	// [optics.Inverter], and forward mapping otherwise.
	Auto Mode = iota
	Forward
	Inverse
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "auto", "forward" or "inverse" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "forward":
		return Forward, nil
	case "inverse":
		return Inverse, nil
	}
	return Auto, fmt.Errorf("unknown warp mode %q", s)
}

// Renderer draws warped images.  The zero value uses the defaults.
type Renderer struct {
	// N is the number of forward-mapping samples along each side of the
	// object.
	N int

	// Block is the side length, in pixels, of the square painted for
	// each forward-mapped sample.
	Block int

	Mode Mode
}

// Result summarises one call to [Renderer.Render].
type Result struct {
	// Mode is the strategy actually used, never Auto.
	Mode Mode

	// Solved counts samples (forward) or pixels (inverse) which produced
	// an image pixel; Skipped counts those which did not.
	Solved, Skipped int
}

// Render draws the image of src, placed on the world rectangle fp, as
// formed by solver.
func (r Renderer) Render(s surface.Surface, v viewport.View, src *Source, fp rect.Rect, solver optics.Solver) Result {
	mode := r.Mode
	inv, canInvert := solver.(optics.Inverter)
	if mode == Auto || mode == Inverse && !canInvert {
		mode = Forward
		if canInvert {
			mode = Inverse
		}
	}

	var res Result
	if mode == Inverse {
		res = r.inverse(s, v, src, fp, solver, inv)
	} else {
		res = r.forward(s, v, src, fp, solver)
	}
	optics.Logger().Debug("warp",
		"mode", res.Mode,
		"solved", res.Solved,
		"skipped", res.Skipped)
	return res
}

// patch collects warped pixels in surface coordinates and paints them
// with a single image blit.
type patch struct {
	img    *image.RGBA
	origin image.Point
}

func newPatch(r image.Rectangle) *patch {
	return &patch{
		img:    image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())),
		origin: r.Min,
	}
}

func (p *patch) draw(s surface.Surface) {
	b := p.img.Rect
	s.DrawImage(p.img, b, rect.Rect{
		LLx: float64(p.origin.X),
		LLy: float64(p.origin.Y),
		URx: float64(p.origin.X + b.Dx()),
		URy: float64(p.origin.Y + b.Dy()),
	})
}

type block struct {
	x, y int
	pix  [4]uint8
}

// forward evaluates the solver on the N×N sample grid and paints one
// Block×Block square per image point.
func (r Renderer) forward(s surface.Surface, v viewport.View, src *Source, fp rect.Rect, solver optics.Solver) Result {
	n := r.N
	if n <= 0 {
		n = DefaultResolution
	}
	bs := r.Block
	if bs <= 0 {
		bs = DefaultBlock
	}

	w, h := s.Size()
	fw, fh := fp.URx-fp.LLx, fp.URy-fp.LLy
	sw, sh := float64(src.Width()), float64(src.Height())
	half := float64(bs) / 2

	res := Result{Mode: Forward}
	blocks := make([]block, 0, n*n)
	area := image.Rectangle{}
	for j := range n {
		ty := float64(j) / float64(n)
		y := fp.URy - ty*fh
		for i := range n {
			tx := float64(i) / float64(n)
			x := fp.LLx + tx*fw

			img, ok := solver.Solve(x, y)
			if !ok {
				res.Skipped++
				continue
			}
			res.Solved++

			sx, sy := v.WorldToScreen(img.X, img.Y, w, h)
			if !(sx > -half && sx < float64(w)+half && sy > -half && sy < float64(h)+half) {
				continue
			}
			c := src.Sample(tx*sw, ty*sh)
			if c.A == 0 {
				continue
			}
			b := block{
				x:   int(math.Floor(sx - half)),
				y:   int(math.Floor(sy - half)),
				pix: [4]uint8{c.R, c.G, c.B, c.A},
			}
			blocks = append(blocks, b)
			area = area.Union(image.Rect(b.x, b.y, b.x+bs, b.y+bs))
		}
	}

	area = area.Intersect(image.Rect(0, 0, w, h))
	if area.Empty() {
		return res
	}
	p := newPatch(area)
	for _, b := range blocks {
		sq := image.Rect(b.x, b.y, b.x+bs, b.y+bs).Intersect(area)
		for py := sq.Min.Y; py < sq.Max.Y; py++ {
			off := p.img.PixOffset(sq.Min.X-area.Min.X, py-area.Min.Y)
			for px := sq.Min.X; px < sq.Max.X; px++ {
				copy(p.img.Pix[off:off+4], b.pix[:])
				off += 4
			}
		}
	}
	p.draw(s)
	return res
}

// inverse maps every destination pixel in the estimated image region
// back to the object and samples the source there.
func (r Renderer) inverse(s surface.Surface, v viewport.View, src *Source, fp rect.Rect, solver optics.Solver, inv optics.Inverter) Result {
	w, h := s.Size()
	res := Result{Mode: Inverse}

	area := imageBounds(v, w, h, fp, solver)
	if area.Empty() {
		return res
	}

	fw, fh := fp.URx-fp.LLx, fp.URy-fp.LLy
	sw, sh := float64(src.Width()), float64(src.Height())
	p := newPatch(area)
	for py := area.Min.Y; py < area.Max.Y; py++ {
		off := p.img.PixOffset(0, py-area.Min.Y)
		for px := area.Min.X; px < area.Max.X; px, off = px+1, off+4 {
			X, Y := v.ScreenToWorld(float64(px)+0.5, float64(py)+0.5, w, h)
			x, y, ok := optics.SolveVerified(solver, inv, X, Y)
			if !ok || x < fp.LLx || x > fp.URx || y < fp.LLy || y > fp.URy {
				res.Skipped++
				continue
			}
			res.Solved++
			c := src.Sample((x-fp.LLx)/fw*sw, (fp.URy-y)/fh*sh)
			q := p.img.Pix[off : off+4 : off+4]
			q[0], q[1], q[2], q[3] = c.R, c.G, c.B, c.A
		}
	}
	p.draw(s)
	return res
}

// imageBounds estimates the surface pixels covered by the image of the
// footprint by forward-mapping a coarse grid, including the edges.  The
// result is padded by a few pixels and clipped to the surface.
func imageBounds(v viewport.View, w, h int, fp rect.Rect, solver optics.Solver) image.Rectangle {
	const pad = 3
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for j := 0; j <= boundsSamples; j++ {
		y := fp.LLy + (fp.URy-fp.LLy)*float64(j)/boundsSamples
		for i := 0; i <= boundsSamples; i++ {
			x := fp.LLx + (fp.URx-fp.LLx)*float64(i)/boundsSamples
			img, ok := solver.Solve(x, y)
			if !ok {
				continue
			}
			sx, sy := v.WorldToScreen(img.X, img.Y, w, h)
			xMin, xMax = min(xMin, sx), max(xMax, sx)
			yMin, yMax = min(yMin, sy), max(yMax, sy)
		}
	}
	if xMin > xMax {
		return image.Rectangle{}
	}

	clamp := func(t float64, hi int) int {
		return int(min(max(t, 0), float64(hi)))
	}
	r := image.Rect(
		clamp(math.Floor(xMin)-pad, w), clamp(math.Floor(yMin)-pad, h),
		clamp(math.Ceil(xMax)+pad, w), clamp(math.Ceil(yMax)+pad, h),
	)
	return r
}
