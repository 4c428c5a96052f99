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

package warp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/optics"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/viewport"
)

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// quadrants returns a 2×2 image: red and green on top, blue and white
// below.
func quadrants(t *testing.T) *Source {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, green)
	img.SetRGBA(0, 1, blue)
	img.SetRGBA(1, 1, white)
	src, err := NewSource(img)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

// centroid returns the mean position of all pixels with colour c.
func centroid(img *image.RGBA, c color.RGBA) (x, y float64, n int) {
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if img.RGBAAt(px, py) == c {
				x += float64(px)
				y += float64(py)
				n++
			}
		}
	}
	if n > 0 {
		x /= float64(n)
		y /= float64(n)
	}
	return x, y, n
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Auto, Forward, Inverse} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if m, err := ParseMode(""); err != nil || m != Auto {
		t.Errorf("empty mode: %v, %v", m, err)
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestNewSourceEmpty(t *testing.T) {
	_, err := NewSource(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("got %v", err)
	}
}

func TestSampleClamps(t *testing.T) {
	src := quadrants(t)
	cases := []struct {
		u, v float64
		want color.RGBA
	}{
		{0.5, 0.5, red},
		{1.5, 0.5, green},
		{-3, 1.2, blue},
		{7, 9, white},
		{math.NaN(), 0, red},
		{1.999, -0.1, green},
	}
	for _, c := range cases {
		if got := src.Sample(c.u, c.v); got != c.want {
			t.Errorf("Sample(%g, %g) = %v, want %v", c.u, c.v, got, c.want)
		}
	}
}

func TestFootprint(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	src, err := NewSource(img)
	if err != nil {
		t.Fatal(err)
	}
	fp := src.Footprint(3, -1, 2)
	want := rect.Rect{LLx: 1.5, LLy: -2, URx: 4.5, URy: 0}
	if fp != want {
		t.Errorf("got %v, want %v", fp, want)
	}
}

func TestDecode(t *testing.T) {
	src := quadrants(t)
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, src.Image()); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width() != 2 || got.Height() != 2 || got.Sample(1, 1) != white {
		t.Errorf("decoded %dx%d image", got.Width(), got.Height())
	}

	if _, err := Decode(strings.NewReader("not an image")); err == nil {
		t.Error("garbage decoded")
	}
}

// pngHeader returns the start of a PNG file which declares a w×h RGBA
// image, without any pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 6, 0, 0, 0)

	buf := []byte("\x89PNG\r\n\x1a\n")
	buf = binary.BigEndian.AppendUint32(buf, 13)
	buf = append(buf, ihdr...)
	buf = binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(ihdr))
	return buf
}

func TestDecodeTooLarge(t *testing.T) {
	_, err := Decode(bytes.NewReader(pngHeader(60000, 60000)))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("60000x60000: got %v", err)
	}

	// the limit is on the pixel count, not on either side
	_, err = Decode(bytes.NewReader(pngHeader(MaxPixels+1, 1)))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("long row: got %v", err)
	}
}

func TestCheckerboard(t *testing.T) {
	src := Checkerboard(64, 8)
	if src.Width() != 64 || src.Height() != 64 {
		t.Fatalf("got %dx%d", src.Width(), src.Height())
	}
	if c := src.Sample(1, 1); c.R != 0xff {
		t.Errorf("top-left not tinted: %v", c)
	}
	if src.Sample(1, 1) == src.Sample(9, 1) {
		t.Error("neighbouring cells have the same colour")
	}
}

func TestModeSelection(t *testing.T) {
	src := quadrants(t)
	fp := rect.Rect{LLx: 2, LLy: -0.5, URx: 3, URy: 0.5}
	cases := []struct {
		solver optics.Solver
		mode   Mode
		want   Mode
	}{
		{optics.PlaneMirror{}, Auto, Inverse},
		{optics.PlaneMirror{}, Forward, Forward},
		{optics.ConcaveMirror{R: 5}, Auto, Forward},
		{optics.ConcaveMirror{R: 5}, Inverse, Forward},
		{optics.ConvexMirror{R: 1}, Auto, Inverse},
	}
	for _, c := range cases {
		s := surface.NewSoftware(50, 50)
		r := Renderer{N: 20, Mode: c.mode}
		res := r.Render(s, viewport.Default, src, fp, c.solver)
		if res.Mode != c.want {
			t.Errorf("%T in mode %v: used %v", c.solver, c.mode, res.Mode)
		}
	}
}

// TestPlaneMirrorFlips checks that both strategies mirror the source
// left-to-right and keep it upright.
func TestPlaneMirrorFlips(t *testing.T) {
	src := quadrants(t)
	fp := src.Footprint(2, 0, 2)
	v := viewport.View{CX: -2, CY: 0, Scale: 50}

	// the image covers pixels 50 to 150 in both directions
	want := []struct {
		x, y int
		c    color.RGBA
	}{
		{75, 75, green},
		{125, 75, red},
		{75, 125, white},
		{125, 125, blue},
	}
	for _, mode := range []Mode{Forward, Inverse} {
		s := surface.NewSoftware(200, 200)
		res := Renderer{Mode: mode}.Render(s, v, src, fp, optics.PlaneMirror{})
		if res.Mode != mode || res.Solved == 0 {
			t.Fatalf("%v: %+v", mode, res)
		}
		img := s.Image()
		for _, w := range want {
			if got := img.RGBAAt(w.x, w.y); got != w.c {
				t.Errorf("%v: pixel (%d, %d) = %v, want %v", mode, w.x, w.y, got, w.c)
			}
		}
		if got := img.RGBAAt(10, 10); got.A != 0 {
			t.Errorf("%v: pixel outside the image was painted: %v", mode, got)
		}
	}
}

// TestConcaveMirrorInverts places an object beyond the centre of
// curvature; the real image must be turned through half a circle.
func TestConcaveMirrorInverts(t *testing.T) {
	src := quadrants(t)
	fp := src.Footprint(3, 0, 1)
	v := viewport.View{CX: -1.35, CY: 0, Scale: 200}
	s := surface.NewSoftware(200, 200)

	res := Renderer{}.Render(s, v, src, fp, optics.ConcaveMirror{R: 5})
	if res.Mode != Forward {
		t.Fatalf("used %v", res.Mode)
	}
	// the sample row at y = 0 is on the axis and has no image
	if res.Skipped == 0 || res.Solved == 0 {
		t.Errorf("solved %d, skipped %d", res.Solved, res.Skipped)
	}

	img := s.Image()
	rx, ry, rn := centroid(img, red)
	gx, gy, gn := centroid(img, green)
	bx, by, bn := centroid(img, blue)
	wx, wy, wn := centroid(img, white)
	if rn == 0 || gn == 0 || bn == 0 || wn == 0 {
		t.Fatalf("missing quadrants: %d %d %d %d", rn, gn, bn, wn)
	}
	if !(rx > wx && ry > wy) {
		t.Errorf("red at (%.1f, %.1f), white at (%.1f, %.1f)", rx, ry, wx, wy)
	}
	if !(gx < bx && gy > by) {
		t.Errorf("green at (%.1f, %.1f), blue at (%.1f, %.1f)", gx, gy, bx, by)
	}
}

func TestOffscreenImage(t *testing.T) {
	src := quadrants(t)
	fp := src.Footprint(2, 0, 2)
	v := viewport.View{CX: 100, CY: 100, Scale: 100}
	for _, mode := range []Mode{Forward, Inverse} {
		s := surface.NewSoftware(64, 64)
		Renderer{Mode: mode}.Render(s, v, src, fp, optics.PlaneMirror{})
		_, _, n := centroid(s.Image(), color.RGBA{})
		if n != 64*64 {
			t.Errorf("%v: %d pixels painted", mode, 64*64-n)
		}
	}
}

func BenchmarkForward(b *testing.B) {
	src := Checkerboard(256, 8)
	fp := src.Footprint(3, 0, 1)
	v := viewport.View{CX: -1.35, CY: 0, Scale: 200}
	s := surface.NewSoftware(400, 400)
	r := Renderer{Mode: Forward}
	for b.Loop() {
		r.Render(s, v, src, fp, optics.ConcaveMirror{R: 5})
	}
}

func BenchmarkInverse(b *testing.B) {
	src := Checkerboard(256, 8)
	fp := src.Footprint(7.5, 0, 2)
	v := viewport.View{CX: 3.5, CY: 0, Scale: 200}
	s := surface.NewSoftware(400, 400)
	r := Renderer{Mode: Inverse}
	for b.Loop() {
		r.Render(s, v, src, fp, optics.ConvexMirror{R: 5})
	}
}
