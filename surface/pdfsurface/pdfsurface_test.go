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

package pdfsurface

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"seehuhn.de/go/geom/rect"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/optics/surface"
)

func TestWritePage(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "scene.pdf")
	s, err := Create(fname, 120, 80)
	if err != nil {
		t.Fatal(err)
	}

	s.Clear(color.Black)
	s.Fill(surface.Circle(60, 40, 20), color.NRGBA{R: 255, A: 128})
	s.Stroke(surface.Line(0, 40, 120, 40), surface.Stroke{
		Color: color.White,
		Width: 2,
		Dash:  []float64{8, 4},
	})
	s.Text("F", 30, 30, surface.TextStyle{Color: color.White, Size: 12})

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{G: 255, A: 255})
	s.DrawImage(img, img.Bounds(), rect.Rect{LLx: 10, LLy: 10, URx: 30, URy: 20})

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("not a PDF file: %q", data[:min(len(data), 16)])
	}
}

func TestFlatten(t *testing.T) {
	s := &Surface{bg: color.NRGBA{A: 255}}
	got := s.flatten(color.NRGBA{R: 255, A: 51})
	if got.R != 51 || got.A != 255 {
		t.Errorf("got %v", got)
	}
}

func TestPDFColor(t *testing.T) {
	s := &Surface{bg: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
	c := s.pdfColor(color.NRGBA{R: 255, G: 102, A: 255})
	got, ok := c.(pdfcolor.DeviceRGB)
	if !ok {
		t.Fatalf("got %T, want DeviceRGB", c)
	}
	want := pdfcolor.DeviceRGB{1, 0.4, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}
