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

package ggsurface

import (
	"image/color"
	"testing"

	"seehuhn.de/go/optics/surface"
)

func TestFill(t *testing.T) {
	s, err := New(20, 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Clear(color.Black)
	s.Fill(surface.Rectangle(5, 5, 10, 10), color.NRGBA{R: 255, A: 255})

	img := s.Image()
	r, g, _, _ := img.At(10, 10).RGBA()
	if r>>8 < 200 || g>>8 > 50 {
		t.Errorf("inside: got %v", img.At(10, 10))
	}
	r, _, _, _ = img.At(1, 1).RGBA()
	if r>>8 > 50 {
		t.Errorf("outside: got %v", img.At(1, 1))
	}
}

func TestPixelRatio(t *testing.T) {
	s, err := New(10, 8, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if w, h := s.Size(); w != 10 || h != 8 {
		t.Errorf("logical size %dx%d", w, h)
	}
	if b := s.Image().Bounds(); b.Dx() != 20 || b.Dy() != 16 {
		t.Errorf("device size %v", b)
	}
}
