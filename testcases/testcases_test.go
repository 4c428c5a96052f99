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

package testcases

import (
	"image"
	"maps"
	"math"
	"regexp"
	"slices"
	"testing"

	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/warp"
)

var validName = regexp.MustCompile(`^[a-z_]+$`)

func TestAll(t *testing.T) {
	seen := map[string]bool{}
	for _, category := range slices.Sorted(maps.Keys(All)) {
		for _, tc := range All[category] {
			name := category + "_" + tc.Name
			t.Run(name, func(t *testing.T) {
				if !validName.MatchString(tc.Name) {
					t.Errorf("invalid name %q", tc.Name)
				}
				if seen[name] {
					t.Errorf("duplicate name")
				}
				seen[name] = true

				s := surface.NewSoftware(tc.Width, tc.Height)
				sc, err := tc.Render(s)
				if err != nil {
					t.Fatal(err)
				}
				if res := sc.LastResult(); res.Solved == 0 {
					t.Errorf("empty warp: %+v", res)
				}
				if tc.Mode != warp.Auto && sc.LastResult().Mode != tc.Mode {
					t.Errorf("rendered with %v", sc.LastResult().Mode)
				}
			})
		}
	}
}

// TestModesAgree checks that forward and inverse mapping put the tinted
// quadrant of the checkerboard in the same place.
func TestModesAgree(t *testing.T) {
	for _, scene := range []string{"lens", "convex"} {
		var centres [2][2]float64
		for i, mode := range []warp.Mode{warp.Forward, warp.Inverse} {
			tc := TestCase{Name: "agree", Scene: scene, Mode: mode, Width: 320, Height: 240}
			s := surface.NewSoftware(tc.Width, tc.Height)
			sc, err := tc.Render(s)
			if err != nil {
				t.Fatal(err)
			}

			// leave out the unwarped object
			fp := sc.Footprint()
			v := sc.Home
			x0, y0 := v.WorldToScreen(fp.LLx, fp.URy, tc.Width, tc.Height)
			x1, y1 := v.WorldToScreen(fp.URx, fp.LLy, tc.Width, tc.Height)
			skip := image.Rect(int(x0)-1, int(y0)-1, int(x1)+2, int(y1)+2)

			x, y, n := tinted(s.Image(), skip)
			if n == 0 {
				t.Fatalf("%s/%v: no tinted pixels", scene, mode)
			}
			centres[i] = [2]float64{x, y}
		}
		dx := centres[0][0] - centres[1][0]
		dy := centres[0][1] - centres[1][1]
		if math.Hypot(dx, dy) > 5 {
			t.Errorf("%s: forward %v, inverse %v", scene, centres[0], centres[1])
		}
	}
}

// tinted returns the centroid of the pixels from the red quadrant of
// the checkerboard, outside of skip.
func tinted(img *image.RGBA, skip image.Rectangle) (x, y float64, n int) {
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if (image.Point{X: px, Y: py}).In(skip) {
				continue
			}
			c := img.RGBAAt(px, py)
			if c.R == 0xff && c.A == 0xff && (c.G == 0xe8 && c.B == 0xe8 || c.G == 0x60 && c.B == 0xa0) {
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
