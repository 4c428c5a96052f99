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
	"seehuhn.de/go/optics/viewport"
	"seehuhn.de/go/optics/warp"
)

// All contains all test cases, grouped by category.
// The category name is used as a prefix in output filenames.
var All = map[string][]TestCase{
	"mirror":     mirrorCases,
	"lens":       lensCases,
	"anamorphic": anamorphicCases,
	"warp":       warpCases,
}

var mirrorCases = []TestCase{
	{Name: "plane", Scene: "plane", Width: 640, Height: 480},
	{Name: "concave", Scene: "concave", Width: 640, Height: 480},
	{
		Name:   "concave_far",
		Scene:  "concave",
		At:     at(4, 1),
		View:   viewport.View{CX: -1, Scale: 60},
		Width:  640,
		Height: 480,
	},
	{
		Name:   "concave_small_radius",
		Scene:  "concave",
		Param:  2,
		At:     at(1.5, 0.5),
		Width:  640,
		Height: 480,
	},
	{Name: "convex", Scene: "convex", Width: 640, Height: 480},
	{
		Name:   "convex_near",
		Scene:  "convex",
		At:     at(5.3, -0.8),
		View:   viewport.View{CX: 4.5, Scale: 200},
		Width:  640,
		Height: 480,
	},
}

var lensCases = []TestCase{
	{Name: "convex_real", Scene: "lens", Width: 640, Height: 480},
	{
		Name:   "convex_virtual",
		Scene:  "lens",
		Param:  2,
		At:     at(1, 0.4),
		Width:  640,
		Height: 480,
	},
	{Name: "concave", Scene: "diverging", Width: 640, Height: 480},
	{
		Name:   "concave_long",
		Scene:  "diverging",
		Param:  -3,
		At:     at(3, -0.5),
		View:   viewport.View{Scale: 80},
		Width:  640,
		Height: 480,
	},
}

var anamorphicCases = []TestCase{
	{Name: "projector", Scene: "anamorphic", Width: 640, Height: 640},
	{
		Name:   "projector_full_circle",
		Scene:  "anamorphic",
		Param:  5,
		Sector: 360,
		View:   viewport.View{CY: -0.7, Scale: 60},
		Width:  640,
		Height: 640,
	},
	{Name: "cylinder", Scene: "cylinder", Width: 640, Height: 640},
}

var warpCases = []TestCase{
	{Name: "lens_forward", Scene: "lens", Mode: warp.Forward, Width: 320, Height: 240},
	{Name: "lens_inverse", Scene: "lens", Mode: warp.Inverse, Width: 320, Height: 240},
	{Name: "convex_forward", Scene: "convex", Mode: warp.Forward, Width: 320, Height: 240},
	{Name: "convex_inverse", Scene: "convex", Mode: warp.Inverse, Width: 320, Height: 240},
}
