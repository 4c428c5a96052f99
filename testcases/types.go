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

// Package testcases provides named scene configurations which are shared
// by tests and by the commands that export reference images.
package testcases

import (
	"fmt"

	"seehuhn.de/go/optics/scene"
	"seehuhn.de/go/optics/surface"
	"seehuhn.de/go/optics/viewport"
	"seehuhn.de/go/optics/warp"
)

// TestCase defines a single scene rendering.
type TestCase struct {
	Name  string // lowercase a-z and _ only
	Scene string // element name, see [scene.New]

	// At moves the object away from the scene's default placement.
	At *scene.Placement

	// Param sets the element's main parameter.  Zero keeps the default.
	Param float64

	// Sector sets the sector angle of an anamorphic projector.
	Sector float64

	// View replaces the scene's home view.  The zero value keeps it.
	View viewport.View

	Width  int // canvas width in pixels
	Height int // canvas height in pixels

	Mode warp.Mode
}

// sourceSize is the side length of the checkerboard used as object.
const sourceSize = 128

// Build returns the configured scene, showing a checkerboard.
func (tc TestCase) Build() (*scene.Scene, error) {
	sc, err := scene.New(tc.Scene, warp.Checkerboard(sourceSize, 8))
	if err != nil {
		return nil, err
	}
	if tc.Param != 0 {
		if err := sc.SetParam(tc.Param); err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
	}
	if tc.Sector != 0 {
		if err := sc.SetSector(tc.Sector); err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
	}
	if tc.At != nil {
		sc.MoveTo(tc.At.X, tc.At.Y)
	}
	if tc.View.Scale != 0 {
		sc.Home = tc.View
	}
	sc.Renderer.Mode = tc.Mode
	return sc, nil
}

// Render draws the test case onto s, which should have the size given in
// the test case.
func (tc TestCase) Render(s surface.Surface) (*scene.Scene, error) {
	sc, err := tc.Build()
	if err != nil {
		return nil, err
	}
	e := viewport.NewEngine(s, sc.EngineOptions()...)
	sc.Attach(e)
	e.Draw()
	return sc, nil
}

func at(x, y float64) *scene.Placement {
	return &scene.Placement{X: x, Y: y}
}
