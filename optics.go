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

// Package optics computes where simple optical elements form the image of
// an object point.
//
// Every element lives in the same world coordinate system: mirrors and
// lenses are centred on the y axis or, for spherical mirrors, have their
// centre of curvature at the origin.  A solver maps an object point to an
// [ImagePoint].  When no image is formed, for example because a
// denominator vanishes or the point is outside the element's domain, the
// solver reports ok == false.  This is an expected outcome and not an
// error.
//
// Elements whose mapping can be inverted in closed form also implement
// [Inverter].  Renderers use this to iterate over destination pixels
// instead of source pixels.
package optics

import "fmt"

// Kind classifies an image as real or virtual.
type Kind int

const (
	// Real images are formed by converging rays and can be projected
	// onto a screen.
	Real Kind = iota

	// Virtual images are the apparent origin of diverging rays.
	Virtual
)

func (k Kind) String() string {
	switch k {
	case Real:
		return "Real"
	case Virtual:
		return "Virtual"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ImagePoint is the image of a single object point.
type ImagePoint struct {
	X, Y float64
	Kind Kind
}

// Solver maps object points to image points.
// Implementations are pure and safe for concurrent use.
type Solver interface {
	Solve(x, y float64) (ImagePoint, bool)
}

// Inverter is implemented by elements whose mapping has a closed-form
// inverse.  Invert returns a candidate object point for the image point
// (X, Y).  Callers should confirm the candidate with [Solver.Solve],
// since some inverses cover more than one branch.
type Inverter interface {
	Invert(X, Y float64) (x, y float64, ok bool)
}

// Element is an optical element with adjustable parameters.
type Element interface {
	Solver

	// Name returns a short lower-case identifier, e.g. "concave".
	Name() string

	// Validate checks the parameters against their ranges.
	Validate() error
}

// SolveVerified inverts (X, Y) with inv and checks the result with the
// forward solver.  The tolerance is relative to the size of the image
// point.
func SolveVerified(e Solver, inv Inverter, X, Y float64) (x, y float64, ok bool) {
	x, y, ok = inv.Invert(X, Y)
	if !ok || !finite(x) || !finite(y) {
		return 0, 0, false
	}
	img, ok := e.Solve(x, y)
	if !ok {
		return 0, 0, false
	}
	tol := roundTripTolerance * max(1, abs(X), abs(Y))
	if abs(img.X-X) > tol || abs(img.Y-Y) > tol {
		return 0, 0, false
	}
	return x, y, true
}

// roundTripTolerance bounds the disagreement between an inverse and the
// forward mapping.
const roundTripTolerance = 1e-6
