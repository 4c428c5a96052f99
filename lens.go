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

package optics

import "math"

// LensKind distinguishes converging from diverging lenses.
type LensKind int

const (
	LensConvex LensKind = iota
	LensConcave
)

func (k LensKind) String() string {
	if k == LensConcave {
		return "concave"
	}
	return "convex"
}

// ThinLens is a thin lens in the plane x = 0.  A positive focal length F
// gives a convex (converging) lens, a negative one a concave (diverging)
// lens.
type ThinLens struct {
	F float64
}

// Kind returns the lens type implied by the sign of F.
func (l ThinLens) Kind() LensKind {
	if l.F < 0 {
		return LensConcave
	}
	return LensConvex
}

// Name implements [Element].
func (l ThinLens) Name() string {
	if l.Kind() == LensConcave {
		return "diverging"
	}
	return "lens"
}

// Validate implements [Element].
func (l ThinLens) Validate() error {
	if l.Kind() == LensConcave {
		return ConcaveFocalRange.check("f", l.F)
	}
	return ConvexFocalRange.check("f", l.F)
}

// Solve applies the thin lens equation.  A convex lens forms a real image
// for objects at or beyond the focal length and a virtual one for objects
// inside it; an object exactly at the focus has no image.  Concave lenses
// always form virtual images.
func (l ThinLens) Solve(x, y float64) (ImagePoint, bool) {
	f := l.F
	if x == 0 || f == 0 {
		return ImagePoint{}, false
	}

	var X float64
	kind := Virtual
	switch {
	case f > 0 && x >= f:
		den := x - f
		if math.Abs(den) < singularTolerance {
			return ImagePoint{}, false
		}
		X = -f / den * x
		kind = Real
	case f > 0:
		X = f / (f - x) * x
	default:
		den := x - f
		if math.Abs(den) < singularTolerance {
			return ImagePoint{}, false
		}
		X = f / den * x
	}
	Y := y / x * X
	if !finite(X) || !finite(Y) {
		return ImagePoint{}, false
	}
	return ImagePoint{X: X, Y: Y, Kind: kind}, true
}

// Invert implements [Inverter].  Both branches of the convex lens share
// the inverse x = f·X/(X+f); for the concave lens x = f·X/(X−f).
func (l ThinLens) Invert(X, Y float64) (float64, float64, bool) {
	f := l.F
	if X == 0 || f == 0 {
		return 0, 0, false
	}
	den := X + f
	if f < 0 {
		den = X - f
	}
	if math.Abs(den) < singularTolerance {
		return 0, 0, false
	}
	x := f * X / den
	return x, Y * x / X, true
}

// FocalPoints returns the x coordinates of the two focal points.
func (l ThinLens) FocalPoints() (float64, float64) {
	a := math.Abs(l.F)
	return -a, a
}
